package campaign

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxTitleLength bounds campaign titles, matching the portal's column size.
const MaxTitleLength = 255

// FieldError is one validation failure attached to a draft field path, such
// as "title" or "payouts[2].amount". Collection-wide failures attach to the
// collection root path "payouts".
type FieldError struct {
	Path    string
	Message string
}

// ValidationError aggregates all draft validation failures in evaluation
// order. It is produced before submission; drafts failing validation never
// reach the network layer.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface with the first failure, which is the
// one an inline form surfaces most prominently.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "draft is invalid"
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Path, e.Fields[0].Message)
}

// ByPath returns the messages recorded for one field path.
func (e *ValidationError) ByPath(path string) []string {
	if e == nil {
		return nil
	}
	var messages []string
	for _, field := range e.Fields {
		if field.Path == path {
			messages = append(messages, field.Message)
		}
	}
	return messages
}

// add records one failure.
func (e *ValidationError) add(path, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

// ValidateDraft evaluates the whole draft and returns nil or a
// *ValidationError carrying every failure. Field inputs are expected to be
// trimmed by the form layer; trimming here is a safety net for programmatic
// callers.
func ValidateDraft(draft Draft) error {
	verr := &ValidationError{}

	title := strings.TrimSpace(draft.Title)
	switch {
	case title == "":
		verr.add("title", "Title is required")
	case len(title) > MaxTitleLength:
		verr.add("title", fmt.Sprintf("Title must be less than %d characters", MaxTitleLength))
	}

	landing := strings.TrimSpace(draft.LandingPageURL)
	if landing == "" {
		verr.add("landing_page_url", "Landing page URL is required")
	} else if !validAbsoluteURL(landing) {
		verr.add("landing_page_url", "Please enter a valid URL (e.g., https://example.com)")
	}

	if len(draft.Payouts) == 0 {
		verr.add("payouts", "At least one payout is required")
	}

	for i, payout := range draft.Payouts {
		if payout.Amount <= 0 {
			verr.add(fmt.Sprintf("payouts[%d].amount", i), "Amount must be greater than 0")
		}
		if strings.TrimSpace(payout.Currency) == "" {
			verr.add(fmt.Sprintf("payouts[%d].currency", i), "Currency is required")
		} else if !ValidCurrency(payout.Currency) {
			verr.add(fmt.Sprintf("payouts[%d].currency", i), "Currency is not supported")
		}
	}

	// Cross-row rules attach to the collection root, not to a row, so they
	// surface even when every row is individually valid.
	seen := make(map[string]bool, len(draft.Payouts))
	duplicate := false
	worldwide := false
	specific := false
	for _, payout := range draft.Payouts {
		if seen[payout.Target.Key()] {
			duplicate = true
		}
		seen[payout.Target.Key()] = true
		if payout.Target.IsWorldwide() {
			worldwide = true
		} else {
			specific = true
		}
	}
	if duplicate {
		verr.add("payouts", "Duplicated countries are not allowed")
	}
	if worldwide && specific {
		verr.add("payouts", "Cannot mix worldwide and country-specific payouts")
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func validAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
