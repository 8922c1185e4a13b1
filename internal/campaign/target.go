package campaign

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// WorldwideLabel is the sentinel shown in forms and stored in form state for
// a payout that applies to all countries. The portal API represents the same
// concept as a JSON null; the two representations meet at the API module
// boundary.
const WorldwideLabel = "Worldwide"

// Worldwide is the target applying to all countries.
var Worldwide = Target{}

// Target identifies where a payout applies: worldwide, or one country.
// The zero value is worldwide.
type Target struct {
	code string
}

// CountryTarget builds a target for a two-letter country code.
func CountryTarget(code string) (Target, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return Target{}, fmt.Errorf("country code %q must be two letters", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return Target{}, fmt.Errorf("country code %q must be two letters", code)
		}
	}
	return Target{code: code}, nil
}

// decoratedCountry matches display-decorated values like "Germany (DE)".
var decoratedCountry = regexp.MustCompile(`\(([A-Za-z]{2})\)\s*$`)

// ParseTarget normalizes the country representations seen at the API and
// form boundaries into a Target. Accepted inputs: empty string or the
// worldwide label (worldwide), a bare two-letter code, or a decorated
// "Name (CC)" string as returned by some list responses.
func ParseTarget(value string) (Target, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, WorldwideLabel) {
		return Worldwide, nil
	}
	if match := decoratedCountry.FindStringSubmatch(value); match != nil {
		return CountryTarget(match[1])
	}
	return CountryTarget(value)
}

// IsWorldwide reports whether the target applies to all countries.
func (t Target) IsWorldwide() bool {
	return t.code == ""
}

// Code returns the two-letter country code, or the empty string for
// worldwide.
func (t Target) Code() string {
	return t.code
}

// Key returns the effective country key used for duplicate detection.
// All worldwide targets share one key.
func (t Target) Key() string {
	if t.IsWorldwide() {
		return "worldwide"
	}
	return t.code
}

// Label returns the form-level representation: the worldwide label or the
// bare country code.
func (t Target) Label() string {
	if t.IsWorldwide() {
		return WorldwideLabel
	}
	return t.code
}

// DisplayName returns a human-readable name for the target, such as
// "Germany" for DE. Unknown regions fall back to the bare code.
func (t Target) DisplayName() string {
	if t.IsWorldwide() {
		return WorldwideLabel
	}
	region, err := language.ParseRegion(t.code)
	if err != nil {
		return t.code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return t.code
}

// String implements fmt.Stringer with the form-level representation.
func (t Target) String() string {
	return t.Label()
}
