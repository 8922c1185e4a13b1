// Package campaign defines the advertising campaign domain model shared by
// the form, the list view, and the portal API client.
package campaign

import "time"

// Campaign is an advertising campaign owned by the signed-in account.
type Campaign struct {
	ID             int
	Title          string
	LandingPageURL string
	IsRunning      bool
	Payouts        []Payout
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Payout is a per-country (or worldwide) amount/currency rule attached to a
// campaign. ID is zero until the record is persisted remotely.
type Payout struct {
	ID         int
	CampaignID int
	Target     Target
	Amount     float64
	Currency   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Draft is the client-side payload for creating a campaign or replacing one
// wholesale. It carries no server-assigned identifiers or timestamps.
type Draft struct {
	Title          string
	LandingPageURL string
	IsRunning      bool
	Payouts        []PayoutDraft
}

// PayoutDraft is one payout entry within a Draft.
type PayoutDraft struct {
	Target   Target
	Amount   float64
	Currency string
}

// SearchFilters narrows a campaign list request. Zero-valued fields are
// omitted from the query; the server owns the filtering contract.
type SearchFilters struct {
	Title          string
	LandingPageURL string
	IsRunning      *bool
	Search         string
}

// IsZero reports whether no filter is set.
func (f SearchFilters) IsZero() bool {
	return f.Title == "" && f.LandingPageURL == "" && f.IsRunning == nil && f.Search == ""
}

// Merge folds fields of an updated campaign into c, keeping local values for
// anything the update omits. Partial responses (a running toggle, for
// example) may carry only the changed field plus identifiers, so payouts and
// timestamps survive the merge when absent.
func (c Campaign) Merge(update Campaign) Campaign {
	merged := c
	if update.Title != "" {
		merged.Title = update.Title
	}
	if update.LandingPageURL != "" {
		merged.LandingPageURL = update.LandingPageURL
	}
	merged.IsRunning = update.IsRunning
	if len(update.Payouts) > 0 {
		merged.Payouts = update.Payouts
	}
	if !update.CreatedAt.IsZero() {
		merged.CreatedAt = update.CreatedAt
	}
	if !update.UpdatedAt.IsZero() {
		merged.UpdatedAt = update.UpdatedAt
	}
	return merged
}
