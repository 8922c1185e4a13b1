// Package templates holds the templ views and their shared view models.
package templates

import (
	"github.com/louisbranch/adpanel/internal/campaign"
	"github.com/louisbranch/adpanel/internal/campaign/form"
	"github.com/louisbranch/adpanel/internal/web/platform/flash"
)

// PageContext provides shared layout context for pages.
type PageContext struct {
	AppName     string
	CurrentPath string
	UserEmail   string
	Notice      *flash.Notice
}

// SignedIn reports whether the layout should render the account chrome.
func (p PageContext) SignedIn() bool {
	return p.UserEmail != ""
}

// AuthParams carries sign-in/sign-up form state across a failed attempt.
type AuthParams struct {
	Email  string
	Errors []string
}

// CampaignsParams renders the campaign list page.
type CampaignsParams struct {
	Campaigns    []campaign.Campaign
	Filters      campaign.SearchFilters
	ErrorMessage string
}

// RunningFilterValue maps the tri-state running filter to its select value.
func (p CampaignsParams) RunningFilterValue() string {
	if p.Filters.IsRunning == nil {
		return ""
	}
	if *p.Filters.IsRunning {
		return "true"
	}
	return "false"
}

// CampaignFormParams renders the create/edit campaign page.
type CampaignFormParams struct {
	Form *form.Form
	// Action is the URL the form posts back to.
	Action string
	// Heading distinguishes the create and edit renders.
	Heading string
}

// CountryOption is one entry of the country select.
type CountryOption struct {
	Code  string
	Label string
}

// CountryOptions lists the selectable payout countries with display names.
func CountryOptions() []CountryOption {
	options := make([]CountryOption, 0, len(campaign.CountryCodes))
	for _, code := range campaign.CountryCodes {
		target, err := campaign.CountryTarget(code)
		if err != nil {
			continue
		}
		options = append(options, CountryOption{Code: code, Label: target.DisplayName()})
	}
	return options
}

// CurrencyOptions lists the selectable payout currencies.
func CurrencyOptions() []string {
	return campaign.Currencies
}

// PayoutSummary renders one payout as "amount for label" for the list page.
func PayoutSummary(p campaign.Payout) string {
	return campaign.FormatAmount(p.Amount, p.Currency) + " for " + p.Target.Label()
}
