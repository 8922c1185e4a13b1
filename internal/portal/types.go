package portal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/adpanel/internal/campaign"
)

// payoutPayload is the wire shape of one payout. Country is null for
// worldwide payouts; some portal responses decorate it as "Name (CC)"
// instead of a bare code, which decoding normalizes away.
type payoutPayload struct {
	ID         int        `json:"id,omitempty"`
	CampaignID int        `json:"campaign_id,omitempty"`
	Country    *string    `json:"country"`
	Amount     jsonAmount `json:"amount"`
	Currency   string     `json:"currency"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// campaignPayload is the wire shape of a campaign in both directions.
type campaignPayload struct {
	ID             int             `json:"id,omitempty"`
	Title          string          `json:"title"`
	LandingPageURL string          `json:"landing_page_url"`
	IsRunning      bool            `json:"is_running"`
	Payouts        []payoutPayload `json:"payouts"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// campaignPatch is a PATCH body; nil fields are omitted entirely so the
// portal leaves them untouched.
type campaignPatch struct {
	Title          *string          `json:"title,omitempty"`
	LandingPageURL *string          `json:"landing_page_url,omitempty"`
	IsRunning      *bool            `json:"is_running,omitempty"`
	Payouts        *[]payoutPayload `json:"payouts,omitempty"`
}

// CampaignPatch selects the campaign fields a partial update changes.
type CampaignPatch struct {
	Title          *string
	LandingPageURL *string
	IsRunning      *bool
	Payouts        *[]campaign.PayoutDraft
}

// jsonAmount decodes a payout amount that the portal may serialize either as
// a JSON number or as a quoted decimal string, and always encodes as a
// number.
type jsonAmount float64

func (a *jsonAmount) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" || text == "" {
		*a = 0
		return nil
	}
	text = strings.Trim(text, `"`)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", text, err)
	}
	*a = jsonAmount(value)
	return nil
}

func (a jsonAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

// encodeDraft maps a client draft onto the create/replace wire shape.
// Worldwide targets become JSON null; drafts never carry ids or timestamps.
func encodeDraft(draft campaign.Draft) campaignPayload {
	return campaignPayload{
		Title:          draft.Title,
		LandingPageURL: draft.LandingPageURL,
		IsRunning:      draft.IsRunning,
		Payouts:        encodePayoutDrafts(draft.Payouts),
	}
}

func encodePayoutDrafts(drafts []campaign.PayoutDraft) []payoutPayload {
	payouts := make([]payoutPayload, 0, len(drafts))
	for _, draft := range drafts {
		payouts = append(payouts, payoutPayload{
			Country:  encodeTarget(draft.Target),
			Amount:   jsonAmount(draft.Amount),
			Currency: draft.Currency,
		})
	}
	return payouts
}

func encodeTarget(target campaign.Target) *string {
	if target.IsWorldwide() {
		return nil
	}
	code := target.Code()
	return &code
}

func encodePatch(patch CampaignPatch) campaignPatch {
	body := campaignPatch{
		Title:          patch.Title,
		LandingPageURL: patch.LandingPageURL,
		IsRunning:      patch.IsRunning,
	}
	if patch.Payouts != nil {
		payouts := encodePayoutDrafts(*patch.Payouts)
		body.Payouts = &payouts
	}
	return body
}

// decodeCampaign maps a wire campaign back into the domain model,
// normalizing decorated country strings to bare codes.
func decodeCampaign(payload campaignPayload) (campaign.Campaign, error) {
	decoded := campaign.Campaign{
		ID:             payload.ID,
		Title:          payload.Title,
		LandingPageURL: payload.LandingPageURL,
		IsRunning:      payload.IsRunning,
	}
	if payload.CreatedAt != nil {
		decoded.CreatedAt = *payload.CreatedAt
	}
	if payload.UpdatedAt != nil {
		decoded.UpdatedAt = *payload.UpdatedAt
	}
	for _, wire := range payload.Payouts {
		payout, err := decodePayout(wire)
		if err != nil {
			return campaign.Campaign{}, err
		}
		decoded.Payouts = append(decoded.Payouts, payout)
	}
	return decoded, nil
}

func decodePayout(payload payoutPayload) (campaign.Payout, error) {
	country := ""
	if payload.Country != nil {
		country = *payload.Country
	}
	target, err := campaign.ParseTarget(country)
	if err != nil {
		return campaign.Payout{}, fmt.Errorf("decode payout country: %w", err)
	}
	payout := campaign.Payout{
		ID:         payload.ID,
		CampaignID: payload.CampaignID,
		Target:     target,
		Amount:     float64(payload.Amount),
		Currency:   payload.Currency,
	}
	if payload.CreatedAt != nil {
		payout.CreatedAt = *payload.CreatedAt
	}
	if payload.UpdatedAt != nil {
		payout.UpdatedAt = *payload.UpdatedAt
	}
	return payout, nil
}

// Account is the portal user object returned by sign-in and profile calls.
type Account struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// Credentials is the token pair issued at sign-in.
type Credentials struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         Account `json:"user"`
}
