package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/louisbranch/adpanel/internal/campaign"
)

// CreateCampaign submits a new campaign, payouts included, as one call.
// The returned campaign carries the server-assigned id, payout ids, and
// timestamps. Server-side validation rejections surface as KindValidation
// errors with the portal's messages attached.
func (c *Client) CreateCampaign(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error) {
	var payload campaignPayload
	if err := c.do(ctx, http.MethodPost, "/campaigns", encodeDraft(draft), &payload, requestOptions{}); err != nil {
		return campaign.Campaign{}, err
	}
	created, err := decodeCampaign(payload)
	if err != nil {
		return campaign.Campaign{}, fmt.Errorf("decode created campaign: %w", err)
	}
	return created, nil
}

// Campaigns lists campaigns, optionally narrowed by filters. Filter values
// are passed verbatim as query parameters; filtering is the portal's
// contract.
func (c *Client) Campaigns(ctx context.Context, filters campaign.SearchFilters) ([]campaign.Campaign, error) {
	query := url.Values{}
	if filters.Title != "" {
		query.Set("title", filters.Title)
	}
	if filters.LandingPageURL != "" {
		query.Set("landing_page_url", filters.LandingPageURL)
	}
	if filters.IsRunning != nil {
		query.Set("is_running", strconv.FormatBool(*filters.IsRunning))
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}

	var payloads []campaignPayload
	if err := c.do(ctx, http.MethodGet, "/campaigns", nil, &payloads, requestOptions{query: query}); err != nil {
		return nil, err
	}
	campaigns := make([]campaign.Campaign, 0, len(payloads))
	for _, payload := range payloads {
		decoded, err := decodeCampaign(payload)
		if err != nil {
			return nil, fmt.Errorf("decode campaign %d: %w", payload.ID, err)
		}
		campaigns = append(campaigns, decoded)
	}
	return campaigns, nil
}

// CampaignByID fetches a single campaign. A missing id yields a
// KindNotFound error.
func (c *Client) CampaignByID(ctx context.Context, id int) (campaign.Campaign, error) {
	var payload campaignPayload
	if err := c.do(ctx, http.MethodGet, campaignPath(id), nil, &payload, requestOptions{}); err != nil {
		return campaign.Campaign{}, err
	}
	decoded, err := decodeCampaign(payload)
	if err != nil {
		return campaign.Campaign{}, fmt.Errorf("decode campaign %d: %w", id, err)
	}
	return decoded, nil
}

// UpdateCampaign replaces every field of a campaign, payout set included.
func (c *Client) UpdateCampaign(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error) {
	var payload campaignPayload
	if err := c.do(ctx, http.MethodPut, campaignPath(id), encodeDraft(draft), &payload, requestOptions{}); err != nil {
		return campaign.Campaign{}, err
	}
	updated, err := decodeCampaign(payload)
	if err != nil {
		return campaign.Campaign{}, fmt.Errorf("decode updated campaign: %w", err)
	}
	return updated, nil
}

// PatchCampaign changes only the supplied fields.
func (c *Client) PatchCampaign(ctx context.Context, id int, patch CampaignPatch) (campaign.Campaign, error) {
	var payload campaignPayload
	if err := c.do(ctx, http.MethodPatch, campaignPath(id), encodePatch(patch), &payload, requestOptions{}); err != nil {
		return campaign.Campaign{}, err
	}
	patched, err := decodeCampaign(payload)
	if err != nil {
		return campaign.Campaign{}, fmt.Errorf("decode patched campaign: %w", err)
	}
	return patched, nil
}

// SetCampaignRunning patches only the running flag. The response is treated
// as partial: it is at minimum the changed field, and callers merge it into
// local state rather than overwriting.
func (c *Client) SetCampaignRunning(ctx context.Context, id int, running bool) (campaign.Campaign, error) {
	return c.PatchCampaign(ctx, id, CampaignPatch{IsRunning: &running})
}

// DeleteCampaign removes a campaign. The portal cascades payout deletion;
// the caller is responsible for dropping the id from any cached list.
func (c *Client) DeleteCampaign(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, campaignPath(id), nil, nil, requestOptions{})
}

func campaignPath(id int) string {
	return fmt.Sprintf("/campaigns/%d/", id)
}
