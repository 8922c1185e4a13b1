// Package listing maintains the local view of campaigns fetched from the
// portal and keeps it consistent across mutations without refetching after
// every action.
package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/louisbranch/adpanel/internal/campaign"
	"github.com/louisbranch/adpanel/internal/portal"
)

// API is the slice of the portal client the manager depends on.
type API interface {
	Campaigns(ctx context.Context, filters campaign.SearchFilters) ([]campaign.Campaign, error)
	CreateCampaign(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error)
	UpdateCampaign(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error)
	DeleteCampaign(ctx context.Context, id int) error
	SetCampaignRunning(ctx context.Context, id int, running bool) (campaign.Campaign, error)
}

// Manager owns the in-memory campaign collection backing the list view.
// All methods are safe for concurrent use.
type Manager struct {
	api API

	mu        sync.Mutex
	campaigns []campaign.Campaign
	loading   bool
	errText   string
	fetchSeq  uint64
}

// NewManager builds an empty manager over the given portal API.
func NewManager(api API) *Manager {
	return &Manager{api: api}
}

// Campaigns returns a copy of the current collection in display order.
func (m *Manager) Campaigns() []campaign.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]campaign.Campaign, len(m.campaigns))
	copy(copied, m.campaigns)
	return copied
}

// Loading reports whether a fetch is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err returns the current user-visible error message, if any.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errText
}

// Fetch replaces the collection with the portal's result for the given
// filters. Overlapping calls resolve last-request-wins: each call takes a
// sequence token, and a response whose token is stale by the time it
// resolves is discarded instead of clobbering a newer filter's result.
func (m *Manager) Fetch(ctx context.Context, filters campaign.SearchFilters) error {
	m.mu.Lock()
	m.fetchSeq++
	seq := m.fetchSeq
	m.loading = true
	m.errText = ""
	m.mu.Unlock()

	campaigns, err := m.api.Campaigns(ctx, filters)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.fetchSeq {
		return err
	}
	m.loading = false
	if err != nil {
		// Auth failures are handled globally by the session gate; writing a
		// generic message here would mask the redirect.
		if !portal.IsKind(err, portal.KindAuth) {
			m.errText = errMessage(err, "Failed to fetch campaigns")
		}
		return err
	}
	m.campaigns = campaigns
	return nil
}

// Create submits a draft and, on success, prepends the portal's campaign
// (which carries the server-assigned id) to the collection. There is no
// optimistic insert: later operations need real ids.
func (m *Manager) Create(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error) {
	created, err := m.api.CreateCampaign(ctx, draft)
	if err != nil {
		return campaign.Campaign{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns = append([]campaign.Campaign{created}, m.campaigns...)
	return created, nil
}

// Update replaces a campaign wholesale and swaps the matching local entry on
// success. On failure local state is unchanged and the error is returned.
func (m *Manager) Update(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error) {
	updated, err := m.api.UpdateCampaign(ctx, id, draft)
	if err != nil {
		return campaign.Campaign{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns[i] = updated
			break
		}
	}
	return updated, nil
}

// Delete removes a campaign remotely and drops the local entry on success.
// There is no optimistic removal: hiding a campaign that still exists is
// worse than a stale row.
func (m *Manager) Delete(ctx context.Context, id int) error {
	if err := m.api.DeleteCampaign(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.campaigns[:0]
	for _, c := range m.campaigns {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.campaigns = kept
	return nil
}

// SetRunning toggles the running flag remotely. The response may be a
// partial campaign, so on success its fields are merged into the existing
// entry rather than replacing it. On failure the local flag stays exactly
// as it was; the displayed toggle never desynchronizes from server state.
func (m *Manager) SetRunning(ctx context.Context, id int, running bool) error {
	updated, err := m.api.SetCampaignRunning(ctx, id, running)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if !portal.IsKind(err, portal.KindAuth) {
			m.errText = errMessage(err, "Failed to update campaign status")
		}
		return err
	}
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns[i] = m.campaigns[i].Merge(updated)
			break
		}
	}
	return nil
}

func errMessage(err error, fallback string) string {
	var perr *portal.Error
	if errors.As(err, &perr) {
		return perr.Message(fallback)
	}
	return fallback
}
