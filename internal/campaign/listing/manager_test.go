package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/adpanel/internal/campaign"
	"github.com/louisbranch/adpanel/internal/portal"
)

type fakeAPI struct {
	campaignsFn  func(ctx context.Context, filters campaign.SearchFilters) ([]campaign.Campaign, error)
	createFn     func(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error)
	updateFn     func(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error)
	deleteFn     func(ctx context.Context, id int) error
	setRunningFn func(ctx context.Context, id int, running bool) (campaign.Campaign, error)
}

func (f *fakeAPI) Campaigns(ctx context.Context, filters campaign.SearchFilters) ([]campaign.Campaign, error) {
	return f.campaignsFn(ctx, filters)
}

func (f *fakeAPI) CreateCampaign(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error) {
	return f.createFn(ctx, draft)
}

func (f *fakeAPI) UpdateCampaign(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error) {
	return f.updateFn(ctx, id, draft)
}

func (f *fakeAPI) DeleteCampaign(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeAPI) SetCampaignRunning(ctx context.Context, id int, running bool) (campaign.Campaign, error) {
	return f.setRunningFn(ctx, id, running)
}

func seeded(t *testing.T, campaigns ...campaign.Campaign) (*Manager, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{
		campaignsFn: func(context.Context, campaign.SearchFilters) ([]campaign.Campaign, error) {
			return campaigns, nil
		},
	}
	manager := NewManager(api)
	if err := manager.Fetch(context.Background(), campaign.SearchFilters{}); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}
	return manager, api
}

func TestFetchReplacesCollection(t *testing.T) {
	manager, api := seeded(t, campaign.Campaign{ID: 1, Title: "Old"})

	api.campaignsFn = func(context.Context, campaign.SearchFilters) ([]campaign.Campaign, error) {
		return []campaign.Campaign{{ID: 2, Title: "New"}}, nil
	}
	if err := manager.Fetch(context.Background(), campaign.SearchFilters{}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	got := manager.Campaigns()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("campaigns = %+v, want only id 2", got)
	}
	if manager.Loading() {
		t.Fatal("loading should be false after fetch")
	}
	if manager.Err() != "" {
		t.Fatalf("err = %q, want empty", manager.Err())
	}
}

func TestFetchFailureSetsErrorAndKeepsNothingStale(t *testing.T) {
	api := &fakeAPI{
		campaignsFn: func(context.Context, campaign.SearchFilters) ([]campaign.Campaign, error) {
			return nil, &portal.Error{Kind: portal.KindServer, Status: 502, Messages: []string{"upstream down"}}
		},
	}
	manager := NewManager(api)

	err := manager.Fetch(context.Background(), campaign.SearchFilters{})
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if manager.Err() != "upstream down" {
		t.Fatalf("err = %q, want %q", manager.Err(), "upstream down")
	}
	if manager.Loading() {
		t.Fatal("loading should be false after failed fetch")
	}
}

func TestFetchLastRequestWins(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	slow := []campaign.Campaign{{ID: 1, Title: "Slow"}}
	fast := []campaign.Campaign{{ID: 2, Title: "Fast"}}

	calls := 0
	api := &fakeAPI{}
	api.campaignsFn = func(ctx context.Context, filters campaign.SearchFilters) ([]campaign.Campaign, error) {
		calls++
		if calls == 1 {
			close(inFlight)
			<-release
			return slow, nil
		}
		return fast, nil
	}
	manager := NewManager(api)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- manager.Fetch(context.Background(), campaign.SearchFilters{Search: "first"})
	}()

	<-inFlight
	if err := manager.Fetch(context.Background(), campaign.SearchFilters{Search: "second"}); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	close(release)
	<-firstDone

	got := manager.Campaigns()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("campaigns = %+v, want the later request's result", got)
	}
}

func TestFetchAuthFailureDoesNotMaskRedirect(t *testing.T) {
	api := &fakeAPI{
		campaignsFn: func(context.Context, campaign.SearchFilters) ([]campaign.Campaign, error) {
			return nil, &portal.Error{Kind: portal.KindAuth, Status: 401}
		},
	}
	manager := NewManager(api)

	err := manager.Fetch(context.Background(), campaign.SearchFilters{})
	if !portal.IsKind(err, portal.KindAuth) {
		t.Fatalf("error kind = %v, want auth", err)
	}
	if manager.Err() != "" {
		t.Fatalf("err = %q, want empty: the session gate owns 401 handling", manager.Err())
	}
}

func TestCreatePrependsServerCampaign(t *testing.T) {
	manager, api := seeded(t, campaign.Campaign{ID: 1, Title: "Existing"})
	api.createFn = func(_ context.Context, draft campaign.Draft) (campaign.Campaign, error) {
		return campaign.Campaign{ID: 42, Title: draft.Title}, nil
	}

	created, err := manager.Create(context.Background(), campaign.Draft{Title: "Fresh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("created id = %d, want server-assigned 42", created.ID)
	}

	got := manager.Campaigns()
	if len(got) != 2 || got[0].ID != 42 || got[1].ID != 1 {
		t.Fatalf("campaigns = %+v, want new entry prepended", got)
	}
}

func TestCreateFailureLeavesStateUntouched(t *testing.T) {
	manager, api := seeded(t, campaign.Campaign{ID: 1})
	wantErr := &portal.Error{Kind: portal.KindValidation, Status: 400, Messages: []string{"Duplicated countries are not allowed"}}
	api.createFn = func(context.Context, campaign.Draft) (campaign.Campaign, error) {
		return campaign.Campaign{}, wantErr
	}

	_, err := manager.Create(context.Background(), campaign.Draft{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want the portal error rethrown", err)
	}
	got := manager.Campaigns()
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("campaigns = %+v, want unchanged", got)
	}
}

func TestUpdateReplacesMatchingEntry(t *testing.T) {
	manager, api := seeded(t,
		campaign.Campaign{ID: 1, Title: "Keep"},
		campaign.Campaign{ID: 2, Title: "Old"},
	)
	api.updateFn = func(_ context.Context, id int, draft campaign.Draft) (campaign.Campaign, error) {
		return campaign.Campaign{ID: id, Title: draft.Title}, nil
	}

	if _, err := manager.Update(context.Background(), 2, campaign.Draft{Title: "Renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := manager.Campaigns()
	if got[0].Title != "Keep" || got[1].Title != "Renamed" {
		t.Fatalf("campaigns = %+v", got)
	}
}

func TestDeleteRemovesEntryOnSuccessOnly(t *testing.T) {
	manager, api := seeded(t, campaign.Campaign{ID: 1}, campaign.Campaign{ID: 2})

	api.deleteFn = func(context.Context, int) error {
		return &portal.Error{Kind: portal.KindServer, Status: 500}
	}
	if err := manager.Delete(context.Background(), 2); err == nil {
		t.Fatal("expected delete error")
	}
	if got := manager.Campaigns(); len(got) != 2 {
		t.Fatalf("campaigns = %+v, want no optimistic removal", got)
	}

	api.deleteFn = func(context.Context, int) error { return nil }
	if err := manager.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got := manager.Campaigns()
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("campaigns = %+v, want id 2 removed", got)
	}
}

func TestSetRunningMergesPartialResponse(t *testing.T) {
	us, _ := campaign.CountryTarget("US")
	manager, api := seeded(t, campaign.Campaign{
		ID:        5,
		Title:     "Keep Me",
		IsRunning: false,
		Payouts:   []campaign.Payout{{ID: 1, CampaignID: 5, Target: us, Amount: 3, Currency: "USD"}},
	})
	api.setRunningFn = func(_ context.Context, id int, running bool) (campaign.Campaign, error) {
		// Partial response: only the flag and the id.
		return campaign.Campaign{ID: id, IsRunning: running}, nil
	}

	if err := manager.SetRunning(context.Background(), 5, true); err != nil {
		t.Fatalf("set running: %v", err)
	}
	got := manager.Campaigns()[0]
	if !got.IsRunning {
		t.Fatal("is_running = false, want true")
	}
	if got.Title != "Keep Me" || len(got.Payouts) != 1 {
		t.Fatalf("merge dropped fields: %+v", got)
	}
}

func TestSetRunningFailureLeavesFlagAsIs(t *testing.T) {
	manager, api := seeded(t, campaign.Campaign{ID: 5, IsRunning: false})
	api.setRunningFn = func(context.Context, int, bool) (campaign.Campaign, error) {
		return campaign.Campaign{}, &portal.Error{Kind: portal.KindServer, Status: 500}
	}

	if err := manager.SetRunning(context.Background(), 5, true); err == nil {
		t.Fatal("expected toggle error")
	}
	if got := manager.Campaigns()[0]; got.IsRunning {
		t.Fatal("is_running flipped despite failure")
	}
	if manager.Err() != "Failed to update campaign status" {
		t.Fatalf("err = %q", manager.Err())
	}
}
