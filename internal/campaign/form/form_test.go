package form

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/adpanel/internal/campaign"
	"github.com/louisbranch/adpanel/internal/portal"
)

type fakeSubmitter struct {
	createFn func(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error)
	updateFn func(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error)
}

func (f *fakeSubmitter) Create(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error) {
	return f.createFn(ctx, draft)
}

func (f *fakeSubmitter) Update(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error) {
	return f.updateFn(ctx, id, draft)
}

func fillValid(f *Form) {
	f.SetTitle("Test Campaign")
	f.SetLandingPageURL("https://example.com")
	f.SetRowAmount(f.Rows()[0].ID, "10.50")
}

func TestNewDefaults(t *testing.T) {
	f := New(nil)

	if !f.Running() {
		t.Fatal("new form should default to running")
	}
	if !f.Worldwide() {
		t.Fatal("new form should start in worldwide mode")
	}
	rows := f.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !rows[0].Target.IsWorldwide() {
		t.Fatalf("row target = %v, want worldwide", rows[0].Target)
	}
	if rows[0].Currency != campaign.DefaultCurrency {
		t.Fatalf("row currency = %q, want %q", rows[0].Currency, campaign.DefaultCurrency)
	}
}

func TestWorldwideRoundTrip(t *testing.T) {
	f := New(nil)

	f.SetWorldwide(false)
	f.AddRow()
	f.AddRow()
	if len(f.Rows()) != 3 {
		t.Fatalf("rows = %d, want 3", len(f.Rows()))
	}

	f.SetWorldwide(true)
	rows := f.Rows()
	if len(rows) != 1 || !rows[0].Target.IsWorldwide() {
		t.Fatalf("rows = %+v, want one worldwide row", rows)
	}

	f.SetWorldwide(false)
	rows = f.Rows()
	if len(rows) != 1 || rows[0].Target.Code() != campaign.DefaultCountry {
		t.Fatalf("rows = %+v, want one %s row", rows, campaign.DefaultCountry)
	}

	f.SetWorldwide(true)
	rows = f.Rows()
	if len(rows) != 1 || !rows[0].Target.IsWorldwide() {
		t.Fatalf("on/off/on rows = %+v, want one worldwide row", rows)
	}
}

func TestAddRowDisabledWhileWorldwide(t *testing.T) {
	f := New(nil)
	f.AddRow()
	if len(f.Rows()) != 1 {
		t.Fatalf("rows = %d, want worldwide mode to block adds", len(f.Rows()))
	}
}

func TestRemoveRowRules(t *testing.T) {
	f := New(nil)
	f.SetWorldwide(false)
	f.AddRow()
	rows := f.Rows()

	f.RemoveRow(rows[0].ID)
	got := f.Rows()
	if len(got) != 1 || got[0].ID != rows[1].ID {
		t.Fatalf("rows = %+v, want only the second row kept", got)
	}

	// Last remaining row cannot be removed.
	f.RemoveRow(got[0].ID)
	if len(f.Rows()) != 1 {
		t.Fatal("removing the last row should be a no-op")
	}
}

func TestRowIDsStable(t *testing.T) {
	f := New(nil)
	f.SetWorldwide(false)
	f.AddRow()
	f.AddRow()
	rows := f.Rows()

	f.RemoveRow(rows[1].ID)
	f.SetRowAmount(rows[2].ID, "5")

	got := f.Rows()
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[1].ID != rows[2].ID || got[1].Amount != "5" {
		t.Fatalf("row = %+v, want the amount edit to follow the id", got[1])
	}
}

func TestSubmitInvalidBlocksNetwork(t *testing.T) {
	called := false
	f := New(&fakeSubmitter{
		createFn: func(context.Context, campaign.Draft) (campaign.Campaign, error) {
			called = true
			return campaign.Campaign{}, nil
		},
	})

	_, err := f.Submit(context.Background())
	if err == nil {
		t.Fatal("expected validation error")
	}
	if called {
		t.Fatal("invalid draft must not reach the submitter")
	}
	if f.State() != StateInvalid {
		t.Fatalf("state = %v, want Invalid", f.State())
	}
	if got := f.FieldErrors("title"); len(got) != 1 || got[0] != "Title is required" {
		t.Fatalf("title errors = %v", got)
	}
	if got := f.FieldErrors("payouts[0].amount"); len(got) != 1 || got[0] != "Amount must be greater than 0" {
		t.Fatalf("amount errors = %v", got)
	}
}

func TestSubmitCreateResetsToFreshDraft(t *testing.T) {
	var sent campaign.Draft
	f := New(&fakeSubmitter{
		createFn: func(_ context.Context, draft campaign.Draft) (campaign.Campaign, error) {
			sent = draft
			return campaign.Campaign{ID: 7, Title: draft.Title}, nil
		},
	})
	fillValid(f)
	f.SetRunning(false)

	saved, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if saved.ID != 7 {
		t.Fatalf("saved id = %d, want 7", saved.ID)
	}
	if sent.Title != "Test Campaign" || sent.LandingPageURL != "https://example.com" || sent.IsRunning {
		t.Fatalf("sent draft = %+v", sent)
	}
	if len(sent.Payouts) != 1 || !sent.Payouts[0].Target.IsWorldwide() || sent.Payouts[0].Amount != 10.5 {
		t.Fatalf("sent payouts = %+v", sent.Payouts)
	}

	if f.State() != StateSuccess {
		t.Fatalf("state = %v, want Success", f.State())
	}
	if f.Title() != "" || len(f.Rows()) != 1 || !f.Rows()[0].Target.IsWorldwide() {
		t.Fatal("create form should reset to a fresh draft after success")
	}
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	f := New(&fakeSubmitter{
		createFn: func(context.Context, campaign.Draft) (campaign.Campaign, error) {
			return campaign.Campaign{}, &portal.Error{
				Kind:     portal.KindValidation,
				Status:   400,
				Messages: []string{"Duplicated countries are not allowed"},
			}
		},
	})
	fillValid(f)

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}
	if f.State() != StateSubmitFailed {
		t.Fatalf("state = %v, want SubmitFailed", f.State())
	}
	if f.Title() != "Test Campaign" || f.Rows()[0].Amount != "10.50" {
		t.Fatal("failed submission must keep entered data")
	}
	if got := f.SubmitErrors(); len(got) != 1 || got[0] != "Duplicated countries are not allowed" {
		t.Fatalf("submit errors = %v", got)
	}
}

func TestSubmitUpdateUsesLoadedCampaign(t *testing.T) {
	de, _ := campaign.CountryTarget("DE")
	existing := campaign.Campaign{
		ID:             12,
		Title:          "Old Title",
		LandingPageURL: "https://old.example.com",
		IsRunning:      true,
		Payouts: []campaign.Payout{
			{ID: 1, CampaignID: 12, Target: de, Amount: 2.5, Currency: "EUR"},
		},
	}
	var gotID int
	f := Edit(&fakeSubmitter{
		updateFn: func(_ context.Context, id int, draft campaign.Draft) (campaign.Campaign, error) {
			gotID = id
			return campaign.Campaign{ID: id, Title: draft.Title, Payouts: existing.Payouts}, nil
		},
	}, existing)

	if f.Worldwide() {
		t.Fatal("country-specific campaign should not load in worldwide mode")
	}
	if got := f.Rows()[0]; got.Target.Code() != "DE" || got.Amount != "2.5" {
		t.Fatalf("loaded row = %+v", got)
	}

	f.SetTitle("New Title")
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotID != 12 {
		t.Fatalf("update id = %d, want 12", gotID)
	}
	if f.CampaignID() != 12 || f.Title() != "New Title" {
		t.Fatal("edit form should keep the saved campaign loaded after success")
	}
}

func TestSubmitDebouncesDuplicateClicks(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	f := New(&fakeSubmitter{
		createFn: func(context.Context, campaign.Draft) (campaign.Campaign, error) {
			close(inFlight)
			<-release
			return campaign.Campaign{ID: 1}, nil
		},
	})
	fillValid(f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-inFlight

	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("error = %v, want ErrSubmitInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestEditReturnsToIdleAfterFailure(t *testing.T) {
	f := New(&fakeSubmitter{
		createFn: func(context.Context, campaign.Draft) (campaign.Campaign, error) {
			return campaign.Campaign{}, &portal.Error{Kind: portal.KindServer, Status: 500}
		},
	})
	fillValid(f)

	f.Submit(context.Background())
	if f.State() != StateSubmitFailed {
		t.Fatalf("state = %v, want SubmitFailed", f.State())
	}

	f.SetTitle("Edited Again")
	if f.State() != StateIdle {
		t.Fatalf("state = %v, want Idle after an edit", f.State())
	}
	if len(f.SubmitErrors()) != 0 {
		t.Fatal("stale submit errors should clear on edit")
	}
}
