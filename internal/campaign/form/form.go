// Package form manages the campaign draft being composed for create or
// edit, including the variable-length payout rows and the worldwide toggle.
// The portal encoder translates worldwide targets to null at submit time;
// this package only deals in form-level state.
package form

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/louisbranch/adpanel/internal/campaign"
	"github.com/louisbranch/adpanel/internal/portal"
)

// State is the submit lifecycle position of a Form.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateSuccess
	StateSubmitFailed
)

// ErrSubmitInFlight rejects a duplicate submission while one is pending.
var ErrSubmitInFlight = errors.New("form: submission already in flight")

// Submitter persists a finished draft. listing.Manager satisfies it.
type Submitter interface {
	Create(ctx context.Context, draft campaign.Draft) (campaign.Campaign, error)
	Update(ctx context.Context, id int, draft campaign.Draft) (campaign.Campaign, error)
}

// Row is one payout entry in the form. ID is a stable row identifier
// assigned by the form, unrelated to array position or any server id, so
// add/remove keep working when rows shift.
type Row struct {
	ID       int
	Target   campaign.Target
	Amount   string
	Currency string
}

// Form owns a campaign draft and its payout rows. Methods are safe for
// concurrent use; a session may hold one form across overlapping requests.
type Form struct {
	submitter Submitter

	mu         sync.Mutex
	state      State
	campaignID int
	title      string
	landingURL string
	running    bool
	worldwide  bool
	rows       []Row
	nextRowID  int
	fieldErrs  *campaign.ValidationError
	submitErrs []string
}

// New returns a form for creating a campaign: empty title and URL, running
// enabled, and a single worldwide payout row.
func New(submitter Submitter) *Form {
	f := &Form{submitter: submitter}
	f.reset()
	return f
}

// Edit returns a form pre-filled from an existing campaign. Decorated and
// null country values have already been normalized by the portal decoder;
// worldwide payouts put the form in worldwide mode.
func Edit(submitter Submitter, c campaign.Campaign) *Form {
	f := &Form{submitter: submitter}
	f.load(c)
	return f
}

func (f *Form) reset() {
	f.state = StateIdle
	f.campaignID = 0
	f.title = ""
	f.landingURL = ""
	f.running = true
	f.worldwide = true
	f.rows = f.rows[:0]
	f.appendRow(campaign.Worldwide)
	f.fieldErrs = nil
	f.submitErrs = nil
}

func (f *Form) load(c campaign.Campaign) {
	f.state = StateIdle
	f.campaignID = c.ID
	f.title = c.Title
	f.landingURL = c.LandingPageURL
	f.running = c.IsRunning
	f.rows = nil
	f.fieldErrs = nil
	f.submitErrs = nil

	f.worldwide = len(c.Payouts) > 0
	for _, payout := range c.Payouts {
		if !payout.Target.IsWorldwide() {
			f.worldwide = false
		}
	}
	for _, payout := range c.Payouts {
		f.appendRow(payout.Target)
		row := &f.rows[len(f.rows)-1]
		row.Amount = strconv.FormatFloat(payout.Amount, 'f', -1, 64)
		row.Currency = payout.Currency
	}
	if len(f.rows) == 0 {
		f.appendRow(campaign.Worldwide)
		f.worldwide = true
	}
}

func (f *Form) appendRow(target campaign.Target) {
	f.nextRowID++
	f.rows = append(f.rows, Row{
		ID:       f.nextRowID,
		Target:   target,
		Amount:   "0",
		Currency: campaign.DefaultCurrency,
	})
}

// CampaignID is the id being edited, zero for a create form.
func (f *Form) CampaignID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.campaignID
}

// State reports the submit lifecycle position.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Title returns the current title input.
func (f *Form) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

// LandingPageURL returns the current URL input.
func (f *Form) LandingPageURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.landingURL
}

// Running returns the current running flag.
func (f *Form) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Worldwide reports whether the form is in worldwide mode.
func (f *Form) Worldwide() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.worldwide
}

// Rows returns a copy of the payout rows in display order.
func (f *Form) Rows() []Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]Row, len(f.rows))
	copy(rows, f.rows)
	return rows
}

// SetTitle records a title edit and returns the form to editing state.
func (f *Form) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
	f.touch()
}

// SetLandingPageURL records a URL edit.
func (f *Form) SetLandingPageURL(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.landingURL = raw
	f.touch()
}

// SetRunning records the running flag.
func (f *Form) SetRunning(running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = running
	f.touch()
}

// SetWorldwide switches the payout mode. Entering worldwide truncates the
// rows to the first one and forces it worldwide; leaving it forces the
// first row to the default country so a concrete choice is required. The
// on/off/on round trip always lands on exactly one worldwide row.
func (f *Form) SetWorldwide(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.worldwide == on {
		return
	}
	f.worldwide = on
	if on {
		f.rows = f.rows[:1]
		f.rows[0].Target = campaign.Worldwide
	} else {
		target, _ := campaign.CountryTarget(campaign.DefaultCountry)
		f.rows[0].Target = target
	}
	f.touch()
}

// AddRow appends a payout row with the default country, default currency,
// and zero amount. No-op in worldwide mode, where exactly one row is
// mandatory.
func (f *Form) AddRow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.worldwide {
		return
	}
	target, _ := campaign.CountryTarget(campaign.DefaultCountry)
	f.appendRow(target)
	f.touch()
}

// RemoveRow deletes the row with the given id. No-op when it would leave
// zero rows, in worldwide mode, or for an unknown id.
func (f *Form) RemoveRow(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.worldwide || len(f.rows) <= 1 {
		return
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			f.touch()
			return
		}
	}
}

// SetRowAmount records the raw amount input for the row; coercion to a
// number happens at validation so a bad keystroke is kept on screen.
func (f *Form) SetRowAmount(id int, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row := f.row(id); row != nil {
		row.Amount = raw
		f.touch()
	}
}

// SetRowCurrency records the currency selection for the row.
func (f *Form) SetRowCurrency(id int, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row := f.row(id); row != nil {
		row.Currency = code
		f.touch()
	}
}

// SetRowCountry records the country selection for the row. Ignored in
// worldwide mode and for values that do not parse as a target.
func (f *Form) SetRowCountry(id int, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.worldwide {
		return
	}
	row := f.row(id)
	if row == nil {
		return
	}
	target, err := campaign.ParseTarget(value)
	if err != nil {
		return
	}
	row.Target = target
	f.touch()
}

func (f *Form) row(id int) *Row {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i]
		}
	}
	return nil
}

// touch returns the form to editing after a state-bearing outcome so stale
// errors do not linger past the next edit.
func (f *Form) touch() {
	if f.state == StateInvalid || f.state == StateSubmitFailed || f.state == StateSuccess {
		f.state = StateIdle
		f.fieldErrs = nil
		f.submitErrs = nil
	}
}

// FieldErrors returns the validation messages recorded for one field path,
// such as "title" or "payouts[0].amount". Cross-row failures live under the
// root path "payouts".
func (f *Form) FieldErrors(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs.ByPath(path)
}

// SubmitErrors returns the server messages from the last failed submission.
func (f *Form) SubmitErrors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.submitErrs...)
}

// Draft assembles the current inputs into an API-shaped draft. Amounts
// that do not parse as numbers become zero and fail the positive-amount
// rule downstream.
func (f *Form) Draft() campaign.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftLocked()
}

func (f *Form) draftLocked() campaign.Draft {
	draft := campaign.Draft{
		Title:          strings.TrimSpace(f.title),
		LandingPageURL: strings.TrimSpace(f.landingURL),
		IsRunning:      f.running,
		Payouts:        make([]campaign.PayoutDraft, 0, len(f.rows)),
	}
	for _, row := range f.rows {
		amount, err := strconv.ParseFloat(strings.TrimSpace(row.Amount), 64)
		if err != nil {
			amount = 0
		}
		draft.Payouts = append(draft.Payouts, campaign.PayoutDraft{
			Target:   row.Target,
			Amount:   amount,
			Currency: row.Currency,
		})
	}
	return draft
}

// Submit validates the draft and hands it to the submitter: create when no
// campaign id is loaded, full replace otherwise. Validation failure moves
// the form to Invalid with field errors attached and nothing reaches the
// network. Submission failure keeps the entered data and records the
// server's messages. Success resets a create form to a fresh draft and
// returns the persisted campaign. A second Submit while one is pending
// returns ErrSubmitInFlight.
func (f *Form) Submit(ctx context.Context) (campaign.Campaign, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return campaign.Campaign{}, ErrSubmitInFlight
	}
	f.state = StateValidating
	f.fieldErrs = nil
	f.submitErrs = nil
	draft := f.draftLocked()

	if err := campaign.ValidateDraft(draft); err != nil {
		f.state = StateInvalid
		var verr *campaign.ValidationError
		if errors.As(err, &verr) {
			f.fieldErrs = verr
		}
		f.mu.Unlock()
		return campaign.Campaign{}, err
	}

	f.state = StateSubmitting
	id := f.campaignID
	f.mu.Unlock()

	var saved campaign.Campaign
	var err error
	if id == 0 {
		saved, err = f.submitter.Create(ctx, draft)
	} else {
		saved, err = f.submitter.Update(ctx, id, draft)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateSubmitFailed
		f.submitErrs = submitMessages(err)
		return campaign.Campaign{}, err
	}
	if id == 0 {
		f.reset()
	} else {
		f.load(saved)
	}
	f.state = StateSuccess
	return saved, nil
}

func submitMessages(err error) []string {
	var perr *portal.Error
	if errors.As(err, &perr) && len(perr.Messages) > 0 {
		return append([]string(nil), perr.Messages...)
	}
	return []string{"Failed to save campaign"}
}
