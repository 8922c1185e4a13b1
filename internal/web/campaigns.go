package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/adpanel/internal/campaign"
	"github.com/louisbranch/adpanel/internal/campaign/form"
	"github.com/louisbranch/adpanel/internal/campaign/listing"
	"github.com/louisbranch/adpanel/internal/portal"
	"github.com/louisbranch/adpanel/internal/web/platform/flash"
	"github.com/louisbranch/adpanel/internal/web/sessions"
	webtemplates "github.com/louisbranch/adpanel/internal/web/templates"
)

// handleHome renders the campaign list for the signed-in account.
func (h *handler) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	client, err := h.portalClient(sess)
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Campaigns unavailable", "portal client unavailable")
		return
	}
	manager := listing.NewManager(client)

	filters := searchFilters(r)
	fetchErr := manager.Fetch(r.Context(), filters)
	if portal.IsKind(fetchErr, portal.KindAuth) {
		h.dropSession(w, r)
		http.Redirect(w, r, "/signin", http.StatusFound)
		return
	}

	page := h.pageContext(w, r, sess)
	params := webtemplates.CampaignsParams{
		Campaigns:    manager.Campaigns(),
		Filters:      filters,
		ErrorMessage: manager.Err(),
	}
	templ.Handler(webtemplates.CampaignsPage(page, params)).ServeHTTP(w, r)
}

// searchFilters reads the list filters from the query string. Values pass
// through to the portal verbatim; filtering is the server's contract.
func searchFilters(r *http.Request) campaign.SearchFilters {
	query := r.URL.Query()
	filters := campaign.SearchFilters{
		Title:          strings.TrimSpace(query.Get("title")),
		LandingPageURL: strings.TrimSpace(query.Get("landing_page_url")),
		Search:         strings.TrimSpace(query.Get("search")),
	}
	switch query.Get("is_running") {
	case "true":
		running := true
		filters.IsRunning = &running
	case "false":
		running := false
		filters.IsRunning = &running
	}
	return filters
}

// handleCampaignNew renders the create form and processes its posts.
func (h *handler) handleCampaignNew(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	client, err := h.portalClient(sess)
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Campaign create unavailable", "portal client unavailable")
		return
	}
	manager := listing.NewManager(client)

	switch r.Method {
	case http.MethodGet:
		page := h.pageContext(w, r, sess)
		params := webtemplates.CampaignFormParams{
			Form:    form.New(manager),
			Action:  "/campaigns/new",
			Heading: "New campaign",
		}
		templ.Handler(webtemplates.CampaignFormPage(page, params)).ServeHTTP(w, r)
	case http.MethodPost:
		f := form.New(manager)
		h.handleFormPost(w, r, sess, f, "/campaigns/new", "New campaign", "Campaign created")
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCampaignAction routes /campaigns/{id}/{edit,toggle,delete}.
func (h *handler) handleCampaignAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/campaigns/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "edit":
		h.handleCampaignEdit(w, r, id)
	case "toggle":
		h.handleCampaignToggle(w, r, id)
	case "delete":
		h.handleCampaignDelete(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *handler) handleCampaignEdit(w http.ResponseWriter, r *http.Request, id int) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	client, err := h.portalClient(sess)
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Campaign unavailable", "portal client unavailable")
		return
	}
	manager := listing.NewManager(client)

	existing, err := client.CampaignByID(r.Context(), id)
	if err != nil {
		h.handleCampaignLoadError(w, r, err)
		return
	}
	action := "/campaigns/" + strconv.Itoa(id) + "/edit"

	switch r.Method {
	case http.MethodGet:
		page := h.pageContext(w, r, sess)
		params := webtemplates.CampaignFormParams{
			Form:    form.Edit(manager, existing),
			Action:  action,
			Heading: "Edit campaign",
		}
		templ.Handler(webtemplates.CampaignFormPage(page, params)).ServeHTTP(w, r)
	case http.MethodPost:
		f := form.Edit(manager, existing)
		h.handleFormPost(w, r, sess, f, action, "Edit campaign", "Campaign updated")
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleCampaignToggle(w http.ResponseWriter, r *http.Request, id int) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	client, err := h.portalClient(sess)
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Campaign unavailable", "portal client unavailable")
		return
	}
	manager := listing.NewManager(client)

	running := r.FormValue("is_running") == "true"
	if err := manager.SetRunning(r.Context(), id, running); err != nil {
		if portal.IsKind(err, portal.KindAuth) {
			h.dropSession(w, r)
			http.Redirect(w, r, "/signin", http.StatusFound)
			return
		}
		flash.Write(w, r, flash.Error(manager.Err()))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *handler) handleCampaignDelete(w http.ResponseWriter, r *http.Request, id int) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	client, err := h.portalClient(sess)
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Campaign unavailable", "portal client unavailable")
		return
	}
	manager := listing.NewManager(client)

	switch r.Method {
	case http.MethodGet:
		existing, err := client.CampaignByID(r.Context(), id)
		if err != nil {
			h.handleCampaignLoadError(w, r, err)
			return
		}
		page := h.pageContext(w, r, sess)
		templ.Handler(webtemplates.DeleteCampaignPage(page, existing)).ServeHTTP(w, r)
	case http.MethodPost:
		if err := manager.Delete(r.Context(), id); err != nil {
			if portal.IsKind(err, portal.KindAuth) {
				h.dropSession(w, r)
				http.Redirect(w, r, "/signin", http.StatusFound)
				return
			}
			flash.Write(w, r, flash.Error(deleteMessage(err)))
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		flash.Write(w, r, flash.Success("Campaign deleted"))
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleCampaignLoadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case portal.IsKind(err, portal.KindAuth):
		h.dropSession(w, r)
		http.Redirect(w, r, "/signin", http.StatusFound)
	case portal.IsKind(err, portal.KindNotFound):
		h.renderErrorPage(w, r, http.StatusNotFound, "Campaign not found", "this campaign does not exist or was deleted")
	default:
		h.renderErrorPage(w, r, http.StatusBadGateway, "Campaign unavailable", "failed to load the campaign")
	}
}

// handleFormPost applies a posted campaign form: row mutations re-render
// the page, a save submits the draft. The entered data survives any failed
// outcome.
func (h *handler) handleFormPost(w http.ResponseWriter, r *http.Request, sess sessions.Session, f *form.Form, action, heading, successNotice string) {
	if err := r.ParseForm(); err != nil {
		h.renderErrorPage(w, r, http.StatusBadRequest, heading+" failed", "failed to parse campaign form")
		return
	}
	decodeForm(r, f)

	render := func(status int) {
		page := h.pageContext(w, r, sess)
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
		params := webtemplates.CampaignFormParams{Form: f, Action: action, Heading: heading}
		templ.Handler(webtemplates.CampaignFormPage(page, params)).ServeHTTP(w, r)
	}

	if r.Form.Has("add_row") {
		f.AddRow()
		render(http.StatusOK)
		return
	}
	if raw := r.FormValue("remove_row"); raw != "" {
		if idx, err := strconv.Atoi(raw); err == nil {
			rows := f.Rows()
			if idx >= 0 && idx < len(rows) {
				f.RemoveRow(rows[idx].ID)
			}
		}
		render(http.StatusOK)
		return
	}
	if !r.Form.Has("save") {
		// Worldwide checkbox toggles post back without an explicit action.
		render(http.StatusOK)
		return
	}

	if _, err := f.Submit(r.Context()); err != nil {
		var verr *campaign.ValidationError
		if errors.As(err, &verr) {
			render(http.StatusUnprocessableEntity)
			return
		}
		if portal.IsKind(err, portal.KindAuth) {
			h.dropSession(w, r)
			http.Redirect(w, r, "/signin", http.StatusFound)
			return
		}
		if portal.IsKind(err, portal.KindValidation) {
			render(http.StatusUnprocessableEntity)
			return
		}
		render(http.StatusBadGateway)
		return
	}

	flash.Write(w, r, flash.Success(successNotice))
	http.Redirect(w, r, "/", http.StatusFound)
}

// decodeForm rebuilds the form's draft from the posted fields. Payout rows
// arrive as parallel payout_* arrays in display order.
func decodeForm(r *http.Request, f *form.Form) {
	f.SetTitle(r.FormValue("title"))
	f.SetLandingPageURL(r.FormValue("landing_page_url"))
	f.SetRunning(r.FormValue("is_running") == "true")

	countries := r.Form["payout_country"]
	amounts := r.Form["payout_amount"]
	currencies := r.Form["payout_currency"]

	// Leave worldwide mode first so row edits are allowed, then restore it
	// at the end; entering worldwide truncates back to a single row.
	f.SetWorldwide(false)
	for len(f.Rows()) < len(amounts) {
		f.AddRow()
	}
	for rows := f.Rows(); len(rows) > len(amounts) && len(rows) > 1; rows = f.Rows() {
		f.RemoveRow(rows[len(rows)-1].ID)
	}
	for i, row := range f.Rows() {
		if i < len(countries) && countries[i] != campaign.WorldwideLabel {
			f.SetRowCountry(row.ID, countries[i])
		}
		if i < len(amounts) {
			f.SetRowAmount(row.ID, amounts[i])
		}
		if i < len(currencies) {
			f.SetRowCurrency(row.ID, currencies[i])
		}
	}

	if r.FormValue("worldwide") == "true" {
		f.SetWorldwide(true)
	}
}

func deleteMessage(err error) string {
	var perr *portal.Error
	if errors.As(err, &perr) {
		return perr.Message("Failed to delete campaign")
	}
	return "Failed to delete campaign"
}
