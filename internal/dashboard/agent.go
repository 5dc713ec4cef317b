package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"insurance-portal/internal/client"
	"insurance-portal/internal/models"
	"insurance-portal/internal/pricing"
	"insurance-portal/internal/table"
)

// AgentAPI is the slice of the portal client the agent dashboard uses
type AgentAPI interface {
	OfferUpdater
	OfferDeleter
	GetAgentByUserID(ctx context.Context, userID int64) (*models.Agent, error)
	GetOffersByAgentDepartment(ctx context.Context, agentID int64) ([]models.Offer, error)
	GetClaimsByAgentDepartment(ctx context.Context, agentID int64) ([]models.Claim, error)
}

// OffersPage is one render of the offers table
type OffersPage struct {
	View   table.View     `json:"view"`
	Tabs   []string       `json:"tabs"`
	Rows   []models.Offer `json:"rows"`
	Edit   EditState      `json:"edit"`
	Delete *DeleteTarget  `json:"delete,omitempty"`
	Loaded time.Time      `json:"loadedAt"`
	// Stale is set when a change was applied but the rows could not be reloaded
	Stale bool `json:"stale,omitempty"`
}

// ClaimsPage is one render of the claims table
type ClaimsPage struct {
	View   table.View     `json:"view"`
	Tabs   []string       `json:"tabs"`
	Rows   []models.Claim `json:"rows"`
	Loaded time.Time      `json:"loadedAt"`
}

// AgentDashboard holds the state of one mounted agent dashboard: the raw
// collections fetched for the agent's department and the view parameters of
// both tables. Rows are derived from them on every read.
type AgentDashboard struct {
	api         AgentAPI
	user        models.User
	logger      *slog.Logger
	offerSchema *table.Schema[models.Offer]
	claimSchema *table.Schema[models.Claim]
	editor      *Editor
	deletion    *DeleteDialog

	mu        sync.RWMutex
	life      lifecycle
	agent     *models.Agent
	offers    []models.Offer
	claims    []models.Claim
	offerView table.View
	claimView table.View
	loadedAt  time.Time
}

// NewAgentDashboard creates an unmounted dashboard for user
func NewAgentDashboard(api AgentAPI, user models.User, lang language.Tag, logger *slog.Logger) *AgentDashboard {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("dashboard", "agent", "user_id", user.UserID)
	d := &AgentDashboard{
		api:         api,
		user:        user,
		logger:      logger,
		offerSchema: OfferSchema(lang),
		claimSchema: ClaimSchema(lang),
		editor:      NewEditor(logger),
		deletion:    NewDeleteDialog(logger),
	}
	d.offerView = d.offerSchema.DefaultView()
	d.claimView = d.claimSchema.DefaultView()
	return d
}

// Mount resolves the agent record for the user and loads both tables.
// A user without an agent record gets ErrNoAgentRecord.
func (d *AgentDashboard) Mount(ctx context.Context) error {
	agent, err := d.api.GetAgentByUserID(ctx, d.user.UserID)
	if errors.Is(err, client.ErrNotFound) || (err == nil && agent == nil) {
		d.logger.Warn("User has no agent record")
		return ErrNoAgentRecord
	}
	if err != nil {
		return fmt.Errorf("failed to load agent: %w", err)
	}

	d.mu.Lock()
	if d.life.unmounted {
		d.mu.Unlock()
		return ErrUnmounted
	}
	d.agent = agent
	d.mu.Unlock()

	d.logger.Info("Agent dashboard mounted", "agent_id", agent.AgentID)
	return d.Refresh(ctx)
}

// Refresh re-fetches offers and claims wholesale. A response that has been
// superseded by a newer fetch, or that arrives after Unmount, is dropped.
func (d *AgentDashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.agent == nil && !d.life.unmounted {
		d.mu.Unlock()
		return ErrNotMounted
	}
	gen, err := d.life.next()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	agentID := d.agent.AgentID
	d.mu.Unlock()

	var offers []models.Offer
	var claims []models.Claim
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offers, err = d.api.GetOffersByAgentDepartment(gctx, agentID)
		return err
	})
	g.Go(func() error {
		var err error
		claims, err = d.api.GetClaimsByAgentDepartment(gctx, agentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.life.current(gen) {
		d.logger.Debug("Discarding stale dashboard response", "generation", gen, "unmounted", d.life.unmounted)
		return nil
	}
	d.offers = offers
	d.claims = claims
	d.loadedAt = time.Now()
	d.editor.reset()

	d.logger.Debug("Dashboard refreshed", "offers", len(offers), "claims", len(claims), "generation", gen)
	return nil
}

// Unmount stops applying responses; in-flight requests are not cancelled
func (d *AgentDashboard) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.life.unmount()
	d.logger.Debug("Agent dashboard unmounted")
}

// Agent returns the resolved agent record
func (d *AgentDashboard) Agent() *models.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.agent
}

// SortOffers applies a header click on the offers table
func (d *AgentDashboard) SortOffers(key string) (table.SortState, error) {
	if _, ok := d.offerSchema.Column(key); !ok {
		return table.SortState{}, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offerView.Sort = d.offerView.Sort.Toggle(key)
	return d.offerView.Sort, nil
}

// SetOfferSort selects a column and direction directly
func (d *AgentDashboard) SetOfferSort(state table.SortState) error {
	if _, ok := d.offerSchema.Column(state.Key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, state.Key)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offerView.Sort = state
	return nil
}

func (d *AgentDashboard) SelectOfferTab(tab int) error {
	if tab < 0 || tab >= len(d.offerSchema.Tabs) {
		return fmt.Errorf("%w: %d", ErrUnknownTab, tab)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offerView.Tab = tab
	return nil
}

// SortClaims applies a header click on the claims table
func (d *AgentDashboard) SortClaims(key string) (table.SortState, error) {
	if _, ok := d.claimSchema.Column(key); !ok {
		return table.SortState{}, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claimView.Sort = d.claimView.Sort.Toggle(key)
	return d.claimView.Sort, nil
}

func (d *AgentDashboard) SetClaimSort(state table.SortState) error {
	if _, ok := d.claimSchema.Column(state.Key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, state.Key)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claimView.Sort = state
	return nil
}

func (d *AgentDashboard) SelectClaimTab(tab int) error {
	if tab < 0 || tab >= len(d.claimSchema.Tabs) {
		return fmt.Errorf("%w: %d", ErrUnknownTab, tab)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claimView.Tab = tab
	return nil
}

func (d *AgentDashboard) SearchClaims(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claimView.Query = query
}

// OfferRows derives the visible offers from the raw collection and the view
func (d *AgentDashboard) OfferRows() []models.Offer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offerSchema.Derive(d.offers, d.offerView)
}

// ClaimRows derives the visible claims from the raw collection and the view
func (d *AgentDashboard) ClaimRows() []models.Claim {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.claimSchema.Derive(d.claims, d.claimView)
}

// OffersPage renders the offers table together with its edit and delete state
func (d *AgentDashboard) OffersPage() OffersPage {
	d.mu.RLock()
	page := OffersPage{
		View:   d.offerView,
		Tabs:   tabNames(d.offerSchema.Tabs),
		Rows:   d.offerSchema.Derive(d.offers, d.offerView),
		Loaded: d.loadedAt,
	}
	d.mu.RUnlock()

	page.Edit = d.editor.State()
	page.Delete = d.deletion.Target()
	return page
}

func (d *AgentDashboard) ClaimsPage() ClaimsPage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return ClaimsPage{
		View:   d.claimView,
		Tabs:   tabNames(d.claimSchema.Tabs),
		Rows:   d.claimSchema.Derive(d.claims, d.claimView),
		Loaded: d.loadedAt,
	}
}

func (d *AgentDashboard) offer(offerID int64) (models.Offer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := slices.IndexFunc(d.offers, func(o models.Offer) bool { return o.OfferID == offerID })
	if i < 0 {
		return models.Offer{}, fmt.Errorf("%w: %d", ErrOfferNotFound, offerID)
	}
	return d.offers[i], nil
}

// BeginEdit puts the row for offerID into edit mode
func (d *AgentDashboard) BeginEdit(offerID int64) error {
	offer, err := d.offer(offerID)
	if err != nil {
		return err
	}
	return d.editor.Begin(offer)
}

func (d *AgentDashboard) UpdateDraft(patch DraftPatch) error {
	return d.editor.Apply(patch)
}

func (d *AgentDashboard) CancelEdit() error {
	return d.editor.Cancel()
}

func (d *AgentDashboard) SaveEdit(ctx context.Context) error {
	return d.editor.Save(ctx, d.api, d.Refresh)
}

func (d *AgentDashboard) EditState() EditState {
	return d.editor.State()
}

// RequestDelete opens the delete dialog for offerID, which must be visible on the pending tab
func (d *AgentDashboard) RequestDelete(offerID int64) error {
	offer, err := d.offer(offerID)
	if err != nil {
		return err
	}
	d.mu.RLock()
	tab := d.offerView.Tab
	d.mu.RUnlock()
	return d.deletion.Request(offer, tab)
}

func (d *AgentDashboard) ConfirmDelete(ctx context.Context) error {
	return d.deletion.Confirm(ctx, d.api, d.Refresh)
}

func (d *AgentDashboard) CancelDelete() error {
	return d.deletion.Cancel()
}

func (d *AgentDashboard) DeleteTarget() *DeleteTarget {
	return d.deletion.Target()
}

// QuotePreview previews offerID's final price with a candidate discount rate
func (d *AgentDashboard) QuotePreview(offerID int64, discountRate decimal.Decimal) (pricing.Preview, error) {
	offer, err := d.offer(offerID)
	if err != nil {
		return pricing.Preview{}, err
	}
	return pricing.PreviewOffer(offer, discountRate), nil
}

func tabNames[T any](tabs []table.Tab[T]) []string {
	names := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		names = append(names, tab.Name)
	}
	return names
}
