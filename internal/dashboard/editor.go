package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"insurance-portal/internal/models"
)

// OfferUpdater persists an edited offer
type OfferUpdater interface {
	UpdateOffer(ctx context.Context, offerID int64, req models.UpdateOfferRequest) (*models.Offer, error)
}

// RefetchFunc reloads a dashboard's collections after a mutation
type RefetchFunc func(ctx context.Context) error

// Draft is the in-memory copy of the fields an agent is editing.
// Prices are kept as typed text until save.
type Draft struct {
	OfferID      int64              `json:"offerId"`
	BasePrice    string             `json:"basePrice"`
	DiscountRate string             `json:"discountRate"`
	Status       models.OfferStatus `json:"status"`
}

// DraftPatch carries the fields a PATCH on the draft changes; nil fields are left alone
type DraftPatch struct {
	BasePrice    *string `json:"basePrice,omitempty"`
	DiscountRate *string `json:"discountRate,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// EditState is what the table needs to render the edit controls
type EditState struct {
	Draft  *Draft `json:"draft"`
	Saving bool   `json:"saving,omitempty"`
}

// Editor owns the inline-edit draft of one table. At most one offer is edited at a time.
type Editor struct {
	mu     sync.Mutex
	draft  *Draft
	saving bool
	logger *slog.Logger
}

// NewEditor creates an idle editor
func NewEditor(logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{logger: logger}
}

// Begin enters edit mode for offer and seeds the draft from its current values.
// Beginning again on the row already in edit mode keeps the existing draft.
func (e *Editor) Begin(offer models.Offer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft != nil {
		if e.draft.OfferID == offer.OfferID {
			return nil
		}
		return ErrEditInProgress
	}
	if !offer.Editable() {
		return ErrOfferLocked
	}

	discount := ""
	if offer.DiscountRate.Valid {
		discount = offer.DiscountRate.Decimal.String()
	}
	e.draft = &Draft{
		OfferID:      offer.OfferID,
		BasePrice:    offer.BasePrice.String(),
		DiscountRate: discount,
		Status:       offer.Status,
	}
	e.logger.Debug("Edit started", "offer_id", offer.OfferID)
	return nil
}

func (e *Editor) mutate(fn func(d *Draft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return ErrNotEditing
	}
	if e.saving {
		return ErrSaveInFlight
	}
	return fn(e.draft)
}

func (e *Editor) SetBasePrice(value string) error {
	return e.mutate(func(d *Draft) error {
		d.BasePrice = value
		return nil
	})
}

func (e *Editor) SetDiscountRate(value string) error {
	return e.mutate(func(d *Draft) error {
		d.DiscountRate = value
		return nil
	})
}

// SetStatus accepts only the offer status wire literals
func (e *Editor) SetStatus(value string) error {
	status, ok := models.ParseOfferStatus(value)
	if !ok {
		return fmt.Errorf("%w %q", ErrInvalidStatus, value)
	}
	return e.mutate(func(d *Draft) error {
		d.Status = status
		return nil
	})
}

// Apply applies every non-nil field of patch. A rejected patch leaves the draft untouched.
func (e *Editor) Apply(patch DraftPatch) error {
	var status models.OfferStatus
	if patch.Status != nil {
		parsed, ok := models.ParseOfferStatus(*patch.Status)
		if !ok {
			return fmt.Errorf("%w %q", ErrInvalidStatus, *patch.Status)
		}
		status = parsed
	}
	return e.mutate(func(d *Draft) error {
		if patch.BasePrice != nil {
			d.BasePrice = *patch.BasePrice
		}
		if patch.DiscountRate != nil {
			d.DiscountRate = *patch.DiscountRate
		}
		if patch.Status != nil {
			d.Status = status
		}
		return nil
	})
}

// Cancel drops the draft without any network call
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return ErrNotEditing
	}
	if e.saving {
		return ErrSaveInFlight
	}
	e.logger.Debug("Edit cancelled", "offer_id", e.draft.OfferID)
	e.draft = nil
	return nil
}

// State returns a copy of the current edit state
func (e *Editor) State() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := EditState{Saving: e.saving}
	if e.draft != nil {
		d := *e.draft
		state.Draft = &d
	}
	return state
}

// reset drops the draft after a re-fetch unless a save owns it
func (e *Editor) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.saving {
		e.draft = nil
	}
}

// Save sends the draft to the API. The client never computes the final price on
// save; finalPrice is sent as 0 and the API recomputes it. On success the
// dashboard is re-fetched and the draft cleared; a failed re-fetch is reported
// as ErrRefreshFailed. On save failure the draft stays so the agent can retry.
func (e *Editor) Save(ctx context.Context, api OfferUpdater, refetch RefetchFunc) error {
	e.mu.Lock()
	if e.draft == nil {
		e.mu.Unlock()
		return ErrNotEditing
	}
	if e.saving {
		e.mu.Unlock()
		return ErrSaveInFlight
	}
	basePrice, err := decimal.NewFromString(strings.TrimSpace(e.draft.BasePrice))
	if err != nil {
		e.mu.Unlock()
		return ErrInvalidBasePrice
	}
	discountRate, err := decimal.NewFromString(strings.TrimSpace(e.draft.DiscountRate))
	if err != nil {
		discountRate = decimal.Zero
	}
	offerID := e.draft.OfferID
	req := models.UpdateOfferRequest{
		BasePrice:    basePrice,
		DiscountRate: discountRate,
		Status:       e.draft.Status,
		FinalPrice:   decimal.Zero,
	}
	e.saving = true
	e.mu.Unlock()

	e.logger.Info("Saving offer", "offer_id", offerID, "base_price", basePrice.String(), "discount_rate", discountRate.String())

	if _, err := api.UpdateOffer(ctx, offerID, req); err != nil {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
		e.logger.Error("Failed to save offer", "offer_id", offerID, "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	var refreshErr error
	if refetch != nil {
		if err := refetch(ctx); err != nil && !errors.Is(err, ErrUnmounted) {
			e.logger.Warn("Offer saved but refresh failed", "offer_id", offerID, "error", err)
			refreshErr = fmt.Errorf("offer %d saved: %w: %w", offerID, ErrRefreshFailed, err)
		}
	}

	e.mu.Lock()
	e.saving = false
	e.draft = nil
	e.mu.Unlock()

	return refreshErr
}
