package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"insurance-portal/internal/models"
)

// OfferDeleter removes an offer
type OfferDeleter interface {
	DeleteOffer(ctx context.Context, offerID int64) error
}

// DeleteTarget is the snapshot shown in the confirmation dialog
type DeleteTarget struct {
	OfferID       int64           `json:"offerId"`
	CustomerName  string          `json:"customerName"`
	InsuranceType string          `json:"insuranceType"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

// DeleteDialog is the two-phase delete flow of the offers table
type DeleteDialog struct {
	mu       sync.Mutex
	target   *DeleteTarget
	deleting bool
	logger   *slog.Logger
}

func NewDeleteDialog(logger *slog.Logger) *DeleteDialog {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteDialog{logger: logger}
}

// Request opens the dialog for offer. Only rows of the pending tab can be deleted.
func (d *DeleteDialog) Request(offer models.Offer, tab int) error {
	if tab != TabPending || offer.Status != models.OfferPending {
		return ErrDeleteNotAllowed
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.target != nil {
		if d.target.OfferID == offer.OfferID {
			return nil
		}
		return ErrDialogOpen
	}
	d.target = &DeleteTarget{
		OfferID:       offer.OfferID,
		CustomerName:  offer.CustomerName(),
		InsuranceType: offer.InsuranceTypeName(),
		FinalPrice:    offer.FinalPrice,
	}
	return nil
}

// Target returns the open dialog's snapshot or nil
func (d *DeleteDialog) Target() *DeleteTarget {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.target == nil {
		return nil
	}
	t := *d.target
	return &t
}

// Cancel closes the dialog with no network effect
func (d *DeleteDialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.target == nil {
		return ErrNoDeleteDialog
	}
	if d.deleting {
		return ErrDeleteInFlight
	}
	d.target = nil
	return nil
}

// Confirm deletes the snapshotted offer, then re-fetches. The dialog stays open on failure.
func (d *DeleteDialog) Confirm(ctx context.Context, api OfferDeleter, refetch RefetchFunc) error {
	d.mu.Lock()
	if d.target == nil {
		d.mu.Unlock()
		return ErrNoDeleteDialog
	}
	if d.deleting {
		d.mu.Unlock()
		return ErrDeleteInFlight
	}
	offerID := d.target.OfferID
	d.deleting = true
	d.mu.Unlock()

	if err := api.DeleteOffer(ctx, offerID); err != nil {
		d.mu.Lock()
		d.deleting = false
		d.mu.Unlock()
		d.logger.Error("Failed to delete offer", "offer_id", offerID, "error", err)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	d.logger.Info("Offer deleted", "offer_id", offerID)

	var refreshErr error
	if refetch != nil {
		if err := refetch(ctx); err != nil && !errors.Is(err, ErrUnmounted) {
			refreshErr = fmt.Errorf("offer %d deleted: %w: %w", offerID, ErrRefreshFailed, err)
		}
	}

	d.mu.Lock()
	d.deleting = false
	d.target = nil
	d.mu.Unlock()
	return refreshErr
}
