package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteDialog_OnlyPendingTab(t *testing.T) {
	d := NewDeleteDialog(nil)
	offers := sampleOffers()

	assert.ErrorIs(t, d.Request(offers[1], TabApproved), ErrDeleteNotAllowed)
	assert.ErrorIs(t, d.Request(offers[1], TabPending), ErrDeleteNotAllowed)
	assert.Nil(t, d.Target())

	require.NoError(t, d.Request(offers[0], TabPending))
	target := d.Target()
	require.NotNil(t, target)
	assert.Equal(t, int64(1), target.OfferID)
	assert.Equal(t, "Ayşe Yılmaz", target.CustomerName)
	assert.Equal(t, "Kasko", target.InsuranceType)
	assert.True(t, target.FinalPrice.Equal(dec("800")))
}

func TestDeleteDialog_CancelMakesNoCall(t *testing.T) {
	api := &fakeAPI{offers: sampleOffers()}
	d := NewDeleteDialog(nil)
	require.NoError(t, d.Request(api.offers[0], TabPending))

	require.NoError(t, d.Cancel())
	assert.Nil(t, d.Target())
	assert.Empty(t, api.deletes)
	assert.ErrorIs(t, d.Cancel(), ErrNoDeleteDialog)
}

func TestDeleteDialog_FailureKeepsDialogOpen(t *testing.T) {
	api := &fakeAPI{offers: sampleOffers(), deleteErr: errors.New("upstream down")}
	d := NewDeleteDialog(nil)
	require.NoError(t, d.Request(api.offers[0], TabPending))

	err := d.Confirm(context.Background(), api, nil)
	assert.ErrorIs(t, err, ErrDeleteFailed)
	assert.NotNil(t, d.Target())
}

func TestDeleteDialog_RefreshFailureClosesDialog(t *testing.T) {
	api := &fakeAPI{offers: sampleOffers()}
	d := NewDeleteDialog(nil)
	require.NoError(t, d.Request(api.offers[0], TabPending))

	err := d.Confirm(context.Background(), api, func(context.Context) error {
		return errors.New("timeout")
	})
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Equal(t, []int64{1}, api.deletes)
	assert.Nil(t, d.Target())
}

func TestDeleteDialog_SecondDialogRejected(t *testing.T) {
	d := NewDeleteDialog(nil)
	first := sampleOffers()[0]
	second := first
	second.OfferID = 9

	require.NoError(t, d.Request(first, TabPending))
	assert.ErrorIs(t, d.Request(second, TabPending), ErrDialogOpen)
}
