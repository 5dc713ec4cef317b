package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-portal/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *PortalClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPortalClient(server.URL, 5*time.Second)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "agent@broker.test", req.Email)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"token":"abc","user":{"userId":4,"email":"agent@broker.test","firstName":"Mehmet","lastName":"Kaya","role":"ROLE_AGENT"}}`)
	})

	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "agent@broker.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)
	assert.Equal(t, models.RoleAgent, resp.User.Role)
	assert.Equal(t, "Mehmet Kaya", resp.User.FullName())
}

func TestWithTokenSendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		io.WriteString(w, `{"userId":1,"role":"customer"}`)
	})

	bound := c.WithToken("tkn")
	_, err := bound.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Token(), "WithToken must not modify the original client")
}

func TestGetOffersByAgentDepartment_DecodesWireShapes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/offers/agent/3/department", r.URL.Path)
		io.WriteString(w, `[
			{"offerId":1,"status":"pending","basePrice":800,"discountRate":null,"finalPrice":800,"coverageAmount":25,
			 "createdAt":"2024-03-01T10:00:00Z","requestedStartDate":"2024-04-01",
			 "customer":{"customerId":7,"name":"Ayşe"},"customerAdditionalInfo":"{\"plate\":\"34 ABC 12\"}"},
			{"offerId":2,"status":"weird","basePrice":"1200.50","discountRate":10,"finalPrice":0,"coverageAmount":0,
			 "createdAt":null,"customerAdditionalInfo":"not json"}
		]`)
	})

	offers, err := c.GetOffersByAgentDepartment(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	first := offers[0]
	assert.Equal(t, models.OfferPending, first.Status)
	assert.False(t, first.DiscountRate.Valid)
	assert.Equal(t, models.CoverageMedium, first.CoverageAmount)
	assert.Equal(t, "Ayşe", first.CustomerName())
	assert.Equal(t, "34 ABC 12", first.CustomerAdditionalInfo.Fields["plate"])

	second := offers[1]
	assert.Equal(t, models.OfferStatusUnknown, second.Status)
	assert.True(t, second.BasePrice.Equal(decimal.RequireFromString("1200.5")))
	assert.True(t, second.CreatedAt.IsZero())
	assert.Equal(t, "not json", second.CustomerAdditionalInfo.Raw)
}

func TestGetOffersByAgentDepartment_MalformedRowKeepsListing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"offerId":1,"status":"pending","basePrice":800,"finalPrice":800,"coverageAmount":25.0,
			 "createdAt":"2024-03-01T10:00:00Z"},
			{"offerId":2,"status":7,"basePrice":900,"finalPrice":900,"coverageAmount":"40",
			 "createdAt":"2024-01-15 10:30:00","requestedStartDate":1709287200000},
			{"offerId":3,"status":"pending","basePrice":100,"finalPrice":100,"coverageAmount":"lots",
			 "createdAt":[2024,1,15]}
		]`)
	})

	offers, err := c.GetOffersByAgentDepartment(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, offers, 3)

	assert.Equal(t, models.CoverageMedium, offers[0].CoverageAmount)
	assert.False(t, offers[0].CreatedAt.IsZero())

	assert.Equal(t, models.OfferStatusUnknown, offers[1].Status)
	assert.Equal(t, models.CoveragePremium, offers[1].CoverageAmount)
	assert.True(t, offers[1].CreatedAt.IsZero())
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), offers[1].RequestedStartDate.Time)

	assert.Equal(t, models.CoverageBasic, offers[2].CoverageAmount)
	assert.True(t, offers[2].CreatedAt.IsZero())
}

func TestUpdateOffer_Body(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/offers/9", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "950", body["basePrice"])
		assert.Equal(t, "0", body["discountRate"])
		assert.Equal(t, "approved", body["status"])
		assert.Equal(t, "0", body["finalPrice"])

		io.WriteString(w, `{"offerId":9,"status":"approved","basePrice":950,"finalPrice":950}`)
	})

	offer, err := c.UpdateOffer(context.Background(), 9, models.UpdateOfferRequest{
		BasePrice:    decimal.NewFromInt(950),
		DiscountRate: decimal.Zero,
		Status:       models.OfferApproved,
		FinalPrice:   decimal.Zero,
	})
	require.NoError(t, err)
	assert.True(t, offer.FinalPrice.Equal(decimal.NewFromInt(950)))
}

func TestDeleteOffer_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteOffer(context.Background(), 4))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Agent not found"}`, sentinel: ErrNotFound, message: "Agent not found"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"token expired"}`, sentinel: ErrUnauthorized, message: "token expired"},
		{name: "server error plain text", status: http.StatusInternalServerError, body: "boom\n", message: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.GetAgentByUserID(context.Background(), 1)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			} else {
				assert.NotErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListOffers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentURL(t *testing.T) {
	c := NewPortalClient("https://api.broker.test/v2/", time.Second)
	assert.Equal(t, "https://api.broker.test/uploads/policy-1.pdf", c.DocumentURL("/uploads/policy-1.pdf"))
	assert.Equal(t, "https://api.broker.test/uploads/a.png", c.DocumentURL("uploads/a.png"))
	assert.Equal(t, "https://cdn.test/x.pdf", c.DocumentURL("https://cdn.test/x.pdf"))
	assert.Equal(t, "", c.DocumentURL(""))

	custom := NewPortalClient("https://api.broker.test", time.Second, WithDocumentsOrigin("https://files.broker.test/"))
	assert.Equal(t, "https://files.broker.test/uploads/a.png", custom.DocumentURL("/uploads/a.png"))
}
