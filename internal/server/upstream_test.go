package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"insurance-portal/internal/models"
)

type account struct {
	password string
	token    string
	user     models.User
}

// fakeInsuranceAPI is an in-memory insurance API served over HTTP
type fakeInsuranceAPI struct {
	mu sync.Mutex

	accounts  map[string]account
	agents    map[int64]models.Agent    // by user id
	customers map[int64]models.Customer // by user id
	offers    []models.Offer
	claims    []models.Claim

	updates      map[int64]models.UpdateOfferRequest
	deleted      []int64
	approved     []int64
	quotes       []models.QuoteRequest
	failUpdate   bool
	failListings bool
	logouts      int

	// listingGate, when set, holds offer listings until closed; listingStarted is signalled first
	listingGate    chan struct{}
	listingStarted chan struct{}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFakeInsuranceAPI(t *testing.T) (*fakeInsuranceAPI, *httptest.Server) {
	t.Helper()
	customer := models.Customer{CustomerID: 7, UserID: 20, Name: "Ayşe Yılmaz", Email: "ayse@example.com"}
	health := &models.InsuranceType{InsuranceTypeID: 3, Name: "Health"}

	f := &fakeInsuranceAPI{
		accounts: map[string]account{
			"agent@broker.test":    {"secret1", "tok-agent", models.User{UserID: 10, Email: "agent@broker.test", FirstName: "Mehmet", LastName: "Kaya", Role: models.RoleAgent}},
			"orphan@broker.test":   {"secret1", "tok-orphan", models.User{UserID: 11, Email: "orphan@broker.test", Role: models.RoleAgent}},
			"customer@broker.test": {"secret1", "tok-customer", models.User{UserID: 20, Email: "customer@broker.test", Role: models.RoleCustomer}},
			"admin@broker.test":    {"secret1", "tok-admin", models.User{UserID: 30, Email: "admin@broker.test", Role: models.RoleAdmin}},
		},
		agents: map[int64]models.Agent{
			10: {AgentID: 5, UserID: 10, Name: "Mehmet Kaya", Email: "agent@broker.test", Department: health},
		},
		customers: map[int64]models.Customer{20: customer},
		offers: []models.Offer{
			{OfferID: 1, Customer: &customer, InsuranceType: health, BasePrice: dec("1000"), FinalPrice: dec("1000"), Status: models.OfferPending},
			{OfferID: 2, Customer: &customer, InsuranceType: health, BasePrice: dec("2000"), FinalPrice: dec("1800"), Status: models.OfferApproved},
			{OfferID: 3, Customer: &customer, InsuranceType: health, BasePrice: dec("500"), FinalPrice: dec("500"), Status: models.OfferApproved, IsCustomerApproved: true},
		},
		claims: []models.Claim{
			{ClaimID: 1234, PolicyNumber: "POL-1", Type: "Accident", Status: models.ClaimPending},
			{ClaimID: 5678, PolicyNumber: "POL-2", Type: "Theft", Status: models.ClaimPending},
			{ClaimID: 91234, PolicyNumber: "POL-3", Type: "Fire", Status: models.ClaimApproved},
		},
		updates: make(map[int64]models.UpdateOfferRequest),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, models.HealthResponse{Status: "healthy"})
	})
	r.HandleFunc("/api/auth/login", f.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/agents", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var out []models.Agent
		for _, a := range f.agents {
			out = append(out, a)
		}
		reply(w, http.StatusOK, out)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/agents/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		a, ok := f.agents[varID(r)]
		if !ok {
			reply(w, http.StatusNotFound, map[string]string{"message": "agent not found"})
			return
		}
		reply(w, http.StatusOK, a)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/customers/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		c, ok := f.customers[varID(r)]
		if !ok {
			reply(w, http.StatusNotFound, map[string]string{"message": "customer not found"})
			return
		}
		reply(w, http.StatusOK, c)
	}).Methods(http.MethodGet)

	listOffers := func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		gate, started := f.listingGate, f.listingStarted
		f.mu.Unlock()
		if gate != nil {
			started <- struct{}{}
			<-gate
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failListings {
			reply(w, http.StatusServiceUnavailable, map[string]string{"message": "read replica down"})
			return
		}
		reply(w, http.StatusOK, f.offers)
	}
	r.HandleFunc("/api/offers", listOffers).Methods(http.MethodGet)
	r.HandleFunc("/api/offers/agent/{id}/department", listOffers).Methods(http.MethodGet)
	r.HandleFunc("/api/offers/customer/{id}", listOffers).Methods(http.MethodGet)
	r.HandleFunc("/api/claims/agent/{id}/department", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, f.claims)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/claims/customer/{id}", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []models.Claim{})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/offers/{id}", f.updateOffer).Methods(http.MethodPut)
	r.HandleFunc("/api/offers/{id}", f.deleteOffer).Methods(http.MethodDelete)
	r.HandleFunc("/api/offers/{id}/approve", f.approveOffer).Methods(http.MethodPost)
	r.HandleFunc("/api/offers", f.createOffer).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func varID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (f *fakeInsuranceAPI) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	acc, ok := f.accounts[req.Email]
	if !ok || acc.password != req.Password {
		reply(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
		return
	}
	reply(w, http.StatusOK, models.AuthResponse{Token: acc.token, User: acc.user})
}

func (f *fakeInsuranceAPI) updateOffer(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOfferRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	id := varID(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		reply(w, http.StatusInternalServerError, map[string]string{"message": "database down"})
		return
	}
	f.updates[id] = req
	for i := range f.offers {
		if f.offers[i].OfferID == id {
			f.offers[i].BasePrice = req.BasePrice
			f.offers[i].DiscountRate = decimal.NewNullDecimal(req.DiscountRate)
			f.offers[i].FinalPrice = req.BasePrice.Mul(decimal.NewFromInt(100).Sub(req.DiscountRate)).Div(decimal.NewFromInt(100))
			f.offers[i].Status = req.Status
			reply(w, http.StatusOK, f.offers[i])
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]string{"message": "offer not found"})
}

func (f *fakeInsuranceAPI) deleteOffer(w http.ResponseWriter, r *http.Request) {
	id := varID(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	f.offers = slices.DeleteFunc(f.offers, func(o models.Offer) bool { return o.OfferID == id })
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeInsuranceAPI) approveOffer(w http.ResponseWriter, r *http.Request) {
	id := varID(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, id)
	for i := range f.offers {
		if f.offers[i].OfferID == id {
			f.offers[i].IsCustomerApproved = true
			reply(w, http.StatusOK, f.offers[i])
			return
		}
	}
	reply(w, http.StatusNotFound, map[string]string{"message": "offer not found"})
}

func (f *fakeInsuranceAPI) createOffer(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, req)
	offer := models.Offer{OfferID: 100 + int64(len(f.quotes)), CoverageAmount: req.CoverageAmount, Status: models.OfferPending}
	f.offers = append(f.offers, offer)
	reply(w, http.StatusCreated, offer)
}
