package models

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// OfferStatus is the lifecycle state of an offer.
// The API spells offer states in lower case ("pending"); the wire value only
// exists in MarshalJSON/UnmarshalJSON/String.
type OfferStatus int

const (
	OfferStatusUnknown OfferStatus = iota
	OfferPending
	OfferApproved
	OfferRejected
	OfferProcessing
	OfferExpired
)

var offerStatusWire = map[OfferStatus]string{
	OfferPending:    "pending",
	OfferApproved:   "approved",
	OfferRejected:   "rejected",
	OfferProcessing: "processing",
	OfferExpired:    "expired",
}

// ParseOfferStatus matches the exact wire literal. "Pending" is not an offer status.
func ParseOfferStatus(s string) (OfferStatus, bool) {
	for status, wire := range offerStatusWire {
		if wire == s {
			return status, true
		}
	}
	return OfferStatusUnknown, false
}

func (s OfferStatus) String() string {
	if wire, ok := offerStatusWire[s]; ok {
		return wire
	}
	return ""
}

// Valid reports whether s is one of the known offer states
func (s OfferStatus) Valid() bool {
	_, ok := offerStatusWire[s]
	return ok
}

func (s OfferStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON never fails on an unrecognised value; it decodes to OfferStatusUnknown
// so that a single odd row cannot break a whole listing.
func (s *OfferStatus) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*s = OfferStatusUnknown
		return nil
	}
	*s, _ = ParseOfferStatus(*raw)
	return nil
}

// ClaimStatus is the lifecycle state of a claim. Claim states are capitalised on the wire.
type ClaimStatus int

const (
	ClaimStatusUnknown ClaimStatus = iota
	ClaimPending
	ClaimApproved
	ClaimRejected
)

var claimStatusWire = map[ClaimStatus]string{
	ClaimPending:  "Pending",
	ClaimApproved: "Approved",
	ClaimRejected: "Rejected",
}

// ParseClaimStatus matches the exact wire literal
func ParseClaimStatus(s string) (ClaimStatus, bool) {
	for status, wire := range claimStatusWire {
		if wire == s {
			return status, true
		}
	}
	return ClaimStatusUnknown, false
}

func (s ClaimStatus) String() string {
	if wire, ok := claimStatusWire[s]; ok {
		return wire
	}
	return ""
}

func (s ClaimStatus) Valid() bool {
	_, ok := claimStatusWire[s]
	return ok
}

func (s ClaimStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *ClaimStatus) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*s = ClaimStatusUnknown
		return nil
	}
	*s, _ = ParseClaimStatus(*raw)
	return nil
}

// CoverageTier is the uplift percentage applied to an offer's base price
type CoverageTier int

const (
	CoverageBasic   CoverageTier = 0
	CoverageMedium  CoverageTier = 25
	CoveragePremium CoverageTier = 40
)

// ParseCoverageTier accepts only the three known uplift values
func ParseCoverageTier(n int) (CoverageTier, error) {
	switch CoverageTier(n) {
	case CoverageBasic, CoverageMedium, CoveragePremium:
		return CoverageTier(n), nil
	}
	return 0, fmt.Errorf("unknown coverage tier: %d", n)
}

// UnmarshalJSON accepts 25, 25.0 and "25". Anything else decodes to CoverageBasic.
func (c *CoverageTier) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	n, err := decimal.NewFromString(raw)
	if err != nil || !n.IsInteger() {
		if raw != "null" {
			slog.Debug("Ignoring unrecognised coverage amount", "value", string(data))
		}
		*c = CoverageBasic
		return nil
	}
	*c = CoverageTier(n.IntPart())
	return nil
}

// UpliftPercent returns the tier as a percentage
func (c CoverageTier) UpliftPercent() int {
	return int(c)
}

func (c CoverageTier) Label() string {
	switch c {
	case CoverageBasic:
		return "Basic"
	case CoverageMedium:
		return "Medium"
	case CoveragePremium:
		return "Premium"
	}
	return fmt.Sprintf("%d%%", int(c))
}

// Role is the portal role of a user
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// UnmarshalJSON folds the API's upper-case role names ("AGENT", "ROLE_AGENT") to Role values
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	raw = strings.ToLower(strings.TrimSpace(raw))
	*r = Role(strings.TrimPrefix(raw, "role_"))
	return nil
}
