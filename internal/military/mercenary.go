package military

import (
	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/world"
)

// Reputation grades a mercenary company's track record.
type Reputation uint8

const (
	ReputationUnknown Reputation = iota
	ReputationPoor
	ReputationAverage
	ReputationGood
	ReputationLegendary
)

// ReputationName returns a display label for a reputation grade.
func ReputationName(r Reputation) string {
	switch r {
	case ReputationPoor:
		return "poor"
	case ReputationAverage:
		return "average"
	case ReputationGood:
		return "good"
	case ReputationLegendary:
		return "legendary"
	default:
		return "unknown"
	}
}

// Specialization is a company's field of expertise.
type Specialization uint8

const (
	SpecInfantry Specialization = iota
	SpecCavalry
	SpecSiegecraft
	SpecRaiding
)

// SpecializationName returns a display name for a specialization.
func SpecializationName(s Specialization) string {
	switch s {
	case SpecInfantry:
		return "infantry"
	case SpecCavalry:
		return "cavalry"
	case SpecSiegecraft:
		return "siegecraft"
	case SpecRaiding:
		return "raiding"
	default:
		return "unknown"
	}
}

// HirerKind tags who holds a mercenary contract.
type HirerKind uint8

const (
	HirerNone HirerKind = iota
	HirerPlayer
	HirerPolity
)

// HirerRef identifies a contract holder.
type HirerRef struct {
	Kind   HirerKind           `json:"kind"`
	Polity world.SettlementRef `json:"polity,omitzero"`
	ID     uuid.UUID           `json:"id,omitzero"`
}

// MercenaryCompany is a hireable fighting company, optionally bound to an
// army it fields. Contract expiry is handled by the payroll tick, not here.
type MercenaryCompany struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Reputation     Reputation     `json:"reputation"`
	Specialization Specialization `json:"specialization"`

	ArmyID *uuid.UUID `json:"army_id,omitempty"`

	HiredBy               HirerRef `json:"hired_by"`
	HireCost              uint64   `json:"hire_cost"`
	DailyCost             uint64   `json:"daily_cost"`
	ContractDaysRemaining int      `json:"contract_days_remaining"`
	Available             bool     `json:"is_available"`
}

// NewMercenaryCompany creates an available company with no contract.
func NewMercenaryCompany(name string, rep Reputation, spec Specialization, hireCost, dailyCost uint64) *MercenaryCompany {
	return &MercenaryCompany{
		ID:             uuid.New(),
		Name:           name,
		Reputation:     rep,
		Specialization: spec,
		HireCost:       hireCost,
		DailyCost:      dailyCost,
		Available:      true,
	}
}

// ReputationModifier multiplies effective combat performance and hiring cost.
func (m *MercenaryCompany) ReputationModifier() float64 {
	switch m.Reputation {
	case ReputationPoor:
		return 0.8
	case ReputationGood:
		return 1.2
	case ReputationLegendary:
		return 1.5
	default:
		return 1.0
	}
}

// IsHired reports whether the company is under an active contract.
func (m *MercenaryCompany) IsHired() bool {
	return !m.Available && m.ContractDaysRemaining > 0
}

// Hire binds the company to a hirer for a contract length in days.
// Fails with ErrInvalidTransition if the company is already engaged.
func (m *MercenaryCompany) Hire(by HirerRef, days int) error {
	if !m.Available {
		return ErrInvalidTransition
	}
	m.Available = false
	m.HiredBy = by
	m.ContractDaysRemaining = days
	return nil
}

// Release returns the company to the open market. Called by the payroll tick
// on contract expiry or a missed payment.
func (m *MercenaryCompany) Release() {
	m.Available = true
	m.HiredBy = HirerRef{}
	m.ContractDaysRemaining = 0
}
