// Package world provides settlement references and the terrain model the war
// engine reads at battle sites. Settlement administration itself lives outside
// this module; only identity and treasury balance cross the boundary.
package world

import "github.com/google/uuid"

// RefKind tags which settlement table a reference points into.
type RefKind uint8

const (
	RefNone RefKind = iota
	RefVillage
	RefTown
	RefCastle
	RefBarony
	RefKingdom
)

// SettlementRef is a typed reference to a settlement. A zero ref (RefNone)
// means "no settlement" — an army in the field, a battle in open terrain.
type SettlementRef struct {
	Kind RefKind   `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// None returns the empty reference.
func None() SettlementRef {
	return SettlementRef{Kind: RefNone}
}

// IsNone reports whether the reference points at no settlement.
func (r SettlementRef) IsNone() bool {
	return r.Kind == RefNone
}

// KindName returns a display label for the reference kind.
func (r SettlementRef) KindName() string {
	switch r.Kind {
	case RefVillage:
		return "village"
	case RefTown:
		return "town"
	case RefCastle:
		return "castle"
	case RefBarony:
		return "barony"
	case RefKingdom:
		return "kingdom"
	default:
		return "field"
	}
}

// Settlement is the narrow settlement view this engine consumes: identity plus
// a treasury balance for loot and jurisdiction checks.
type Settlement struct {
	Ref      SettlementRef
	Name     string
	Treasury uint64
}

// Resolver looks up settlements by reference. Injected into the campaign so
// tests can supply fixtures instead of a live settlement store.
type Resolver interface {
	Resolve(ref SettlementRef) (*Settlement, bool)
}

// MapResolver is an in-memory Resolver backed by a map.
type MapResolver struct {
	settlements map[SettlementRef]*Settlement
}

// NewMapResolver creates an empty in-memory resolver.
func NewMapResolver() *MapResolver {
	return &MapResolver{settlements: make(map[SettlementRef]*Settlement)}
}

// Add registers a settlement under its own reference.
func (m *MapResolver) Add(s *Settlement) {
	m.settlements[s.Ref] = s
}

// Resolve implements Resolver.
func (m *MapResolver) Resolve(ref SettlementRef) (*Settlement, bool) {
	if ref.IsNone() {
		return nil, false
	}
	s, ok := m.settlements[ref]
	return s, ok
}

// All returns every registered settlement.
func (m *MapResolver) All() []*Settlement {
	result := make([]*Settlement, 0, len(m.settlements))
	for _, s := range m.settlements {
		result = append(result, s)
	}
	return result
}
