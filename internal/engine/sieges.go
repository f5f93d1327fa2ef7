// Siege advancement: investment, bombardment, starvation, assault rolls,
// and capture. The siege entity computes the odds; this process rolls them.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

const lootShare = 4 // Captured settlements yield a quarter of their treasury.

// BeginSiege opens a siege of a settlement by an army inside a war and moves
// the army into its siege lines.
func (c *Campaign) BeginSiege(warID uuid.UUID, army *military.Army, target world.SettlementRef, fortification, garrison, garrisonMorale, garrisonSupplies int) (*conflict.Siege, error) {
	if err := army.SetStatus(military.ArmyBesieging); err != nil {
		return nil, err
	}
	s := conflict.BeginSiege(warID, army.ID, target, fortification, garrison, garrisonMorale, garrisonSupplies)
	s.AppendLog(c.LastTick, "%s invests %s", army.Name, c.settlementName(target))
	c.Sieges = append(c.Sieges, s)
	c.recordEvent(c.LastTick, "siege", fmt.Sprintf("%s lays siege to %s", army.Name, c.settlementName(target)))
	return s, nil
}

// tickSieges advances every ongoing siege by one day.
func (c *Campaign) tickSieges(tick uint64) {
	for _, s := range c.Sieges {
		if !s.IsOngoing() {
			continue
		}
		if err := c.advanceSiege(tick, s); err != nil {
			// One stuck siege must not stall the rest of the world.
			slog.Error("siege advancement failed", "siege", s.ID, "error", err)
		}
	}
}

func (c *Campaign) advanceSiege(tick uint64, s *conflict.Siege) error {
	army, ok := c.Army(s.ArmyID)
	if !ok || !army.IsOperational() {
		// The besieger is gone; the siege breaks on its own.
		if err := s.Abandon(); err != nil {
			return err
		}
		s.AppendLog(tick, "the siege collapses with no army to press it")
		return nil
	}

	s.DaysBesieged++

	// The garrison eats from its own stores, not the attacker's.
	s.SuppliesRemaining -= 1 + s.GarrisonStrength/100
	if s.SuppliesRemaining < 0 {
		s.SuppliesRemaining = 0
	}

	if s.IsStarving() {
		s.GarrisonMorale -= starvationMoralePenalty
		if s.GarrisonMorale < 0 {
			s.GarrisonMorale = 0
		}
		if s.DaysBesieged%7 == 0 {
			s.AppendLog(tick, "the garrison of %s starves behind its walls", c.settlementName(s.Target))
		}
	}

	// A starved, broken garrison opens the gates.
	if s.IsStarving() && s.GarrisonMorale <= 0 && s.Status == conflict.SiegeActive {
		if err := s.BeginAssault(); err == nil {
			// Walls no longer matter when the gates open from inside.
			_ = s.RecordBreach()
			s.AppendLog(tick, "the starving garrison of %s opens the gates", c.settlementName(s.Target))
			return c.captureSiege(tick, s, army)
		}
	}

	// Bombardment: engineers and siege works grind the fortifications down.
	if army.HasUnitType(military.UnitSiegeEngineers) || len(s.Equipment) > 0 {
		reduction := 1 + c.Dice.Intn(3)
		s.FortificationLevel -= reduction
		if s.FortificationLevel < 0 {
			s.FortificationLevel = 0
		}
		if s.FortificationLevel == 0 || s.DaysBesieged%7 == 0 {
			s.AppendLog(tick, "siege engines batter %s (fortification %d)",
				c.settlementName(s.Target), s.FortificationLevel)
		}
	}

	switch s.Status {
	case conflict.SiegeActive:
		if s.CanAssault() {
			// Storming the walls burns an extra day of stores up front.
			if err := army.SpendSupplies(army.DailySupplyCost); err != nil {
				break
			}
			if err := s.BeginAssault(); err != nil {
				return err
			}
			s.AppendLog(tick, "%s storms the walls of %s", army.Name, c.settlementName(s.Target))
		}
	case conflict.SiegeAssault:
		return c.resolveAssault(tick, s, army)
	case conflict.SiegeBreached:
		// Pour through the breach; one more roll against the easier odds.
		if c.Dice.Percent() > s.AssaultDifficulty() {
			return c.captureSiege(tick, s, army)
		}
		c.assaultLosses(tick, s, army)
	}
	return nil
}

// resolveAssault rolls an assault in progress against the siege's difficulty
// score. Success breaches the walls; failure throws the attacker back.
func (c *Campaign) resolveAssault(tick uint64, s *conflict.Siege, army *military.Army) error {
	if c.Dice.Percent() > s.AssaultDifficulty() {
		if err := s.RecordBreach(); err != nil {
			return err
		}
		s.AppendLog(tick, "the walls of %s are breached", c.settlementName(s.Target))
		c.recordEvent(tick, "siege", fmt.Sprintf("%s breaches %s", army.Name, c.settlementName(s.Target)))

		// The defenders bleed holding the breach.
		s.GarrisonStrength -= s.GarrisonStrength / 10
		s.GarrisonMorale -= 10
		if s.GarrisonMorale < 0 {
			s.GarrisonMorale = 0
		}
		return nil
	}

	if err := s.Repulse(); err != nil {
		return err
	}
	s.AppendLog(tick, "%s is thrown back from the walls of %s", army.Name, c.settlementName(s.Target))
	c.assaultLosses(tick, s, army)
	return nil
}

// assaultLosses bleeds the attacker after a failed push.
func (c *Campaign) assaultLosses(tick uint64, s *conflict.Siege, army *military.Army) {
	losses := s.GarrisonStrength/10 + c.Dice.Intn(s.GarrisonStrength/10+1)
	if losses <= 0 {
		return
	}
	lost := c.spreadCasualties(army, losses)
	if lost > 0 {
		s.AppendLog(tick, "%s loses %d soldiers in the assault", army.Name, lost)
	}
}

// captureSiege ends a breached siege with the settlement taken: loot flows,
// war goals flip, and war score is paid out.
func (c *Campaign) captureSiege(tick uint64, s *conflict.Siege, army *military.Army) error {
	if err := s.Capture(); err != nil {
		return err
	}
	name := c.settlementName(s.Target)
	s.AppendLog(tick, "%s falls to %s after %d days", name, army.Name, s.DaysBesieged)
	c.recordEvent(tick, "siege", fmt.Sprintf("%s has fallen to %s", name, army.Name))

	if err := army.SetStatus(military.ArmyEncamped); err != nil {
		return err
	}
	army.Location = s.Target

	// Loot: a share of the settlement treasury, never more than it holds.
	loot := c.Treasuries.Balance(s.Target) / lootShare
	if loot > 0 {
		if err := c.Treasuries.Withdraw(s.Target, loot, "siege loot"); err == nil {
			army.Treasury.Deposit(loot, "siege loot")
			s.AppendLog(tick, "%s is plundered for %d gold", name, loot)
		}
	}

	c.awardSiegeGoals(tick, s, army)
	return nil
}

// awardSiegeGoals flips any war goals targeting the captured settlement and
// pays their score to the besieger's side. Each goal pays exactly once.
func (c *Campaign) awardSiegeGoals(tick uint64, s *conflict.Siege, army *military.Army) {
	w, ok := c.War(s.WarID)
	if !ok {
		return
	}
	for _, g := range w.Goals {
		if !g.TargetsSettlement(s.Target) {
			continue
		}
		value, achieved := g.Achieve()
		if !achieved {
			continue
		}
		if w.AddScore(g.Side, value) {
			c.creditContribution(w, army, value)
			c.recordEvent(tick, "war", fmt.Sprintf(
				"the fall of %s achieves a %s goal (+%d war score)",
				c.settlementName(s.Target), conflict.GoalTypeName(g.Type), value))
		}
	}
}
