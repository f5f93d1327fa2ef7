// Daily army logistics: supply line rolls, resupply, consumption, pay,
// desertion, and mercenary payroll.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/warmarch/internal/military"
)

const (
	starvationMoralePenalty = 5
	unpaidMoralePenalty     = 2
	desertionMoraleFloor    = 20
	moraleRecoveryCap       = 100
)

// tickSupplyLines rolls disruption for every line of every operational army
// and credits the surviving throughput. The lines expose odds; the dice are
// rolled here.
func (c *Campaign) tickSupplyLines(tick uint64) {
	for _, a := range c.Armies {
		if !a.IsOperational() {
			continue
		}

		incoming := 0
		for _, sl := range a.SupplyLines {
			if sl.Status != military.SupplySevered && c.Dice.Percent() <= sl.DisruptionChance() {
				degraded := sl.Degrade()
				c.recordEvent(tick, "supply", fmt.Sprintf(
					"supply line to %s is %s", a.Name, military.SupplyStatusName(degraded)))
			}
			incoming += sl.EffectiveSupplyRate()
		}
		a.Supplies += incoming
	}
}

// tickUpkeep consumes daily supplies and gold for every operational army and
// applies starvation and pay-shortfall penalties.
func (c *Campaign) tickUpkeep(tick uint64) {
	for _, a := range c.Armies {
		if !a.IsOperational() || a.TotalTroops() == 0 {
			continue
		}

		// Supplies.
		a.Supplies -= a.DailySupplyCost
		if a.Supplies < 0 {
			a.Supplies = 0
		}
		starving := !a.HasSupplies()
		if starving {
			a.Morale -= starvationMoralePenalty
		}

		// Gold.
		unpaid := false
		if a.GoldUpkeep > 0 {
			if err := a.Treasury.Withdraw(a.GoldUpkeep, "army upkeep"); err != nil {
				if !errors.Is(err, military.ErrInsufficientFunds) {
					slog.Error("upkeep withdrawal failed", "army", a.Name, "error", err)
				}
				unpaid = true
				a.Morale -= unpaidMoralePenalty
			}
		}

		// Recovery when fed and paid.
		if !starving && !unpaid && a.Morale < moraleRecoveryCap {
			a.Morale += 1 + a.MoraleBonus()/20
			if a.Morale > moraleRecoveryCap {
				a.Morale = moraleRecoveryCap
			}
		}

		// Hungry or unpaid soldiers slip away in the night.
		if (starving || unpaid) && a.Morale < desertionMoraleFloor {
			c.applyDesertion(tick, a, starving)
		}
	}
}

// applyDesertion rolls for troop loss in a demoralized army.
func (c *Campaign) applyDesertion(tick uint64, a *military.Army, starving bool) {
	troops := a.TotalTroops()
	if troops == 0 {
		return
	}

	// Worse odds when actively starving.
	chance := 15
	if starving {
		chance = 30
	}
	if c.Dice.Percent() > chance {
		return
	}

	deserters := troops / 20
	if deserters < 1 {
		deserters = 1
	}
	lost := c.spreadCasualties(a, deserters)
	a.RefreshComposition()

	cause := "unpaid wages"
	if starving {
		cause = "starvation"
	}
	c.recordEvent(tick, "army", fmt.Sprintf("%d soldiers desert %s (%s)", lost, a.Name, cause))

	if a.TotalTroops() == 0 {
		if err := a.Disband(); err == nil {
			c.recordEvent(tick, "army", fmt.Sprintf("%s has melted away entirely", a.Name))
		}
	}
}

// spreadCasualties distributes losses across live units, largest first,
// and returns the losses actually taken.
func (c *Campaign) spreadCasualties(a *military.Army, total int) int {
	applied := 0
	for total > applied {
		var biggest *military.ArmyUnit
		for _, u := range a.Units {
			if u.IsAlive() && (biggest == nil || u.Count > biggest.Count) {
				biggest = u
			}
		}
		if biggest == nil {
			break
		}
		share := (total - applied + 1) / 2
		applied += biggest.ApplyCasualties(share)
	}
	a.RefreshComposition()
	return applied
}

// tickPayroll counts down mercenary contracts, draws the daily cost from the
// company's war chest, and releases companies whose contracts lapse or whose
// pay stops.
func (c *Campaign) tickPayroll(tick uint64) {
	for _, m := range c.Companies {
		if !m.IsHired() {
			// A lapsed contract returns the company to the market.
			if !m.Available && m.ContractDaysRemaining <= 0 {
				m.Release()
				c.recordEvent(tick, "mercenary", fmt.Sprintf("%s's contract has expired", m.Name))
			}
			continue
		}

		m.ContractDaysRemaining--

		cost := uint64(float64(m.DailyCost) * m.ReputationModifier())
		if cost == 0 || m.ArmyID == nil {
			continue
		}
		army, ok := c.Army(*m.ArmyID)
		if !ok {
			continue
		}
		if err := army.Treasury.Withdraw(cost, "mercenary payroll"); err != nil {
			m.Release()
			c.recordEvent(tick, "mercenary", fmt.Sprintf(
				"%s abandons its contract over unpaid wages", m.Name))
		}
	}
}
