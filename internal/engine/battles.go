// Battle advancement: phase progression, casualty application, resolution,
// and war score payout.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/world"
)

// Per-phase casualty pressure. Pursuit is where routed armies die.
var phaseIntensity = map[conflict.BattlePhase]float64{
	conflict.PhaseEngagement: 0.02,
	conflict.PhaseMelee:      0.06,
	conflict.PhasePursuit:    0.04,
}

const battleScoreValue = 10

// OpenBattle starts a battle inside a war at a location, snapshotting the
// terrain and weather there for its whole duration.
func (c *Campaign) OpenBattle(warID uuid.UUID, location world.SettlementRef, battleType conflict.BattleType, attackers, defenders []*military.Army) *conflict.Battle {
	x, y := battleCoordinates(location)
	terrain := c.Sampler.TerrainAt(x, y)
	weather := c.Sampler.WeatherAt(x, y, c.CurrentSeason)

	b := conflict.NewBattle(warID, location, battleType, c.LastTick, terrain, weather)
	for _, a := range attackers {
		b.AddArmy(a.ID, conflict.SideAttacker, a.TotalTroops())
		_ = a.SetStatus(military.ArmyInBattle)
	}
	for _, a := range defenders {
		b.AddArmy(a.ID, conflict.SideDefender, a.TotalTroops())
		_ = a.SetStatus(military.ArmyInBattle)
	}

	b.AppendLog(c.LastTick, "battle joined on %s under %s",
		world.TerrainName(terrain.Terrain), weather.Description)
	c.Battles = append(c.Battles, b)
	c.recordEvent(c.LastTick, "battle", fmt.Sprintf(
		"%s near %s begins", conflict.BattleTypeName(battleType), c.settlementName(location)))
	return b
}

// battleCoordinates derives stable sampling coordinates for a location so
// the same ground always produces the same terrain.
func battleCoordinates(location world.SettlementRef) (float64, float64) {
	id := location.ID
	x := float64(uint16(id[0])<<8|uint16(id[1])) / 256.0
	y := float64(uint16(id[2])<<8|uint16(id[3])) / 256.0
	return x, y
}

// tickBattles advances every ongoing battle one phase.
func (c *Campaign) tickBattles(tick uint64) {
	for _, b := range c.Battles {
		if b.Status != conflict.BattleOngoing {
			continue
		}
		if err := c.advanceBattle(tick, b); err != nil {
			slog.Error("battle advancement failed", "battle", b.ID, "error", err)
		}
	}
}

func (c *Campaign) advanceBattle(tick uint64, b *conflict.Battle) error {
	if intensity, fighting := phaseIntensity[b.Phase]; fighting {
		c.applyPhaseCasualties(tick, b, intensity)
	}

	if b.Phase == conflict.PhaseAftermath {
		return c.resolveBattle(tick, b)
	}
	return b.AdvancePhase()
}

// applyPhaseCasualties computes and applies one phase's losses. Stronger
// sides inflict more; terrain, weather, supplies, and mercenary quality all
// weigh in. The random swing comes from the injected dice.
func (c *Campaign) applyPhaseCasualties(tick uint64, b *conflict.Battle, intensity float64) {
	attackPower := c.sidePower(b, conflict.SideAttacker) * b.Terrain.AttackerMod
	defensePower := c.sidePower(b, conflict.SideDefender) * b.Terrain.DefenderMod
	total := attackPower + defensePower
	if total <= 0 {
		return
	}

	swing := 0.8 + 0.4*c.Dice.Float()
	combatMod := b.Weather.CombatMod * swing

	defenderLosses := int(float64(b.DefenderTroopsStart) * intensity * (attackPower / total) * combatMod)
	attackerLosses := int(float64(b.AttackerTroopsStart) * intensity * (defensePower / total) * combatMod)

	attackerLosses = c.applySideCasualties(b, conflict.SideAttacker, attackerLosses)
	defenderLosses = c.applySideCasualties(b, conflict.SideDefender, defenderLosses)

	_ = b.AddCasualties(conflict.SideAttacker, attackerLosses)
	_ = b.AddCasualties(conflict.SideDefender, defenderLosses)

	if attackerLosses+defenderLosses > 0 {
		b.AppendLog(tick, "%s: %d attackers and %d defenders fall",
			b.Phase, attackerLosses, defenderLosses)
	}
}

// sidePower sums a side's effective attack, scaled by morale, supply state,
// and mercenary reputation.
func (c *Campaign) sidePower(b *conflict.Battle, side conflict.Side) float64 {
	power := 0.0
	for _, p := range b.Participants {
		if p.Side != side {
			continue
		}
		a, ok := c.Army(p.ArmyID)
		if !ok || !a.IsOperational() {
			continue
		}

		strength := float64(a.TotalAttack()+a.TotalDefense()) / 2

		morale := a.Morale
		if morale > 100 {
			morale = 100
		}
		if morale < 0 {
			morale = 0
		}
		strength *= 0.5 + morale/200

		// An army out of supplies fights at a marked disadvantage.
		if !a.HasSupplies() {
			strength *= 0.75
		}

		if m, hired := c.companyForArmy(a.ID); hired {
			strength *= m.ReputationModifier()
		}

		power += strength
	}
	return power
}

// applySideCasualties spreads a side's losses across its armies and returns
// the losses actually taken.
func (c *Campaign) applySideCasualties(b *conflict.Battle, side conflict.Side, losses int) int {
	if losses <= 0 {
		return 0
	}
	applied := 0
	for _, p := range b.Participants {
		if p.Side != side || applied >= losses {
			continue
		}
		a, ok := c.Army(p.ArmyID)
		if !ok {
			continue
		}
		applied += c.spreadCasualties(a, losses-applied)
	}
	return applied
}

// resolveBattle settles an aftermath-phase battle into its final outcome and
// pays war score to the winner's side.
func (c *Campaign) resolveBattle(tick uint64, b *conflict.Battle) error {
	attackerRatio := lossRatio(b.AttackerCasualties, b.AttackerTroopsStart)
	defenderRatio := lossRatio(b.DefenderCasualties, b.DefenderTroopsStart)

	var outcome conflict.BattleStatus
	var winner conflict.Side
	hasWinner := false
	switch {
	case b.TotalCasualties() == 0:
		outcome = conflict.BattleInconclusive
	case attackerRatio < defenderRatio-0.05:
		outcome, winner, hasWinner = conflict.BattleAttackerVictory, conflict.SideAttacker, true
	case defenderRatio < attackerRatio-0.05:
		outcome, winner, hasWinner = conflict.BattleDefenderVictory, conflict.SideDefender, true
	default:
		outcome = conflict.BattleDraw
	}

	if err := b.Resolve(outcome); err != nil {
		return err
	}
	b.AppendLog(tick, "the battle ends: %s (%d dead)", outcome, b.TotalCasualties())
	c.recordEvent(tick, "battle", fmt.Sprintf(
		"%s near %s ends in %s", conflict.BattleTypeName(b.Type), c.settlementName(b.Location), outcome))

	// Release the survivors back to the field.
	for _, p := range b.Participants {
		if a, ok := c.Army(p.ArmyID); ok && a.IsOperational() {
			_ = a.SetStatus(military.ArmyEncamped)
		}
	}

	if hasWinner {
		if w, ok := c.War(b.WarID); ok && w.AddScore(winner, battleScoreValue) {
			for _, p := range b.Participants {
				if p.Side != winner {
					continue
				}
				if a, ok := c.Army(p.ArmyID); ok {
					c.creditContribution(w, a, battleScoreValue)
				}
			}
		}
	}
	return nil
}

func lossRatio(casualties, start int) float64 {
	if start == 0 {
		return 0
	}
	return float64(casualties) / float64(start)
}
