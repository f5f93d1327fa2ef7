// War status drift and conclusion. The war exposes an advisory winning side;
// this process decides when the status actually moves and when peace comes.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/warmarch/internal/conflict"
)

// A contested war this old grinds to a white peace.
const exhaustionTicks = 10 * SeasonsPerYear * TicksPerSeason

// DeclareWar opens a war between two parties and registers it.
func (c *Campaign) DeclareWar(attacker, defender conflict.PartyRef, casus conflict.CasusBelli) *conflict.War {
	w := conflict.DeclareWar(attacker, defender, casus, c.LastTick)
	c.AddWar(w)
	c.recordEvent(c.LastTick, "war", fmt.Sprintf(
		"war declared: %s against %s (%s)",
		attacker.KindName(), defender.KindName(), conflict.CasusBelliName(casus)))
	return w
}

// tickWars drifts each active war's status toward the side currently winning
// and concludes wars that have reached a decisive score or ground themselves
// out.
func (c *Campaign) tickWars(tick uint64) {
	for _, w := range c.Wars {
		if w.IsEnded() {
			continue
		}
		if err := c.advanceWar(tick, w); err != nil {
			slog.Error("war advancement failed", "war", w.ID, "error", err)
		}
	}
}

func (c *Campaign) advanceWar(tick uint64, w *conflict.War) error {
	// Decisive score ends the war outright.
	if w.AttackerScore >= conflict.DecisiveScore && w.AttackerScore > w.DefenderScore {
		return c.concludeWar(tick, w, conflict.WarAttackerVictory)
	}
	if w.DefenderScore >= conflict.DecisiveScore && w.DefenderScore > w.AttackerScore {
		return c.concludeWar(tick, w, conflict.WarDefenderVictory)
	}

	// Long, contested wars exhaust both sides into a white peace.
	if winner, ok := w.WinningSide(); !ok {
		if tick-w.DeclaredTick >= exhaustionTicks {
			return c.concludeWar(tick, w, conflict.WarWhitePeace)
		}
	} else {
		// Drift the status toward the winning side, once.
		want := conflict.WarAttackerWinning
		if winner == conflict.SideDefender {
			want = conflict.WarDefenderWinning
		}
		if w.Status != want {
			if err := w.MarkWinning(winner); err != nil {
				return err
			}
			c.recordEvent(tick, "war", fmt.Sprintf(
				"the %s now holds the upper hand (%d : %d)",
				conflict.SideName(winner), w.AttackerScore, w.DefenderScore))
		}
	}
	return nil
}

func (c *Campaign) concludeWar(tick uint64, w *conflict.War, status conflict.WarStatus) error {
	terms := peaceTerms(w, status)
	if err := w.Conclude(status, terms, tick); err != nil {
		return err
	}

	// An ended war releases its sieges; accumulated war score stands.
	for _, s := range c.Sieges {
		if s.WarID == w.ID && s.IsOngoing() {
			if err := s.Lift(); err == nil {
				s.AppendLog(tick, "the siege is lifted as the war ends")
			}
		}
	}

	c.recordEvent(tick, "war", fmt.Sprintf("the war ends: %s", terms))
	slog.Info("war concluded",
		"war", w.ID,
		"status", w.Status,
		"attacker_score", w.AttackerScore,
		"defender_score", w.DefenderScore,
		"duration_days", tick-w.DeclaredTick,
	)
	return nil
}

func peaceTerms(w *conflict.War, status conflict.WarStatus) string {
	switch status {
	case conflict.WarAttackerVictory:
		return fmt.Sprintf("the %s enforces every achieved goal", conflict.SideName(conflict.SideAttacker))
	case conflict.WarDefenderVictory:
		return fmt.Sprintf("the %s repels the aggression and claims reparations", conflict.SideName(conflict.SideDefender))
	default:
		return "status quo ante bellum"
	}
}
