package battle

import (
	"spiritclash/internal/combat"
	"spiritclash/internal/logging"
)

// run advances phases until one of them waits: for player input, for the
// inter-turn pause, or at game over.
func (s *Session) run() {
	for !s.closed {
		next, ok := s.step()
		if !ok {
			return
		}
		s.phase = next
	}
}

func (s *Session) step() (Phase, bool) {
	switch s.phase {
	case PhasePlayerStart:
		return s.turnStart(teamPlayer)
	case PhasePlayerExecute:
		return s.playerExecute()
	case PhasePlayerEnd:
		return s.turnEnd(teamPlayer)
	case PhaseEnemyStart:
		return s.turnStart(teamEnemy)
	case PhaseEnemyAction:
		return s.enemyAction()
	case PhaseEnemyEnd:
		return s.turnEnd(teamEnemy)
	default:
		// setup, player_action and game_over wait for something outside
		// the loop.
		return s.phase, false
	}
}

func (s *Session) turnStart(t team) (Phase, bool) {
	// A damage-over-time tick at the end of the previous turn may already
	// have decided the battle.
	if s.checkTerminal(t) {
		return PhaseGameOver, true
	}
	s.replaceFallen()

	self, _ := s.sides(t)
	c := self.Current()
	c.Blocking = false
	tick := combat.TickStartOfTurn(c)
	*self = self.Replace(tick.Combatant)
	s.logAll(tick.Log)
	if tick.Healed > 0 {
		s.present(combat.EventHeal, map[string]any{"target": c.ID, "amount": tick.Healed})
		s.present(combat.EventGlow, map[string]any{"target": c.ID})
	}

	if tick.Unleashed {
		s.unleash(t, tick.Charge)
		if s.checkTerminal(t.other()) {
			return PhaseGameOver, true
		}
		s.replaceFallen()
		if t == teamPlayer {
			return PhasePlayerEnd, true
		}
		return PhaseEnemyEnd, true
	}
	if t == teamPlayer {
		s.present(combat.EventMenu, nil)
		return PhasePlayerAction, true
	}
	return PhaseEnemyAction, true
}

func (s *Session) playerExecute() (Phase, bool) {
	if s.checkTerminal(teamEnemy) {
		return PhaseGameOver, true
	}
	s.replaceFallen()
	return PhasePlayerEnd, true
}

func (s *Session) enemyAction() (Phase, bool) {
	e := s.enemies.Current()
	act, logs := s.selector.Select(s.scripts[e.ID], s.enemyStep, e)
	s.enemyStep++
	s.logAll(logs)
	switch act.Kind {
	case combat.ActionGuard:
		e.Blocking = true
		s.enemies = s.enemies.Replace(e)
		s.logf("%s braces for the next hit.", e.Name)
	default:
		s.strike(teamEnemy, act.Skill)
	}
	if s.checkTerminal(teamPlayer) {
		return PhaseGameOver, true
	}
	s.replaceFallen()
	return PhaseEnemyEnd, true
}

func (s *Session) turnEnd(t team) (Phase, bool) {
	self, _ := s.sides(t)
	c := self.Current()
	tick := combat.TickEndOfTurn(c)
	*self = self.Replace(tick.Combatant)
	s.logAll(tick.Log)
	if tick.DotDamage > 0 {
		s.present(combat.EventHit, map[string]any{"target": c.ID, "amount": tick.DotDamage, "source": "dot"})
		s.present(combat.EventShake, map[string]any{"target": c.ID})
	}
	if s.checkTerminal(t) {
		return PhaseGameOver, true
	}
	s.replaceFallen()

	next := PhaseEnemyStart
	if t == teamEnemy {
		next = PhasePlayerStart
		s.turn++
	}
	s.pause(next)
	return s.phase, false
}

// pause schedules the move to next after the turn delay. Input is rejected
// until it fires.
func (s *Session) pause(next Phase) {
	s.paused = true
	s.generation++
	gen := s.generation
	s.cancelPending = s.deps.Scheduler.After(s.deps.TurnDelay, func() {
		s.resume(gen, next)
	})
}

func (s *Session) resume(gen int, next Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.paused = false
	s.cancelPending = nil
	s.phase = next
	s.run()
}

// strike resolves skill from the active member of t against the opposing
// active member.
func (s *Session) strike(t team, skill combat.Skill) {
	self, opp := s.sides(t)
	out := combat.ResolveSkill(self.Current().Snapshot(), opp.Current().Snapshot(), skill, s.deps.Catalog.Passives)
	s.logAll(out.Log)
	s.land(t, out)
}

func (s *Session) unleash(t team, ch combat.Charge) {
	_, opp := s.sides(t)
	out := combat.ResolveCharge(ch, opp.Current().Snapshot())
	s.logAll(out.Log)
	s.land(t, out)
}

// land applies an outcome: damage through shield and block, the defender's
// on-hit reactions, then healing and self effects on the attacker.
func (s *Session) land(t team, out combat.Outcome) {
	self, opp := s.sides(t)
	attacker := self.Current()
	defender := opp.Current()

	if out.Damage > 0 {
		var dealt int
		var msg string
		defender, dealt, msg = combat.AbsorbHit(defender, out.Damage)
		if msg != "" {
			s.logf("%s", msg)
		}
		defender = defender.Damaged(dealt)
		s.logf("%s takes %d damage. (%d/%d)", defender.Name, dealt, defender.Health, defender.Stats.MaxHealth)
		if dealt > 0 {
			s.present(combat.EventHit, map[string]any{"target": defender.ID, "amount": dealt})
			s.present(combat.EventShake, map[string]any{"target": defender.ID})
		}

		react := combat.OnGetHit(defender, attacker, dealt, s.deps.Catalog.Passives)
		s.logAll(react.Log)
		if react.Reflected > 0 {
			attacker = attacker.Damaged(react.Reflected)
			s.present(combat.EventHit, map[string]any{"target": attacker.ID, "amount": react.Reflected, "source": "thorns"})
			s.present(combat.EventShake, map[string]any{"target": attacker.ID})
		}
		for _, e := range react.AttackerEffects {
			var line string
			attacker, line = combat.ApplyEffect(attacker, e)
			s.logf("%s", line)
		}
	}

	if defender.Alive() {
		for _, e := range out.EffectsForTarget {
			var line string
			defender, line = combat.ApplyEffect(defender, e)
			s.logf("%s", line)
		}
	}

	if out.Healing > 0 && attacker.Alive() {
		before := attacker.Health
		attacker = attacker.Healed(out.Healing)
		if gained := attacker.Health - before; gained > 0 {
			s.logf("%s recovers %d health.", attacker.Name, gained)
			s.present(combat.EventHeal, map[string]any{"target": attacker.ID, "amount": gained})
			s.present(combat.EventGlow, map[string]any{"target": attacker.ID})
		}
	}
	if attacker.Alive() {
		for _, e := range out.EffectsForCaster {
			var line string
			attacker, line = combat.ApplyEffect(attacker, e)
			s.logf("%s", line)
		}
	}

	*opp = opp.Replace(defender)
	*self = self.Replace(attacker)
}

// checkTerminal ends the battle when a side is wiped. The side named first
// is checked first, so when one action wipes both sides the team that took
// the action's main hit decides the result.
func (s *Session) checkTerminal(first team) bool {
	for _, t := range []team{first, first.other()} {
		side, _ := s.sides(t)
		if !side.Wiped() {
			continue
		}
		if t == teamPlayer {
			s.finish(StateDefeat)
		} else {
			s.finish(StateVictory)
		}
		return true
	}
	return false
}

// replaceFallen sends in the next living member on each side whose active
// combatant has fainted.
func (s *Session) replaceFallen() {
	for _, t := range []team{teamEnemy, teamPlayer} {
		side, _ := s.sides(t)
		cur := side.Current()
		if cur.Alive() {
			continue
		}
		idx := side.NextBenchIndex()
		if idx < 0 {
			continue
		}
		*side, _ = side.TrySwitchTo(idx)
		s.logf("%s fainted!", cur.Name)
		if t == teamPlayer {
			s.logf("Go, %s!", side.Current().Name)
		} else {
			s.logf("%s steps forward!", side.Current().Name)
			s.enemyStep = 0
		}
		s.present(combat.EventSwitch, map[string]any{"to": side.Current().ID, "index": idx})
	}
}

func (s *Session) finish(state State) {
	s.state = state
	s.phase = PhaseGameOver
	p := s.deps.Persistence
	switch state {
	case StateVictory:
		s.logf("Victory!")
		rw := s.encounter.Rewards
		if rw.Currency > 0 {
			if err := p.GrantVictoryReward(rw.Currency); err != nil {
				logging.Error("grant victory reward", err, logging.Fields{"session": s.id})
			} else {
				s.logf("You earned %d coins.", rw.Currency)
			}
		}
		for _, spiritID := range sortedKeys(rw.Essence) {
			amount := rw.Essence[spiritID]
			if amount <= 0 {
				continue
			}
			if err := p.GrantEssence(spiritID, amount); err != nil {
				logging.Error("grant essence", err, logging.Fields{"session": s.id, "spirit": spiritID})
				continue
			}
			s.logf("You earned %d %s essence.", amount, spiritID)
		}
		s.healParty()
	case StateDefeat:
		s.logf("Your party was defeated...")
		s.healParty()
	}
	logging.Info("battle finished", logging.Fields{"session": s.id, "state": string(state), "turns": s.turn})
}

// healParty restores the whole party in storage and mirrors it in the
// session so a later write-back does not undo it.
func (s *Session) healParty() {
	if err := s.deps.Persistence.HealAllToFull(); err != nil {
		logging.Error("heal party", err, logging.Fields{"session": s.id})
		return
	}
	for i, c := range s.party.Members {
		s.party = s.party.ReplaceAt(i, c.WithHealth(c.Stats.MaxHealth))
	}
}
