// Package battle drives one battle from setup to game over: it owns the
// combatant state, advances the turn phases and talks to the progression,
// encounter and presentation collaborators through ports.
package battle

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spiritclash/internal/combat"
	"spiritclash/internal/logging"
	"spiritclash/internal/util"
)

const (
	MaxPartySize     = 4
	DefaultTurnDelay = 1200 * time.Millisecond
)

type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhasePlayerStart   Phase = "player_start"
	PhasePlayerAction  Phase = "player_action"
	PhasePlayerExecute Phase = "player_execute"
	PhasePlayerEnd     Phase = "player_end"
	PhaseEnemyStart    Phase = "enemy_start"
	PhaseEnemyAction   Phase = "enemy_action"
	PhaseEnemyEnd      Phase = "enemy_end"
	PhaseGameOver      Phase = "game_over"
)

type State string

const (
	StateOngoing State = "ongoing"
	StateVictory State = "victory"
	StateDefeat  State = "defeat"
	StateAborted State = "aborted"
)

type team int

const (
	teamPlayer team = iota
	teamEnemy
)

func (t team) other() team {
	if t == teamPlayer {
		return teamEnemy
	}
	return teamPlayer
}

type Deps struct {
	Persistence Persistence
	Encounters  EncounterSource
	Catalog     *Catalog
	Presenter   Presenter
	Scheduler   Scheduler
	Rng         *rand.Rand
	TurnDelay   time.Duration
}

// Session is one in-progress battle. All methods are safe to call from
// several goroutines; the battle itself advances one phase at a time under
// the session lock.
type Session struct {
	mu       sync.Mutex
	id       string
	deps     Deps
	selector *combat.ActionSelector

	phase  Phase
	state  State
	paused bool
	closed bool

	party     combat.Side
	enemies   combat.Side
	scripts   map[string][]string
	encounter Encounter

	turn      int
	enemyStep int
	log       []string

	cancelPending func()
	generation    int
}

func NewSession(deps Deps) *Session {
	if deps.Presenter == nil {
		deps.Presenter = nopPresenter{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Rng == nil {
		deps.Rng = util.New(1)
	}
	if deps.TurnDelay < 0 {
		deps.TurnDelay = DefaultTurnDelay
	}
	var skills *combat.SkillBook
	if deps.Catalog != nil {
		skills = deps.Catalog.Skills
	}
	return &Session{
		id:       uuid.NewString(),
		deps:     deps,
		selector: combat.NewActionSelector(skills, deps.Rng),
		phase:    PhaseSetup,
		state:    StateOngoing,
		scripts:  map[string][]string{},
	}
}

func (s *Session) ID() string { return s.id }

// Start loads the party and an encounter and hands the first turn to the
// player. Configuration problems abort the battle with a log line; they are
// never returned as errors.
func (s *Session) Start(partyIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSetup || s.state != StateOngoing || s.closed {
		return
	}
	if s.deps.Catalog == nil || s.deps.Persistence == nil || s.deps.Encounters == nil {
		s.abort("The battle cannot start: the engine is not configured.")
		return
	}
	if len(partyIDs) == 0 {
		s.abort("The battle cannot start: the active party is empty.")
		return
	}
	if len(partyIDs) > MaxPartySize {
		partyIDs = partyIDs[:MaxPartySize]
	}

	party, err := s.loadParty(partyIDs)
	if err != nil {
		logging.Error("load party", err, logging.Fields{"session": s.id})
		s.abort("The battle cannot start: the party could not be loaded.")
		return
	}
	if len(party) == 0 {
		s.abort("The battle cannot start: the active party is empty.")
		return
	}

	difficulty := averageLevel(party)
	enc, err := s.deps.Encounters.Select(difficulty)
	if err != nil {
		logging.Error("select encounter", err, logging.Fields{"session": s.id, "difficulty": difficulty})
		s.abort(fmt.Sprintf("The battle cannot start: no encounter found for level %d.", difficulty))
		return
	}
	enemies := s.loadEnemies(enc)
	if len(enemies) == 0 {
		s.abort(fmt.Sprintf("The battle cannot start: encounter %q has no usable enemies.", enc.Name))
		return
	}

	s.party = combat.NewSide(party)
	s.enemies = combat.NewSide(enemies)
	s.encounter = enc
	s.turn = 1
	s.enemyStep = 0

	music := enc.Music
	if music == "" {
		music = "battle"
	}
	s.present(combat.EventMusic, map[string]any{"track": music})
	s.logf("%s begins!", encounterLabel(enc))
	for _, e := range s.enemies.Members {
		s.logf("%s (Lv.%d) appears!", e.Name, e.Stats.Level)
	}
	s.logf("Go, %s!", s.party.Current().Name)
	logging.Info("battle started", logging.Fields{
		"session":   s.id,
		"encounter": enc.ID,
		"party":     len(party),
		"enemies":   len(enemies),
	})

	s.phase = PhasePlayerStart
	s.run()
}

func (s *Session) loadParty(ids []string) (combat.Roster, error) {
	recs, err := s.deps.Persistence.FindSpiritsByInstanceID(ids)
	if err != nil {
		return nil, err
	}
	byID := map[string]SpiritRecord{}
	for _, r := range recs {
		byID[r.InstanceID] = r
	}
	var out combat.Roster
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			s.logf("Spirit %s could not be found and stays home.", id)
			continue
		}
		sp, ok := s.deps.Catalog.Species(rec.SpiritID)
		if !ok {
			s.logf("Spirit %s has an unknown species %q and stays home.", id, rec.SpiritID)
			continue
		}
		stats, err := s.deps.Persistence.ComputedStats(rec)
		if err != nil {
			return nil, fmt.Errorf("stats for %s: %w", id, err)
		}
		name := rec.Nickname
		if name == "" {
			name = sp.Name
		}
		c := combat.NewCombatant(rec.InstanceID, name, sp.Element, stats, rec.Health)
		c.InstanceID = rec.InstanceID
		c.SpiritID = sp.ID
		c.Skills = append([]string(nil), sp.Skills...)
		c.Passives = append([]string(nil), sp.Passives...)
		out = append(out, c)
	}
	return out, nil
}

func (s *Session) loadEnemies(enc Encounter) combat.Roster {
	var out combat.Roster
	for _, spec := range enc.Enemies {
		sp, ok := s.deps.Catalog.Species(spec.SpiritID)
		if !ok {
			s.logf("warning: encounter enemy %q is unknown and was skipped.", spec.SpiritID)
			continue
		}
		stats := sp.StatsAt(spec.Level)
		c := combat.NewCombatant(uuid.NewString(), sp.Name, sp.Element, stats, stats.MaxHealth)
		c.SpiritID = sp.ID
		c.Skills = append([]string(nil), sp.Skills...)
		c.Passives = append([]string(nil), sp.Passives...)
		s.scripts[c.ID] = append([]string(nil), spec.Actions...)
		out = append(out, c)
	}
	return out
}

func averageLevel(r combat.Roster) int {
	if len(r) == 0 {
		return 1
	}
	total := 0
	for _, c := range r {
		total += c.Stats.Level
	}
	return int(math.Round(float64(total) / float64(len(r))))
}

func encounterLabel(enc Encounter) string {
	if enc.Name != "" {
		return enc.Name
	}
	return "The battle"
}

func (s *Session) abort(msg string) {
	s.logf("%s", msg)
	s.state = StateAborted
	logging.Warn("battle aborted", logging.Fields{"session": s.id, "reason": msg})
}

// Attack uses skillID with the active spirit. Ignored outside the player's
// action phase; the result reports whether the intent was taken.
func (s *Session) Attack(skillID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() {
		return false
	}
	skill := s.playerSkill(skillID)
	s.strike(teamPlayer, skill)
	s.phase = PhasePlayerExecute
	s.run()
	return true
}

// Block halves the next hit the active spirit takes.
func (s *Session) Block() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() {
		return false
	}
	p := s.party.Current()
	p.Blocking = true
	s.party = s.party.Replace(p)
	s.logf("%s braces for the next hit.", p.Name)
	s.phase = PhasePlayerExecute
	s.run()
	return true
}

// Swap brings the party member at index into the fight. Ignored when the
// index is out of range, already active or fainted.
func (s *Session) Swap(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() {
		return false
	}
	prev := s.party.Current()
	next, ok := s.party.TrySwitchTo(index)
	if !ok {
		return false
	}
	s.party = next
	s.logf("%s comes back. Go, %s!", prev.Name, s.party.Current().Name)
	s.present(combat.EventSwitch, map[string]any{"to": s.party.Current().ID, "index": index})
	s.phase = PhasePlayerExecute
	s.run()
	return true
}

// Close discards the session. Unless the battle was lost, current health is
// written back first. Any pending inter-turn transition is cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.paused = false
	s.generation++
	if s.cancelPending != nil {
		s.cancelPending()
		s.cancelPending = nil
	}
	if s.state == StateDefeat {
		return
	}
	for _, c := range s.party.Members {
		if c.InstanceID == "" {
			continue
		}
		if err := s.deps.Persistence.WriteBackHealth(c.InstanceID, c.Health); err != nil {
			logging.Error("write back health", err, logging.Fields{"session": s.id, "instance": c.InstanceID})
		}
	}
}

func (s *Session) acceptsInput() bool {
	return !s.closed && !s.paused && s.phase == PhasePlayerAction
}

// playerSkill resolves a requested skill, falling back to the basic attack
// when the active spirit does not know it or has not unlocked it.
func (s *Session) playerSkill(id string) combat.Skill {
	book := s.deps.Catalog.Skills
	p := s.party.Current()
	basic := book.Basic()
	if id == basic.ID {
		return basic
	}
	skill, ok := book.Lookup(id)
	switch {
	case !ok:
		s.logf("warning: unknown skill %q, %s uses %s instead.", id, p.Name, basic.Label())
		return basic
	case !knows(p, id):
		s.logf("warning: %s does not know %s and uses %s instead.", p.Name, skill.Label(), basic.Label())
		return basic
	case !skill.Unlocked(p.Stats.Level):
		s.logf("warning: %s needs level %d, %s uses %s instead.", skill.Label(), skill.MinLevel, p.Name, basic.Label())
		return basic
	}
	return skill
}

func knows(c combat.Combatant, id string) bool {
	for _, s := range c.Skills {
		if s == id {
			return true
		}
	}
	return false
}

func (s *Session) sides(t team) (self, opp *combat.Side) {
	if t == teamPlayer {
		return &s.party, &s.enemies
	}
	return &s.enemies, &s.party
}

func (s *Session) logf(format string, args ...any) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
}

func (s *Session) logAll(lines []string) {
	s.log = append(s.log, lines...)
}

func (s *Session) present(kind string, payload map[string]any) {
	s.deps.Presenter.Present(combat.Event{Turn: s.turn, Type: kind, Payload: payload})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
