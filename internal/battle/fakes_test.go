package battle

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"spiritclash/internal/combat"
	"spiritclash/internal/config"
	"spiritclash/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeStore struct {
	catalog  *Catalog
	recs     map[string]SpiritRecord
	written  map[string]int
	currency int
	essence  map[string]int
	healed   int
	findErr  error
}

func newFakeStore(c *Catalog, recs ...SpiritRecord) *fakeStore {
	fs := &fakeStore{catalog: c, recs: map[string]SpiritRecord{}, written: map[string]int{}, essence: map[string]int{}}
	for _, r := range recs {
		fs.recs[r.InstanceID] = r
	}
	return fs
}

func (f *fakeStore) FindSpiritsByInstanceID(ids []string) ([]SpiritRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []SpiritRecord
	for _, id := range ids {
		if r, ok := f.recs[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ComputedStats(rec SpiritRecord) (combat.Stats, error) {
	st, ok := f.catalog.StatsFor(rec.SpiritID, rec.Level)
	if !ok {
		return combat.Stats{}, errors.New("unknown species")
	}
	return st, nil
}

func (f *fakeStore) WriteBackHealth(id string, health int) error {
	f.written[id] = health
	return nil
}

func (f *fakeStore) GrantVictoryReward(amount int) error {
	f.currency += amount
	return nil
}

func (f *fakeStore) HealAllToFull() error {
	f.healed++
	return nil
}

func (f *fakeStore) GrantEssence(spiritID string, amount int) error {
	f.essence[spiritID] += amount
	return nil
}

type fakeEncounters struct {
	enc       Encounter
	err       error
	requested int
}

func (f *fakeEncounters) Select(difficulty int) (Encounter, error) {
	f.requested = difficulty
	return f.enc, f.err
}

// leakyScheduler ignores cancellation so stale callbacks can be fired by
// hand.
type leakyScheduler struct {
	fns []func()
}

func (l *leakyScheduler) After(_ time.Duration, fn func()) func() {
	l.fns = append(l.fns, fn)
	return func() {}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(&config.Bundle{
		Skills: &config.SkillsConfig{
			BasicAttack: "basic_attack",
			Skills: []config.Skill{
				{ID: "basic_attack", Name: "Tackle", Damage: 1.0},
				{ID: "big_hit", Name: "Big Hit", Damage: 10, Priority: 10},
				{ID: "bramble", Name: "Bramble", Applies: []config.AppliedEffect{{Type: "thorns", Ratio: 1.0, Turns: 3}}},
				{ID: "gather", Name: "Gather", Applies: []config.AppliedEffect{{Type: "charge", Name: "Beam", Multiplier: 1.0, Heal: 5, Turns: 2}}},
				{ID: "locked", Name: "Locked", Damage: 5, MinLevel: 50},
			},
		},
		Passives: &config.PassivesConfig{Passives: []config.Passive{
			{ID: "toxic", Name: "Toxic Skin", Type: "poison_attacker", Value: 0.05, Turns: 2},
		}},
		Spirits: &config.SpiritsConfig{Spirits: []config.SpiritDef{
			{ID: "hero", Name: "Hero", Base: config.StatBlock{Health: 100, Attack: 50, Defense: 25}, Skills: []string{"big_hit", "gather", "locked"}},
			{ID: "dummy", Name: "Dummy", Base: config.StatBlock{Health: 100, Attack: 10, Defense: 25}},
			{ID: "toad", Name: "Toad", Base: config.StatBlock{Health: 100, Attack: 10, Defense: 25}, Passives: []string{"toxic"}},
			{ID: "glass", Name: "Glass", Base: config.StatBlock{Health: 10, Attack: 10, Defense: 25}, Skills: []string{"bramble"}},
			{ID: "briar", Name: "Briar", Base: config.StatBlock{Health: 100, Attack: 50, Defense: 25}, Skills: []string{"bramble"}},
			{ID: "sprite", Name: "Sprite", Base: config.StatBlock{Health: 10, Attack: 50, Defense: 25}},
		}},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func heroRec(id string, health int) SpiritRecord {
	return SpiritRecord{InstanceID: id, SpiritID: "hero", Level: 10, Health: health}
}

func fight(spirit string, actions ...string) Encounter {
	return Encounter{
		ID:      "test",
		Name:    "Test Fight",
		Enemies: []EnemySpec{{SpiritID: spirit, Level: 10, Actions: actions}},
		Rewards: Rewards{Currency: 25, Essence: map[string]int{spirit: 2}},
	}
}

type harness struct {
	s      *Session
	store  *fakeStore
	encs   *fakeEncounters
	sched  *ManualScheduler
	events []combat.Event
}

func newHarness(t *testing.T, enc Encounter, recs ...SpiritRecord) *harness {
	t.Helper()
	cat := testCatalog(t)
	h := &harness{
		store: newFakeStore(cat, recs...),
		encs:  &fakeEncounters{enc: enc},
		sched: &ManualScheduler{},
	}
	h.s = NewSession(Deps{
		Persistence: h.store,
		Encounters:  h.encs,
		Catalog:     cat,
		Scheduler:   h.sched,
		Presenter:   PresenterFunc(func(ev combat.Event) { h.events = append(h.events, ev) }),
	})
	return h
}

func (h *harness) logText() string {
	return strings.Join(h.s.View().Log, "\n")
}

func (h *harness) enemyHealth() int {
	v := h.s.View()
	return v.Enemies[v.ActiveEnemy].Health
}

func (h *harness) playerHealth() int {
	v := h.s.View()
	return v.Party[v.ActivePlayer].Health
}

func (h *harness) sawEvent(kind string) bool {
	for _, ev := range h.events {
		if ev.Type == kind {
			return true
		}
	}
	return false
}
