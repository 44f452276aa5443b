// Package sim plays whole battles without a UI so encounter and skill
// tuning can be measured in bulk.
package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"spiritclash/internal/battle"
	"spiritclash/internal/combat"
	"spiritclash/internal/encounter"
	"spiritclash/internal/storage"
	"spiritclash/internal/util"
)

// maxSteps bounds a single run; a battle that has not ended by then is
// reported as unfinished.
const maxSteps = 2000

// lowHealthRatio is the point below which the auto-pilot swaps out.
const lowHealthRatio = 0.25

var ErrBadParty = errors.New("bad party")

type Member struct {
	SpiritID string `json:"spirit_id"`
	Level    int    `json:"level"`
}

type Options struct {
	Party       []Member
	EncounterID string
	Seed        int64
	Record      bool
}

type Result struct {
	State         battle.State   `json:"state"`
	Win           bool           `json:"win"`
	Turns         int            `json:"turns"`
	Encounter     string         `json:"encounter"`
	Finished      bool           `json:"finished"`
	DamageBySkill map[string]int `json:"damage_by_skill,omitempty"`
	Log           []string       `json:"log,omitempty"`
	Events        []combat.Event `json:"events,omitempty"`
	Meta          Meta           `json:"meta"`
}

type Meta struct {
	Seed    int64        `json:"seed"`
	Party   []MemberMeta `json:"party"`
	Enemies []MemberMeta `json:"enemies"`
}

type MemberMeta struct {
	Name      string `json:"name"`
	SpiritID  string `json:"spirit_id"`
	Element   string `json:"element"`
	Level     int    `json:"level"`
	MaxHealth int    `json:"max_health"`
}

// Runner holds the immutable catalogs shared by every run.
type Runner struct {
	catalog    *battle.Catalog
	encounters *encounter.Source
}

func NewRunner(catalog *battle.Catalog, encounters *encounter.Source) *Runner {
	return &Runner{catalog: catalog, encounters: encounters}
}

// Run plays one battle to the end with the auto-pilot driving the party.
func (r *Runner) Run(opts Options) (Result, error) {
	if len(opts.Party) == 0 {
		return Result{}, fmt.Errorf("%w: empty", ErrBadParty)
	}
	store := storage.NewMemory(r.catalog)
	ids := make([]string, 0, len(opts.Party))
	for i, m := range opts.Party {
		if _, ok := r.catalog.Species(m.SpiritID); !ok {
			return Result{}, fmt.Errorf("%w: unknown spirit %q", ErrBadParty, m.SpiritID)
		}
		id := fmt.Sprintf("p%d", i+1)
		if err := store.AddSpirit(battle.SpiritRecord{InstanceID: id, SpiritID: m.SpiritID, Level: m.Level, Health: -1}); err != nil {
			return Result{}, err
		}
		ids = append(ids, id)
	}

	var source battle.EncounterSource = r.encounters
	if opts.EncounterID != "" {
		if _, err := r.encounters.ByID(opts.EncounterID, 1); err != nil {
			return Result{}, err
		}
		source = encounter.Pinned{Source: r.encounters, ID: opts.EncounterID}
	}

	var events []combat.Event
	sched := &battle.ManualScheduler{}
	s := battle.NewSession(battle.Deps{
		Persistence: store,
		Encounters:  source,
		Catalog:     r.catalog,
		Scheduler:   sched,
		Rng:         util.New(opts.Seed),
		Presenter: battle.PresenterFunc(func(ev combat.Event) {
			if opts.Record {
				events = append(events, ev)
			}
		}),
	})
	s.Start(ids)

	damage := map[string]int{}
	finished := false
	for i := 0; i < maxSteps; i++ {
		v := s.View()
		if v.State != battle.StateOngoing {
			finished = true
			break
		}
		if v.AcceptsInput() {
			before := enemyHealth(v)
			label := r.act(s, v)
			if label != "" {
				if dealt := before - enemyHealth(s.View()); dealt > 0 {
					damage[label] += dealt
				}
			}
			continue
		}
		before := enemyHealth(v)
		if !sched.Fire() {
			break
		}
		// Charges, damage over time and thorns land between intents.
		if dealt := before - enemyHealth(s.View()); dealt > 0 {
			damage["other"] += dealt
		}
	}

	v := s.View()
	s.Close()
	res := Result{
		State:         v.State,
		Win:           v.State == battle.StateVictory,
		Turns:         v.Turn,
		Encounter:     v.Encounter,
		Finished:      finished,
		DamageBySkill: damage,
		Meta:          Meta{Seed: opts.Seed},
	}
	for _, c := range v.Party {
		res.Meta.Party = append(res.Meta.Party, memberMeta(c))
	}
	for _, c := range v.Enemies {
		res.Meta.Enemies = append(res.Meta.Enemies, memberMeta(c))
	}
	if opts.Record {
		res.Log = v.Log
		res.Events = events
	}
	return res, nil
}

// act applies the auto-pilot: swap a badly hurt spirit for the healthiest
// benched one, otherwise use the highest priority unlocked skill. It returns
// the skill id used, or "" for a swap.
func (r *Runner) act(s *battle.Session, v battle.View) string {
	cur := v.Party[v.ActivePlayer]
	if float64(cur.Health) < float64(cur.MaxHealth)*lowHealthRatio {
		best := -1
		for i, c := range v.Party {
			if i == v.ActivePlayer || c.Health <= cur.Health {
				continue
			}
			if best < 0 || c.Health > v.Party[best].Health {
				best = i
			}
		}
		if best >= 0 {
			s.Swap(best)
			return ""
		}
	}
	skillID := r.catalog.Skills.Basic().ID
	if len(cur.Skills) > 0 {
		skillID = cur.Skills[0].ID
	}
	s.Attack(skillID)
	return skillID
}

func enemyHealth(v battle.View) int {
	total := 0
	for _, e := range v.Enemies {
		total += e.Health
	}
	return total
}

func memberMeta(c battle.CombatantView) MemberMeta {
	return MemberMeta{Name: c.Name, SpiritID: c.SpiritID, Element: c.Element, Level: c.Level, MaxHealth: c.MaxHealth}
}

// ParseParty reads "spirit:level,spirit:level". A missing level means 1.
func ParseParty(s string) ([]Member, error) {
	var out []Member
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, lvl, hasLevel := strings.Cut(part, ":")
		m := Member{SpiritID: strings.TrimSpace(id), Level: 1}
		if hasLevel {
			n, err := strconv.Atoi(strings.TrimSpace(lvl))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: level %q for %s", ErrBadParty, lvl, m.SpiritID)
			}
			m.Level = n
		}
		if m.SpiritID == "" {
			return nil, fmt.Errorf("%w: empty spirit id", ErrBadParty)
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadParty)
	}
	if len(out) > battle.MaxPartySize {
		return nil, fmt.Errorf("%w: at most %d members", ErrBadParty, battle.MaxPartySize)
	}
	return out, nil
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
