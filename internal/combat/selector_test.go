package combat

import (
	"strings"
	"testing"

	"spiritclash/internal/config"
	"spiritclash/internal/util"
)

func testBook(t *testing.T) *SkillBook {
	t.Helper()
	sb, err := NewSkillBook(&config.SkillsConfig{
		BasicAttack: "basic_attack",
		Skills: []config.Skill{
			{ID: "basic_attack", Name: "Tackle", Damage: 1.0},
			{ID: "ember_burst", Name: "Ember Burst", Damage: 1.4, Elem: "fire", Priority: 20},
			{ID: "scorch", Name: "Scorch", Damage: 0.8, Elem: "fire", MinLevel: 4, Priority: 25},
		},
	})
	if err != nil {
		t.Fatalf("skill book: %v", err)
	}
	return sb
}

func enemy(level int) Combatant {
	c := NewCombatant("e", "Wolf", ElementFire, Stats{Level: level, Attack: 10, Defense: 10, MaxHealth: 30}, 30)
	c.Skills = []string{"ember_burst", "scorch"}
	return c
}

func TestSelect_CyclesScript(t *testing.T) {
	as := NewActionSelector(testBook(t), util.New(1))
	script := []string{"basic_attack", "ember_burst", "block"}
	want := []string{"basic_attack", "ember_burst", "block", "basic_attack"}
	for step, w := range want {
		act, _ := as.Select(script, step, enemy(1))
		got := act.Skill.ID
		if act.Kind == ActionGuard {
			got = "block"
		}
		if got != w {
			t.Fatalf("step %d: expected %s, got %s", step, w, got)
		}
	}
}

func TestSelect_EmptyScriptIsBasicAttack(t *testing.T) {
	as := NewActionSelector(testBook(t), util.New(1))
	act, logs := as.Select(nil, 3, enemy(1))
	if act.Kind != ActionUseSkill || act.Skill.ID != "basic_attack" || logs != nil {
		t.Fatalf("unexpected %+v %v", act, logs)
	}
}

func TestSelect_UnknownFallsBackWithWarning(t *testing.T) {
	as := NewActionSelector(testBook(t), util.New(1))
	act, logs := as.Select([]string{"meteor"}, 0, enemy(1))
	if act.Skill.ID != "basic_attack" {
		t.Fatalf("expected basic attack fallback, got %s", act.Skill.ID)
	}
	if len(logs) != 1 || !strings.HasPrefix(logs[0], "warning:") {
		t.Fatalf("expected a warning line, got %v", logs)
	}
}

func TestSelect_RandomDrawsFromUnlockedPool(t *testing.T) {
	as := NewActionSelector(testBook(t), util.New(42))
	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		act, logs := as.Select([]string{ActionRandom}, i, enemy(1))
		id := act.Skill.ID
		if act.Kind == ActionGuard {
			id = "block"
		}
		seen[id]++
		if len(logs) == 0 || !strings.Contains(logs[0], "on instinct") {
			t.Fatalf("expected random pick to be logged, got %v", logs)
		}
	}
	for _, id := range []string{"basic_attack", "block", "ember_burst"} {
		if seen[id] == 0 {
			t.Fatalf("expected %s to be drawn at least once, got %v", id, seen)
		}
	}
	if seen["scorch"] != 0 {
		t.Fatalf("locked skill was drawn: %v", seen)
	}
}
