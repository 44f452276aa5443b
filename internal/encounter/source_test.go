package encounter

import (
	"errors"
	"testing"

	"spiritclash/internal/config"
	"spiritclash/internal/util"
)

func testConfig() *config.EncountersConfig {
	return &config.EncountersConfig{Encounters: []config.EncounterDef{
		{ID: "low_a", MinLevel: 1, MaxLevel: 4, Enemies: []config.EnemyDef{{Spirit: "wolf"}}},
		{ID: "low_b", MinLevel: 1, MaxLevel: 4, Enemies: []config.EnemyDef{{Spirit: "toad", Level: 2}}},
		{ID: "high", MinLevel: 10, MaxLevel: 15, Enemies: []config.EnemyDef{{Spirit: "golem", Actions: []string{"block"}}},
			Rewards: config.RewardDef{Currency: 50, Essence: map[string]int{"golem": 1}}},
	}}
}

func TestSelect_InBandDrawsAmongMatches(t *testing.T) {
	src := NewSource(testConfig(), util.New(3))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		enc, err := src.Select(3)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		seen[enc.ID] = true
	}
	if !seen["low_a"] || !seen["low_b"] || seen["high"] {
		t.Fatalf("unexpected picks %v", seen)
	}
}

func TestSelect_FallsBackToNearestBand(t *testing.T) {
	src := NewSource(testConfig(), util.New(1))
	enc, err := src.Select(8)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if enc.ID != "high" {
		t.Fatalf("expected nearest band high, got %s", enc.ID)
	}
	if enc.Enemies[0].Level != 8 {
		t.Fatalf("unlevelled enemy should take the difficulty, got %d", enc.Enemies[0].Level)
	}
	if enc.Rewards.Currency != 50 || enc.Rewards.Essence["golem"] != 1 {
		t.Fatalf("unexpected rewards %+v", enc.Rewards)
	}
}

func TestSelect_KeepsFixedLevels(t *testing.T) {
	src := NewSource(&config.EncountersConfig{Encounters: testConfig().Encounters[1:2]}, util.New(1))
	enc, _ := src.Select(4)
	if enc.Enemies[0].Level != 2 {
		t.Fatalf("expected fixed level 2, got %d", enc.Enemies[0].Level)
	}
}

func TestSelect_Empty(t *testing.T) {
	if _, err := NewSource(nil, util.New(1)).Select(1); !errors.Is(err, ErrNoEncounter) {
		t.Fatalf("expected ErrNoEncounter, got %v", err)
	}
}

func TestPinned(t *testing.T) {
	src := NewSource(testConfig(), util.New(1))
	enc, err := Pinned{Source: src, ID: "low_a"}.Select(12)
	if err != nil || enc.ID != "low_a" || enc.Enemies[0].Level != 12 {
		t.Fatalf("unexpected pinned pick %+v err=%v", enc, err)
	}
	if _, err := (Pinned{Source: src, ID: "nope"}).Select(1); !errors.Is(err, ErrNoEncounter) {
		t.Fatalf("expected ErrNoEncounter, got %v", err)
	}
	if enc, _ := Fixed(enc).Select(99); enc.ID != "low_a" {
		t.Fatalf("fixed should ignore difficulty")
	}
}
