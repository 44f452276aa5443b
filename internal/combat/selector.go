package combat

import (
	"fmt"
	"math/rand"
)

// Reserved ids in an enemy's action script.
const (
	ActionRandom = "random"
	ActionBlock  = "block"
)

type ActionKind int

const (
	ActionUseSkill ActionKind = iota
	ActionGuard
)

type EnemyAction struct {
	Kind  ActionKind
	Skill Skill
}

// ActionSelector turns a scripted action id into a concrete move for the
// AI-controlled side.
type ActionSelector struct {
	skills *SkillBook
	rng    *rand.Rand
}

func NewActionSelector(skills *SkillBook, rng *rand.Rand) *ActionSelector {
	return &ActionSelector{skills: skills, rng: rng}
}

// Select resolves script[step mod len(script)] for enemy. An empty script
// means basic attack. Unknown ids fall back to the basic attack with a
// warning line; nothing here fails.
func (as *ActionSelector) Select(script []string, step int, enemy Combatant) (EnemyAction, []string) {
	var logs []string
	if len(script) == 0 {
		return EnemyAction{Kind: ActionUseSkill, Skill: as.skills.Basic()}, nil
	}
	if step < 0 {
		step = -step
	}
	id := script[step%len(script)]

	if id == ActionRandom {
		pool := as.candidatePool(enemy)
		id = pool[as.rng.Intn(len(pool))]
		logs = append(logs, fmt.Sprintf("%s acts on instinct and picks %s", enemy.Name, as.label(id)))
	}

	if id == ActionBlock {
		return EnemyAction{Kind: ActionGuard}, logs
	}
	skill, ok := as.skills.Resolve(id)
	if !ok {
		logs = append(logs, fmt.Sprintf("warning: %s has no skill %q, using %s", enemy.Name, id, skill.Label()))
	}
	return EnemyAction{Kind: ActionUseSkill, Skill: skill}, logs
}

// candidatePool is the basic actions plus every innate skill the enemy has
// unlocked.
func (as *ActionSelector) candidatePool(enemy Combatant) []string {
	pool := []string{as.skills.Basic().ID, ActionBlock}
	for _, s := range as.skills.Known(enemy.Skills, enemy.Stats.Level) {
		if s.ID == pool[0] {
			continue
		}
		pool = append(pool, s.ID)
	}
	return pool
}

func (as *ActionSelector) label(id string) string {
	if id == ActionBlock {
		return "block"
	}
	if s, ok := as.skills.Lookup(id); ok {
		return s.Label()
	}
	return id
}
