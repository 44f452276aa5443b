package combat

import (
	"errors"
	"fmt"
	"strings"
)

type Element string

const (
	ElementNone  Element = "none"
	ElementWood  Element = "wood"
	ElementFire  Element = "fire"
	ElementEarth Element = "earth"
	ElementMetal Element = "metal"
	ElementWater Element = "water"
)

const (
	strongMultiplier  = 1.5
	weakMultiplier    = 0.75
	neutralMultiplier = 1.0
)

var ErrUnknownElement = errors.New("unknown element")

// overcomes maps each element to the one it deals bonus damage to. The five
// entries form a single cycle.
var overcomes = map[Element]Element{
	ElementWood:  ElementEarth,
	ElementEarth: ElementWater,
	ElementWater: ElementFire,
	ElementFire:  ElementMetal,
	ElementMetal: ElementWood,
}

// Elements lists the cycle members in a stable order.
func Elements() []Element {
	return []Element{ElementWood, ElementFire, ElementEarth, ElementMetal, ElementWater}
}

// ParseElement accepts any casing; the empty string is none.
func ParseElement(s string) (Element, error) {
	e := Element(strings.ToLower(strings.TrimSpace(s)))
	if e == "" || e == ElementNone {
		return ElementNone, nil
	}
	if _, ok := overcomes[e]; !ok {
		return ElementNone, fmt.Errorf("%w: %q", ErrUnknownElement, s)
	}
	return e, nil
}

// Multiplier is total: unknown or neutral inputs yield 1.0.
func Multiplier(attacker, defender Element) float64 {
	if attacker == ElementNone || defender == ElementNone {
		return neutralMultiplier
	}
	if target, ok := overcomes[attacker]; ok && target == defender {
		return strongMultiplier
	}
	if target, ok := overcomes[defender]; ok && target == attacker {
		return weakMultiplier
	}
	return neutralMultiplier
}
