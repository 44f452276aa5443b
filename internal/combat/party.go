package combat

// Roster is an ordered combatant collection replaced wholesale on change.
type Roster []Combatant

func (r Roster) With(i int, c Combatant) Roster {
	out := make(Roster, len(r))
	copy(out, r)
	if i >= 0 && i < len(out) {
		out[i] = c
	}
	return out
}

func (r Roster) Index(id string) int {
	for i := range r {
		if r[i].ID == id {
			return i
		}
	}
	return -1
}

// Wiped reports whether no member has health left. An empty roster counts
// as wiped.
func (r Roster) Wiped() bool {
	for i := range r {
		if r[i].Alive() {
			return false
		}
	}
	return true
}

// Side is one team in a battle: its roster and the index of the member
// currently fighting. The others sit on the bench and do not tick.
type Side struct {
	Members Roster
	Active  int
}

func NewSide(members Roster) Side {
	s := Side{Members: members}
	if len(members) > 0 && !members[0].Alive() {
		if next := s.NextBenchIndex(); next >= 0 {
			s.Active = next
		}
	}
	return s
}

func (s Side) Current() Combatant {
	if s.Active < 0 || s.Active >= len(s.Members) {
		return Combatant{}
	}
	return s.Members[s.Active]
}

func (s Side) Replace(c Combatant) Side {
	return s.ReplaceAt(s.Active, c)
}

func (s Side) ReplaceAt(i int, c Combatant) Side {
	s.Members = s.Members.With(i, c)
	return s
}

func (s Side) Wiped() bool { return s.Members.Wiped() }

func (s Side) CanSwitchTo(i int) bool {
	return i >= 0 && i < len(s.Members) && i != s.Active && s.Members[i].Alive()
}

func (s Side) TrySwitchTo(i int) (Side, bool) {
	if !s.CanSwitchTo(i) {
		return s, false
	}
	s.Active = i
	return s, true
}

// NextBenchIndex returns the first living member after the active one,
// wrapping around, or -1.
func (s Side) NextBenchIndex() int {
	n := len(s.Members)
	for step := 1; step < n; step++ {
		i := (s.Active + step) % n
		if s.Members[i].Alive() {
			return i
		}
	}
	return -1
}
