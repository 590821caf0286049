package layout

import (
	"fmt"

	"github.com/google/uuid"
)

// SeatGroup binds a fixed set of seats into one team-sized unit.
type SeatGroup struct {
	ID        string     `json:"id"`
	Positions []Position `json:"positions"`
	TeamSize  int        `json:"team_size"`
}

// Contains reports whether p is a member of the group.
func (g SeatGroup) Contains(p Position) bool {
	for _, q := range g.Positions {
		if q == p {
			return true
		}
	}
	return false
}

// ValidTeamSize reports whether n is an accepted merged-unit size.
func ValidTeamSize(n int) bool { return n >= 2 && n <= 4 }

// newGroupID generates group identifiers.
var newGroupID = uuid.NewString

// Merge binds positions into a new group of teamSize occupants and returns
// its id.  The operation is all-or-nothing: on any error the layout is
// left untouched.
func (l *Layout) Merge(positions []Position, teamSize int) (string, error) {
	ps := dedup(positions)
	if !ValidTeamSize(teamSize) || len(ps) != teamSize || len(positions) != teamSize {
		return "", fmt.Errorf("%w: %d positions for team size %d", ErrInvalidGroupSize, len(positions), teamSize)
	}
	for _, p := range ps {
		if !l.InBounds(p) {
			return "", fmt.Errorf("%w: %s", ErrOutOfBounds, p)
		}
	}
	for _, p := range ps {
		if t, ok := l.cells[p]; !ok || t != Seat {
			return "", fmt.Errorf("%w: %s", ErrNotAllSeats, p)
		}
	}
	for _, p := range ps {
		if id, ok := l.member[p]; ok {
			return "", fmt.Errorf("%w: %s is in group %s", ErrAlreadyGrouped, p, id)
		}
	}
	g := SeatGroup{ID: newGroupID(), Positions: ps, TeamSize: teamSize}
	l.insert(g)
	return g.ID, nil
}

// Dissolve removes a group.  Its members remain individual seats.
func (l *Layout) Dissolve(id string) error {
	for i, g := range l.groups {
		if g.ID == id {
			l.remove(i)
			return nil
		}
	}
	return ErrGroupNotFound
}

// Groups returns a copy of the groups in creation order.
func (l *Layout) Groups() []SeatGroup {
	out := make([]SeatGroup, len(l.groups))
	for i, g := range l.groups {
		out[i] = SeatGroup{ID: g.ID, TeamSize: g.TeamSize, Positions: append([]Position(nil), g.Positions...)}
	}
	return out
}

// GroupOf returns the id of the group containing p, if any.
func (l *Layout) GroupOf(p Position) (string, bool) {
	id, ok := l.member[p]
	return id, ok
}

// PositionsInGroups returns the union of all grouped positions, row-major.
func (l *Layout) PositionsInGroups() []Position {
	out := make([]Position, 0, len(l.member))
	for p := range l.member {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}

// dissolveAt dissolves the group containing p, if any.
func (l *Layout) dissolveAt(p Position) {
	if id, ok := l.member[p]; ok {
		_ = l.Dissolve(id)
	}
}

func (l *Layout) insert(g SeatGroup) {
	l.groups = append(l.groups, g)
	for _, p := range g.Positions {
		l.member[p] = g.ID
	}
}

func (l *Layout) remove(i int) {
	for _, p := range l.groups[i].Positions {
		delete(l.member, p)
	}
	l.groups = append(l.groups[:i], l.groups[i+1:]...)
}

// adopt installs a group loaded from storage, enforcing every group
// invariant.  Violations are reported as ErrCorruptLayout.
func (l *Layout) adopt(g SeatGroup) error {
	if g.ID == "" {
		return fmt.Errorf("%w: group without id", ErrCorruptLayout)
	}
	for _, other := range l.groups {
		if other.ID == g.ID {
			return fmt.Errorf("%w: duplicate group %s", ErrCorruptLayout, g.ID)
		}
	}
	ps := dedup(g.Positions)
	if !ValidTeamSize(g.TeamSize) || len(ps) != g.TeamSize || len(g.Positions) != g.TeamSize {
		return fmt.Errorf("%w: group %s has %d positions for team size %d", ErrCorruptLayout, g.ID, len(g.Positions), g.TeamSize)
	}
	for _, p := range ps {
		if t, ok := l.cells[p]; !ok || t != Seat {
			return fmt.Errorf("%w: group %s references %s which is not a seat", ErrCorruptLayout, g.ID, p)
		}
		if id, ok := l.member[p]; ok {
			return fmt.Errorf("%w: %s is in groups %s and %s", ErrCorruptLayout, p, id, g.ID)
		}
	}
	l.insert(SeatGroup{ID: g.ID, Positions: ps, TeamSize: g.TeamSize})
	return nil
}

// dedup drops repeated positions, keeping first occurrences in order.
func dedup(ps []Position) []Position {
	seen := make(map[Position]struct{}, len(ps))
	out := make([]Position, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
