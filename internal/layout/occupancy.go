package layout

import "fmt"

// Allocation records which positions a team occupies.  Allocations are
// owned by the allocation backend; the layout only reads them.
type Allocation struct {
	TeamID    string     `json:"team_id"`
	TeamName  string     `json:"team_name"`
	Positions []Position `json:"positions"`
}

// Summary is the per-room occupancy report shown on the dashboard.
//
// Teams2..Teams4 count committed allocations by size, while
// AvailableUnits2..AvailableUnits4 count merged groups nobody occupies yet.
// Together they answer how many more teams of each size a room can take.
type Summary struct {
	Teams2            int      `json:"teams_2"`
	Teams3            int      `json:"teams_3"`
	Teams4            int      `json:"teams_4"`
	Singles           int      `json:"singles"`
	TotalParticipants int      `json:"total_participants"`
	IndividualSeats   int      `json:"individual_seats"`
	AvailableUnits2   int      `json:"available_units_2"`
	AvailableUnits3   int      `json:"available_units_3"`
	AvailableUnits4   int      `json:"available_units_4"`
	Capacity          int      `json:"capacity"`
	UsagePercent      int      `json:"usage_percent"`
	Anomalies         []string `json:"anomalies,omitempty"`
}

// Summarize computes the occupancy summary of a room.  capacity is the
// declared room capacity; when it is not positive the seat count is used.
// Allocations of unexpected size are listed as anomalies and left out of
// the size buckets, but their occupants still count as participants.
func Summarize(s Snapshot, allocs []Allocation, capacity int) Summary {
	var sum Summary
	allocated := make(map[Position]struct{})
	for _, a := range allocs {
		ps := dedup(a.Positions)
		for _, p := range ps {
			allocated[p] = struct{}{}
		}
		n := len(ps)
		switch n {
		case 1:
			sum.Singles++
		case 2:
			sum.Teams2++
		case 3:
			sum.Teams3++
		case 4:
			sum.Teams4++
		default:
			sum.Anomalies = append(sum.Anomalies, fmt.Sprintf("team %s occupies %d positions", a.TeamID, n))
		}
		sum.TotalParticipants += n
	}

	grouped := s.groupIndex()
	seats := s.Seats()
	for _, p := range seats {
		if _, ok := grouped[p]; ok {
			continue
		}
		if _, ok := allocated[p]; !ok {
			sum.IndividualSeats++
		}
	}
	for _, g := range s.Groups {
		if touches(g, allocated) {
			continue
		}
		switch g.TeamSize {
		case 2:
			sum.AvailableUnits2++
		case 3:
			sum.AvailableUnits3++
		case 4:
			sum.AvailableUnits4++
		}
	}

	sum.Capacity = capacity
	if sum.Capacity <= 0 {
		sum.Capacity = len(seats)
	}
	if sum.Capacity > 0 {
		sum.UsagePercent = sum.TotalParticipants * 100 / sum.Capacity
		if sum.UsagePercent > 100 {
			sum.UsagePercent = 100
		}
	}
	return sum
}

func touches(g SeatGroup, set map[Position]struct{}) bool {
	for _, p := range g.Positions {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}
