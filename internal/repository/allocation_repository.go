package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
)

// AllocationRepo reads team allocations written by the allocation backend
// into the shared database.  The layout service never writes them.
type AllocationRepo struct {
	db *sql.DB
}

// NewAllocationRepo constructs an AllocationRepo with the given DB handle.
func NewAllocationRepo(db *sql.DB) *AllocationRepo {
	return &AllocationRepo{db: db}
}

// ListByRoom returns one allocation per team, ordered by team id, with the
// team's positions in row-major order.
func (r *AllocationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]layout.Allocation, error) {
	const q = `SELECT team_id, team_name, seat_row, seat_col
	           FROM team_allocations
	           WHERE room_id = ?
	           ORDER BY team_id, seat_row, seat_col`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []layout.Allocation
	for rows.Next() {
		var (
			teamID, teamName string
			p                layout.Position
		)
		if err := rows.Scan(&teamID, &teamName, &p.Row, &p.Col); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].TeamID != teamID {
			out = append(out, layout.Allocation{TeamID: teamID, TeamName: teamName})
		}
		last := &out[len(out)-1]
		last.Positions = append(last.Positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
