package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
)

// ErrLayoutNotFound is returned when a room has never had a layout saved.
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutRepo persists layout documents in room_layouts and mirrors every
// seat into layout_seats for consumers that read seats row by row.
type LayoutRepo struct {
	db *sql.DB
}

// NewLayoutRepo constructs a LayoutRepo with the given DB handle.
func NewLayoutRepo(db *sql.DB) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// GetDocument loads the stored document of a room.  A stored value that is
// not valid JSON is reported as layout.ErrCorruptLayout.
func (r *LayoutRepo) GetDocument(ctx context.Context, roomID uint64) (layout.Document, error) {
	const q = `SELECT document FROM room_layouts WHERE room_id = ?`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, roomID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return layout.Document{}, ErrLayoutNotFound
		}
		return layout.Document{}, err
	}
	var doc layout.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return layout.Document{}, fmt.Errorf("room %d: %w: %v", roomID, layout.ErrCorruptLayout, err)
	}
	return doc, nil
}

// ListSeatRecords returns the row-per-seat records of a room in row-major
// order.  Rooms saved before documents existed only have these rows.
func (r *LayoutRepo) ListSeatRecords(ctx context.Context, roomID uint64) ([]layout.SeatRecord, error) {
	const q = `SELECT seat_row, seat_col, seat_group_id, team_size_preference
	           FROM layout_seats
	           WHERE room_id = ?
	           ORDER BY seat_row, seat_col`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []layout.SeatRecord
	for rows.Next() {
		var (
			rec   layout.SeatRecord
			group sql.NullString
			size  sql.NullInt32
		)
		if err := rows.Scan(&rec.RowNumber, &rec.ColumnNumber, &group, &size); err != nil {
			return nil, err
		}
		if group.Valid {
			id := group.String
			rec.SeatGroupID = &id
		}
		if size.Valid {
			n := int(size.Int32)
			rec.TeamSizePreference = &n
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the stored layout of a room in one transaction: the room's
// extent, the document and the seat rows change together or not at all.
func (r *LayoutRepo) Save(ctx context.Context, roomID, operatorID uint64, doc layout.Document, seats []layout.SeatRecord) (err error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE rooms SET seat_rows = ?, seat_cols = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		doc.Rows, doc.Cols, roomID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows when nothing changed, so confirm
		// the room exists before giving up.
		var one int
		if err = tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, roomID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = ErrRoomNotFound
			}
			return err
		}
	}

	const qDoc = `INSERT INTO room_layouts (room_id, document, updated_by) VALUES (?, ?, ?)
	              ON DUPLICATE KEY UPDATE document = VALUES(document), updated_by = VALUES(updated_by), updated_at = CURRENT_TIMESTAMP`
	if _, err = tx.ExecContext(ctx, qDoc, roomID, raw, operatorID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM layout_seats WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if err = insertSeats(ctx, tx, roomID, seats); err != nil {
		return err
	}
	return tx.Commit()
}

// insertSeats writes all seat rows in a single statement.
func insertSeats(ctx context.Context, tx *sql.Tx, roomID uint64, seats []layout.SeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO layout_seats (room_id, seat_row, seat_col, seat_group_id, team_size_preference) VALUES `)
	args := make([]any, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, roomID, s.RowNumber, s.ColumnNumber, s.SeatGroupID, s.TeamSizePreference)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}
