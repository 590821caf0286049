package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables owned by the layout service.  team_allocations
// is written by the allocation backend; it is created here so a single
// database can serve both in development.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		owner_id BIGINT NOT NULL,
		name VARCHAR(120) NOT NULL,
		seat_rows INT NOT NULL,
		seat_cols INT NOT NULL,
		capacity INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_rooms_owner_name (owner_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS room_layouts (
		room_id BIGINT PRIMARY KEY,
		document JSON NOT NULL,
		updated_by BIGINT NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_layout_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS layout_seats (
		room_id BIGINT NOT NULL,
		seat_row INT NOT NULL,
		seat_col INT NOT NULL,
		seat_group_id VARCHAR(64) NULL,
		team_size_preference INT NULL,
		PRIMARY KEY (room_id, seat_row, seat_col),
		CONSTRAINT fk_seat_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS team_allocations (
		room_id BIGINT NOT NULL,
		team_id VARCHAR(64) NOT NULL,
		team_name VARCHAR(120) NOT NULL,
		seat_row INT NOT NULL,
		seat_col INT NOT NULL,
		PRIMARY KEY (room_id, seat_row, seat_col),
		KEY idx_alloc_team (room_id, team_id)
	)`,
}

// Migrate creates missing tables.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
