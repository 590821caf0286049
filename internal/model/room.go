package model

import "time"

// Room is a venue room whose seat layout is edited by operators.  Room
// names are unique per owner.  The layout itself lives in room_layouts;
// SeatRows and SeatCols mirror its extent so rooms can be listed without
// decoding layout documents.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – operator who owns the room.
//  Name      – unique room name per owner.
//  SeatRows  – grid rows of the current layout.
//  SeatCols  – grid columns of the current layout.
//  Capacity  – declared headcount; zero when the venue never declared one.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    `json:"id"`         // rooms.id
	OwnerID   uint64    `json:"owner_id"`   // rooms.owner_id
	Name      string    `json:"name"`       // rooms.name
	SeatRows  int       `json:"seat_rows"`  // rooms.seat_rows
	SeatCols  int       `json:"seat_cols"`  // rooms.seat_cols
	Capacity  int       `json:"capacity"`   // rooms.capacity
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
	UpdatedAt time.Time `json:"updated_at"` // rooms.updated_at
}
