// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer for them.
package queue

import "time"

// LayoutSavedQueue is the durable queue carrying LayoutSavedEvent messages.
const LayoutSavedQueue = "layout.saved"

// LayoutSavedEvent is published after a room layout is saved.  It carries
// enough of the new layout's shape for downstream consumers (audit, seat
// allocation) to react without reading the layout back.
type LayoutSavedEvent struct {
	RoomID       uint64    `json:"room_id"`
	RoomName     string    `json:"room_name"`
	OperatorID   uint64    `json:"operator_id"`
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	Seats        int       `json:"seats"`
	Groups       int       `json:"groups"`
	GroupedSeats int       `json:"grouped_seats"`
	Structures   int       `json:"structural_runs"`
	SavedAt      time.Time `json:"saved_at"`
}
