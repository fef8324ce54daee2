// Package queue defines message payloads exchanged over the message broker.
package queue

// Event type values carried in SlotEvent.Type.
const (
	EventSlotBooked    = "slot.booked"
	EventSlotCancelled = "slot.cancelled"
)

// SlotEvent is published after a successful slot transition. It carries
// enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database. Cancelled
// events leave Service at its zero value.
type SlotEvent struct {
	Type       string `json:"type"`
	SlotID     uint64 `json:"slot_id"`
	CarWashID  uint64 `json:"car_wash_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	UserID     uint64 `json:"user_id,omitempty"`
	Service    string `json:"service,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
