package model

import (
	"time"
)

// Collection names a persisted entity collection.
type Collection string

const (
	CollectionUsers     Collection = "users"
	CollectionPatients  Collection = "patients"
	CollectionIncidents Collection = "incidents"
	CollectionSession   Collection = "session"
	CollectionStats     Collection = "stats"
)

// ChangeOp is the kind of mutation that produced a change event.
type ChangeOp string

const (
	OpCreate  ChangeOp = "create"
	OpUpdate  ChangeOp = "update"
	OpDelete  ChangeOp = "delete"
	OpReplace ChangeOp = "replace"
)

// ChangeEvent announces that a persisted collection was written. Consumers
// treat their cached copy of Collection as stale and re-read it.
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	Op         ChangeOp   `json:"op"`
	ID         string     `json:"id,omitempty"`
	At         time.Time  `json:"at"`
}

// ChangesChannel is the broker channel carrying ChangeEvents.
const ChangesChannel = "dentalcare.changes"
