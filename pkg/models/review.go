package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Review State
// ============================================================================

// ReviewState is the human disposition of a finding.
type ReviewState string

const (
	ReviewStateUnreviewed   ReviewState = "unreviewed"
	ReviewStateAcknowledged ReviewState = "acknowledged"
	ReviewStateDisputed     ReviewState = "disputed"
)

// ValidReviewStates contains all valid review states.
var ValidReviewStates = []ReviewState{
	ReviewStateUnreviewed,
	ReviewStateAcknowledged,
	ReviewStateDisputed,
}

// IsValidReviewState checks if the given state is valid.
func IsValidReviewState(s ReviewState) bool {
	for _, v := range ValidReviewStates {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Review Events
// ============================================================================

// ReviewEventKind categorizes entries in a finding's review log.
type ReviewEventKind string

const (
	ReviewEventAcknowledged ReviewEventKind = "acknowledged"
	ReviewEventDisputed     ReviewEventKind = "disputed"
	ReviewEventComment      ReviewEventKind = "comment"
)

// IsDisposition reports whether the event changes the item's state.
// Comments append in any state without changing it.
func (k ReviewEventKind) IsDisposition() bool {
	return k == ReviewEventAcknowledged || k == ReviewEventDisputed
}

// NextState returns the state an item moves to when the event is applied in
// the given state. The second return is false when the transition is not
// allowed: dispositions are valid only from unreviewed.
func (k ReviewEventKind) NextState(current ReviewState) (ReviewState, bool) {
	switch k {
	case ReviewEventComment:
		return current, true
	case ReviewEventAcknowledged:
		if current == ReviewStateUnreviewed {
			return ReviewStateAcknowledged, true
		}
	case ReviewEventDisputed:
		if current == ReviewStateUnreviewed {
			return ReviewStateDisputed, true
		}
	}
	return current, false
}

// ReviewItem tracks the current disposition of one finding. The row is
// created once in unreviewed; only its state column advances, driven by the
// append-only event log. One item per finding.
type ReviewItem struct {
	ID        uuid.UUID   `json:"id"`
	FindingID uuid.UUID   `json:"finding_id"`
	State     ReviewState `json:"state"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReviewEvent is one append-only entry in a finding's review history. Events
// are never updated or deleted, so the history is a complete, replayable log.
type ReviewEvent struct {
	ID           uuid.UUID       `json:"id"`
	ReviewItemID uuid.UUID       `json:"review_item_id"`
	Kind         ReviewEventKind `json:"kind"`
	Actor        string          `json:"actor"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReviewHistory is the read model for a finding's review: the item plus its
// full event log in append order.
type ReviewHistory struct {
	Item   *ReviewItem    `json:"item"`
	Events []*ReviewEvent `json:"events"`
}
