// Package models defines the cattle registration record and its
// lifecycle vocabulary.
package models

import (
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// Status is the closed set of lifecycle states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	StatusArchived Status = "archived"
	StatusTransit  Status = "transit"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusDeclined: true,
	StatusArchived: true,
	StatusTransit:  true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown status")
	}
	return st, nil
}

// IsTerminal reports whether no further transitions exist from the
// state. Only archived is fully terminal; declined ends the approval
// path but still allows archiving by the owner.
func (s Status) IsTerminal() bool { return s == StatusArchived }

func (s Status) String() string { return string(s) }

// Action is the closed set of operations on a record.
type Action string

const (
	ActionSubmit           Action = "submit"
	ActionApprove          Action = "approve"
	ActionDecline          Action = "decline"
	ActionArchive          Action = "archive"
	ActionView             Action = "view"
	ActionInitiateTransfer Action = "initiate_transfer"
	ActionCompleteTransfer Action = "complete_transfer"
	ActionCancelTransfer   Action = "cancel_transfer"
)

func (a Action) String() string { return string(a) }

// ImageRef is one evidence photo slot. The binary itself lives with the
// storage collaborator; the record keeps category, location, and upload
// metadata.
type ImageRef struct {
	Category    id.ImageCategory `json:"category"`
	URI         string           `json:"uri"`
	ContentType string           `json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
}

// TransitionEntry is one immutable audit trail entry. The trail is
// append-only and authoritative; a record's current status is the To of
// its last entry.
type TransitionEntry struct {
	Actor  id.UserID `json:"actor"`
	At     time.Time `json:"at"`
	From   Status    `json:"from"` // empty for the submit entry
	To     Status    `json:"to"`
	Action Action    `json:"action"`
	Reason string    `json:"reason,omitempty"`
}

// CattleRecord is one registration submission and its lifecycle state.
// Records are never physically deleted; archived and declined are
// retained for audit.
type CattleRecord struct {
	ID      id.RecordID `json:"id"`
	TagID   string      `json:"tag_id"`
	OwnerID id.UserID   `json:"owner_id"`
	Region  id.Region   `json:"region"`
	Images  []ImageRef  `json:"images"`
	Status  Status      `json:"status"`
	// Transferee is the prospective new owner while the record is in
	// transit; zero otherwise.
	Transferee  id.UserID         `json:"transferee,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Trail       []TransitionEntry `json:"trail"`
}

// ImageCounts aggregates the record's images per category for the
// completeness check.
func (r *CattleRecord) ImageCounts() map[id.ImageCategory]int {
	counts := make(map[id.ImageCategory]int)
	for _, img := range r.Images {
		counts[img.Category]++
	}
	return counts
}

// PendingAge reports elapsed time since submission.
func (r *CattleRecord) PendingAge(now time.Time) time.Duration {
	return now.Sub(r.SubmittedAt)
}

// Overdue reports whether a pending record has exceeded the approval
// window. Advisory only; overdue records are never auto-transitioned.
func (r *CattleRecord) Overdue(now time.Time, window time.Duration) bool {
	return r.Status == StatusPending && r.PendingAge(now) > window
}

// Clone returns a deep copy so stores can hand out records without
// sharing mutable state.
func (r *CattleRecord) Clone() *CattleRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Images = append([]ImageRef(nil), r.Images...)
	out.Trail = append([]TransitionEntry(nil), r.Trail...)
	return &out
}
