// Package registration owns the cattle record lifecycle: the state
// machine, its transition table, and the audit trail each transition
// appends to.
package registration

import (
	"time"

	"github.com/geekskaran/cattel/internal/platform/config"
	"github.com/geekskaran/cattel/internal/registration/models"
	"github.com/geekskaran/cattel/internal/validation"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// transitionTable is the complete set of legal (state, action) pairs.
// Anything not listed fails with invalid_transition and leaves the
// record unchanged.
var transitionTable = map[models.Status]map[models.Action]models.Status{
	models.StatusPending: {
		models.ActionApprove: models.StatusApproved,
		models.ActionDecline: models.StatusDeclined,
	},
	models.StatusApproved: {
		models.ActionArchive:          models.StatusArchived,
		models.ActionInitiateTransfer: models.StatusTransit,
	},
	models.StatusDeclined: {
		models.ActionArchive: models.StatusArchived,
	},
	models.StatusTransit: {
		models.ActionCompleteTransfer: models.StatusApproved,
		models.ActionCancelTransfer:   models.StatusApproved,
	},
}

// TransitionRequest carries everything a single transition needs. The
// caller has already obtained an authorization permit; the engine
// enforces only the structural preconditions of the table.
type TransitionRequest struct {
	Action models.Action
	Actor  id.UserID
	At     time.Time
	// Reason is required for decline and recorded in the audit entry.
	Reason string
	// Transferee is required for initiate_transfer.
	Transferee id.UserID
}

// Engine is the only writer of a record's status and trail. It is pure
// domain logic: no I/O, no clocks of its own, deterministic given its
// input.
type Engine struct {
	rules  *validation.Rules
	policy config.Policy
}

// NewEngine builds the engine over the injected policy constants.
func NewEngine(rules *validation.Rules, policy config.Policy) *Engine {
	return &Engine{rules: rules, policy: policy}
}

// Submission is the input to NewRecord.
type Submission struct {
	TagID   string
	OwnerID id.UserID
	Region  id.Region
	Images  []models.ImageRef
	At      time.Time
}

// NewRecord validates a submission and creates the record in pending
// with its first audit entry. There is no other way into the lifecycle.
func (e *Engine) NewRecord(sub Submission) (*models.CattleRecord, error) {
	if err := e.rules.CattleID(sub.TagID); err != nil {
		return nil, err
	}
	if sub.OwnerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner is required")
	}
	if sub.Region.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "region is required")
	}

	counts := make(map[id.ImageCategory]int, len(sub.Images))
	for _, img := range sub.Images {
		if err := e.rules.ImageMeta(img.ContentType, img.SizeBytes); err != nil {
			return nil, err
		}
		counts[img.Category]++
	}
	if err := e.rules.ImageSet(counts); err != nil {
		return nil, err
	}

	rec := &models.CattleRecord{
		ID:          id.NewRecordID(),
		TagID:       sub.TagID,
		OwnerID:     sub.OwnerID,
		Region:      sub.Region,
		Images:      append([]models.ImageRef(nil), sub.Images...),
		SubmittedAt: sub.At,
	}
	appendEntry(rec, models.TransitionEntry{
		Actor:  sub.OwnerID,
		At:     sub.At,
		From:   "",
		To:     models.StatusPending,
		Action: models.ActionSubmit,
	})
	return rec, nil
}

// Transition applies one action to the record. On success exactly one
// audit entry is appended and the status projection updated; on failure
// the record is unchanged.
func (e *Engine) Transition(rec *models.CattleRecord, req TransitionRequest) error {
	next, ok := transitionTable[rec.Status][req.Action]
	if !ok {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot %s a %s record", req.Action, rec.Status)
	}

	switch req.Action {
	case models.ActionDecline:
		if req.Reason == "" {
			return dErrors.New(dErrors.CodeValidation, "decline requires a reason")
		}
	case models.ActionInitiateTransfer:
		if req.Transferee.IsNil() {
			return dErrors.New(dErrors.CodeValidation, "transfer requires a new owner")
		}
		if req.Transferee == rec.OwnerID {
			return dErrors.New(dErrors.CodeValidation, "cannot transfer a record to its current owner")
		}
	}

	entry := models.TransitionEntry{
		Actor:  req.Actor,
		At:     req.At,
		From:   rec.Status,
		To:     next,
		Action: req.Action,
		Reason: req.Reason,
	}

	// State side effects beyond the status projection.
	switch req.Action {
	case models.ActionInitiateTransfer:
		rec.Transferee = req.Transferee
	case models.ActionCompleteTransfer:
		rec.OwnerID = rec.Transferee
		rec.Transferee = id.UserID{}
	case models.ActionCancelTransfer:
		rec.Transferee = id.UserID{}
	}

	appendEntry(rec, entry)
	return nil
}

// appendEntry is the atomic unit: the trail gains one entry and the
// status becomes the projection of it.
func appendEntry(rec *models.CattleRecord, entry models.TransitionEntry) {
	rec.Trail = append(rec.Trail, entry)
	rec.Status = entry.To
}
