// Package policy is the single authorization enforcement point. The
// lifecycle engine must not transition a record without an explicit
// permit from CanPerform.
//
// The rules are evaluated in order, first match wins, and the default
// is deny. No rule ever grants approve to a non-administrator role and
// no timeout path exists here, so automatic approval is structurally
// impossible.
package policy

import (
	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

// Actor is the authenticated caller as the policy sees it: identity,
// role, and (for regional admins) the assigned region.
type Actor struct {
	ID     id.UserID
	Role   id.Role
	Region id.Region
}

// CanPerform decides permit or deny for the action on the record. It is
// a pure function: no storage, no side effects, deterministic given its
// input. A nil error is a permit; a deny always carries CodeForbidden.
func CanPerform(actor Actor, action models.Action, rec *models.CattleRecord) error {
	// Exhaustive match over the closed role set; an unknown role can
	// never reach an allow rule.
	switch actor.Role {
	case id.RoleSuperAdmin:
		// Rule 1: super admin may perform any action on any record.
		return nil

	case id.RoleRegionalAdmin:
		// Rule 2: regional admin may approve/decline only records in
		// their own region, and only while pending.
		if action != models.ActionApprove && action != models.ActionDecline {
			return deny(actor, action)
		}
		if rec == nil || rec.Region != actor.Region || rec.Status != models.StatusPending {
			return deny(actor, action)
		}
		return nil

	case id.RoleFarmer:
		return canFarmerPerform(actor, action, rec)
	}

	return deny(actor, action)
}

// canFarmerPerform holds rule 3: farmers act only on their own records.
func canFarmerPerform(actor Actor, action models.Action, rec *models.CattleRecord) error {
	if rec == nil {
		return deny(actor, action)
	}

	switch action {
	case models.ActionSubmit:
		// Submissions must be under the farmer's own identity.
		if rec.OwnerID == actor.ID {
			return nil
		}

	case models.ActionView:
		if rec.OwnerID == actor.ID {
			return nil
		}

	case models.ActionArchive:
		if rec.OwnerID == actor.ID &&
			(rec.Status == models.StatusApproved || rec.Status == models.StatusDeclined) {
			return nil
		}

	case models.ActionInitiateTransfer, models.ActionCancelTransfer:
		// Transfer start and cancel belong to the current owner.
		if rec.OwnerID == actor.ID {
			return nil
		}

	case models.ActionCompleteTransfer:
		// Acknowledgment comes from the counter-party, not the owner.
		if rec.Transferee == actor.ID && !rec.Transferee.IsNil() {
			return nil
		}
	}

	return deny(actor, action)
}

// CanManageRegions gates region admin assignment. Only the super admin
// may change the region directory.
func CanManageRegions(role id.Role) error {
	if role == id.RoleSuperAdmin {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "only the super admin may manage region assignments")
}

// CanViewQueue gates the per-region pending queue view: the region's
// own admin or the super admin.
func CanViewQueue(actor Actor, region id.Region) error {
	switch actor.Role {
	case id.RoleSuperAdmin:
		return nil
	case id.RoleRegionalAdmin:
		if actor.Region == region {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "you do not have permission for this action")
}

func deny(actor Actor, action models.Action) error {
	return dErrors.Newf(dErrors.CodeForbidden, "%s may not %s this record", actor.Role, action)
}
