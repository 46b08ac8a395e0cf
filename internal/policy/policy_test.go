package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekskaran/cattel/internal/registration/models"
	id "github.com/geekskaran/cattel/pkg/domain"
	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

func pendingRecord(owner id.UserID, region id.Region) *models.CattleRecord {
	return &models.CattleRecord{
		ID:      id.NewRecordID(),
		TagID:   "AB1234",
		OwnerID: owner,
		Region:  region,
		Status:  models.StatusPending,
	}
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestSuperAdminMayDoAnything(t *testing.T) {
	super := Actor{ID: id.NewUserID(), Role: id.RoleSuperAdmin}
	rec := pendingRecord(id.NewUserID(), "Bihar")

	for _, action := range []models.Action{
		models.ActionApprove, models.ActionDecline, models.ActionArchive,
		models.ActionView, models.ActionInitiateTransfer,
	} {
		assert.NoError(t, CanPerform(super, action, rec), "action %s", action)
	}
}

func TestRegionalAdminScope(t *testing.T) {
	adminID := id.NewUserID()
	admin := Actor{ID: adminID, Role: id.RoleRegionalAdmin, Region: "Bihar"}

	t.Run("may approve and decline pending records in own region", func(t *testing.T) {
		rec := pendingRecord(id.NewUserID(), "Bihar")
		assert.NoError(t, CanPerform(admin, models.ActionApprove, rec))
		assert.NoError(t, CanPerform(admin, models.ActionDecline, rec))
	})

	t.Run("denied outside own region", func(t *testing.T) {
		rec := pendingRecord(id.NewUserID(), "Punjab")
		assertForbidden(t, CanPerform(admin, models.ActionApprove, rec))
	})

	t.Run("denied once record left pending", func(t *testing.T) {
		rec := pendingRecord(id.NewUserID(), "Bihar")
		rec.Status = models.StatusApproved
		assertForbidden(t, CanPerform(admin, models.ActionApprove, rec))
	})

	t.Run("denied for non-approval actions", func(t *testing.T) {
		rec := pendingRecord(id.NewUserID(), "Bihar")
		assertForbidden(t, CanPerform(admin, models.ActionArchive, rec))
		assertForbidden(t, CanPerform(admin, models.ActionView, rec))
		assertForbidden(t, CanPerform(admin, models.ActionSubmit, rec))
	})
}

func TestFarmerScope(t *testing.T) {
	ownerID := id.NewUserID()
	owner := Actor{ID: ownerID, Role: id.RoleFarmer}
	stranger := Actor{ID: id.NewUserID(), Role: id.RoleFarmer}

	t.Run("may submit under own identity", func(t *testing.T) {
		rec := pendingRecord(ownerID, "Bihar")
		assert.NoError(t, CanPerform(owner, models.ActionSubmit, rec))
		assertForbidden(t, CanPerform(stranger, models.ActionSubmit, rec))
	})

	t.Run("never approve, even own records", func(t *testing.T) {
		rec := pendingRecord(ownerID, "Bihar")
		assertForbidden(t, CanPerform(owner, models.ActionApprove, rec))
		assertForbidden(t, CanPerform(owner, models.ActionDecline, rec))
	})

	t.Run("may view only own records", func(t *testing.T) {
		rec := pendingRecord(ownerID, "Bihar")
		assert.NoError(t, CanPerform(owner, models.ActionView, rec))
		assertForbidden(t, CanPerform(stranger, models.ActionView, rec))
	})

	t.Run("may archive own approved and declined records only", func(t *testing.T) {
		rec := pendingRecord(ownerID, "Bihar")
		assertForbidden(t, CanPerform(owner, models.ActionArchive, rec))

		rec.Status = models.StatusApproved
		assert.NoError(t, CanPerform(owner, models.ActionArchive, rec))
		assertForbidden(t, CanPerform(stranger, models.ActionArchive, rec))

		rec.Status = models.StatusDeclined
		assert.NoError(t, CanPerform(owner, models.ActionArchive, rec))
	})

	t.Run("transfer completion belongs to the counter-party", func(t *testing.T) {
		transferee := Actor{ID: id.NewUserID(), Role: id.RoleFarmer}
		rec := pendingRecord(ownerID, "Bihar")
		rec.Status = models.StatusTransit
		rec.Transferee = transferee.ID

		assert.NoError(t, CanPerform(transferee, models.ActionCompleteTransfer, rec))
		assertForbidden(t, CanPerform(owner, models.ActionCompleteTransfer, rec))

		assert.NoError(t, CanPerform(owner, models.ActionCancelTransfer, rec))
		assertForbidden(t, CanPerform(transferee, models.ActionCancelTransfer, rec))
	})
}

func TestUnknownRoleIsDenied(t *testing.T) {
	ghost := Actor{ID: id.NewUserID(), Role: id.Role("auditor")}
	rec := pendingRecord(ghost.ID, "Bihar")
	assertForbidden(t, CanPerform(ghost, models.ActionView, rec))
	assertForbidden(t, CanPerform(ghost, models.ActionApprove, rec))
}

func TestRegionManagement(t *testing.T) {
	assert.NoError(t, CanManageRegions(id.RoleSuperAdmin))
	assertForbidden(t, CanManageRegions(id.RoleRegionalAdmin))
	assertForbidden(t, CanManageRegions(id.RoleFarmer))
}

func TestQueueView(t *testing.T) {
	super := Actor{ID: id.NewUserID(), Role: id.RoleSuperAdmin}
	admin := Actor{ID: id.NewUserID(), Role: id.RoleRegionalAdmin, Region: "Bihar"}
	farmer := Actor{ID: id.NewUserID(), Role: id.RoleFarmer}

	assert.NoError(t, CanViewQueue(super, "Punjab"))
	assert.NoError(t, CanViewQueue(admin, "Bihar"))
	assertForbidden(t, CanViewQueue(admin, "Punjab"))
	assertForbidden(t, CanViewQueue(farmer, "Bihar"))
}
