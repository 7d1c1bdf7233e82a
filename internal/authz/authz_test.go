package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/auth"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

var (
	admin = auth.Principal{UserID: "a1", Email: "admin@example.com", Role: model.RoleAdmin}
	owner = auth.Principal{UserID: "u1", Email: "owner@example.com", Role: model.RoleUser}
	other = auth.Principal{UserID: "u2", Email: "other@example.com", Role: model.RoleUser}
)

func ownedRecord() model.Record {
	return model.Record{ID: "r1", CreatedBy: "u1", CreatedByEmail: "owner@example.com"}
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, OwnerScoped, ClassOf("plants"))
	assert.Equal(t, SharedWrite, ClassOf("care_logs"))
	assert.Equal(t, AdminOnlyWrite, ClassOf("species_guides"))
	assert.Equal(t, OwnerScoped, ClassOf("something_new"), "unknown collections default to the most restrictive class")
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(owner, OwnerScoped))
	assert.True(t, CanCreate(owner, SharedWrite))
	assert.False(t, CanCreate(owner, AdminOnlyWrite))
	assert.True(t, CanCreate(admin, AdminOnlyWrite))
}

func TestCanMutate(t *testing.T) {
	rec := ownedRecord()

	assert.True(t, CanMutate(owner, OwnerScoped, rec))
	assert.False(t, CanMutate(other, OwnerScoped, rec))
	assert.True(t, CanMutate(admin, OwnerScoped, rec))

	assert.True(t, CanMutate(owner, SharedWrite, rec))
	assert.False(t, CanMutate(other, SharedWrite, rec), "shared collections are shared for reads, not writes")

	assert.False(t, CanMutate(owner, AdminOnlyWrite, rec), "ownership never grants admin-only writes")
	assert.True(t, CanMutate(admin, AdminOnlyWrite, rec))
}

func TestCanRead(t *testing.T) {
	rec := ownedRecord()

	assert.True(t, CanRead(owner, OwnerScoped, rec))
	assert.False(t, CanRead(other, OwnerScoped, rec))
	assert.True(t, CanRead(admin, OwnerScoped, rec))
	assert.True(t, CanRead(other, SharedWrite, rec))
	assert.True(t, CanRead(other, AdminOnlyWrite, rec))
}

func TestOwnershipByEmailFallback(t *testing.T) {
	// Legacy records may carry only the creator email, differently cased.
	rec := model.Record{ID: "r2", CreatedByEmail: "Owner@Example.COM"}
	assert.True(t, CanMutate(owner, OwnerScoped, rec))
	assert.False(t, CanMutate(other, OwnerScoped, rec))
}

func TestFilterRecords(t *testing.T) {
	recs := []model.Record{
		{ID: "r1", CreatedBy: "u1"},
		{ID: "r2", CreatedBy: "u2"},
		{ID: "r3", CreatedBy: "u1"},
	}

	mine := FilterRecords(owner, OwnerScoped, recs)
	assert.Len(t, mine, 2)
	for _, r := range mine {
		assert.Equal(t, "u1", r.CreatedBy)
	}

	assert.Len(t, FilterRecords(admin, OwnerScoped, recs), 3)
	assert.Len(t, FilterRecords(other, SharedWrite, recs), 3)
}

func TestFilterUsers(t *testing.T) {
	users := []model.User{
		{ID: "u1", Email: "owner@example.com", AccountStatus: model.StatusActive, PasswordHash: "h", PasswordSalt: "s"},
		{ID: "u3", Email: "gone@example.com", AccountStatus: model.StatusSuspended},
	}

	visible := FilterUsers(other, users)
	assert.Len(t, visible, 1)
	assert.Empty(t, visible[0].PasswordHash, "credential material never leaves the store")

	all := FilterUsers(admin, users)
	assert.Len(t, all, 2)
	for _, u := range all {
		assert.Empty(t, u.PasswordHash)
		assert.Empty(t, u.PasswordSalt)
	}
}
