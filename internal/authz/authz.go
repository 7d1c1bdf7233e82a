package authz

import (
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/auth"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// Class is the access class of a record collection.
type Class string

const (
	// OwnerScoped: only the creator or an admin may read or mutate.
	OwnerScoped Class = "owner"
	// SharedWrite: any authenticated user may create and read; mutation is
	// restricted to the owner or an admin.
	SharedWrite Class = "shared"
	// AdminOnlyWrite: creation and mutation restricted to admins; any
	// authenticated user may read.
	AdminOnlyWrite Class = "admin_only"
)

// classes maps known collections to their access class. Unknown
// collections default to owner-scoped, the most restrictive class.
var classes = map[string]Class{
	"plants":         OwnerScoped,
	"care_logs":      SharedWrite,
	"species_guides": AdminOnlyWrite,
}

func ClassOf(collection string) Class {
	if c, ok := classes[collection]; ok {
		return c
	}
	return OwnerScoped
}

// CanCreate decides record creation.
func CanCreate(p auth.Principal, class Class) bool {
	if class == AdminOnlyWrite {
		return p.IsAdmin()
	}
	return true
}

// CanMutate decides update and delete. Admins bypass all checks; admin-only
// classes reject non-admins regardless of ownership.
func CanMutate(p auth.Principal, class Class, rec model.Record) bool {
	if p.IsAdmin() {
		return true
	}
	if class == AdminOnlyWrite {
		return false
	}
	return owns(p, rec)
}

// CanRead decides single-record visibility.
func CanRead(p auth.Principal, class Class, rec model.Record) bool {
	if p.IsAdmin() || class != OwnerScoped {
		return true
	}
	return owns(p, rec)
}

// FilterRecords narrows a collection listing to what the principal may see.
func FilterRecords(p auth.Principal, class Class, recs []model.Record) []model.Record {
	if p.IsAdmin() || class != OwnerScoped {
		return recs
	}
	visible := make([]model.Record, 0, len(recs))
	for _, rec := range recs {
		if owns(p, rec) {
			visible = append(visible, rec)
		}
	}
	return visible
}

// FilterUsers narrows a user listing: non-admins never see suspended
// accounts. Credential fields are stripped for every caller.
func FilterUsers(p auth.Principal, users []model.User) []model.User {
	visible := make([]model.User, 0, len(users))
	for _, u := range users {
		if !p.IsAdmin() && u.AccountStatus == model.StatusSuspended {
			continue
		}
		visible = append(visible, u.Public())
	}
	return visible
}

// owns matches the record's owner identity by id or normalized email.
func owns(p auth.Principal, rec model.Record) bool {
	if rec.CreatedBy != "" && rec.CreatedBy == p.UserID {
		return true
	}
	return rec.CreatedByEmail != "" &&
		credential.NormalizeEmail(rec.CreatedByEmail) == credential.NormalizeEmail(p.Email)
}
