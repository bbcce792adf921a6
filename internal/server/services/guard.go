package services

import (
	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/server/models"
)

// Authorize is the single choke point between "authenticated" and
// "authorized". Every owner-scoped service operation calls it on entry,
// before any repository access, so a new operation cannot skip the check by
// accident. A principal may only act on resources under its own owner id.
//
// On mismatch it returns common.ErrorNotFound, not a distinct forbidden
// error. A caller probing another user's resource path gets the same
// response shape as for a resource that does not exist, so the existence of
// another account's data is never revealed.
func Authorize(principal *models.User, ownerID string) error {
	if principal == nil || principal.ID == "" || principal.ID != ownerID {
		return common.ErrorNotFound
	}
	return nil
}
