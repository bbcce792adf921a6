package auth

import (
	"fmt"

	"github.com/dstepanenko/tasktrack/internal/common"
)

// ValidatePassword applies the caller-supplied password policy: a minimum
// length. Complexity beyond length is intentionally not required; the hash
// itself does not depend on the policy.
func ValidatePassword(password string, minLength int) error {
	if len(password) < minLength {
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, minLength)
	}
	return nil
}
