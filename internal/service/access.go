package service

import (
	goerrors "errors"
	"fmt"

	"gorm.io/gorm"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/errors"
)

// authorize fails with ErrUnauthenticated when there is no caller and with
// ErrForbidden when the caller's role lacks the capability.
func authorize(authorizer authz.Authorizer, caller *auth.Session, object, action string) error {
	if caller == nil {
		return errors.ErrUnauthenticated
	}
	if !authorizer.Allowed(caller.Role(), object, action) {
		return errors.ErrForbidden
	}
	return nil
}

// notFound translates gorm's missing-row error into the domain sentinel and
// wraps anything else with what was being done.
func notFound(err error, sentinel error, doing string) error {
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", doing, err)
}
