package auth

import "errors"

// NotAllowedMessage is shown to callers who try to change something they do not own.
const NotAllowedMessage = "You do not have the permission to do that!"

// ErrNotAllowed is matched by every *NotAllowedError.
var ErrNotAllowed = errors.New(NotAllowedMessage)

// NotAllowedError is returned by CheckOwnership on a mismatch.
type NotAllowedError struct {
	OwnerID     string
	PrincipalID string
}

func (e *NotAllowedError) Error() string { return NotAllowedMessage }

func (e *NotAllowedError) Unwrap() error { return ErrNotAllowed }

// CheckOwnership admits only when both ids are non-empty and equal.
func CheckOwnership(ownerID, principalID string) error {
	if ownerID == "" || principalID == "" || ownerID != principalID {
		return &NotAllowedError{OwnerID: ownerID, PrincipalID: principalID}
	}
	return nil
}
