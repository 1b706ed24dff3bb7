package domain

import "errors"

var (
	// ErrNotFound classifies failures caused by a missing activity or participant.
	ErrNotFound = errors.New("not found")
	// ErrConflict classifies failures caused by an existing enrollment.
	ErrConflict = errors.New("conflict")
)

var (
	// ErrActivityNotFound is returned when no activity has the requested name.
	ErrActivityNotFound = newKindError(ErrNotFound, "activity_not_found", "Activity not found")
	// ErrParticipantNotFound is returned when removing an email the activity does not hold.
	ErrParticipantNotFound = newKindError(ErrNotFound, "participant_not_found", "Participant not found")
	// ErrAlreadySignedUp is returned when the email is enrolled in any activity.
	ErrAlreadySignedUp = newKindError(ErrConflict, "already_signed_up", "Student is already signed up")
)

// kindError carries a user-facing message and unwraps to its classification.
type kindError struct {
	kind   error
	reason string
	msg    string
}

func newKindError(kind error, reason, msg string) *kindError {
	return &kindError{kind: kind, reason: reason, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Reason returns a stable, label-safe identifier for err.
func Reason(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.reason
	}
	return "internal"
}
