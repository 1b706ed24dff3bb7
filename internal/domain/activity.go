package domain

import "slices"

// Activity is an extracurricular offering identified by its unique name.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Clone returns a copy that shares no mutable state with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = slices.Clone(a.Participants)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return out
}

// HasParticipant reports whether email is enrolled in the activity.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}
