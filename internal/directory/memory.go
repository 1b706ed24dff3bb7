// Package directory holds the process-wide activity directory.
package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"example.com/activitysignup/internal/domain"
)

// ErrInvalidSeed is returned when seed activities break the directory invariants.
var ErrInvalidSeed = errors.New("invalid seed")

// InMemoryDirectory keeps activities in memory for the lifetime of the process.
type InMemoryDirectory struct {
	mu         sync.RWMutex
	activities map[string]*domain.Activity
	// enrolled maps each participant email to the one activity holding it.
	enrolled map[string]string
}

// NewInMemoryDirectory builds a directory populated with seed.
func NewInMemoryDirectory(seed []domain.Activity) (*InMemoryDirectory, error) {
	d := &InMemoryDirectory{
		activities: make(map[string]*domain.Activity, len(seed)),
		enrolled:   make(map[string]string),
	}
	for _, a := range seed {
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("%w: activity with empty name", ErrInvalidSeed)
		}
		if _, exists := d.activities[a.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate activity %q", ErrInvalidSeed, a.Name)
		}
		for _, email := range a.Participants {
			if holder, taken := d.enrolled[email]; taken {
				return nil, fmt.Errorf("%w: %s listed in both %q and %q", ErrInvalidSeed, email, holder, a.Name)
			}
			d.enrolled[email] = a.Name
		}
		stored := a.Clone()
		d.activities[a.Name] = &stored
	}
	return d, nil
}

// List implements domain.Directory.
func (d *InMemoryDirectory) List(ctx context.Context) (map[string]domain.Activity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]domain.Activity, len(d.activities))
	for name, a := range d.activities {
		out[name] = a.Clone()
	}
	return out, nil
}

// AddParticipant implements domain.Directory.
func (d *InMemoryDirectory) AddParticipant(ctx context.Context, activityName, email string) (domain.Activity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.activities[activityName]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if _, taken := d.enrolled[email]; taken {
		return domain.Activity{}, domain.ErrAlreadySignedUp
	}

	a.Participants = append(a.Participants, email)
	d.enrolled[email] = activityName
	return a.Clone(), nil
}

// RemoveParticipant implements domain.Directory.
func (d *InMemoryDirectory) RemoveParticipant(ctx context.Context, activityName, email string) (domain.Activity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.activities[activityName]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return domain.Activity{}, domain.ErrParticipantNotFound
	}

	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	delete(d.enrolled, email)
	return a.Clone(), nil
}
