// Package domain defines the activity directory and the signup rules applied to it.
package domain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"example.com/activitysignup/internal/observability"
	"example.com/activitysignup/pkg/events"
)

const (
	operationSignup = "signup"
	operationRemove = "remove"
)

// Directory stores activities and enforces enrollment rules atomically.
//
// AddParticipant fails with ErrActivityNotFound when the activity is unknown and with
// ErrAlreadySignedUp when the email belongs to any activity. RemoveParticipant fails with
// ErrActivityNotFound or ErrParticipantNotFound. Both return a copy of the updated activity.
type Directory interface {
	List(ctx context.Context) (map[string]Activity, error)
	AddParticipant(ctx context.Context, activityName, email string) (Activity, error)
	RemoveParticipant(ctx context.Context, activityName, email string) (Activity, error)
}

// EventPublisher forwards enrollment events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithLogger sets the logger used for publish failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service orchestrates directory operations.
type Service struct {
	dir       Directory
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(dir Directory, publisher EventPublisher, opts ...Option) *Service {
	s := &Service{
		dir:       dir,
		publisher: publisher,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns a snapshot of every activity keyed by name.
func (s *Service) ListActivities(ctx context.Context) (map[string]Activity, error) {
	return s.dir.List(ctx)
}

// Signup enrolls email in the named activity and returns a confirmation message.
func (s *Service) Signup(ctx context.Context, activityName, email string) (string, error) {
	activity, err := s.dir.AddParticipant(ctx, activityName, email)
	if err != nil {
		observability.RecordRejection(operationSignup, Reason(err))
		return "", err
	}

	observability.RecordSignup(activity.Name, len(activity.Participants))
	s.publish(ctx, events.EventParticipantSignedUp, activity.Name, events.ParticipantSignedUp{
		Activity:   activity.Name,
		Email:      email,
		OccurredAt: s.now().UTC(),
	})

	return fmt.Sprintf("Signed up %s for %s", email, activity.Name), nil
}

// Remove drops email from the named activity and returns a confirmation message.
func (s *Service) Remove(ctx context.Context, activityName, email string) (string, error) {
	activity, err := s.dir.RemoveParticipant(ctx, activityName, email)
	if err != nil {
		observability.RecordRejection(operationRemove, Reason(err))
		return "", err
	}

	observability.RecordRemoval(activity.Name, len(activity.Participants))
	s.publish(ctx, events.EventParticipantRemoved, activity.Name, events.ParticipantRemoved{
		Activity:   activity.Name,
		Email:      email,
		OccurredAt: s.now().UTC(),
	})

	return fmt.Sprintf("Removed %s from %s", email, activity.Name), nil
}

// SyncMetrics publishes the current participant counts, typically once at startup.
func (s *Service) SyncMetrics(ctx context.Context) error {
	activities, err := s.dir.List(ctx)
	if err != nil {
		return err
	}
	for name, activity := range activities {
		observability.RecordParticipants(name, len(activity.Participants))
	}
	return nil
}

// publish is best effort: the directory change has already been applied.
func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.logger.Warn("enrollment event not published",
			zap.String("event_type", eventType),
			zap.String("activity", key),
			zap.Error(err),
		)
	}
}
