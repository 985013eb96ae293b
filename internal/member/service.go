package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/memberhub/memberhub/internal/notification"
)

// Service manages member profiles for the portal.
type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService creates a member service. The notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Profile returns the member record for the given ID.
func (s *Service) Profile(ctx context.Context, id int) (Record, error) {
	return s.repo.FindByID(ctx, id)
}

// GroupMembers lists every member of the group, ordered by ID.
func (s *Service) GroupMembers(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update to a member record and notifies
// downstream listeners.
func (s *Service) Update(ctx context.Context, id int, patch Patch) (Record, error) {
	if patch.Empty() {
		return Record{}, errors.New("no updatable fields in request")
	}
	rec, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Record{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindMemberUpdated,
			Destination: rec.EmailID,
			Body:        fmt.Sprintf("member %d profile updated", rec.ID),
		})
	}
	return rec, nil
}

// Add creates a new member and returns its ID.
func (s *Service) Add(ctx context.Context, name, email string) (int, error) {
	if name == "" || email == "" {
		return 0, errors.New("name and email are required")
	}
	id, err := s.repo.Create(ctx, name, email)
	if err != nil {
		return 0, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindMemberCreated,
			Destination: email,
			Body:        fmt.Sprintf("member %d created", id),
		})
	}
	return id, nil
}
