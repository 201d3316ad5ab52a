// ABOUTME: Profile and check-in operations for the local user
// ABOUTME: Profiles are created on first use with the default display name

package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/storage"
)

// ProfilePatch holds optional profile edits. Empty strings clear optional fields.
type ProfilePatch struct {
	DisplayName *string
	PhoneNumber *string
	City        *string
	District    *string
	Dong        *string
	AvatarURL   *string
}

// EnsureProfile returns the user's profile, creating a default one when absent.
func (s *Service) EnsureProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	p = models.NewProfile(userID, "", s.clock.Now())
	if err := s.store.CreateProfile(p); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return s.store.GetProfile(userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.logger.Debug("created default profile", "user", userID)
	return p, nil
}

// UpdateProfile applies patch to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.Profile, error) {
	p, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" {
			name = models.DefaultDisplayName
		}
		p.DisplayName = name
	}
	setOptional(&p.PhoneNumber, patch.PhoneNumber)
	setOptional(&p.City, patch.City)
	setOptional(&p.District, patch.District)
	setOptional(&p.Dong, patch.Dong)
	setOptional(&p.AvatarURL, patch.AvatarURL)
	p.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateProfile(p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func setOptional(field **string, v *string) {
	if v == nil {
		return
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		*field = nil
		return
	}
	*field = &trimmed
}

// RecordMood stores a check-in after validating the mood vocabulary.
func (s *Service) RecordMood(ctx context.Context, userID, mood string) (*models.MoodRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := models.ParseMood(strings.ToLower(strings.TrimSpace(mood)))
	if err != nil {
		return nil, err
	}
	rec := models.NewMoodRecord(userID, m, s.clock.Now())
	if err := s.store.RecordMood(rec); err != nil {
		return nil, fmt.Errorf("record mood: %w", err)
	}
	return rec, nil
}

// RecordHealth stores a measurement such as "blood_pressure" "120/80".
func (s *Service) RecordHealth(ctx context.Context, userID, recordType, value, notes string) (*models.HealthRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recordType, value = strings.TrimSpace(recordType), strings.TrimSpace(value)
	if recordType == "" || value == "" {
		return nil, fmt.Errorf("record type and value are required")
	}
	rec := models.NewHealthRecord(userID, recordType, value, s.clock.Now())
	if n := strings.TrimSpace(notes); n != "" {
		rec.Notes = &n
	}
	if err := s.store.RecordHealth(rec); err != nil {
		return nil, fmt.Errorf("record health: %w", err)
	}
	return rec, nil
}
