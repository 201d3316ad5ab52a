// ABOUTME: Family group service: invite codes, membership, profiles and check-ins
// ABOUTME: Member lists show the viewer first with each member's latest mood

package family

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/sethvargo/go-password/password"
)

// InviteCodeLength is the length of generated invite codes.
const InviteCodeLength = 6

const inviteAttempts = 5

var (
	ErrAlreadyMember = errors.New("already a member of this group")
	ErrNotMember     = errors.New("not a member of this group")
	ErrInvalidName   = errors.New("group name is required")
)

// Member is one row of a group's member list.
type Member struct {
	UserID      string             `json:"user_id"`
	DisplayName string             `json:"display_name"`
	IsHead      bool               `json:"is_head"`
	IsViewer    bool               `json:"is_viewer"`
	Mood        *models.MoodRecord `json:"mood,omitempty"`
}

// Service manages groups and per-user records.
type Service struct {
	store   storage.Store
	clock   timeutil.Clock
	logger  *log.Logger
	newCode func() (string, error)
}

// NewService wires a family service.
func NewService(store storage.Store, clock timeutil.Clock, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, clock: clock, logger: logger, newCode: generateInviteCode}
}

// generateInviteCode returns six upper-case letters and digits.
func generateInviteCode() (string, error) {
	code, err := password.Generate(InviteCodeLength, 2, 0, false, true)
	if err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	return strings.ToUpper(code), nil
}

// CreateGroup creates a group with a fresh invite code and makes userID its head.
func (s *Service) CreateGroup(ctx context.Context, userID, name string) (*models.FamilyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	var group *models.FamilyGroup
	for attempt := 1; ; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		group = models.NewFamilyGroup(name, code, userID, s.clock.Now())
		err = s.store.CreateGroup(group)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrAlreadyExists) || attempt == inviteAttempts {
			return nil, fmt.Errorf("create group: %w", err)
		}
		s.logger.Debug("invite code collision, retrying", "attempt", attempt)
	}

	head := models.NewFamilyMember(group.ID, userID, true, s.clock.Now())
	if err := s.store.AddMember(head); err != nil {
		if derr := s.store.DeleteGroup(group.ID); derr != nil {
			s.logger.Warn("failed to remove group without head", "group", group.ID, "err", derr)
		}
		return nil, fmt.Errorf("add head member: %w", err)
	}
	s.logger.Info("family group created", "group", group.ID, "invite_code", group.InviteCode)
	return group, nil
}

// Join adds userID to the group with the given invite code.
func (s *Service) Join(ctx context.Context, userID, inviteCode string) (*models.FamilyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	group, err := s.store.GetGroupByInviteCode(inviteCode)
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	err = s.store.AddMember(models.NewFamilyMember(group.ID, userID, false, s.clock.Now()))
	if errors.Is(err, storage.ErrAlreadyExists) {
		return group, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}
	return group, nil
}

// Leave removes userID from a group.
func (s *Service) Leave(ctx context.Context, userID, groupID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.store.RemoveMember(groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotMember
	}
	return err
}

// Groups returns the groups userID belongs to.
func (s *Service) Groups(ctx context.Context, userID string) ([]*models.FamilyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListGroupsForUser(userID)
}

// Members lists a group for viewerID: the viewer first, then by join order.
func (s *Service) Members(ctx context.Context, groupID, viewerID string) ([]Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.store.ListMembers(groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	ids := make([]string, 0, len(rows))
	viewerIn := false
	for _, m := range rows {
		ids = append(ids, m.UserID)
		viewerIn = viewerIn || m.UserID == viewerID
	}
	if !viewerIn {
		return nil, ErrNotMember
	}

	profiles, err := s.store.ListProfiles(ids)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}

	out := make([]Member, 0, len(rows))
	for _, m := range rows {
		mood, err := s.store.LatestMood(m.UserID)
		if err != nil {
			return nil, fmt.Errorf("latest mood: %w", err)
		}
		name := names[m.UserID]
		if name == "" {
			name = models.DefaultDisplayName
		}
		out = append(out, Member{
			UserID:      m.UserID,
			DisplayName: name,
			IsHead:      m.IsHead,
			IsViewer:    m.UserID == viewerID,
			Mood:        mood,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsViewer && !out[j].IsViewer
	})
	return out, nil
}
