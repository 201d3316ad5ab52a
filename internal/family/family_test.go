// ABOUTME: Tests for family groups, profiles and check-ins
// ABOUTME: Uses a real SQLite store and a stubbed invite code generator

package family

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/harper/gachi/internal/logging"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, timeutil.FixedClock{T: now}, logging.Discard()), store
}

func strPtr(s string) *string { return &s }

func TestGenerateInviteCode(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 20; i++ {
		code, err := generateInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestCreateGroupMakesCreatorHead(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	g, err := svc.CreateGroup(ctx, "mom", "  우리 가족 ")
	require.NoError(t, err)
	assert.Equal(t, "우리 가족", g.Name)
	assert.Len(t, g.InviteCode, InviteCodeLength)

	members, err := store.ListMembers(g.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "mom", members[0].UserID)
	assert.True(t, members[0].IsHead)

	_, err = svc.CreateGroup(ctx, "mom", " ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

// headlessStore refuses every membership insert.
type headlessStore struct {
	storage.Store
}

func (headlessStore) AddMember(*models.FamilyMember) error {
	return errors.New("disk full")
}

func TestCreateGroupRemovesGroupWhenHeadFails(t *testing.T) {
	_, store := setupService(t)
	svc := NewService(headlessStore{store}, timeutil.FixedClock{T: now}, logging.Discard())

	_, err := svc.CreateGroup(context.Background(), "mom", "우리 가족")
	require.Error(t, err)

	groups, err := store.ListGroups()
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCreateGroupRetriesOnCodeCollision(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	codes := []string{"AAAA11", "AAAA11", "BBBB22"}
	svc.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, err := svc.CreateGroup(ctx, "mom", "첫째")
	require.NoError(t, err)
	second, err := svc.CreateGroup(ctx, "dad", "둘째")
	require.NoError(t, err)

	assert.Equal(t, "AAAA11", first.InviteCode)
	assert.Equal(t, "BBBB22", second.InviteCode)
}

func TestCreateGroupGivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	svc.newCode = func() (string, error) { return "SAME01", nil }

	_, err := svc.CreateGroup(ctx, "mom", "첫째")
	require.NoError(t, err)
	_, err = svc.CreateGroup(ctx, "dad", "둘째")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	svc.newCode = func() (string, error) { return "", fmt.Errorf("entropy exhausted") }
	_, err = svc.CreateGroup(ctx, "dad", "셋째")
	assert.Error(t, err)
}

func TestJoinAndLeave(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	g, err := svc.CreateGroup(ctx, "mom", "가족")
	require.NoError(t, err)

	joined, err := svc.Join(ctx, "son", " "+g.InviteCode+" ")
	require.NoError(t, err)
	assert.Equal(t, g.ID, joined.ID)

	_, err = svc.Join(ctx, "son", g.InviteCode)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = svc.Join(ctx, "son", "NOPE99")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	groups, err := svc.Groups(ctx, "son")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	require.NoError(t, svc.Leave(ctx, "son", g.ID))
	assert.ErrorIs(t, svc.Leave(ctx, "son", g.ID), ErrNotMember)

	groups, err = svc.Groups(ctx, "son")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestMembersViewerFirstWithMood(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	g, err := svc.CreateGroup(ctx, "mom", "가족")
	require.NoError(t, err)
	require.NoError(t, store.AddMember(models.NewFamilyMember(g.ID, "son", false, now.Add(time.Minute))))
	require.NoError(t, store.AddMember(models.NewFamilyMember(g.ID, "daughter", false, now.Add(2*time.Minute))))

	_, err = svc.UpdateProfile(ctx, "mom", ProfilePatch{DisplayName: strPtr("엄마")})
	require.NoError(t, err)
	_, err = svc.RecordMood(ctx, "mom", "Good")
	require.NoError(t, err)

	members, err := svc.Members(ctx, g.ID, "daughter")
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, "daughter", members[0].UserID)
	assert.True(t, members[0].IsViewer)
	assert.Equal(t, models.DefaultDisplayName, members[0].DisplayName)
	assert.Nil(t, members[0].Mood)

	assert.Equal(t, "mom", members[1].UserID)
	assert.Equal(t, "엄마", members[1].DisplayName)
	assert.True(t, members[1].IsHead)
	require.NotNil(t, members[1].Mood)
	assert.Equal(t, models.MoodGood, members[1].Mood.Mood)

	assert.Equal(t, "son", members[2].UserID)

	_, err = svc.Members(ctx, g.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestEnsureAndUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	p, err := svc.EnsureProfile(ctx, "mom")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDisplayName, p.DisplayName)

	again, err := svc.EnsureProfile(ctx, "mom")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)

	updated, err := svc.UpdateProfile(ctx, "mom", ProfilePatch{
		DisplayName: strPtr(" 김순자 "),
		District:    strPtr("마포구"),
		PhoneNumber: strPtr("010-1234-5678"),
	})
	require.NoError(t, err)
	assert.Equal(t, "김순자", updated.DisplayName)
	assert.Equal(t, "마포구", updated.DistrictOrEmpty())

	cleared, err := svc.UpdateProfile(ctx, "mom", ProfilePatch{
		DisplayName: strPtr(""),
		PhoneNumber: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDisplayName, cleared.DisplayName)
	assert.Nil(t, cleared.PhoneNumber)
	assert.Equal(t, "마포구", cleared.DistrictOrEmpty())
}

func TestRecordMoodValidatesVocabulary(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	for _, mood := range []string{"good", " okay ", "BAD"} {
		_, err := svc.RecordMood(ctx, "mom", mood)
		require.NoError(t, err, mood)
	}
	_, err := svc.RecordMood(ctx, "mom", "ecstatic")
	assert.Error(t, err)

	moods, err := store.ListMoods("mom", 0)
	require.NoError(t, err)
	assert.Len(t, moods, 3)
}

func TestRecordHealth(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	rec, err := svc.RecordHealth(ctx, "mom", "blood_pressure", "120/80", "아침 식후")
	require.NoError(t, err)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "아침 식후", *rec.Notes)

	_, err = svc.RecordHealth(ctx, "mom", "steps", " ", "")
	assert.Error(t, err)

	list, err := store.ListHealth("mom", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "120/80", list[0].Value)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc, _ := setupService(t)

	_, err := svc.CreateGroup(ctx, "mom", "가족")
	assert.True(t, errors.Is(err, context.Canceled))
	_, err = svc.EnsureProfile(ctx, "mom")
	assert.True(t, errors.Is(err, context.Canceled))
}
