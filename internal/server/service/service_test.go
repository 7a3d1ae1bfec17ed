package service

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"repertoire/internal/core"
	"repertoire/internal/scheduler"
	"repertoire/internal/server/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-minimum-32-characters!!")

func newTestService(t *testing.T) *Service {
	t.Helper()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), true)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	t.Cleanup(func() { store.Close() })

	return New(store, testSecret)
}

func newTestUser(t *testing.T, svc *Service, name string) string {
	t.Helper()
	u, err := svc.CreateUser(name, "", "password123")
	require.NoError(t, err)
	return u.UserID
}

// mainLine is 1. e4 e5 2. Nf3 from White's perspective: two decisions.
var (
	mainLineSan = []string{"e4", "e5", "Nf3"}
	mainLineUci = []string{"e2e4", "e7e5", "g1f3"}
)

func TestSaveLineCreatesEntries(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	created, err := svc.SaveLine(userID, core.ColorWhite, "Italian", mainLineSan, mainLineUci)
	require.NoError(t, err)
	assert.Equal(t, 2, created, "two White decisions in a 3-ply line")

	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	moves := []string{entries[0].MoveUci, entries[1].MoveUci}
	assert.Contains(t, moves, "e2e4")
	assert.Contains(t, moves, "g1f3")

	for _, e := range entries {
		assert.Equal(t, "learning", e.Phase)
		assert.Equal(t, 0, e.Repetitions)
		assert.InDelta(t, 2.5, e.EaseFactor, 1e-9)
		assert.Nil(t, e.LastReview)
	}

	// Fresh entries are immediately due.
	due, err := svc.DueCards(userID, core.ColorWhite, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestSaveLineIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	_, err := svc.SaveLine(userID, core.ColorWhite, "Italian", mainLineSan, mainLineUci)
	require.NoError(t, err)

	created, err := svc.SaveLine(userID, core.ColorWhite, "Italian", mainLineSan, mainLineUci)
	require.NoError(t, err)
	assert.Equal(t, 0, created, "re-saving the same line adds nothing")

	// Extending the line adds only the new decision.
	extSan := []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}
	extUci := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"}
	created, err = svc.SaveLine(userID, core.ColorWhite, "Ruy Lopez", extSan, extUci)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSaveLineForBlack(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	// 1. e4 c5: one Black decision.
	created, err := svc.SaveLine(userID, core.ColorBlack, "Sicilian",
		[]string{"e4", "c5"}, []string{"e2e4", "c7c5"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	entries, err := svc.RepertoireEntries(userID, core.ColorBlack)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c7c5", entries[0].MoveUci)

	// The two repertoires are separate.
	white, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	assert.Empty(t, white)
}

func TestSaveLineRejectsWrongColorEnding(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	// White line ending on Black's reply.
	_, err := svc.SaveLine(userID, core.ColorWhite, "",
		[]string{"e4", "e5"}, []string{"e2e4", "e7e5"})
	assert.ErrorIs(t, err, ErrLineEndsOnOpponentMove)

	// Black line ending on White's move.
	_, err = svc.SaveLine(userID, core.ColorBlack, "",
		[]string{"e4"}, []string{"e2e4"})
	assert.ErrorIs(t, err, ErrLineEndsOnOpponentMove)
}

func TestSaveLineRejectsEmptyOrMismatched(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	_, err := svc.SaveLine(userID, core.ColorWhite, "", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyOrMismatchedLine)

	_, err = svc.SaveLine(userID, core.ColorWhite, "",
		[]string{"e4", "e5", "Nf3"}, []string{"e2e4", "e7e5"})
	assert.ErrorIs(t, err, ErrEmptyOrMismatchedLine)
}

func TestSaveLineRejectsIllegalMove(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	// Queen jumping over its own pawn.
	_, err := svc.SaveLine(userID, core.ColorWhite, "",
		[]string{"e4", "e5", "Qd5"}, []string{"e2e4", "e7e5", "d1d5"})
	assert.ErrorIs(t, err, ErrInvalidMoveInLine)

	// Nothing was persisted.
	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitReviewPersistsState(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	_, err := svc.SaveLine(userID, core.ColorWhite, "", mainLineSan, mainLineUci)
	require.NoError(t, err)

	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	entry := entries[0]

	now := time.Now().UTC()
	outcome, err := svc.SubmitReview(userID, entry.EntryID, scheduler.Effort, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, outcome.IntervalDays, "effort on the first learning step waits 1 day")
	assert.NotEmpty(t, outcome.Rationale)

	// Reload and verify the new state hit the database.
	entries, err = svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	var updated *storage.EntryRecord
	for i := range entries {
		if entries[i].EntryID == entry.EntryID {
			updated = &entries[i]
		}
	}
	require.NotNil(t, updated)
	assert.Equal(t, "learning", updated.Phase)
	assert.Equal(t, 1, updated.LearningStep)
	require.NotNil(t, updated.LastReview)
	assert.WithinDuration(t, now, *updated.LastReview, time.Second)
	assert.WithinDuration(t, now.Add(24*time.Hour), updated.NextReview, time.Second)

	// The rescheduled entry is no longer due.
	due, err := svc.DueCards(userID, core.ColorWhite, now)
	require.NoError(t, err)
	for _, d := range due {
		assert.NotEqual(t, entry.EntryID, d.EntryID)
	}
}

func TestSubmitReviewOwnershipAndExistence(t *testing.T) {
	svc := newTestService(t)
	alice := newTestUser(t, svc, "alice")
	bob := newTestUser(t, svc, "bob")

	_, err := svc.SaveLine(alice, core.ColorWhite, "", mainLineSan, mainLineUci)
	require.NoError(t, err)
	entries, err := svc.RepertoireEntries(alice, core.ColorWhite)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = svc.SubmitReview(bob, entries[0].EntryID, scheduler.Easy, now)
	assert.ErrorIs(t, err, ErrEntryForbidden)

	_, err = svc.SubmitReview(alice, uuid.New().String(), scheduler.Easy, now)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestDeleteEntryTreeCascades(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	// Two lines sharing the root move: 1. e4 e5 2. Nf3 and 1. e4 c5 2. Nc3.
	_, err := svc.SaveLine(userID, core.ColorWhite, "Open", mainLineSan, mainLineUci)
	require.NoError(t, err)
	_, err = svc.SaveLine(userID, core.ColorWhite, "Sicilian",
		[]string{"e4", "c5", "Nc3"}, []string{"e2e4", "c7c5", "b1c3"})
	require.NoError(t, err)

	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var root string
	for _, e := range entries {
		if e.MoveUci == "e2e4" {
			root = e.EntryID
		}
	}
	require.NotEmpty(t, root)

	deleted, err := svc.DeleteEntryTree(userID, root)
	require.NoError(t, err)
	assert.Len(t, deleted, 3, "the root and both continuations go together")
	assert.Contains(t, deleted, root)

	entries, err = svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The orphan sweep removed every position as well.
	assert.Equal(t, 0, countPositions(t, svc))
}

func TestDeleteLeafKeepsAncestors(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	_, err := svc.SaveLine(userID, core.ColorWhite, "", mainLineSan, mainLineUci)
	require.NoError(t, err)

	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var leaf string
	for _, e := range entries {
		if e.MoveUci == "g1f3" {
			leaf = e.EntryID
		}
	}
	require.NotEmpty(t, leaf)

	before := countPositions(t, svc)
	deleted, err := svc.DeleteEntryTree(userID, leaf)
	require.NoError(t, err)
	assert.Equal(t, []string{leaf}, deleted)

	entries, err = svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e2e4", entries[0].MoveUci)

	// Only the leaf's own position became orphaned.
	assert.Equal(t, before-1, countPositions(t, svc))
}

func TestDeleteEntryTreeOwnershipAndExistence(t *testing.T) {
	svc := newTestService(t)
	alice := newTestUser(t, svc, "alice")
	bob := newTestUser(t, svc, "bob")

	_, err := svc.SaveLine(alice, core.ColorWhite, "", mainLineSan, mainLineUci)
	require.NoError(t, err)
	entries, err := svc.RepertoireEntries(alice, core.ColorWhite)
	require.NoError(t, err)

	_, err = svc.DeleteEntryTree(bob, entries[0].EntryID)
	assert.ErrorIs(t, err, ErrEntryForbidden)

	_, err = svc.DeleteEntryTree(alice, uuid.New().String())
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// Nothing was removed by the failed attempts.
	entries, err = svc.RepertoireEntries(alice, core.ColorWhite)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDeleteDoesNotCrossRepertoires(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	// The same opening from both sides shares positions in the store.
	_, err := svc.SaveLine(userID, core.ColorWhite, "", mainLineSan, mainLineUci)
	require.NoError(t, err)
	_, err = svc.SaveLine(userID, core.ColorBlack, "",
		[]string{"e4", "e5"}, []string{"e2e4", "e7e5"})
	require.NoError(t, err)

	white, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	var root string
	for _, e := range white {
		if e.MoveUci == "e2e4" {
			root = e.EntryID
		}
	}
	require.NotEmpty(t, root)

	_, err = svc.DeleteEntryTree(userID, root)
	require.NoError(t, err)

	// Black's entry on a shared position survives the cascade and the sweep.
	black, err := svc.RepertoireEntries(userID, core.ColorBlack)
	require.NoError(t, err)
	require.Len(t, black, 1)
	assert.Equal(t, "e7e5", black[0].MoveUci)
}

func TestDeleteKeepsPositionSharedBySiblingLine(t *testing.T) {
	svc := newTestService(t)
	userID := newTestUser(t, svc, "alice")

	// Ruy Lopez and Italian share every position up to white's third move.
	_, err := svc.SaveLine(userID, core.ColorWhite, "Ruy Lopez",
		[]string{"e4", "e5", "Nf3", "Nc6", "Bb5"},
		[]string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"})
	require.NoError(t, err)
	_, err = svc.SaveLine(userID, core.ColorWhite, "Italian",
		[]string{"e4", "e5", "Nf3", "Nc6", "Bc4"},
		[]string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4"})
	require.NoError(t, err)

	entries, err := svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var leaf string
	for _, e := range entries {
		if e.MoveUci == "f1b5" {
			leaf = e.EntryID
		}
	}
	require.NotEmpty(t, leaf)

	before := countPositions(t, svc)
	deleted, err := svc.DeleteEntryTree(userID, leaf)
	require.NoError(t, err)
	assert.Equal(t, []string{leaf}, deleted)

	// The sibling line still references every remaining position, so the
	// sweep removes nothing.
	assert.Equal(t, before, countPositions(t, svc))

	entries, err = svc.RepertoireEntries(userID, core.ColorWhite)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotEqual(t, "f1b5", e.MoveUci)
	}
}

func TestUserLifecycle(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.CreateUser("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)

	// Duplicate usernames are rejected.
	_, err = svc.CreateUser("alice", "", "password123")
	assert.Error(t, err)

	// Login by username and by email.
	_, err = svc.AuthenticateUser("alice", "password123")
	require.NoError(t, err)
	_, err = svc.AuthenticateUser("alice@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.AuthenticateUser("alice", "wrong-password")
	assert.Error(t, err)

	// Token round trip.
	token, err := svc.GenerateUserToken(u.UserID)
	require.NoError(t, err)
	gotID, _, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, gotID)
}

func countPositions(t *testing.T, svc *Service) int {
	t.Helper()
	var n int
	err := svc.store.WithTx(func(tx *sql.Tx) error {
		var err error
		n, err = storage.CountPositions(tx)
		return err
	})
	require.NoError(t, err)
	return n
}
