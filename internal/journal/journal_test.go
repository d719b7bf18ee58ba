package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestJournal_RecordAndStats(t *testing.T) {
	j, _ := openTest(t)
	ctx := context.Background()

	attempts := []Attempt{
		{SentenceID: 1, SceneID: 10, Input: "i love coffee", Correct: true, Duration: 1500 * time.Millisecond},
		{SentenceID: 1, SceneID: 10, Input: "i love tea", Correct: false},
		{SentenceID: 2, SceneID: 10, Input: "good morning", Correct: true},
		{SentenceID: 3, SceneID: 20, Input: "where is", Correct: false},
	}
	for _, a := range attempts {
		require.NoError(t, j.Record(ctx, a))
	}

	st, err := j.SentenceStat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Stat{Attempts: 2, Correct: 1}, st)
	assert.InDelta(t, 0.5, st.Ratio(), 1e-9)

	none, err := j.SentenceStat(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, Stat{}, none)
	assert.Zero(t, none.Ratio())

	scenes, err := j.SceneStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]Stat{
		10: {Attempts: 3, Correct: 2},
		20: {Attempts: 1, Correct: 0},
	}, scenes)

	sentences, err := j.SentenceStats(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, map[int64]Stat{
		1: {Attempts: 2, Correct: 1},
		2: {Attempts: 1, Correct: 1},
	}, sentences)
}

func TestJournal_UserIDIsStable(t *testing.T) {
	j, path := openTest(t)
	ctx := context.Background()

	id, err := j.UserID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	again, err := j.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	require.NoError(t, j.Close())
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	persisted, err := reopened.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, persisted)
}
