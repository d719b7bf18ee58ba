package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicewriter-go/internal/model"
)

func TestProgressLine_NeverAttempted(t *testing.T) {
	var p model.UserProgress
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u1","sentence_id":4,"attempts":0,"last_attempt":"0001-01-01T00:00:00Z"}`), &p))
	require.NotNil(t, p.LastAttempt)

	line := progressLine(p)
	assert.Contains(t, line, "last: never")
	assert.Contains(t, line, "in progress")

	p.LastAttempt = nil
	assert.Contains(t, progressLine(p), "last: never")
}

func TestProgressLine_Attempted(t *testing.T) {
	last := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	line := progressLine(model.UserProgress{SentenceID: 9, Completed: true, Attempts: 3, LastAttempt: &last})
	assert.Contains(t, line, "completed")
	assert.Contains(t, line, "attempts: 3")
	assert.Contains(t, line, "last: 2026-03-14 09:30")
}
