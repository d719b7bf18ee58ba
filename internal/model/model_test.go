package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIcon(t *testing.T) {
	tests := []struct {
		tag     string
		want    Icon
		wantErr bool
	}{
		{"home", IconHome, false},
		{"Work", IconWork, false},
		{" travel ", IconTravel, false},
		{"rocket", IconHome, true},
		{"", IconHome, true},
	}
	for _, tt := range tests {
		got, err := ParseIcon(tt.tag)
		assert.Equal(t, tt.want, got, tt.tag)
		if tt.wantErr {
			assert.Error(t, err, tt.tag)
		} else {
			assert.NoError(t, err, tt.tag)
		}
	}
}

func TestSceneDecodesUnknownIconAsHome(t *testing.T) {
	var scenes []Scene
	raw := `[{"id":1,"name":"Home","icon":"home"},{"id":2,"name":"Travel","icon":"travel"},{"id":3,"name":"Odd","icon":"rocket"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &scenes))
	require.Len(t, scenes, 3)
	assert.Equal(t, IconHome, scenes[0].Icon)
	assert.Equal(t, IconTravel, scenes[1].Icon)
	assert.Equal(t, IconHome, scenes[2].Icon)
}

func TestDifficultyIsValid(t *testing.T) {
	assert.True(t, DifficultyEasy.IsValid())
	assert.True(t, DifficultyHard.IsValid())
	assert.False(t, Difficulty("extreme").IsValid())
}

func TestUserProgressOmitsZeroID(t *testing.T) {
	b, err := json.Marshal(UserProgress{UserID: "u1", SentenceID: 4, Attempts: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","sentence_id":4,"completed":false,"attempts":2}`, string(b))
}
