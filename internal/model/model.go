// Package model holds the records exchanged with the VoiceWriter API.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Icon is the thematic glyph of a scene.
type Icon int

const (
	IconHome Icon = iota
	IconWork
	IconTravel
)

// ParseIcon maps an API icon tag to its variant.
func ParseIcon(tag string) (Icon, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "home":
		return IconHome, nil
	case "work":
		return IconWork, nil
	case "travel":
		return IconTravel, nil
	default:
		return IconHome, fmt.Errorf("model: unknown icon tag %q", tag)
	}
}

func (i Icon) String() string {
	switch i {
	case IconWork:
		return "work"
	case IconTravel:
		return "travel"
	default:
		return "home"
	}
}

func (i Icon) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON decodes unknown or empty tags as IconHome so a single
// unexpected icon never drops a whole scene list.
func (i *Icon) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err != nil {
		return fmt.Errorf("model: icon: %w", err)
	}
	*i, _ = ParseIcon(tag)
	return nil
}

// Difficulty grades a sentence.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Scene struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        Icon       `json:"icon"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Sentence struct {
	ID          int64      `json:"id"`
	SceneID     int64      `json:"scene_id"`
	Content     string     `json:"content"`
	Translation string     `json:"translation"`
	AudioURL    string     `json:"audio_url"`
	Difficulty  Difficulty `json:"difficulty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// UserProgress is one user's record for one sentence. Zero ID asks the
// server to create the record.
type UserProgress struct {
	ID          int64      `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	SentenceID  int64      `json:"sentence_id"`
	Completed   bool       `json:"completed"`
	Attempts    int        `json:"attempts"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// AudioLocation is the payload of GET /audio/{id}.
type AudioLocation struct {
	URL string `json:"url"`
}
