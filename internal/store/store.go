// Package store holds the session state shared by the screens.
//
// A Store is owned by the UI root and handed to screens explicitly. It is
// written only from the bubbletea update loop, so it carries no lock.
package store

import (
	"slices"

	"voicewriter-go/internal/model"
)

type Store struct {
	scenes          []model.Scene
	sentences       []model.Sentence
	currentScene    *model.Scene
	currentSentence *model.Sentence
	userProgress    []model.UserProgress
	userInput       string
}

func New() *Store {
	return &Store{}
}

func (s *Store) Scenes() []model.Scene { return s.scenes }

func (s *Store) SetScenes(scenes []model.Scene) { s.scenes = slices.Clone(scenes) }

func (s *Store) Sentences() []model.Sentence { return s.sentences }

func (s *Store) SetSentences(sentences []model.Sentence) { s.sentences = slices.Clone(sentences) }

// CurrentScene returns the selected scene, or false when none is selected.
func (s *Store) CurrentScene() (model.Scene, bool) {
	if s.currentScene == nil {
		return model.Scene{}, false
	}
	return *s.currentScene, true
}

func (s *Store) SetCurrentScene(scene *model.Scene) {
	if scene == nil {
		s.currentScene = nil
		return
	}
	c := *scene
	s.currentScene = &c
}

// CurrentSentence returns the sentence under practice, or false when none
// is loaded.
func (s *Store) CurrentSentence() (model.Sentence, bool) {
	if s.currentSentence == nil {
		return model.Sentence{}, false
	}
	return *s.currentSentence, true
}

func (s *Store) SetCurrentSentence(sentence *model.Sentence) {
	if sentence == nil {
		s.currentSentence = nil
		return
	}
	c := *sentence
	s.currentSentence = &c
}

func (s *Store) UserProgress() []model.UserProgress { return s.userProgress }

func (s *Store) SetUserProgress(p []model.UserProgress) { s.userProgress = slices.Clone(p) }

func (s *Store) UserInput() string { return s.userInput }

func (s *Store) SetUserInput(input string) { s.userInput = input }

// FindScene looks a scene up in the loaded list.
func (s *Store) FindScene(id int64) (model.Scene, bool) {
	for _, sc := range s.scenes {
		if sc.ID == id {
			return sc, true
		}
	}
	return model.Scene{}, false
}

// Reset clears every slot.
func (s *Store) Reset() {
	*s = Store{}
}
