package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"voicewriter-go/internal/answer"
	"voicewriter-go/internal/journal"
	"voicewriter-go/internal/model"
)

type sentenceLoadedMsg struct {
	seq      uint64
	sentence model.Sentence
	audioURL string
	stat     journal.Stat
	err      error
}

type attemptSavedMsg struct {
	seq        uint64
	sentenceID int64
	stat       journal.Stat
	err        error
	syncErr    error
}

// loadSentence fetches the sentence and resolves where its audio lives:
// its own audio_url when set, GET /audio/{id} otherwise.
func (m *Model) loadSentence(ctx context.Context, seq uint64, id int64) tea.Cmd {
	client, j, log := m.api, m.journal, m.log
	return func() tea.Msg {
		s, err := client.Sentence(ctx, id)
		if err != nil {
			return sentenceLoadedMsg{seq: seq, err: err}
		}
		msg := sentenceLoadedMsg{seq: seq, sentence: s}
		if s.AudioURL != "" {
			msg.audioURL, err = client.ResolveURL(s.AudioURL)
		} else {
			msg.audioURL, err = client.AudioURL(ctx, s.ID)
		}
		if err != nil {
			log.Warn("audio url unavailable", zap.Int64("sentence", s.ID), zap.Error(err))
		}
		if msg.stat, err = j.SentenceStat(ctx, s.ID); err != nil {
			log.Warn("sentence stat unavailable", zap.Int64("sentence", s.ID), zap.Error(err))
		}
		return msg
	}
}

func (m *Model) onSentenceLoaded(msg sentenceLoadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		m.fail("sentence", msg.err)
		return nil
	}
	s := msg.sentence
	m.store.SetCurrentSentence(&s)
	m.attemptStat = msg.stat
	m.player.SetSource(msg.audioURL)
	m.clearAttempt()
	return m.input.Focus()
}

// clearAttempt returns the practice screen to its idle state.
func (m *Model) clearAttempt() {
	m.input.SetValue("")
	m.store.SetUserInput("")
	m.submitted = false
	m.result = answer.Result{}
	m.attemptStart = time.Now()
}

func (m *Model) updatePractice(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
	if key.Type == tea.KeyEsc {
		return m.back()
	}
	sentence, loaded := m.store.CurrentSentence()
	if m.loading || !loaded {
		return nil
	}

	switch key.Type {
	case tea.KeyTab, tea.KeyCtrlP:
		m.player.Toggle()
		return nil
	case tea.KeyCtrlS:
		m.player.Stop()
		return nil
	case tea.KeyCtrlR:
		m.reset()
		return m.input.Focus()
	case tea.KeyEnter:
		if m.submitted {
			m.next()
			return m.input.Focus()
		}
		return m.submit(sentence)
	}

	if m.submitted {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetUserInput(m.input.Value())
	return cmd
}

// submit compares the typed text with the loaded sentence. Input that is
// empty after trimming is ignored.
func (m *Model) submit(s model.Sentence) tea.Cmd {
	in := m.store.UserInput()
	if !answer.Submittable(in) {
		return nil
	}
	m.result = answer.Compare(in, s.Content)
	m.submitted = true
	m.input.Blur()
	m.log.Info("answer submitted",
		zap.Int64("sentence", s.ID), zap.Bool("correct", m.result.Correct))

	return m.saveAttempt(m.seq, s, journal.Attempt{
		SentenceID: s.ID,
		SceneID:    s.SceneID,
		Input:      in,
		Correct:    m.result.Correct,
		Duration:   time.Since(m.attemptStart),
	})
}

func (m *Model) saveAttempt(seq uint64, s model.Sentence, a journal.Attempt) tea.Cmd {
	client, j := m.api, m.journal
	userID, sync := m.userID, m.syncProgress
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		msg := attemptSavedMsg{seq: seq, sentenceID: s.ID}
		if msg.err = j.Record(ctx, a); msg.err != nil {
			return msg
		}
		if msg.stat, msg.err = j.SentenceStat(ctx, s.ID); msg.err != nil {
			return msg
		}
		if sync && userID != "" {
			now := time.Now().UTC()
			msg.syncErr = client.SaveProgress(ctx, model.UserProgress{
				UserID:      userID,
				SentenceID:  s.ID,
				Completed:   msg.stat.Correct > 0,
				Attempts:    msg.stat.Attempts,
				LastAttempt: &now,
			})
		}
		return msg
	}
}

func (m *Model) onAttemptSaved(msg attemptSavedMsg) {
	if msg.err != nil {
		m.log.Error("attempt not recorded", zap.Int64("sentence", msg.sentenceID), zap.Error(msg.err))
	}
	if msg.syncErr != nil {
		m.log.Warn("progress not synced", zap.Int64("sentence", msg.sentenceID), zap.Error(msg.syncErr))
	}
	if msg.seq != m.seq || msg.err != nil {
		return
	}
	m.attemptStat = msg.stat
}

func (m *Model) reset() {
	m.clearAttempt()
}

// next behaves like reset: the screen stays on the same sentence.
// TODO: advance through the scene's sentence list once an ordering rule
// (sequential, random or by difficulty) is chosen.
func (m *Model) next() {
	m.reset()
}

func (m *Model) viewPractice() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("VoiceWriter: Listen and Write"))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("\n  Loading sentence...\n")
		return b.String()
	}
	s, ok := m.store.CurrentSentence()
	if !ok {
		b.WriteString("\n  Sentence not found.\n")
		m.writeStatus(&b)
		b.WriteString(styleSubtle.Render("\n esc: Back"))
		return b.String()
	}

	header := fmt.Sprintf(" Sentence #%d %s", s.ID, difficultyTag(s.Difficulty))
	if sc, ok := m.store.CurrentScene(); ok && sc.ID == s.SceneID {
		header += "  Scene: " + styleTitle.Render(sc.Name)
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(" Play the audio, then type what you heard."))
	b.WriteString("\n\n  ")
	b.WriteString(m.audioStatus())
	b.WriteString("\n\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.submitted {
		b.WriteString("\n")
		if m.result.Correct {
			b.WriteString("  " + styleCorrect.Render("Correct!"))
		} else {
			styledInput, styledTarget := diffStrings(m.result.Input, m.result.Target)
			b.WriteString("  " + styleIncorrect.Render("Needs work."))
			b.WriteString(fmt.Sprintf("\n  Your input: %s", styledInput))
			b.WriteString(fmt.Sprintf("\n  Diff:       %s", styledTarget))
		}
		b.WriteString("\n\n  Answer:      ")
		b.WriteString(styleCorrect.Render(s.Content))
		b.WriteString("\n  Translation: ")
		b.WriteString(s.Translation)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %s\n", styleSubtle.Render(
		fmt.Sprintf("Attempts: %d | Correct: %d", m.attemptStat.Attempts, m.attemptStat.Correct))))
	m.writeStatus(&b)

	if m.submitted {
		b.WriteString(styleSubtle.Render("\n enter: Next | ctrl+r: Try again | tab: Play/Pause | esc: Back"))
	} else {
		b.WriteString(styleSubtle.Render("\n enter: Submit | ctrl+r: Reset | tab: Play/Pause | ctrl+s: Stop | esc: Back"))
	}
	return b.String()
}

func (m *Model) audioStatus() string {
	switch {
	case m.player.Err() != nil:
		return styleStatus.Render("Audio unavailable.")
	case m.player.IsLoading():
		return styleSubtle.Render("Loading audio...")
	case m.player.IsPlaying():
		return styleCorrect.Render("▶ Playing...")
	default:
		return "■ Press tab to play the audio"
	}
}
