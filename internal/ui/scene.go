package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"voicewriter-go/internal/journal"
	"voicewriter-go/internal/model"
)

type sentencesLoadedMsg struct {
	seq       uint64
	sceneID   int64
	scene     *model.Scene
	sentences []model.Sentence
	stats     map[int64]journal.Stat
	err       error
	statsErr  error
}

// loadSentences fetches the sentences of a scene. The scene itself is only
// fetched when it was not selected from the scene list first.
func (m *Model) loadSentences(ctx context.Context, seq uint64, sceneID int64) tea.Cmd {
	client, j := m.api, m.journal
	cur, ok := m.store.CurrentScene()
	needScene := !ok || cur.ID != sceneID
	log := m.log
	return func() tea.Msg {
		msg := sentencesLoadedMsg{seq: seq, sceneID: sceneID}
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			msg.sentences, err = client.SentencesByScene(egCtx, sceneID)
			return err
		})
		if needScene {
			// The header is decoration; a failure only loses the title.
			eg.Go(func() error {
				sc, err := client.Scene(egCtx, sceneID)
				if err != nil {
					log.Debug("scene header unavailable", zap.Int64("scene", sceneID), zap.Error(err))
					return nil
				}
				msg.scene = &sc
				return nil
			})
		}
		eg.Go(func() error {
			msg.stats, msg.statsErr = j.SentenceStats(egCtx, sceneID)
			return nil
		})
		if err := eg.Wait(); err != nil {
			return sentencesLoadedMsg{seq: seq, sceneID: sceneID, err: err}
		}
		return msg
	}
}

func (m *Model) onSentencesLoaded(msg sentencesLoadedMsg) {
	m.loading = false
	if msg.err != nil {
		m.fail("sentences", msg.err)
		return
	}
	if msg.statsErr != nil {
		m.log.Warn("sentence stats unavailable", zap.Error(msg.statsErr))
	}
	if msg.scene != nil {
		m.store.SetCurrentScene(msg.scene)
	}
	m.store.SetSentences(msg.sentences)
	m.sentenceStats = msg.stats
	m.cursor = 0
	m.updateViewport(len(msg.sentences))
}

func (m *Model) updateScene(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Type == tea.KeyEsc {
		return m.back()
	}
	if m.loading {
		return nil
	}
	sentences := m.store.Sentences()
	switch key.Type {
	case tea.KeyUp:
		m.moveCursor(-1, len(sentences))
	case tea.KeyDown:
		m.moveCursor(1, len(sentences))
	case tea.KeyEnter:
		if len(sentences) == 0 {
			return nil
		}
		return m.Navigate(PracticeRoute(sentences[m.cursor].ID))
	}
	return nil
}

func (m *Model) viewScene() string {
	var b strings.Builder
	title := "Sentences"
	if sc, ok := m.store.CurrentScene(); ok && sc.ID == m.route.ID {
		title = iconGlyph(sc.Icon) + " " + sc.Name
	}
	b.WriteString(styleHeader.Render("VoiceWriter"))
	b.WriteString("\n")
	b.WriteString(" Scene: " + styleTitle.Render(title))
	b.WriteString("\n\n")

	sentences := m.store.Sentences()
	switch {
	case m.loading:
		b.WriteString("  Loading sentences...\n")
	case len(sentences) == 0:
		b.WriteString("  No sentences in this scene.\n")
	default:
		start, end := m.visibleRange(len(sentences))
		for i := start; i < end; i++ {
			s := sentences[i]
			cursor := " "
			if m.cursor == i {
				cursor = styleCursor.Render(">")
			}
			st := m.sentenceStats[s.ID]
			line := fmt.Sprintf("%s %s %s %s", cursor, s.Content, difficultyTag(s.Difficulty),
				styleSubtle.Render(fmt.Sprintf("(%d/%d)", st.Correct, st.Attempts)))
			if m.cursor == i {
				b.WriteString(styleHighlight.Render(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
			if s.Translation != "" {
				b.WriteString("    ")
				b.WriteString(styleSubtle.Render(s.Translation))
				b.WriteString("\n")
			}
		}
		b.WriteString(fmt.Sprintf("\n  %s", styleSubtle.Render(fmt.Sprintf("%d sentences", len(sentences)))))
		b.WriteString("\n")
	}

	m.writeStatus(&b)
	b.WriteString(styleSubtle.Render("\n ↑/↓: Navigate | enter: Practice | esc: Back to scenes"))
	return b.String()
}
