package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"voicewriter-go/internal/journal"
	"voicewriter-go/internal/model"
)

type scenesLoadedMsg struct {
	seq      uint64
	scenes   []model.Scene
	stats    map[int64]journal.Stat
	err      error
	statsErr error
}

func (m *Model) loadScenes(ctx context.Context, seq uint64) tea.Cmd {
	client, j := m.api, m.journal
	return func() tea.Msg {
		scenes, err := client.Scenes(ctx)
		if err != nil {
			return scenesLoadedMsg{seq: seq, err: err}
		}
		stats, statsErr := j.SceneStats(ctx)
		return scenesLoadedMsg{seq: seq, scenes: scenes, stats: stats, statsErr: statsErr}
	}
}

func (m *Model) onScenesLoaded(msg scenesLoadedMsg) {
	m.loading = false
	if msg.err != nil {
		m.fail("scenes", msg.err)
		return
	}
	if msg.statsErr != nil {
		m.log.Warn("scene stats unavailable", zap.Error(msg.statsErr))
	}
	m.store.SetScenes(msg.scenes)
	m.sceneStats = msg.stats
	m.cursor = 0
	m.updateViewport(len(msg.scenes))
}

func (m *Model) updateHome(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Type == tea.KeyEsc {
		return tea.Quit
	}
	if m.loading {
		return nil
	}
	scenes := m.store.Scenes()
	switch key.Type {
	case tea.KeyUp:
		m.moveCursor(-1, len(scenes))
	case tea.KeyDown:
		m.moveCursor(1, len(scenes))
	case tea.KeyEnter:
		if len(scenes) == 0 {
			return nil
		}
		selected := scenes[m.cursor]
		m.store.SetCurrentScene(&selected)
		return m.Navigate(SceneRoute(selected.ID))
	}
	return nil
}

func (m *Model) viewHome() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("VoiceWriter: Choose a Scene"))
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(" Pick a scene and start your dictation practice."))
	b.WriteString("\n\n")

	scenes := m.store.Scenes()
	switch {
	case m.loading:
		b.WriteString("  Loading scenes...\n")
	case len(scenes) == 0:
		b.WriteString("  No scenes available.\n")
	default:
		nameWidth := 0
		for _, sc := range scenes {
			nameWidth = max(nameWidth, len(sc.Name))
		}
		format := fmt.Sprintf("%%s %%s %%-%ds %%s %%s", nameWidth)
		start, end := m.visibleRange(len(scenes))
		for i := start; i < end; i++ {
			sc := scenes[i]
			cursor := " "
			if m.cursor == i {
				cursor = styleCursor.Render(">")
			}
			st := m.sceneStats[sc.ID]
			bar := renderBar(st.Ratio(), st.Attempts, barWidth)
			plays := styleSubtle.Render(fmt.Sprintf("%d tries", st.Attempts))
			line := fmt.Sprintf(format, cursor, iconGlyph(sc.Icon), sc.Name, bar, plays)
			if m.cursor == i {
				b.WriteString(styleHighlight.Render(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
			if sc.Description != "" {
				b.WriteString("     ")
				b.WriteString(styleSubtle.Render(sc.Description))
				b.WriteString("\n")
			}
		}
	}

	m.writeStatus(&b)
	b.WriteString(styleSubtle.Render("\n ↑/↓: Navigate | enter: Open scene | esc: Quit"))
	return b.String()
}

func (m *Model) writeStatus(b *strings.Builder) {
	if m.status != "" {
		b.WriteString("\n ")
		b.WriteString(styleStatus.Render(m.status))
		b.WriteString("\n")
	}
}
