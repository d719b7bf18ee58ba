// Package ui is the terminal front end: a scene list, the sentence list of a
// scene, and the dictation practice screen.
//
// Each screen issues one fetch when it is opened. Fetches run as tea.Cmds
// under a context that is cancelled when the screen is left, and their
// results carry the sequence number of the opening that started them;
// anything from an earlier opening is dropped before it reaches the store.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"voicewriter-go/internal/answer"
	"voicewriter-go/internal/api"
	"voicewriter-go/internal/journal"
	"voicewriter-go/internal/model"
	"voicewriter-go/internal/store"
)

// API is the part of the REST client the screens use.
type API interface {
	Scenes(ctx context.Context) ([]model.Scene, error)
	Scene(ctx context.Context, id int64) (model.Scene, error)
	SentencesByScene(ctx context.Context, sceneID int64) ([]model.Sentence, error)
	Sentence(ctx context.Context, id int64) (model.Sentence, error)
	AudioURL(ctx context.Context, sentenceID int64) (string, error)
	ResolveURL(ref string) (string, error)
	SaveProgress(ctx context.Context, p model.UserProgress) error
}

// Journal records attempts locally.
type Journal interface {
	Record(ctx context.Context, a journal.Attempt) error
	SentenceStat(ctx context.Context, sentenceID int64) (journal.Stat, error)
	SceneStats(ctx context.Context) (map[int64]journal.Stat, error)
	SentenceStats(ctx context.Context, sceneID int64) (map[int64]journal.Stat, error)
}

// Player is the audio adapter driven by the practice screen.
type Player interface {
	SetSource(url string)
	Play()
	Pause()
	Stop()
	Toggle()
	IsPlaying() bool
	IsLoading() bool
	Err() error
	Changes() <-chan struct{}
	Close()
}

type Options struct {
	API     API
	Journal Journal
	Player  Player
	Store   *store.Store
	Log     *zap.Logger

	// UserID identifies the learner for progress sync.
	UserID string
	// SyncProgress upserts server progress after each submission.
	SyncProgress bool
	// Start is the first screen shown.
	Start Route
}

// saveTimeout bounds recording an attempt; it is detached from the screen
// so leaving right after submitting does not lose the attempt.
const saveTimeout = 10 * time.Second

type Model struct {
	api          API
	journal      Journal
	player       Player
	store        *store.Store
	log          *zap.Logger
	userID       string
	syncProgress bool
	start        Route

	route   Route
	seq     uint64
	cancel  context.CancelFunc
	loading bool
	status  string

	// list screens
	cursor         int
	viewportStart  int
	viewportHeight int
	sceneStats     map[int64]journal.Stat
	sentenceStats  map[int64]journal.Stat

	// practice screen
	input        textinput.Model
	submitted    bool
	result       answer.Result
	attemptStart time.Time
	attemptStat  journal.Stat
}

func New(opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type the sentence you heard and press Enter..."
	ti.CharLimit = 500
	ti.Width = 60
	ti.Prompt = "> "

	st := opts.Store
	if st == nil {
		st = store.New()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{
		api:            opts.API,
		journal:        opts.Journal,
		player:         opts.Player,
		store:          st,
		log:            log,
		userID:         opts.UserID,
		syncProgress:   opts.SyncProgress,
		start:          opts.Start,
		input:          ti,
		viewportHeight: 12,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.Navigate(m.start), m.waitAudio(), textinput.Blink)
}

// Route reports the screen currently shown.
func (m *Model) Route() Route { return m.route }

// Store exposes the session state.
func (m *Model) Store() *store.Store { return m.store }

// Navigate opens r, abandoning whatever the previous screen was waiting for.
// The returned command performs the screen's fetch.
func (m *Model) Navigate(r Route) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	if m.route.Kind == RoutePractice && r.Kind != RoutePractice {
		m.player.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.seq++
	m.route = r
	m.loading = true
	m.status = ""
	m.cursor = 0
	m.viewportStart = 0
	m.log.Debug("navigate", zap.String("route", r.String()), zap.Uint64("seq", m.seq))

	switch r.Kind {
	case RouteScene:
		m.store.SetSentences(nil)
		return m.loadSentences(ctx, m.seq, r.ID)
	case RoutePractice:
		m.store.SetCurrentSentence(nil)
		m.player.SetSource("")
		m.clearAttempt()
		m.input.Blur()
		return m.loadSentence(ctx, m.seq, r.ID)
	default:
		m.store.SetScenes(nil)
		return m.loadScenes(ctx, m.seq)
	}
}

// back returns to the parent screen.
func (m *Model) back() tea.Cmd {
	switch m.route.Kind {
	case RoutePractice:
		if s, ok := m.store.CurrentSentence(); ok {
			return m.Navigate(SceneRoute(s.SceneID))
		}
		if sc, ok := m.store.CurrentScene(); ok {
			return m.Navigate(SceneRoute(sc.ID))
		}
		return m.Navigate(HomeRoute())
	case RouteScene:
		return m.Navigate(HomeRoute())
	}
	return tea.Quit
}

type audioChangedMsg struct{}

// waitAudio turns player notifications into messages so the view re-renders.
func (m *Model) waitAudio() tea.Cmd {
	changes := m.player.Changes()
	return func() tea.Msg {
		<-changes
		return audioChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportHeight = max(3, (msg.Height-8)/2)
		m.input.Width = max(20, msg.Width-6)
		m.updateViewport(m.listLen())
		return m, nil

	case audioChangedMsg:
		return m, m.waitAudio()

	case scenesLoadedMsg:
		if msg.seq == m.seq {
			m.onScenesLoaded(msg)
		}
		return m, nil

	case sentencesLoadedMsg:
		if msg.seq == m.seq {
			m.onSentencesLoaded(msg)
		}
		return m, nil

	case sentenceLoadedMsg:
		if msg.seq == m.seq {
			return m, m.onSentenceLoaded(msg)
		}
		return m, nil

	case attemptSavedMsg:
		m.onAttemptSaved(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	switch m.route.Kind {
	case RouteScene:
		return m, m.updateScene(msg)
	case RoutePractice:
		return m, m.updatePractice(msg)
	default:
		return m, m.updateHome(msg)
	}
}

// fail records a load failure: logged always, surfaced as a status line.
func (m *Model) fail(what string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		m.log.Warn("load rejected", zap.String("what", what), zap.Int("code", se.Code), zap.String("message", se.Message))
		m.status = "Could not load " + what + ": " + se.Message
		return
	}
	m.log.Error("load failed", zap.String("what", what), zap.Error(err))
	m.status = "Could not reach the server while loading " + what + "."
}

func (m *Model) listLen() int {
	switch m.route.Kind {
	case RouteHome:
		return len(m.store.Scenes())
	case RouteScene:
		return len(m.store.Sentences())
	}
	return 0
}

func (m *Model) moveCursor(delta, n int) {
	next := m.cursor + delta
	if next < 0 || next >= n {
		return
	}
	m.cursor = next
	m.updateViewport(n)
}

func (m *Model) updateViewport(n int) {
	if n == 0 {
		m.viewportStart = 0
		return
	}
	// If cursor is above the viewport, move viewport up
	if m.cursor < m.viewportStart {
		m.viewportStart = m.cursor
	}
	// If cursor is below the viewport, move viewport down
	if m.cursor >= m.viewportStart+m.viewportHeight {
		m.viewportStart = m.cursor - m.viewportHeight + 1
	}
}

func (m *Model) visibleRange(n int) (int, int) {
	start := m.viewportStart
	end := min(start+m.viewportHeight, n)
	return start, end
}

func (m *Model) View() string {
	switch m.route.Kind {
	case RouteScene:
		return m.viewScene()
	case RoutePractice:
		return m.viewPractice()
	default:
		return m.viewHome()
	}
}
