package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExecBackend fetches a source into a temporary file and plays it with an
// external command such as ffplay or mpv. The file path is appended to Args.
type ExecBackend struct {
	Command    string
	Args       []string
	HTTPClient *http.Client
	TempDir    string
	Log        *zap.Logger
}

func NewExecBackend(command string, args []string, log *zap.Logger) *ExecBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecBackend{
		Command:    command,
		Args:       args,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Log:        log,
	}
}

// Load accepts http(s) URLs, file:// URLs and plain local paths.
func (b *ExecBackend) Load(ctx context.Context, rawURL string) (Sound, error) {
	if _, err := exec.LookPath(b.Command); err != nil {
		return nil, fmt.Errorf("player %q: %w", b.Command, err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		p, err := b.download(ctx, u)
		if err != nil {
			return nil, err
		}
		return &execSound{backend: b, path: p, temp: true}, nil
	case "file":
		return b.local(u.Path)
	case "":
		return b.local(rawURL)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (b *ExecBackend) local(p string) (Sound, error) {
	if _, err := os.Stat(p); err != nil {
		return nil, err
	}
	return &execSound{backend: b, path: p}, nil
}

func (b *ExecBackend) download(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}

	f, err := os.CreateTemp(b.TempDir, "voicewriter-*"+path.Ext(u.Path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("GET %s: %w", u, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	b.Log.Debug("audio downloaded", zap.String("url", u.String()), zap.String("path", f.Name()))
	return f.Name(), nil
}

type execSound struct {
	backend *ExecBackend
	path    string
	temp    bool

	mu     sync.Mutex
	cmd    *exec.Cmd
	done   chan struct{}
	paused bool
}

func (s *execSound) Play() (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		if s.paused {
			if err := resume(s.cmd.Process); err != nil {
				return nil, fmt.Errorf("audio: resume: %w", err)
			}
			s.paused = false
		}
		return s.done, nil
	}

	args := append(append([]string(nil), s.backend.Args...), s.path)
	cmd := exec.Command(s.backend.Command, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("audio: start %s: %w", s.backend.Command, err)
	}
	done := make(chan struct{})
	s.cmd, s.done, s.paused = cmd, done, false

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd, s.paused = nil, false
		}
		s.mu.Unlock()
		if err != nil && !isKilled(err) {
			s.backend.Log.Debug("player exited", zap.String("path", s.path), zap.Error(err))
		}
		close(done)
	}()
	return done, nil
}

func (s *execSound) Pause() error {
	s.mu.Lock()
	if s.cmd == nil || s.paused {
		s.mu.Unlock()
		return nil
	}
	err := suspend(s.cmd.Process)
	if err == nil {
		s.paused = true
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	if errors.Is(err, errors.ErrUnsupported) {
		// Without job control a pause can only end the run.
		return s.Stop()
	}
	return fmt.Errorf("audio: pause: %w", err)
}

func (s *execSound) Stop() error {
	s.mu.Lock()
	cmd, done := s.cmd, s.done
	s.cmd, s.paused = nil, false
	s.mu.Unlock()
	if cmd == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("audio: stop: %w", err)
	}
	<-done
	return nil
}

func (s *execSound) Unload() error {
	err := s.Stop()
	if s.temp {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}
