// Package audio plays the recording of the sentence under practice.
//
// A Player holds at most one Sound at a time. Changing the source releases
// the previous sound before the next one is requested from the Backend.
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrLoad wraps every failure to load a source.
var ErrLoad = errors.New("audio: load failed")

// Sound is one loaded, playable resource.
type Sound interface {
	// Play starts or resumes playback. The returned channel is closed when
	// the current run ends, naturally or through Stop.
	Play() (<-chan struct{}, error)
	Pause() error
	Stop() error
	// Unload stops playback and discards the underlying handle.
	Unload() error
}

// Backend turns a locator into a Sound.
type Backend interface {
	Load(ctx context.Context, url string) (Sound, error)
}

// Player is safe for concurrent use.
type Player struct {
	backend Backend
	log     *zap.Logger
	changes chan struct{}

	mu      sync.Mutex
	source  string
	sound   Sound
	gen     uint64 // bumped on every source change
	run     uint64 // bumped whenever a playback run starts or is cut short
	cancel  context.CancelFunc
	loading bool
	playing bool
	err     error
}

func NewPlayer(b Backend, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		backend: b,
		log:     log,
		changes: make(chan struct{}, 1),
	}
}

// Changes signals (coalesced) whenever the observable state changes.
func (p *Player) Changes() <-chan struct{} {
	return p.changes
}

func (p *Player) notify() {
	select {
	case p.changes <- struct{}{}:
	default:
	}
}

// SetSource points the player at url. An empty url leaves it inert.
// Setting the current source again is a no-op.
func (p *Player) SetSource(url string) {
	p.mu.Lock()
	if url == p.source {
		p.mu.Unlock()
		return
	}
	p.releaseLocked()
	p.gen++
	p.source = url
	p.err = nil
	if url == "" {
		p.mu.Unlock()
		p.notify()
		return
	}

	p.loading = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	gen := p.gen
	p.mu.Unlock()
	p.notify()

	go p.load(ctx, gen, url)
}

func (p *Player) load(ctx context.Context, gen uint64, url string) {
	s, err := p.backend.Load(ctx, url)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		if s != nil {
			_ = s.Unload()
		}
		return
	}
	p.loading = false
	p.cancel = nil
	if err != nil {
		p.err = fmt.Errorf("%w: %s: %w", ErrLoad, url, err)
		p.log.Warn("audio load failed", zap.String("url", url), zap.Error(err))
	} else {
		p.sound = s
		p.log.Debug("audio loaded", zap.String("url", url))
	}
	p.mu.Unlock()
	p.notify()
}

// releaseLocked stops and discards the current sound and aborts a pending
// load. p.mu must be held.
func (p *Player) releaseLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.sound != nil {
		if err := p.sound.Stop(); err != nil {
			p.log.Debug("audio stop on release", zap.Error(err))
		}
		if err := p.sound.Unload(); err != nil {
			p.log.Debug("audio unload", zap.Error(err))
		}
		p.sound = nil
	}
	p.loading = false
	p.playing = false
	p.run++
}

func (p *Player) Play() {
	p.mu.Lock()
	s := p.sound
	if s == nil || p.playing {
		p.mu.Unlock()
		return
	}
	done, err := s.Play()
	if err != nil {
		p.err = err
		src := p.source
		p.mu.Unlock()
		p.log.Warn("audio play failed", zap.String("url", src), zap.Error(err))
		p.notify()
		return
	}
	p.playing = true
	p.run++
	run := p.run
	p.mu.Unlock()
	p.notify()

	go p.watch(run, done)
}

// watch clears the playing flag when the run it was started for ends.
func (p *Player) watch(run uint64, done <-chan struct{}) {
	<-done
	p.mu.Lock()
	changed := p.run == run && p.playing
	if changed {
		p.playing = false
	}
	p.mu.Unlock()
	if changed {
		p.notify()
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	if p.sound == nil || !p.playing {
		p.mu.Unlock()
		return
	}
	if err := p.sound.Pause(); err != nil {
		p.log.Warn("audio pause failed", zap.Error(err))
	}
	p.playing = false
	p.run++
	p.mu.Unlock()
	p.notify()
}

func (p *Player) Stop() {
	p.mu.Lock()
	if p.sound == nil {
		p.mu.Unlock()
		return
	}
	if err := p.sound.Stop(); err != nil {
		p.log.Warn("audio stop failed", zap.Error(err))
	}
	p.playing = false
	p.run++
	p.mu.Unlock()
	p.notify()
}

// Toggle pauses while playing and plays otherwise.
func (p *Player) Toggle() {
	if p.IsPlaying() {
		p.Pause()
		return
	}
	p.Play()
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Err reports the last load or play failure for the current source.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Close releases the current sound and leaves the player inert.
func (p *Player) Close() {
	p.SetSource("")
}
