package models

import (
	"sync"
	"time"

	"libranet/internal/liberr"
)

type PlaybackState string

const (
	PlaybackStopped PlaybackState = "STOPPED"
	PlaybackPlaying PlaybackState = "PLAYING"
	PlaybackPaused  PlaybackState = "PAUSED"
)

// PlaybackStatus is a snapshot of a player.
type PlaybackStatus struct {
	State    PlaybackState `json:"state"`
	Position time.Duration `json:"position"`
	Length   time.Duration `json:"length"`
}

// Player is the play/pause/stop/seek capability of an audiobook.
type Player struct {
	mu       sync.Mutex
	length   time.Duration
	state    PlaybackState
	position time.Duration
}

func NewPlayer(length time.Duration) *Player {
	return &Player{length: length, state: PlaybackStopped}
}

func (p *Player) Play() PlaybackStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PlaybackPlaying
	return p.statusLocked()
}

func (p *Player) Pause() PlaybackStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PlaybackPaused
	return p.statusLocked()
}

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() PlaybackStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PlaybackStopped
	p.position = 0
	return p.statusLocked()
}

// Seek moves to pos, which must lie within the playback duration.
func (p *Player) Seek(pos time.Duration) (PlaybackStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 || pos > p.length {
		return p.statusLocked(), liberr.InvalidInput("seek position %s out of range", pos)
	}
	p.position = pos
	return p.statusLocked(), nil
}

func (p *Player) Status() PlaybackStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

func (p *Player) statusLocked() PlaybackStatus {
	return PlaybackStatus{State: p.state, Position: p.position, Length: p.length}
}
