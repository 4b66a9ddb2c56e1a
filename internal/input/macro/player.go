package macro

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dshills/keyscope/internal/input/key"
)

// ErrAlreadyPlaying is returned when Play is called during playback.
var ErrAlreadyPlaying = errors.New("already playing a session")

// Sink receives played transitions. *input.Engine is a Sink.
type Sink interface {
	NotifyKeyTransition(t key.Transition) bool
}

// Player feeds sessions to a sink.
type Player struct {
	sink    Sink
	playing atomic.Bool
}

// NewPlayer creates a player delivering to sink.
func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink}
}

// IsPlaying reports whether a session is being played.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Play delivers every step of s in order and returns how many deliveries
// ran a handler. With speed > 0 the original timing is kept, scaled by
// speed (2 plays twice as fast); otherwise steps are delivered at once.
// Timestamps are rewritten to the time of delivery.
func (p *Player) Play(ctx context.Context, s Session, speed float64) (int, error) {
	if !p.playing.CompareAndSwap(false, true) {
		return 0, ErrAlreadyPlaying
	}
	defer p.playing.Store(false)

	start := time.Now()
	fired := 0
	for _, st := range s.Steps {
		if speed > 0 {
			due := start.Add(time.Duration(float64(st.Offset) / speed))
			if wait := time.Until(due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return fired, ctx.Err()
				case <-timer.C:
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return fired, err
		}

		t := st.Transition
		t.Timestamp = time.Now()
		if p.sink.NotifyKeyTransition(t) {
			fired++
		}
	}
	return fired, nil
}
