package speech

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/example/flashdeck/internal/playback"
)

const (
	perRune    = 90 * time.Millisecond
	minReading = 600 * time.Millisecond
)

// ReadingTime estimates how long text takes to say at rate.
func ReadingTime(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	d := time.Duration(float64(utf8.RuneCountInString(text)) * float64(perRune) / rate)
	return max(d, time.Duration(float64(minReading)/rate))
}

// Paced hands each utterance to Sink and then waits as long as it would take
// to say it. It stands in for audio where the host can only show text.
type Paced struct {
	Sink func(ctx context.Context, u playback.Utterance) error
	// Duration overrides ReadingTime when set.
	Duration func(u playback.Utterance) time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	speaking bool
}

func (p *Paced) Speak(ctx context.Context, u playback.Utterance) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.speaking = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.speaking = false
		p.mu.Unlock()
	}()

	if ctx.Err() != nil {
		return context.Canceled
	}
	if p.Sink != nil {
		if err := p.Sink(ctx, u); err != nil {
			return err
		}
	}
	d := ReadingTime(u.Text, u.Rate)
	if p.Duration != nil {
		d = p.Duration(u)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Canceled
	}
}

func (p *Paced) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return nil
}

func (p *Paced) Speaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}
