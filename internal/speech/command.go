package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/playback"
)

// BaseWordsPerMinute is the speaking speed at rate 1.0.
const BaseWordsPerMinute = 175

var defaultArgs = map[string][]string{
	"espeak-ng": {"-v", "{voice}", "-s", "{wpm}", "{text}"},
	"espeak":    {"-v", "{voice}", "-s", "{wpm}", "{text}"},
	"say":       {"-v", "{voice}", "-r", "{wpm}", "{text}"},
}

// Command speaks by running an external text-to-speech program, one process
// per utterance. Starting an utterance kills the previous one.
type Command struct {
	Path string
	Args []string

	catalog *Catalog
	log     *zap.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	speaking atomic.Bool
}

// NewCommand parses a command line such as "espeak-ng" or
// "say -v {voice} -r {wpm} {text}". Placeholders: {voice}, {wpm}, {rate},
// {lang}, {text}. A bare program name uses built-in arguments when known.
func NewCommand(line string, catalog *Catalog, log *zap.Logger) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty speech command")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if catalog == nil {
		catalog = NewCatalog(DefaultVoices())
	}
	c := &Command{Path: fields[0], Args: fields[1:], catalog: catalog, log: log}
	if len(c.Args) == 0 {
		if args, ok := defaultArgs[filepath.Base(c.Path)]; ok {
			c.Args = args
		} else {
			c.Args = []string{"{text}"}
		}
	}
	return c, nil
}

// Expand fills the argument template for u.
func (c *Command) Expand(u playback.Utterance) []string {
	voice := u.Voice
	if voice == "" {
		if v, ok := c.catalog.Match(u.Lang); ok {
			voice = v.Name
		}
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	r := strings.NewReplacer(
		"{voice}", voice,
		"{wpm}", strconv.Itoa(int(BaseWordsPerMinute*rate)),
		"{rate}", strconv.FormatFloat(rate, 'f', -1, 64),
		"{lang}", u.Lang.String(),
		"{text}", u.Text,
	)
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = r.Replace(a)
	}
	return out
}

// Speak runs the program and waits for it to exit.
func (c *Command) Speak(ctx context.Context, u playback.Utterance) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	args := c.Expand(u)
	c.log.Debug("Speaking", zap.String("cmd", c.Path), zap.Strings("args", args))

	c.speaking.Store(true)
	err := exec.CommandContext(ctx, c.Path, args...).Run()
	c.speaking.Store(false)

	if ctx.Err() != nil {
		return context.Canceled
	}
	if err != nil {
		return fmt.Errorf("speech command %s: %w", c.Path, err)
	}
	return nil
}

// Stop kills the utterance in progress, if any.
func (c *Command) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

// Speaking reports whether a process is running.
func (c *Command) Speaking() bool { return c.speaking.Load() }
