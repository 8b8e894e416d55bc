package notifier

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/charmbracelet/x/term"
	"golang.org/x/sync/singleflight"
)

// Audio is the playback device.
type Audio interface {
	Prepare(ctx context.Context) error
	Play() error
	Unload() error
}

// Chime memoizes Audio.Prepare: concurrent callers share one in-flight
// load, a successful load is kept, a failed one may be retried later.
// Playback errors are logged and swallowed.
type Chime struct {
	audio Audio
	group singleflight.Group

	mu       sync.Mutex
	prepared bool
}

func NewChime(audio Audio) *Chime {
	return &Chime{audio: audio}
}

func (c *Chime) Prepare(ctx context.Context) error {
	if c.isPrepared() {
		return nil
	}

	_, err, _ := c.group.Do("prepare", func() (interface{}, error) {
		if c.isPrepared() {
			return nil, nil
		}
		if err := c.audio.Prepare(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.prepared = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Play is a silent no-op until Prepare succeeded.
func (c *Chime) Play() {
	if !c.isPrepared() {
		return
	}
	if err := c.audio.Play(); err != nil {
		log.Printf("Ошибка воспроизведения звука: %v", err)
	}
}

// Ring loads the sound if needed and plays it once.
func (c *Chime) Ring(ctx context.Context) {
	if err := c.Prepare(ctx); err != nil {
		log.Printf("Не удалось загрузить звук: %v", err)
		return
	}
	c.Play()
}

func (c *Chime) Unload() {
	c.mu.Lock()
	wasPrepared := c.prepared
	c.prepared = false
	c.mu.Unlock()

	if !wasPrepared {
		return
	}
	if err := c.audio.Unload(); err != nil {
		log.Printf("Ошибка освобождения звука: %v", err)
	}
}

func (c *Chime) isPrepared() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepared
}

var ErrNotTerminal = errors.New("output is not a terminal")

const bell = "\a"

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	out io.Writer

	mu    sync.Mutex
	ready bool
}

func NewBellPlayer(out io.Writer) *BellPlayer {
	return &BellPlayer{out: out}
}

func (b *BellPlayer) Prepare(_ context.Context) error {
	if f, ok := b.out.(interface{ Fd() uintptr }); ok && !term.IsTerminal(f.Fd()) {
		return ErrNotTerminal
	}
	b.mu.Lock()
	b.ready = true
	b.mu.Unlock()
	return nil
}

// Play is a no-op before Prepare.
func (b *BellPlayer) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return nil
	}
	_, err := io.WriteString(b.out, bell)
	return err
}

func (b *BellPlayer) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = false
	return nil
}
