package relay

import (
	"fmt"
	"log"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// Level is the logic level of an output line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Board is the capability "set pin P to logic level L". Open acquires the
// hardware interface and Close releases it.
type Board interface {
	Open() error
	Write(pin int, level Level) error
	Close() error
}

// rpioBoard drives BCM pins through /dev/gpiomem.
type rpioBoard struct {
	mu sync.Mutex
}

// NewRPIOBoard returns the Raspberry Pi GPIO board.
func NewRPIOBoard() Board {
	return &rpioBoard{}
}

func (b *rpioBoard) Open() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open gpio memory: %w", err)
	}
	return nil
}

func (b *rpioBoard) Write(pin int, level Level) error {
	if pin < 0 || pin > 53 {
		return fmt.Errorf("bcm pin %d out of range", pin)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	p := rpio.Pin(pin)
	p.Output()
	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (b *rpioBoard) Close() error {
	return rpio.Close()
}

// SimulatedBoard keeps pin levels in memory. It backs development machines
// without GPIO and the tests.
type SimulatedBoard struct {
	mu      sync.Mutex
	levels  map[int]Level
	writes  int
	opened  bool
	closed  bool
	failPin map[int]error
	verbose bool
}

// NewSimulatedBoard returns an in-memory board. When verbose is set every
// write is logged.
func NewSimulatedBoard(verbose bool) *SimulatedBoard {
	return &SimulatedBoard{
		levels:  make(map[int]Level),
		failPin: make(map[int]error),
		verbose: verbose,
	}
}

func (b *SimulatedBoard) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = true
	b.closed = false
	return nil
}

func (b *SimulatedBoard) Write(pin int, level Level) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.opened || b.closed {
		return fmt.Errorf("simulated board is not open")
	}
	if err, ok := b.failPin[pin]; ok {
		return err
	}
	b.levels[pin] = level
	b.writes++
	if b.verbose {
		log.Printf("relay (simulated): pin %d -> %s", pin, level)
	}
	return nil
}

func (b *SimulatedBoard) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Level returns the last level written to pin.
func (b *SimulatedBoard) Level(pin int) (Level, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.levels[pin]
	return l, ok
}

// Writes returns the number of successful writes.
func (b *SimulatedBoard) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Closed reports whether Close has been called since the last Open.
func (b *SimulatedBoard) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// FailPin makes every later write to pin return err.
func (b *SimulatedBoard) FailPin(pin int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failPin[pin] = err
}
