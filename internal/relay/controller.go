// Package relay maps relay ports to output lines and drives them from
// device statuses.
package relay

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"relay-control-backend/internal/device"
)

var (
	ErrUnsupportedPort = errors.New("unsupported relay port")
	ErrClosed          = errors.New("relay controller is closed")
)

// Driver sets a relay line from a device status.
type Driver interface {
	SetRelay(port int, status device.Status) error
	Ports() []int
}

// Controller owns the board and the fixed port to pin mapping.
type Controller struct {
	mu        sync.Mutex
	board     Board
	pins      map[int]int
	activeLow bool
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewController opens the board and drives every wired port inactive
// before returning, so a restart never inherits an energised relay.
func NewController(board Board, pins map[int]int, activeLow bool) (*Controller, error) {
	mapping := make(map[int]int, len(pins))
	for port, pin := range pins {
		if err := device.ValidateRelayPort(port); err != nil {
			return nil, fmt.Errorf("invalid relay mapping: %w", err)
		}
		mapping[port] = pin
	}

	if err := board.Open(); err != nil {
		return nil, err
	}

	c := &Controller{board: board, pins: mapping, activeLow: activeLow}
	for _, port := range c.Ports() {
		if err := board.Write(c.pins[port], c.level(false)); err != nil {
			board.Close()
			return nil, fmt.Errorf("failed to reset relay port %d: %w", port, err)
		}
	}
	log.Printf("Relay controller ready: ports %v (active_low=%t)", c.Ports(), activeLow)
	return c, nil
}

func (c *Controller) level(active bool) Level {
	if c.activeLow {
		return Level(!active)
	}
	return Level(active)
}

// SetRelay drives the line of port to the level implied by status.
func (c *Controller) SetRelay(port int, status device.Status) error {
	pin, ok := c.pins[port]
	if !ok {
		return device.Hardware(port, fmt.Errorf("%w: %d", ErrUnsupportedPort, port))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return device.Hardware(port, ErrClosed)
	}
	if err := c.board.Write(pin, c.level(device.IsActive(status))); err != nil {
		return device.Hardware(port, err)
	}
	return nil
}

// Ports returns the wired relay ports in ascending order.
func (c *Controller) Ports() []int {
	ports := make([]int, 0, len(c.pins))
	for port := range c.pins {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

// Close drives every wired port inactive and releases the board. Only the
// first call has an effect.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true

		var errs []error
		for _, port := range c.Ports() {
			if err := c.board.Write(c.pins[port], c.level(false)); err != nil {
				errs = append(errs, fmt.Errorf("port %d: %w", port, err))
			}
		}
		if err := c.board.Close(); err != nil {
			errs = append(errs, err)
		}
		c.closeErr = errors.Join(errs...)
		log.Println("Relay controller released")
	})
	return c.closeErr
}
