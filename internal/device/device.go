// Package device holds the rules tying a device type to its status
// vocabulary.
package device

import "fmt"

// Status is the persisted state of a device.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
	StatusOn     Status = "on"
	StatusOff    Status = "off"
)

// TypeDoor is the only type with the open/closed vocabulary. Every other
// type is treated as a switch.
const TypeDoor = "door"

const (
	MinRelayPort = 1
	MaxRelayPort = 6
)

// Vocabulary returns the active and inactive statuses for a device type.
func Vocabulary(deviceType string) (active, inactive Status) {
	if deviceType == TypeDoor {
		return StatusOpen, StatusClosed
	}
	return StatusOn, StatusOff
}

// InitialStatus is the status a new device of the given type starts in.
func InitialStatus(deviceType string) Status {
	_, inactive := Vocabulary(deviceType)
	return inactive
}

// NextStatus returns the status after a toggle. A current value outside
// the type's vocabulary counts as active, so the toggle lands on inactive.
func NextStatus(deviceType string, current Status) Status {
	active, inactive := Vocabulary(deviceType)
	if current == inactive {
		return active
	}
	return inactive
}

// IsActive reports whether a status drives the relay line to its active level.
func IsActive(s Status) bool {
	return s == StatusOn || s == StatusOpen
}

// Valid reports whether s belongs to the vocabulary of deviceType.
func Valid(deviceType string, s Status) bool {
	active, inactive := Vocabulary(deviceType)
	return s == active || s == inactive
}

// Normalize maps s into the vocabulary of deviceType, keeping whether it is
// active. Unrecognised statuses become inactive.
func Normalize(deviceType string, s Status) Status {
	active, inactive := Vocabulary(deviceType)
	if IsActive(s) {
		return active
	}
	return inactive
}

// ValidateRelayPort fails unless MinRelayPort <= port <= MaxRelayPort.
func ValidateRelayPort(port int) error {
	if port < MinRelayPort || port > MaxRelayPort {
		return Validation("relay_port", port,
			fmt.Sprintf("Relay port must be between %d and %d", MinRelayPort, MaxRelayPort))
	}
	return nil
}

// ValidateName fails on an empty device name.
func ValidateName(name string) error {
	if name == "" {
		return Validation("name", name, "name must not be empty")
	}
	return nil
}

// ValidateType fails on an empty device type.
func ValidateType(deviceType string) error {
	if deviceType == "" {
		return Validation("type", deviceType, "type must not be empty")
	}
	return nil
}
