package store

import (
	"relay-control-backend/internal/device"
	"relay-control-backend/internal/model"
)

// DeviceUpdate carries the fields of a partial update. Nil fields are left
// untouched.
type DeviceUpdate struct {
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	RelayPort *int    `json:"relay_port"`
}

// IsEmpty reports whether no field was supplied.
func (u DeviceUpdate) IsEmpty() bool {
	return u.Name == nil && u.Type == nil && u.RelayPort == nil
}

// Validate checks every supplied field.
func (u DeviceUpdate) Validate() error {
	if u.Name != nil {
		if err := device.ValidateName(*u.Name); err != nil {
			return err
		}
	}
	if u.Type != nil {
		if err := device.ValidateType(*u.Type); err != nil {
			return err
		}
	}
	if u.RelayPort != nil {
		if err := device.ValidateRelayPort(*u.RelayPort); err != nil {
			return err
		}
	}
	return nil
}

// changes builds the column assignments for current. A type change moves the
// status into the new type's vocabulary.
func (u DeviceUpdate) changes(current model.Device) map[string]any {
	changes := make(map[string]any, 4)
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Type != nil {
		changes["type"] = *u.Type
		if status := device.Normalize(*u.Type, current.Status); status != current.Status {
			changes["status"] = status
		}
	}
	if u.RelayPort != nil {
		changes["relay_port"] = *u.RelayPort
	}
	return changes
}
