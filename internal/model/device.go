package model

import (
	"strconv"

	"relay-control-backend/internal/device"
)

// Device is a door or switch wired to one relay port.
type Device struct {
	ID        int64         `gorm:"primaryKey;autoIncrement"`
	Name      string        `gorm:"not null"`
	Type      string        `gorm:"column:type;not null"`
	Status    device.Status `gorm:"not null"`
	RelayPort int           `gorm:"not null"`
}

// PublicID is the identifier as it appears outside the store.
func (d Device) PublicID() string {
	return strconv.FormatInt(d.ID, 10)
}
