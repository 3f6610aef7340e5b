package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay-control-backend/internal/device"
	"relay-control-backend/internal/model"
)

// Store defines the interface for all device persistence operations.
// Identifiers cross this boundary as strings.
type Store interface {
	List(ctx context.Context) ([]model.Device, error)
	Get(ctx context.Context, id string) (model.Device, error)
	Create(ctx context.Context, name, deviceType string, relayPort int) (model.Device, error)
	Update(ctx context.Context, id string, upd DeviceUpdate) (model.Device, error)
	Delete(ctx context.Context, id string) (bool, error)
	Toggle(ctx context.Context, id string) (model.Device, error)
	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// parseID converts an external identifier. Anything that is not a positive
// integer cannot name a stored device.
func parseID(id string) (int64, bool) {
	pk, err := strconv.ParseInt(id, 10, 64)
	if err != nil || pk <= 0 {
		return 0, false
	}
	return pk, true
}

// List returns every device in creation order.
func (s *gormStore) List(ctx context.Context) ([]model.Device, error) {
	devices := make([]model.Device, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&devices).Error; err != nil {
		return nil, device.Storage("list", err)
	}
	return devices, nil
}

// Get returns the device with exactly the given identifier.
func (s *gormStore) Get(ctx context.Context, id string) (model.Device, error) {
	pk, ok := parseID(id)
	if !ok {
		return model.Device{}, device.NotFound(id)
	}
	return findDevice(s.db.WithContext(ctx), pk, id)
}

// Create validates and inserts a new device in its initial status.
func (s *gormStore) Create(ctx context.Context, name, deviceType string, relayPort int) (model.Device, error) {
	if err := device.ValidateName(name); err != nil {
		return model.Device{}, err
	}
	if err := device.ValidateType(deviceType); err != nil {
		return model.Device{}, err
	}
	if err := device.ValidateRelayPort(relayPort); err != nil {
		return model.Device{}, err
	}

	newDevice := model.Device{
		Name:      name,
		Type:      deviceType,
		Status:    device.InitialStatus(deviceType),
		RelayPort: relayPort,
	}

	var created model.Device
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newDevice).Error; err != nil {
			return device.Storage("create", err)
		}
		// Read back inside the transaction so a failed lookup rolls the insert back.
		found, err := findDevice(tx, newDevice.ID, newDevice.PublicID())
		if err != nil {
			return device.Storage("create", fmt.Errorf("failed to read back device %d: %w", newDevice.ID, err))
		}
		created = found
		return nil
	})
	if err != nil {
		return model.Device{}, err
	}

	log.Printf("Created device %d (%s, type=%s, relay_port=%d)", created.ID, created.Name, created.Type, created.RelayPort)
	return created, nil
}

// Update applies the supplied fields. With no fields it is a plain read.
func (s *gormStore) Update(ctx context.Context, id string, upd DeviceUpdate) (model.Device, error) {
	if err := upd.Validate(); err != nil {
		return model.Device{}, err
	}
	if upd.IsEmpty() {
		return s.Get(ctx, id)
	}

	pk, ok := parseID(id)
	if !ok {
		return model.Device{}, device.NotFound(id)
	}

	var updated model.Device
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockDevice(tx, pk, id)
		if err != nil {
			return err
		}

		changes := upd.changes(current)
		if err := tx.Model(&model.Device{}).Where("id = ?", pk).Updates(changes).Error; err != nil {
			return device.Storage("update", err)
		}

		updated, err = findDevice(tx, pk, id)
		return err
	})
	if err != nil {
		return model.Device{}, err
	}
	return updated, nil
}

// Delete removes the device and reports whether it existed.
func (s *gormStore) Delete(ctx context.Context, id string) (bool, error) {
	pk, ok := parseID(id)
	if !ok {
		return false, nil
	}

	res := s.db.WithContext(ctx).Delete(&model.Device{}, pk)
	if res.Error != nil {
		return false, device.Storage("delete", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("Deleted device %d", pk)
	}
	return res.RowsAffected > 0, nil
}

// Toggle flips the device status within its vocabulary.
func (s *gormStore) Toggle(ctx context.Context, id string) (model.Device, error) {
	pk, ok := parseID(id)
	if !ok {
		return model.Device{}, device.NotFound(id)
	}

	var toggled model.Device
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockDevice(tx, pk, id)
		if err != nil {
			return err
		}

		next := device.NextStatus(current.Type, current.Status)
		if err := tx.Model(&model.Device{}).Where("id = ?", pk).Update("status", next).Error; err != nil {
			return device.Storage("toggle", err)
		}

		current.Status = next
		toggled = current
		return nil
	})
	if err != nil {
		return model.Device{}, err
	}
	return toggled, nil
}

// Ping checks that the database is reachable.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return device.Storage("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return device.Storage("ping", err)
	}
	return nil
}

// lockDevice reads the row with SELECT ... FOR UPDATE so concurrent writers
// queue behind the open transaction. SQLite drops the clause and relies on its
// single writer.
func lockDevice(tx *gorm.DB, pk int64, id string) (model.Device, error) {
	return findDevice(tx.Clauses(clause.Locking{Strength: "UPDATE"}), pk, id)
}

func findDevice(tx *gorm.DB, pk int64, id string) (model.Device, error) {
	var d model.Device
	if err := tx.First(&d, pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Device{}, device.NotFound(id)
		}
		return model.Device{}, device.Storage("get", err)
	}
	return d, nil
}
