package storage

import (
	"errors"
	"iter"

	"github.com/martinsuchenak/invd/internal/model"
)

var (
	// ErrDeviceNotFound is returned when no device exists for an id
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDuplicateIP is returned when a write would violate the unique
	// index on ip_address
	ErrDuplicateIP = errors.New("device with this ip_address already exists")
)

// Storage defines the interface for device persistence
type Storage interface {
	// ListDevices streams devices matching the filter, ordered by name
	// ascending. Rows are read lazily; the caller materializes them.
	ListDevices(filter *model.DeviceFilter) iter.Seq2[*model.Device, error]

	// CreateDevice inserts a new device, generating its id and timestamps.
	// Returns ErrDuplicateIP if the ip_address is already taken.
	CreateDevice(device *model.Device) error

	// GetDevice returns a device by id or ErrDeviceNotFound
	GetDevice(id string) (*model.Device, error)

	// UpdateDevice applies only the fields present in the payload and
	// returns the updated device. Returns ErrDeviceNotFound or
	// ErrDuplicateIP.
	UpdateDevice(id string, upd *model.DevicePayload) (*model.Device, error)

	// DeleteDevice removes a device by id or returns ErrDeviceNotFound
	DeleteDevice(id string) error

	// Ping reports whether the underlying store is reachable
	Ping() error

	Close() error
}
