package model

import (
	"time"
)

// Device types
const (
	TypeRouter = "router"
	TypeSwitch = "switch"
	TypeServer = "server"
)

// Device statuses
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
)

// Device represents a tracked network device with all its properties
type Device struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	IPAddress   string     `json:"ip_address"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Location    string     `json:"location"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DeviceFilter holds filter criteria for listing devices
type DeviceFilter struct {
	Status string // Exact match on status
	Name   string // Case-insensitive substring match on name
}
