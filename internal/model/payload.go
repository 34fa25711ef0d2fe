package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

// RootField is the error-map key for document-level problems that cannot be
// attributed to a single field.
const RootField = "_root"

// Strict dotted-decimal IPv4, each octet 0-255.
var ipv4Regex = regexp.MustCompile(
	`^(25[0-5]|2[0-4]\d|1?\d?\d)\.` +
		`(25[0-5]|2[0-4]\d|1?\d?\d)\.` +
		`(25[0-5]|2[0-4]\d|1?\d?\d)\.` +
		`(25[0-5]|2[0-4]\d|1?\d?\d)$`)

// DevicePayload carries the fields a client may supply when creating or
// updating a device. Nil means the field was absent from the request, which
// matters for partial updates.
type DevicePayload struct {
	Name        *string `json:"name,omitempty"`
	IPAddress   *string `json:"ip_address,omitempty"`
	Type        *string `json:"type,omitempty"`
	Status      *string `json:"status,omitempty"`
	Location    *string `json:"location,omitempty"`
	LastChecked *string `json:"last_checked,omitempty"`
}

// allowedFields maps payload keys to a setter that type-checks the raw value.
var allowedFields = map[string]func(p *DevicePayload, raw json.RawMessage) error{
	"name":         func(p *DevicePayload, raw json.RawMessage) error { return json.Unmarshal(raw, &p.Name) },
	"ip_address":   func(p *DevicePayload, raw json.RawMessage) error { return json.Unmarshal(raw, &p.IPAddress) },
	"type":         func(p *DevicePayload, raw json.RawMessage) error { return json.Unmarshal(raw, &p.Type) },
	"status":       func(p *DevicePayload, raw json.RawMessage) error { return json.Unmarshal(raw, &p.Status) },
	"location":     func(p *DevicePayload, raw json.RawMessage) error { return json.Unmarshal(raw, &p.Location) },
	"last_checked": func(p *DevicePayload, raw json.RawMessage) error { return json.Unmarshal(raw, &p.LastChecked) },
}

// ParseDevicePayload decodes a raw JSON body into a DevicePayload. The schema
// is closed: unknown keys and wrong-typed values are reported in the returned
// error map, keyed by field path.
func ParseDevicePayload(body []byte) (*DevicePayload, map[string]string) {
	errs := map[string]string{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		errs[RootField] = "request body must be a JSON object"
		return nil, errs
	}

	payload := &DevicePayload{}
	for key, raw := range fields {
		set, ok := allowedFields[key]
		if !ok {
			errs[key] = fmt.Sprintf("additional property %q is not allowed", key)
			continue
		}
		if err := set(payload, raw); err != nil {
			errs[key] = "must be a string"
		}
	}
	return payload, errs
}

// Validate applies per-field constraints and, unless partial is set, the
// required-field checks. All violations are reported at once, keyed by field
// path.
func (p *DevicePayload) Validate(partial bool) map[string]string {
	errs := map[string]string{}

	if !partial {
		if p.Name == nil {
			errs["name"] = "is required"
		}
		if p.IPAddress == nil {
			errs["ip_address"] = "is required"
		}
		if p.Type == nil {
			errs["type"] = "is required"
		}
		if p.Status == nil {
			errs["status"] = "is required"
		}
	}

	if p.Name != nil {
		if n := utf8.RuneCountInString(*p.Name); n < 1 || n > 100 {
			errs["name"] = "must be between 1 and 100 characters"
		}
	}
	if p.IPAddress != nil && !ipv4Regex.MatchString(*p.IPAddress) {
		errs["ip_address"] = "must be a valid IPv4 address"
	}
	if p.Type != nil {
		switch *p.Type {
		case TypeRouter, TypeSwitch, TypeServer:
		default:
			errs["type"] = "must be one of router, switch, server"
		}
	}
	if p.Status != nil {
		switch *p.Status {
		case StatusOnline, StatusOffline, StatusUnknown:
		default:
			errs["status"] = "must be one of online, offline, unknown"
		}
	}
	if p.Location != nil && utf8.RuneCountInString(*p.Location) > 200 {
		errs["location"] = "must be at most 200 characters"
	}
	if p.LastChecked != nil {
		if _, err := time.Parse(time.RFC3339, *p.LastChecked); err != nil {
			errs["last_checked"] = "must be an RFC 3339 timestamp"
		}
	}
	return errs
}

// ValidateDevicePayload decodes and validates a request body in one step,
// merging structural and per-field errors so clients see everything at once.
func ValidateDevicePayload(body []byte, partial bool) (*DevicePayload, map[string]string) {
	payload, errs := ParseDevicePayload(body)
	if payload == nil {
		return nil, errs
	}
	for path, msg := range payload.Validate(partial) {
		if _, reported := errs[path]; !reported {
			errs[path] = msg
		}
	}
	return payload, errs
}

// IsEmpty reports whether no fields were supplied. An empty partial update is
// rejected by the caller as there is nothing to apply.
func (p *DevicePayload) IsEmpty() bool {
	return p.Name == nil && p.IPAddress == nil && p.Type == nil &&
		p.Status == nil && p.Location == nil && p.LastChecked == nil
}
