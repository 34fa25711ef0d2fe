package model

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateBody() string {
	return `{"name":"core-sw-1","ip_address":"10.0.0.5","type":"switch","status":"unknown"}`
}

func TestValidateDevicePayload_ValidCreate(t *testing.T) {
	payload, errs := ValidateDevicePayload([]byte(validCreateBody()), false)
	require.Empty(t, errs)
	require.NotNil(t, payload)
	assert.Equal(t, "core-sw-1", *payload.Name)
	assert.Equal(t, "10.0.0.5", *payload.IPAddress)
	assert.Equal(t, TypeSwitch, *payload.Type)
	assert.Equal(t, StatusUnknown, *payload.Status)
	assert.Nil(t, payload.Location)
	assert.Nil(t, payload.LastChecked)
}

func TestValidateDevicePayload_RequiredFields(t *testing.T) {
	fields := map[string]string{
		"name":       `"core-sw-1"`,
		"ip_address": `"10.0.0.5"`,
		"type":       `"switch"`,
		"status":     `"unknown"`,
	}

	for missing := range fields {
		t.Run("missing "+missing, func(t *testing.T) {
			var parts []string
			for field, value := range fields {
				if field != missing {
					parts = append(parts, fmt.Sprintf("%q: %s", field, value))
				}
			}
			body := "{" + strings.Join(parts, ",") + "}"

			_, errs := ValidateDevicePayload([]byte(body), false)
			require.Contains(t, errs, missing)
			assert.Equal(t, "is required", errs[missing])
		})
	}
}

func TestValidateDevicePayload_PartialSkipsRequired(t *testing.T) {
	payload, errs := ValidateDevicePayload([]byte(`{"status":"online"}`), true)
	require.Empty(t, errs)
	assert.Equal(t, StatusOnline, *payload.Status)
	assert.False(t, payload.IsEmpty())
}

func TestValidateDevicePayload_UnknownFieldRejectedInBothModes(t *testing.T) {
	body := `{"name":"a","ip_address":"10.0.0.5","type":"switch","status":"unknown","rack":"r1"}`

	for _, partial := range []bool{false, true} {
		t.Run(fmt.Sprintf("partial=%v", partial), func(t *testing.T) {
			_, errs := ValidateDevicePayload([]byte(body), partial)
			require.Contains(t, errs, "rack")
			assert.Contains(t, errs["rack"], "additional property")
		})
	}
}

func TestValidateDevicePayload_MultipleErrorsReported(t *testing.T) {
	body := `{"ip_address":"999.0.0.1","type":"firewall","rack":"r1"}`
	_, errs := ValidateDevicePayload([]byte(body), false)

	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "status")
	assert.Contains(t, errs, "ip_address")
	assert.Contains(t, errs, "type")
	assert.Contains(t, errs, "rack")
}

func TestValidateDevicePayload_WrongTypedValue(t *testing.T) {
	_, errs := ValidateDevicePayload([]byte(`{"name":123}`), true)
	require.Contains(t, errs, "name")
	assert.Equal(t, "must be a string", errs["name"])
}

func TestValidateDevicePayload_RootErrorOnNonObject(t *testing.T) {
	for _, body := range []string{`[]`, `"device"`, `{invalid`, ``} {
		payload, errs := ValidateDevicePayload([]byte(body), false)
		assert.Nil(t, payload, "body: %s", body)
		assert.Contains(t, errs, RootField, "body: %s", body)
	}
}

func TestIPv4Validation(t *testing.T) {
	accept := []string{
		"0.0.0.0",
		"10.0.0.5",
		"192.168.1.1",
		"255.255.255.255",
		"249.200.199.99",
	}
	reject := []string{
		"256.0.0.1",
		"1.2.3.256",
		"300.1.1.1",
		"1.2.3",
		"1.2.3.4.5",
		"1.2.3.",
		".1.2.3.4",
		"a.b.c.d",
		"10.0.0.5 ",
		"10,0,0,5",
		"",
	}

	for _, ip := range accept {
		t.Run("accept "+ip, func(t *testing.T) {
			p := &DevicePayload{IPAddress: &ip}
			assert.NotContains(t, p.Validate(true), "ip_address")
		})
	}
	for _, ip := range reject {
		t.Run("reject "+ip, func(t *testing.T) {
			p := &DevicePayload{IPAddress: &ip}
			assert.Contains(t, p.Validate(true), "ip_address")
		})
	}
}

func TestValidate_FieldConstraints(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		payload DevicePayload
		field   string
		wantErr bool
	}{
		{"empty name", DevicePayload{Name: str("")}, "name", true},
		{"max length name", DevicePayload{Name: str(strings.Repeat("a", 100))}, "name", false},
		{"overlong name", DevicePayload{Name: str(strings.Repeat("a", 101))}, "name", true},
		{"bad type", DevicePayload{Type: str("firewall")}, "type", true},
		{"good type", DevicePayload{Type: str("router")}, "type", false},
		{"bad status", DevicePayload{Status: str("down")}, "status", true},
		{"good status", DevicePayload{Status: str("offline")}, "status", false},
		{"max length location", DevicePayload{Location: str(strings.Repeat("x", 200))}, "location", false},
		{"overlong location", DevicePayload{Location: str(strings.Repeat("x", 201))}, "location", true},
		{"bad last_checked", DevicePayload{LastChecked: str("yesterday")}, "last_checked", true},
		{"good last_checked", DevicePayload{LastChecked: str("2026-01-02T15:04:05Z")}, "last_checked", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.payload.Validate(true)
			if tt.wantErr {
				assert.Contains(t, errs, tt.field)
			} else {
				assert.NotContains(t, errs, tt.field)
			}
		})
	}
}

func TestDevicePayload_IsEmpty(t *testing.T) {
	payload, errs := ValidateDevicePayload([]byte(`{}`), true)
	require.Empty(t, errs)
	assert.True(t, payload.IsEmpty())
}
