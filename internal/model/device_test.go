package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_MarshalJSON(t *testing.T) {
	checked := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	device := Device{
		ID:          "0198c2f0-5e6d-7000-8000-0123456789ab",
		Name:        "core-sw-1",
		IPAddress:   "10.0.0.5",
		Type:        TypeSwitch,
		Status:      StatusOnline,
		LastChecked: &checked,
	}

	data, err := json.Marshal(device)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "0198c2f0-5e6d-7000-8000-0123456789ab", out["id"])
	assert.Equal(t, "10.0.0.5", out["ip_address"])
	assert.Equal(t, "2026-03-14T09:26:53Z", out["last_checked"])
	// Location is a value even when empty
	assert.Equal(t, "", out["location"])
}

func TestDevice_MarshalJSON_NeverChecked(t *testing.T) {
	data, err := json.Marshal(Device{})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotContains(t, out, "last_checked")
}
