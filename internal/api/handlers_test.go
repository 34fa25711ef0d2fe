package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/martinsuchenak/invd/internal/model"
	"github.com/martinsuchenak/invd/internal/probe"
	"github.com/martinsuchenak/invd/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProber returns a canned result and records the probed address
type stubProber struct {
	result probe.Result
	probed string
}

func (s *stubProber) Probe(_ context.Context, ip string) probe.Result {
	s.probed = ip
	return s.result
}

func testMux(t *testing.T, prober probe.Prober) *http.ServeMux {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandler(store, prober).RegisterRoutes(mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func createDevice(t *testing.T, mux *http.ServeMux, body string) model.Device {
	t.Helper()
	rec := do(mux, http.MethodPost, "/api/devices", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var device model.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &device))
	require.NotEmpty(t, device.ID)
	return device
}

const coreSwitch = `{"name":"core-sw-1","ip_address":"10.0.0.5","type":"switch","status":"unknown"}`

func TestDeviceLifecycle(t *testing.T) {
	mux := testMux(t, &stubProber{})

	device := createDevice(t, mux, coreSwitch)
	assert.Equal(t, "core-sw-1", device.Name)
	assert.Equal(t, model.StatusUnknown, device.Status)

	// Shows up in a filtered list
	rec := do(mux, http.MethodGet, "/api/devices?status=unknown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []model.Device `json:"items"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, device.ID, list.Items[0].ID)

	// Partial update merges, ip_address untouched
	rec = do(mux, http.MethodPut, "/api/devices/"+device.ID, `{"status":"online"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.StatusOnline, updated.Status)
	assert.Equal(t, "10.0.0.5", updated.IPAddress)
	assert.Equal(t, "core-sw-1", updated.Name)

	// Delete, then the record is gone
	rec = do(mux, http.MethodDelete, "/api/devices/"+device.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(mux, http.MethodGet, "/api/devices/"+device.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateDevice_ValidationErrors(t *testing.T) {
	mux := testMux(t, &stubProber{})

	rec := do(mux, http.MethodPost, "/api/devices", `{"name":"x","ip_address":"999.1.1.1","rack":"r1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Details, "ip_address")
	assert.Contains(t, resp.Details, "type")
	assert.Contains(t, resp.Details, "status")
	assert.Contains(t, resp.Details, "rack")
}

func TestCreateDevice_DuplicateIP(t *testing.T) {
	mux := testMux(t, &stubProber{})

	createDevice(t, mux, coreSwitch)
	rec := do(mux, http.MethodPost, "/api/devices", `{"name":"core-sw-2","ip_address":"10.0.0.5","type":"switch","status":"unknown"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateDevice_DuplicateIP(t *testing.T) {
	mux := testMux(t, &stubProber{})

	createDevice(t, mux, coreSwitch)
	other := createDevice(t, mux, `{"name":"core-sw-2","ip_address":"10.0.0.6","type":"switch","status":"unknown"}`)

	rec := do(mux, http.MethodPut, "/api/devices/"+other.ID, `{"ip_address":"10.0.0.5"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateDevice_EmptyPayload(t *testing.T) {
	mux := testMux(t, &stubProber{})
	device := createDevice(t, mux, coreSwitch)

	rec := do(mux, http.MethodPut, "/api/devices/"+device.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidID(t *testing.T) {
	mux := testMux(t, &stubProber{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/devices/nope"},
		{http.MethodPut, "/api/devices/nope"},
		{http.MethodDelete, "/api/devices/nope"},
		{http.MethodPost, "/api/devices/nope/ping"},
	} {
		rec := do(mux, tc.method, tc.path, `{"status":"online"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestUnassignedID(t *testing.T) {
	mux := testMux(t, &stubProber{})
	const ghost = "/api/devices/0198c2f0-5e6d-7000-8000-0123456789ab"

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, ghost, ""},
		{http.MethodPut, ghost, `{"status":"online"}`},
		{http.MethodDelete, ghost, ""},
		{http.MethodPost, ghost + "/ping", ""},
	} {
		rec := do(mux, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestPingDevice_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		result     probe.Result
		wantStatus string
	}{
		{"reachable", probe.Result{Reachable: true, Note: probe.NoteOK}, model.StatusOnline},
		{"timeout", probe.Result{Reachable: false, Note: probe.NoteTimeout}, model.StatusOffline},
		{"unreachable", probe.Result{Reachable: false, Note: probe.NoteUnreachable}, model.StatusOffline},
		{"probe error", probe.Result{Reachable: false, Note: "error:probe"}, model.StatusOffline},
		{"probe not available", probe.Result{Reachable: false, Note: probe.NoteNotAvailable}, model.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &stubProber{result: tt.result}
			mux := testMux(t, prober)
			device := createDevice(t, mux, coreSwitch)
			require.Nil(t, device.LastChecked)

			rec := do(mux, http.MethodPost, "/api/devices/"+device.ID+"/ping", "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp struct {
				Device model.Device `json:"device"`
				Note   string       `json:"note"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

			assert.Equal(t, "10.0.0.5", prober.probed)
			assert.Equal(t, tt.result.Note, resp.Note)
			assert.Equal(t, tt.wantStatus, resp.Device.Status)
			// last_checked is refreshed on every probe, including degraded ones
			assert.NotNil(t, resp.Device.LastChecked)
		})
	}
}

func TestHealth(t *testing.T) {
	mux := testMux(t, &stubProber{})

	rec := do(mux, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
