package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/martinsuchenak/invd/internal/log"
	"github.com/martinsuchenak/invd/internal/model"
	"github.com/martinsuchenak/invd/internal/probe"
	"github.com/martinsuchenak/invd/internal/storage"
)

// maxBodySize caps request bodies; device payloads are small
const maxBodySize = 1 << 20

// Handler handles HTTP requests
type Handler struct {
	storage storage.Storage
	prober  probe.Prober
}

// NewHandler creates a new API handler
func NewHandler(s storage.Storage, p probe.Prober) *Handler {
	return &Handler{storage: s, prober: p}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/devices", h.listDevices)
	mux.HandleFunc("POST /api/devices", h.createDevice)
	mux.HandleFunc("GET /api/devices/{id}", h.getDevice)
	mux.HandleFunc("PUT /api/devices/{id}", h.updateDevice)
	mux.HandleFunc("DELETE /api/devices/{id}", h.deleteDevice)
	mux.HandleFunc("POST /api/devices/{id}/ping", h.pingDevice)
	mux.HandleFunc("GET /api/health", h.health)
}

// listDevices handles GET /api/devices
func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	filter := &model.DeviceFilter{
		Status: r.URL.Query().Get("status"),
		Name:   r.URL.Query().Get("name"),
	}

	log.Debug("Listing devices", "status", filter.Status, "name", filter.Name)

	devices := []*model.Device{}
	for device, err := range h.storage.ListDevices(filter) {
		if err != nil {
			log.Error("Failed to list devices", "error", err, "status", filter.Status, "name", filter.Name)
			h.internalError(w, err)
			return
		}
		devices = append(devices, device)
	}

	log.Info("Listed devices", "count", len(devices), "status", filter.Status, "name", filter.Name)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"items": devices,
		"count": len(devices),
	})
}

// getDevice handles GET /api/devices/{id}
func (h *Handler) getDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	log.Debug("Getting device", "id", id)
	device, err := h.storage.GetDevice(id)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Device not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to get device", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	log.Info("Retrieved device", "id", id, "name", device.Name)
	h.writeJSON(w, http.StatusOK, device)
}

// createDevice handles POST /api/devices
func (h *Handler) createDevice(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.Warn("Failed to read device creation request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, fieldErrs := model.ValidateDevicePayload(body, false)
	if len(fieldErrs) > 0 {
		log.Warn("Device creation failed validation", "errors", fieldErrs)
		h.validationError(w, fieldErrs)
		return
	}

	device := deviceFromPayload(payload)
	log.Debug("Creating device", "name", device.Name, "ip_address", device.IPAddress)

	if err := h.storage.CreateDevice(device); err != nil {
		if errors.Is(err, storage.ErrDuplicateIP) {
			log.Warn("Device creation failed - duplicate ip_address", "ip_address", device.IPAddress)
			h.writeError(w, http.StatusConflict, "device with the same ip_address already exists")
			return
		}
		log.Error("Failed to create device", "error", err, "name", device.Name)
		h.internalError(w, err)
		return
	}

	log.Info("Device created successfully", "id", device.ID, "name", device.Name, "ip_address", device.IPAddress)
	h.writeJSON(w, http.StatusCreated, device)
}

// updateDevice handles PUT /api/devices/{id} with partial-update semantics
func (h *Handler) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.Warn("Failed to read device update request body", "error", err, "id", id)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, fieldErrs := model.ValidateDevicePayload(body, true)
	if len(fieldErrs) > 0 {
		log.Warn("Device update failed validation", "id", id, "errors", fieldErrs)
		h.validationError(w, fieldErrs)
		return
	}
	if payload.IsEmpty() {
		log.Warn("Device update with no fields", "id", id)
		h.writeError(w, http.StatusBadRequest, "no fields provided for update")
		return
	}

	log.Debug("Updating device", "id", id)
	device, err := h.storage.UpdateDevice(id, payload)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Device update failed - not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		if errors.Is(err, storage.ErrDuplicateIP) {
			log.Warn("Device update failed - duplicate ip_address", "id", id)
			h.writeError(w, http.StatusConflict, "device with the same ip_address already exists")
			return
		}
		log.Error("Failed to update device", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	log.Info("Device updated successfully", "id", id, "name", device.Name)
	h.writeJSON(w, http.StatusOK, device)
}

// deleteDevice handles DELETE /api/devices/{id}
func (h *Handler) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	log.Debug("Deleting device", "id", id)
	if err := h.storage.DeleteDevice(id); err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Device deletion failed - not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to delete device", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	log.Info("Device deleted successfully", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// pingDevice handles POST /api/devices/{id}/ping. The probe result drives the
// status transition; last_checked is refreshed either way, including when the
// probing mechanism is unavailable.
func (h *Handler) pingDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	device, err := h.storage.GetDevice(id)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Ping failed - device not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to load device for ping", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	log.Debug("Probing device", "id", id, "ip_address", device.IPAddress)
	result := h.prober.Probe(r.Context(), device.IPAddress)

	status := statusForProbe(result)
	checkedAt := time.Now().UTC().Format(time.RFC3339)
	updated, err := h.storage.UpdateDevice(id, &model.DevicePayload{
		Status:      &status,
		LastChecked: &checkedAt,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Ping update failed - device deleted mid-probe", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to record probe result", "error", err, "id", id, "note", result.Note)
		h.internalError(w, err)
		return
	}

	log.Info("Device probed", "id", id, "ip_address", device.IPAddress, "status", status, "note", result.Note)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"device": updated,
		"note":   result.Note,
	})
}

// health handles GET /api/health
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(); err != nil {
		log.Error("Health check failed", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForProbe maps a probe result to the device status it implies. An
// unavailable probe mechanism yields "unknown" rather than "offline": no
// network information was gained.
func statusForProbe(result probe.Result) string {
	switch {
	case result.Reachable:
		return model.StatusOnline
	case result.Note == probe.NoteNotAvailable:
		return model.StatusUnknown
	default:
		return model.StatusOffline
	}
}

// deviceFromPayload builds a new device from a fully validated create payload
func deviceFromPayload(p *model.DevicePayload) *model.Device {
	device := &model.Device{
		Name:      *p.Name,
		IPAddress: *p.IPAddress,
		Type:      *p.Type,
		Status:    *p.Status,
	}
	if p.Location != nil {
		device.Location = *p.Location
	}
	if p.LastChecked != nil {
		// Validated upstream as RFC 3339
		if t, err := time.Parse(time.RFC3339, *p.LastChecked); err == nil {
			t = t.UTC()
			device.LastChecked = &t
		}
	}
	return device
}

// deviceID extracts and validates the id path segment, writing a 400 when it
// is malformed
func (h *Handler) deviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := model.ParseID(r.PathValue("id"))
	if err != nil {
		log.Warn("Malformed device id", "id", r.PathValue("id"))
		h.writeError(w, http.StatusBadRequest, "invalid device id")
		return "", false
	}
	return id, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// validationError writes a 400 with the field-path-keyed detail map
func (h *Handler) validationError(w http.ResponseWriter, fieldErrs map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   "validation failed",
		"details": fieldErrs,
	})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
