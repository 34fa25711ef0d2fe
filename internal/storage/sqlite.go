package storage

import (
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/invd/internal/log"
	"github.com/martinsuchenak/invd/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage backed by a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// NewStorage opens (or creates) the device database under dataDir, verifies
// connectivity and applies schema migrations. Any failure here is fatal to
// service startup.
func NewStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return Open(filepath.Join(dataDir, "devices.db"))
}

// Open opens a SQLite database at the given DSN. ":memory:" is accepted for
// tests.
func Open(dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single connection: SQLite has one writer, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	ss := &SQLiteStorage{db: db}
	if err := ss.applyMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	log.Debug("SQLite storage ready", "dsn", dsn)
	return ss, nil
}

const deviceColumns = "id, name, ip_address, type, status, location, last_checked, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*model.Device, error) {
	var d model.Device
	var lastChecked sql.NullTime
	err := row.Scan(&d.ID, &d.Name, &d.IPAddress, &d.Type, &d.Status,
		&d.Location, &lastChecked, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastChecked.Valid {
		t := lastChecked.Time.UTC()
		d.LastChecked = &t
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

// ListDevices streams matching devices ordered by name. The query runs when
// the sequence is first ranged over; rows are closed when iteration stops.
func (ss *SQLiteStorage) ListDevices(filter *model.DeviceFilter) iter.Seq2[*model.Device, error] {
	query := "SELECT " + deviceColumns + " FROM devices"
	var conds []string
	var args []any
	if filter != nil {
		if filter.Status != "" {
			conds = append(conds, "status = ?")
			args = append(args, filter.Status)
		}
		if filter.Name != "" {
			conds = append(conds, "name LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(filter.Name)+"%")
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE ASC"

	return func(yield func(*model.Device, error) bool) {
		rows, err := ss.db.Query(query, args...)
		if err != nil {
			yield(nil, fmt.Errorf("listing devices: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			device, err := scanDevice(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scanning device: %w", err))
				return
			}
			if !yield(device, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterating devices: %w", err))
		}
	}
}

// CreateDevice inserts the device, generating id and timestamps. The unique
// index on ip_address is the sole arbiter of duplicates; there is no
// pre-check.
func (ss *SQLiteStorage) CreateDevice(device *model.Device) error {
	device.ID = generateID()
	now := time.Now().UTC()
	device.CreatedAt = now
	device.UpdatedAt = now

	var lastChecked any
	if device.LastChecked != nil {
		lastChecked = device.LastChecked.UTC()
	}

	_, err := ss.db.Exec(`
		INSERT INTO devices (id, name, ip_address, type, status, location, last_checked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, device.ID, device.Name, device.IPAddress, device.Type, device.Status,
		device.Location, lastChecked, device.CreatedAt, device.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIP
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// GetDevice returns a device by id
func (ss *SQLiteStorage) GetDevice(id string) (*model.Device, error) {
	row := ss.db.QueryRow("SELECT "+deviceColumns+" FROM devices WHERE id = ?", id)
	device, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return device, nil
}

// UpdateDevice applies only the fields present in the payload
func (ss *SQLiteStorage) UpdateDevice(id string, upd *model.DevicePayload) (*model.Device, error) {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.IPAddress != nil {
		sets = append(sets, "ip_address = ?")
		args = append(args, *upd.IPAddress)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *upd.Type)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *upd.Location)
	}
	if upd.LastChecked != nil {
		t, err := time.Parse(time.RFC3339, *upd.LastChecked)
		if err != nil {
			return nil, fmt.Errorf("parsing last_checked: %w", err)
		}
		sets = append(sets, "last_checked = ?")
		args = append(args, t.UTC())
	}
	if len(sets) == 0 {
		return ss.GetDevice(id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := ss.db.Exec("UPDATE devices SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIP
		}
		return nil, fmt.Errorf("updating device: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating device: %w", err)
	}
	if affected == 0 {
		return nil, ErrDeviceNotFound
	}
	return ss.GetDevice(id)
}

// DeleteDevice removes a device by id
func (ss *SQLiteStorage) DeleteDevice(id string) error {
	res, err := ss.db.Exec("DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Ping reports whether the database is reachable
func (ss *SQLiteStorage) Ping() error {
	return ss.db.Ping()
}

// Close closes the database
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// isUniqueViolation reports whether the error is the unique-index violation
// on ip_address
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLike escapes LIKE metacharacters in user-supplied substrings
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// generateID generates a UUIDv7 for a device
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
