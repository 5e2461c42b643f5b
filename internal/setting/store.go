package setting

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateLogger adapts this package's logging hook to migrate.Logger.
type migrateLogger struct {
	logf func(format string, v ...interface{})
}

func (l migrateLogger) Printf(format string, v ...interface{}) { l.logf(format, v...) }
func (l migrateLogger) Verbose() bool                           { return false }

// Store persists Setting records to a local sqlite database. One row
// per experiment, keyed by name; the loop keeps only the currently
// active row's Setting in memory.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if absent) the sqlite database at path and
// applies any pending migrations.
func OpenStore(path string, logf func(format string, v ...interface{})) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := migrateUp(db, logf); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB, logf func(format string, v ...interface{})) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if logf != nil {
		m.Log = migrateLogger{logf: logf}
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (st *Store) Close() error {
	return st.db.Close()
}

type settingRow struct {
	VideoPath           sql.NullString
	DaqPath             sql.NullString
	StartFrame          sql.NullInt64
	StartRow            sql.NullInt64
	Area                sql.NullString
	Thermocouples       sql.NullString
	InterpolationMethod sql.NullString
	CompletedAt         sql.NullString
}

// Create inserts a fresh Setting record and returns its row id.
func (st *Store) Create(s Setting) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	filterJSON, err := json.Marshal(s.FilterMethod)
	if err != nil {
		return 0, fmt.Errorf("marshal filter_method: %w", err)
	}
	iterJSON, err := json.Marshal(s.IterationMethod)
	if err != nil {
		return 0, fmt.Errorf("marshal iteration_method: %w", err)
	}

	res, err := st.db.Exec(`
		INSERT INTO settings (
			name, save_root_dir, video_path, daq_path, start_frame, start_row,
			area, thermocouples, interpolation_method, filter_method, iteration_method,
			peak_temperature, solid_thermal_conductivity, solid_thermal_diffusivity,
			characteristic_length, air_thermal_conductivity, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.SaveRootDir, nullableString(s.VideoPath), nullableString(s.DaqPath),
		nullableInt(s.StartFrame), nullableInt(s.StartRow),
		mustMarshalPtr(s.Area), mustMarshalSlice(s.Thermocouples), mustMarshalPtr(s.InterpMethod),
		string(filterJSON), string(iterJSON),
		s.Physical.PeakTemperature, s.Physical.SolidThermalConductivity, s.Physical.SolidThermalDiffusivity,
		s.Physical.CharacteristicLength, s.Physical.AirThermalConductivity, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert setting: %w", err)
	}
	return res.LastInsertId()
}

// Load reads back the Setting for the given row id.
func (st *Store) Load(id int64) (Setting, error) {
	var s Setting
	var row settingRow
	var filterJSON, iterJSON string

	err := st.db.QueryRow(`
		SELECT name, save_root_dir, video_path, daq_path, start_frame, start_row,
			area, thermocouples, interpolation_method, filter_method, iteration_method,
			peak_temperature, solid_thermal_conductivity, solid_thermal_diffusivity,
			characteristic_length, air_thermal_conductivity, completed_at
		FROM settings WHERE id = ?`, id).Scan(
		&s.Name, &s.SaveRootDir, &row.VideoPath, &row.DaqPath, &row.StartFrame, &row.StartRow,
		&row.Area, &row.Thermocouples, &row.InterpolationMethod, &filterJSON, &iterJSON,
		&s.Physical.PeakTemperature, &s.Physical.SolidThermalConductivity, &s.Physical.SolidThermalDiffusivity,
		&s.Physical.CharacteristicLength, &s.Physical.AirThermalConductivity, &row.CompletedAt,
	)
	if err != nil {
		return Setting{}, fmt.Errorf("load setting %d: %w", id, err)
	}

	if err := json.Unmarshal([]byte(filterJSON), &s.FilterMethod); err != nil {
		return Setting{}, fmt.Errorf("unmarshal filter_method: %w", err)
	}
	if err := json.Unmarshal([]byte(iterJSON), &s.IterationMethod); err != nil {
		return Setting{}, fmt.Errorf("unmarshal iteration_method: %w", err)
	}
	if row.VideoPath.Valid {
		s.VideoPath = row.VideoPath.String
	}
	if row.DaqPath.Valid {
		s.DaqPath = row.DaqPath.String
	}
	if row.StartFrame.Valid {
		v := int(row.StartFrame.Int64)
		s.StartFrame = &v
	}
	if row.StartRow.Valid {
		v := int(row.StartRow.Int64)
		s.StartRow = &v
	}
	if row.Area.Valid {
		var a Area
		if err := json.Unmarshal([]byte(row.Area.String), &a); err != nil {
			return Setting{}, fmt.Errorf("unmarshal area: %w", err)
		}
		s.Area = &a
	}
	if row.Thermocouples.Valid {
		if err := json.Unmarshal([]byte(row.Thermocouples.String), &s.Thermocouples); err != nil {
			return Setting{}, fmt.Errorf("unmarshal thermocouples: %w", err)
		}
	}
	if row.InterpolationMethod.Valid {
		var im InterpMethod
		if err := json.Unmarshal([]byte(row.InterpolationMethod.String), &im); err != nil {
			return Setting{}, fmt.Errorf("unmarshal interpolation_method: %w", err)
		}
		s.InterpMethod = &im
	}
	if row.CompletedAt.Valid {
		t, err := time.Parse(time.RFC3339, row.CompletedAt.String)
		if err != nil {
			return Setting{}, fmt.Errorf("parse completed_at: %w", err)
		}
		s.CompletedAt = &t
	}
	return s, nil
}

// Save overwrites the Setting record at id with s's current field
// values and bumps updated_at.
func (st *Store) Save(id int64, s Setting) error {
	now := time.Now().UTC().Format(time.RFC3339)
	filterJSON, err := json.Marshal(s.FilterMethod)
	if err != nil {
		return fmt.Errorf("marshal filter_method: %w", err)
	}
	iterJSON, err := json.Marshal(s.IterationMethod)
	if err != nil {
		return fmt.Errorf("marshal iteration_method: %w", err)
	}
	var completedAt interface{}
	if s.CompletedAt != nil {
		completedAt = s.CompletedAt.UTC().Format(time.RFC3339)
	}

	_, err = st.db.Exec(`
		UPDATE settings SET
			name = ?, save_root_dir = ?, video_path = ?, daq_path = ?,
			start_frame = ?, start_row = ?, area = ?, thermocouples = ?,
			interpolation_method = ?, filter_method = ?, iteration_method = ?,
			peak_temperature = ?, solid_thermal_conductivity = ?, solid_thermal_diffusivity = ?,
			characteristic_length = ?, air_thermal_conductivity = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.SaveRootDir, nullableString(s.VideoPath), nullableString(s.DaqPath),
		nullableInt(s.StartFrame), nullableInt(s.StartRow),
		mustMarshalPtr(s.Area), mustMarshalSlice(s.Thermocouples), mustMarshalPtr(s.InterpMethod),
		string(filterJSON), string(iterJSON),
		s.Physical.PeakTemperature, s.Physical.SolidThermalConductivity, s.Physical.SolidThermalDiffusivity,
		s.Physical.CharacteristicLength, s.Physical.AirThermalConductivity, completedAt, now, id,
	)
	if err != nil {
		return fmt.Errorf("update setting %d: %w", id, err)
	}
	return nil
}

// Delete removes the Setting record at id.
func (st *Store) Delete(id int64) error {
	if _, err := st.db.Exec(`DELETE FROM settings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete setting %d: %w", id, err)
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func mustMarshalPtr(v interface{}) interface{} {
	switch p := v.(type) {
	case *Area:
		if p == nil {
			return nil
		}
	case *InterpMethod:
		if p == nil {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return string(b)
}

func mustMarshalSlice(tcs []Thermocouple) interface{} {
	if len(tcs) == 0 {
		return nil
	}
	b, err := json.Marshal(tcs)
	if err != nil {
		return nil
	}
	return string(b)
}
