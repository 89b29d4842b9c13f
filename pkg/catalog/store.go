package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/adaptik3d/adaptik/pkg/quality"
)

var ErrNotFound = errors.New("asset not found")

// ValidationError carries the full list of field problems found at
// registration time.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid descriptor: " + strings.Join(e.Problems, "; ")
}

type DB struct {
	sql *sql.DB
}

// Open opens (and bootstraps) the asset registry at path.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS assets (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL,
  url             TEXT NOT NULL,
  origin          TEXT,
  file_size       INTEGER NOT NULL CHECK (file_size > 0),
  quality         TEXT NOT NULL CHECK (quality IN ('low','medium','high','ultra')),
  description     TEXT,
  tags            TEXT,
  pos_x           REAL, pos_y REAL, pos_z REAL, scale REAL,
  min_network_mbps REAL,
  min_memory_gb    REAL,
  min_gpu_tier     TEXT,
  min_api_version  INTEGER,
  min_storage_mb   REAL,
  added_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_assets_quality ON assets(quality);
CREATE INDEX IF NOT EXISTS idx_assets_origin ON assets(origin);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Upsert validates and stores a descriptor. A malformed descriptor is
// rejected with a *ValidationError and never reaches the registry.
func (d *DB) Upsert(ctx context.Context, desc Descriptor) error {
	if problems := Validate(desc); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	origin := sql.NullString{}
	if dom, ok := RegisteredDomain(desc.URL); ok {
		origin = sql.NullString{String: dom, Valid: true}
	}

	var posX, posY, posZ, scale sql.NullFloat64
	if desc.Placement != nil {
		posX = sql.NullFloat64{Float64: desc.Placement.Position[0], Valid: true}
		posY = sql.NullFloat64{Float64: desc.Placement.Position[1], Valid: true}
		posZ = sql.NullFloat64{Float64: desc.Placement.Position[2], Valid: true}
		scale = sql.NullFloat64{Float64: desc.Placement.Scale, Valid: true}
	}

	var minNet, minMem, minStorage sql.NullFloat64
	var minGPU sql.NullString
	var minAPI sql.NullInt64
	if m := desc.MinReqs; m != nil {
		if m.NetworkMbps > 0 {
			minNet = sql.NullFloat64{Float64: m.NetworkMbps, Valid: true}
		}
		if m.MemoryGB > 0 {
			minMem = sql.NullFloat64{Float64: m.MemoryGB, Valid: true}
		}
		if m.GPUTier != "" {
			minGPU = sql.NullString{String: string(m.GPUTier), Valid: true}
		}
		if m.APIVersion > 0 {
			minAPI = sql.NullInt64{Int64: int64(m.APIVersion), Valid: true}
		}
		if m.StorageMB > 0 {
			minStorage = sql.NullFloat64{Float64: m.StorageMB, Valid: true}
		}
	}

	_, err := d.sql.ExecContext(ctx, `
INSERT INTO assets(id, name, url, origin, file_size, quality, description, tags,
                   pos_x, pos_y, pos_z, scale,
                   min_network_mbps, min_memory_gb, min_gpu_tier, min_api_version, min_storage_mb)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  url = excluded.url,
  origin = excluded.origin,
  file_size = excluded.file_size,
  quality = excluded.quality,
  description = excluded.description,
  tags = excluded.tags,
  pos_x = excluded.pos_x, pos_y = excluded.pos_y, pos_z = excluded.pos_z, scale = excluded.scale,
  min_network_mbps = excluded.min_network_mbps,
  min_memory_gb = excluded.min_memory_gb,
  min_gpu_tier = excluded.min_gpu_tier,
  min_api_version = excluded.min_api_version,
  min_storage_mb = excluded.min_storage_mb,
  updated_at = CURRENT_TIMESTAMP`,
		desc.ID, desc.Name, desc.URL, origin, desc.FileSizeBytes, string(desc.Quality),
		nullIfEmpty(desc.Description), nullIfEmpty(strings.Join(desc.Tags, ",")),
		posX, posY, posZ, scale,
		minNet, minMem, minGPU, minAPI, minStorage)
	return err
}

// Get fetches a single descriptor by id.
func (d *DB) Get(ctx context.Context, id string) (Descriptor, error) {
	row := d.sql.QueryRowContext(ctx, selectColumns+" FROM assets WHERE id = ?", id)
	desc, err := scanDescriptor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return desc, err
}

// List returns all registered descriptors ordered by id.
func (d *DB) List(ctx context.Context) ([]Descriptor, error) {
	rows, err := d.sql.QueryContext(ctx, selectColumns+" FROM assets ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Descriptor
	for rows.Next() {
		desc, err := scanDescriptor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, rows.Err()
}

// Remove deletes a descriptor by id.
func (d *DB) Remove(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, name, url, file_size, quality, description, tags,
  pos_x, pos_y, pos_z, scale,
  min_network_mbps, min_memory_gb, min_gpu_tier, min_api_version, min_storage_mb`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDescriptor(row rowScanner) (Descriptor, error) {
	var (
		d                          Descriptor
		qualityStr                 string
		description, tags          sql.NullString
		posX, posY, posZ, scale    sql.NullFloat64
		minNet, minMem, minStorage sql.NullFloat64
		minGPU                     sql.NullString
		minAPI                     sql.NullInt64
	)

	err := row.Scan(&d.ID, &d.Name, &d.URL, &d.FileSizeBytes, &qualityStr, &description, &tags,
		&posX, &posY, &posZ, &scale,
		&minNet, &minMem, &minGPU, &minAPI, &minStorage)
	if err != nil {
		return Descriptor{}, err
	}

	d.Quality = quality.Tier(qualityStr)
	d.Description = description.String
	if tags.Valid && tags.String != "" {
		d.Tags = strings.Split(tags.String, ",")
	}

	if posX.Valid {
		d.Placement = &Placement{
			Position: [3]float64{posX.Float64, posY.Float64, posZ.Float64},
			Scale:    scale.Float64,
		}
	}

	if minNet.Valid || minMem.Valid || minGPU.Valid || minAPI.Valid || minStorage.Valid {
		d.MinReqs = &MinRequirements{
			NetworkMbps: minNet.Float64,
			MemoryGB:    minMem.Float64,
			GPUTier:     quality.GraphicsTier(minGPU.String),
			APIVersion:  int(minAPI.Int64),
			StorageMB:   minStorage.Float64,
		}
	}

	return d, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
