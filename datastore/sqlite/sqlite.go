package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/jmoiron/sqlx"

	"github.com/lovi-cloud/tanuki/datastore"
	"github.com/lovi-cloud/tanuki/kernels"
)

// SQLite is
type SQLite struct {
	db *sqlx.DB
}

// New is
func New(ctx context.Context, dsn string) (datastore.Datastore, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	err = createTable(db)
	if err != nil {
		return nil, err
	}

	return &SQLite{
		db: db,
	}, nil
}

// GetArtifact is
func (s *SQLite) GetArtifact(ctx context.Context, isoName string) (*kernels.Artifact, error) {
	query := `SELECT id, iso_name, base_name, flavor, source_size, source_modified, kernel_sha256, initrd_sha256, extracted_at, run_id FROM artifact WHERE iso_name = ?`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	var artifact kernels.Artifact
	err = stmt.GetContext(ctx, &artifact, isoName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return &artifact, nil
}

// PutArtifact is
func (s *SQLite) PutArtifact(ctx context.Context, artifact kernels.Artifact) error {
	query := `INSERT INTO artifact(iso_name, base_name, flavor, source_size, source_modified, kernel_sha256, initrd_sha256, extracted_at, run_id)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(iso_name) DO UPDATE SET
base_name = excluded.base_name,
flavor = excluded.flavor,
source_size = excluded.source_size,
source_modified = excluded.source_modified,
kernel_sha256 = excluded.kernel_sha256,
initrd_sha256 = excluded.initrd_sha256,
extracted_at = excluded.extracted_at,
run_id = excluded.run_id`
	stmt, err := s.db.Preparex(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	_, err = stmt.ExecContext(ctx,
		artifact.ISOName,
		artifact.BaseName,
		artifact.Flavor,
		artifact.SourceSize,
		artifact.SourceModified,
		artifact.KernelSHA256,
		artifact.InitrdSHA256,
		artifact.ExtractedAt,
		artifact.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to put artifact: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func createTable(db *sqlx.DB) error {
	for name, query := range tables {
		_, err := db.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}
	return nil
}
