package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// SQLStore is the embedded per-network SQL backend from spec.md §4.1/§6: a
// (hash PRIMARY KEY, content) table in {acronym}.sqlite, pure Go (no cgo)
// via modernc.org/sqlite.
type SQLStore struct {
	db      *sql.DB
	hasher  Hasher
	metrics Options
}

// NewSQLStore opens (creating the schema if needed) the per-network
// SQLite database.
func NewSQLStore(baseDir string, network Network, opts Options) (*SQLStore, error) {
	netDir := oai.NetworkBasePath(baseDir, network.Acronym)
	dbPath := filepath.Join(netDir, oai.SanitizeAcronym(network.Acronym)+".sqlite")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, oai.StoreIOf("opening sqlite db %s: %v", dbPath, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one connection serializes writes cleanly

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS blobs (hash TEXT PRIMARY KEY, content BLOB NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, oai.StoreIOf("creating blobs table: %v", err)
	}

	return &SQLStore{db: db, hasher: opts.hasherOrDefault(), metrics: opts}, nil
}

func (s *SQLStore) Put(ctx context.Context, content []byte) (string, error) {
	fp := s.hasher.Sum(content)
	// INSERT OR IGNORE makes concurrent puts of the same fingerprint
	// resolve to a single stored copy without a round-trip existence
	// check (spec.md §5).
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO blobs (hash, content) VALUES (?, ?)`, fp, content)
	if err != nil {
		return "", oai.StoreIOf("inserting blob %s: %v", fp, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.metrics.metricsOrNoop().BlobPutDuplicates.Inc()
	} else {
		s.metrics.metricsOrNoop().BlobPuts.Inc()
	}
	return fp, nil
}

func (s *SQLStore) Get(ctx context.Context, fingerprint string) ([]byte, error) {
	s.metrics.metricsOrNoop().BlobGets.Inc()
	var content []byte
	err := s.db.QueryRowContext(ctx, `SELECT content FROM blobs WHERE hash = ?`, fingerprint).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		s.metrics.metricsOrNoop().BlobGetMisses.Inc()
		return nil, oai.NotFoundf("blob %s", fingerprint)
	}
	if err != nil {
		return nil, oai.StoreIOf("reading blob %s: %v", fingerprint, err)
	}
	return content, nil
}

// Delete implements blob deletion uniformly across backends (SPEC_FULL.md
// §13.4 resolves the Java source's SQL-backend gap).
func (s *SQLStore) Delete(ctx context.Context, fingerprint string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE hash = ?`, fingerprint)
	if err != nil {
		return false, oai.StoreIOf("deleting blob %s: %v", fingerprint, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLStore) ForEachHash(ctx context.Context, consumer func(string) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT hash FROM blobs`)
	if err != nil {
		return oai.StoreIOf("listing blobs: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return oai.StoreIOf("scanning blob hash: %v", err)
		}
		if err := consumer(fp); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLStore) CleanAndOptimize(ctx context.Context) (bool, error) {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return false, oai.StoreIOf("vacuuming: %v", err)
	}
	return true, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
