package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/ironsheep/flyer-dates/internal/dates"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	total        INTEGER NOT NULL,
	succeeded    INTEGER NOT NULL,
	failed       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
	run_id     TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	image      TEXT NOT NULL,
	path       TEXT NOT NULL DEFAULT '',
	components TEXT,
	error      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS candidates (
	run_id    TEXT NOT NULL,
	position  INTEGER NOT NULL,
	component TEXT NOT NULL,
	ordinal   INTEGER NOT NULL,
	token     TEXT NOT NULL,
	PRIMARY KEY (run_id, position, component, ordinal)
);
CREATE INDEX IF NOT EXISTS idx_candidates_token ON candidates(component, token);
`

// SQLiteStore persists reports in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Debug("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores r in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, r *Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated_at, source, total, succeeded, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.GeneratedAt.Format("2006-01-02T15:04:05.000Z07:00"), r.Source,
		r.Summary.Total, r.Summary.Succeeded, r.Summary.Failed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for pos, e := range r.Images {
		var comps any
		if e.Components != nil {
			data, mErr := json.Marshal(e.Components)
			if mErr != nil {
				err = fmt.Errorf("marshal components: %w", mErr)
				return err
			}
			comps = string(data)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO images (run_id, position, image, path, components, error) VALUES (?, ?, ?, ?, ?, ?)`,
			r.RunID, pos, e.Image, e.Path, comps, e.Error,
		); err != nil {
			return fmt.Errorf("insert image %s: %w", e.Image, err)
		}
		if e.Components == nil {
			continue
		}
		for component, tokens := range e.Components.Map() {
			for ord, tok := range tokens {
				if _, err = tx.ExecContext(ctx,
					`INSERT INTO candidates (run_id, position, component, ordinal, token) VALUES (?, ?, ?, ?, ?)`,
					r.RunID, pos, component, ord, tok,
				); err != nil {
					return fmt.Errorf("insert candidate: %w", err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("report stored", "run_id", r.RunID, "images", len(r.Images))
	return nil
}

// StoredImage is one image row read back from the store.
type StoredImage struct {
	Image      string
	Path       string
	Components *dates.Components
	Error      string
}

// Images returns the images of a run in their original order.
func (s *SQLiteStore) Images(ctx context.Context, runID string) ([]StoredImage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image, path, components, error FROM images WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []StoredImage
	for rows.Next() {
		var (
			img   StoredImage
			comps sql.NullString
		)
		if err := rows.Scan(&img.Image, &img.Path, &comps, &img.Error); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		if comps.Valid {
			var c dates.Components
			if err := json.Unmarshal([]byte(comps.String), &c); err != nil {
				return nil, fmt.Errorf("decode components: %w", err)
			}
			img.Components = &c
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// FindToken returns the images, across all runs, in which token was a
// candidate for component ("day", "date", "month" or "year").
func (s *SQLiteStore) FindToken(ctx context.Context, component, token string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT i.image
		FROM candidates c
		JOIN images i ON i.run_id = c.run_id AND i.position = c.position
		WHERE c.component = ? AND c.token = ?
		ORDER BY i.image`, component, token)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var images []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		images = append(images, name)
	}
	return images, rows.Err()
}
