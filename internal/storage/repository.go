// Package storage persists fetched collections in SQLite so a restarted
// process serves the last known snapshot before its first fetch completes.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kindra/internal/core"
	"kindra/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveCollection upserts one collection's records as a JSON payload.
// Implements refresh.Persister.
func (r *SQLiteRepository) SaveCollection(ctx context.Context, collection string, records any, fetchedAt time.Time) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", collection, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (collection, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (collection) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		collection, string(payload), fetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", collection, err)
	}
	return nil
}

// LoadInto replays persisted collections into the store and returns how
// many were restored. Rows that no longer decode are skipped: stale
// persisted data must never prevent startup.
func (r *SQLiteRepository) LoadInto(ctx context.Context, st *store.Store) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT collection, payload, fetched_at FROM snapshots`)
	if err != nil {
		return 0, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	restored := 0
	for rows.Next() {
		var collection, payload, fetchedAtRaw string
		if err := rows.Scan(&collection, &payload, &fetchedAtRaw); err != nil {
			return restored, fmt.Errorf("scan snapshot row: %w", err)
		}

		fetchedAt, err := time.Parse(time.RFC3339Nano, fetchedAtRaw)
		if err != nil {
			fetchedAt = time.Now().UTC()
		}

		records, err := decodeCollection(collection, []byte(payload))
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable persisted collection",
				"collection", collection,
				"error", err)
			continue
		}
		if err := st.Replace(collection, records, fetchedAt); err != nil {
			slog.WarnContext(ctx, "Skipping persisted collection",
				"collection", collection,
				"error", err)
			continue
		}
		restored++
	}
	if err := rows.Err(); err != nil {
		return restored, fmt.Errorf("iterate snapshots: %w", err)
	}

	slog.InfoContext(ctx, "Restored persisted snapshot", "collections", restored)
	return restored, nil
}

func decodeCollection(collection string, payload []byte) (any, error) {
	switch collection {
	case core.CollectionDonations:
		return decodeList[core.Donation](payload)
	case core.CollectionCampaigns:
		return decodeList[core.Campaign](payload)
	case core.CollectionVolunteers:
		return decodeList[core.Volunteer](payload)
	case core.CollectionTasks:
		return decodeList[core.Task](payload)
	case core.CollectionEvents:
		return decodeList[core.Event](payload)
	case core.CollectionCases:
		return decodeList[core.Case](payload)
	case core.CollectionChildren:
		return decodeList[core.Child](payload)
	case core.CollectionFamilies:
		return decodeList[core.Family](payload)
	case core.CollectionShelters:
		return decodeList[core.Shelter](payload)
	case core.CollectionIncidents:
		return decodeList[core.Incident](payload)
	case core.CollectionSummary:
		var summary core.Summary
		if err := json.Unmarshal(payload, &summary); err != nil {
			return nil, err
		}
		return summary, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollection, collection)
	}
}

func decodeList[T any](payload []byte) ([]T, error) {
	var list []T
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, err
	}
	return list, nil
}
