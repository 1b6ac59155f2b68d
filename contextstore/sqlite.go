package contextstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/regmesh/core"
)

// schema contains the full context store schema.
const schema = `
CREATE TABLE IF NOT EXISTS conversation_contexts (
    tenant_id TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    active_node_ids TEXT NOT NULL DEFAULT '[]',
    updated DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (tenant_id, conversation_id)
);`

// SQLiteStore is a durable ContextStore backed by a local SQLite file.
// MergeActiveNodeIDs performs the load-union-save cycle inside a single
// transaction, so concurrent turns in one conversation cannot drop each
// other's node ids.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite context store at the given path.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory SQLite context store (useful for testing).
func OpenMemory() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// A single connection keeps every statement on the same in-memory database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Load implements core.ContextStore.
func (s *SQLiteStore) Load(ctx context.Context, key core.ConversationKey) (*core.ConversationContext, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT active_node_ids FROM conversation_contexts WHERE tenant_id = ? AND conversation_id = ?`,
		key.TenantID, key.ConversationID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation context: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding active node ids: %w", err)
	}
	return &core.ConversationContext{ActiveNodeIDs: ids}, nil
}

// Save implements core.ContextStore with an upsert.
func (s *SQLiteStore) Save(ctx context.Context, key core.ConversationKey, cc *core.ConversationContext) error {
	raw, err := json.Marshal(cc.ActiveNodeIDs)
	if err != nil {
		return fmt.Errorf("encoding active node ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO conversation_contexts (tenant_id, conversation_id, active_node_ids, updated)
VALUES (?, ?, ?, datetime('now'))
ON CONFLICT(tenant_id, conversation_id) DO UPDATE SET
    active_node_ids = excluded.active_node_ids,
    updated = excluded.updated`,
		key.TenantID, key.ConversationID, string(raw))
	if err != nil {
		return fmt.Errorf("saving conversation context: %w", err)
	}
	return nil
}

// MergeActiveNodeIDs implements core.ActiveNodeMerger: read, union and
// write back inside one transaction.
func (s *SQLiteStore) MergeActiveNodeIDs(ctx context.Context, key core.ConversationKey, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning merge transaction: %w", err)
	}
	defer tx.Rollback()

	var existing []string
	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT active_node_ids FROM conversation_contexts WHERE tenant_id = ? AND conversation_id = ?`,
		key.TenantID, key.ConversationID,
	).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First turn for this conversation.
	case err != nil:
		return fmt.Errorf("loading conversation context: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return fmt.Errorf("decoding active node ids: %w", err)
		}
	}

	merged, err := json.Marshal(union(existing, ids))
	if err != nil {
		return fmt.Errorf("encoding active node ids: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO conversation_contexts (tenant_id, conversation_id, active_node_ids, updated)
VALUES (?, ?, ?, datetime('now'))
ON CONFLICT(tenant_id, conversation_id) DO UPDATE SET
    active_node_ids = excluded.active_node_ids,
    updated = excluded.updated`,
		key.TenantID, key.ConversationID, string(merged)); err != nil {
		return fmt.Errorf("merging conversation context: %w", err)
	}

	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
