package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tasksync/internal/gateway"
)

// DocumentStore is the SQLite-backed remote collection gateway. Every collection shares
// the documents table; bodies are stored as JSON.
type DocumentStore struct {
	db     *DB
	hub    *hub
	logger *slog.Logger
	now    func() time.Time
}

// NewDocumentStore creates a document store over db.
func NewDocumentStore(db *DB, logger *slog.Logger) *DocumentStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DocumentStore{db: db, hub: newHub(), logger: logger, now: time.Now}
}

// Collection returns the named collection.
func (s *DocumentStore) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

// Close ends every live subscription. The database itself is left open.
func (s *DocumentStore) Close() {
	s.hub.close()
}

// Collection implements gateway.Collection for one named collection.
type Collection struct {
	store *DocumentStore
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Subscribe opens a live query. The caller on ctx must either be elevated or constrain
// the filter to its own documents. After unsubscribe returns, only a callback already
// in flight may still run; callers discard it by generation.
func (c *Collection) Subscribe(ctx context.Context, filter gateway.Filter, onSnapshot gateway.SnapshotFunc, onError gateway.ErrorFunc) (func(), error) {
	caller, err := authorizeQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	sub := &subscription{
		collection: c.name,
		query: func(ctx context.Context) ([]gateway.Document, error) {
			return c.query(ctx, filter)
		},
		seq:        func() uint64 { return c.store.hub.current(c.name) },
		onSnapshot: onSnapshot,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	if !c.store.hub.add(sub) {
		return nil, fmt.Errorf("subscribe %s: %w", c.name, gateway.ErrClosed)
	}
	go sub.run(ctx)

	c.store.logger.Debug("subscription opened", "collection", c.name, "caller", caller.ID, "filter", filter.Clauses)
	return func() {
		c.store.hub.remove(sub)
		sub.stop()
	}, nil
}

// Add stores a new document under a generated id.
func (c *Collection) Add(ctx context.Context, body map[string]any) (string, error) {
	caller, ok := gateway.CallerFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("add %s: %w", c.name, gateway.ErrPermissionDenied)
	}
	owner := ownerOf(body)
	if owner != caller.ID && !caller.Elevated {
		return "", fmt.Errorf("add %s for %q: %w", c.name, owner, gateway.ErrPermissionDenied)
	}
	data, err := encodeBody(body)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := c.store.now()
	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, owner_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.name, id, owner, data, now, now)
	if err != nil {
		return "", wrapErr("add document", err)
	}
	c.store.hub.bump(c.name)
	return id, nil
}

// Update merges patch into the stored body. A nil value stores null.
func (c *Collection) Update(ctx context.Context, id string, patch map[string]any) error {
	caller, ok := gateway.CallerFromContext(ctx)
	if !ok {
		return fmt.Errorf("update %s/%s: %w", c.name, id, gateway.ErrPermissionDenied)
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin update", err)
	}
	defer tx.Rollback()

	body, owner, err := getForWrite(ctx, tx, c.name, id, caller)
	if err != nil {
		return err
	}
	for k, v := range patch {
		body[k] = v
	}
	if newOwner := ownerOf(body); newOwner != owner && !caller.Elevated {
		return fmt.Errorf("reassign %s/%s: %w", c.name, id, gateway.ErrPermissionDenied)
	}
	data, err := encodeBody(body)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET body = ?, owner_id = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`, data, ownerOf(body), c.store.now(), c.name, id); err != nil {
		return wrapErr("update document", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit update", err)
	}
	c.store.hub.bump(c.name)
	return nil
}

// Delete removes a document.
func (c *Collection) Delete(ctx context.Context, id string) error {
	caller, ok := gateway.CallerFromContext(ctx)
	if !ok {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, gateway.ErrPermissionDenied)
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin delete", err)
	}
	defer tx.Rollback()

	if _, _, err := getForWrite(ctx, tx, c.name, id, caller); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, c.name, id); err != nil {
		return wrapErr("delete document", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit delete", err)
	}
	c.store.hub.bump(c.name)
	return nil
}

// GetOnce returns the document, or nil when it doesn't exist.
func (c *Collection) GetOnce(ctx context.Context, id string) (*gateway.Document, error) {
	caller, ok := gateway.CallerFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, gateway.ErrPermissionDenied)
	}
	var owner, data string
	err := c.store.db.QueryRowContext(ctx, `
		SELECT owner_id, body FROM documents WHERE collection = ? AND id = ?
	`, c.name, id).Scan(&owner, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get document", err)
	}
	if owner != caller.ID && !caller.Elevated {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, gateway.ErrPermissionDenied)
	}
	body, err := decodeBody(data)
	if err != nil {
		return nil, err
	}
	return &gateway.Document{ID: id, Body: body}, nil
}

// QueryOnce returns the matching documents in insertion order.
func (c *Collection) QueryOnce(ctx context.Context, filter gateway.Filter) ([]gateway.Document, error) {
	if _, err := authorizeQuery(ctx, filter); err != nil {
		return nil, err
	}
	return c.query(ctx, filter)
}

// SubscriberCount reports how many live subscriptions watch this collection.
func (c *Collection) SubscriberCount() int {
	return c.store.hub.count(c.name)
}

func (c *Collection) query(ctx context.Context, filter gateway.Filter) ([]gateway.Document, error) {
	query := `SELECT id, body FROM documents WHERE collection = ?`
	args := []any{c.name}
	if owner, ok := ownerClause(filter); ok {
		query += ` AND owner_id = ?`
		args = append(args, owner)
	}
	query += ` ORDER BY rowid`

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query documents", err)
	}
	defer rows.Close()

	docs := []gateway.Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, wrapErr("scan document", err)
		}
		body, err := decodeBody(data)
		if err != nil {
			return nil, err
		}
		if filter.Matches(body) {
			docs = append(docs, gateway.Document{ID: id, Body: body})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate documents", err)
	}
	return docs, nil
}

func getForWrite(ctx context.Context, tx *sql.Tx, collection, id string, caller gateway.Caller) (map[string]any, string, error) {
	var owner, data string
	err := tx.QueryRowContext(ctx, `
		SELECT owner_id, body FROM documents WHERE collection = ? AND id = ?
	`, collection, id).Scan(&owner, &data)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("%s/%s: %w", collection, id, gateway.ErrNotFound)
	}
	if err != nil {
		return nil, "", wrapErr("get document", err)
	}
	if owner != caller.ID && !caller.Elevated {
		return nil, "", fmt.Errorf("%s/%s: %w", collection, id, gateway.ErrPermissionDenied)
	}
	body, err := decodeBody(data)
	if err != nil {
		return nil, "", err
	}
	return body, owner, nil
}

func authorizeQuery(ctx context.Context, filter gateway.Filter) (gateway.Caller, error) {
	caller, ok := gateway.CallerFromContext(ctx)
	if !ok {
		return caller, fmt.Errorf("query: %w", gateway.ErrPermissionDenied)
	}
	if caller.Elevated {
		return caller, nil
	}
	if owner, ok := ownerClause(filter); !ok || owner != caller.ID {
		return caller, fmt.Errorf("query without own-scope filter: %w", gateway.ErrPermissionDenied)
	}
	return caller, nil
}

func ownerClause(filter gateway.Filter) (string, bool) {
	for _, clause := range filter.Clauses {
		if clause.Field == gateway.FieldOwnerID {
			owner, ok := clause.Value.(string)
			return owner, ok
		}
	}
	return "", false
}

func ownerOf(body map[string]any) string {
	owner, _ := body[gateway.FieldOwnerID].(string)
	return owner
}

func encodeBody(body map[string]any) (string, error) {
	if _, ok := body["id"]; ok {
		return "", fmt.Errorf("body must not contain id: %w", gateway.ErrInvalidArgument)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode body: %w: %v", gateway.ErrInvalidArgument, err)
	}
	return string(data), nil
}

func decodeBody(data string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}
