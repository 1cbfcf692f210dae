// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bot360/bot360-tui/internal/model"
)

// SavedConversation is one history row.
type SavedConversation struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// History is the SQLite-backed conversation archive. Safe for concurrent
// use; SQLite serializes writers internally.
type History struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database. An empty path
// resolves to ~/.bot360/history.db.
func Open(path string) (*History, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".bot360", "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One writer at a time keeps the pure-Go driver happy under the
	// TUI's save-from-goroutine pattern.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init metadata: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// Save archives a conversation with its turns and attached graphs under
// the given title, returning the new history id.
func (h *History) Save(ctx context.Context, title string, conv *model.Conversation, graphs *model.GraphStore) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (title, created_at, updated_at) VALUES (?, ?, ?)`,
		title, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert conversation: %w", err)
	}
	convID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for pos, msg := range conv.Messages() {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, turn_id, role, content, position) VALUES (?, ?, ?, ?, ?)`,
			convID, msg.ID, string(msg.Role), msg.Text(), pos)
		if err != nil {
			return 0, fmt.Errorf("failed to insert message: %w", err)
		}
		if graphs == nil || msg.Role != model.RoleAssistant {
			continue
		}

		msgRow, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for gpos, g := range graphs.Get(msg.ID) {
			payload, err := encodeGraph(g)
			if err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO graphs (message_id, kind, payload, position) VALUES (?, ?, ?, ?)`,
				msgRow, string(g.Kind), payload, gpos); err != nil {
				return 0, fmt.Errorf("failed to insert graph: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit save: %w", err)
	}
	return convID, nil
}

// List returns saved conversations, most recently updated first.
func (h *History) List(ctx context.Context) ([]SavedConversation, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var out []SavedConversation
	for rows.Next() {
		var c SavedConversation
		var created, updated int64
		if err := rows.Scan(&c.ID, &c.Title, &created, &updated); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(created, 0)
		c.UpdatedAt = time.Unix(updated, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SavedMessage is one archived turn with its graphs.
type SavedMessage struct {
	TurnID  int
	Role    model.Role
	Content string
	Graphs  []model.Graph
}

// Load returns the turns of a saved conversation in order.
func (h *History) Load(ctx context.Context, convID int64) ([]SavedMessage, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, turn_id, role, content FROM messages WHERE conversation_id = ? ORDER BY position`,
		convID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	defer rows.Close()

	var msgs []SavedMessage
	var rowIDs []int64
	for rows.Next() {
		var m SavedMessage
		var rowID int64
		var role string
		if err := rows.Scan(&rowID, &m.TurnID, &role, &m.Content); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		msgs = append(msgs, m)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, rowID := range rowIDs {
		graphs, err := h.loadGraphs(ctx, rowID)
		if err != nil {
			return nil, err
		}
		msgs[i].Graphs = graphs
	}
	return msgs, nil
}

// Delete removes a saved conversation and its rows.
func (h *History) Delete(ctx context.Context, convID int64) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM graphs WHERE message_id IN (SELECT id FROM messages WHERE conversation_id = ?)`, convID); err != nil {
		return fmt.Errorf("failed to delete graphs: %w", err)
	}
	if _, err := h.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, convID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := h.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, convID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

func (h *History) loadGraphs(ctx context.Context, messageRow int64) ([]model.Graph, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT kind, payload FROM graphs WHERE message_id = ? ORDER BY position`, messageRow)
	if err != nil {
		return nil, fmt.Errorf("failed to load graphs: %w", err)
	}
	defer rows.Close()

	var out []model.Graph
	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, err
		}
		g, err := decodeGraph(model.GraphKind(kind), payload)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func encodeGraph(g model.Graph) (string, error) {
	var payload any
	if g.Kind == model.GraphDoughnut {
		payload = g.Slices
	} else {
		payload = g.Series
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}
	return string(data), nil
}

func decodeGraph(kind model.GraphKind, payload string) (model.Graph, error) {
	g := model.Graph{Kind: kind}
	if kind == model.GraphDoughnut {
		var slices model.SliceData
		if err := json.Unmarshal([]byte(payload), &slices); err != nil {
			return model.Graph{}, fmt.Errorf("failed to decode graph: %w", err)
		}
		g.Slices = &slices
		return g, nil
	}
	var series model.SeriesData
	if err := json.Unmarshal([]byte(payload), &series); err != nil {
		return model.Graph{}, fmt.Errorf("failed to decode graph: %w", err)
	}
	g.Series = &series
	return g, nil
}
