package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RichardoC/padchat/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("conversation not found")

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS conversations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id INTEGER NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS messages_conversation ON messages(conversation_id, id);`

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases and the foreign_keys pragma
	// consistent across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

func (db *Database) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
        INSERT INTO messages (conversation_id, role, content, created_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	return db.db.QueryRowContext(ctx, query, msg.ConvID, msg.Role, msg.Content).Scan(&msg.ID, &msg.CreatedAt)
}

func (db *Database) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	query := `
        INSERT INTO conversations (title, created_at)
        VALUES (?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	conv := &models.Conversation{Title: title}
	if err := db.db.QueryRowContext(ctx, query, title).Scan(&conv.ID, &conv.CreatedAt); err != nil {
		return nil, err
	}
	return conv, nil
}

func (db *Database) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := db.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM conversations WHERE id = ?", id,
	).Scan(&conv.ID, &conv.Title, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListMessages returns a conversation's messages oldest first. A limit of
// zero or less returns all of them; otherwise only the most recent limit.
func (db *Database) ListMessages(ctx context.Context, conversationID int64, limit int) ([]models.Message, error) {
	query := `
        SELECT id, conversation_id, role, content, created_at FROM (
            SELECT id, conversation_id, role, content, created_at
            FROM messages
            WHERE conversation_id = ?
            ORDER BY id DESC
            LIMIT ?
        ) ORDER BY id ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return []models.Message{}, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.ConvID, &msg.Role, &msg.Content, &msg.CreatedAt)
		if err != nil {
			return []models.Message{}, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ListConversations returns all conversations, newest first.
func (db *Database) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	query := `
        SELECT id, title, created_at
        FROM conversations
        ORDER BY created_at DESC, id DESC`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return []models.Conversation{}, err
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var conv models.Conversation
		err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt)
		if err != nil {
			return []models.Conversation{}, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

func (db *Database) DeleteConversation(ctx context.Context, id int64) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (db *Database) UpdateConversationTitle(ctx context.Context, id int64, title string) error {
	_, err := db.db.ExecContext(ctx, "UPDATE conversations SET title = ? WHERE id = ?", title, id)
	return err
}
