package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
	"github.com/tmc/langchaingo/llms"
)

// TranscriptStore is the executor's working memory for a run: an append-only
// sequence of dialogue turns. The backing database is in-memory only; nothing
// survives the process.
type TranscriptStore struct {
	DB *sql.DB
}

func NewTranscriptStore() (*TranscriptStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// The in-memory database vanishes if every connection closes.
	db.SetMaxOpenConns(1)

	query := `CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		role TEXT,
		content TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, err
	}

	return &TranscriptStore{DB: db}, nil
}

func (t *TranscriptStore) Close() error {
	return t.DB.Close()
}

func (t *TranscriptStore) AddTurn(runID string, role string, content string) error {
	query := `INSERT INTO turns (run_id, role, content) VALUES (?, ?, ?)`
	_, err := t.DB.Exec(query, runID, role, content)
	return err
}

// Turns returns the run's dialogue turns in insertion order, converted to
// langchaingo message content for the executor's model calls.
func (t *TranscriptStore) Turns(runID string) ([]llms.MessageContent, error) {
	query := `SELECT role, content FROM turns WHERE run_id = ? ORDER BY id ASC`
	rows, err := t.DB.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []llms.MessageContent
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}

		var msgRole llms.ChatMessageType
		switch role {
		case "human":
			msgRole = llms.ChatMessageTypeHuman
		case "ai":
			msgRole = llms.ChatMessageTypeAI
		case "system":
			msgRole = llms.ChatMessageTypeSystem
		default:
			msgRole = llms.ChatMessageTypeHuman
		}

		turns = append(turns, llms.MessageContent{
			Role: msgRole,
			Parts: []llms.ContentPart{
				llms.TextPart(content),
			},
		})
	}
	return turns, rows.Err()
}

// Len reports how many turns a run has recorded.
func (t *TranscriptStore) Len(runID string) (int, error) {
	var n int
	err := t.DB.QueryRow(`SELECT COUNT(*) FROM turns WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
