package storage

import (
	"time"

	"inkwell/internal/domain"
)

// ChatStore persists follow-up conversation turns.
type ChatStore struct {
	db *DB
}

func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) CreateMessage(m *domain.ChatMessage) error {
	m.CreatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`INSERT INTO chat_messages (id, analysis_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.AnalysisID, m.Role, m.Content, m.CreatedAt,
	)
	return err
}

func (s *ChatStore) ListMessages(analysisID string) ([]domain.ChatMessage, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, analysis_id, role, content, created_at
		 FROM chat_messages WHERE analysis_id = ? ORDER BY created_at ASC`, analysisID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.AnalysisID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
