package storage

import (
	"fmt"
	"time"

	"inkwell/internal/domain"
)

// AnalysisStore persists completed analyses in SQLite.
type AnalysisStore struct {
	db *DB
}

func NewAnalysisStore(db *DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

func (s *AnalysisStore) CreateAnalysis(a *domain.Analysis) error {
	a.CreatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`INSERT INTO analyses (id, image_path, source, transcription, language, summary, tone,
			devices_json, vocabulary_json, questions_json, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ImagePath, a.Source, a.Transcription, a.Language, a.Summary, a.Tone,
		a.DevicesJSON, a.VocabularyJSON, a.QuestionsJSON, a.Model, a.CreatedAt,
	)
	return err
}

func (s *AnalysisStore) GetAnalysis(id string) (*domain.Analysis, error) {
	a := &domain.Analysis{}
	err := s.db.conn.QueryRow(
		`SELECT id, image_path, source, transcription, language, summary, tone,
			devices_json, vocabulary_json, questions_json, model, created_at
		 FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.ImagePath, &a.Source, &a.Transcription, &a.Language, &a.Summary, &a.Tone,
		&a.DevicesJSON, &a.VocabularyJSON, &a.QuestionsJSON, &a.Model, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return a, nil
}

func (s *AnalysisStore) ListAnalyses() ([]domain.Analysis, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, image_path, source, transcription, language, summary, tone,
			devices_json, vocabulary_json, questions_json, model, created_at
		 FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		if err := rows.Scan(&a.ID, &a.ImagePath, &a.Source, &a.Transcription, &a.Language,
			&a.Summary, &a.Tone, &a.DevicesJSON, &a.VocabularyJSON, &a.QuestionsJSON,
			&a.Model, &a.CreatedAt); err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func (s *AnalysisStore) DeleteAnalysis(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM chat_messages WHERE analysis_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	return err
}
