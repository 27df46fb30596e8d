package domain

import "time"

// AnalysisSource identifies where the analyzed image came from.
type AnalysisSource string

const (
	SourceCanvas AnalysisSource = "canvas"
	SourceUpload AnalysisSource = "upload"
	SourceCamera AnalysisSource = "camera"
	SourcePDF    AnalysisSource = "pdf"
)

// Analysis is one completed handwriting analysis: the transcription of the
// submitted image plus the structured literary/educational breakdown the
// model produced. List fields are stored as JSON strings, same as other
// structured columns in the database.
type Analysis struct {
	ID             string         `json:"id"`
	ImagePath      string         `json:"imagePath"`
	Source         AnalysisSource `json:"source"`
	Transcription  string         `json:"transcription"`
	Language       string         `json:"language"`
	Summary        string         `json:"summary"`
	Tone           string         `json:"tone"`
	DevicesJSON    string         `json:"devicesJson"`
	VocabularyJSON string         `json:"vocabularyJson"`
	QuestionsJSON  string         `json:"questionsJson"`
	Model          string         `json:"model"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// ChatMessage is one turn of the follow-up conversation threaded on an
// analysis.
type ChatMessage struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysisId"`
	Role       string    `json:"role"` // "user" or "assistant"
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}
