package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/llm"
	"inkwell/internal/storage"
)

const (
	analysisMaxTokens = 4096
	analysisRetries   = 2
)

const analysisSystemPrompt = `You are a literature and language teacher analyzing a photograph or drawing of handwritten text.

First transcribe the handwriting exactly as written, preserving line breaks. Then analyze the transcribed text.

Respond with a single JSON object and nothing else:
{
  "transcription": "the handwritten text, exactly as written",
  "language": "ISO 639-1 code of the text's language",
  "summary": "2-3 sentence summary of what the text says and its register",
  "tone": "one short phrase describing the tone",
  "literaryDevices": [{"name": "...", "excerpt": "...", "explanation": "..."}],
  "vocabulary": [{"word": "...", "definition": "..."}],
  "studyQuestions": ["...", "..."]
}

If the handwriting is illegible, set transcription to your best partial reading and say so in the summary. Do not wrap the JSON in markdown fences.`

// ErrStale marks an analysis result that was superseded by a newer
// submission before it completed. Callers drop it silently.
var ErrStale = errors.New("analysis superseded by a newer submission")

// AnalysisService runs handwriting images through the multimodal model and
// persists the structured result.
type AnalysisService struct {
	store   *storage.AnalysisStore
	client  llm.Client
	dataDir string
	emitter EventEmitter

	// Identity of the most recent submission. Responses carrying an older
	// sequence number are stale and discarded.
	submitSeq atomic.Uint64
}

func NewAnalysisService(store *storage.AnalysisStore, client llm.Client, dataDir string, emitter EventEmitter) *AnalysisService {
	return &AnalysisService{store: store, client: client, dataDir: dataDir, emitter: emitter}
}

// Analyze submits an image to the model and returns the stored analysis.
// The image is kept on disk next to the database; only its path goes into
// the analysis row.
func (s *AnalysisService) Analyze(ctx context.Context, image []byte, mediaType string, source domain.AnalysisSource) (*domain.Analysis, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("no image to analyze")
	}
	if mediaType == "" {
		mediaType = "image/png"
	}
	seq := s.submitSeq.Add(1)

	messages := []llm.Message{{
		Role:    "user",
		Content: "Transcribe and analyze this handwriting.",
		Images: []llm.ImageAttachment{{
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(image),
		}},
	}}

	resp, err := s.client.CompleteWithRetry(ctx, analysisSystemPrompt, messages, analysisRetries, &llm.RequestOptions{MaxTokens: analysisMaxTokens})
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	if seq != s.submitSeq.Load() {
		return nil, ErrStale
	}

	payload, err := parseAnalysisPayload(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}

	language := payload.Language
	if language == "" {
		language = detectLanguage(payload.Transcription)
	}

	id := uuid.New().String()
	imagePath, err := s.saveImage(id, mediaType, image)
	if err != nil {
		return nil, err
	}

	devices, _ := json.Marshal(payload.Devices)
	vocabulary, _ := json.Marshal(payload.Vocabulary)
	questions, _ := json.Marshal(payload.StudyQuestions)

	analysis := &domain.Analysis{
		ID:             id,
		ImagePath:      imagePath,
		Source:         source,
		Transcription:  payload.Transcription,
		Language:       language,
		Summary:        payload.Summary,
		Tone:           payload.Tone,
		DevicesJSON:    string(devices),
		VocabularyJSON: string(vocabulary),
		QuestionsJSON:  string(questions),
		Model:          resp.Model,
	}
	if err := s.store.CreateAnalysis(analysis); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	s.emitter.Emit(ctx, "analysis:completed", analysis)
	return analysis, nil
}

func (s *AnalysisService) saveImage(id, mediaType string, data []byte) (string, error) {
	dir := filepath.Join(s.dataDir, "sources")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create sources dir: %w", err)
	}
	path := filepath.Join(dir, id+extForMediaType(mediaType))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write source image: %w", err)
	}
	return path, nil
}

func extForMediaType(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// analysisPayload is the JSON shape the model is prompted to return.
type analysisPayload struct {
	Transcription  string            `json:"transcription"`
	Language       string            `json:"language"`
	Summary        string            `json:"summary"`
	Tone           string            `json:"tone"`
	Devices        []literaryDevice  `json:"literaryDevices"`
	Vocabulary     []vocabularyEntry `json:"vocabulary"`
	StudyQuestions []string          `json:"studyQuestions"`
}

type literaryDevice struct {
	Name        string `json:"name"`
	Excerpt     string `json:"excerpt"`
	Explanation string `json:"explanation"`
}

type vocabularyEntry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// parseAnalysisPayload extracts the JSON object from the model response,
// tolerating markdown fences and prose around the object.
func parseAnalysisPayload(content string) (*analysisPayload, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Transcription == "" {
		return nil, fmt.Errorf("payload missing transcription")
	}
	return &payload, nil
}

// detectLanguage is a script-counting fallback for when the model omits the
// language field. It only distinguishes scripts, so Latin-script languages
// all come back as "en".
func detectLanguage(text string) string {
	counts := map[string]int{}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			counts["zh"]++
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			counts["ja"]++
		case unicode.Is(unicode.Hangul, r):
			counts["ko"]++
		case unicode.Is(unicode.Cyrillic, r):
			counts["ru"]++
		case unicode.Is(unicode.Arabic, r):
			counts["ar"]++
		case unicode.Is(unicode.Hebrew, r):
			counts["he"]++
		case unicode.Is(unicode.Greek, r):
			counts["el"]++
		case unicode.Is(unicode.Devanagari, r):
			counts["hi"]++
		case unicode.IsLetter(r):
			counts["en"]++
		}
	}

	best, bestCount := "en", 0
	for lang, n := range counts {
		if n > bestCount {
			best, bestCount = lang, n
		}
	}
	return best
}
