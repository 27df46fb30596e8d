package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/google/uuid"

	"inkwell/internal/docpipe"
	"inkwell/internal/domain"
	"inkwell/internal/llm"
	"inkwell/internal/storage"
)

const (
	chatMaxTokens = 2048
	chatRetries   = 2
)

const chatSystemPrompt = `You are a literature and language teacher in a follow-up conversation about a piece of handwritten text a student submitted. The original image is attached to the first message. Be concrete, cite the text, and keep answers short enough to read in one sitting.

Transcription of the handwriting:
%s

Your earlier summary:
%s`

// ChatService runs the follow-up conversation threaded on an analysis.
type ChatService struct {
	analyses *storage.AnalysisStore
	chats    *storage.ChatStore
	client   llm.Client
	emitter  EventEmitter
}

func NewChatService(analyses *storage.AnalysisStore, chats *storage.ChatStore, client llm.Client, emitter EventEmitter) *ChatService {
	return &ChatService{analyses: analyses, chats: chats, client: client, emitter: emitter}
}

// ListMessages returns the stored conversation for an analysis.
func (s *ChatService) ListMessages(analysisID string) ([]domain.ChatMessage, error) {
	return s.chats.ListMessages(analysisID)
}

// SendMessage appends a user turn, gets the assistant reply, persists both,
// and returns the assistant message.
func (s *ChatService) SendMessage(ctx context.Context, analysisID, content string) (*domain.ChatMessage, error) {
	analysis, err := s.analyses.GetAnalysis(analysisID)
	if err != nil {
		return nil, err
	}
	history, err := s.chats.ListMessages(analysisID)
	if err != nil {
		return nil, err
	}

	messages := buildChatMessages(analysis, history, content)
	system := fmt.Sprintf(chatSystemPrompt, analysis.Transcription, analysis.Summary)

	resp, err := s.client.CompleteWithRetry(ctx, system, messages, chatRetries, &llm.RequestOptions{MaxTokens: chatMaxTokens})
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	userMsg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		AnalysisID: analysisID,
		Role:       "user",
		Content:    content,
	}
	if err := s.chats.CreateMessage(userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	assistantMsg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		AnalysisID: analysisID,
		Role:       "assistant",
		Content:    resp.Content,
	}
	if err := s.chats.CreateMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	s.emitter.Emit(ctx, "chat:message", assistantMsg)
	return assistantMsg, nil
}

// buildChatMessages converts the stored conversation plus the new user turn
// into LLM messages. The source image rides on the first user turn when it
// can still be read from disk; otherwise the transcription in the system
// prompt carries the context alone.
func buildChatMessages(analysis *domain.Analysis, history []domain.ChatMessage, newContent string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: newContent})

	for i := range messages {
		if messages[i].Role != "user" {
			continue
		}
		if data, err := os.ReadFile(analysis.ImagePath); err == nil {
			messages[i].Images = []llm.ImageAttachment{{
				MediaType: docpipe.MediaTypeForPath(analysis.ImagePath),
				Data:      base64.StdEncoding.EncodeToString(data),
			}}
		}
		break
	}
	return messages
}
