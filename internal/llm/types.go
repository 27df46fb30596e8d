package llm

import (
	"context"
	"time"
)

// ImageAttachment is a base64-encoded image sent as part of a user message.
type ImageAttachment struct {
	MediaType string // "image/png", "image/jpeg", "image/webp", "image/gif"
	Data      string // base64 payload without a data URL prefix
}

// Message is one conversation turn. Images are only meaningful on user
// turns; the API rejects them elsewhere.
type Message struct {
	Role    string
	Content string
	Images  []ImageAttachment
}

// RequestOptions configures a completion request.
type RequestOptions struct {
	MaxTokens int
}

// Response from an LLM completion.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Model        string
	StopReason   string // "end_turn", "max_tokens", "stop_sequence"
}

// WasTruncated returns true if the response hit the token limit.
func (r *Response) WasTruncated() bool {
	return r.StopReason == "max_tokens"
}

// Client is the interface for multimodal LLM providers.
type Client interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error)
	CompleteWithRetry(ctx context.Context, systemPrompt string, messages []Message, maxRetries int, opts *RequestOptions) (*Response, error)
}
