package service

import (
	"strings"
	"testing"
)

func TestParseAnalysisPayload_PlainJSON(t *testing.T) {
	payload, err := parseAnalysisPayload(`{"transcription": "the woods are lovely", "language": "en", "summary": "a nature poem", "tone": "wistful"}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if payload.Transcription != "the woods are lovely" {
		t.Errorf("transcription = %q", payload.Transcription)
	}
	if payload.Tone != "wistful" {
		t.Errorf("tone = %q", payload.Tone)
	}
}

func TestParseAnalysisPayload_MarkdownFences(t *testing.T) {
	content := "```json\n{\"transcription\": \"hola mundo\", \"language\": \"es\"}\n```"
	payload, err := parseAnalysisPayload(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if payload.Language != "es" {
		t.Errorf("language = %q", payload.Language)
	}
}

func TestParseAnalysisPayload_ProseAroundObject(t *testing.T) {
	content := "Here is the analysis you asked for:\n{\"transcription\": \"x\"}\nLet me know if you need more."
	if _, err := parseAnalysisPayload(content); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
}

func TestParseAnalysisPayload_MissingTranscription(t *testing.T) {
	if _, err := parseAnalysisPayload(`{"summary": "nothing legible"}`); err == nil {
		t.Fatal("expected error for payload without transcription")
	}
}

func TestParseAnalysisPayload_NoObject(t *testing.T) {
	if _, err := parseAnalysisPayload("I could not read the image."); err == nil {
		t.Fatal("expected error for response without JSON")
	}
	if _, err := parseAnalysisPayload(""); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"The quick brown fox", "en"},
		{"春眠不覚暁", "zh"},
		{"ひらがなとカタカナ", "ja"},
		{"안녕하세요", "ko"},
		{"Привет мир", "ru"},
		{"مرحبا بالعالم", "ar"},
		{"שלום עולם", "he"},
		{"Καλημέρα", "el"},
		{"नमस्ते दुनिया", "hi"},
		{"", "en"},
		{"1234 !?", "en"},
	}
	for _, c := range cases {
		if got := detectLanguage(c.text); got != c.want {
			t.Errorf("detectLanguage(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestExtForMediaType(t *testing.T) {
	cases := map[string]string{
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/webp": ".webp",
		"image/gif":  ".gif",
		"":           ".png",
	}
	for mediaType, want := range cases {
		if got := extForMediaType(mediaType); got != want {
			t.Errorf("extForMediaType(%q) = %q, want %q", mediaType, got, want)
		}
	}
}

func TestAnalysisSystemPromptAsksForBareJSON(t *testing.T) {
	if !strings.Contains(analysisSystemPrompt, "transcription") {
		t.Error("prompt does not name the transcription field")
	}
	if !strings.Contains(analysisSystemPrompt, "Do not wrap the JSON in markdown fences") {
		t.Error("prompt does not forbid markdown fences")
	}
}
