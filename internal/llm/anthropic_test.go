package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEncodeMessages_ImageBeforeText(t *testing.T) {
	msgs := encodeMessages([]Message{{
		Role:    "user",
		Content: "Transcribe this",
		Images:  []ImageAttachment{{MediaType: "image/png", Data: "aGVsbG8="}},
	}})

	if len(msgs) != 1 || len(msgs[0].Content) != 2 {
		t.Fatalf("blocks: %+v", msgs)
	}
	if msgs[0].Content[0].Type != "image" || msgs[0].Content[1].Type != "text" {
		t.Fatalf("block order: %s, %s", msgs[0].Content[0].Type, msgs[0].Content[1].Type)
	}
	if msgs[0].Content[0].Source.MediaType != "image/png" {
		t.Fatalf("media type: %s", msgs[0].Content[0].Source.MediaType)
	}
}

func TestEncodeMessages_TextOnlyTurn(t *testing.T) {
	msgs := encodeMessages([]Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	for _, m := range msgs {
		if len(m.Content) != 1 || m.Content[0].Type != "text" {
			t.Fatalf("text turn encoded as %+v", m.Content)
		}
		if m.Content[0].Source != nil {
			t.Fatal("text block carries an image source")
		}
	}
}

func TestEncodeMessages_WireFormat(t *testing.T) {
	req := anthropicRequest{
		Model:     "claude-sonnet-4-5",
		MaxTokens: 1024,
		Messages: encodeMessages([]Message{{
			Role:   "user",
			Images: []ImageAttachment{{MediaType: "image/jpeg", Data: "QUJD"}},
		}}),
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"image"`, `"type":"base64"`, `"media_type":"image/jpeg"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("wire format missing %s: %s", want, data)
		}
	}
}

func TestResponse_WasTruncated(t *testing.T) {
	if (&Response{StopReason: "end_turn"}).WasTruncated() {
		t.Fatal("end_turn reported as truncated")
	}
	if !(&Response{StopReason: "max_tokens"}).WasTruncated() {
		t.Fatal("max_tokens not reported as truncated")
	}
}
