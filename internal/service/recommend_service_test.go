package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"scentwise-server/internal/domain"
)

func TestBuildPrompt_Chat(t *testing.T) {
	prompt, err := BuildPrompt(&domain.RecommendRequest{
		Mode: domain.ModeChat,
		Messages: []domain.ChatMessage{
			{Role: "user", Content: "I like vanilla"},
			{Role: "assistant", Content: "Try Tobacco Vanille"},
			{Role: "user", Content: "Something cheaper?"},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if prompt.HasImage() {
		t.Error("Chat prompt must not carry an image")
	}
	if !strings.HasPrefix(prompt.Text, chatSystemPrompt) {
		t.Error("Expected system prompt first")
	}
	if !strings.Contains(prompt.Text, "Conversation so far:\nUser: I like vanilla\nAssistant: Try Tobacco Vanille") {
		t.Errorf("Expected transcript, got %q", prompt.Text)
	}
	if !strings.HasSuffix(prompt.Text, "\n\nUser: Something cheaper?") {
		t.Errorf("Expected latest message last, got %q", prompt.Text)
	}
}

func TestBuildPrompt_ChatSingleMessageHasNoHistory(t *testing.T) {
	prompt, err := BuildPrompt(&domain.RecommendRequest{Messages: []domain.ChatMessage{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(prompt.Text, "Conversation so far") {
		t.Error("Expected no history section")
	}
}

func TestBuildPrompt_ChatTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("a", maxMessageLength-1) + "é and more"
	prompt, err := BuildPrompt(&domain.RecommendRequest{
		Mode:     domain.ModeChat,
		Messages: []domain.ChatMessage{{Role: "user", Content: long}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(prompt.Text) {
		t.Fatalf("prompt text is not valid UTF-8")
	}
	if !strings.HasSuffix(prompt.Text, strings.Repeat("a", maxMessageLength-1)) {
		t.Fatalf("expected message cut before the multi-byte rune")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"a😀b", 3, "a"},
		{"a😀b", 5, "a😀"},
		{"é", 1, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestBuildPrompt_Photo(t *testing.T) {
	img := []byte{0xff, 0xd8, 0xff, 0xe0}
	enc := base64.StdEncoding.EncodeToString(img)

	prompt, err := BuildPrompt(&domain.RecommendRequest{Mode: domain.ModePhoto, ImageBase64: "data:image/png;base64," + enc, ImageMime: "IMAGE/PNG"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(prompt.Image) != string(img) || prompt.ImageMIME != "image/png" {
		t.Errorf("Unexpected image: %v %q", prompt.Image, prompt.ImageMIME)
	}

	prompt, err = BuildPrompt(&domain.RecommendRequest{Mode: domain.ModePhoto, ImageBase64: enc})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if prompt.ImageMIME != defaultImageMIME {
		t.Errorf("Expected default mime, got %q", prompt.ImageMIME)
	}
}

func TestBuildPrompt_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  *domain.RecommendRequest
	}{
		{"nil", nil},
		{"unknown mode", &domain.RecommendRequest{Mode: "video"}},
		{"no messages", &domain.RecommendRequest{Mode: domain.ModeChat}},
		{"blank last message", &domain.RecommendRequest{Messages: []domain.ChatMessage{{Role: "user", Content: "  "}}}},
		{"no image", &domain.RecommendRequest{Mode: domain.ModePhoto}},
		{"bad base64", &domain.RecommendRequest{Mode: domain.ModePhoto, ImageBase64: "%%%"}},
		{"bad mime", &domain.RecommendRequest{Mode: domain.ModePhoto, ImageBase64: "AAAA", ImageMime: "text/html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPrompt(tt.req)
			if err == nil || statusOf(t, err) != http.StatusBadRequest {
				t.Errorf("Expected 400, got %v", err)
			}
		})
	}
}

func TestRecommendService_Recommend(t *testing.T) {
	gen := &MockTextGenerator{result: "**Santal 33** by Le Labo"}
	service := NewRecommendService(gen, NewMockLogger())

	out, err := service.Recommend(context.Background(), &domain.RecommendRequest{Messages: []domain.ChatMessage{{Role: "user", Content: "woody"}}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != gen.result || gen.calls != 1 {
		t.Errorf("Unexpected result %q after %d calls", out, gen.calls)
	}
}

func TestRecommendService_GeneratorFailureIsGeneric(t *testing.T) {
	for _, genErr := range []error{errors.New("quota exceeded for project secret-project"), domain.ErrEmptyGeneration} {
		logger := NewMockLogger()
		service := NewRecommendService(&MockTextGenerator{err: genErr}, logger)

		_, err := service.Recommend(context.Background(), &domain.RecommendRequest{Messages: []domain.ChatMessage{{Role: "user", Content: "x"}}})
		if err == nil || statusOf(t, err) != http.StatusBadGateway {
			t.Fatalf("Expected 502, got %v", err)
		}
		if strings.Contains(err.Error(), "secret-project") {
			t.Error("Upstream detail leaked into client error")
		}
		if len(logger.messages) == 0 {
			t.Error("Expected failure to be logged")
		}
	}
}

func TestRecommendService_InvalidRequestSkipsGenerator(t *testing.T) {
	gen := &MockTextGenerator{}
	service := NewRecommendService(gen, NewMockLogger())
	if _, err := service.Recommend(context.Background(), &domain.RecommendRequest{Mode: "nope"}); err == nil {
		t.Fatal("Expected error")
	}
	if gen.calls != 0 {
		t.Error("Generator must not be called")
	}

	unconfigured := NewRecommendService(nil, NewMockLogger())
	_, err := unconfigured.Recommend(context.Background(), &domain.RecommendRequest{Messages: []domain.ChatMessage{{Role: "user", Content: "x"}}})
	if err == nil || statusOf(t, err) != http.StatusInternalServerError {
		t.Errorf("Expected 500 without generator, got %v", err)
	}
}
