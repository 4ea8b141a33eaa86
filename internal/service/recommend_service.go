package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
	apperrors "scentwise-server/pkg/errors"
)

const (
	maxChatMessages   = 50
	maxMessageLength  = 4000
	defaultImageMIME  = "image/jpeg"
	maxImageBytes     = 4 << 20
	msgAIUnavailable  = "AI service temporarily unavailable. Please try again."
	chatSystemPrompt  = "You are ScentWise AI, a world-class fragrance advisor with encyclopedic knowledge of perfumery including designer, niche, and artisanal fragrances. Provide specific, confident recommendations with fragrance names, brands, key notes, price ranges, and reasons. Format with **bold** for fragrance names. Be conversational and knowledgeable."
	photoSystemPrompt = "You are ScentWise, an expert fragrance consultant who matches scents to personal style. Analyze the uploaded photo focusing on clothing style, color palette, accessories and overall aesthetic. Recommend exactly 5 fragrances that match. For each include: **Fragrance Name** by Brand, key notes (top/heart/base), price range ($, $$, $$$), and why it matches. End with 2 budget alternatives."
)

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

type recommendService struct {
	generator domain.TextGenerator
	logger    domain.Logger
}

func NewRecommendService(generator domain.TextGenerator, logger domain.Logger) *recommendService {
	return &recommendService{generator: generator, logger: logger}
}

// Recommend builds the prompt for req and asks the generator. Generator failures
// are reported with a generic message; the detail is only logged.
func (s *recommendService) Recommend(ctx context.Context, req *domain.RecommendRequest) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}
	if s.generator == nil {
		return "", apperrors.NewNotConfiguredError("AI provider")
	}

	result, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyGeneration) {
			s.logger.Warn("AI provider returned no text", "mode", req.Mode)
		} else {
			s.logger.Error("AI provider call failed", err, "mode", req.Mode)
		}
		return "", apperrors.NewUpstreamError(msgAIUnavailable, err)
	}
	return result, nil
}

// BuildPrompt validates req and renders the mode's prompt. Chat mode flattens the
// history into a transcript ending with the latest user message.
func BuildPrompt(req *domain.RecommendRequest) (*domain.Prompt, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("Invalid request body")
	}

	switch req.Mode {
	case domain.ModePhoto:
		return buildPhotoPrompt(req)
	case domain.ModeChat, "":
		return buildChatPrompt(req)
	default:
		return nil, apperrors.NewValidationError("Invalid mode")
	}
}

func buildChatPrompt(req *domain.RecommendRequest) (*domain.Prompt, error) {
	msgs := req.Messages
	if len(msgs) == 0 {
		return nil, apperrors.NewValidationError("Missing messages")
	}
	if len(msgs) > maxChatMessages {
		msgs = msgs[len(msgs)-maxChatMessages:]
	}

	last := strings.TrimSpace(msgs[len(msgs)-1].Content)
	if last == "" {
		return nil, apperrors.NewValidationError("Missing message content")
	}

	var sb strings.Builder
	sb.WriteString(chatSystemPrompt)
	if len(msgs) > 1 {
		sb.WriteString("\n\nConversation so far:\n")
		for i, m := range msgs[:len(msgs)-1] {
			if i > 0 {
				sb.WriteString("\n")
			}
			speaker := "Assistant"
			if m.Role == "user" {
				speaker = "User"
			}
			sb.WriteString(speaker + ": " + truncate(m.Content, maxMessageLength))
		}
	}
	sb.WriteString("\n\nUser: " + truncate(last, maxMessageLength))

	return &domain.Prompt{Text: sb.String()}, nil
}

func buildPhotoPrompt(req *domain.RecommendRequest) (*domain.Prompt, error) {
	raw := req.ImageBase64
	// Accept data URLs as sent by canvas.toDataURL.
	if i := strings.Index(raw, ";base64,"); strings.HasPrefix(raw, "data:") && i > 0 {
		raw = raw[i+len(";base64,"):]
	}
	if raw == "" {
		return nil, apperrors.NewValidationError("Missing image")
	}

	image, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(image) == 0 {
		return nil, apperrors.NewValidationError("Invalid image encoding")
	}
	if len(image) > maxImageBytes {
		return nil, apperrors.NewValidationError("Image too large")
	}

	mime := strings.ToLower(strings.TrimSpace(req.ImageMime))
	if mime == "" {
		mime = defaultImageMIME
	}
	if !allowedImageMIME[mime] {
		return nil, apperrors.NewValidationError("Unsupported image type")
	}

	return &domain.Prompt{
		Text:      photoSystemPrompt + "\n\nAnalyze this style and recommend matching fragrances.",
		Image:     image,
		ImageMIME: mime,
	}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// RecordRecommendation counts one delegate outcome.
func RecordRecommendation(tier domain.Tier, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	metrics.RecommendationsTotal.WithLabelValues(string(tier), outcome).Inc()
}
