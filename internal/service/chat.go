package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Inference core.InferenceClient // Required: inference service client
	Logger    *slog.Logger         // Optional: structured logger
}

// ChatService forwards questions about a results snapshot to the inference
// service. It keeps no conversation state.
type ChatService struct {
	inference core.InferenceClient
	logger    *slog.Logger
}

// NewChatService constructs a new ChatService.
func NewChatService(opts ChatServiceOptions) (*ChatService, error) {
	if opts.Inference == nil {
		return nil, errors.New("inference client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{inference: opts.Inference, logger: logger.With("component", "chat_service")}, nil
}

// Chat validates and bounds the request, then asks the inference service.
func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	bounded := req.Bounded()
	if len(bounded.ElementResults) < len(req.ElementResults) || len(bounded.CheckResults) < len(req.CheckResults) {
		s.logger.DebugContext(ctx, "chat snapshot trimmed",
			"checks", len(req.CheckResults),
			"elements", len(req.ElementResults),
		)
	}

	resp, err := s.inference.Chat(ctx, bounded)
	switch {
	case err == nil:
		return resp, nil
	case apperrors.IsTimeout(err):
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "AI model timed out. Please try again.")
	case apperrors.GetCode(err) == apperrors.ErrCodeUnavailable:
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "AI backend unreachable.")
	case apperrors.IsUpstream(err):
		return nil, err
	default:
		return nil, fmt.Errorf("chat: %w", err)
	}
}
