package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/mocks"
)

func newChatService(t *testing.T) (*ChatService, *mocks.MockInferenceClient) {
	t.Helper()
	inference := mocks.NewMockInferenceClient(gomock.NewController(t))
	svc, err := NewChatService(ChatServiceOptions{Inference: inference})
	require.NoError(t, err)
	return svc, inference
}

func TestChatService_Chat_BoundsRequest(t *testing.T) {
	svc, inference := newChatService(t)

	elements := make([]model.ElementResult, 0, 300)
	for i := range 300 {
		status := model.ElementStatusPass
		if i%100 == 0 {
			status = model.ElementStatusFail
		}
		elements = append(elements, model.ElementResult{CheckStatus: status})
	}
	req := model.ChatRequest{
		Message:        strings.Repeat("é", 2500),
		CheckResults:   make([]model.CheckResult, 80),
		ElementResults: elements,
	}

	inference.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, got model.ChatRequest) (*model.ChatResponse, error) {
			assert.Equal(t, model.ChatMaxMessageRunes, utf8.RuneCountInString(got.Message))
			assert.Len(t, got.CheckResults, model.ChatMaxChecks)
			require.Len(t, got.ElementResults, model.ChatMaxElements)
			for i := range 3 {
				assert.Equal(t, model.ElementStatusFail, got.ElementResults[i].CheckStatus)
			}
			return &model.ChatResponse{Response: "Two doors fail."}, nil
		})

	resp, err := svc.Chat(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "Two doors fail.", resp.Response)
}

func TestChatService_Chat_RequiresMessage(t *testing.T) {
	svc, _ := newChatService(t)
	_, err := svc.Chat(t.Context(), model.ChatRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestChatService_Chat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "timeout",
			err:      apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeTimeout, "inference service timed out"),
			wantCode: apperrors.ErrCodeTimeout,
			wantMsg:  "AI model timed out. Please try again.",
		},
		{
			name:     "unreachable",
			err:      apperrors.Wrap(errors.New("connection refused"), apperrors.ErrCodeUnavailable, "inference service unreachable"),
			wantCode: apperrors.ErrCodeUnavailable,
			wantMsg:  "AI backend unreachable.",
		},
		{
			name:     "non-2xx",
			err:      apperrors.Upstream("inference service returned 500"),
			wantCode: apperrors.ErrCodeUpstream,
			wantMsg:  "inference service returned 500",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, inference := newChatService(t)
			inference.EXPECT().Chat(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			_, err := svc.Chat(t.Context(), model.ChatRequest{Message: "why?"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}
