package httpx

import (
	"context"
	"net/http"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// ChatService answers questions about a results snapshot.
type ChatService interface {
	Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}

// ChatHandlers proxies chat questions.
type ChatHandlers struct {
	Svc ChatService
}

// Chat handles POST /api/chat.
func (h *ChatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if !DecodeJSONLenient(w, r, &req) {
		return
	}
	resp, err := h.Svc.Chat(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}
