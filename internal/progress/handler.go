package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymplan/internal/identity"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progress_test

type coachService interface {
	Summary(ctx context.Context, userID string) (Summary, error)
	Chat(ctx context.Context, userID, message string) (*Reply, error)
}

type ChatRequest struct {
	Message string `json:"message"`
}

type Handler struct {
	coach coachService
}

func NewHandler(coach coachService) *Handler {
	return &Handler{
		coach: coach,
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.summary")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	summary, err := handler.coach.Summary(ctx, userID)
	if err != nil {
		log.Errorf("progress summary for user [%s]: %s", userID, err)
		http.Error(w, "failed to get progress summary", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.chat")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var chatReq ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		log.Errorf("coach chat, unmarshal json params: %s", err)
		http.Error(w, "invalid chat request", http.StatusBadRequest)
		return
	}

	reply, err := handler.coach.Chat(ctx, userID, chatReq.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMessage):
			http.Error(w, "message must be 1-2000 characters", http.StatusBadRequest)
		case errors.Is(err, ErrGenerationFailed):
			log.Warnf("coach chat for user [%s]: %s", userID, err)
			http.Error(w, "coach is unavailable, try again", http.StatusBadGateway)
		default:
			log.Errorf("coach chat for user [%s]: %s", userID, err)
			http.Error(w, "coach chat failed", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSON(w, reply, http.StatusOK)
}
