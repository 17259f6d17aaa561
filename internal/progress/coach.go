package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/textgen"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=coach_mocks_test.go -package=progress_test

const (
	maxMessageLength = 2000
	historyLimit     = 200
)

var (
	ErrInvalidMessage     = errors.New("invalid chat message")
	ErrHistoryUnavailable = errors.New("workout history unavailable")
	ErrGenerationFailed   = errors.New("coach reply generation failed")
)

type logsLister interface {
	ListCompleted(ctx context.Context, userID string, limit int) ([]WorkoutLog, error)
}

type Reply struct {
	Reply   string        `json:"reply"`
	Summary Summary       `json:"summary"`
	Usage   textgen.Usage `json:"usage"`
}

// CoachService answers chat messages with the user's training progress as context.
type CoachService struct {
	logs        logsLister
	client      textgen.Client
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

func NewCoachService(logs logsLister, client textgen.Client, temperature float64, maxTokens int, timeout time.Duration) *CoachService {
	return &CoachService{
		logs:        logs,
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}
}

// Summary loads the user's history and summarizes it.
func (s *CoachService) Summary(ctx context.Context, userID string) (Summary, error) {
	logs, err := s.logs.ListCompleted(ctx, userID, historyLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	return Summarize(logs), nil
}

func (s *CoachService) Chat(ctx context.Context, userID, message string) (_ *Reply, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.coach.chat")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	message = strings.TrimSpace(message)
	if message == "" || utf8.RuneCountInString(message) > maxMessageLength {
		return nil, ErrInvalidMessage
	}

	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.client.Complete(callCtx, textgen.Request{
		SystemPrompt:   coachSystemPrompt(summary),
		UserPrompt:     message,
		ResponseFormat: textgen.ResponseFormatJSON,
		Temperature:    s.temperature,
		MaxTokens:      s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	var parsed struct {
		Reply string `json:"reply"`
	}
	if err := textgen.DecodeJSON(completion.Content, &parsed); err != nil {
		log.Debugf("coach reply not json: %s", err)
		return nil, fmt.Errorf("%w: decode reply: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(parsed.Reply) == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrGenerationFailed)
	}

	return &Reply{
		Reply:   strings.TrimSpace(parsed.Reply),
		Summary: summary,
		Usage:   completion.Usage,
	}, nil
}

func coachSystemPrompt(summary Summary) string {
	var sb strings.Builder
	sb.WriteString("You are a supportive personal fitness coach in a workout tracking app.\n")
	sb.WriteString("Answer the user's message briefly and concretely, using their training history below.\n")
	sb.WriteString(`Respond with a JSON object only: {"reply": "your answer"}`)
	sb.WriteString("\n\nUser training history:\n")
	sb.WriteString(summary.ContextText())
	return sb.String()
}
