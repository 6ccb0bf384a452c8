package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
	"go.opentelemetry.io/otel/attribute"
)

type ChatInput struct {
	SessionID  string            `json:"session_id"`
	Message    string            `json:"message"`
	ChartTitle string            `json:"chart_title"`
	Context    json.RawMessage   `json:"context"`
	History    []domain.ChatTurn `json:"conversation_history"`
}

type ChatResult struct {
	SessionID string          `json:"session_id"`
	Reply     domain.ChatTurn `json:"reply"`
	Degraded  bool            `json:"degraded"`
}

// Chat records the user turn, asks the model for a reply and records the full
// reply before returning it. A model failure is answered with the canned
// unavailable reply instead of an error.
func (s *Service) Chat(ctx context.Context, actor Actor, in ChatInput) (ChatResult, error) {
	ctx, span := s.tracer.Start(ctx, "chat.reply")
	defer span.End()

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatResult{}, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = domain.DefaultSessionID
	}
	span.SetAttributes(attribute.String("chat.session_id", sessionID))

	key := transcriptKey(actor, sessionID)
	transcript, err := s.transcripts.Load(ctx, key)
	if err != nil && !isNotFound(err) {
		return ChatResult{}, err
	}

	userTurn := s.newTurn(key, domain.RoleUserTurn, message)
	if err := s.transcripts.Append(ctx, userTurn); err != nil {
		return ChatResult{}, err
	}

	history := in.History
	if len(history) == 0 {
		history = transcript.Tail(s.cfg.ChatHistoryLimit)
	}
	content, degraded := s.ask(ctx, actor, ports.ChatRequest{
		SessionID:  sessionID,
		Message:    message,
		ChartTitle: strings.TrimSpace(in.ChartTitle),
		Context:    in.Context,
		History:    history,
	})

	reply := s.newTurn(key, domain.RoleAssistantTurn, content)
	if err := s.transcripts.Append(ctx, reply); err != nil {
		return ChatResult{}, err
	}
	reply.SessionID = sessionID
	span.SetAttributes(attribute.Bool("chat.degraded", degraded))
	return ChatResult{SessionID: sessionID, Reply: reply, Degraded: degraded}, nil
}

// Transcript returns the actor's own turns for sessionID. Session ids are
// private to each user.
func (s *Service) Transcript(ctx context.Context, actor Actor, sessionID string) (domain.Transcript, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Transcript{}, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	transcript, err := s.transcripts.Load(ctx, transcriptKey(actor, sessionID))
	if isNotFound(err) {
		return domain.Transcript{SessionID: sessionID, Turns: []domain.ChatTurn{}}, nil
	}
	if err != nil {
		return domain.Transcript{}, err
	}
	transcript.SessionID = sessionID
	for i := range transcript.Turns {
		transcript.Turns[i].SessionID = sessionID
	}
	return transcript, nil
}

func transcriptKey(actor Actor, sessionID string) string {
	if actor.UserID == "" {
		return sessionID
	}
	return actor.UserID + "/" + sessionID
}

func (s *Service) ask(ctx context.Context, actor Actor, req ports.ChatRequest) (string, bool) {
	if s.chatModel == nil {
		return domain.UnavailableReply, true
	}
	reply, err := s.chatModel.Reply(ctx, req)
	if err == nil && strings.TrimSpace(reply) != "" {
		return reply, false
	}
	if err == nil {
		err = fmt.Errorf("empty reply")
	}
	appLogger().WarnContext(ctx, "chat model failed",
		"operation", "chat_reply",
		"outcome", "failure",
		"session_id", req.SessionID,
		"user_id", actor.UserID,
		"error", err,
	)
	return domain.UnavailableReply, true
}

func (s *Service) newTurn(sessionID string, role domain.ChatRole, content string) domain.ChatTurn {
	return domain.ChatTurn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.nowFn(),
	}
}
