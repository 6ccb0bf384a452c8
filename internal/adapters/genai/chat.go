package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
	"google.golang.org/genai"
)

const chatSystemPrompt = "You are Vector AI, a friendly sales data analyst for a consumer brands business. " +
	"Answer with short, actionable insights grounded in the figures you are given. " +
	"Call out the top movers, the laggards and one next step. Never invent numbers that are not in the context."

// ChatModel answers insight questions directly from Gemini.
type ChatModel struct {
	client *Client
}

func NewChatModel(client *Client) *ChatModel {
	return &ChatModel{client: client}
}

func (m *ChatModel) Reply(ctx context.Context, req ports.ChatRequest) (string, error) {
	return m.client.generate(ctx, chatSystemPrompt, chatContents(req), "")
}

func chatContents(req ports.ChatRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if turn.Role == domain.RoleAssistantTurn {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}

	var prompt strings.Builder
	if req.ChartTitle != "" {
		fmt.Fprintf(&prompt, "Chart: %s\n", req.ChartTitle)
	}
	if len(req.Context) > 0 && string(req.Context) != "null" {
		ctxText := string(req.Context)
		if len(ctxText) > 1500 {
			ctxText = ctxText[:1500]
		}
		fmt.Fprintf(&prompt, "Context: %s\n", ctxText)
	}
	prompt.WriteString(req.Message)
	return append(contents, genai.NewContentFromText(prompt.String(), genai.RoleUser))
}
