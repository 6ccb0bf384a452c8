package upstream

import (
	"encoding/json"
	"strings"
)

// ExtractDetail flattens a FastAPI error body into one message. detail may be
// a string, an object with msg, or a list of validation errors; list entries
// are joined with "; ".
func ExtractDetail(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	if msg := detailMessage(envelope.Detail); msg != "" {
		return msg
	}
	return strings.TrimSpace(envelope.Message)
}

type validationError struct {
	Msg string `json:"msg"`
	Loc []any  `json:"loc"`
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var list []validationError
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	var single validationError
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single.Msg)
	}
	return ""
}
