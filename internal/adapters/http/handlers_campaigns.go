package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thrivebrands/beaconiq/internal/domain"
)

type moveRequest struct {
	From string `json:"from"`
}

type kanbanAcceptRequest struct {
	CampaignID     string `json:"campaignId"`
	FromCollection string `json:"fromCollection"`
}

func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.GetBoard(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "get_board", err)
		return
	}
	writeSuccess(w, http.StatusOK, board)
}

// streamBoard sends the current board, then every confirmed snapshot until the
// client disconnects.
func (h *Handler) streamBoard(w http.ResponseWriter, r *http.Request) {
	updates, unsubscribe := h.service.SubscribeBoard()
	defer unsubscribe()

	board, err := h.service.GetBoard(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "stream_board", err)
		return
	}
	stream := newEventStream(w)
	if err := stream.send("board", board); err != nil {
		return
	}

	keepAlive := time.NewTicker(h.streamKeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case next, ok := <-updates:
			if !ok {
				return
			}
			if err := stream.send("board", next); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := stream.comment("keep-alive"); err != nil {
				return
			}
		}
	}
}

func (h *Handler) activateCampaign(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "activate_campaign", err)
		return
	}
	result, err := h.service.ActivateCampaign(r.Context(), actorFromRequest(r), chi.URLParam(r, "campaign_id"), req.From)
	if err != nil {
		writeMappedError(r.Context(), w, "activate_campaign", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) deactivateCampaign(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.DeactivateCampaign(r.Context(), actorFromRequest(r), chi.URLParam(r, "campaign_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "deactivate_campaign", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) archiveCampaign(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "archive_campaign", err)
		return
	}
	result, err := h.service.ArchiveCampaign(r.Context(), actorFromRequest(r), chi.URLParam(r, "campaign_id"), req.From)
	if err != nil {
		writeMappedError(r.Context(), w, "archive_campaign", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GenerateRecommendations(r.Context(), actorFromRequest(r))
	if err != nil {
		writeMappedError(r.Context(), w, "generate_recommendations", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) getMutation(w http.ResponseWriter, r *http.Request) {
	mutation, err := h.service.GetMutation(r.Context(), actorFromRequest(r), chi.URLParam(r, "mutation_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_mutation", err)
		return
	}
	writeSuccess(w, http.StatusOK, mutation)
}

func (h *Handler) kanbanRecommendations(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.GetBoard(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "kanban_recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, board.Bucket(domain.BucketRecommended))
}

func (h *Handler) kanbanAccept(w http.ResponseWriter, r *http.Request) {
	var req kanbanAcceptRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "kanban_accept", err)
		return
	}
	from := req.FromCollection
	if from == "" {
		from = string(domain.BucketRecommended)
	}
	result, err := h.service.ActivateCampaign(r.Context(), actorFromRequest(r), req.CampaignID, from)
	if err != nil {
		writeMappedError(r.Context(), w, "kanban_accept", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Campaign accepted",
		"board":    result.Board,
		"mutation": result.Mutation,
	})
}
