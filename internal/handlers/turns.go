package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/turn-engine/pkg/queue"
)

// maxTurnBody bounds a submitted turn request, snapshot included
const maxTurnBody = 4 << 20

type EnqueueResponse struct {
	RequestID  string    `json:"request_id"`
	GameID     uuid.UUID `json:"game_id"`
	QueueDepth int       `json:"queue_depth"`
}

type ResultsResponse struct {
	GameID  uuid.UUID              `json:"game_id"`
	Results []*queuePkg.TurnResult `json:"results"`
}

// TurnsHandler accepts turn requests and serves their results
type TurnsHandler struct {
	queue       *queue.TurnQueue
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func NewTurnsHandler(turnQueue *queue.TurnQueue, broadcaster *events.Broadcaster, logger *slog.Logger) *TurnsHandler {
	return &TurnsHandler{
		queue:       turnQueue,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ServeHTTP routes
// POST /v1/turns
// GET  /v1/turns/{gameID}?limit=N
func (h *TurnsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/turns"), "/")

	switch {
	case r.Method == http.MethodPost && rest == "":
		h.enqueue(w, r)
	case r.Method == http.MethodGet && rest != "" && !strings.Contains(rest, "/"):
		h.results(w, r, rest)
	case rest == "":
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
	case r.Method != http.MethodGet:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
	}
}

func (h *TurnsHandler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req queuePkg.TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTurnBody)).Decode(&req); err != nil {
		h.logger.Warn("Invalid turn request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'state' and 'action' fields.")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if err := h.queue.EnqueueRequest(ctx, &req); err != nil {
		h.logger.Error("Failed to enqueue turn", "error", err, "game_id", req.GameID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue turn. Please try again.")
		return
	}

	depth, err := h.queue.RequestQueueDepth(ctx)
	if err != nil {
		h.logger.Warn("Failed to read queue depth", "error", err)
	}
	if h.broadcaster != nil {
		if err := h.broadcaster.PublishTurnQueued(ctx, req.GameID, req.RequestID, depth); err != nil {
			h.logger.Error("Failed to publish queued event", "error", err)
		}
	}

	h.logger.Info("Turn enqueued",
		"request_id", req.RequestID,
		"game_id", req.GameID.String(),
		"queue_depth", depth)

	writeJSON(w, h.logger, http.StatusAccepted, EnqueueResponse{
		RequestID:  req.RequestID,
		GameID:     req.GameID,
		QueueDepth: depth,
	})
}

func (h *TurnsHandler) results(w http.ResponseWriter, r *http.Request, rawID string) {
	gameID, err := uuid.Parse(rawID)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format.")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer.")
			return
		}
	}

	results, err := h.queue.Results(r.Context(), gameID, limit)
	if err != nil {
		h.logger.Error("Failed to read turn results", "error", err, "game_id", gameID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read results.")
		return
	}
	if results == nil {
		results = []*queuePkg.TurnResult{}
	}
	writeJSON(w, h.logger, http.StatusOK, ResultsResponse{GameID: gameID, Results: results})
}
