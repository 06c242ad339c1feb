package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	RoomsHandler(w http.ResponseWriter, _ *http.Request)
	RoomResultsHandler(w http.ResponseWriter, r *http.Request)
}

type roomService interface {
	Stats() repository.SessionStats
	RoomResults(ctx context.Context, roomID string) ([]*entity.GameRecord, error)
}

type handlers struct {
	logger      *slog.Logger
	roomService roomService
}

func NewHandlers(logger *slog.Logger, roomService roomService) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		roomService: roomService,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.roomService.Stats())
}

func (that *handlers) RoomResultsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "RoomResultsHandler")

	roomID := r.PathValue("roomId")

	records, err := that.roomService.RoomResults(r.Context(), roomID)
	if errors.Is(err, apperror.ErrNotFound) {
		http.Error(w, "Results archive is disabled", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to list room results", "roomID", roomID, "error", err)
		http.Error(w, "Failed to list results", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, records)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
