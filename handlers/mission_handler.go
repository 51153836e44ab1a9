package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"academiaQuestAPI/internal/mission"
	"academiaQuestAPI/middleware"
	"academiaQuestAPI/services"
)

type MissionHandler struct {
	engine      *services.EngineService
	userService *services.UserService
}

func NewMissionHandler(engine *services.EngineService, userService *services.UserService) *MissionHandler {
	return &MissionHandler{
		engine:      engine,
		userService: userService,
	}
}

// resolveUser maps the authenticated Clerk identity to the domain user
// id. Shared by every mutating mission route.
func (h *MissionHandler) resolveUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return "", false
	}
	u, err := h.userService.GetUserByClerkID(clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return "", false
	}
	return u.ID, true
}

func (h *MissionHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.engine.ListMissions())
}

func (h *MissionHandler) StartMission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	missionID := mux.Vars(r)["id"]

	outcome, err := h.engine.StartMission(ctx, missionID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Mission not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to start mission")
		return
	}
	if !outcome.Applied {
		respondWithError(w, http.StatusConflict, outcome.Reason)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

func (h *MissionHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.resolveUser(w, r); !ok {
		return
	}
	missionID := mux.Vars(r)["id"]

	var req mission.UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.engine.UpdateMissionProgress(ctx, missionID, &req)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Mission not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update progress")
		return
	}
	if !outcome.Applied {
		respondWithError(w, http.StatusConflict, outcome.Reason)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

func (h *MissionHandler) CompleteMission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	missionID := mux.Vars(r)["id"]

	outcome, err := h.engine.CompleteMission(ctx, missionID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Mission not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to complete mission")
		return
	}
	if !outcome.Applied {
		respondWithError(w, http.StatusConflict, outcome.Reason)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

func (h *MissionHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	missionID := mux.Vars(r)["id"]

	var req mission.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.engine.ContributeToTeamMission(ctx, missionID, userID, req.ProgressDelta)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Mission not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to record contribution")
		return
	}
	if !outcome.Applied {
		respondWithError(w, http.StatusConflict, outcome.Reason)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

func (h *MissionHandler) GetWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.engine.WeeklyGoal())
}
