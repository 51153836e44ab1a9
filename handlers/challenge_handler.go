package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"academiaQuestAPI/middleware"
	"academiaQuestAPI/services"
)

type ChallengeHandler struct {
	engine      *services.EngineService
	userService *services.UserService
}

func NewChallengeHandler(engine *services.EngineService, userService *services.UserService) *ChallengeHandler {
	return &ChallengeHandler{
		engine:      engine,
		userService: userService,
	}
}

func (h *ChallengeHandler) resolveUser(w http.ResponseWriter, r *http.Request) (string, bool) {
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

func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.engine.ListChallenges())
}

func (h *ChallengeHandler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	challengeID := mux.Vars(r)["id"]

	outcome, err := h.engine.AcceptChallenge(ctx, challengeID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to accept challenge")
		return
	}
	if !outcome.Applied {
		respondWithError(w, http.StatusConflict, outcome.Reason)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

func (h *ChallengeHandler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	challengeID := mux.Vars(r)["id"]

	outcome, err := h.engine.CompleteChallenge(ctx, challengeID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to complete challenge")
		return
	}
	if !outcome.Applied {
		respondWithError(w, http.StatusConflict, outcome.Reason)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}
