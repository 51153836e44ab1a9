package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"academiaQuestAPI/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.teamService.ListTeams())
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["id"]

	t, err := h.teamService.GetTeam(teamID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Team not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get team")
		return
	}

	respondWithJSON(w, http.StatusOK, t)
}
