package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-runner/services"
)

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rs services.RosterService) *RosterHandler {
	return &RosterHandler{
		rosterService: rs,
	}
}

type addNameInput struct {
	Name string `json:"name"`
}

// GetRoster обрабатывает GET /roster
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.rosterService.LoadAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "participants", h.rosterService.ListParticipants)
}

func (h *RosterHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "participant", h.rosterService.AddParticipant)
}

func (h *RosterHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "requirements", h.rosterService.ListRequirements)
}

func (h *RosterHandler) AddRequirement(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "requirement", h.rosterService.AddRequirement)
}

func (h *RosterHandler) list(w http.ResponseWriter, r *http.Request, key string, load func(context.Context) ([]string, error)) {
	names, err := load(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{key: names}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) add(w http.ResponseWriter, r *http.Request, key string, add func(context.Context, string) error) {
	var input addNameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := add(r.Context(), input.Name); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{key: input.Name}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
