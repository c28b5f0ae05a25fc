package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-runner/services"
)

type TournamentHandler struct {
	engine services.RoundEngine
}

func NewTournamentHandler(engine services.RoundEngine) *TournamentHandler {
	return &TournamentHandler{
		engine: engine,
	}
}

type startTournamentInput struct {
	Participants []string `json:"participants"`
	Requirements []string `json:"requirements"`
}

type formRoundInput struct {
	Requirements []string `json:"requirements"`
}

type submitWinnersInput struct {
	Winners      []string `json:"winners"`
	Requirements []string `json:"requirements"`
}

// GetHandler обрабатывает GET /tournament
func (h *TournamentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": h.engine.Snapshot()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler обрабатывает POST /tournament
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	var input startTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.engine.Start(r.Context(), input.Participants, input.Requirements)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FormRoundHandler обрабатывает POST /tournament/rounds
func (h *TournamentHandler) FormRoundHandler(w http.ResponseWriter, r *http.Request) {
	var input formRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.engine.FormRound(r.Context(), input.Requirements)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitWinnersHandler обрабатывает POST /tournament/winners
// Ответ содержит либо следующий раунд, либо итоговый отчет.
func (h *TournamentHandler) SubmitWinnersHandler(w http.ResponseWriter, r *http.Request) {
	var input submitWinnersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.engine.SubmitWinners(r.Context(), input.Winners, input.Requirements)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{"tournament": outcome.State}
	if outcome.Report != nil {
		resp = jsonResponse{"report": outcome.Report}
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
