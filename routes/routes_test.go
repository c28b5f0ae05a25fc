package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/tournament-runner/brackets"
	"github.com/Dosada05/tournament-runner/handlers"
	"github.com/Dosada05/tournament-runner/models"
	"github.com/Dosada05/tournament-runner/repositories"
	"github.com/Dosada05/tournament-runner/services"
)

const organizerPassword = "let-me-in"

type testServer struct {
	*httptest.Server
	hub *brackets.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stateRepo, err := repositories.NewFileStateRepository(filepath.Join(dir, "tournaments"))
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(organizerPassword), bcrypt.MinCost)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := brackets.NewHub(logger)
	go hub.Run(ctx)

	authService := services.NewAuthService(string(hash), "test-secret")
	rosterService := services.NewRosterService(
		repositories.NewFileRosterRepository(filepath.Join(dir, "participants.txt")),
		repositories.NewFileRosterRepository(filepath.Join(dir, "tournament_req.txt")),
	)
	engine := services.NewRoundEngine(services.RoundEngineDeps{
		Repo:     stateRepo,
		Notifier: hub,
		Shuffler: rand.New(rand.NewPCG(7, 11)),
		Logger:   logger,
	})

	router := chi.NewRouter()
	SetupRoutes(
		router,
		[]string{"*"},
		authService,
		handlers.NewAuthHandler(authService),
		handlers.NewRosterHandler(rosterService),
		handlers.NewTournamentHandler(engine),
		handlers.NewReportHandler(services.NewReportService(stateRepo)),
		handlers.NewWebSocketHandler(hub, []string{"*"}),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, hub: hub}
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}, dst interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(js)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	status := s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"password": organizerPassword}, &out)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized,
		srv.call(t, http.MethodPost, "/auth/login", "", map[string]string{"password": "guess"}, nil))
	assert.Equal(t, http.StatusBadRequest,
		srv.call(t, http.MethodPost, "/auth/login", "", map[string]string{}, nil))
	assert.Equal(t, http.StatusBadRequest,
		srv.call(t, http.MethodPost, "/auth/login", "", map[string]string{"user": "x", "password": "y"}, nil))
	srv.login(t)
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "viewer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	routes := []string{"/participants", "/requirements", "/tournament", "/tournament/rounds", "/tournament/winners"}
	for _, path := range routes {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, srv.call(t, http.MethodPost, path, "", map[string]string{}, nil))
			assert.Equal(t, http.StatusUnauthorized, srv.call(t, http.MethodPost, path, "not-a-jwt", map[string]string{}, nil))
			assert.Equal(t, http.StatusForbidden, srv.call(t, http.MethodPost, path, viewer, map[string]string{}, nil))
		})
	}
}

func TestRosterRoutes(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	for _, name := range []string{"Ann", "Bob"} {
		assert.Equal(t, http.StatusCreated, srv.call(t, http.MethodPost, "/participants", token, map[string]string{"name": name}, nil))
	}
	assert.Equal(t, http.StatusConflict, srv.call(t, http.MethodPost, "/participants", token, map[string]string{"name": "Ann"}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, srv.call(t, http.MethodPost, "/participants", token, map[string]string{"name": "  "}, nil))
	assert.Equal(t, http.StatusCreated, srv.call(t, http.MethodPost, "/requirements", token, map[string]string{"name": "Sing"}, nil))

	var participants struct {
		Participants []string `json:"participants"`
	}
	assert.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/participants", "", nil, &participants))
	assert.Equal(t, []string{"Ann", "Bob"}, participants.Participants)

	var roster struct {
		Roster services.Roster `json:"roster"`
	}
	assert.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/roster", "", nil, &roster))
	assert.Equal(t, []string{"Ann", "Bob"}, roster.Roster.Participants)
	assert.Equal(t, []string{"Sing"}, roster.Roster.Requirements)
}

type tournamentResponse struct {
	Tournament *models.TournamentState  `json:"tournament"`
	Report     *models.TournamentReport `json:"report"`
}

func winnersOf(state *models.TournamentState) []string {
	winners := make([]string, 0, len(state.NextRound))
	for _, g := range state.NextRound {
		winners = append(winners, g[len(g)-1])
	}
	return winners
}

func TestTournamentLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)
	players := []string{"Ann", "Bob", "Cid", "Dee", "Eve"}

	var snap struct {
		Tournament models.Snapshot `json:"tournament"`
	}
	require.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/tournament", "", nil, &snap))
	assert.Equal(t, models.StatusIdle, snap.Tournament.Status)

	// Five players form two groups; one requirement is not enough, so the
	// tournament waits for its first round.
	status := srv.call(t, http.MethodPost, "/tournament", token,
		map[string][]string{"participants": players, "requirements": {"Sing"}}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/tournament", "", nil, &snap))
	assert.Equal(t, models.StatusAwaitingRound, snap.Tournament.Status)
	require.NotNil(t, snap.Tournament.State)
	roster := snap.Tournament.State.Participants

	var started tournamentResponse
	status = srv.call(t, http.MethodPost, "/tournament/rounds", token,
		map[string][]string{"requirements": {"Sing", "Dance"}}, &started)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, started.Tournament)
	assert.Equal(t, roster, started.Tournament.Participants)
	require.Len(t, started.Tournament.NextRound, 2)
	assert.Len(t, started.Tournament.NextRound[0], 3)
	assert.Len(t, started.Tournament.NextRound[1], 2)
	assert.ElementsMatch(t, players, started.Tournament.Participants)

	assert.Equal(t, http.StatusConflict, srv.call(t, http.MethodPost, "/tournament/rounds", token,
		map[string][]string{"requirements": {"Sing"}}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, srv.call(t, http.MethodPost, "/tournament/winners", token,
		map[string][]string{"winners": {"Ann"}}, nil))

	var advanced tournamentResponse
	status = srv.call(t, http.MethodPost, "/tournament/winners", token,
		map[string][]string{"winners": winnersOf(started.Tournament), "requirements": {"Juggle"}}, &advanced)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, advanced.Tournament)
	require.Len(t, advanced.Tournament.NextRound, 1)
	assert.Equal(t, 2, advanced.Tournament.CurrentRoundNumber)
	assert.Equal(t, "Juggle", advanced.Tournament.Assignments[0].Requirement)

	var finished tournamentResponse
	status = srv.call(t, http.MethodPost, "/tournament/winners", token,
		map[string][]string{"winners": winnersOf(advanced.Tournament)}, &finished)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, finished.Report)
	assert.Nil(t, finished.Tournament)
	assert.Equal(t, 1, finished.Report.Number)
	assert.Equal(t, winnersOf(advanced.Tournament)[0], finished.Report.Winner)
	assert.Contains(t, finished.Report.Log, "Winner: "+finished.Report.Winner)

	require.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/tournament", "", nil, &snap))
	assert.Equal(t, models.StatusIdle, snap.Tournament.Status)
	assert.Equal(t, http.StatusConflict, srv.call(t, http.MethodPost, "/tournament/winners", token,
		map[string][]string{"winners": {"Ann"}}, nil))

	var list struct {
		Reports []models.ReportSummary `json:"reports"`
	}
	require.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/reports", "", nil, &list))
	require.Len(t, list.Reports, 1)
	assert.Equal(t, finished.Report.Winner, list.Reports[0].Winner)

	var one struct {
		Report models.TournamentReport `json:"report"`
	}
	require.Equal(t, http.StatusOK, srv.call(t, http.MethodGet, "/reports/1", "", nil, &one))
	assert.Equal(t, finished.Report.Log, one.Report.Log)
	assert.Equal(t, http.StatusNotFound, srv.call(t, http.MethodGet, "/reports/9", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, srv.call(t, http.MethodGet, "/reports/first", "", nil, nil))
}

func TestWebSocketReceivesEngineEvents(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	status := srv.call(t, http.MethodPost, "/tournament", token,
		map[string][]string{"participants": {"Ann", "Bob"}, "requirements": {"Sing"}}, nil)
	require.Equal(t, http.StatusCreated, status)

	var types []string
	for len(types) < 2 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg brackets.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{services.EventTournamentStarted, services.EventRoundFormed}, types)
}
