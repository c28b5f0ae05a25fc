package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/tournament-runner/handlers"
	"github.com/Dosada05/tournament-runner/middleware"
	"github.com/Dosada05/tournament-runner/services"
)

func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	tokenParser middleware.TokenParser,
	authHandler *handlers.AuthHandler,
	rosterHandler *handlers.RosterHandler,
	tournamentHandler *handlers.TournamentHandler,
	reportHandler *handlers.ReportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireOrganizer := func(next http.Handler) http.Handler {
		return middleware.Authenticate(tokenParser)(middleware.Authorize(services.RoleOrganizer)(next))
	}

	router.Post("/auth/login", authHandler.Login)

	router.Get("/roster", rosterHandler.GetRoster)

	router.Route("/participants", func(r chi.Router) {
		r.Get("/", rosterHandler.ListParticipants)
		r.With(requireOrganizer).Post("/", rosterHandler.AddParticipant)
	})

	router.Route("/requirements", func(r chi.Router) {
		r.Get("/", rosterHandler.ListRequirements)
		r.With(requireOrganizer).Post("/", rosterHandler.AddRequirement)
	})

	router.Route("/tournament", func(r chi.Router) {
		r.Get("/", tournamentHandler.GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(requireOrganizer)

			r.Post("/", tournamentHandler.StartHandler)
			r.Post("/rounds", tournamentHandler.FormRoundHandler)
			r.Post("/winners", tournamentHandler.SubmitWinnersHandler)
		})
	})

	router.Route("/reports", func(r chi.Router) {
		r.Get("/", reportHandler.ListHandler)
		r.Get("/{number}", reportHandler.GetHandler)
	})

	router.Get("/ws", webSocketHandler.ServeWs)
}
