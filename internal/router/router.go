package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/handlers"
	"vetstudy-backend/internal/middleware"
	"vetstudy-backend/internal/websocket"
)

type Handlers struct {
	Generation   *handlers.GenerationHandler
	StudyPlanPDF *handlers.StudyPlanPageHandler
	Jobs         *handlers.JobHandler
	ChatHistory  *handlers.ChatHistoryHandler
	Flashcards   *handlers.FlashcardHandler
	Password     *handlers.PasswordHandler
}

// generateRoutes maps the public generation paths to content types.
var generateRoutes = []struct {
	path string
	ct   generation.ContentType
}{
	{"/generate-case", generation.TypeClinicalCase},
	{"/generate-clinical-case", generation.TypeClinicalCase},
	{"/generate-flashcards", generation.TypeFlashcardSet},
	{"/generate-quiz", generation.TypeQuiz},
	{"/generate-prescription", generation.TypePrescription},
	{"/generate-study-plan", generation.TypeStudyPlan},
	{"/generate-study-trail", generation.TypeStudyTrail},
}

func New(
	jwtAuth *middleware.JWTAuth,
	generateLimiter *middleware.RateLimiter,
	passwordLimiter *middleware.RateLimiter,
	h Handlers,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Backend está funcionando!","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Generation (public, identity optional) ────
		r.Group(func(r chi.Router) {
			r.Use(generateLimiter.Middleware)
			r.Use(jwtAuth.Optional)
			for _, route := range generateRoutes {
				r.Post(route.path, h.Generation.Generate(route.ct))
			}
			r.Post("/generate-study-plan-pdf", h.StudyPlanPDF.Render)

			r.Route("/generation-jobs", func(r chi.Router) {
				for _, ct := range generation.ContentTypes() {
					r.Post("/"+string(ct), h.Jobs.Create(ct))
				}
				r.Get("/{id}", h.Jobs.Show)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws/generation-jobs/{id}", wsHub.HandleJobStream)

		// ──── Chat Histories ────
		r.Route("/chat-histories", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", h.ChatHistory.Create)
			r.Get("/{id}", h.ChatHistory.List) // id is the owner's user id
			r.Get("/{id}/show", h.ChatHistory.Show)
			r.Put("/{id}", h.ChatHistory.Update)
			r.Delete("/{id}", h.ChatHistory.Delete)
		})

		// ──── Flashcard Decks ────
		r.Route("/flashcards", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Route("/decks", func(r chi.Router) {
				r.Get("/", h.Flashcards.ListDecks)
				r.Get("/{id}", h.Flashcards.GetDeck)
				r.Delete("/{id}", h.Flashcards.DeleteDeck)
			})
			r.Post("/cards/{id}/rating", h.Flashcards.RateCard)
		})

		// ──── Password Reset ────
		r.Route("/password", func(r chi.Router) {
			r.Use(passwordLimiter.Middleware)
			r.Post("/forgot", h.Password.Forgot)
			r.Post("/reset", h.Password.Reset)
		})
	})

	return r
}
