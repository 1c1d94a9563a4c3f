package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
	"github.com/meltforce/voicecoach/internal/session"
	"github.com/meltforce/voicecoach/internal/speech"
	"github.com/meltforce/voicecoach/internal/storage"
)

// Generator builds the audio queue for a workout package and user.
type Generator interface {
	Generate(ctx context.Context, packageID, userID uuid.UUID) ([]models.AudioQueueItem, error)
}

// Catalog is the read side of the workout content store.
type Catalog interface {
	ListSteps(ctx context.Context) ([]models.StepDefinition, error)
	ListPackages(ctx context.Context) ([]models.WorkoutPackage, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*models.WorkoutPackage, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.WorkoutSession, error)
	GetSessionStats(ctx context.Context, userID uuid.UUID) (*storage.SessionStats, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog  Catalog
	gen      Generator
	sessions *session.Service
	synth    speech.Synthesizer
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(catalog Catalog, gen Generator, sessions *session.Service, synth speech.Synthesizer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		catalog:  catalog,
		gen:      gen,
		sessions: sessions,
		synth:    synth,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(Identity)

		r.Get("/workout/steps", s.handleListSteps)
		r.Get("/workout/packages", s.handleListPackages)
		r.Get("/workout/packages/{id}", s.handleGetPackage)

		r.Post("/workout/generate-audio", s.handleGenerateAudio)

		r.Post("/workout/session/start", s.handleSessionStart)
		r.Post("/workout/session/update", s.handleSessionUpdate)
		r.Post("/workout/session/complete", s.handleSessionComplete)
		r.Get("/workout/sessions", s.handleListSessions)
		r.Get("/workout/sessions/{id}", s.handleGetSession)
		r.Get("/workout/sessions/stats", s.handleSessionStats)

		r.Post("/tts/generate", s.handleTTSGenerate)
	})
}
