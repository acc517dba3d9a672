package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/servicepoller/internal/httpapi/middleware"
	"github.com/hamed0406/servicepoller/internal/repo"
)

type Server struct {
	Logger *zap.Logger
	Store  repo.ServiceStore
	Now    func() time.Time

	// writes per minute per client and burst; 0 disables the limiter
	WriteRPM   int
	WriteBurst int
}

func NewServer(l *zap.Logger, store repo.ServiceStore, writeRPM, writeBurst int) *Server {
	return &Server{
		Logger:     l,
		Store:      store,
		Now:        time.Now,
		WriteRPM:   writeRPM,
		WriteBurst: writeBurst,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(apimw.AccessLog(s.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1/services", func(r chi.Router) {
		r.Use(apimw.WriteLimit(s.WriteRPM, s.WriteBurst))
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
