package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/servicepoller/internal/domain"
	"github.com/hamed0406/servicepoller/internal/repo"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("list_services_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list services")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	svc, err := s.Store.Get(r.Context(), id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "service not found")
	case err != nil:
		s.Logger.Error("get_service_error", zap.Int64("id", int64(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load service")
	default:
		writeJSON(w, http.StatusOK, svc)
	}
}

// handleCreate stores a new service. Whatever id, status or timestamps the
// caller sent are ignored; the record always starts UNKNOWN.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	svc, err := s.Store.Upsert(r.Context(), domain.NewService(in.Name, in.URL, s.now()))
	if err != nil {
		s.Logger.Error("create_service_error", zap.String("url", in.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save service")
		return
	}

	s.Logger.Info("service_created",
		zap.Int64("id", int64(svc.ID)),
		zap.String("name", svc.Name),
		zap.String("url", svc.URL),
	)
	writeJSON(w, http.StatusCreated, svc)
}

// handleUpdate renames or re-points a service. Status and timestamps belong to
// the poller and are left alone.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	svc, err := s.Store.Update(r.Context(), id, func(cur domain.Service) domain.Service {
		cur.Name = in.Name
		cur.URL = in.URL
		return cur
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "service not found")
	case err != nil:
		s.Logger.Error("update_service_error", zap.Int64("id", int64(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save service")
	default:
		s.Logger.Info("service_updated",
			zap.Int64("id", int64(id)),
			zap.String("name", svc.Name),
			zap.String("url", svc.URL),
		)
		writeJSON(w, http.StatusOK, svc)
	}
}

// handleDelete succeeds whether or not the id existed.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.Logger.Error("delete_service_error", zap.Int64("id", int64(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not delete service")
		return
	}
	s.Logger.Info("service_deleted", zap.Int64("id", int64(id)))
	writeJSON(w, http.StatusOK, map[string]int64{"id": int64(id)})
}
