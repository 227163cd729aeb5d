package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/gitworth/gitworth/internal/application/analysis"
	domain "github.com/gitworth/gitworth/internal/domain/analysis"
)

type Router struct {
	svc *appanalysis.Service
}

func NewRouter(svc *appanalysis.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleStartAnalysis))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Post("/analyses/{id}/recalculate", r.wrap(r.handleRecalculate))
		rt.Get("/failures/latest", r.wrap(r.handleFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain sentinel errors onto HTTP status codes so handlers
// stay plain error-returning functions.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, domain.ErrInvalidRepositoryURL),
			errors.Is(err, domain.ErrHypothesisOutOfRange):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, domain.ErrAnalysisNotCompleted),
			errors.Is(err, domain.ErrRunInFlight),
			errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/analyses
// Body: {"repositoryUrl": "https://github.com/<owner>/<repo>"}
// Returns the pending record immediately; the pipeline run continues in
// the background and is observed by polling the fetch endpoint.
func (r *Router) handleStartAnalysis(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RepositoryURL string `json:"repositoryUrl"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domain.ErrInvalidRepositoryURL
	}

	rec, err := r.svc.StartAnalysis(req.Context(), body.RepositoryURL)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusAccepted, rec)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	rec, err := r.svc.Get(req.Context(), domain.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /v1/analyses/{id}/recalculate
// Body: {"assumptions": [<full hypothesis set>]}
func (r *Router) handleRecalculate(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	var body struct {
		Assumptions []domain.Hypothesis `json:"assumptions"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	rec, err := r.svc.Recalculate(req.Context(), domain.AnalysisID(id), body.Assumptions)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/failures/latest?limit=20
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.LatestFailures(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}
