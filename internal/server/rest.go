package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"goDBDriver/api"
	"goDBDriver/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// restServer exposes any api.Backend over HTTP.
type restServer struct {
	backend api.Backend
	log     logger.Logger
}

// NewHandler returns the REST API for backend, rooted at /1.0.
func NewHandler(backend api.Backend, log logger.Logger) http.Handler {
	s := &restServer{backend: backend, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/1.0", func(r chi.Router) {
		r.Get("/", s.info)
		r.Get("/catalog/objects", s.listObjects)
		r.Post("/operations", s.submit)
		r.Route("/operations/{id}", func(r chi.Router) {
			r.Get("/", s.poll)
			r.Delete("/", s.closeOperation)
			r.Get("/wait", s.wait)
			r.Get("/rows", s.fetch)
			r.Post("/cancel", s.cancel)
			r.Get("/log", s.readLog)
		})
	})
	return r
}

func statusForKind(kind api.ErrorKind) int {
	switch kind {
	case api.KindSyntax:
		return http.StatusBadRequest
	case api.KindNotFound, api.KindUnknown:
		return http.StatusNotFound
	case api.KindNotReady, api.KindCancelled:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *restServer) writeJSON(w http.ResponseWriter, resp api.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("failed writing response", logger.Ctx{"err": err})
	}
}

func (s *restServer) syncResponse(w http.ResponseWriter, metadata any) {
	data, err := json.Marshal(metadata)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.writeJSON(w, api.Response{Type: api.ResponseSync, StatusCode: http.StatusOK, Metadata: data})
}

func (s *restServer) errorResponse(w http.ResponseWriter, err error) {
	re := api.AsRemoteError(err)
	s.writeJSON(w, api.Response{Type: api.ResponseError, StatusCode: statusForKind(re.Kind), Error: re})
}

func (s *restServer) info(w http.ResponseWriter, r *http.Request) {
	info, err := s.backend.Info(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, info)
}

func (s *restServer) listObjects(w http.ResponseWriter, r *http.Request) {
	objs, err := s.backend.ListObjects(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, objs)
}

func (s *restServer) submit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, &api.RemoteError{Kind: api.KindSyntax, Message: "invalid request body: " + err.Error()})
		return
	}

	op, err := s.backend.Submit(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, op)
}

func (s *restServer) poll(w http.ResponseWriter, r *http.Request) {
	st, err := s.backend.Poll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, st)
}

func (s *restServer) wait(w http.ResponseWriter, r *http.Request) {
	st, err := s.backend.Wait(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, st)
}

func (s *restServer) fetch(w http.ResponseWriter, r *http.Request) {
	max := 0
	if v := r.URL.Query().Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, &api.RemoteError{Kind: api.KindSyntax, Message: "invalid max " + strconv.Quote(v)})
			return
		}
		max = n
	}

	batch, err := s.backend.FetchNext(r.Context(), chi.URLParam(r, "id"), max)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	rows := make([]api.Row, len(batch.Rows))
	for i, row := range batch.Rows {
		rows[i] = api.EncodeRow(row)
	}
	s.syncResponse(w, api.RowBatch{Rows: rows, EOF: batch.EOF})
}

func (s *restServer) cancel(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, nil)
}

func (s *restServer) closeOperation(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.CloseOperation(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, nil)
}

func (s *restServer) readLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.backend.ReadLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.syncResponse(w, api.LogResponse{Log: log})
}
