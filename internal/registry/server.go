package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"seahorse/internal/domain"
	"seahorse/internal/protocol/handshake"
)

// maxBodyBytes caps request bodies. Slots hold whole encrypted payloads.
const maxBodyBytes = 4 << 20

// Server exposes a Registry over HTTP.
type Server struct {
	reg     domain.Registry
	log     logrus.FieldLogger
	prom    *prometheus.Registry
	metrics *metrics
	mux     *http.ServeMux
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the access and error logger.
func WithServerLogger(log logrus.FieldLogger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithPrometheus registers metrics with reg instead of a private registry.
func WithPrometheus(reg *prometheus.Registry) ServerOption {
	return func(s *Server) { s.prom = reg }
}

// NewServer returns an http.Handler serving reg.
func NewServer(reg domain.Registry, opts ...ServerOption) *Server {
	s := &Server{reg: reg, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.prom == nil {
		s.prom = prometheus.NewRegistry()
		s.prom.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	s.metrics = newMetrics(s.prom)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/requests/{id}", s.putRequest)
	mux.HandleFunc("GET /v1/requests/{id}", s.getRequest)
	mux.HandleFunc("DELETE /v1/requests/{id}", s.deleteRequest)
	mux.HandleFunc("GET /v1/requests", s.listRequests)
	mux.HandleFunc("PUT /v1/slots/{account}", s.putSlot)
	mux.HandleFunc("GET /v1/slots/{account}", s.getSlot)
	mux.HandleFunc("DELETE /v1/slots/{account}", s.deleteSlot)
	mux.HandleFunc("DELETE /v1/accounts/{account}", s.clearAccount)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.prom, promhttp.HandlerOpts{}))
	s.mux = mux
	return s
}

// ServeHTTP routes r and records an access log line and metrics for it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	elapsed := time.Since(start)

	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())

	s.log.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote":     r.RemoteAddr,
		"status":     rec.status,
		"bytes":      rec.bytes,
		"duration":   elapsed.String(),
		"request_id": r.Header.Get(RequestIDHeader),
	}).Info("request")
}

func (s *Server) putRequest(w http.ResponseWriter, r *http.Request) {
	id := domain.RequestID(r.PathValue("id"))
	var fr domain.FriendRequest
	if !decodeBody(w, r, &fr) {
		return
	}
	if fr.From == "" || fr.To == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	if want := handshake.RequestID(fr.From, fr.To); want != id {
		writeError(w, http.StatusBadRequest, "request id must be "+want.String())
		return
	}
	if err := s.reg.PutFriendRequest(r.Context(), id, fr); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	fr, ok, err := s.reg.GetFriendRequest(r.Context(), domain.RequestID(r.PathValue("id")))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.reg.DeleteFriendRequest(r.Context(), domain.RequestID(r.PathValue("id"))); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.RequestFilter{
		From:      domain.AccountID(q.Get("from")),
		To:        domain.AccountID(q.Get("to")),
		Involving: domain.AccountID(q.Get("involving")),
	}
	if st := q.Get("status"); st != "" {
		parsed, err := domain.ParseRequestStatus(st)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Status = parsed
	}
	out, err := s.reg.ListFriendRequests(r.Context(), f)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.FriendRequest{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putSlot(w http.ResponseWriter, r *http.Request) {
	var body slotBody
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.reg.PutEncryptedSlot(r.Context(), domain.AccountID(r.PathValue("account")), body.Data); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSlot(w http.ResponseWriter, r *http.Request) {
	data, ok, err := s.reg.GetEncryptedSlot(r.Context(), domain.AccountID(r.PathValue("account")))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "slot not found")
		return
	}
	writeJSON(w, http.StatusOK, slotBody{Data: data})
}

func (s *Server) deleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.reg.DeleteEncryptedSlot(r.Context(), domain.AccountID(r.PathValue("account"))); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearAccount(w http.ResponseWriter, r *http.Request) {
	clearer, ok := s.reg.(domain.AccountClearer)
	if !ok {
		writeError(w, http.StatusNotImplemented, "backend cannot clear accounts")
		return
	}
	if err := clearer.ClearAccount(r.Context(), domain.AccountID(r.PathValue("account"))); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithField("path", r.URL.Path).Error("registry backend failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		status := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusRecorder captures the status code and body size for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
