// Package web serves a localhost-only JSON API for reviewing and resolving
// worklog conflicts; it has no auth of its own.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"clockfix/erpapi"
	"clockfix/flow"
	"clockfix/internal/log"
	"clockfix/resolve"
	"clockfix/storage"
	"clockfix/worklog"

	"github.com/rs/zerolog"
)

const defaultHistoryLimit = 50

// AttemptLister reads the resolution journal.
type AttemptLister interface {
	ListAttempts(limit int) ([]storage.Attempt, error)
}

type Server struct {
	client   erpapi.Client
	resolver flow.Resolver
	journal  AttemptLister
	timeout  time.Duration
	logger   zerolog.Logger
	mux      *http.ServeMux

	mu          sync.Mutex
	controllers map[string]*flow.Controller
}

type deletePreviewRequest struct {
	RecordID worklog.RecordID `json:"recordId"`
}

// NewServer wires the handlers. journal may be nil, timeout <= 0 disables
// the per-request API deadline.
func NewServer(client erpapi.Client, resolver flow.Resolver, journal AttemptLister, timeout time.Duration) http.Handler {
	server := &Server{
		client:      client,
		resolver:    resolver,
		journal:     journal,
		timeout:     timeout,
		logger:      log.WithComponent("web"),
		controllers: make(map[string]*flow.Controller),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conflicts", server.handleListConflicts)
	mux.HandleFunc("GET /api/groups/{key}", server.handleGetGroup)
	mux.HandleFunc("POST /api/groups/{key}/menu", server.handleGroupEvent(func(ctx context.Context, c *flow.Controller, r *http.Request) error {
		return c.OpenMenu()
	}))
	mux.HandleFunc("POST /api/groups/{key}/delete-preview", server.handleGroupEvent(func(ctx context.Context, c *flow.Controller, r *http.Request) error {
		var req deletePreviewRequest
		if err := decodeJSON(r, &req); err != nil {
			return badRequest(err)
		}
		return c.StageDelete(req.RecordID)
	}))
	mux.HandleFunc("POST /api/groups/{key}/split-preview", server.handleGroupEvent(func(ctx context.Context, c *flow.Controller, r *http.Request) error {
		return c.StageSplit()
	}))
	mux.HandleFunc("POST /api/groups/{key}/cancel", server.handleGroupEvent(func(ctx context.Context, c *flow.Controller, r *http.Request) error {
		c.Cancel()
		return nil
	}))
	mux.HandleFunc("POST /api/groups/{key}/confirm", server.handleGroupEvent(func(ctx context.Context, c *flow.Controller, r *http.Request) error {
		return c.Confirm(ctx)
	}))
	mux.HandleFunc("GET /api/resolutions", server.handleListResolutions)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleListConflicts always re-fetches and replaces every controller, so a
// key never outlives the listing that produced it.
func (s *Server) handleListConflicts(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()
	groups, err := s.client.ListConflicts(ctx, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("from", erpapi.FormatDay(from)).Str("to", erpapi.FormatDay(to)).Msg("list conflicts failed")
		http.Error(w, fmt.Sprintf("load conflicts: %v", err), http.StatusBadGateway)
		return
	}

	keys := GroupKeys(groups)
	views := make([]groupView, 0, len(groups))

	controllers := make(map[string]*flow.Controller, len(groups))
	for i, group := range groups {
		controller := flow.New(group, s.resolver)
		controllers[keys[i]] = controller
		views = append(views, buildGroupView(keys[i], controller))
	}

	s.mu.Lock()
	s.controllers = controllers
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, conflictsResponse{
		From:   erpapi.FormatDay(from),
		To:     erpapi.FormatDay(to),
		Groups: views,
	})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	s.mu.Lock()
	defer s.mu.Unlock()
	controller, ok := s.controllers[key]
	if !ok {
		http.Error(w, "conflict group not loaded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, buildGroupView(key, controller))
}

type groupEvent func(ctx context.Context, c *flow.Controller, r *http.Request) error

// handleGroupEvent runs one state machine event while holding the server
// lock, so events on the same group never interleave.
func (s *Server) handleGroupEvent(event groupEvent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")

		s.mu.Lock()
		defer s.mu.Unlock()

		controller, ok := s.controllers[key]
		if !ok {
			http.Error(w, "conflict group not loaded", http.StatusNotFound)
			return
		}

		ctx, cancel := s.apiContext(r.Context())
		defer cancel()
		if err := event(ctx, controller, r); err != nil {
			status := eventErrorStatus(err)
			if status >= http.StatusInternalServerError {
				s.logger.Error().Err(err).Str("group", key).Msg("conflict resolution failed")
			}
			http.Error(w, err.Error(), status)
			return
		}

		writeJSON(w, http.StatusOK, buildGroupView(key, controller))
	}
}

func (s *Server) handleListResolutions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeJSON(w, http.StatusOK, []attemptView{})
		return
	}

	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	attempts, err := s.journal.ListAttempts(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]attemptView, 0, len(attempts))
	for _, attempt := range attempts {
		views = append(views, buildAttemptView(attempt))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) apiContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.timeout)
}

type requestError struct {
	err error
}

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{err: err}
}

func eventErrorStatus(err error) int {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrInvalidTransition), errors.Is(err, flow.ErrStale):
		return http.StatusConflict
	case errors.Is(err, flow.ErrNotOffered),
		errors.Is(err, flow.ErrNotCandidate),
		errors.Is(err, resolve.ErrMissingRecordID),
		errors.Is(err, resolve.ErrInvalidInterval),
		errors.Is(err, resolve.ErrNotContained),
		errors.Is(err, resolve.ErrNotInGroup):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	fromRaw = strings.TrimSpace(fromRaw)
	toRaw = strings.TrimSpace(toRaw)
	if fromRaw == "" {
		return time.Time{}, time.Time{}, errors.New("from is required (expected YYYY-MM-DD)")
	}
	if toRaw == "" {
		toRaw = fromRaw
	}

	from, err := erpapi.ParseDay(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
	}
	to, err := erpapi.ParseDay(toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, errors.New("invalid range: from must be <= to")
	}
	return from, to, nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
