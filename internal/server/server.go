// Package server exposes the sequencer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/export"
	"github.com/tessro/stave/internal/notation"
	"github.com/tessro/stave/internal/sequencer"
)

// Runner runs engine operations one at a time. *sequencer.Loop satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func(*sequencer.Engine)) error
	View(ctx context.Context) (sequencer.SessionView, error)
}

// Server routes HTTP requests onto a Runner.
type Server struct {
	runner  Runner
	logger  *zap.Logger
	origins []string
	router  *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l.Named("server")
	}
}

// WithOrigins sets the origins allowed by CORS.
func WithOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// New creates a server for runner.
func New(runner Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  zap.NewNop(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(s.logRequests)

	r.HandleFunc("/parts", s.handleView).Methods("GET")
	r.HandleFunc("/parts", s.handleAddPart).Methods("POST")
	r.HandleFunc("/parts/{part:[0-9]+}", s.handleRemovePart).Methods("DELETE")
	r.HandleFunc("/parts/{part:[0-9]+}/instrument", s.handleInstrument).Methods("PUT")
	r.HandleFunc("/parts/{part:[0-9]+}/{action:play|pause|stop|loop|record|select}", s.handlePartAction).Methods("POST")
	r.HandleFunc("/parts/{part:[0-9]+}/chords/{chord:[0-9]+}/select", s.handleSelectChord).Methods("POST")
	r.HandleFunc("/parts/{part:[0-9]+}/chords/{chord:[0-9]+}", s.handleDeleteChord).Methods("DELETE")
	r.HandleFunc("/keys/{pitch}/{dir:down|up}", s.handleKey).Methods("POST")
	r.HandleFunc("/octave/{octave:[0-9]+}", s.handleOctave).Methods("PUT")
	r.HandleFunc("/undo", s.handleUndo).Methods("POST")
	r.HandleFunc("/edit/{op:transpose-up|transpose-down|lengthen|shorten|delete}", s.handleEdit).Methods("POST")
	r.HandleFunc("/export", s.handleExport).Methods("GET")

	return r
}

// Handler returns the routed handler wrapped with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// mutate runs fn on the loop and answers with the resulting view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(e *sequencer.Engine) error) {
	var (
		view  sequencer.SessionView
		opErr error
	)
	err := s.runner.Do(r.Context(), func(e *sequencer.Engine) {
		if opErr = fn(e); opErr == nil {
			view = e.View()
		}
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, view)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.runner.View(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddPart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusCreated, func(e *sequencer.Engine) error {
		e.AddPart()
		return nil
	})
}

func (s *Server) handleRemovePart(w http.ResponseWriter, r *http.Request) {
	part := intVar(r, "part")
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		return e.RemovePart(part)
	})
}

type instrumentRequest struct {
	Instrument string `json:"instrument"`
}

func (s *Server) handleInstrument(w http.ResponseWriter, r *http.Request) {
	part := intVar(r, "part")
	var req instrumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Instrument == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "body must be {\"instrument\": \"<id>\"}"})
		return
	}
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		return e.SetInstrument(part, req.Instrument)
	})
}

func (s *Server) handlePartAction(w http.ResponseWriter, r *http.Request) {
	part := intVar(r, "part")
	action := mux.Vars(r)["action"]
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		switch action {
		case "play":
			return e.Play(part)
		case "pause":
			return e.Pause(part)
		case "stop":
			return e.Stop(part)
		case "loop":
			return e.ToggleLoop(part)
		case "record":
			return e.ToggleRecord(part)
		default:
			return e.SelectPart(part)
		}
	})
}

func (s *Server) handleSelectChord(w http.ResponseWriter, r *http.Request) {
	part, chord := intVar(r, "part"), intVar(r, "chord")
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		return e.Select(part, chord)
	})
}

func (s *Server) handleDeleteChord(w http.ResponseWriter, r *http.Request) {
	part, chord := intVar(r, "part"), intVar(r, "chord")
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		return e.DeleteChord(part, chord)
	})
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pitch, err := core.ParsePitch(vars["pitch"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	down := vars["dir"] == "down"
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		if down {
			e.KeyDown(pitch)
		} else {
			e.KeyUp(pitch)
		}
		return nil
	})
}

func (s *Server) handleOctave(w http.ResponseWriter, r *http.Request) {
	octave := intVar(r, "octave")
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		e.SetOctave(octave)
		return nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		e.Undo()
		return nil
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	op := mux.Vars(r)["op"]
	s.mutate(w, r, http.StatusOK, func(e *sequencer.Engine) error {
		switch op {
		case "transpose-up":
			e.TransposeSelected(true)
		case "transpose-down":
			e.TransposeSelected(false)
		case "lengthen":
			e.LengthenSelected()
		case "shorten":
			e.ShortenSelected()
		default:
			e.DeleteSelected()
		}
		return nil
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = "json"
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var data []core.PartData
	ladder := notation.Default
	err = s.runner.Do(r.Context(), func(e *sequencer.Engine) {
		data = core.ToData(e.Session().Parts)
		ladder = e.Ladder()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if err := export.Write(w, format, data, ladder); err != nil {
		s.logger.Warn("export failed", zap.Error(err))
	}
}

type errorBody struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{
		Error:      err.Error(),
		Suggestion: staveerrors.GetSuggestion(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, staveerrors.ErrPartOutOfRange),
		errors.Is(err, staveerrors.ErrChordOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, staveerrors.ErrUnknownPitch),
		errors.Is(err, staveerrors.ErrUnsupportedFormat),
		errors.Is(err, staveerrors.ErrUnknownInstrument):
		return http.StatusBadRequest
	case errors.Is(err, sequencer.ErrLoopClosed),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// intVar reads a route variable the router already constrained to digits.
func intVar(r *http.Request, name string) int {
	i, _ := strconv.Atoi(mux.Vars(r)[name])
	return i
}
