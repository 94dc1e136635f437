// Package api is the HTTP control surface: read and update channel state,
// list patterns and devices, and stream state changes over a websocket.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-stripd/internal/state"
)

// MaxBodyBytes caps a /set request body.
const MaxBodyBytes = 500

type Options struct {
	Patterns []string
	Devices  []string
	// Frames reports the render loop's frame counter for /health.
	Frames func() uint64
	// StaticDir, when set, is served at / for the browser control page.
	StaticDir string
	Log       zerolog.Logger
}

type Server struct {
	store    *state.Store
	opts     Options
	log      zerolog.Logger
	start    time.Time
	upgrader websocket.Upgrader
}

type message struct {
	Msg string `json:"msg"`
}

var (
	msgOK        = message{Msg: "OK"}
	msgInvalidID = message{Msg: "invalid ID"}
)

func New(store *state.Store, opts Options) *Server {
	return &Server{
		store: store,
		opts:  opts,
		log:   opts.Log.With().Str("component", "api").Logger(),
		start: time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/get/{id}", s.handleGet)
	r.Post("/set/{id}", s.handleSet)
	r.Get("/patterns", s.handleList(s.opts.Patterns))
	r.Get("/devices", s.handleList(s.opts.Devices))
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleStateWS)

	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func channelID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, msgInvalidID)
		return
	}
	c, err := s.store.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, msgInvalidID)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok || id >= s.store.Len() {
		writeJSON(w, http.StatusNotFound, msgInvalidID)
		return
	}

	var update state.Channel
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, message{Msg: "body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, message{Msg: "invalid body"})
		return
	}

	if _, err := s.store.Update(id, update); err != nil {
		if errors.Is(err, state.ErrChannelRange) {
			writeJSON(w, http.StatusNotFound, msgInvalidID)
			return
		}
		s.log.Error().Err(err).Int("channel", id).Msg("update failed")
		writeJSON(w, http.StatusInternalServerError, message{Msg: "update failed"})
		return
	}
	writeJSON(w, http.StatusOK, msgOK)
}

func (s *Server) handleList(names []string) http.HandlerFunc {
	if names == nil {
		names = []string{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, names)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var frames uint64
	if s.opts.Frames != nil {
		frames = s.opts.Frames()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"frame_id": frames,
		"uptime_s": time.Since(s.start).Seconds(),
		"channels": s.store.Len(),
	})
}

// requestLog tags each request with an id and logs it once it completes.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("req_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
