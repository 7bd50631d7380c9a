// Package web is the host interface over HTTP. It is a thin I/O
// wrapper around the core: it forwards parameter updates into the
// ParameterStore and trigger calls into the Arbiter, and renders the
// current snapshot. On the device it is served through the netdev
// network stack; in tests it runs against net/http/httptest.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dptgen/core"
)

// Server exposes the host-interface surface of the pulse generator.
type Server struct {
	store  *core.ParameterStore
	arb    *core.Arbiter
	engine *core.Engine
}

// New wires the handlers to the core components.
func New(store *core.ParameterStore, arb *core.Arbiter, engine *core.Engine) *Server {
	return &Server{store: store, arb: arb, engine: engine}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/set", s.handleSet)
	mux.HandleFunc("/trigger", s.handleTrigger)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/favicon.ico", s.handleFavicon)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	p := s.store.Get()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPage, p.P1High, p.P1Low, p.P2High, p.P2Low)
}

// handleSet applies a form-encoded partial parameter update. Missing
// or garbled fields are ignored per-field; out-of-range values reject
// the whole update and keep the prior values.
func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	u := core.Update{
		P1High: formMicros(r, "p1h"),
		P1Low:  formMicros(r, "p1l"),
		P2High: formMicros(r, "p2h"),
		P2Low:  formMicros(r, "p2l"),
	}

	if err := s.store.Set(u); err != nil {
		if errors.Is(err, core.ErrParamRange) {
			http.Error(w, "Invalid parameters!", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	p := s.store.Get()
	core.DebugPrintln("parameters set via web: " + p.String())
	fmt.Fprint(w, "Parameters Set!")
}

// handleTrigger runs one pulse sequence. The pre-trigger delay is
// applied before the request so it competes fairly with the button
// path; the single-flight slot arbitrates the rest.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	time.Sleep(s.arb.PreTrigger())

	switch err := s.arb.Request(core.SourceNetwork); {
	case err == nil:
		fmt.Fprint(w, "Triggered!")
	case errors.Is(err, core.ErrBusy):
		http.Error(w, "Busy!", http.StatusConflict)
	default:
		http.Error(w, "Trigger failed: "+err.Error(), http.StatusInternalServerError)
	}
}

// handleStatus reports the parameter snapshot and engine state as JSON
// for host tooling.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p := s.store.Get()
	status := struct {
		P1High uint32 `json:"p1h"`
		P1Low  uint32 `json:"p1l"`
		P2High uint32 `json:"p2h"`
		P2Low  uint32 `json:"p2l"`
		State  string `json:"state"`
	}{p.P1High, p.P1Low, p.P2High, p.P2Low, s.engine.State().String()}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

// formMicros parses one decimal microsecond field, returning nil for a
// missing or garbled value so the field keeps its previous setting.
func formMicros(r *http.Request, key string) *uint32 {
	raw := r.PostFormValue(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint32(v)
	return &u
}
