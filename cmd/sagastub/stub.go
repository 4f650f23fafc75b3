package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Wire types mirror the saga host's JSON casing.

type wireEntry struct {
	Timestamp time.Time `json:"Timestamp"`
	LogLevel  int       `json:"LogLevel"`
	Message   string    `json:"Message"`
}

type wireScope struct {
	MessageID   string      `json:"MessageId"`
	MessageType string      `json:"MessageType"`
	Started     time.Time   `json:"Started"`
	Entries     []wireEntry `json:"Entries"`
}

type statePayload struct {
	CurrentState string      `json:"CurrentState"`
	LastError    *string     `json:"LastError"`
	Log          *logPayload `json:"Log,omitempty"`
	LogScope     *wireScope  `json:"LogScope"`
	OrderID      string      `json:"OrderId"`
}

type logPayload struct {
	Scopes []wireScope `json:"Scopes"`
}

// stubSaga is the scripted workflow: a state cycle advanced on a timer,
// with optional injected faults, a growing scope log, and SSE fan-out to
// every connected observer.
type stubSaga struct {
	logger *slog.Logger

	mu          sync.Mutex
	states      []string
	idx         int
	lastError   string
	paused      bool
	removed     bool
	transitions int
	failEvery   int
	orderID     string
	scopes      []wireScope // oldest-first
	subs        map[chan []byte]struct{}

	done   chan struct{}
	ticker *time.Ticker
}

func newStubSaga(states []string, failEvery int, logger *slog.Logger) *stubSaga {
	if len(states) == 0 {
		states = []string{"Submitted", "Completed"}
	}
	return &stubSaga{
		logger:    logger,
		states:    states,
		failEvery: failEvery,
		orderID:   uuid.NewString(),
		subs:      make(map[chan []byte]struct{}),
		done:      make(chan struct{}),
	}
}

func (s *stubSaga) start(interval time.Duration) {
	s.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.advance()
			}
		}
	}()
}

func (s *stubSaga) stop() {
	s.ticker.Stop()
	close(s.done)
}

// advance moves the saga one state forward and broadcasts the update.
func (s *stubSaga) advance() {
	s.mu.Lock()
	if s.paused || s.removed {
		s.mu.Unlock()
		return
	}

	s.transitions++
	if s.failEvery > 0 && s.transitions%s.failEvery == 0 {
		s.lastError = "simulated timeout talking to payment provider"
	} else {
		s.lastError = ""
		s.idx = (s.idx + 1) % len(s.states)
	}

	state := s.states[s.idx]
	scope := buildScope(state, s.lastError)
	s.scopes = append(s.scopes, scope)
	payload := s.payloadLocked(&scope, false)
	s.mu.Unlock()

	s.logger.Info("transition", "state", state, "fault", s.lastError != "")
	s.broadcast(payload)
}

// payloadLocked builds the wire payload. Snapshot payloads carry the full
// oldest-first log; stream payloads carry only the newest scope.
func (s *stubSaga) payloadLocked(scope *wireScope, snapshot bool) []byte {
	p := statePayload{
		CurrentState: s.states[s.idx],
		LogScope:     scope,
		OrderID:      s.orderID,
	}
	if s.lastError != "" {
		p.LastError = &s.lastError
	}
	if snapshot {
		scopes := make([]wireScope, len(s.scopes))
		copy(scopes, s.scopes)
		p.Log = &logPayload{Scopes: scopes}
	}

	data, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("encode payload", "error", err)
		return nil
	}
	return data
}

func buildScope(state, lastError string) wireScope {
	started := time.Now()
	entries := []wireEntry{
		{Timestamp: started, LogLevel: 2, Message: "message received"},
		{Timestamp: started.Add(time.Duration(5+rand.Intn(40)) * time.Millisecond),
			LogLevel: 1, Message: "transitioning to " + state},
	}
	if lastError != "" {
		entries = append(entries, wireEntry{
			Timestamp: started.Add(60 * time.Millisecond),
			LogLevel:  4,
			Message:   lastError,
		})
	}
	return wireScope{
		MessageID:   uuid.NewString(),
		MessageType: state + "Message",
		Started:     started,
		Entries:     entries,
	}
}

func (s *stubSaga) broadcast(payload []byte) {
	if payload == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- payload:
		default:
			// Slow subscriber: drop rather than stall the saga.
		}
	}
}

func (s *stubSaga) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *stubSaga) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *stubSaga) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var latest *wireScope
	if len(s.scopes) > 0 {
		sc := s.scopes[len(s.scopes)-1]
		latest = &sc
	}
	payload := s.payloadLocked(latest, true)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *stubSaga) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-ch:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func (s *stubSaga) handlePublish(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	s.mu.Lock()
	switch command {
	case "PauseSaga":
		s.paused = true
	case "ResumeSaga":
		s.paused = false
	case "RemoveSaga":
		s.removed = true
	case "RestartSaga":
		s.idx = 0
		s.lastError = ""
		s.paused = false
	case "RetryFaultedActivity":
		s.lastError = ""
	default:
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "unknown_command", command)
		return
	}
	payload := s.payloadLocked(nil, false)
	s.mu.Unlock()

	s.logger.Info("command applied", "command", command, "company_id", body["CompanyId"])
	s.broadcast(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted", "command": command})
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "detail": detail})
}
