// Command sagastub is a development stand-in for the saga host. It walks a
// scripted order saga through its states on a timer and exposes the same
// HTTP surface the observer consumes: a state snapshot, a server-sent-event
// stream, and the command publish endpoint.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	interval := flag.Duration("interval", 3*time.Second, "time between state transitions")
	states := flag.String("states", "Submitted,Processing,Dispatching,Completed", "comma-separated state cycle")
	failEvery := flag.Int("fail-every", 0, "inject a fault every N transitions (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	stub := newStubSaga(splitStates(*states), *failEvery, logger)
	stub.start(*interval)
	defer stub.stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/saga/{companyID}", func(r chi.Router) {
		r.Get("/state", stub.handleState)
		r.Get("/sse", stub.handleStream)
		r.Post("/publish/{command}", stub.handlePublish)
	})

	logger.Info("sagastub listening", "addr", *addr, "states", *states)
	if err := http.ListenAndServe(*addr, r); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func splitStates(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
