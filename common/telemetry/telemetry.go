package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/sdhealth/pathway-tracker/common/logger"
)

// Telemetry exposes a pprof listener on a side port
type Telemetry struct {
	pprofPort int
	log       *logger.Logger
	server    *http.Server
}

// New creates a telemetry component
func New(pprofPort int, log *logger.Logger) *Telemetry {
	return &Telemetry{
		pprofPort: pprofPort,
		log:       log,
	}
}

// Start begins serving pprof endpoints in the background
func (t *Telemetry) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	t.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", t.pprofPort),
		Handler: mux,
	}

	go func() {
		t.log.Info("pprof listening", "port", t.pprofPort)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.log.Warn("pprof server stopped", "error", err)
		}
	}()

	return nil
}

// Stop shuts the telemetry listener down
func (t *Telemetry) Stop(ctx context.Context) error {
	if t.server == nil {
		return nil
	}
	return t.server.Shutdown(ctx)
}
