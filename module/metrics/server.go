package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	metricsprom "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

const shutdownTimeout = 5 * time.Second

// Server serves the /metrics endpoint of a registry for prometheus.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a server listening on the given port that exposes the
// metrics of the given registry. Requests to the endpoint are themselves
// measured into the same registry.
func NewServer(log zerolog.Logger, port uint, registry *prometheus.Registry) *Server {
	addr := ":" + strconv.Itoa(int(port))

	recorder := middleware.New(middleware.Config{
		Recorder: metricsprom.NewRecorder(metricsprom.Config{
			Registry: registry,
			Prefix:   namespaceTimestamp,
		}),
	})

	mux := http.NewServeMux()
	endpoint := "/metrics"
	mux.Handle(endpoint, std.Handler(endpoint, recorder, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: shutdownTimeout},
		log:    log.With().Str("component", "metrics_server").Str("address", addr).Str("endpoint", endpoint).Logger(),
	}
}

// Start binds the listener and serves in the background.
func (m *Server) Start() error {
	listener, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return err
	}
	m.log.Info().Msg("metrics server started")

	go func() {
		err := m.server.Serve(listener)
		// http.ErrServerClosed is returned when Close or Shutdown is called
		// we don't consider this an error, so print this with debug level instead
		if errors.Is(err, http.ErrServerClosed) {
			m.log.Debug().Err(err).Msg("metrics server shutdown")
			return
		}
		m.log.Err(err).Msg("error serving metrics")
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (m *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return m.server.Shutdown(ctx)
}
