package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/quanta-dev/quanta/internal/config"
	"github.com/quanta-dev/quanta/internal/inspect"
	"github.com/quanta-dev/quanta/pkg/observe"
	"github.com/quanta-dev/quanta/pkg/quanta"
)

func inspectCmd() *cobra.Command {
	var (
		port int
		host string
		demo bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Start the cell inspector server",
		Long: `Start the inspector HTTP server.

Routes:
  GET /healthz     liveness check
  GET /api/cells   JSON listing of registered cells
  GET /ws          WebSocket stream of cell changes
  GET /metrics     Prometheus metrics

With --demo, a small set of sample cells is registered and
mutated continuously so the endpoints have something to show.

Examples:
  quanta inspect --demo
  quanta inspect --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(port, host, demo)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default from quanta.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from quanta.json)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Register sample cells that update continuously")

	return cmd
}

func runInspect(port int, host string, demo bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		// No project config is fine for a debug server; use defaults.
		cfg = config.New()
	}
	if port != 0 {
		cfg.Inspect.Port = port
	}
	if host != "" {
		cfg.Inspect.Host = host
	}

	registry := prometheus.NewRegistry()
	inst := observe.Prometheus(
		observe.WithRegistry(registry),
		observe.WithNamespace(cfg.Metrics.Namespace),
		observe.WithSubsystem(cfg.Metrics.Subsystem),
	)

	srv := inspect.NewServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope := quanta.NewScope(nil, quanta.ScopeInstrument(inst))
	defer scope.Dispose()

	if demo {
		startDemo(ctx, scope, srv)
	}

	r := chi.NewRouter()
	r.Mount("/", srv.Handler())
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := cfg.InspectAddress()
	success("Inspector listening on http://%s", addr)
	info("cells:   http://%s/api/cells", addr)
	info("stream:  ws://%s/ws", addr)
	info("metrics: http://%s/metrics", addr)

	httpSrv := &http.Server{Addr: addr, Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		errorMsg("Inspector failed: %s", err)
		return err
	}
}

// startDemo registers a few cells and mutates them once a second.
func startDemo(ctx context.Context, scope *quanta.Scope, srv *inspect.Server) {
	var (
		ticks *quanta.Cell[int]
		temp  *quanta.Cell[float64]
		label *quanta.Derived[string]
	)
	scope.Run(func() {
		ticks = quanta.NewCell(0, quanta.WithName("demo:ticks"))
		temp = quanta.NewCell(20.0, quanta.WithName("demo:temperature"))
		label = quanta.NewDerived(func() string {
			if temp.Get() > 25 {
				return "warm"
			}
			return "cool"
		}, quanta.WithName("demo:label"))
	})

	srv.Register(ticks)
	srv.Register(temp)
	srv.Register(label)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ticks.Update(func(n int) int { return n + 1 })
				temp.Update(func(v float64) float64 {
					return v + (rand.Float64()-0.5)*2
				})
			}
		}
	}()

	info("demo cells registered: demo:ticks, demo:temperature, demo:label")
}
