package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stride-works/stride/internal/api"
	"github.com/stride-works/stride/internal/app/admission"
	"github.com/stride-works/stride/internal/app/identity"
	"github.com/stride-works/stride/internal/app/income"
	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/app/stipend"
	"github.com/stride-works/stride/internal/app/support"
	"github.com/stride-works/stride/internal/daemon"
	"github.com/stride-works/stride/internal/infra/notify"
	"github.com/stride-works/stride/internal/infra/observability"
	"github.com/stride-works/stride/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the daily sweeps",
	RunE:  runServe,
}

// services bundles the wired application layer for commands that need it.
type services struct {
	db        *sqlite.DB
	ledger    *ledger.Service
	identity  *identity.Service
	income    *income.Service
	stipend   *stipend.Service
	support   *support.Service
	admission *admission.Service
}

// buildServices opens the store and wires every service against it.
// The caller owns db.Close.
func buildServices(cfg daemon.Config, metrics *observability.Metrics, log zerolog.Logger) (*services, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	led := ledger.New(db, metrics)
	ident := identity.New(db, led, cfg.IdentityService(), metrics, log)
	notifier := notify.NewLogNotifier(log)

	return &services{
		db:        db,
		ledger:    led,
		identity:  ident,
		income:    income.New(db, ident, cfg.IncomeService(), metrics, log),
		stipend:   stipend.New(db, led, cfg.StipendService(), metrics, log),
		support:   support.New(db, led, cfg.SupportService(), metrics, log),
		admission: admission.New(db, notifier, cfg.AdmissionService(), metrics, log),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(false)

	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	svcs, err := buildServices(cfg, metrics, log)
	if err != nil {
		return err
	}
	defer svcs.db.Close()

	server := api.NewServer(
		&api.IncomeAPI{Service: svcs.income},
		&api.StipendAPI{Service: svcs.stipend},
		&api.SupportAPI{Service: svcs.support},
		&api.AdmissionAPI{Service: svcs.admission},
		log,
	)
	if cfg.API.Metrics {
		server.EnableMetrics(reg)
	}

	sched, err := daemon.NewScheduler(svcs.stipend, cfg.Sweep, log)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.API.Addr()).Msg("api server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
