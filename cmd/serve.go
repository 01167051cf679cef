package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chenBenjamin97/soccer-coach/pkg/api"
	"github.com/chenBenjamin97/soccer-coach/pkg/config"
	"github.com/chenBenjamin97/soccer-coach/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API: self-assessment, video upload and processing, playback,
download and Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.EnsureDirectories(log); err != nil {
		return err
	}

	src, err := config.NewSource(cfg.Pose, log)
	if err != nil {
		return err
	}
	defer src.Close()

	assessor, err := config.NewAssessor(cfg)
	if err != nil {
		return err
	}

	m := metrics.NewManager()

	var limiter *rate.Limiter
	if cfg.Upload.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Upload.Rate), max(cfg.Upload.Burst, 1))
	}

	gin.SetMode(gin.ReleaseMode)
	r := api.SetRouter(&api.Server{
		SourceDir:      cfg.Directory.Source,
		ReadyDir:       cfg.Directory.Ready,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Assessor:       assessor,
		Processor: func(mode string) (api.Processor, error) {
			p, err := config.NewPipeline(cfg, mode, src, assessor, log, m)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		Log:           log,
		Metrics:       m,
		UploadLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errC := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("serve: listening")
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
