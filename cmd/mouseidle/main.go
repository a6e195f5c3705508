package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/mouseidle/mouseidle/internal/config"
	"github.com/mouseidle/mouseidle/internal/idle"
	"github.com/mouseidle/mouseidle/internal/logging"
	"github.com/mouseidle/mouseidle/pkg/detector"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run drives the detector until ctx is cancelled
func run(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(os.Stdout, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Close()

	backend, err := detector.New()
	if err != nil {
		return errors.Wrap(err, "failed to initialize pointer backend")
	}
	defer backend.Close()

	log.Named("main").Debugf("Pointer backend initialized: %s", backend.GetDisplayServer())

	det, err := idle.New(cfg, backend, idle.Options{
		Logger:   log,
		Actuator: backend,
		OnFatal: func(err error) {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
			_ = log.Close()
			os.Exit(1)
		},
	})
	if err != nil {
		return err
	}

	if err := det.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Drain()
	det.Stop()
	return nil
}
