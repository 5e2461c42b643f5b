// Command tlccore runs the reconcile loop as a standalone process:
// wire up tuning and an optional settings store, start the loop, and
// block until the process is asked to shut down.
// The thin RPC surface a UI would speak to this process over is an
// external collaborator; this binary only owns the loop itself.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/tlc-project/tlc-core/internal/config"
	"github.com/tlc-project/tlc-core/internal/core"
	"github.com/tlc-project/tlc-core/internal/monitoring"
	"github.com/tlc-project/tlc-core/internal/setting"
)

func main() {
	tuningPath := flag.String("tuning", "", "path to a tuning config JSON file (defaults to config/tuning.defaults.json)")
	storePath := flag.String("store", "", "path to the sqlite settings store (disabled if empty)")
	flag.Parse()

	tuning := loadTuning(*tuningPath)

	var store *setting.Store
	if *storePath != "" {
		s, err := setting.OpenStore(*storePath, monitoring.Logf)
		if err != nil {
			monitoring.Logf("open setting store %s: %v", *storePath, err)
			return
		}
		defer s.Close()
		store = s
	}

	// No ContainerReader ships in this module: parsing a specific video
	// container format is an external collaborator (videosrc package
	// doc). ReadVideoMeta requests fail with a logged reason until a
	// deployment supplies one.
	gs := core.NewGlobalState(tuning, nil)
	gs.Store = store

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requests := make(chan core.Request)

	errc := make(chan error, 1)
	go func() { errc <- core.Reconcile(ctx, gs, requests) }()

	monitoring.Logf("tlccore: reconcile loop running")
	<-ctx.Done()
	monitoring.Logf("tlccore: shutting down: %v", <-errc)
}

func loadTuning(path string) *config.TuningConfig {
	if path != "" {
		cfg, err := config.LoadTuningConfig(path)
		if err != nil {
			monitoring.Logf("load tuning config %s: %v, falling back to defaults", path, err)
		} else {
			return cfg
		}
	}
	cfg, err := config.LoadTuningConfig(config.DefaultConfigPath)
	if err != nil {
		monitoring.Logf("load default tuning config: %v, using empty config", err)
		return config.EmptyTuningConfig()
	}
	return cfg
}
