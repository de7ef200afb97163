package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nimbus-mining/poolclient/engine"
	"github.com/nimbus-mining/poolclient/internal/config"
	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/internal/statusapi"
	"github.com/nimbus-mining/poolclient/poolmanager"
	"github.com/nimbus-mining/poolclient/stratum/client"
)

const (
	responseTimeout  = 30 * time.Second
	workStaleTimeout = 2 * time.Minute
	parallelReqLimit = 8
)

func main() {
	if err := start(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(0)
}

func start() error {
	var cfg config.Config
	if err := config.LoadConfig(&cfg, &os.Args); err != nil {
		return err
	}

	log, err := lib.NewLogger(cfg.Log.Level, true, false, false, "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Infof("poolclient %s", config.BuildVersion)
	log.Infof("config: %s", cfg.String())

	hashrateReportingTime, err := time.ParseDuration(cfg.Engine.HashrateReportingTime)
	if err != nil {
		return lib.WrapError(config.ErrConfigInvalid, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("received signal: %s, forcing exit", s)
		os.Exit(1)
	}()

	cl := client.New(log.Named("client"), responseTimeout, workStaleTimeout, parallelReqLimit, config.BuildVersion)
	adapter := engine.NewNoop()

	mgr := poolmanager.New(cl, adapter, cfg.Engine.Modes, log.Named("pool"), cfg.Pool.ReconnectTries, hashrateReportingTime)

	dialect := config.ParseDialect(cfg.Pool.Dialect)
	for _, addr := range cfg.CredentialedAddresses() {
		if err := mgr.AddConnection(addr, dialect); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mgr.Start(ctx)
	})

	if cfg.API.Enabled {
		api := statusapi.New(cfg.API.Listen, mgr, log.Named("api"))
		g.Go(func() error {
			return api.Run(ctx)
		})
	}

	<-ctx.Done()
	mgr.Stop()

	err = g.Wait()
	log.Infof("exiting: %s", err)
	return err
}
