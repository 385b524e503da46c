package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gggpa/tickscrape/internal/dbg"
	"github.com/gggpa/tickscrape/internal/scrape"
	"github.com/gggpa/tickscrape/internal/sink"
	"github.com/gggpa/tickscrape/internal/store"
	"github.com/gggpa/tickscrape/pkg/tickdata"
)

const (
	refDataService      = "//tds/refdata"
	intradayTickRequest = "IntradayTickRequest"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		// flag has already printed the usage message
		return
	}

	logger := dbg.NewLogger(cfg.verbose)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("intraday tick scraper started")

	if !cfg.nonInteractive {
		if err := cfg.promptMissing(os.Stdin, os.Stdout); err != nil {
			logger.Error("prompt failed", zap.Error(err))
			return
		}
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
	}
	logger.Info("intraday tick scraper finished")

	if !cfg.nonInteractive {
		fmt.Println("Press ENTER to quit")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	}
}

func run(cfg config, logger *zap.Logger) (err error) {
	// Faults from the transport path must not crash past the normal
	// shutdown/prompt sequence.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("library fault: %v", r)
		}
	}()

	request, err := scrape.BuildRequest(cfg.security, cfg.events, cfg.start, cfg.end, time.Now().UTC())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("connecting", zap.String("host", cfg.host), zap.Int("port", cfg.port))
	client, err := tickdata.Dial(ctx, logger, cfg.host, cfg.port)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer client.Close()

	if err := client.OpenService(ctx, refDataService); err != nil {
		return fmt.Errorf("failed to open %s: %w", refDataService, err)
	}

	sinks, archive, cleanup, err := buildSinks(ctx, cfg, request.Security)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("sending request",
		zap.String("security", request.Security),
		zap.Strings("eventTypes", request.EventTypes),
		zap.String("start", request.StartDateTime),
		zap.String("end", request.EndDateTime))

	if err := client.SendRequest(ctx, refDataService, intradayTickRequest, request); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	if err := scrape.NewLoop(client, sinks, logger).Run(ctx); err != nil {
		return err
	}

	if archive != nil {
		if n, err := archive.Count(ctx); err != nil {
			logger.Warn("unable to count archived ticks", zap.Error(err))
		} else {
			logger.Info("ticks archived", zap.Int64("total", n))
		}
	}
	return nil
}

func buildSinks(ctx context.Context, cfg config, security string) (sink.Fanout, *store.Archive, func(), error) {
	var sinks sink.Fanout
	cleanup := func() {}

	if cfg.singlePath != "" {
		single, err := sink.NewSingle(cfg.singlePath)
		if err != nil {
			return nil, nil, cleanup, err
		}
		sinks = append(sinks, single)
	} else {
		sinks = append(sinks, sink.NewRotating(cfg.outDir, security))
	}

	var archive *store.Archive
	if cfg.duckdbPath != "" {
		st, err := store.Open(cfg.duckdbPath)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanup = func() { _ = st.Close() }

		archive, err = st.Ensure(ctx, security)
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		sinks = append(sinks, archive)
	}

	return sinks, archive, cleanup, nil
}
