// Command kvs-server runs a strata engine behind the TCP wire protocol
// described in spec.md §4.5-§4.6.
//
// Usage:
//
//	kvs-server --addr 127.0.0.1:4000 --engine kvs --data ./data
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/stratadb/strata/internal/engine"
	"github.com/stratadb/strata/internal/server"
	"github.com/stratadb/strata/internal/svcconfig"
	"github.com/stratadb/strata/pkg/logger"
	"github.com/stratadb/strata/pkg/options"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "address to listen on (IP:PORT)")
	engineName := flag.String("engine", "kvs", "storage engine to use: kvs or sled")
	dataDir := flag.String("data", ".", "data directory")
	flag.Parse()

	if *engineName != "kvs" && *engineName != "sled" {
		fmt.Fprintf(os.Stderr, "kvs-server: unknown engine %q (want kvs or sled)\n", *engineName)
		os.Exit(1)
	}
	if *engineName == "sled" {
		fmt.Fprintln(os.Stderr, "kvs-server: engine \"sled\" is not implemented")
		os.Exit(1)
	}

	log := logger.New("kvs-server")
	defer log.Sync()

	if err := svcconfig.CheckEngineSwitch(*dataDir, *engineName); err != nil {
		log.Errorw("refusing to start", "error", err)
		os.Exit(1)
	}
	if err := svcconfig.Save(*dataDir, &svcconfig.Config{Engine: *engineName, DataDir: *dataDir}); err != nil {
		log.Errorw("failed to save server config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := options.NewDefaultOptions()
	options.WithDataDir(*dataDir)(&opts)

	eng, err := engine.Open(ctx, &engine.Config{Logger: log, Options: opts})
	if err != nil {
		log.Errorw("failed to open engine", "error", err, "dataDir", *dataDir)
		os.Exit(1)
	}
	defer func() {
		if err := eng.CloseStore(); err != nil {
			log.Errorw("error closing engine", "error", err)
		}
	}()

	srv := server.New(*addr, eng, log)
	if err := srv.Serve(ctx); err != nil {
		log.Errorw("server exited with error", "error", err)
		os.Exit(1)
	}

	log.Infow("server shut down cleanly")
}
