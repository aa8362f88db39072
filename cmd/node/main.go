package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PortalDHT/internal/config"
	"PortalDHT/internal/domain"
	"PortalDHT/internal/logger"
	zapfactory "PortalDHT/internal/logger/zap"
	"PortalDHT/internal/storage"
	"PortalDHT/internal/telemetry"
)

const serviceName = "portaldht-node"

var configPath = flag.String("config", "config/node/config.yaml", "path to the node configuration file")

func main() {
	flag.Parse()

	// carica la configurazione
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	// valida la configurazione
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("validate configuration: %v", err)
	}

	// istanzia il logger
	var lgr logger.Logger = &logger.NopLogger{}
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("init logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }() // svuota il buffer del logger prima di uscire
		lgr = zapfactory.NewZapAdapter(zapLog)
	}
	cfg.LogConfig(lgr)

	// shutdown coordinato via segnali
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry, serviceName)
	if err != nil {
		lgr.Error("init tracing", logger.F("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			lgr.Warn("tracer shutdown", logger.F("err", err))
		}
	}()

	// identità del nodo: id configurato oppure casuale
	var nodeID domain.NodeID
	if cfg.Node.Id != "" {
		nodeID, err = domain.NodeIDFromHex(cfg.Node.Id)
	} else {
		nodeID, err = domain.RandomNodeID()
	}
	if err != nil {
		lgr.Error("node identity", logger.F("err", err))
		os.Exit(1)
	}
	lgr.Info("node identity", logger.FNodeID("id", nodeID))

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		lgr.Error("resolve data dir", logger.F("err", err))
		os.Exit(1)
	}

	engine, err := storage.Open(
		storage.Config{NodeID: nodeID, CapacityKB: cfg.Storage.CapacityKB},
		dataDir,
		storage.WithLogger(lgr.Named("storage")),
	)
	if err != nil {
		lgr.Error("open storage engine", logger.F("err", err))
		os.Exit(1)
	}
	lgr.Info("storage engine ready",
		logger.F("dataDir", dataDir),
		logger.F("capacityKb", cfg.Storage.CapacityKB),
		logger.F("radius", engine.CurrentRadius()))

	engine.StartUsageReporter(ctx, cfg.Storage.ReportInterval)

	<-ctx.Done()
	lgr.Info("shutdown signal received")
	if err := engine.Close(); err != nil {
		lgr.Error("close storage engine", logger.F("err", err))
		os.Exit(1)
	}
	lgr.Info("node stopped")
}
