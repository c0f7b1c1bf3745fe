package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/mint-sync/internal/adapter"
	"github.com/feral-file/mint-sync/internal/config"
	"github.com/feral-file/mint-sync/internal/logger"
	"github.com/feral-file/mint-sync/internal/poller"
	"github.com/feral-file/mint-sync/internal/projector"
	"github.com/feral-file/mint-sync/internal/providers/ethereum"
	"github.com/feral-file/mint-sync/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSyncdConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "syncd",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting mint sync daemon")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	// Connect to the Ethereum endpoint
	chainLedger, err := ethereum.NewLedger(
		ctx,
		adapter.NewEthClientDialer(),
		cfg.Ethereum.RPCURL,
		cfg.Ethereum.ContractAddress,
		cfg.Ethereum.StartBlock,
		cfg.Ethereum.Confirmations,
		cfg.Ethereum.MaxBlockRange,
	)
	if err != nil {
		logger.Fatal("Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	defer chainLedger.Close()
	logger.InfoCtx(ctx, "Connected to Ethereum RPC",
		zap.String("chain_id", string(cfg.Ethereum.ChainID)),
		zap.String("contract", cfg.Ethereum.ContractAddress),
	)

	proj := projector.NewProjector(dataStore, cfg.Sync.MediaBaseURL, cfg.Sync.StoreTimeout)
	p := poller.NewPoller(
		chainLedger,
		proj,
		dataStore,
		clock,
		string(cfg.Ethereum.ChainID),
		cfg.Sync.PollInterval,
		cfg.Sync.MaxBackoff,
		cfg.Sync.StoreTimeout,
		cfg.Sync.FinalityDepth,
	)

	// Stop on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Sync poller stopped", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Mint sync daemon stopped")
}
