package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"ladderbook/internal/book"
	"ladderbook/internal/config"
	"ladderbook/internal/httpapi"
	"ladderbook/internal/service"
	"ladderbook/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.Logging.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := book.New(cfg.Book.TickSizeDecimal(), cfg.Book.MaxOrderVolumeDecimal())
	svc := service.New(b)

	t, ctx := tomb.WithContext(ctx)

	httpServer := httpapi.NewServer(cfg.HTTP.Addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.IdleTimeout, svc, logger)
	t.Go(func() error {
		return httpServer.Run(ctx)
	})

	if cfg.Simulator.Enabled {
		simCfg := simConfigFromSettings(cfg.Simulator, cfg.Book)
		simulator := sim.New(svc, simCfg, logger)
		t.Go(func() error {
			return simulator.Run(ctx)
		})
	}

	logger.Info().Str("addr", cfg.HTTP.Addr).Bool("simulator", cfg.Simulator.Enabled).Msg("ladderbook venue starting")

	<-ctx.Done()
	if err := t.Wait(); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("venue shut down with error")
		os.Exit(1)
	}
}

func simConfigFromSettings(c config.SimulatorConfig, b config.BookConfig) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.InitPrice = decimalOrDefault(c.InitPrice, cfg.InitPrice)
	cfg.TakeVolume = decimalOrDefault(c.TakeVolume, cfg.TakeVolume)
	cfg.MakeVolume = decimalOrDefault(c.MakeVolume, cfg.MakeVolume)
	cfg.BidProb = c.BidProb
	cfg.Sleep = c.Sleep
	cfg.MarketOrderRate = c.MarketOrderRate
	cfg.Levels = c.Levels
	cfg.NoiseStd = c.NoiseStd
	cfg.PriceStd = c.PriceStd
	cfg.MaxLadderVolume = decimalOrDefault(c.MaxLadderVolume, cfg.MaxLadderVolume)
	cfg.SpikeProb = c.SpikeProb
	cfg.SpikeRefreshes = c.SpikeRefreshes
	cfg.TickSize = b.TickSizeDecimal()
	cfg.MaxOrderVolume = b.MaxOrderVolumeDecimal()
	return cfg
}

func decimalOrDefault(s string, fallback decimal.Decimal) decimal.Decimal {
	if s == "" {
		return fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fallback
	}
	return d
}
