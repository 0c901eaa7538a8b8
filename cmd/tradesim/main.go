package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/JP-Fernando/trading-tool/internal/backtest"
	"github.com/JP-Fernando/trading-tool/internal/diag"
	"github.com/JP-Fernando/trading-tool/internal/event"
	"github.com/JP-Fernando/trading-tool/internal/infra"
	"github.com/JP-Fernando/trading-tool/internal/market"
	"github.com/JP-Fernando/trading-tool/internal/metrics"
	"github.com/JP-Fernando/trading-tool/internal/strategy"
	"github.com/JP-Fernando/trading-tool/pkg/quant"
)

func main() {
	var (
		configPath = flag.String("config", infra.ResolveConfigPath(), "path to config.yaml")
		seed       = flag.Int64("seed", 42, "seed for the simulated feed and demo backtest")
		liveFor    = flag.Duration("live-for", 0, "run the simulated live feed for this long (0 = until interrupted)")
	)
	flag.Parse()

	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = infra.DefaultConfig()
		} else {
			fallback := infra.NewLogger("info")
			fallback.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
	}

	logger := infra.NewLogger(cfg.Logging.Level)
	diag.SetCallback(diag.ZerologCallback(logger))
	logger.Info().Str("version", cfg.App.Version).Msg("starting")

	if cfg.Metrics.Enabled {
		srv := metrics.Serve(cfg.Metrics.Addr)
		defer srv.Close()
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runDemoBacktest(logger, cfg, *seed)

	if err := runLiveFeed(ctx, logger, cfg, *seed, *liveFor); err != nil {
		logger.Fatal().Err(err).Msg("live feed")
	}
	logger.Info().Msg("shutdown complete")
}

// runDemoBacktest replays a deterministic scripted session: the same seed
// always yields the same fills.
func runDemoBacktest(logger zerolog.Logger, cfg *infra.Config, seed int64) {
	event.Warmup()

	model := func(in backtest.SlippageInput) float64 {
		impact := in.MidPrice * 0.0001
		if in.Side == event.Sell {
			impact = -impact
		}
		return in.MidPrice + impact
	}

	exec := backtest.NewExecutionEngine(model,
		backtest.WithCommission(backtest.BasisPointCommission(cfg.Backtest.CommissionBps)))
	engine := backtest.NewEngine(backtest.NewQueue(), exec)

	rng := rand.New(rand.NewSource(seed))
	symbol := cfg.Market.Symbols[0]
	price := 100.0
	var orderSeq uint64

	for i := 0; i < 1000; i++ {
		price += rng.NormFloat64() * 0.25
		ts := quant.MakeTimeStamp(int64(i) * 1000)

		tick := event.AcquireTick()
		tick.Timestamp = ts
		tick.Symbol = symbol
		tick.Bid = price - 0.01
		tick.Ask = price + 0.01
		tick.BidSize = 100
		tick.AskSize = 100
		tick.Last = price
		engine.PushEvent(tick)

		if i%50 == 25 {
			side := event.Buy
			if rng.Intn(2) == 1 {
				side = event.Sell
			}
			engine.PushEvent(event.Order{
				ID:        quant.NextSeq(&orderSeq),
				Timestamp: ts,
				Symbol:    symbol,
				Side:      side,
				Quantity:  1 + float64(rng.Intn(10)),
			})
		}
	}

	if err := engine.Run(); err != nil {
		logger.Error().Err(err).Msg("demo backtest failed")
		return
	}
	logger.Info().
		Str("run_id", engine.RunID()).
		Int("events", engine.Processed()).
		Int("fills", len(exec.GetFills())).
		Int("rejected", len(engine.Errors())).
		Msg("demo backtest done")
}

// runLiveFeed drives the market manager with seeded random-walk ticks, one
// producer per configured symbol, until the context is cancelled.
func runLiveFeed(ctx context.Context, logger zerolog.Logger, cfg *infra.Config, seed int64, liveFor time.Duration) error {
	if liveFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, liveFor)
		defer cancel()
	}

	policy := strategy.EmitOnDetection
	if cfg.Market.EmissionPolicy == "transition" {
		policy = strategy.EmitOnTransition
	}
	detCfg := strategy.Config{
		RSIOversold:   cfg.Signals.RSIOversold,
		RSIOverbought: cfg.Signals.RSIOverbought,
		UseMACD:       cfg.Signals.UseMACD,
		UseEMATrend:   cfg.Signals.UseEMATrend,
	}

	mgr := market.NewManager(cfg.Market.Workers,
		market.WithBufferCapacity(cfg.Market.BufferCapacity),
		market.WithIndicatorConfig(market.IndicatorConfig{
			RSIWindow:  cfg.Indicators.RSIWindow,
			BBWindow:   cfg.Indicators.BBWindow,
			BBK:        cfg.Indicators.BBK,
			EMAWindow:  cfg.Indicators.EMAWindow,
			MACDFast:   cfg.Indicators.MACDFast,
			MACDSlow:   cfg.Indicators.MACDSlow,
			MACDSignal: cfg.Indicators.MACDSignal,
		}),
		market.WithDetector(strategy.NewDetector(detCfg), detCfg),
		market.WithEmissionPolicy(policy),
	)
	defer mgr.Close()

	logger.Info().
		Int("workers", cfg.Market.Workers).
		Strs("symbols", cfg.Market.Symbols).
		Msg("simulated feed running, press Ctrl+C to exit")

	g, ctx := errgroup.WithContext(ctx)
	for i, symbol := range cfg.Market.Symbols {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		symbol := symbol
		g.Go(func() error {
			price := 100.0
			ticker := time.NewTicker(10 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					price += rng.NormFloat64() * 0.5
					if price < 1.0 {
						price = 1.0
					}
					mgr.UpdateTick(symbol, price)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, symbol := range cfg.Market.Symbols {
		if last, err := mgr.GetLastPrice(symbol); err == nil {
			logger.Info().Str("symbol", symbol).Float64("last", last).Msg("final price")
		}
	}
	return nil
}
