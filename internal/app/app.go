package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"vault-liquidity-alerts/internal/alerting"
	"vault-liquidity-alerts/internal/config"
	"vault-liquidity-alerts/internal/fetcher"
	"vault-liquidity-alerts/internal/monitor"
	"vault-liquidity-alerts/internal/scheduler"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.LiquidityFetcher {
	return fetcher.NewChain(fetcher.ChainOptions{
		RPCURL:       a.Config.Ethereum.RPCURL,
		VaultAddress: a.Config.Ethereum.VaultAddress,
		Timeout:      a.Config.Ethereum.RequestTimeout,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

// requireVault guards every command that reads the chain. It fails before
// any network call is attempted.
func (a *App) requireVault() error {
	if a.Config.Ethereum.VaultAddress == "" {
		return errors.New("ethereum.vault_address is not configured; set VAULTWATCHER_ETHEREUM_VAULT_ADDRESS=0xYourVault or add it to config.yaml")
	}
	return nil
}

// Run executes the long-running monitoring loop.
func (a *App) Run(ctx context.Context) error {
	if err := a.requireVault(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := a.newNotifier()
	if a.Config.Alerting.Enabled && notifier == nil {
		a.Logger.Warn().Msg("telegram credentials not configured; threshold alerts disabled")
	}

	loop := scheduler.New(scheduler.Options{
		Interval:     a.Config.Monitor.Interval,
		ErrorBackoff: a.Config.Monitor.ErrorBackoff,
		StartupDelay: a.Config.Monitor.StartupDelay,
	}, a.Logger)

	mon := monitor.New(a.Config, a.newFetcher(), notifier, a.Logger)

	a.Logger.Info().
		Str("vault", a.Config.Ethereum.VaultAddress).
		Str("rpc_url", a.Config.Ethereum.RPCURL).
		Dur("interval", a.Config.Monitor.Interval).
		Msg("starting liquidity monitoring")

	err := loop.Run(ctx, mon.Poll)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("monitoring terminated with error")
		return err
	}

	a.sendShutdownNote(notifier)
	a.Logger.Info().Msg("liquidity monitoring stopped")
	return nil
}

// sendShutdownNote makes a best-effort shutdown notification. The run
// context is already cancelled at this point, so it uses a fresh bounded
// one.
func (a *App) sendShutdownNote(notifier alerting.Notifier) {
	if notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	note := alerting.Notification{
		Kind:       alerting.KindShutdown,
		ObservedAt: time.Now().UTC(),
	}
	if err := notifier.Notify(ctx, note); err != nil {
		a.Logger.Warn().Err(err).Msg("shutdown notification failed")
	}
}
