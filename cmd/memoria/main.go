package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/sync/errgroup"

	"github.com/memoriabot/memoria/internal/archive"
	"github.com/memoriabot/memoria/internal/bot"
	"github.com/memoriabot/memoria/internal/config"
	"github.com/memoriabot/memoria/internal/eightball"
	"github.com/memoriabot/memoria/internal/members"
	"github.com/memoriabot/memoria/internal/photos"
	"github.com/memoriabot/memoria/internal/quotes"
	"github.com/memoriabot/memoria/internal/session"
	"github.com/memoriabot/memoria/internal/storage"
	"github.com/memoriabot/memoria/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))

	cmd := parseCommand()

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch cmd {
	case "server":
		return runServer(cfg)
	case "migrate":
		return runMigrations(cfg)
	default:
		// Default: run migrations and server
		if err := runMigrations(cfg); err != nil {
			return err
		}
		return runServer(cfg)
	}
}

func parseCommand() string {
	if len(os.Args) < 2 {
		return "default"
	}
	return os.Args[1]
}

func runMigrations(cfg *config.Config) error {
	db, err := storage.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator, err := storage.NewMigrator(db.DB, cfg.Database.Migrations)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}

func runServer(cfg *config.Config) error {
	slog.Info("starting memoria server", "environment", cfg.Environment)

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	db, err := storage.NewWithLogger(&cfg.Database, storage.LogLevelFor(cfg.Environment))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// The router is assigned before polling starts, so the default
	// handler closure never observes it nil.
	var router *bot.Router

	botOpts := []tgbot.Option{
		tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
			router.HandleUpdate(ctx, update)
		}),
	}

	b, err := tgbot.New(cfg.Telegram.Token, botOpts...)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to identify bot: %w", err)
	}

	client := telegram.NewBotClient(b)
	sessions := session.NewStore()
	archiveService := archive.NewService(db.DB)

	var generator quotes.Generator
	if cfg.Markov.URL != "" {
		generator = quotes.NewHTTPGenerator(cfg.Markov.URL, cfg.Markov.Timeout)
	}

	router = bot.NewRouter(
		bot.Deps{
			Client:    client,
			Resolver:  members.NewResolver(db.DB),
			Members:   members.NewStore(db.DB),
			Quotes:    quotes.NewStore(db.DB),
			Photos:    photos.NewStore(db.DB),
			Finalizer: photos.NewFinalizer(client, cfg.ImagesDir, slog.Default()),
			EightBall: eightball.NewStore(db.DB),
			Archive:   archiveService,
			Sessions:  sessions,
			Generator: generator,
		},
		bot.Config{
			BotUsername:    me.Username,
			SummonPrefixes: cfg.SummonPrefixes,
			AllowedChatIDs: cfg.AllowedChatIDs,
			SeedLines:      cfg.Archive.SeedLines,
		},
		slog.Default(),
	)

	g, ctx := errgroup.WithContext(ctx)

	// Component 1: Bot polling
	g.Go(func() error {
		slog.Info("starting bot polling", "username", me.Username)
		b.Start(ctx)
		return ctx.Err()
	})

	// Component 2: Archive cleaner
	cleaner := archive.NewCleaner(archiveService, archive.Config{
		CleanInterval: cfg.Archive.CleanInterval,
		KeepDuration:  cfg.Archive.KeepDuration,
	}, slog.Default())
	g.Go(func() error {
		return cleaner.Start(ctx)
	})

	// Component 3: Session sweeper
	sweeper := session.NewSweeper(sessions, session.Config{
		SweepInterval: cfg.Session.SweepInterval,
		IdleDuration:  cfg.Session.IdleDuration,
	}, slog.Default())
	g.Go(func() error {
		return sweeper.Start(ctx)
	})

	slog.Info("all components started, waiting for shutdown signal")

	if err := g.Wait(); err != nil {
		if err == context.Canceled {
			slog.Info("graceful shutdown completed")
			return nil
		}
		return fmt.Errorf("component error: %w", err)
	}

	slog.Info("application stopped")
	return nil
}
