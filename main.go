package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/divijg19/Gamemaster-sub000/gamemaster"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/commands"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/database"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/handlers"
	"github.com/divijg19/Gamemaster-sub000/gamemaster/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Gamemaster",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := gamemaster.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("type", "db"),
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("type", "db"),
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully", slog.String("type", "db"))

	defer db.Close()

	b := gamemaster.New(*cfg, version, commit)
	b.DB = db
	b.InitServices()

	h := handler.New()

	// Saga core
	h.Command("/saga", handlers.WrapWithLogging("saga", commands.SagaHandler(b)))
	h.Command("/battle", handlers.WrapWithLogging("battle", commands.BattleHandler(b)))
	h.Component("/battle/", handlers.WrapComponentWithLogging("battle", commands.BattleComponentHandler(b)))

	// Tavern
	h.Command("/tavern", handlers.WrapWithLogging("tavern", commands.TavernHandler(b)))
	h.Command("/hire", handlers.WrapWithLogging("hire", commands.HireHandler(b)))
	h.Command("/reroll", handlers.WrapWithLogging("reroll", commands.RerollHandler(b)))

	// Units
	h.Command("/army", handlers.WrapWithLogging("army", commands.ArmyHandler(b)))
	h.Command("/party", handlers.WrapWithLogging("party", commands.PartyHandler(b)))
	h.Command("/train", handlers.WrapWithLogging("train", commands.TrainHandler(b)))
	h.Command("/bond", handlers.WrapWithLogging("bond", commands.BondHandler(b)))
	h.Command("/dismiss", handlers.WrapWithLogging("dismiss", commands.DismissHandler(b)))
	h.Command("/contracts", handlers.WrapWithLogging("contracts", commands.ContractsHandler(b)))

	// Boards and economy
	h.Command("/quests", handlers.WrapWithLogging("quests", commands.QuestsHandler(b)))
	h.Command("/tasks", handlers.WrapWithLogging("tasks", commands.TasksHandler(b)))
	h.Command("/inventory", handlers.WrapWithLogging("inventory", commands.InventoryHandler(b)))
	h.Command("/work", handlers.WrapWithLogging("work", commands.WorkHandler(b)))
	h.Command("/metrics", handlers.WrapWithLogging("metrics", commands.MetricsHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Gamemaster is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}
