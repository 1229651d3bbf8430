package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"tugofwar-quiz-service/internal/app"
	"tugofwar-quiz-service/internal/config"
	"tugofwar-quiz-service/internal/domain"
	"tugofwar-quiz-service/internal/infra/memory"
	pgloader "tugofwar-quiz-service/internal/infra/postgres"
	redisinfra "tugofwar-quiz-service/internal/infra/redis"
	"tugofwar-quiz-service/internal/question"
	transport "tugofwar-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the tug-of-war quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	source, err := questionSource(cfg, redisClient, pool)
	if err != nil {
		return err
	}

	var registry app.SessionRegistry
	if redisClient != nil {
		registry = redisinfra.NewSessionRegistry(redisClient, redisTTL)
	} else {
		registry = memory.NewSessionRegistry()
	}

	service := app.NewGameService(app.Config{
		Registry:         registry,
		Source:           source,
		Session:          sessionConfig(cfg),
		QuestionsPerGame: cfg.Game.Questions,
		IdleAfter:        config.TTLDuration(cfg.Game.IdleTimeout, 30*time.Minute),
	})
	wsHandler := transport.NewWSHandler(service)

	janitorCtx, cancelJanitor := context.WithCancel(ctx)
	defer cancelJanitor()
	go service.RunJanitor(janitorCtx, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting tug-of-war quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// questionSource picks between the random generator and a configured question
// bank, with the bank cached in Redis when available.
func questionSource(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) (app.QuestionSource, error) {
	duration := config.TTLDuration(cfg.Game.QuestionDuration, 30*time.Second)
	durationMs := int(duration / time.Millisecond)

	if cfg.Game.Bank == "" {
		return question.NewGenerator(generatorConfig(cfg, durationMs)), nil
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(nil)
	if pool != nil {
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var repo question.BankRepository
	if redisClient != nil {
		repo = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		repo = memory.NewBankRepository(loader, bankTTL)
	}
	return question.NewBankSource(repo, cfg.Game.Bank, durationMs), nil
}

func generatorConfig(cfg config.Config, durationMs int) question.Config {
	gc := question.DefaultConfig()
	gc.DurationMs = durationMs
	if len(cfg.Game.Operators) > 0 {
		ops := make([]domain.Op, 0, len(cfg.Game.Operators))
		for _, op := range cfg.Game.Operators {
			ops = append(ops, domain.Op(op))
		}
		gc.Operators = ops
	}
	if cfg.Game.MaxOperand > 0 {
		gc.MinOperand = cfg.Game.MinOperand
		gc.MaxOperand = cfg.Game.MaxOperand
	}
	if cfg.Game.MaxDivisor > 0 {
		gc.MaxDivisor = cfg.Game.MaxDivisor
	}
	if cfg.Game.MaxQuotient > 0 {
		gc.MaxQuotient = cfg.Game.MaxQuotient
	}
	return gc
}

func sessionConfig(cfg config.Config) domain.SessionConfig {
	sc := domain.SessionConfig{
		Mode:        domain.Mode(cfg.Game.Mode),
		StartSecret: cfg.Game.StartSecret,
		BasePoints:  cfg.Game.BasePoints,
		ForceDelta:  cfg.Game.ForceDelta,
		MaxForce:    cfg.Game.MaxForce,
		Groups:      cfg.Game.Groups,
		Cooldown:    config.TTLDuration(cfg.Game.Cooldown, 5*time.Second),
		Tick:        config.TTLDuration(cfg.Game.Tick, time.Second),
	}
	if sc.Mode == "" {
		sc.Mode = domain.ModeForce
	}
	if sc.BasePoints <= 0 {
		sc.BasePoints = 10
	}
	if sc.ForceDelta <= 0 {
		sc.ForceDelta = 15
	}
	if sc.MaxForce <= 0 {
		sc.MaxForce = 300
	}
	if sc.Groups <= 0 {
		sc.Groups = 4
	}
	return sc
}
