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
	"streakpeaked-service/internal/app"
	"streakpeaked-service/internal/chat"
	"streakpeaked-service/internal/config"
	"streakpeaked-service/internal/domain"
	"streakpeaked-service/internal/infra/memory"
	pgstore "streakpeaked-service/internal/infra/postgres"
	redisinfra "streakpeaked-service/internal/infra/redis"
	"streakpeaked-service/internal/matchmaking"
	transport "streakpeaked-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBanks())
	if pool != nil {
		loader = pgstore.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var banks app.QuestionRepository
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	// Scores prefer postgres, then redis, then the in-memory demo store.
	var sink app.ScoreSink
	var history app.ScoreHistory
	switch {
	case pool != nil:
		store := pgstore.NewScoreStore(pool)
		sink, history = store, store
	case redisClient != nil:
		store := redisinfra.NewScoreStore(redisClient, cfg.Scores.HistorySize)
		sink, history = store, store
	default:
		store := memory.NewScoreStore()
		sink, history = store, store
	}

	var chatHistory chat.History = memory.NewChatHistory(cfg.Chat.HistorySize)
	if redisClient != nil {
		chatTTL := config.TTLDuration(cfg.Chat.TTL, 24*time.Hour)
		chatHistory = redisinfra.NewChatHistory(redisClient, cfg.Chat.HistorySize, chatTTL)
	}
	hub := chat.NewHub(chatHistory)

	var matches matchmaking.Queue = matchmaking.NewMemoryQueue()
	if redisClient != nil {
		matchTTL := config.TTLDuration(cfg.Match.TTL, 10*time.Minute)
		matches = redisinfra.NewMatchQueue(redisClient, matchTTL)
	}

	settleDelay := config.TTLDuration(cfg.Quiz.SettleDelay, 800*time.Millisecond)
	service := app.NewQuizService(banks, sink, history, memory.NewSessionStore(), hub, matches, settleDelay)
	wsHandler := transport.NewWSHandler(service)
	apiHandler := transport.NewAPIHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/quiz", wsHandler.ServeQuiz)
	mux.HandleFunc("/ws/chat", wsHandler.ServeChat)
	mux.HandleFunc("/api/match/join", apiHandler.JoinMatch)
	mux.HandleFunc("/api/match/leave", apiHandler.LeaveMatch)
	mux.HandleFunc("/api/scores", apiHandler.Scores)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting streakpeaked service on :%s", finalPort)
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

// sampleBanks provides a minimal demo bank; configure postgres to serve real content.
func sampleBanks() map[string][]domain.Question {
	return map[string][]domain.Question{
		"ssc-cgl": {
			{
				ID: "q1", Section: domain.SectionMaths, Level: domain.LevelEasy,
				Question: "What is 15% of 200?",
				Options:  []string{"25", "30", "35", "40"},
				Answer:   "B",
			},
			{
				ID: "q2", Section: domain.SectionGK, Level: domain.LevelEasy,
				Question: "Which river is known as the Sorrow of Bihar?",
				Options:  []string{"Ganga", "Kosi", "Gandak", "Son"},
				Answer:   "Kosi",
			},
			{
				ID: "q3", Section: domain.SectionReasoning, Level: domain.LevelMedium,
				Question: "Find the next term: 2, 6, 12, 20, ?",
				Options:  []string{"28", "30", "32", "36"},
				Answer:   "2",
			},
			{
				ID: "q4", Section: domain.SectionEnglish, Level: domain.LevelEasy,
				Question: "Choose the synonym of 'abundant'.",
				Options:  []string{"Scarce", "Plentiful", "Meagre", "Rare"},
				Answer:   "B",
			},
		},
	}
}
