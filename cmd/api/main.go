package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FoodAdvisor_V0.1/internal/chatbot"
	"FoodAdvisor_V0.1/internal/classifier"
	"FoodAdvisor_V0.1/internal/config"
	"FoodAdvisor_V0.1/internal/database"
	"FoodAdvisor_V0.1/internal/dataset"
	"FoodAdvisor_V0.1/internal/geminiservice"
	"FoodAdvisor_V0.1/internal/metrics"
	"FoodAdvisor_V0.1/internal/server"
	"FoodAdvisor_V0.1/internal/utility"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Sockets are hijacked connections; Shutdown does not wait for them.
	utility.CloseAllClients()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// loadKnowledge reads the dataset once and builds the vocabulary and the model from it.
// Without records the service still starts: the vocabulary is empty and the model is nil.
func loadKnowledge(ctx context.Context, src dataset.Source) (*chatbot.Vocabulary, *classifier.Model) {
	cached := dataset.NewCachedSource(src)

	var (
		vocab *chatbot.Vocabulary
		model *classifier.Model
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		vocab = chatbot.LoadVocabulary(ctx, cached)
		return nil
	})
	g.Go(func() error {
		records, err := cached.Records(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Classifier not trained, dataset unavailable")
			return nil
		}
		m, err := classifier.Train(records)
		if err != nil {
			log.Warn().Err(err).Msg("Classifier not trained")
			return nil
		}
		model = m
		return nil
	})
	_ = g.Wait()

	return vocab, model
}

func newStore(ctx context.Context, cfg *config.Config) (chatbot.MemoryStore, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return chatbot.NewLRUStore(cfg.SessionCapacity, cfg.SessionTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := chatbot.NewRedisStore(client, cfg.SessionTTL)
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Address, err)
	}
	return store, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Dataset source: a JSON file by default, the food_knowledge table otherwise.
	var (
		src dataset.Source
		db  database.Service
	)
	switch cfg.DatasetSource {
	case config.DatasetSourcePostgres:
		db, err = database.NewService(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not connect to the knowledge database")
		}
		defer db.Close()
		src = db
	default:
		src = dataset.NewFileSource(cfg.DatasetPath)
	}

	vocab, model := loadKnowledge(ctx, src)
	foods, conditions := vocab.Len()
	metrics.VocabularyEntries.WithLabelValues("food").Set(float64(foods))
	metrics.VocabularyEntries.WithLabelValues("condition").Set(float64(conditions))
	log.Info().Bool("model_loaded", model != nil).Msg("Knowledge loaded")

	var explainer classifier.Explainer
	if cfg.GeminiAPIKey != "" {
		client, err := geminiservice.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not create Gemini client")
		}
		explainer = client
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, verdicts without dataset details are returned label-only")
	}
	clf := classifier.NewService(model, explainer)

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create session store")
	}

	chat := chatbot.NewService(vocab, store, clf)
	apiServer := server.NewServer(cfg, server.Deps{
		Chat:       chat,
		Classifier: clf,
		Store:      store,
		DB:         db,
	})

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.Port).Str("session_backend", cfg.SessionBackend).Msg("Starting chat server")
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
