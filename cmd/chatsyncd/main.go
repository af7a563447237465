package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"chatsync/internal/config"
	"chatsync/internal/dispatch"
	"chatsync/internal/events"
	"chatsync/internal/sched"
	"chatsync/internal/server"
	"chatsync/internal/state"
	"chatsync/internal/store"
	"chatsync/pkg/logger"
)

func main() {
	// Missing .env is fine, the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	mode := logger.DevelopmentMode
	if cfg.Server.Environment == "production" {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	defer l.Sync()
	logger.SetGlobalLogger(l)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	st := store.New(state.NewSnapshot(cfg.Engine.CurrentUserID, state.Settings{
		CanAnimateSnapEffect: cfg.Engine.CanAnimateSnapEffect,
	}))

	scheduler := sched.NewTimerScheduler()
	defer scheduler.Stop()

	dispatcher := dispatch.New(st, scheduler, l, dispatch.Config{
		AnimationDelay:     cfg.Engine.AnimationDelay,
		SnapAnimationDelay: cfg.Engine.SnapAnimationDelay,
		TypingDraftTTL:     cfg.Engine.TypingDraftTTL,
	})

	bus := events.NewRedisBus(redisClient, dispatcher, l)
	if err := bus.Start(); err != nil {
		l.Errorf("failed to start event bus: %v", err)
	}
	defer bus.Stop()

	hub := server.NewHub(st, l)
	go hub.Run()
	defer hub.Stop()

	srv := server.New(cfg, l, redisClient)
	srv.SetupRoutes(
		server.NewQueryHandler(dispatcher, l),
		server.NewWebSocketHandler(hub, dispatcher, []byte(cfg.Auth.JWTSecret)),
	)

	if err := srv.Start(); err != nil {
		l.Errorf("server shutdown error: %v", err)
	}
}
