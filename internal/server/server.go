package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"chatsync/internal/config"
	"chatsync/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	redis      *redis.Client
}

func New(cfg *config.Config, l *logger.Logger, redisClient *redis.Client) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Environment == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		redis:  redisClient,
	}
}

func (s *Server) SetupRoutes(query *QueryHandler, ws *WebSocketHandler) {
	secret := []byte(s.config.Auth.JWTSecret)

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if s.redis != nil {
			if err := s.redis.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", ws.Handle)

	v1 := s.engine.Group("/v1", AuthMiddleware(secret))
	{
		v1.POST("/updates", query.Ingest)
		v1.GET("/chats/:chat_id", query.GetChat)
		v1.GET("/chats/:chat_id/topics", query.GetTopics)
		v1.GET("/chats/:chat_id/threads/:thread_id", query.GetThread)
		v1.GET("/chats/:chat_id/threads/:thread_id/messages", query.GetThreadMessages)
		v1.GET("/chats/:chat_id/messages/:message_id/thread", query.ClassifyMessage)
	}
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		s.logger.Infof("starting the server on port %s...", s.config.Server.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("server error: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	s.logger.Infof("shutdown signal received, draining...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
