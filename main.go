package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-service/internal/auth"
	"social-service/internal/config"
	"social-service/internal/db"
	grpcserver "social-service/internal/grpc"
	"social-service/internal/handlers"
	"social-service/internal/logger"
	"social-service/internal/middleware"
	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/telemetry"
	"social-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.ServiceName, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		slog.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	auditEmitter := telemetry.NewAuditEmitter(publisher, "audit.social", cfg.ServiceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	communityRepo := repositories.NewCommunityRepo(database)
	categoryRepo := repositories.NewCategoryRepo(database)
	postRepo := repositories.NewPostRepo(database)
	commentRepo := repositories.NewCommentRepo(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userSvc := services.NewUserService(userRepo, tokens, publisher)
	chatSvc := services.NewChatService(chatRepo, messageRepo, userRepo, publisher)
	messageSvc := services.NewMessageService(chatRepo, messageRepo, userRepo, publisher)
	communitySvc := services.NewCommunityService(communityRepo, categoryRepo, userRepo, publisher, cfg.TrendingWindow)
	postSvc := services.NewPostService(postRepo, communityRepo, publisher)
	commentSvc := services.NewCommentService(commentRepo, postRepo, publisher)

	hub := ws.NewHub(chatSvc, cfg.WSSignalRPS, cfg.WSSignalBurst)
	messageSvc.SetNotifier(hub)
	hub.SetMessageSender(messageSvc)

	limiter := middleware.NewLimiterPool(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	limiter.StartSweeper(time.Minute, ctx.Done())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		middleware.RequestID(),
		observability.HTTPMetricsMiddleware(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", ws.NewHandler(hub, tokens).Handle)
	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Set{
		Users:       handlers.NewUserHandler(userSvc, auditEmitter),
		Chats:       handlers.NewChatHandler(chatSvc, auditEmitter),
		Messages:    handlers.NewMessageHandler(messageSvc),
		Communities: handlers.NewCommunityHandler(communitySvc, auditEmitter),
		Posts:       handlers.NewPostHandler(postSvc, auditEmitter),
		Comments:    handlers.NewCommentHandler(commentSvc, auditEmitter),
	}, middleware.AuthMiddleware(tokens), middleware.RateLimit(limiter))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	var health *grpcserver.HealthServer
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("failed to listen for grpc", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		health = grpcserver.NewHealthServer(database)
		go health.Watch(ctx, 15*time.Second)
		go func() {
			slog.Info("grpc health server listening", "port", cfg.GRPCPort)
			if err := health.Serve(lis); err != nil {
				slog.Error("grpc server error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if health != nil {
		health.Stop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if shutdownTracer != nil {
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown", "error", err)
		}
	}
}
