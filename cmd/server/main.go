package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/prik73/mediasoup-concept-2/internal/config"
	"github.com/prik73/mediasoup-concept-2/internal/httputil"
	wsrpc "github.com/prik73/mediasoup-concept-2/internal/jsonrpc/websocket"
	"github.com/prik73/mediasoup-concept-2/internal/jwt"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
	"github.com/prik73/mediasoup-concept-2/internal/otel"
	"github.com/prik73/mediasoup-concept-2/internal/workflow"
	"github.com/prik73/mediasoup-concept-2/mixers/compose"
	"github.com/prik73/mediasoup-concept-2/sessions/registry"
	"github.com/prik73/mediasoup-concept-2/wsgateway/signal"
	"github.com/prik73/mediasoup-concept-2/wsgateway/transport"
	"github.com/prik73/mediasoup-concept-2/wsgateway/viewers"
)

type Config struct {
	App       config.App       `mapstructure:"app"`
	WSHttp    httputil.Config  `mapstructure:"ws_http"`
	HTTP      httputil.Config  `mapstructure:"http"`
	Otel      otel.Config      `mapstructure:"otel"`
	Mediasoup mediasoup.Config `mapstructure:"mediasoup"`
	Compose   compose.Config   `mapstructure:"compose"`

	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	ProducersExistThreshold int     `mapstructure:"producers_exist_threshold"`
	MsgRate                 float64 `mapstructure:"msg_rate"`
	MsgBurst                int     `mapstructure:"msg_burst"`
}

func loadConfig() (*Config, error) {
	return config.Load(&Config{}, func(v *viper.Viper) {
		v.SetDefault("jwt_secret", "")
		v.SetDefault("allowed_origins", []string{"*"})
		v.SetDefault("producers_exist_threshold", 1)
		v.SetDefault("msg_rate", 100.0)
		v.SetDefault("msg_burst", 200)

		config.Setup(v, "app")
		otel.Setup(v, "otel")
		mediasoup.Setup(v, "mediasoup")
		compose.Setup(v, "compose")
		httputil.Setup(v, "ws_http")
		httputil.Setup(v, "http")

		// override default addrs to ease testing
		v.SetDefault("ws_http.addr", "0.0.0.0:3000")
		v.SetDefault("http.addr", "0.0.0.0:3001")
	})
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}

	logger, err := log.NewLogger(config.App.LogConfigFile)
	if err != nil {
		log.Fatal("Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// Initialize OpenTelemetry
	otelShutdown, err := otel.Init(ctx, &config.Otel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OTEL provider", log.Error(err))
	}

	logger.Info("Starting SFU signal server...")

	// runCtx cancellation drives the graceful shutdown path, so the
	// watchdog can bring the process down when the worker is gone
	runCtx, shutdown := context.WithCancel(ctx)
	defer shutdown()

	engine := mediasoup.New(config.Mediasoup.BaseURL, logger.Module("Mediasoup"))
	watchdog := mediasoup.NewWatchdog(
		engine,
		config.Mediasoup.HealthInterval,
		config.Mediasoup.HealthMaxFailures,
		func() {
			logger.Error("Media worker is unreachable, shutting down",
				log.Duration("grace", config.Mediasoup.ShutdownGraceOnDown))
			time.AfterFunc(config.Mediasoup.ShutdownGraceOnDown, shutdown)
		},
		logger.Module("Watchdog"),
	)
	if err := watchdog.WaitReady(ctx); err != nil {
		logger.Fatal("Media worker never became ready", log.Error(err))
	}
	watchdog.Start()

	var jwtAuth jwt.Auth
	if config.JWTSecret != "" {
		jwtAuth = jwt.NewAuth(config.JWTSecret)
	} else {
		logger.Warn("JWT secret not set, connections are unauthenticated")
	}

	reg := registry.New(engine, logger.Module("Registry"))

	// Signaling channel
	connMgr := signal.NewWSConnMgr(logger.Module("ConnMgr"))
	signalHook := signal.NewWSHook(
		connMgr,
		reg,
		jwtAuth,
		rate.Limit(config.MsgRate),
		config.MsgBurst,
		logger.Module("WSHook"),
	)
	signalWS := wsrpc.NewServer(
		signalHook,
		config.AllowedOrigins,
		logger.Module("WSRPC"),
	)
	signalServer := signal.NewServer(
		signalWS.Handler,
		reg,
		engine,
		connMgr,
		config.ProducersExistThreshold,
		logger.Module("Signal"),
	)

	// Viewer-count channel
	tracker := viewers.NewTracker(logger.Module("Tracker"))
	viewerWS := wsrpc.NewServer(
		viewers.NewWSHook(tracker, logger.Module("ViewerHook")),
		config.AllowedOrigins,
		logger.Module("ViewerRPC"),
	)
	viewerServer := viewers.NewServer(viewerWS.Handler, tracker, logger.Module("Viewers"))

	// HLS composition
	coordinator := compose.NewCoordinator(engine, reg, config.Compose, logger.Module("Compose"))
	hlsRouter, err := transport.NewHLSRouter(config.Compose.HLSDir, jwtAuth, logger.Module("HLS"))
	if err != nil {
		logger.Fatal("Failed to create HLS router", log.Error(err))
	}
	coordinator.SetTeardownHook(hlsRouter.InvalidateRoom)
	ctrlRouter := transport.NewRouter(coordinator, logger.Module("Control"))

	if err := signalServer.Open(ctx); err != nil {
		logger.Fatal("Failed to open Signal Server", log.Error(err))
	}
	if err := viewerServer.Open(ctx); err != nil {
		logger.Fatal("Failed to open Viewers Server", log.Error(err))
	}

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", signalWS.HandleWebSocket)
	wsMux.HandleFunc("/viewers", viewerWS.HandleWebSocket)
	wsServer := httputil.NewServer(&config.WSHttp, wsMux)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", ctrlRouter.Handler())
	httpMux.Handle("/health", ctrlRouter.Handler())
	httpMux.Handle("/hls/", hlsRouter.Handler())
	httpServer := httputil.NewServer(&config.HTTP, httpMux)

	go func() {
		logger.Info("Starting WebSocket server", log.String("addr", config.WSHttp.Addr))
		if err := wsServer.Listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start WebSocket server", log.Error(err))
		}
	}()
	go func() {
		logger.Info("Starting HTTP server", log.String("addr", config.HTTP.Addr))
		if err := httpServer.Listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", log.Error(err))
		}
	}()

	// Graceful shutdown
	cleanup := func(ctx context.Context) {
		_ = wsServer.Shutdown(ctx)
		_ = httpServer.Shutdown(ctx)

		_ = signalServer.Close()
		_ = viewerServer.Close()
		if err := coordinator.Close(); err != nil {
			logger.Error("Error cleaning up composition sessions", log.Error(err))
		}
		watchdog.Stop()
		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shutdown OTEL", log.Error(err))
		}
	}
	workflow.WaitGracefulShutdown(runCtx, logger.Module("CleanUp"), cleanup, config.App.ShutdownTimeout)
}
