package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickfirstaid/common/logger"
	"quickfirstaid/common/mqtt"
	commonredis "quickfirstaid/common/redis"
	"quickfirstaid/internal/client"
	"quickfirstaid/internal/config"
	httpapi "quickfirstaid/internal/http"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/service"
	"quickfirstaid/internal/session"
	"quickfirstaid/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "quickfirstaid")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := store.Open(ctx, store.OpenOptions{
		Backend:  cfg.Store.Backend,
		Dir:      cfg.Store.Dir,
		Redis:    &cfg.Redis,
		Database: &cfg.Database,
	})
	if err != nil {
		log.Fatal("Failed to open record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer backend.Close()

	deviceID, err := store.DeviceID(ctx, backend.KV, cfg.Store.KeyPrefix, cfg.DeviceID)
	if err != nil {
		log.Fatal("Failed to resolve device id", zap.Error(err))
	}
	log.Info("Record store ready",
		zap.String("backend", backend.Name),
		zap.String("device_id", deviceID),
	)
	records := repository.NewRecordStore(backend.KV, cfg.Store.KeyPrefix, deviceID, log)

	sinks, closeSinks := sessionSinks(ctx, cfg, backend, log)
	defer closeSinks()
	broker := session.NewBroker(log, sinks...)

	timeout := cfg.CollaboratorTimeout
	authClient := client.NewAuthClient(cfg.Auth.BaseURL, cfg.Auth.TokenURL, cfg.Auth.APIKey, timeout, log)
	docClient := client.NewDocumentClient(cfg.Documents.BaseURL, cfg.Documents.ProjectID, timeout, log)
	vision := client.NewInferenceClient("vision", cfg.Vision.BaseURL, cfg.Vision.APIKey, cfg.Vision.Model, timeout, log)
	chat := client.NewInferenceClient("chat", cfg.Groq.BaseURL, cfg.Groq.APIKey, cfg.Groq.ChatModel, timeout, log)
	speech := client.NewSpeechClient(cfg.Groq.BaseURL, cfg.Groq.APIKey, cfg.Groq.STTModel, cfg.Groq.TTSModel, cfg.Groq.TTSVoice, timeout, log)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterMedicalIDRoutes(httpapi.NewMedicalIDHandler(service.NewMedicalIDService(records, log), log))
	router.RegisterTriageRoutes(httpapi.NewTriageHandler(
		service.NewTriageService(records, vision, log),
		service.NewScannerService(vision, log),
		log,
	))
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(
		service.NewAuthService(authClient, docClient, records, broker, log),
		broker,
		log,
	))
	router.RegisterProfileRoutes(httpapi.NewProfileHandler(service.NewProfileService(authClient, docClient, records, broker, log), log))
	router.RegisterAssistantRoutes(httpapi.NewAssistantHandler(service.NewAssistantService(chat, speech, log), log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", zap.Error(err))
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// sessionSinks mirrors session events to Redis and MQTT when configured.
// A sink that cannot connect is skipped; the device keeps working without it.
func sessionSinks(ctx context.Context, cfg *config.Config, backend *store.Backend, log *zap.Logger) ([]session.Sink, func()) {
	var sinks []session.Sink
	var closers []func()

	if cfg.SessionStream.Enabled {
		var rc *redis.Client
		if backend.Redis != nil {
			rc = backend.Redis
		} else {
			rc = commonredis.NewRedisClient(&cfg.Redis)
			if err := commonredis.Ping(ctx, rc); err != nil {
				log.Warn("Session stream disabled, redis unreachable", zap.Error(err))
				_ = rc.Close()
				rc = nil
			} else {
				own := rc
				closers = append(closers, func() { _ = commonredis.Close(own) })
			}
		}
		if rc != nil {
			sinks = append(sinks, session.NewRedisStreamSink(rc, cfg.SessionStream.Name, cfg.SessionStream.MaxLen))
		}
	}

	if cfg.MQTT.Enabled {
		mc, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Warn("Session MQTT sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, session.NewMQTTSink(mc, cfg.MQTT.Topic, cfg.MQTT.QoS))
			closers = append(closers, mc.Disconnect)
		}
	}

	for _, s := range sinks {
		log.Info("Session sink enabled", zap.String("sink", s.Name()))
	}
	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
