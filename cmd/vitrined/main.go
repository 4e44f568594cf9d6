// Vitrine Daemon — основной процесс устройства.
//
// Daemon:
//   - Держит конфигурацию ротаций в памяти и в Postgres
//   - Раз в секунду выполняет тик планировщика
//   - Публикует refresh-задания в RabbitMQ
//   - Принимает результаты рендеринга из refresh.completed
//   - Отдаёт HTTP API для управления ротациями
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Vitrine/internal/api"
	"github.com/shaiso/Vitrine/internal/mq"
	"github.com/shaiso/Vitrine/internal/repo"
	"github.com/shaiso/Vitrine/internal/schedule"
	"github.com/shaiso/Vitrine/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting vitrined")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		deviceID = "default"
	}

	// Подключаемся к базе данных
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	stateRepo := repo.NewStateRepo(pool)
	refreshRepo := repo.NewRefreshRepo(pool)

	// Загружаем конфигурацию устройства. Если её ещё нет —
	// начинаем с ротации по умолчанию и сразу сохраняем.
	var manager *schedule.Manager
	st, err := stateRepo.Load(ctx, deviceID)
	switch {
	case err == nil:
		manager = schedule.NewManagerFromState(st, logger)
		logger.Info("state loaded", "device_id", deviceID, "rotations", len(st.Rotations))
	case errors.Is(err, repo.ErrNotFound):
		manager = schedule.NewManager(logger)
		manager.EnsureDefault()
		if err := stateRepo.Save(ctx, deviceID, manager.Snapshot()); err != nil {
			logger.Warn("failed to save initial state", "error", err)
		}
		logger.Info("no saved state, seeded default rotation", "device_id", deviceID)
	default:
		logger.Error("failed to load state", "error", err)
		os.Exit(1)
	}

	// RabbitMQ. Без брокера daemon продолжает работать:
	// API и resolve доступны, но refresh-задания не публикуются.
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, refresh publishing disabled", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Глобальный цикл смены контента
	cycleInterval := 3600
	if v := os.Getenv("CYCLE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid CYCLE_INTERVAL", "value", v, "error", err)
			os.Exit(1)
		}
		cycleInterval = n
	}
	cycle, err := schedule.NewCycle(cycleInterval, os.Getenv("CYCLE_CRON"))
	if err != nil {
		logger.Error("invalid CYCLE_CRON", "error", err)
		os.Exit(1)
	}

	loop := schedule.NewLoop(schedule.LoopConfig{
		Manager:     manager,
		Cycle:       cycle,
		Publisher:   publisher,
		StateRepo:   stateRepo,
		RefreshRepo: refreshRepo,
		DeviceID:    deviceID,
		Logger:      logger,
	})

	// Тик планировщика
	tickInterval := time.Second
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid TICK_INTERVAL", "value", v, "error", err)
			os.Exit(1)
		}
		tickInterval = d
	}
	go loop.Run(ctx, tickInterval)

	// Потребитель результатов рендеринга
	if mqConn != nil {
		consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueRefreshCompleted),
			Handler:  loop.HandleCompleted,
			Prefetch: 1,
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("completed consumer stopped", "error", err)
			}
		}()
	}

	// HTTP API
	handler := api.NewHandler(api.Config{
		Manager:     manager,
		Loop:        loop,
		StateRepo:   stateRepo,
		RefreshRepo: refreshRepo,
		DeviceID:    deviceID,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Сохраняем конфигурацию напоследок
	if err := stateRepo.Save(shutdownCtx, deviceID, manager.Snapshot()); err != nil {
		logger.Warn("failed to save state on shutdown", "error", err)
	}

	logger.Info("vitrined stopped")
}
