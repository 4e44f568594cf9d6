// Vitrine Renderer — рендерит контент для refresh-заданий.
//
// Renderer:
//   - Получает задания из очереди refresh.due
//   - Рендерит контент драйвером нужного плагина
//   - Пишет результат на диск (если задан OUTPUT_DIR)
//   - Публикует результат в refresh.completed
//
// Renderers не держат состояния и масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Vitrine/internal/mq"
	"github.com/shaiso/Vitrine/internal/renderer"
	"github.com/shaiso/Vitrine/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting vitrine-renderer")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RabbitMQ обязателен: без очереди renderer бесполезен
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	publisher := mq.NewPublisher(mqConn, logger)

	r := renderer.New(renderer.Config{
		Registry:  renderer.DefaultRegistry(),
		Publisher: publisher,
		Conn:      mqConn,
		OutputDir: os.Getenv("OUTPUT_DIR"),
		Logger:    logger,
	})

	go func() {
		if err := r.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("renderer stopped", "error", err)
			cancel()
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("RENDERER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("vitrine-renderer stopped")
}
