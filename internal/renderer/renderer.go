package renderer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shaiso/Vitrine/internal/domain"
	"github.com/shaiso/Vitrine/internal/mq"
	"github.com/shaiso/Vitrine/internal/telemetry"
)

// defaultPrefetch — дисплей один, рендерим по одному заданию.
const defaultPrefetch = 1

// Renderer потребляет refresh-задания и выполняет их.
type Renderer struct {
	registry  *Registry
	publisher *mq.Publisher
	conn      *mq.Connection
	consumer  *mq.Consumer
	outputDir string
	logger    *slog.Logger
}

// Config — конфигурация Renderer.
type Config struct {
	// Registry — реестр драйверов (nil — DefaultRegistry).
	Registry *Registry

	// Publisher и Conn — RabbitMQ.
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// OutputDir — каталог для срендеренных файлов.
	// Пустая строка — файлы не пишутся (только хэш).
	OutputDir string

	Logger *slog.Logger
}

// New создаёт новый Renderer.
func New(cfg Config) *Renderer {
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		registry:  registry,
		publisher: cfg.Publisher,
		conn:      cfg.Conn,
		outputDir: cfg.OutputDir,
		logger:    logger,
	}
}

// Start запускает потребление очереди refresh.due.
// Блокирует до отмены ctx.
func (r *Renderer) Start(ctx context.Context) error {
	r.consumer = mq.NewConsumer(r.conn, r.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueRefreshDue),
		Handler:  r.handleJob,
		Prefetch: defaultPrefetch,
	})
	return r.consumer.Start(ctx)
}

// handleJob обрабатывает одно refresh-задание.
//
// Любой исход задания — в том числе провал рендеринга — завершается
// публикацией refresh.completed: планировщик должен снять
// inflight-метку. В очередь сообщение не возвращается.
func (r *Renderer) handleJob(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RefreshDuePayload](&d.Message)
	if err != nil {
		r.logger.Error("malformed refresh.due payload", "error", err)
		// Переповтор не поможет — подтверждаем и забываем.
		return nil
	}

	logger := telemetry.WithJobID(
		telemetry.WithUnit(r.logger, payload.PluginID, payload.PluginInstance),
		payload.JobID.String(),
	)

	hash, renderErr := r.render(ctx, logger, &payload)

	completed := mq.RefreshCompletedPayload{
		JobID:          payload.JobID,
		PluginID:       payload.PluginID,
		PluginInstance: payload.PluginInstance,
		RefreshType:    payload.RefreshType,
		Rotation:       payload.Rotation,
		FinishedAt:     time.Now(),
	}
	if renderErr != nil {
		logger.Error("render failed", "error", renderErr)
		completed.Status = mq.RefreshStatusFailed
		completed.Error = renderErr.Error()
	} else {
		completed.Status = mq.RefreshStatusSucceeded
		completed.ImageHash = hash
	}

	if err := r.publisher.PublishRefreshCompleted(ctx, completed); err != nil {
		// Результат не доставлен — вернём задание в очередь.
		return fmt.Errorf("publish refresh.completed: %w", err)
	}

	logger.Info("refresh job finished", "status", completed.Status)
	return nil
}

// render выполняет рендеринг и возвращает отпечаток контента.
func (r *Renderer) render(ctx context.Context, logger *slog.Logger, job *mq.RefreshDuePayload) (string, error) {
	source, err := r.registry.Get(job.PluginID)
	if err != nil {
		return "", err
	}

	start := time.Now()
	content, err := source.Render(ctx, job.Settings)
	telemetry.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if r.outputDir != "" {
		unit := domain.ContentUnit{PluginID: job.PluginID, Name: job.PluginInstance}
		path := filepath.Join(r.outputDir, unit.ImagePath())
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return "", fmt.Errorf("write output %s: %w", path, err)
		}
		logger.Debug("content written", "path", path, "bytes", len(content))
	}

	return hash, nil
}
