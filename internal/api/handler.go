package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/Vitrine/internal/repo"
	"github.com/shaiso/Vitrine/internal/schedule"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	manager     *schedule.Manager
	loop        *schedule.Loop
	stateRepo   *repo.StateRepo
	refreshRepo *repo.RefreshRepo
	deviceID    string
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Manager     *schedule.Manager
	Loop        *schedule.Loop
	StateRepo   *repo.StateRepo
	RefreshRepo *repo.RefreshRepo
	DeviceID    string
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		manager:     cfg.Manager,
		loop:        cfg.Loop,
		stateRepo:   cfg.StateRepo,
		refreshRepo: cfg.RefreshRepo,
		deviceID:    cfg.DeviceID,
		logger:      cfg.Logger,
	}
}

// persistState сохраняет текущую конфигурацию после правки.
// Ошибка записи логируется, но правка в памяти уже применена.
func (h *Handler) persistState(ctx context.Context) {
	if h.stateRepo == nil {
		return
	}
	if err := h.stateRepo.Save(ctx, h.deviceID, h.manager.Snapshot()); err != nil {
		h.logger.Error("failed to persist state", "error", err)
	}
}
