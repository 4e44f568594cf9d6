package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Vitrine/internal/domain"
	"github.com/shaiso/Vitrine/internal/mq"
	"github.com/shaiso/Vitrine/internal/repo"
	"github.com/shaiso/Vitrine/internal/telemetry"
)

// Loop — тик-цикл планировщика.
//
// Раз в тик Loop выбирает активную ротацию, находит в ней unit,
// требующий обновления, и публикует refresh-задание. Завершения
// заданий приходят из очереди refresh.completed: Loop записывает
// RefreshRecord, проставляет unit-у время обновления и сохраняет
// состояние.
//
// Для unit с уже опубликованным, но не завершённым заданием новые
// задания не публикуются (inflight-трекинг): тик идёт раз в секунду,
// а рендеринг может занимать десятки секунд.
type Loop struct {
	manager     *Manager
	cycle       *Cycle
	publisher   *mq.Publisher
	stateRepo   *repo.StateRepo
	refreshRepo *repo.RefreshRepo
	deviceID    string
	logger      *slog.Logger

	mu       sync.Mutex
	inflight map[string]uuid.UUID
}

// LoopConfig — конфигурация Loop.
type LoopConfig struct {
	Manager     *Manager
	Cycle       *Cycle
	Publisher   *mq.Publisher // nil — задания не публикуются
	StateRepo   *repo.StateRepo
	RefreshRepo *repo.RefreshRepo
	DeviceID    string
	Logger      *slog.Logger
}

// NewLoop создаёт новый Loop.
func NewLoop(cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		manager:     cfg.Manager,
		cycle:       cfg.Cycle,
		publisher:   cfg.Publisher,
		stateRepo:   cfg.StateRepo,
		refreshRepo: cfg.RefreshRepo,
		deviceID:    cfg.DeviceID,
		logger:      logger,
		inflight:    make(map[string]uuid.UUID),
	}
}

// Run выполняет тики с заданным интервалом до отмены ctx.
func (l *Loop) Run(ctx context.Context, interval time.Duration) {
	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case t := <-tk.C:
			if err := l.Tick(ctx, t); err != nil {
				l.logger.Error("scheduler tick failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Выбирает активную ротацию (с минутным кэшем)
// 2. Проверяет глобальный цикл смены контента
// 3. Ищет unit, требующий обновления
// 4. Публикует refresh-задание, если для unit нет незавершённого
//
// Отсутствие активной ротации или due unit — не ошибка.
func (l *Loop) Tick(ctx context.Context, now time.Time) error {
	telemetry.TicksTotal.Inc()

	rot := l.manager.ResolveActive(now)
	if rot == nil {
		return nil
	}

	globalDue := l.cycle.Due(now)

	unit, err := l.manager.FindDueUnit(rot.Name, now, globalDue)
	if err != nil {
		return fmt.Errorf("find due unit: %w", err)
	}
	if unit == nil {
		return nil
	}

	// Без брокера тик только продвигает курсор; задание публиковать некуда.
	if l.publisher == nil {
		return nil
	}

	jobID, err := l.RequestRefresh(ctx, rot.Name, unit, domain.RefreshPlaylist)
	if err != nil {
		if errors.Is(err, ErrRefreshInflight) {
			return nil
		}
		return fmt.Errorf("request refresh: %w", err)
	}

	// Цикл отмечается только когда задание реально ушло.
	l.cycle.Mark(now)

	l.logger.Info("refresh job published",
		"job_id", jobID,
		"rotation", rot.Name,
		"plugin_id", unit.PluginID,
		"instance", unit.Name,
		"global_due", globalDue,
	)
	return nil
}

// ErrRefreshInflight — для unit уже опубликовано незавершённое задание.
var ErrRefreshInflight = errors.New("refresh already in flight")

// RequestRefresh публикует refresh-задание для unit.
//
// Используется тиком (RefreshPlaylist) и ручным обновлением через API
// (RefreshManual). Пока задание не завершено, повторные запросы для
// того же unit возвращают ErrRefreshInflight.
func (l *Loop) RequestRefresh(ctx context.Context, rotation string, unit *domain.ContentUnit, cause domain.RefreshType) (uuid.UUID, error) {
	if l.publisher == nil {
		return uuid.Nil, fmt.Errorf("no publisher configured")
	}

	key := inflightKey(rotation, unit.PluginID, unit.Name)

	l.mu.Lock()
	if id, ok := l.inflight[key]; ok {
		l.mu.Unlock()
		l.logger.Debug("refresh already in flight",
			"job_id", id, "plugin_id", unit.PluginID, "instance", unit.Name)
		return uuid.Nil, ErrRefreshInflight
	}
	jobID := uuid.New()
	l.inflight[key] = jobID
	l.mu.Unlock()

	err := l.publisher.PublishRefreshDue(ctx, mq.RefreshDuePayload{
		JobID:          jobID,
		PluginID:       unit.PluginID,
		PluginInstance: unit.Name,
		Settings:       unit.Settings,
		RefreshType:    cause,
		Rotation:       rotation,
	})
	if err != nil {
		// Задание не ушло — снимаем inflight-метку.
		l.mu.Lock()
		delete(l.inflight, key)
		l.mu.Unlock()
		return uuid.Nil, err
	}

	telemetry.RefreshJobsPublished.WithLabelValues(string(cause)).Inc()
	return jobID, nil
}

// HandleCompleted — обработчик сообщений refresh.completed.
//
// Снимает inflight-метку, при успехе записывает RefreshRecord в журнал,
// проставляет unit-у время обновления и сохраняет состояние устройства.
// Ошибки персистентности не фатальны: состояние в памяти уже обновлено,
// повторная запись произойдёт при следующем изменении.
func (l *Loop) HandleCompleted(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RefreshCompletedPayload](&d.Message)
	if err != nil {
		l.logger.Error("malformed refresh.completed payload", "error", err)
		// Переповтор не поможет — подтверждаем и забываем.
		return nil
	}

	key := inflightKey(payload.Rotation, payload.PluginID, payload.PluginInstance)
	l.mu.Lock()
	delete(l.inflight, key)
	l.mu.Unlock()

	telemetry.RefreshesCompleted.WithLabelValues(payload.Status).Inc()

	if payload.Status != mq.RefreshStatusSucceeded {
		l.logger.Warn("refresh job failed",
			"job_id", payload.JobID,
			"plugin_id", payload.PluginID,
			"instance", payload.PluginInstance,
			"error", payload.Error,
		)
		return nil
	}

	finished := payload.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	rec := &domain.RefreshRecord{
		RefreshTime: &finished,
		ImageHash:   payload.ImageHash,
		RefreshType: payload.RefreshType,
		PluginID:    payload.PluginID,
	}
	if payload.RefreshType == domain.RefreshPlaylist {
		rec.Playlist = payload.Rotation
		rec.PluginInstance = payload.PluginInstance
	}

	if err := l.manager.MarkRefreshed(payload.Rotation, payload.PluginID, payload.PluginInstance, finished); err != nil {
		// Unit могли удалить, пока задание выполнялось.
		l.logger.Warn("completed refresh for unknown unit", "error", err)
	}

	if l.refreshRepo != nil {
		if err := l.refreshRepo.Insert(ctx, l.deviceID, rec); err != nil {
			l.logger.Error("failed to append refresh log", "error", err)
		}
	}
	if l.stateRepo != nil {
		if err := l.stateRepo.Save(ctx, l.deviceID, l.manager.Snapshot()); err != nil {
			l.logger.Error("failed to persist state", "error", err)
		}
	}

	l.logger.Info("refresh completed",
		"job_id", payload.JobID,
		"plugin_id", payload.PluginID,
		"instance", payload.PluginInstance,
		"image_hash", payload.ImageHash,
	)
	return nil
}

func inflightKey(rotation, pluginID, instance string) string {
	return rotation + "|" + pluginID + "|" + instance
}
