package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Vitrine/internal/domain"
)

// StateRepo хранит документ конфигурации планировщика.
//
// Документ пишется целиком как JSONB, по одной строке на устройство:
// конфигурация маленькая, а атомарность записи всего документа важнее
// нормализации.
type StateRepo struct {
	pool *pgxpool.Pool
}

// NewStateRepo создаёт новый StateRepo.
func NewStateRepo(pool *pgxpool.Pool) *StateRepo {
	return &StateRepo{pool: pool}
}

// Load читает документ состояния устройства.
// Возвращает ErrNotFound, если устройство ещё не сохранялось.
func (r *StateRepo) Load(ctx context.Context, deviceID string) (domain.State, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT state FROM device_state WHERE device_id = $1`,
		deviceID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.State{}, fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load state: %w", err)
	}

	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.State{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return st, nil
}

// Save записывает документ состояния устройства (upsert).
func (r *StateRepo) Save(ctx context.Context, deviceID string, st domain.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO device_state (device_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`, deviceID, raw, time.Now())
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
