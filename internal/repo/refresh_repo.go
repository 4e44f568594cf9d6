package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Vitrine/internal/domain"
)

// RefreshRepo — журнал выполненных обновлений контента.
type RefreshRepo struct {
	pool *pgxpool.Pool
}

// NewRefreshRepo создаёт новый RefreshRepo.
func NewRefreshRepo(pool *pgxpool.Pool) *RefreshRepo {
	return &RefreshRepo{pool: pool}
}

// Insert добавляет запись об обновлении в журнал.
func (r *RefreshRepo) Insert(ctx context.Context, deviceID string, rec *domain.RefreshRecord) error {
	query := `
		INSERT INTO refresh_log (id, device_id, refresh_type, plugin_id,
		                         playlist, plugin_instance, image_hash, refresh_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		uuid.New(),
		deviceID,
		string(rec.RefreshType),
		rec.PluginID,
		nullString(rec.Playlist),
		nullString(rec.PluginInstance),
		rec.ImageHash,
		rec.RefreshTime,
	)
	if err != nil {
		return fmt.Errorf("insert refresh record: %w", err)
	}
	return nil
}

// Latest возвращает последнюю запись об обновлении unit.
func (r *RefreshRepo) Latest(ctx context.Context, deviceID, pluginID, instance string) (*domain.RefreshRecord, error) {
	query := `
		SELECT refresh_type, plugin_id, playlist, plugin_instance, image_hash, refresh_time
		FROM refresh_log
		WHERE device_id = $1 AND plugin_id = $2 AND plugin_instance = $3
		ORDER BY refresh_time DESC
		LIMIT 1
	`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, deviceID, pluginID, instance))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List возвращает последние записи журнала устройства.
func (r *RefreshRepo) List(ctx context.Context, deviceID string, limit int) ([]domain.RefreshRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT refresh_type, plugin_id, playlist, plugin_instance, image_hash, refresh_time
		FROM refresh_log
		WHERE device_id = $1
		ORDER BY refresh_time DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list refresh log: %w", err)
	}
	defer rows.Close()

	var records []domain.RefreshRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*domain.RefreshRecord, error) {
	var rec domain.RefreshRecord
	var refreshType string
	var playlist, instance *string

	err := row.Scan(
		&refreshType,
		&rec.PluginID,
		&playlist,
		&instance,
		&rec.ImageHash,
		&rec.RefreshTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan refresh record: %w", err)
	}

	rec.RefreshType = domain.RefreshType(refreshType)
	if playlist != nil {
		rec.Playlist = *playlist
	}
	if instance != nil {
		rec.PluginInstance = *instance
	}
	return &rec, nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
