package api

import (
	"time"

	"github.com/shaiso/Vitrine/internal/domain"
)

// Rotation DTOs

// CreateRotationRequest — запрос на создание ротации.
// Пустые границы окна означают весь день.
type CreateRotationRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// UpdateRotationRequest — запрос на обновление ротации.
type UpdateRotationRequest struct {
	Name      *string `json:"name,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// RotationResponse — ответ с ротацией.
type RotationResponse struct {
	Name      string         `json:"name"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Plugins   []UnitResponse `json:"plugins"`
	Cursor    *int           `json:"current_plugin_index,omitempty"`
}

// RotationFromDomain конвертирует domain.Rotation в RotationResponse.
func RotationFromDomain(r *domain.Rotation) RotationResponse {
	plugins := make([]UnitResponse, len(r.Plugins))
	for i, u := range r.Plugins {
		plugins[i] = UnitFromDomain(u)
	}
	return RotationResponse{
		Name:      r.Name,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Plugins:   plugins,
		Cursor:    r.Cursor,
	}
}

// ContentUnit DTOs

// CreateUnitRequest — запрос на добавление unit в ротацию.
type CreateUnitRequest struct {
	PluginID string               `json:"plugin_id"`
	Name     string               `json:"name"`
	Settings map[string]any       `json:"plugin_settings,omitempty"`
	Refresh  domain.RefreshPolicy `json:"refresh"`
}

// UpdateUnitRequest — частичное обновление unit.
type UpdateUnitRequest struct {
	Settings map[string]any        `json:"plugin_settings,omitempty"`
	Refresh  *domain.RefreshPolicy `json:"refresh,omitempty"`
}

// UnitResponse — ответ с unit.
type UnitResponse struct {
	PluginID      string               `json:"plugin_id"`
	Name          string               `json:"name"`
	Settings      map[string]any       `json:"plugin_settings,omitempty"`
	Refresh       domain.RefreshPolicy `json:"refresh"`
	LatestRefresh *time.Time           `json:"latest_refresh_time,omitempty"`
}

// UnitFromDomain конвертирует domain.ContentUnit в UnitResponse.
func UnitFromDomain(u *domain.ContentUnit) UnitResponse {
	return UnitResponse{
		PluginID:      u.PluginID,
		Name:          u.Name,
		Settings:      u.Settings,
		Refresh:       u.Refresh,
		LatestRefresh: u.LatestRefresh,
	}
}

// Status DTOs

// ActiveResponse — ответ о текущей активной ротации.
type ActiveResponse struct {
	// Rotation — активная ротация, nil если ничего не активно.
	Rotation *RotationResponse `json:"rotation,omitempty"`

	// At — момент, для которого вычислен ответ.
	At time.Time `json:"at"`
}

// RefreshJobResponse — ответ на запрос ручного обновления.
type RefreshJobResponse struct {
	JobID string `json:"job_id"`
}

// RefreshRecordResponse — запись журнала обновлений.
type RefreshRecordResponse struct {
	RefreshTime    *time.Time `json:"refresh_time,omitempty"`
	ImageHash      string     `json:"image_hash"`
	RefreshType    string     `json:"refresh_type"`
	PluginID       string     `json:"plugin_id"`
	Playlist       string     `json:"playlist,omitempty"`
	PluginInstance string     `json:"plugin_instance,omitempty"`
}

// RecordFromDomain конвертирует domain.RefreshRecord в RefreshRecordResponse.
func RecordFromDomain(rec *domain.RefreshRecord) RefreshRecordResponse {
	return RefreshRecordResponse{
		RefreshTime:    rec.RefreshTime,
		ImageHash:      rec.ImageHash,
		RefreshType:    string(rec.RefreshType),
		PluginID:       rec.PluginID,
		Playlist:       rec.Playlist,
		PluginInstance: rec.PluginInstance,
	}
}
