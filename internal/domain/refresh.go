package domain

import "time"

// RefreshType — причина обновления контента.
type RefreshType string

const (
	// RefreshManual — обновление запрошено вручную (CLI или API).
	RefreshManual RefreshType = "Manual Update"

	// RefreshPlaylist — обновление по расписанию ротации.
	RefreshPlaylist RefreshType = "Playlist"
)

// RefreshRecord — запись о последнем событии обновления контента.
//
// Создаётся renderer-ом после регенерации контента; ядро планировщика
// её только читает. Если RefreshTime отсутствует, обновлений для
// владельца ещё не было.
type RefreshRecord struct {
	// RefreshTime — время обновления.
	RefreshTime *time.Time `json:"refresh_time,omitempty"`

	// ImageHash — SHA-256 отпечаток срендеренного контента.
	ImageHash string `json:"image_hash"`

	// RefreshType — причина обновления.
	RefreshType RefreshType `json:"refresh_type"`

	// PluginID — идентификатор источника контента.
	PluginID string `json:"plugin_id"`

	// Playlist — имя ротации, если RefreshType == RefreshPlaylist.
	Playlist string `json:"playlist,omitempty"`

	// PluginInstance — имя экземпляра, если RefreshType == RefreshPlaylist.
	PluginInstance string `json:"plugin_instance,omitempty"`
}

// Refreshed возвращает true, если обновление хотя бы раз происходило.
func (r *RefreshRecord) Refreshed() bool {
	return r.RefreshTime != nil
}
