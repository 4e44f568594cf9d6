package renderer

import (
	"context"
	"fmt"
)

// PluginText — plugin_id драйвера text.
const PluginText = "text"

// Ключ настроек драйвера text.
const settingText = "text"

// TextSource — драйвер статического текстового снимка.
// Полезен для заглушек и для проверки пайплайна без внешних зависимостей.
type TextSource struct{}

// NewTextSource создаёт новый TextSource.
func NewTextSource() *TextSource {
	return &TextSource{}
}

// PluginID возвращает идентификатор драйвера.
func (s *TextSource) PluginID() string {
	return PluginText
}

// Render возвращает текст из настроек как байты контента.
func (s *TextSource) Render(_ context.Context, settings map[string]any) ([]byte, error) {
	text, _ := settings[settingText].(string)
	if text == "" {
		return nil, fmt.Errorf("%s: text is required", PluginText)
	}
	return []byte(text), nil
}
