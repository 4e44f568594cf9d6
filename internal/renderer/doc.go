// Package renderer выполняет refresh-задания.
//
// Renderer — stateless компонент: получает задание из очереди
// refresh.due, рендерит контент драйвером источника (по plugin_id),
// считает SHA-256 отпечаток результата, пишет файл для дисплея и
// публикует refresh.completed.
//
// Драйверы источников:
//   - http — скачивает контент по URL из настроек
//   - text — статический текстовый снимок
//
// Новые драйверы регистрируются через Registry.Register.
package renderer
