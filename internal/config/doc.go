// Package config загружает конфигурацию Vigil из окружения.
//
// Поддерживает .env файлы через godotenv. Все значения имеют
// рабочие defaults, обязательных переменных нет — кроме
// credentials для scheduler'а, которые проверяет сам scheduler.
package config
