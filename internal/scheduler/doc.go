// Package scheduler запускает scrape-задачи по cron-расписанию.
//
// Каждый тик создаёт задачу в registry и выполняет её синхронно с
// преднастроенными credentials. Одновременно выполняется не больше
// одной запланированной задачи: тик, заставший предыдущую в работе,
// пропускается.
package scheduler
