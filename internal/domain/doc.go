// Package domain содержит общие типы данных Vigil.
//
// Здесь нет бизнес-логики — только структуры и их инварианты:
//   - TaskStatus, LogEntry, ScrapeParams — жизненный цикл задачи
//   - Record, ScrapeResult — результат scrape
//
// Все остальные пакеты зависят от domain, domain не зависит ни от кого.
package domain
