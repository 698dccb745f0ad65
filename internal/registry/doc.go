// Package registry хранит состояние scrape-задач в памяти процесса.
//
// Registry — листовой компонент без зависимостей: оркестратор публикует
// через него переходы статусов и лог-записи, HTTP-слой конкурентно
// опрашивает статус и выгребает логи.
//
// Гарантии:
//   - у задачи ровно один статус в любой момент времени
//   - pending → running → {completed, error}, терминальные статусы липкие
//   - результат доступен тогда и только тогда, когда статус терминальный
//   - DrainLogs отдаёт каждую запись не более одного раза, в порядке записи
//
// Завершённые задачи удаляются janitor'ом по TTL.
package registry
