// Package api — HTTP-интерфейс сервиса.
//
// Три операции: запустить scrape-задачу, опросить её статус и
// стримить лог через Server-Sent Events. Запуск отвечает сразу,
// сама задача выполняется в фоне.
package api
