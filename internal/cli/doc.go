// Package cli реализует инструмент командной строки Vigil.
//
// CLI — клиентская утилита для работы с Vigil API по HTTP, внутренние
// пакеты сервиса она не импортирует. Три операции: запустить
// scrape-задачу, посмотреть статус и следить за логом в реальном
// времени через SSE.
//
// Данные выводятся в stdout (таблица или JSON с флагом --json),
// сообщения — в stderr, так что вывод можно передавать в pipe:
// vigil scrape status ID --json | jq .
package cli
