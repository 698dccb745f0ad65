// Package captcha — клиент внешнего сервиса распознавания CAPTCHA.
//
// Оркестратор зависит только от интерфейса Solver; HTTPSolver — его
// реализация поверх REST API сервиса распознавания.
package captcha
