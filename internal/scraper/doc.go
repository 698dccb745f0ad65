// Package scraper — оркестратор одной scrape-задачи.
//
// Scraper.Run ведёт задачу через весь жизненный цикл: браузерная
// сессия → логин с CAPTCHA → сбор listing-страниц → уведомление.
// Статусы и логи публикуются через registry, внешние способности
// (браузер, распознавание CAPTCHA, webhook) подключаются интерфейсами.
//
// Политика ошибок:
//   - не открылась сессия — задача сразу в error, без ретраев
//   - логин ретраится в пределах настроенных лимитов, затем error
//   - ошибки уровня строки/страницы не фатальны: пропуск и продолжение
//   - неудача уведомления логируется и не меняет исход задачи
//   - сессия закрывается ровно один раз на любом пути выхода
package scraper
