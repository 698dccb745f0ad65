// Package notify отправляет уведомления о скорых дедлайнах.
//
// Dispatcher — stateless pipeline: фильтрация по порогу дней,
// рендеринг карточек с цветовой кодировкой срочности, один POST
// на webhook. Доставка best-effort: неудача логируется и не влияет
// на исход задачи.
package notify
