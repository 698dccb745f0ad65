package domain

import "time"

// Category — категория записей на listing-странице DULMS.
type Category string

const (
	// CategoryAssignments — задания (assignments).
	CategoryAssignments Category = "assignments"

	// CategoryQuizzes — квизы (quizzes).
	CategoryQuizzes Category = "quizzes"
)

// DoneMarker возвращает текст статуса, означающий что запись уже сдана.
// Сравнение регистронезависимое.
func (c Category) DoneMarker() string {
	switch c {
	case CategoryQuizzes:
		return "completed"
	default:
		return "submitted"
	}
}

// Record — одна запись listing-страницы (задание или квиз).
//
// Assignments и quizzes имеют идентичную структуру колонок,
// поэтому описываются одним типом.
type Record struct {
	// ID — идентификатор записи на сайте.
	ID string `json:"id"`

	// Title — название задания/квиза.
	Title string `json:"title"`

	// Course — название курса.
	Course string `json:"course"`

	// Deadline — дедлайн в исходном текстовом виде (dd/mm/yyyy).
	Deadline string `json:"deadline"`

	// DaysRemaining — количество дней до дедлайна.
	// Nil, если дата не распарсилась — такая запись сохраняется,
	// но никогда не попадает в уведомления.
	DaysRemaining *int `json:"days_remaining"`

	// Status — статус записи так, как его сообщает сайт
	// (например, "Submitted", "Not Submitted").
	Status string `json:"status"`

	// URL — ссылка на запись.
	URL string `json:"url"`
}

// ScrapeResult — результат одной scrape-попытки.
//
// Неизменяем после создания. Повторный scrape полностью заменяет
// предыдущий результат — никакого merge/delta нет.
type ScrapeResult struct {
	// Assignments — записи со страницы заданий (в порядке таблицы).
	Assignments []Record `json:"assignments"`

	// Quizzes — записи со страницы квизов (в порядке таблицы).
	Quizzes []Record `json:"quizzes"`

	// Timestamp — время завершения scrape.
	Timestamp time.Time `json:"timestamp"`

	// Success — true, если обе listing-страницы обработаны.
	// Пустые списки — это тоже успех: отсутствие данных не ошибка.
	Success bool `json:"success"`

	// Message — человекочитаемое описание исхода.
	Message string `json:"message"`
}
