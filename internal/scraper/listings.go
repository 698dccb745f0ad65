package scraper

import (
	"context"
	"time"

	"github.com/shaiso/Vigil/internal/browser"
	"github.com/shaiso/Vigil/internal/domain"
)

// deadlineLayout — формат дат на listing-страницах (dd/mm/yyyy).
const deadlineLayout = "02/01/2006"

// listingColumns — минимальное количество колонок в строке таблицы.
// Строки короче пропускаются.
const listingColumns = 6

// Раскладка колонок listing-таблицы DULMS.
const (
	colID       = 0
	colTitle    = 1
	colCourse   = 2
	colDeadline = 3
	colStatus   = 5
)

// listing — параметры одной listing-страницы.
type listing struct {
	category domain.Category
	url      string
	table    string // селектор контейнера таблицы
}

func (s *Scraper) assignmentsListing() listing {
	return listing{category: domain.CategoryAssignments, url: s.assignmentsURL, table: "#gvAssignment"}
}

func (s *Scraper) quizzesListing() listing {
	return listing{category: domain.CategoryQuizzes, url: s.quizzesURL, table: "#gvQuiz"}
}

// scrapeListing собирает записи одной listing-страницы.
//
// Любая проблема деградирует мягко: страница без таблицы — пустой
// список, битая строка — пропуск строки, нераспарсившаяся дата —
// запись без DaysRemaining. Частичные данные лучше упавшей задачи.
func (s *Scraper) scrapeListing(ctx context.Context, sess browser.Session, l listing, log *taskLog) []domain.Record {
	records := []domain.Record{}

	log.Info("navigating to %s page", l.category)
	if err := sess.Navigate(ctx, l.url); err != nil {
		log.Error("failed to open %s page: %v", l.category, err)
		return records
	}

	if err := sess.WaitVisible(ctx, l.table, s.waitTimeout); err != nil {
		log.Error("%s table not found: %v", l.category, err)
		return records
	}

	rows, err := sess.Elements(ctx, l.table+" tr")
	if err != nil {
		log.Error("failed to enumerate %s rows: %v", l.category, err)
		return records
	}
	if len(rows) > 0 {
		rows = rows[1:] // первая строка — шапка таблицы
	}

	log.Info("found %d %s entries", len(rows), l.category)

	now := time.Now()
	for i, row := range rows {
		rec, err := s.extractRow(ctx, row, l, now, log)
		if err != nil {
			log.Warn("skipping %s row %d: %v", l.category, i+1, err)
			continue
		}
		if rec == nil {
			continue // строка короче ожидаемой схемы
		}
		records = append(records, *rec)
	}

	log.Info("successfully scraped %d %s", len(records), l.category)
	return records
}

// extractRow извлекает одну запись из строки таблицы по фиксированной
// раскладке колонок. (nil, nil) — строка короче схемы, не ошибка.
func (s *Scraper) extractRow(ctx context.Context, row browser.Element, l listing, now time.Time, log *taskLog) (*domain.Record, error) {
	cells, err := row.FindAll(ctx, "td")
	if err != nil {
		return nil, err
	}
	if len(cells) < listingColumns {
		return nil, nil
	}

	id, err := cells[colID].Text(ctx)
	if err != nil {
		return nil, err
	}

	title, url, err := extractTitle(ctx, cells[colTitle], l.url)
	if err != nil {
		return nil, err
	}

	course, err := cells[colCourse].Text(ctx)
	if err != nil {
		return nil, err
	}

	deadline, err := cells[colDeadline].Text(ctx)
	if err != nil {
		return nil, err
	}

	status, err := cells[colStatus].Text(ctx)
	if err != nil {
		return nil, err
	}

	rec := &domain.Record{
		ID:       id,
		Title:    title,
		Course:   course,
		Deadline: deadline,
		Status:   status,
		URL:      url,
	}

	// Неразборчивая дата оставляет DaysRemaining пустым —
	// запись сохраняется, но в уведомления не попадает.
	if due, err := time.Parse(deadlineLayout, deadline); err == nil {
		days := int(due.Sub(now).Hours() / 24)
		rec.DaysRemaining = &days
	} else {
		log.Warn("failed to parse deadline date %q", deadline)
	}

	return rec, nil
}

// extractTitle берёт название и ссылку из title-колонки.
// Без ссылки — текст ячейки и URL самой listing-страницы.
func extractTitle(ctx context.Context, cell browser.Element, fallbackURL string) (title, url string, err error) {
	link, err := cell.Find(ctx, "a")
	if err != nil {
		return "", "", err
	}

	if link == nil {
		title, err = cell.Text(ctx)
		return title, fallbackURL, err
	}

	title, err = link.Text(ctx)
	if err != nil {
		return "", "", err
	}

	url, ok := link.Attribute("href")
	if !ok {
		url = fallbackURL
	}
	return title, url, nil
}
