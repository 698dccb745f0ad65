package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Session — одна сессия браузерной автоматизации.
//
// Сессия принадлежит ровно одному оркестратору на время одной задачи
// и должна быть закрыта ровно один раз независимо от исхода.
type Session interface {
	// Navigate переходит на URL и ждёт загрузки страницы.
	Navigate(ctx context.Context, url string) error

	// WaitVisible ждёт видимости элемента не дольше timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Text возвращает текст первого элемента по селектору.
	Text(ctx context.Context, selector string) (string, error)

	// Attribute возвращает значение атрибута первого элемента.
	// ok == false, если атрибут отсутствует.
	Attribute(ctx context.Context, selector, name string) (value string, ok bool, err error)

	// SendKeys очищает поле и вводит текст.
	SendKeys(ctx context.Context, selector, text string) error

	// Click кликает по первому элементу.
	Click(ctx context.Context, selector string) error

	// Location возвращает текущий URL.
	Location(ctx context.Context) (string, error)

	// Elements возвращает все элементы по селектору (пустой срез, если нет).
	Elements(ctx context.Context, selector string) ([]Element, error)

	// Close освобождает браузер. Вызывается ровно один раз.
	Close() error
}

// Element — элемент DOM, полученный из Session.Elements.
type Element interface {
	// Text возвращает текстовое содержимое элемента.
	Text(ctx context.Context) (string, error)

	// Attribute возвращает значение атрибута элемента.
	Attribute(name string) (value string, ok bool)

	// Find ищет первый дочерний элемент по селектору.
	// Возвращает (nil, nil), если элемент не найден.
	Find(ctx context.Context, selector string) (Element, error)

	// FindAll ищет все дочерние элементы по селектору.
	FindAll(ctx context.Context, selector string) ([]Element, error)
}

// Factory открывает браузерные сессии.
type Factory interface {
	// Open запускает браузер и возвращает сессию.
	// Ошибка оборачивает ErrSessionInit — фатальна для задачи.
	Open(ctx context.Context, headless bool) (Session, error)
}

// ParseImageDataURL декодирует картинку из data URL
// (формат "data:image/png;base64,...").
//
// Именно так DULMS встраивает CAPTCHA в страницу логина.
func ParseImageDataURL(src string) ([]byte, error) {
	if !strings.HasPrefix(src, "data:image") {
		return nil, fmt.Errorf("%w: not an image data URL", ErrCaptchaImage)
	}

	_, encoded, found := strings.Cut(src, ",")
	if !found || encoded == "" {
		return nil, fmt.Errorf("%w: malformed data URL", ErrCaptchaImage)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrCaptchaImage, err)
	}
	return data, nil
}
