package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// defaultActionTimeout — верхняя граница одного действия в сессии.
const defaultActionTimeout = 20 * time.Second

// ChromeFactory открывает сессии headless Chrome через chromedp.
type ChromeFactory struct {
	actionTimeout time.Duration
}

// NewChromeFactory создаёт фабрику Chrome-сессий.
// actionTimeout ограничивает каждое действие сессии (default: 20s).
func NewChromeFactory(actionTimeout time.Duration) *ChromeFactory {
	if actionTimeout <= 0 {
		actionTimeout = defaultActionTimeout
	}
	return &ChromeFactory{actionTimeout: actionTimeout}
}

// Open запускает Chrome и возвращает сессию.
func (f *ChromeFactory) Open(ctx context.Context, headless bool) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Пустой Run фактически стартует браузер
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrSessionInit, err)
	}

	return &chromeSession{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		timeout:     f.actionTimeout,
	}, nil
}

// chromeSession — сессия одной вкладки Chrome.
type chromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	tctx, cancel := s.withTimeout(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementNotFound, selector, err)
	}
	return nil
}

func (s *chromeSession) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery))
	return strings.TrimSpace(text), err
}

func (s *chromeSession) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var value string
	var ok bool
	err := s.run(ctx, chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery))
	return value, ok, err
}

func (s *chromeSession) SendKeys(ctx context.Context, selector, text string) error {
	return s.run(ctx,
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (s *chromeSession) Elements(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}

	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromeElement{session: s, node: n})
	}
	return elements, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
	return err
}

// run выполняет chromedp-действия, уважая и внешний контекст задачи,
// и контекст вкладки.
//
// Каждое действие ограничено по времени: query-действия chromedp ждут
// появления узла, поэтому без собственного дедлайна обращение к
// отсутствующему элементу висело бы до конца сессии. С дедлайном оно
// превращается в ошибку, которую оркестратор уже умеет обрабатывать.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tctx, cancel := s.withTimeout(ctx, s.timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

// withTimeout строит контекст вкладки с таймаутом, который дополнительно
// отменяется внешним контекстом задачи.
func (s *chromeSession) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	tctx, tcancel := context.WithTimeout(s.ctx, timeout)

	stop := context.AfterFunc(ctx, tcancel)
	return tctx, func() {
		stop()
		tcancel()
	}
}

// chromeElement — DOM-узел, полученный через chromedp.Nodes.
type chromeElement struct {
	session *chromeSession
	node    *cdp.Node
}

// Text читает textContent узла.
//
// chromedp.Text работает только по селекторам, поэтому для конкретного
// узла текст достаётся через DevTools protocol: resolve node → вызов
// JS-функции на полученном объекте.
func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}

		res, exc, err := runtime.CallFunctionOn(`function() { return this.textContent; }`).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if res != nil && res.Value != nil {
			return json.Unmarshal(res.Value, &text)
		}
		return nil
	}))
	return strings.TrimSpace(text), err
}

// Attribute возвращает атрибут из снимка узла, сделанного при запросе.
func (e *chromeElement) Attribute(name string) (string, bool) {
	attrs := e.node.Attributes
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == name {
			return attrs[i+1], true
		}
	}
	return "", false
}

func (e *chromeElement) Find(ctx context.Context, selector string) (Element, error) {
	children, err := e.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, nil
	}
	return children[0], nil
}

func (e *chromeElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := e.session.run(ctx, chromedp.Nodes(selector, &nodes,
		chromedp.ByQueryAll,
		chromedp.FromNode(e.node),
		chromedp.AtLeast(0),
	))
	if err != nil {
		return nil, err
	}

	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromeElement{session: e.session, node: n})
	}
	return elements, nil
}
