// Package browser абстрагирует браузерную автоматизацию.
//
// Ядро системы зависит только от интерфейсов Session/Element/Factory —
// оркестратор "водит" сессию, ничего не зная о её реализации.
// Единственная реализация — headless Chrome через chromedp
// (chromedp.go); в тестах ядра используются in-memory фейки.
package browser
