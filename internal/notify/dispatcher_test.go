package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Vigil/internal/domain"
)

func intPtr(n int) *int { return &n }

func record(days *int, status string) domain.Record {
	return domain.Record{
		ID:            "1",
		Title:         "Lab 3",
		Course:        "CS101",
		Deadline:      "15/10/2025",
		DaysRemaining: days,
		Status:        status,
		URL:           "https://dulms.example/assignment/1",
	}
}

func TestFilterUpcoming(t *testing.T) {
	const threshold = 3

	tests := []struct {
		name string
		days *int
		want bool
	}{
		{"at threshold qualifies", intPtr(3), true},
		{"beyond threshold does not", intPtr(4), false},
		{"unparseable deadline never qualifies", nil, false},
		{"zero days qualifies", intPtr(0), true},
		{"overdue qualifies", intPtr(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterUpcoming([]domain.Record{record(tt.days, "Not Submitted")}, threshold)
			if (len(got) == 1) != tt.want {
				t.Errorf("qualify = %v, want %v", len(got) == 1, tt.want)
			}
		})
	}
}

func TestCardColor(t *testing.T) {
	tests := []struct {
		name     string
		days     *int
		status   string
		category domain.Category
		want     int
	}{
		{"due today is red", intPtr(0), "Not Submitted", domain.CategoryAssignments, colorUrgent},
		{"due tomorrow is red", intPtr(1), "Not Submitted", domain.CategoryAssignments, colorUrgent},
		{"two days out is yellow", intPtr(2), "Not Submitted", domain.CategoryAssignments, colorWarning},
		{"submitted overrides days", intPtr(5), "Submitted", domain.CategoryAssignments, colorDone},
		{"done marker is case-insensitive", intPtr(0), "SUBMITTED", domain.CategoryAssignments, colorDone},
		{"quiz done marker is completed", intPtr(0), "Completed", domain.CategoryQuizzes, colorDone},
		{"submitted is not a quiz marker", intPtr(2), "Submitted", domain.CategoryQuizzes, colorWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cardColor(record(tt.days, tt.status), tt.category)
			if got != tt.want {
				t.Errorf("color = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestDispatch_SinglePostWithQualifyingCards(t *testing.T) {
	var posts atomic.Int32
	var received Message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := New(Config{ThresholdDays: 3})

	// 5 заданий, из них 2 с дедлайном в пределах порога; квизы не проходят
	result := &domain.ScrapeResult{
		Assignments: []domain.Record{
			record(intPtr(1), "Not Submitted"),
			record(intPtr(3), "Not Submitted"),
			record(intPtr(5), "Not Submitted"),
			record(intPtr(10), "Not Submitted"),
			record(nil, "Not Submitted"),
		},
		Quizzes: []domain.Record{
			record(intPtr(7), "Not Attempted"),
		},
		Timestamp: time.Now(),
		Success:   true,
	}

	if ok := d.Dispatch(context.Background(), srv.URL, result); !ok {
		t.Fatal("dispatch should succeed")
	}

	if posts.Load() != 1 {
		t.Fatalf("expected exactly 1 POST, got %d", posts.Load())
	}
	if len(received.Embeds) != 2 {
		t.Fatalf("expected exactly 2 cards, got %d", len(received.Embeds))
	}
	if received.Content == "" {
		t.Error("banner content should be present")
	}
}

func TestDispatch_NoQualifyingRecords_NoPost(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
	}))
	defer srv.Close()

	d := New(Config{ThresholdDays: 3})

	result := &domain.ScrapeResult{
		Assignments: []domain.Record{record(intPtr(4), "Not Submitted")},
		Quizzes:     []domain.Record{record(nil, "Not Attempted")},
	}

	if ok := d.Dispatch(context.Background(), srv.URL, result); !ok {
		t.Error("nothing to send should not count as failure")
	}
	if posts.Load() != 0 {
		t.Errorf("expected no network call, got %d POSTs", posts.Load())
	}
}

func TestDispatch_WebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := New(Config{ThresholdDays: 3})
	result := &domain.ScrapeResult{
		Assignments: []domain.Record{record(intPtr(1), "Not Submitted")},
	}

	if ok := d.Dispatch(context.Background(), srv.URL, result); ok {
		t.Error("non-2xx response should report failure")
	}
}

func TestDispatch_EmptyWebhookURL(t *testing.T) {
	d := New(Config{})
	result := &domain.ScrapeResult{
		Assignments: []domain.Record{record(intPtr(1), "Not Submitted")},
	}

	if ok := d.Dispatch(context.Background(), "", result); ok {
		t.Error("empty webhook URL should report failure")
	}
}

func TestWebhookClient_TransportError(t *testing.T) {
	c := NewWebhookClient(nil)

	// Закрытый порт — транспортная ошибка, не паника
	if ok := c.Post(context.Background(), "http://127.0.0.1:1/webhook", Message{Content: "x"}); ok {
		t.Error("transport error should report failure")
	}
}
