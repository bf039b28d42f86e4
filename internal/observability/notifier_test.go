package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// captureWebhook starts a webhook that records the last Slack message.
func captureWebhook(t *testing.T, status int) (*httptest.Server, *slackMessage, *string) {
	t.Helper()
	var msg slackMessage
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Errorf("unmarshaling request body: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &msg, &contentType
}

func blockTypes(msg *slackMessage) []string {
	types := make([]string, len(msg.Blocks))
	for i, b := range msg.Blocks {
		types[i] = b.Type
	}
	return types
}

func TestSlackNotifier_NoAlerts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	if err := n.Notify(nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := n.Notify([]Alert{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if called {
		t.Fatal("expected no HTTP request for empty alerts")
	}
}

func TestSlackNotifier_SendsSessionAlerts(t *testing.T) {
	srv, msg, contentType := captureWebhook(t, http.StatusOK)
	triggered := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	alerts := []Alert{
		{
			ID:        "persist-failures",
			Condition: "session_persist_failed",
			Severity:  SeverityHigh,
			Message:   "3 session write(s) failed across 2 session(s); on-disk sessions may be stale",
			Sessions: []AlertSession{
				{ID: "s-1", Title: "Solution Plan: queue rollout"},
				{ID: "s-2", Title: "Problem Analysis: cache misses"},
			},
			TriggeredAt: triggered,
		},
		{
			ID:          "stale-s-2",
			Condition:   "session_stale",
			Severity:    SeverityLow,
			Message:     "session s-2 has had no thoughts for more than 24 hours",
			Sessions:    []AlertSession{{ID: "s-2", Title: "Problem Analysis: cache misses"}},
			TriggeredAt: triggered,
		},
	}

	if err := NewSlackNotifier(srv.URL).Notify(alerts); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if *contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", *contentType)
	}

	want := []string{"header", "context", "section", "context", "divider", "section", "context"}
	if got := blockTypes(msg); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("block types = %v, want %v", got, want)
	}

	if msg.Blocks[0].Text == nil || msg.Blocks[0].Text.Text != "seqthink: 2 reasoning alert(s)" {
		t.Errorf("unexpected header: %+v", msg.Blocks[0].Text)
	}
	if got := msg.Blocks[1].Elements; len(got) != 1 || got[0].Text != "2 session(s) affected" {
		t.Errorf("affected summary = %+v, want 2 distinct sessions", got)
	}

	section := msg.Blocks[2].Text.Text
	for _, want := range []string{"*[HIGH]*", "`session_persist_failed`", "across 2 session(s)", "2025-01-15 10:30 UTC"} {
		if !strings.Contains(section, want) {
			t.Errorf("first section missing %q: %s", want, section)
		}
	}

	sessions := msg.Blocks[3].Elements
	if len(sessions) != 2 {
		t.Fatalf("expected 2 session elements, got %+v", sessions)
	}
	if sessions[0].Type != "mrkdwn" || sessions[0].Text != "`s-1` Solution Plan: queue rollout" {
		t.Errorf("session element 0 = %+v", sessions[0])
	}
	if sessions[1].Text != "`s-2` Problem Analysis: cache misses" {
		t.Errorf("session element 1 = %+v", sessions[1])
	}

	if !strings.Contains(msg.Blocks[5].Text.Text, "*[LOW]* `session_stale`") {
		t.Errorf("second section = %s", msg.Blocks[5].Text.Text)
	}
}

func TestSlackNotifier_SessionWithoutTitle(t *testing.T) {
	srv, msg, _ := captureWebhook(t, http.StatusOK)

	err := NewSlackNotifier(srv.URL).Notify([]Alert{{
		ID:          "churn-s-9",
		Condition:   "revision_churn",
		Severity:    SeverityMedium,
		Message:     "session s-9 has 11 revisions, exceeding the maximum of 10",
		Sessions:    []AlertSession{{ID: "s-9"}},
		TriggeredAt: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	last := msg.Blocks[len(msg.Blocks)-1]
	if last.Type != "context" || len(last.Elements) != 1 || last.Elements[0].Text != "`s-9`" {
		t.Errorf("untitled session block = %+v", last)
	}
}

func TestSlackNotifier_SessionlessAlertHasNoContext(t *testing.T) {
	srv, msg, _ := captureWebhook(t, http.StatusOK)

	err := NewSlackNotifier(srv.URL).Notify([]Alert{{
		ID:          "persist-failures",
		Condition:   "session_persist_failed",
		Severity:    SeverityHigh,
		Message:     "1 session write(s) failed across 0 session(s); on-disk sessions may be stale",
		TriggeredAt: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := blockTypes(msg); strings.Join(got, ",") != "header,section" {
		t.Errorf("block types = %v, want header,section", got)
	}
}

func TestSlackNotifier_SessionOverflow(t *testing.T) {
	srv, msg, _ := captureWebhook(t, http.StatusOK)

	sessions := make([]AlertSession, 12)
	for i := range sessions {
		sessions[i] = AlertSession{ID: fmt.Sprintf("s-%02d", i)}
	}
	err := NewSlackNotifier(srv.URL).Notify([]Alert{{
		ID: "persist-failures", Condition: "session_persist_failed", Severity: SeverityHigh,
		Message: "writes failing", Sessions: sessions, TriggeredAt: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	elements := msg.Blocks[len(msg.Blocks)-1].Elements
	if len(elements) != maxSessionElements+1 {
		t.Fatalf("expected %d elements, got %d", maxSessionElements+1, len(elements))
	}
	if got := elements[len(elements)-1].Text; got != "+3 more" {
		t.Errorf("overflow element = %q, want +3 more", got)
	}
	if got := msg.Blocks[1].Elements[0].Text; got != "12 session(s) affected" {
		t.Errorf("affected summary = %q", got)
	}
}

func TestSlackNotifier_EscapesSessionTitles(t *testing.T) {
	srv, msg, _ := captureWebhook(t, http.StatusOK)

	err := NewSlackNotifier(srv.URL).Notify([]Alert{{
		ID: "stale-s-1", Condition: "session_stale", Severity: SeverityLow,
		Message:     "session s-1 has had no thoughts for more than 24 hours",
		Sessions:    []AlertSession{{ID: "s-1", Title: "Options: <Redis> & <Postgres>"}},
		TriggeredAt: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := msg.Blocks[len(msg.Blocks)-1].Elements[0].Text
	if want := "`s-1` Options: &lt;Redis&gt; &amp; &lt;Postgres&gt;"; got != want {
		t.Errorf("escaped title = %q, want %q", got, want)
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv, _, _ := captureWebhook(t, http.StatusInternalServerError)

	err := NewSlackNotifier(srv.URL).Notify([]Alert{{
		ID:          "persist-failures",
		Condition:   "session_persist_failed",
		Severity:    SeverityHigh,
		Message:     "writes failing",
		TriggeredAt: time.Now().UTC(),
	}})
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to contain status code 500, got: %s", err.Error())
	}
}

func TestSlackNotifier_SeverityEmojis(t *testing.T) {
	tests := []struct {
		severity  AlertSeverity
		condition string
		emoji     string
	}{
		{SeverityHigh, "session_persist_failed", "\U0001f534"},
		{SeverityMedium, "revision_churn", "\U0001f7e1"},
		{SeverityLow, "session_stale", "\U0001f535"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			srv, msg, _ := captureWebhook(t, http.StatusOK)

			err := NewSlackNotifier(srv.URL).Notify([]Alert{{
				ID:          tt.condition,
				Condition:   tt.condition,
				Severity:    tt.severity,
				Message:     "session s-1 needs attention",
				Sessions:    []AlertSession{{ID: "s-1"}},
				TriggeredAt: time.Now().UTC(),
			}})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			section := msg.Blocks[2].Text.Text
			if !strings.HasPrefix(section, tt.emoji) {
				t.Errorf("section %q should start with %s for %s", section, tt.emoji, tt.severity)
			}
		})
	}
}
