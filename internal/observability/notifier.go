package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Notifier sends alert notifications to external channels.
type Notifier interface {
	Notify(alerts []Alert) error
}

// notifyTimeout bounds a single webhook delivery.
const notifyTimeout = 10 * time.Second

// slackNotifier sends alert notifications to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that sends alerts to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: notifyTimeout},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// maxSessionElements is Slack's context block element limit minus one slot
// for the overflow note.
const maxSessionElements = 9

// Notify sends the given alerts to the configured Slack webhook.
// It returns nil without making a request if the alerts slice is empty.
func (s *slackNotifier) Notify(alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	msg := s.buildMessage(alerts)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *slackNotifier) buildMessage(alerts []Alert) slackMessage {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("seqthink: %d reasoning alert(s)", len(alerts))},
		},
	}
	if n := affectedSessions(alerts); n > 0 {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("%d session(s) affected", n)}},
		})
	}

	for i, alert := range alerts {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		emoji := severityEmoji(alert.Severity)
		text := fmt.Sprintf("%s *[%s]* `%s` %s\n_%s_",
			emoji,
			strings.ToUpper(string(alert.Severity)),
			alert.Condition,
			slackEscape(alert.Message),
			alert.TriggeredAt.Format("2006-01-02 15:04 UTC"),
		)
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
		if len(alert.Sessions) > 0 {
			blocks = append(blocks, sessionContext(alert.Sessions))
		}
	}

	return slackMessage{Blocks: blocks}
}

// sessionContext lists an alert's sessions as "`id` title" elements.
func sessionContext(sessions []AlertSession) slackBlock {
	shown := sessions
	if len(shown) > maxSessionElements {
		shown = shown[:maxSessionElements]
	}
	elements := make([]slackText, 0, len(shown)+1)
	for _, sess := range shown {
		text := fmt.Sprintf("`%s`", sess.ID)
		if sess.Title != "" {
			text += " " + slackEscape(sess.Title)
		}
		elements = append(elements, slackText{Type: "mrkdwn", Text: text})
	}
	if extra := len(sessions) - len(shown); extra > 0 {
		elements = append(elements, slackText{Type: "mrkdwn", Text: fmt.Sprintf("+%d more", extra)})
	}
	return slackBlock{Type: "context", Elements: elements}
}

// affectedSessions counts distinct sessions across alerts.
func affectedSessions(alerts []Alert) int {
	seen := make(map[string]bool)
	for _, alert := range alerts {
		for _, sess := range alert.Sessions {
			seen[sess.ID] = true
		}
	}
	return len(seen)
}

// slackEscape escapes the characters Slack treats as control sequences in
// mrkdwn text. Session titles come from user input.
func slackEscape(s string) string {
	return slackEscaper.Replace(s)
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "\u2753"
	}
}
