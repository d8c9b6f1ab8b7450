package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	pkhttp "github.com/randalmurphal/pipekit/http"
)

// SlackNotifier posts events to a Slack incoming webhook as a single
// attachment coloured by severity.
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	n := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "pipekit",
		client:     pkhttp.NewClient(pkhttp.ClientOptions{Timeout: 10 * time.Second}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SlackOption configures SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackChannel overrides the webhook's default channel.
func WithSlackChannel(channel string) SlackOption {
	return func(n *SlackNotifier) { n.channel = channel }
}

// WithSlackUsername sets the bot username.
func WithSlackUsername(username string) SlackOption {
	return func(n *SlackNotifier) { n.username = username }
}

// WithSlackClient replaces the HTTP client.
func WithSlackClient(c *http.Client) SlackOption {
	return func(n *SlackNotifier) { n.client = c }
}

// Name implements the naming used in Multi errors.
func (n *SlackNotifier) Name() string { return "slack" }

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, event Event) error {
	payload := slackPayload{
		Username: n.username,
		Channel:  n.channel,
		Attachments: []slackAttachment{
			{
				Color:     slackColor(event.Severity),
				Title:     fmt.Sprintf("%s %s", slackEmoji(event.Type), event.Type),
				TitleLink: event.PipelineURL,
				Text:      event.Message,
				Footer:    fmt.Sprintf("pipekit %s", event.Command),
				Timestamp: event.Timestamp.Unix(),
				Fields:    slackFields(event.Metadata),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	return post(ctx, n.client, "slack", n.webhookURL, body, nil)
}

func slackEmoji(typ EventType) string {
	switch typ {
	case EventArtifactFetched:
		return ":package:"
	case EventLintPassed:
		return ":white_check_mark:"
	case EventArtifactFailed, EventLintFailed:
		return ":x:"
	case EventCommitsFailed:
		return ":memo:"
	case EventLicensesFailed:
		return ":scales:"
	default:
		return ":loudspeaker:"
	}
}

func slackColor(severity Severity) string {
	switch severity {
	case SeverityError:
		return "danger"
	case SeverityWarning:
		return "warning"
	default:
		return "good"
	}
}

func slackFields(metadata map[string]any) []slackField {
	if len(metadata) == 0 {
		return nil
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fields := make([]slackField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, slackField{
			Title: k,
			Value: fmt.Sprintf("%v", metadata[k]),
			Short: true,
		})
	}
	return fields
}

type slackPayload struct {
	Username    string            `json:"username,omitempty"`
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link,omitempty"`
	Text      string       `json:"text"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
	Fields    []slackField `json:"fields,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
