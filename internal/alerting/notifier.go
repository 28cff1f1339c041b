package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification kinds.
const (
	KindThresholdCrossed = "threshold_crossed"
	KindShutdown         = "shutdown"
)

// Notification carries the alert context.
type Notification struct {
	Kind       string
	ObservedAt time.Time
	Liquidity  decimal.Decimal
	Symbol     string
	Threshold  decimal.Decimal
	Delta      decimal.Decimal
	DeltaPct   decimal.Decimal
	HasDelta   bool
}

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify posts the rendered text via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected telegram status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Str("kind", note.Kind).
		Time("observed_at", note.ObservedAt).
		Msg("alert delivered (telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	switch note.Kind {
	case KindShutdown:
		builder.WriteString("[Vault Liquidity Watcher]\n")
		builder.WriteString("Monitoring stopped.\n")
		builder.WriteString(fmt.Sprintf("Time: %s UTC\n", note.ObservedAt.UTC().Format(time.RFC3339)))
	default:
		builder.WriteString("[Vault Liquidity Alert]\n")
		builder.WriteString(fmt.Sprintf("Time: %s UTC\n", note.ObservedAt.UTC().Format(time.RFC3339)))
		builder.WriteString(fmt.Sprintf("Available liquidity: %s %s\n", FormatAmount(note.Liquidity), note.Symbol))
		builder.WriteString(fmt.Sprintf("Threshold: %s %s\n", FormatAmount(note.Threshold), note.Symbol))
		if note.HasDelta {
			sign := ""
			if note.Delta.Sign() > 0 {
				sign = "+"
			}
			builder.WriteString(fmt.Sprintf("Change: %s%s %s (%s%s%%)\n",
				sign, FormatAmount(note.Delta), note.Symbol, sign, note.DeltaPct.StringFixed(2)))
		}
	}
	return builder.String()
}

// FormatAmount renders a value with two decimals and spaces as thousands
// separators, e.g. 1234567.891 -> "1 234 567.89".
func FormatAmount(v decimal.Decimal) string {
	s := v.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, " ") + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

var _ Notifier = (*TelegramNotifier)(nil)
