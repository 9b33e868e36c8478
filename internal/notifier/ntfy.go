package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"PairSentinel/internal/model"
	"PairSentinel/internal/store"
)

// NtfyNotifier pushes notifications to an ntfy topic over plain HTTP POST.
type NtfyNotifier struct {
	Server     string
	Topic      string
	Priority   string
	MaxRetries int
	Client     *http.Client
	Store      store.Store
}

var _ Notifier = (*NtfyNotifier)(nil)

// NewNtfyNotifier creates a notifier for the given topic. An empty server
// falls back to the public ntfy.sh instance.
func NewNtfyNotifier(server, topic, priority string, st store.Store) *NtfyNotifier {
	if server == "" {
		server = "https://ntfy.sh"
	}
	if priority == "" {
		priority = "default"
	}
	return &NtfyNotifier{
		Server:     strings.TrimRight(server, "/"),
		Topic:      topic,
		Priority:   priority,
		MaxRetries: 3,
		Client:     &http.Client{Timeout: 30 * time.Second},
		Store:      st,
	}
}

// Send delivers a message with exponential backoff retry.
func (n *NtfyNotifier) Send(ctx context.Context, msg Message) error {
	var lastErr error
	for i := 0; i <= n.MaxRetries; i++ {
		if err := n.post(ctx, msg); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.WithFields(log.Fields{"component": "notifier"}).
				Warningf("ntfy publish failed (attempt %d/%d): [%v], retrying in %v", i+1, n.MaxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		recordDelivery(ctx, n.Store, msg)
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", n.MaxRetries+1, lastErr)
}

func (n *NtfyNotifier) SendSignal(ctx context.Context, coin *model.AssetAnalysis) error {
	return n.Send(ctx, FormatSignalAlert(coin))
}

func (n *NtfyNotifier) SendPairAlert(ctx context.Context, pair *model.PairCandidate) error {
	return n.Send(ctx, FormatPairAlert(pair))
}

func (n *NtfyNotifier) SendCycleError(ctx context.Context, benchmark string, cycleErr error) error {
	return n.Send(ctx, FormatCycleError(benchmark, cycleErr))
}

func (n *NtfyNotifier) SendDailySummary(ctx context.Context, summary *model.MarketSummary) error {
	return n.Send(ctx, FormatDailySummary(summary))
}

func (n *NtfyNotifier) post(ctx context.Context, msg Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", n.Server, n.Topic), strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Title", msg.Title)
	priority := msg.Priority
	if priority == "" {
		priority = n.Priority
	}
	req.Header.Set("Priority", priority)
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ntfy API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
