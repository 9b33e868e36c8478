package notifier

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"PairSentinel/internal/model"
	"PairSentinel/internal/store"
)

// Notification kinds recorded alongside each delivery.
const (
	KindSignal  = "signal"
	KindPair    = "pair"
	KindError   = "error"
	KindSummary = "summary"
	KindSystem  = "system"
)

// Message is a fully rendered notification ready for delivery.
type Message struct {
	Kind     string
	Title    string
	Body     string
	Tags     []string
	Priority string // empty means the notifier default
}

// Notifier delivers alerts produced by the analysis cycle.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	SendSignal(ctx context.Context, coin *model.AssetAnalysis) error
	SendPairAlert(ctx context.Context, pair *model.PairCandidate) error
	SendCycleError(ctx context.Context, benchmark string, cycleErr error) error
	SendDailySummary(ctx context.Context, summary *model.MarketSummary) error
}

// recordDelivery writes a sent notification into the store.
// Failures are logged, not propagated.
func recordDelivery(ctx context.Context, st store.Store, msg Message) {
	if st == nil {
		return
	}
	if err := st.SaveNotification(ctx, msg.Kind, msg.Title, msg.Body); err != nil {
		log.WithFields(log.Fields{"component": "notifier"}).
			Warningf("record notification: [%v]", err)
	}
}

// LogNotifier writes notifications to the log instead of pushing them.
// Used when no ntfy topic is configured.
type LogNotifier struct {
	Store store.Store
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(st store.Store) *LogNotifier { return &LogNotifier{Store: st} }

func (l *LogNotifier) Send(ctx context.Context, msg Message) error {
	log.WithFields(log.Fields{"component": "notifier", "kind": msg.Kind}).
		Infof("%s: %s", msg.Title, strings.ReplaceAll(msg.Body, "\n", " | "))
	recordDelivery(ctx, l.Store, msg)
	return nil
}

func (l *LogNotifier) SendSignal(ctx context.Context, coin *model.AssetAnalysis) error {
	return l.Send(ctx, FormatSignalAlert(coin))
}

func (l *LogNotifier) SendPairAlert(ctx context.Context, pair *model.PairCandidate) error {
	return l.Send(ctx, FormatPairAlert(pair))
}

func (l *LogNotifier) SendCycleError(ctx context.Context, benchmark string, cycleErr error) error {
	return l.Send(ctx, FormatCycleError(benchmark, cycleErr))
}

func (l *LogNotifier) SendDailySummary(ctx context.Context, summary *model.MarketSummary) error {
	return l.Send(ctx, FormatDailySummary(summary))
}
