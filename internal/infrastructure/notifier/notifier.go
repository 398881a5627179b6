package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pravino/tapcore/internal/domain"
)

// Notifier is the fire-and-forget sink for settlement summaries.
// Delivery (Telegram, email, whatever the bot layer does with it) is
// an external concern; failures are logged and never propagate into
// settlement.
type Notifier interface {
	SettlementCompleted(ctx context.Context, summary *domain.SettlementSummary)
	OracleFrozen(ctx context.Context)
	TierExpiring(ctx context.Context, user *domain.User)
}

// LogNotifier writes notifications to the structured log. It is the
// default sink when no external delivery channel is wired.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) SettlementCompleted(ctx context.Context, summary *domain.SettlementSummary) {
	n.logger.Info().
		Str("tier", summary.TierName).
		Str("game", string(summary.Game)).
		Int("active_users", summary.ActiveUsers).
		Str("total_pot", summary.TotalPot.String()).
		Int("winners", summary.WinnersCount).
		Str("share_per_winner", summary.SharePerWinner.String()).
		Str("new_rollover", summary.NewRollover.String()).
		Msg("settlement completed")
}

func (n *LogNotifier) OracleFrozen(ctx context.Context) {
	n.logger.Warn().Msg("settlement delayed: oracle frozen")
}

func (n *LogNotifier) TierExpiring(ctx context.Context, user *domain.User) {
	event := n.logger.Info().
		Str("user_id", user.ID).
		Str("tier", user.TierName)
	if user.TierExpiresAt != nil {
		event = event.Time("expires_at", *user.TierExpiresAt)
	}
	event.Msg("subscription expiring soon")
}
