package abuse

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NullGate scores every action zero. It is the default when no abuse
// scoring backend is configured.
type NullGate struct{}

func (NullGate) Score(ctx context.Context, userID, action string) int { return 0 }

// VelocityGate scores users by action velocity: each action within the
// window adds to the score, so rapid-fire withdrawal requests cross
// the flag threshold on their own. Scoring errors degrade to zero; the
// gate advises, the audit queue decides.
type VelocityGate struct {
	client   *redis.Client
	window   time.Duration
	perEvent int
	logger   zerolog.Logger
}

// NewVelocityGate creates a VelocityGate counting events over the
// given window, perEvent score points each.
func NewVelocityGate(client *redis.Client, window time.Duration, perEvent int, logger zerolog.Logger) *VelocityGate {
	return &VelocityGate{
		client:   client,
		window:   window,
		perEvent: perEvent,
		logger:   logger.With().Str("component", "abuse_gate").Logger(),
	}
}

// Score counts the user's recent actions of this kind and returns the
// accumulated score. The current action is counted too.
func (g *VelocityGate) Score(ctx context.Context, userID, action string) int {
	key := fmt.Sprintf("abuse:%s:%s", action, userID)

	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		g.logger.Warn().Err(err).Str("user_id", userID).Msg("abuse score unavailable")
		return 0
	}

	if count == 1 {
		g.client.Expire(ctx, key, g.window)
	}

	return int(count) * g.perEvent
}
