package service

import (
	"hikesoc/access-api/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StartTokenSweep schedules the expired token sweep. The source of
// truth for "expired" is expires_at, the sweep only reclaims rows
// that can never redeem anyway.
func StartTokenSweep(tokens *store.TokenStore) (*cron.Cron, error) {
	schedule := viper.GetString("tokens.sweep_schedule")

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := tokens.ExpireSweep(); err != nil {
			zap.L().Error("Failed to sweep expired tokens", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	zap.L().Debug("Token sweep attached", zap.String("schedule", schedule))

	c.Start()
	return c, nil
}
