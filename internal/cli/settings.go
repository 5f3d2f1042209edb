package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/database"
)

// localSettings returns the saved terminal settings, or a fresh record.
func localSettings(ctx context.Context, log *zap.Logger) *database.LearnerSettings {
	s, err := database.NewSettingsRepository().Get(ctx, LocalLearner)
	if err != nil {
		log.Warn("Unable to load settings", zap.Error(err))
	}
	if s == nil {
		s = &database.LearnerSettings{LearnerID: LocalLearner}
	}
	return s
}

func saveLocalSettings(ctx context.Context, log *zap.Logger, s *database.LearnerSettings) {
	if err := database.NewSettingsRepository().Save(ctx, s); err != nil {
		log.Warn("Unable to save settings", zap.Error(err))
	}
}
