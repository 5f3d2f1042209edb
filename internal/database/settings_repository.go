package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LearnerSettings are the listening and study preferences of one learner.
// Local terminal sessions use the learner id "local"; the bot uses
// "tg:<user id>".
type LearnerSettings struct {
	LearnerID   string    `db:"learner_id"`
	Rate        float64   `db:"rate"`
	PromptVoice string    `db:"prompt_voice"`
	AnswerVoice string    `db:"answer_voice"`
	Flipped     bool      `db:"flipped"`
	RevealMode  string    `db:"reveal_mode"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// SettingsRepository handles database operations for learner settings
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Get retrieves learner settings, nil when the learner has none saved
func (r *SettingsRepository) Get(ctx context.Context, learnerID string) (*LearnerSettings, error) {
	query := DB.Rebind(`
		SELECT learner_id, rate, prompt_voice, answer_voice, flipped, reveal_mode, updated_at
		FROM learner_settings
		WHERE learner_id = ?
	`)

	settings := &LearnerSettings{}
	err := DB.GetContext(ctx, settings, query, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for %s: %w", learnerID, err)
	}
	return settings, nil
}

// Save creates or updates learner settings
func (r *SettingsRepository) Save(ctx context.Context, s *LearnerSettings) error {
	query := DB.Rebind(`
		INSERT INTO learner_settings (learner_id, rate, prompt_voice, answer_voice, flipped, reveal_mode, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id) DO UPDATE SET
			rate = excluded.rate,
			prompt_voice = excluded.prompt_voice,
			answer_voice = excluded.answer_voice,
			flipped = excluded.flipped,
			reveal_mode = excluded.reveal_mode,
			updated_at = excluded.updated_at
	`)
	s.UpdatedAt = time.Now().UTC()
	_, err := DB.ExecContext(ctx, query,
		s.LearnerID, s.Rate, s.PromptVoice, s.AnswerVoice, s.Flipped, s.RevealMode, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", s.LearnerID, err)
	}
	return nil
}
