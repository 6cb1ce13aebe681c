package events

import (
	"time"

	"github.com/google/uuid"

	"screenpipe/internal/models"
	"screenpipe/internal/notify"
)

// SettingsEvent is the payload of SettingsChanged.
type SettingsEvent struct {
	ID        string          `json:"id"`
	Reason    string          `json:"reason"`
	Settings  models.Settings `json:"settings"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewSettingsEvent(change notify.Change) SettingsEvent {
	return SettingsEvent{
		ID:        uuid.NewString(),
		Reason:    change.Type.String(),
		Settings:  change.New,
		Timestamp: time.Now(),
	}
}
