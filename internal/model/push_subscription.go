package model

import (
	"strings"
	"time"
)

// PushSubscription holds the information for a staff browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Topics    string    `gorm:"not null;default:''"` // comma separated
	CreatedAt time.Time `gorm:"not null"`
}

// Wants reports whether the subscription asked for topic. An empty list means all topics.
func (p *PushSubscription) Wants(topic string) bool {
	if strings.TrimSpace(p.Topics) == "" {
		return true
	}
	for _, t := range strings.Split(p.Topics, ",") {
		if strings.TrimSpace(t) == topic {
			return true
		}
	}
	return false
}
