package models

import (
	"time"
)

// User represents a backend account. The only setting it carries is the
// Discord webhook alerts are delivered to.
type User struct {
	ID             string     `json:"userId"`
	DiscordWebhook string     `json:"discordWebhook"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// UserSettings is the body of create and update user requests
type UserSettings struct {
	DiscordWebhook string `json:"discordWebhook"`
}

// RecoverRequest identifies an account either by id or by webhook
type RecoverRequest struct {
	UserID         string `json:"userId,omitempty"`
	DiscordWebhook string `json:"discordWebhook,omitempty"`
}

// UserRef is returned by create and recover
type UserRef struct {
	UserID string `json:"userId"`
}
