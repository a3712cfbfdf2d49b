// Package session holds the identity of the user this front-end acts for and
// the account flows that establish it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/database"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the store key the identity is persisted under
const UserIDKey = "cs2_tracker_user_id"

// Messages shown when an account flow fails for a reason other than bad input
const (
	MsgSaveFailed    = "Failed to save webhook. Please try again."
	MsgRecoverFailed = "Failed to recover account. Please try again."
	MsgNoAccount     = "No account found. Create a new account instead."
)

var webhookPrefixes = []string{
	"https://discord.com/api/webhooks/",
	"https://discordapp.com/api/webhooks/",
}

// Accounts is the part of the backend client the account flows need
type Accounts interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	CreateUser(ctx context.Context, webhook string) (string, error)
	UpdateUser(ctx context.Context, userID, webhook string) error
	RecoverUser(ctx context.Context, r models.RecoverRequest) (string, error)
}

// Session is the process-wide identity. Create it once with New, call Init,
// then pass it to whatever needs to know the current user.
type Session struct {
	store    database.Store
	accounts Accounts
	log      *logrus.Entry

	mu     sync.RWMutex
	userID string
}

func New(store database.Store, accounts Accounts, log *logger.Log) *Session {
	return &Session{
		store:    store,
		accounts: accounts,
		log:      log.WithComponent("session"),
	}
}

// Init reads the persisted identity. A missing key leaves the session unset.
func (s *Session) Init(ctx context.Context) error {
	id, err := s.store.Get(ctx, UserIDKey)
	if errors.Is(err, database.ErrNotFound) {
		s.setLocal("")
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to read user id: %w", err)
	}
	s.setLocal(strings.TrimSpace(id))
	if id != "" {
		s.log.WithField("user_id", id).Debug("Restored session")
	}
	return nil
}

func (s *Session) setLocal(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

// UserID returns the current identity, or "" when unset
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Set persists id as the current identity. A blank id clears it.
func (s *Session) Set(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.Clear(ctx)
	}
	if err := s.store.Set(ctx, UserIDKey, id); err != nil {
		return fmt.Errorf("unable to save user id: %w", err)
	}
	s.setLocal(id)
	s.log.WithField("user_id", id).Info("Session set")
	return nil
}

// Clear forgets the identity locally; the account itself is untouched
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, UserIDKey); err != nil {
		return fmt.Errorf("unable to clear user id: %w", err)
	}
	s.setLocal("")
	s.log.Info("Session cleared")
	return nil
}

// ValidateWebhook checks that url is a Discord webhook URL
func ValidateWebhook(url string) error {
	for _, p := range webhookPrefixes {
		if strings.HasPrefix(url, p) {
			return nil
		}
	}
	return apierror.Validation("discordWebhook", "Invalid Discord webhook URL format")
}

// Setup saves the webhook for the current user. Without a user it first looks
// for an existing account with that webhook and creates one only when none
// exists. It returns the user id the session ends up with.
func (s *Session) Setup(ctx context.Context, webhook string) (string, error) {
	webhook = strings.TrimSpace(webhook)
	if webhook == "" {
		return "", apierror.Validation("discordWebhook", "Discord webhook URL is required")
	}
	if err := ValidateWebhook(webhook); err != nil {
		return "", err
	}

	if id := s.UserID(); id != "" {
		if err := s.accounts.UpdateUser(ctx, id, webhook); err != nil {
			s.log.WithError(err).WithField("user_id", id).Error("Error updating webhook")
			return "", err
		}
		return id, nil
	}

	id, err := s.accounts.RecoverUser(ctx, models.RecoverRequest{DiscordWebhook: webhook})
	switch {
	case apierror.IsNotFound(err):
		id, err = s.accounts.CreateUser(ctx, webhook)
		if err != nil {
			s.log.WithError(err).Error("Error creating user")
			return "", err
		}
		s.log.WithField("user_id", id).Info("Created account")
	case err != nil:
		s.log.WithError(err).Error("Error recovering account by webhook")
		return "", err
	default:
		s.log.WithField("user_id", id).Info("Recovered account by webhook")
	}

	if err := s.Set(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// Recover adopts an existing account. A user id, when given, is used and the
// webhook ignored for the lookup; a webhook, when given, must still be valid.
func (s *Session) Recover(ctx context.Context, userID, webhook string) (string, error) {
	userID = strings.TrimSpace(userID)
	webhook = strings.TrimSpace(webhook)
	if userID == "" && webhook == "" {
		return "", apierror.Validation("userId", "Please provide either a User ID or Discord webhook URL")
	}
	if webhook != "" {
		if err := ValidateWebhook(webhook); err != nil {
			return "", err
		}
	}

	req := models.RecoverRequest{UserID: userID}
	if userID == "" {
		req.DiscordWebhook = webhook
	}
	id, err := s.accounts.RecoverUser(ctx, req)
	if apierror.IsNotFound(err) {
		return "", apierror.NotFound(MsgNoAccount)
	}
	if err != nil {
		s.log.WithError(err).Error("Error recovering account")
		return "", err
	}

	if err := s.Set(ctx, id); err != nil {
		return "", err
	}
	s.log.WithField("user_id", id).Info("Recovered account")
	return id, nil
}

// Webhook returns the webhook configured for the current user, or "" when
// there is no user
func (s *Session) Webhook(ctx context.Context) (string, error) {
	id := s.UserID()
	if id == "" {
		return "", nil
	}
	u, err := s.accounts.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return u.DiscordWebhook, nil
}

// NeedsSetup reports whether the user still has to configure a webhook. A
// failed lookup counts as needing setup.
func (s *Session) NeedsSetup(ctx context.Context) bool {
	if s.UserID() == "" {
		return true
	}
	hook, err := s.Webhook(ctx)
	if err != nil {
		s.log.WithError(err).Debug("Could not check user settings")
		return true
	}
	return hook == ""
}
