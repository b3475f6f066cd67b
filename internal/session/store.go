// Package session keeps one record per bearer token holding the identity
// fields the navigation chrome needs, cleared entirely on logout. Tokens
// are never validated here; the backend stays the authority on every call.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront_gateway/internal/models"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        uuid.UUID `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"index;not null"       json:"user_id"`
	Role      string    `gorm:"not null"             json:"role"`
	Email     string    `gorm:"not null"             json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db  *gorm.DB
	bus *Bus

	// DefaultTTL applies when the bearer token carries no readable expiry.
	DefaultTTL time.Duration
}

func Open(path string, bus *Bus) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return &Store{db: db, bus: bus, DefaultTTL: 24 * time.Hour}, nil
}

// TokenExpiry reads the exp claim without verifying the signature. The
// gateway only needs a retention hint; validation belongs to the backend.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Create replaces any session stored for token and notifies auth-change
// subscribers.
func (s *Store) Create(ctx context.Context, token string, user models.User) (*Session, error) {
	expires, ok := TokenExpiry(token)
	if !ok {
		expires = time.Now().Add(s.DefaultTTL)
	}

	sess := &Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role(),
		Email:     user.Email,
		Name:      user.FirstName + " " + user.LastName,
		ExpiresAt: expires,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", token).Delete(&Session{}).Error; err != nil {
			return err
		}
		return tx.Create(sess).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.bus.Notify(Event{Type: AuthChanged, UserID: user.ID, Detail: "login"})
	return sess, nil
}

func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		s.db.WithContext(ctx).Delete(&sess)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete clears the session for token. Unknown tokens are not an error:
// logout is idempotent.
func (s *Store) Delete(ctx context.Context, token string) error {
	var sess Session
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&sess).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.bus.Notify(Event{Type: AuthChanged, UserID: sess.UserID, Detail: "logout"})
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&Session{})
	return res.RowsAffected, res.Error
}

// Sweep purges expired sessions until ctx is cancelled.
func (s *Store) Sweep(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				log.Error("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("expired sessions purged", "count", n)
			}
		}
	}
}
