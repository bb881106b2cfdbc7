package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/activation_api/internal/models"
)

// SessionStore persists sessions in Redis.
// Primary key: session:{token}
// Index key:   session:principal:{kind}:{id} (set of tokens)
type SessionStore struct {
	redis *RedisClient
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(redis *RedisClient) *SessionStore {
	return &SessionStore{redis: redis}
}

func (s *SessionStore) keyByToken(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *SessionStore) keyByPrincipal(kind models.PrincipalKind, id int) string {
	return fmt.Sprintf("session:principal:%s:%d", kind, id)
}

// Save stores the session until its expiry.
func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.keyByToken(session.ID), string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	if err := s.redis.AddToSet(ctx, s.keyByPrincipal(session.PrincipalKind, session.PrincipalID), ttl, session.ID); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}
	return nil
}

// Get returns the session for token. A missing key yields (nil, nil).
func (s *SessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	jsonData, err := s.redis.Get(ctx, s.keyByToken(token))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	if err := s.redis.Delete(ctx, s.keyByToken(token)); err != nil {
		return err
	}
	if session != nil {
		return s.redis.RemoveFromSet(ctx, s.keyByPrincipal(session.PrincipalKind, session.PrincipalID), token)
	}
	return nil
}

// DeleteAllFor removes every session held by a principal.
func (s *SessionStore) DeleteAllFor(ctx context.Context, kind models.PrincipalKind, id int) error {
	indexKey := s.keyByPrincipal(kind, id)
	tokens, err := s.redis.SetMembers(ctx, indexKey)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, s.keyByToken(t))
	}
	keys = append(keys, indexKey)
	return s.redis.Delete(ctx, keys...)
}

// TokensFor lists the tokens indexed for a principal. Some may already be
// expired; callers resolve each with Get.
func (s *SessionStore) TokensFor(ctx context.Context, kind models.PrincipalKind, id int) ([]string, error) {
	return s.redis.SetMembers(ctx, s.keyByPrincipal(kind, id))
}
