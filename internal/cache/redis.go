package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

type Cache struct {
	client     *redis.Client
	resultTTL  time.Duration
	profileTTL time.Duration
}

func NewCache(client *redis.Client, resultTTL, profileTTL time.Duration) *Cache {
	return &Cache{client: client, resultTTL: resultTTL, profileTTL: profileTTL}
}

func resultKey(userID int64, limit int) string {
	return fmt.Sprintf("rec:user:%d:limit:%d", userID, limit)
}

func profileKey(userID int64) string {
	return fmt.Sprintf("profile:user:%d", userID)
}

// GetRecommendations returns a cached blended result, if any.
func (c *Cache) GetRecommendations(ctx context.Context, userID int64, limit int) ([]domain.Candidate, bool, error) {
	key := resultKey(userID, limit)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var recs []domain.Candidate
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false, fmt.Errorf("unmarshal recommendations %s: %w", key, err)
	}
	return recs, true, nil
}

// SetRecommendations stores a blended result with the result TTL.
func (c *Cache) SetRecommendations(ctx context.Context, userID int64, limit int, recs []domain.Candidate) error {
	key := resultKey(userID, limit)
	val, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.resultTTL).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// GetProfile returns a cached user profile, if any.
func (c *Cache) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, bool, error) {
	key := profileKey(userID)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return nil, false, fmt.Errorf("unmarshal profile %s: %w", key, err)
	}
	return &profile, true, nil
}

// SetProfile stores a derived profile with the profile TTL.
func (c *Cache) SetProfile(ctx context.Context, profile *domain.UserProfile) error {
	key := profileKey(profile.UserID)
	val, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.profileTTL).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// InvalidateUser drops every cached result and the profile for a user. Called
// on feedback events and external library changes.
func (c *Cache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("rec:user:%d:limit:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache delete profile for user %d: %w", userID, err)
	}
	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
