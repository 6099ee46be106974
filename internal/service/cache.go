package service

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coocood/freecache"
	"github.com/templui/filesmanager/internal/model"
)

// UserCache keeps recently authenticated users in memory so the guard does
// not hit the database on every request. Password hashes are never cached.
// A nil *UserCache disables caching.
type UserCache struct {
	cache *freecache.Cache
	ttl   int
}

func NewUserCache(sizeBytes int, ttl time.Duration) *UserCache {
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return &UserCache{
		cache: freecache.NewCache(sizeBytes),
		ttl:   seconds,
	}
}

func (c *UserCache) Get(id string) (*model.User, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.cache.Get([]byte(id))
	if err != nil {
		return nil, false
	}

	var user model.User
	err = json.Unmarshal(raw, &user)
	if err != nil {
		c.cache.Del([]byte(id))
		return nil, false
	}
	return &user, true
}

func (c *UserCache) Set(user *model.User) {
	if c == nil || user == nil {
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	err = c.cache.Set([]byte(user.ID), raw, c.ttl)
	if err != nil {
		slog.Warn("user cache set failed", "error", err, "user_id", user.ID)
	}
}
