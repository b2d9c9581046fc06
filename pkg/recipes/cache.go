package recipes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/coocood/freecache"
)

// searchCache хранит удачные результаты поиска по нормализованному запросу.
//
// Пустые результаты не кэшируются: "не найдено" может быть временным сбоем.
type searchCache struct {
	store *freecache.Cache
	ttl   int // секунды
}

// newSearchCache возвращает nil, если ttl <= 0 (кэш выключен).
func newSearchCache(sizeMB int, ttl time.Duration) *searchCache {
	if ttl <= 0 {
		return nil
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &searchCache{
		store: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   seconds,
	}
}

func cacheKey(query string) []byte {
	return []byte(strings.ToLower(strings.Join(strings.Fields(query), " ")))
}

func (c *searchCache) get(query string) (*Recipe, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.store.Get(cacheKey(query))
	if err != nil {
		return nil, false
	}
	var r Recipe
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	return &r, true
}

func (c *searchCache) put(query string, r *Recipe) error {
	if c == nil || r == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.store.Set(cacheKey(query), raw, c.ttl)
}
