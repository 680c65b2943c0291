package config

import (
	"strings"
	"time"
)

// CacheConfig controls the show-result response cache.  Results never
// change once committed, so TTL only bounds Redis memory.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	Methods      []string      `env:"CACHE_METHODS" envDefault:"GET" envSeparator:","`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"results"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`
}

func (c *CacheConfig) normalize() {
	out := c.Methods[:0]
	for _, m := range c.Methods {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			out = append(out, m)
		}
	}
	c.Methods = out
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "results"
	}
}

// Cacheable reports whether responses to method are cached.
func (c CacheConfig) Cacheable(method string) bool {
	for _, m := range c.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}
