package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		Port          string `envconfig:"PORT" default:"8585"`
		ServerVersion string `envconfig:"SERVER_VERSION" default:"dev"`

		// Lyrics feature
		LyricsEnabled bool   `envconfig:"LYRICS_ENABLED" default:"true"`
		LyricsSources string `envconfig:"LYRICS_SOURCES" default:"tidal"` // comma-separated track sources eligible for lyrics lookup

		// Upstream lookup service
		LrclibBaseURL string `envconfig:"LRCLIB_BASE_URL" default:"https://lrclib.net"`

		// Device polling
		MetadataPollIntervalMs int `envconfig:"METADATA_POLL_INTERVAL_MS" default:"2000"`

		// Cache TTLs. Positive matches are assumed durable; negative results
		// are retried sooner because lyrics may appear upstream at any time.
		PositiveCacheTTLInSeconds int `envconfig:"POSITIVE_CACHE_TTL_IN_SECONDS" default:"21600"`
		NegativeCacheTTLInSeconds int `envconfig:"NEGATIVE_CACHE_TTL_IN_SECONDS" default:"600"`

		CacheAccessToken string `envconfig:"CACHE_ACCESS_TOKEN" default:""`

		RateLimitPerSecond  int `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
		RateLimitBurstLimit int `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"10"`

		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"`
	}
}

// EligibleSources returns the normalized list of track sources the lyrics
// feature should resolve for.
func (c Config) EligibleSources() []string {
	var sources []string
	for _, s := range strings.Split(c.Configuration.LyricsSources, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
