package main

import (
	"net/http"
	"os"
	"time"

	"lyrics-resolver-go/circuitbreaker"
	"lyrics-resolver-go/config"
	"lyrics-resolver-go/logcolors"
	"lyrics-resolver-go/lyrics"
	"lyrics-resolver-go/middleware"
	"lyrics-resolver-go/publish"
	"lyrics-resolver-go/resolver"
	"lyrics-resolver-go/services/lrclib"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var conf = config.Get()

var (
	hub     *publish.Hub
	breaker *circuitbreaker.CircuitBreaker
	store   *lyrics.Store
	engine  *lyrics.Engine
	device  *lyrics.DeviceState
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel) // Set to InfoLevel (change to DebugLevel for detailed logs)
}

func main() {
	hub = publish.NewHub()

	breaker = circuitbreaker.New(circuitbreaker.Config{
		Name:      "lrclib",
		Threshold: conf.Configuration.CircuitBreakerThreshold,
		Cooldown:  time.Duration(conf.Configuration.CircuitBreakerCooldownSecs) * time.Second,
		Emitter:   hub,
	})

	client := lrclib.NewClient(conf.Configuration.LrclibBaseURL, conf.Configuration.ServerVersion, breaker)

	store = lyrics.NewStore(
		time.Duration(conf.Configuration.PositiveCacheTTLInSeconds)*time.Second,
		time.Duration(conf.Configuration.NegativeCacheTTLInSeconds)*time.Second,
	)

	engine = lyrics.NewEngine(store, resolver.New(client), hub, conf)
	device = &lyrics.DeviceState{}

	log.Infof("%s Lyrics enabled: %v, sources: %v", logcolors.LogConfig,
		conf.Configuration.LyricsEnabled, conf.EligibleSources())

	router := mux.NewRouter()
	setupRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowCredentials: false,
	})

	limiter := middleware.NewIPRateLimiter(
		rate.Limit(conf.Configuration.RateLimitPerSecond),
		conf.Configuration.RateLimitBurstLimit,
	)

	// logging, cors and rate limiting, innermost first
	handler := middleware.Logger(router)
	handler = c.Handler(handler)
	handler = middleware.RateLimit(limiter)(handler)

	port := conf.Configuration.Port
	log.Infof("%s Server listening on port %s", logcolors.LogServer, port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
