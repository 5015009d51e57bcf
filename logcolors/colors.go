package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Cache-related log prefixes
const (
	LogCache         = Blue + "[Cache]" + Reset
	LogCacheLyrics   = Green + "[Cache:Lyrics]" + Reset
	LogCacheNegative = Cyan + "[Cache:Negative]" + Reset
	LogInFlight      = Cyan + "[Cache:InFlight]" + Reset
)

// Resolution pipeline log prefixes
const (
	LogResolver  = Blue + "[Resolver]" + Reset
	LogBestMatch = Green + "[Best Match]" + Reset
	LogSignature = Cyan + "[Signature]" + Reset
	LogPublish   = Green + "[Publish]" + Reset
	LogPrefetch  = Purple + "[Prefetch]" + Reset
	LogLyrics    = Blue + "[Lyrics]" + Reset
)

// HTTP surface log prefixes
const (
	LogServer    = Green + "[Server]" + Reset
	LogHTTP      = Cyan + "[HTTP]" + Reset
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogEvents    = Cyan + "[Events]" + Reset
	LogConfig    = Cyan + "[Config]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}
