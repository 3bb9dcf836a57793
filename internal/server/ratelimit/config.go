package ratelimit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one route. Path is a route pattern such as
// "/interviews/{id}/respond", or a prefix ending in "/". Burst defaults to
// Limit when zero.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// DefaultEndpointConfigs returns the limits for the workflow routes.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Actions that start a cascade
		{Path: "/jobs/{id}/applications", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/applications/{id}/interviews", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/interviews/{id}/respond", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/applications/{id}/status", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},

		// Job postings
		{Path: "/jobs", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Administration
		{Path: "/cascades/{id}/reconcile", Method: "POST", Limit: 10, Window: time.Minute, Burst: 2},

		// Reads use the default limit; /health and /statuses are unlimited
	}
}

// LoadConfig reads the limiter settings from the process environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.LookupEnv)
}

// LoadConfigFrom reads the limiter settings through lookup:
//
//	RATE_LIMIT_ENABLED           bool, default true
//	RATE_LIMIT_DEFAULT_LIMIT     requests per window, default 1000
//	RATE_LIMIT_DEFAULT_WINDOW    duration, default 1m
//	RATE_LIMIT_CLEANUP_INTERVAL  duration, default 5m
//	RATE_LIMIT_WHITELIST         comma-separated client IPs
//	RATE_LIMIT_BLACKLIST         comma-separated client IPs
//	RATE_LIMIT_ROUTES            route overrides, see parseRouteRule
//
// Malformed values are reported rather than replaced by defaults.
func LoadConfigFrom(lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}

	cfg := &Config{Enabled: env.boolean("RATE_LIMIT_ENABLED", true)}
	if env.err != nil {
		return nil, env.err
	}
	if !cfg.Enabled {
		return cfg, nil
	}

	cfg.DefaultLimit = env.positiveInt("RATE_LIMIT_DEFAULT_LIMIT", 1000)
	cfg.DefaultWindow = env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	cfg.CleanupInterval = env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	cfg.Whitelist = clientSet(env.str("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = clientSet(env.str("RATE_LIMIT_BLACKLIST"))
	cfg.EndpointConfigs = DefaultEndpointConfigs()

	for _, raw := range strings.Split(env.str("RATE_LIMIT_ROUTES"), ";") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		rule, err := parseRouteRule(raw)
		if err != nil {
			env.fail("RATE_LIMIT_ROUTES", err)
			continue
		}
		cfg.EndpointConfigs = withRoute(cfg.EndpointConfigs, rule)
	}

	if env.err != nil {
		return nil, env.err
	}
	return cfg, nil
}

// parseRouteRule parses "METHOD /path=LIMIT/WINDOW[:BURST]", for example
// "POST /interviews/{id}/respond=10/1m:3".
func parseRouteRule(raw string) (EndpointConfig, error) {
	route, limits, ok := strings.Cut(strings.TrimSpace(raw), "=")
	if !ok {
		return EndpointConfig{}, fmt.Errorf("%q: missing '='", raw)
	}
	method, path, ok := strings.Cut(strings.TrimSpace(route), " ")
	path = strings.TrimSpace(path)
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return EndpointConfig{}, fmt.Errorf("%q: route must be METHOD /path", raw)
	}

	rule := EndpointConfig{Method: strings.ToUpper(method), Path: path}
	limits, burst, hasBurst := strings.Cut(strings.TrimSpace(limits), ":")
	count, window, ok := strings.Cut(limits, "/")
	if !ok {
		return EndpointConfig{}, fmt.Errorf("%q: limit must be COUNT/WINDOW", raw)
	}

	var err error
	if rule.Limit, err = strconv.Atoi(count); err != nil || rule.Limit < 0 {
		return EndpointConfig{}, fmt.Errorf("%q: bad count %q", raw, count)
	}
	if rule.Window, err = time.ParseDuration(window); err != nil || rule.Window <= 0 {
		return EndpointConfig{}, fmt.Errorf("%q: bad window %q", raw, window)
	}
	if hasBurst {
		if rule.Burst, err = strconv.Atoi(burst); err != nil || rule.Burst < 0 {
			return EndpointConfig{}, fmt.Errorf("%q: bad burst %q", raw, burst)
		}
	}
	return rule, nil
}

// withRoute replaces the entry for the rule's method and path, or appends it.
func withRoute(configs []EndpointConfig, rule EndpointConfig) []EndpointConfig {
	for i := range configs {
		if configs[i].Method == rule.Method && configs[i].Path == rule.Path {
			configs[i] = rule
			return configs
		}
	}
	return append(configs, rule)
}

// envReader reads typed settings and keeps every parse failure.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) fail(key string, err error) {
	e.err = errors.Join(e.err, fmt.Errorf("%s: %w", key, err))
}

func (e *envReader) str(key string) string {
	value, _ := e.lookup(key)
	return strings.TrimSpace(value)
}

func (e *envReader) boolean(key string, def bool) bool {
	raw := e.str(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return v
}

func (e *envReader) positiveInt(key string, def int) int {
	raw := e.str(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err == nil && v <= 0 {
		err = fmt.Errorf("must be positive, got %d", v)
	}
	if err != nil {
		e.fail(key, err)
		return def
	}
	return v
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err == nil && v <= 0 {
		err = fmt.Errorf("must be positive, got %s", v)
	}
	if err != nil {
		e.fail(key, err)
		return def
	}
	return v
}

// clientSet splits a comma-separated list of client ids.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = true
		}
	}
	return set
}
