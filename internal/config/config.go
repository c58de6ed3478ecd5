package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ListenAddr string
	StaticDir  string
	SiteFile   string

	DeveloperMode bool
	DisableCache  bool

	CacheBackend    string
	CacheMaxEntries int
	RedisURL        string
	RedisKeyPrefix  string

	DatabaseDSN string

	GraphQLEndpoint   string
	GraphQLAuthToken  string
	GraphQLAuthScheme string

	MarkdownEngine string
	RootURL        string
	CodeStyleLight string
	CodeStyleDark  string
	PackageMarker  string

	Languages []string

	Watch      bool
	AdminToken string
	LogLevel   string
}

func Load() Config {
	return Config{
		ListenAddr:        getEnv("WEBSITE_LISTEN_ADDR", ":8000"),
		StaticDir:         getEnv("WEBSITE_STATIC_DIR", "public"),
		SiteFile:          getEnv("WEBSITE_SITE_FILE", "site.yaml"),
		DeveloperMode:     getEnvBool("WEBSITE_DEVELOPER_MODE", false),
		DisableCache:      getEnvBool("WEBSITE_DISABLE_CACHE", false),
		CacheBackend:      strings.ToLower(getEnv("WEBSITE_CACHE_BACKEND", "memory")),
		CacheMaxEntries:   getEnvInt("WEBSITE_CACHE_MAX_ENTRIES", 10000),
		RedisURL:          getEnv("WEBSITE_REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix:    os.Getenv("WEBSITE_REDIS_KEY_PREFIX"),
		DatabaseDSN:       getEnv("WEBSITE_DATABASE_DSN", "website.db"),
		GraphQLEndpoint:   os.Getenv("WEBSITE_GRAPHQL_ENDPOINT"),
		GraphQLAuthToken:  os.Getenv("WEBSITE_GRAPHQL_AUTH_TOKEN"),
		GraphQLAuthScheme: os.Getenv("WEBSITE_GRAPHQL_AUTH_SCHEME"),
		MarkdownEngine:    strings.ToLower(getEnv("WEBSITE_MARKDOWN_ENGINE", "gomarkdown")),
		RootURL:           strings.TrimSpace(os.Getenv("WEBSITE_ROOT_URL")),
		CodeStyleLight:    getEnv("WEBSITE_CODE_STYLE_LIGHT", "github"),
		CodeStyleDark:     getEnv("WEBSITE_CODE_STYLE_DARK", "monokai"),
		PackageMarker:     strings.TrimSpace(os.Getenv("WEBSITE_PACKAGE_MARKER")),
		Languages:         getEnvList("WEBSITE_LANGUAGES", []string{"en"}),
		Watch:             getEnvBool("WEBSITE_WATCH", false),
		AdminToken:        os.Getenv("WEBSITE_ADMIN_TOKEN"),
		LogLevel:          getEnv("WEBSITE_LOG_LEVEL", "info"),
	}
}

// CachingEnabled mirrors the global half of the cache policy.
func (c Config) CachingEnabled() bool {
	return !c.DeveloperMode && !c.DisableCache
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}

	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}

	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	items := make([]string, 0, 4)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}

	return items
}
