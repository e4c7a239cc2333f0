package config

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type ServerConfig struct {
	Scheme string `koanf:"scheme" default:"http"`
	Port   int    `koanf:"port" default:"8087"`
	Host   string `koanf:"host" default:"localhost"`

	ReadTimeout     time.Duration `koanf:"read_timeout" default:"5s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" default:"30s"`

	AllowOrigins []string `koanf:"alloworigins" default:"[]"`
	HealthCheck  bool     `koanf:"health_check" default:"true"`
}

func (s *ServerConfig) GetServerURL() string {
	return s.Scheme + "://" + s.Host + ":" + strconv.Itoa(s.Port)
}

type APPConfig struct {
	Environment string        `koanf:"environment" default:"development"`
	LogLevel    zerolog.Level `koanf:"log_level" default:"debug"`
}

// SiteConfig holds the host forum location and endpoint path templates.
// The session cookie is taken from a logged-in browser session; there is
// no login flow of our own.
type SiteConfig struct {
	BaseURL       string `koanf:"base_url" default:"https://eksisozluk.com" validate:"required,url"`
	SessionCookie string `koanf:"session_cookie"`
	CookieName    string `koanf:"cookie_name" default:"a"`

	FavoritersPath string `koanf:"favoriters_path" default:"/entry/favorileyenler"`
	EntryPath      string `koanf:"entry_path" default:"/entry/%s"`
	ProfilePath    string `koanf:"profile_path" default:"/biri/%s"`
	RelationPath   string `koanf:"relation_path" default:"/userrelation/addrelation/%s"`
	NotePath       string `koanf:"note_path" default:"/biri/%s/note"`
}

type BlockerConfig struct {
	// RequestDelay is the pacing wait after each processed user. It protects
	// against the host's rate limits and is not an error backoff.
	RequestDelay time.Duration `koanf:"request_delay" default:"7s"`
	// RetryDelay seeds the exponential backoff (multiplier 1.5) and doubles
	// as the rest period after a user exhausts its retries.
	RetryDelay time.Duration `koanf:"retry_delay" default:"5s"`
	MaxRetries uint          `koanf:"max_retries" default:"3" validate:"min=1"`
	MaxErrors  int           `koanf:"max_errors" default:"10" validate:"min=1"`

	DefaultMode     string `koanf:"default_mode" default:"mute" validate:"oneof=mute block"`
	NoteTemplate    string `koanf:"note_template" default:"{postTitle} / {actionType} / {date} / {entryLink}"`
	ResumeAtStartup bool   `koanf:"resume_at_startup" default:"false"`
}

type SortingConfig struct {
	BatchSize           int `koanf:"batch_size" default:"50" validate:"min=1"`
	Concurrency         int `koanf:"concurrency" default:"4" validate:"min=1"`
	PrefetchConcurrency int `koanf:"prefetch_concurrency" default:"4" validate:"min=1"`
}

type CacheSettings struct {
	BadgerPath string        `koanf:"badger_path" default:""`
	InMemory   bool          `koanf:"in_memory" default:"true"`
	UseBloom   bool          `koanf:"use_bloom" default:"true"`
	ProfileTTL time.Duration `koanf:"profile_ttl" default:"24h"`
}

type CollyConfig struct {
	MaxRedirects int           `koanf:"max_redirects" default:"10"`
	MaxSize      int           `koanf:"max_size" default:"4194304"`
	UserAgent    string        `koanf:"user_agent" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"`
	TimeOut      time.Duration `koanf:"timeout" default:"1m"`
}

type GatewayConfig struct {
	Timeout   time.Duration `koanf:"timeout" default:"30s"`
	UserAgent string        `koanf:"user_agent" default:""`
}

type MaintenanceConfig struct {
	CheckpointTTL time.Duration `koanf:"checkpoint_ttl" default:"72h"`
	SweepCron     string        `koanf:"sweep_cron" default:"0 * * * *"`
	BloomCron     string        `koanf:"bloom_cron" default:"30 * * * *"`
	RunAtStartup  bool          `koanf:"run_at_startup" default:"false"`
}

type StoreConfig struct {
	DatabasePath   string `koanf:"database_path" default:"sozblock.db"`
	StoreResponses bool   `koanf:"store_responses" default:"false"`
	StorePath      string `koanf:"store_path" default:"./responses"`
}

type TelemetryConfig struct {
	Enabled bool `koanf:"enabled" default:"false"`
	// OTLPEndpoint empty means traces stay local; metrics still export
	// through the Prometheus reader.
	OTLPEndpoint string  `koanf:"otlp_endpoint" default:""`
	SampleRatio  float64 `koanf:"sample_ratio" default:"1.0"`
}

type Config struct {
	APP         APPConfig
	Server      ServerConfig
	Site        SiteConfig
	Blocker     BlockerConfig
	Sorting     SortingConfig
	Cache       CacheSettings
	Colly       CollyConfig
	Gateway     GatewayConfig
	Maintenance MaintenanceConfig
	Store       StoreConfig
	Telemetry   TelemetryConfig
}
