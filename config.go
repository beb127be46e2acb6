package webgrep

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/webgrep/webgrep/internal/glog"
)

// Config holds webgrep's global ambient settings. It is a plain struct, not
// a process-wide mutable singleton — callers build one with DefaultConfig
// and thread it explicitly into the Dispatcher, so tests can run several
// different configurations in the same process.
type Config struct {
	// UserAgent sent with every request.
	UserAgent string `yaml:"user_agent"`

	// ConnectTimeout bounds establishing the TCP/TLS connection.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RequestTimeout bounds the whole request/response round trip.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// InterRequestDelay is the minimum gap enforced between the completion
	// of one request to a host and the start of the next.
	InterRequestDelay time.Duration `yaml:"inter_request_delay"`

	// MaxBodyBytes is the content-length ceiling at or above which a fetch
	// is failed outright.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MaxPageTasks bounds Page Runner concurrency.
	MaxPageTasks int `yaml:"max_page_tasks"`

	// MaxDepth is the default maximum link depth from seeds (overridden by
	// the -d/--max-depth flag).
	MaxDepth int `yaml:"max_depth"`

	// MaxLinksPerPage defensively caps how many outbound links a single
	// page can contribute. Zero means unlimited.
	MaxLinksPerPage int `yaml:"max_links_per_page"`

	// MaxDNSCacheEntries bounds the Fetcher's DNS resolution cache.
	MaxDNSCacheEntries int `yaml:"max_dns_cache_entries"`

	// CacheDir is where the on-disk content cache lives.
	CacheDir string `yaml:"cache_dir"`

	// LogLevel is one of glog.Level{Fine,Debug,Info,Error}.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration webgrep uses absent a config
// file.
func DefaultConfig() Config {
	return Config{
		UserAgent:          "webgrep (https://github.com/webgrep/webgrep)",
		ConnectTimeout:     60 * time.Second,
		RequestTimeout:     60 * time.Second,
		InterRequestDelay:  1 * time.Second,
		MaxBodyBytes:       100 * 1024 * 1024, // 100 MiB
		MaxPageTasks:       10,
		MaxDepth:           1,
		MaxLinksPerPage:    0,
		MaxDNSCacheEntries: 20000,
		CacheDir:           "page-cache",
		LogLevel:           glog.LevelInfo,
	}
}

// LoadConfigFile overlays a YAML file onto base: defaults first, then
// whatever the file sets.
func LoadConfigFile(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config file (%v): %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("failed to unmarshal yaml from config file (%v): %w", path, err)
	}
	if err := assertConfigInvariants(cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

func assertConfigInvariants(cfg Config) error {
	var errs []string
	if cfg.MaxPageTasks < 1 {
		errs = append(errs, "max_page_tasks must be greater than 0")
	}
	if cfg.MaxDepth < 0 {
		errs = append(errs, "max_depth must be >= 0")
	}
	if cfg.MaxBodyBytes < 1 {
		errs = append(errs, "max_body_bytes must be greater than 0")
	}
	if cfg.InterRequestDelay < 0 {
		errs = append(errs, "inter_request_delay must be >= 0")
	}
	if cfg.CacheDir == "" {
		errs = append(errs, "cache_dir must not be empty")
	}

	if len(errs) == 0 {
		return nil
	}

	msg := ""
	for _, e := range errs {
		glog.Error("config error: %v", e)
		msg += "\t" + e + "\n"
	}
	return fmt.Errorf("config error:\n%v", msg)
}
