package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Refresh modes for a manual refresh from the ledger.
const (
	RefreshMerge   = "merge"
	RefreshReplace = "replace"
)

type Config struct {
	Cache     CacheConfig     `yaml:"cache"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Session   SessionConfig   `yaml:"session"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Logging   LoggingConfig   `yaml:"logging"`
	SFTP      SFTPConfig      `yaml:"sftp"`
}

type CacheConfig struct {
	Path string `yaml:"path"`
}

type LedgerConfig struct {
	RPCURL      string `yaml:"rpc_url"`
	SignerURL   string `yaml:"signer_url"`
	PackageID   string `yaml:"package_id"`
	Module      string `yaml:"module"`
	GradeModule string `yaml:"grade_module"`
	AdminCap    string `yaml:"admin_cap"`
	Registry    string `yaml:"registry"`
	EventLimit  int    `yaml:"event_limit"`
}

// SessionConfig stands in for a connected wallet: an empty address means
// no session.
type SessionConfig struct {
	Address string `yaml:"address"`
}

type ReconcileConfig struct {
	RefreshMode string `yaml:"refresh_mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SFTPConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Pass                  string `yaml:"pass"`
	Dir                   string `yaml:"dir"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`
	KnownHosts            string `yaml:"known_hosts"`
}

func Default() Config {
	return Config{
		Cache: CacheConfig{Path: "records.db"},
		Ledger: LedgerConfig{
			RPCURL:      "https://fullnode.testnet.sui.io:443",
			Module:      "tfoproject",
			GradeModule: "student_management",
			EventLimit:  100,
		},
		Reconcile: ReconcileConfig{RefreshMode: RefreshMerge},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		SFTP:      SFTPConfig{Port: 22, Dir: "/inbound", InsecureIgnoreHostKey: true},
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_PATH (or ./records.yaml when present), then environment overrides.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

// LoadFrom is Load with an explicit file path. An empty path falls back to
// ./records.yaml, which may be absent.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = "records.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Cache.Path = getenv("RECORDS_CACHE_PATH", cfg.Cache.Path)

	cfg.Ledger.RPCURL = getenv("LEDGER_RPC_URL", cfg.Ledger.RPCURL)
	cfg.Ledger.SignerURL = getenv("LEDGER_SIGNER_URL", cfg.Ledger.SignerURL)
	cfg.Ledger.PackageID = getenv("LEDGER_PACKAGE_ID", cfg.Ledger.PackageID)
	cfg.Ledger.Module = getenv("LEDGER_MODULE", cfg.Ledger.Module)
	cfg.Ledger.GradeModule = getenv("LEDGER_GRADE_MODULE", cfg.Ledger.GradeModule)
	cfg.Ledger.AdminCap = getenv("LEDGER_ADMIN_CAP", cfg.Ledger.AdminCap)
	cfg.Ledger.Registry = getenv("LEDGER_REGISTRY", cfg.Ledger.Registry)
	cfg.Ledger.EventLimit = getenvInt("LEDGER_EVENT_LIMIT", cfg.Ledger.EventLimit)

	cfg.Session.Address = getenv("SESSION_ADDRESS", cfg.Session.Address)
	cfg.Reconcile.RefreshMode = getenv("RECONCILE_REFRESH_MODE", cfg.Reconcile.RefreshMode)

	cfg.Logging.Level = getenv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getenv("LOG_FORMAT", cfg.Logging.Format)

	cfg.SFTP.Host = getenv("SFTP_HOST", cfg.SFTP.Host)
	cfg.SFTP.Port = getenvInt("SFTP_PORT", cfg.SFTP.Port)
	cfg.SFTP.User = getenv("SFTP_USER", cfg.SFTP.User)
	cfg.SFTP.Pass = getenv("SFTP_PASS", cfg.SFTP.Pass)
	cfg.SFTP.Dir = getenv("SFTP_DIR", cfg.SFTP.Dir)
	cfg.SFTP.InsecureIgnoreHostKey = getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", cfg.SFTP.InsecureIgnoreHostKey)
	cfg.SFTP.KnownHosts = getenv("SFTP_KNOWN_HOSTS", cfg.SFTP.KnownHosts)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		return errors.New("config: cache.path is required")
	}
	switch c.Reconcile.RefreshMode {
	case RefreshMerge, RefreshReplace:
	default:
		return fmt.Errorf("config: reconcile.refresh_mode %q must be %q or %q",
			c.Reconcile.RefreshMode, RefreshMerge, RefreshReplace)
	}
	if c.Ledger.EventLimit <= 0 || c.Ledger.EventLimit > 100 {
		return fmt.Errorf("config: ledger.event_limit %d must be in 1..100", c.Ledger.EventLimit)
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
