package nex

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-envparse"
)

// Config is the environment-variable-driven configuration surface for
// a server process.
type Config struct {
	// BindAddr is the private address the PRUDP UDP socket listens on.
	BindAddr string
	// BindAddrPublic is advertised to clients in station URLs; it may
	// differ from BindAddr behind NAT.
	BindAddrPublic string
	// Port is the UDP port the router binds, default 10000.
	Port int
	// AccessKey seeds the HMAC-MD5 packet signature for this title.
	AccessKey string
	// KerberosPassword is the auth server's master Kerberos password,
	// used to derive the per-account ticket-signing key.
	KerberosPassword string
	// IdleTimeout is how long a connection may go without a PING before
	// it is reaped.
	IdleTimeout time.Duration
	// TicketLifetime bounds how old a presented ticket may be before the
	// secure crypto handler rejects it.
	TicketLifetime time.Duration
	// SecureServerPID is the account pid the secure/rendez-vous backend
	// authenticates as; AUTH_SERVER_PASSWORD is that account's Kerberos
	// password, so auth can issue tickets addressed to it.
	SecureServerPID uint32
	// BuildName is echoed back to clients in LoginEx's ConnectionData,
	// cosmetic version text with no further meaning to this module.
	BuildName string
	// MetricsAddr is the bind address for the /metrics HTTP endpoint.
	// Empty disables it.
	MetricsAddr string
}

// DefaultConfig returns the baseline configuration every server starts
// from before environment overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:        "0.0.0.0",
		BindAddrPublic:  "",
		Port:            10000,
		AccessKey:       "",
		IdleTimeout:     30 * time.Second,
		TicketLifetime:  2 * time.Minute,
		SecureServerPID: 2,
		BuildName:       "1.0.0",
		MetricsAddr:     "",
	}
}

// LoadConfigFile reads a .env-style file with go-envparse and applies any
// variables it defines to the process environment (without overwriting
// variables already set), then delegates to LoadConfig. A missing file is
// not an error; it simply means only the process environment is used.
func LoadConfigFile(path string) (*Config, error) {
	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()

			vars, err := envparse.Parse(f)
			if err != nil {
				return nil, fmt.Errorf("parsing env file %s: %w", path, err)
			}

			for k, v := range vars {
				if _, set := os.LookupEnv(k); !set {
					os.Setenv(k, v)
				}
			}
		}
	}

	return LoadConfig()
}

// LoadConfig reads the process environment into a Config, applying the
// defaults from DefaultConfig for anything unset.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SERVER_IP"); v != "" {
		cfg.BindAddr = v
	}

	if v := os.Getenv("SERVER_IP_PUBLIC"); v != "" {
		cfg.BindAddrPublic = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT must be an integer: %w", err)
		}

		cfg.Port = port
	}

	if v := os.Getenv("ACCESS_KEY"); v != "" {
		cfg.AccessKey = v
	}

	if v := os.Getenv("AUTH_SERVER_PASSWORD"); v != "" {
		cfg.KerberosPassword = v
	}

	if v := os.Getenv("IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("IDLE_TIMEOUT must be a duration: %w", err)
		}

		cfg.IdleTimeout = d
	}

	if v := os.Getenv("TICKET_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TICKET_LIFETIME must be a duration: %w", err)
		}

		cfg.TicketLifetime = d
	}

	if v := os.Getenv("SECURE_SERVER_PID"); v != "" {
		pid, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("SECURE_SERVER_PID must be an unsigned integer: %w", err)
		}

		cfg.SecureServerPID = uint32(pid)
	}

	if v := os.Getenv("BUILD_NAME"); v != "" {
		cfg.BuildName = v
	}

	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	return cfg, nil
}
