// Command authserver runs the Authentication RMC protocol (protocol id
// 10) over an unsecure PRUDP endpoint: Login, LoginEx, RequestTicket,
// GetPID, GetName against an in-memory account directory, issuing
// Kerberos-style tickets addressed to the secure server.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/protocols/auth"
	"github.com/olympus-net/nexus/rmc"
	"github.com/olympus-net/nexus/rmcserver"
)

var opt struct {
	Help     bool
	EnvFile  string
	LogLevel string
}

func init() {
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
	pflag.StringVarP(&opt.EnvFile, "env-file", "e", "", "Load configuration from this .env file")
	pflag.StringVarP(&opt.LogLevel, "log-level", "l", "info", "Log level (trace, debug, info, warn, error)")
}

func main() {
	pflag.Parse()

	if opt.Help {
		fmt.Printf("usage: %s [options]\n\noptions:\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		os.Exit(0)
	}

	level, err := zerolog.ParseLevel(opt.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid --log-level %q: %v\n", opt.LogLevel, err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Str("server", "authserver").Logger()

	cfg, err := nex.LoadConfigFile(opt.EnvFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := nex.NewCoreContext(cfg, logger)

	accounts := auth.NewAccountStore()
	seedDemoAccounts(accounts, cfg.SecureServerPID, []byte(cfg.KerberosPassword))

	authCfg := auth.Config{
		SecureServerPID:        cfg.SecureServerPID,
		SecureServerPassword:   []byte(cfg.KerberosPassword),
		SecureServerStationURL: secureStationURL(cfg),
		BuildName:              cfg.BuildName,
	}

	dispatcher := rmc.NewDispatcher(ctx)
	auth.NewServer(ctx, authCfg, accounts).Register(dispatcher)

	router := nex.NewRouter(ctx)

	endpoint, err := router.AddEndpoint(1, &nex.UnsecureCryptoHandler{AccessKey: cfg.AccessKey}, cfg.AccessKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to bind auth endpoint")
	}

	rmcserver.NewServer(ctx, router, dispatcher).Attach(endpoint)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := nex.ServeMetrics(cfg.MetricsAddr); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if err := router.ListenAndServe(cfg.BindAddr, cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("router stopped")
	}
}

// seedDemoAccounts registers the secure server's own account (so auth
// can mint tickets addressed to it) plus a couple of demo user accounts.
// There is no persistence layer; a real deployment would source these
// from an external account service.
func seedDemoAccounts(accounts *auth.AccountStore, secureServerPID uint32, secureServerPassword []byte) {
	accounts.Register(&auth.Account{
		PID:      secureServerPID,
		Username: "secure",
		Password: secureServerPassword,
	})

	accounts.Register(&auth.Account{
		PID:      1001,
		Username: "player1",
		Password: []byte("0000000000000000")[:16],
	})

	accounts.Register(&auth.Account{
		PID:      1002,
		Username: "player2",
		Password: []byte("1111111111111111")[:16],
	})
}

func secureStationURL(cfg *nex.Config) *nex.StationURL {
	addr := cfg.BindAddrPublic
	if addr == "" {
		addr = cfg.BindAddr
	}

	url := nex.NewStationURL("prudps")
	url.SetAddress(addr, uint16(cfg.Port+1))
	url.Set("PID", fmt.Sprintf("%d", cfg.SecureServerPID))
	url.Set("sid", "1")
	url.Set("type", "3")

	return url
}
