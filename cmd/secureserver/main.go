// Command secureserver runs the secure/rendez-vous RMC protocol family
// (SecureConnection, NATTraversal, MatchMaking, MatchmakeExtension)
// over a ticket-authenticated PRUDP endpoint: every connecting client
// must present a Kerberos-style ticket minted by authserver's LoginEx
// or RequestTicket before the CONNECT handshake succeeds.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	nex "github.com/olympus-net/nexus"
	"github.com/olympus-net/nexus/protocols/matchmake"
	"github.com/olympus-net/nexus/protocols/matchmakeext"
	"github.com/olympus-net/nexus/protocols/nattraversal"
	"github.com/olympus-net/nexus/protocols/secure"
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

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Str("server", "secureserver").Logger()

	cfg, err := nex.LoadConfigFile(opt.EnvFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := nex.NewCoreContext(cfg, logger)

	router := nex.NewRouter(ctx)

	dispatcher := rmc.NewDispatcher(ctx)

	secureServer := secure.NewServer(ctx, "prudps")
	secureServer.Register(dispatcher)

	nattraversal.NewServer(ctx).Register(dispatcher)

	arena := matchmake.NewArena()
	matchmake.NewServer(ctx, arena, secureServer).Register(dispatcher)

	server := rmcserver.NewServer(ctx, router, dispatcher)

	matchmakeext.NewServer(ctx, arena, server).Register(dispatcher)

	crypto := &nex.SecureCryptoHandler{
		AccessKey:        cfg.AccessKey,
		KerberosPassword: cfg.KerberosPassword,
		ServerPID:        cfg.SecureServerPID,
		TicketLifetime:   cfg.TicketLifetime,
		Clock:            nex.SystemClock{},
	}

	endpoint, err := router.AddEndpoint(1, crypto, cfg.AccessKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to bind secure endpoint")
	}

	server.Attach(endpoint)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := nex.ServeMetrics(cfg.MetricsAddr); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	secureServerPort := cfg.Port + 1
	if err := router.ListenAndServe(cfg.BindAddr, secureServerPort); err != nil {
		logger.Fatal().Err(err).Msg("router stopped")
	}
}
