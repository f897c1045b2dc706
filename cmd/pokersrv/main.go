// Command pokersrv runs the poker engine's HTTP/WebSocket server. Grounded
// on the reference's cmd/pokersrv/main.go flag surface and logging setup;
// the gRPC listener it wired is replaced by net/http, per SPEC_FULL.md §2A.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vctt94/bisonbotkit/logging"
	"github.com/vctt94/pokerbisonrelay/internal/db"
	"github.com/vctt94/pokerbisonrelay/pkg/server"
)

func main() {
	var (
		dbPath      string
		host        string
		port        int
		portFile    string
		seed        int64
		autoStartMs int
		debugLevel  string
	)
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database file (created if missing)")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 8080, "Port to listen on")
	flag.StringVar(&portFile, "portfile", "", "If set, write the listening port to this file")
	flag.Int64Var(&seed, "seed", 0, "Deck RNG seed, with POKER_SEED as fallback; parsed but not passed to the server, whose decks are always seeded from crypto/rand")
	flag.IntVar(&autoStartMs, "autostartms", 0, "Ready-timeout override in milliseconds, threaded into every table's TableConfig.ReadyTimeout (0 = 30s default)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "poker.sqlite")
	}
	if seed == 0 {
		if env := os.Getenv("POKER_SEED"); env != "" {
			if v, err := strconv.ParseInt(env, 10, 64); err == nil {
				seed = v
			}
		}
	}
	store, err := db.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: debugLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	log := logBackend.Logger("SRV")

	srv := server.New(server.Config{
		Log:                 log,
		Store:               store,
		Auth:                trustTokenAsPlayerID,
		DefaultReadyTimeout: time.Duration(autoStartMs) * time.Millisecond,
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
		os.Exit(1)
	}

	if portFile != "" {
		_, p, _ := net.SplitHostPort(listener.Addr().String())
		_ = os.WriteFile(portFile, []byte(p), 0600)
	}

	log.Infof("listening on %s", listener.Addr())
	if err := http.Serve(listener, srv.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "http serve error: %v\n", err)
		os.Exit(1)
	}
}

// trustTokenAsPlayerID is the default AuthFunc: authentication/identity
// issuance is explicitly out of scope (SPEC_FULL.md §6.1), so the bearer
// token is treated directly as the caller's player ID. A deployment with a
// real identity provider supplies its own server.AuthFunc instead.
func trustTokenAsPlayerID(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return token, true
}
