// Command duplexrpcd is a demonstration server exercising both transports
// (HTTP request/response and WebSocket duplex) and the bidirectional
// reverse-call scenario of spec.md section 8 scenario 3, grounded on
// more0ai-registry/cmd/registry's flat main() wiring style: load config,
// assemble dependencies, serve, wait on a shutdown signal.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/juju/loggo/v2"

	"github.com/doxysoft/jsonrpc-bidirectional/duplexrpcconfig"
	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin/authn"
	"github.com/doxysoft/jsonrpc-bidirectional/router"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/httptransport"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/wstransport/gorillaws"
)

var logger = loggo.GetLogger("duplexrpcd")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.Criticalf("duplexrpcd: %v", err)
		os.Exit(1)
	}
	if err := configureLogging(cfg.LogLevel); err != nil {
		logger.Warningf("duplexrpcd: %v", err)
	}

	reg := endpoint.NewRegistry()
	ep, err := newDemoEndpoint(cfg.Timeout())
	if err != nil {
		logger.Criticalf("duplexrpcd: building demo endpoint: %v", err)
		os.Exit(1)
	}
	ep.Path = endpoint.NormalizePath(cfg.EndpointPath)
	if err := reg.RegisterEndpoint(ep); err != nil {
		logger.Criticalf("duplexrpcd: registering demo endpoint: %v", err)
		os.Exit(1)
	}

	server := rpcserver.New(reg)
	server.DenyNotifications = !cfg.AllowNotifications
	server.AddPlugin(authnPluginFromEnv())
	server.AddPlugin(plugin.LoggingServerPlugin(logger))
	if os.Getenv("DUPLEXRPC_DEBUG_STACK") == "true" {
		server.AddPlugin(plugin.DebugStackServerPlugin())
	}

	rt := router.New(server)
	rt.OnMadeReverseClient = func(rc *router.RouterConnection, client plugin.ReverseClient) {
		logger.Infof("duplexrpcd: connection %d [%s]: instantiated reverse client", rc.ID, rc.DiagnosticID)
	}

	mx := mux.NewRouter()
	mx.HandleFunc(cfg.EndpointPath, httptransport.Handler(server, cfg.EndpointPath)).Methods(http.MethodPost)
	mx.HandleFunc(cfg.EndpointPath+"/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWebSocket(rt, cfg.EndpointPath, w, r)
	})
	mx.HandleFunc(cfg.EndpointPath+"/stats", func(w http.ResponseWriter, r *http.Request) {
		writeStats(w, rt)
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mx,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("duplexrpcd: listening on %s (endpoint %s)", cfg.ListenAddr, cfg.EndpointPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Criticalf("duplexrpcd: serve: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Infof("duplexrpcd: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("duplexrpcd: shutdown: %v", err)
	}
}

func loadConfig() (*duplexrpcconfig.Config, error) {
	if path := os.Getenv("DUPLEXRPC_CONFIG_FILE"); path != "" {
		return duplexrpcconfig.LoadFromYAMLFile(path)
	}
	return duplexrpcconfig.LoadFromEnv()
}

func configureLogging(level string) error {
	if level == "" {
		return nil
	}
	return loggo.ConfigureLoggers("<root>=" + level)
}

// authnPluginFromEnv installs the JWT bearer plugin when a verification
// secret is configured, otherwise falls back to the allow-all plugin
// (spec.md section 8 scenario 6's default-deny is lifted explicitly, not
// silently, for this demo binary).
func authnPluginFromEnv() plugin.ServerPlugin {
	secret := os.Getenv("DUPLEXRPC_JWT_SECRET")
	if secret == "" {
		logger.Warningf("duplexrpcd: DUPLEXRPC_JWT_SECRET not set, running with allow-all authentication")
		return authn.AllowAllPlugin()
	}
	var opts []authn.JWTBearerOption
	if issuer := os.Getenv("DUPLEXRPC_JWT_ISSUER"); issuer != "" {
		opts = append(opts, authn.WithIssuer(issuer))
	}
	if audience := os.Getenv("DUPLEXRPC_JWT_AUDIENCE"); audience != "" {
		opts = append(opts, authn.WithAudience(audience))
	}
	return authn.JWTBearerPlugin([]byte(secret), opts...)
}

func serveWebSocket(rt *router.Router, endpointPath string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("duplexrpcd: websocket upgrade: %v", err)
		return
	}
	adapter := gorillaws.New(conn)
	rc := rt.AddConnection(adapter, endpointPath)
	logger.Infof("duplexrpcd: connection %d [%s] opened", rc.ID, rc.DiagnosticID)
	adapter.Run()
}

func writeStats(w http.ResponseWriter, rt *router.Router) {
	stats := rt.Stats()
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"openConnections":` + strconv.Itoa(stats.OpenConnections) + `}`))
}
