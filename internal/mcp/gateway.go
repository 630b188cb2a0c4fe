package mcp

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/memory-mcp/internal/auth"
	"github.com/roivaz/memory-mcp/internal/logging"
)

const (
	SSEPath        = "/sse"
	SSEMessagePath = "/sse/message"
	StreamablePath = "/mcp"
)

// Session is one authenticated access token together with the MCP server
// built for its identity.
type Session struct {
	Props auth.Props
	MCP   *server.MCPServer

	token     string
	sse       *server.SSEServer
	streaming *server.StreamableHTTPServer
	expires   time.Time
	// streams counts open SSE connections. Guarded by Gateway.mu.
	streams int
}

func (s *Session) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == StreamablePath || strings.HasPrefix(r.URL.Path, StreamablePath+"/") {
		s.streaming.ServeHTTP(w, r)
		return
	}
	s.sse.ServeHTTP(w, r)
}

type GatewayConfig struct {
	Resolver     auth.Resolver
	Dependencies Dependencies
	SessionTTL   time.Duration
	PublicURL    string
	Logger       logging.Logger
}

// Gateway authenticates MCP requests and routes them to the caller's session.
// Props are resolved once per access token. A session is kept while it has an
// open SSE stream or is used, and dropped after SessionTTL of inactivity.
type Gateway struct {
	cfg GatewayConfig
	log logging.Logger
	now func() time.Time

	mu       sync.Mutex
	sessions map[uint64]*Session
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	return &Gateway{
		cfg:      cfg,
		log:      cfg.Logger.WithName("gateway"),
		now:      time.Now,
		sessions: make(map[uint64]*Session),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		auth.WriteUnauthorized(w, auth.ErrMissingToken.Error())
		return
	}
	sess, err := g.session(r.Context(), token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		auth.WriteUnauthorized(w, err.Error())
		return
	case err != nil:
		g.log.Error(err, "resolving session identity failed")
		http.Error(w, "identity provider unavailable", http.StatusBadGateway)
		return
	}
	if r.Method == http.MethodGet && r.URL.Path == SSEPath {
		g.hold(sess)
		defer g.release(sess)
	}
	sess.ServeHTTP(w, r)
}

// hold pins sess while an SSE stream is open so message POSTs keep reaching
// the SSE server that issued the stream's session id.
func (g *Gateway) hold(sess *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess.streams++
}

func (g *Gateway) release(sess *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess.streams--
	sess.expires = g.now().Add(g.cfg.SessionTTL)
}

// Len reports the number of live sessions.
func (g *Gateway) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

func (g *Gateway) session(ctx context.Context, token string) (*Session, error) {
	key := xxhash.Sum64String(token)

	if sess := g.lookup(key, token); sess != nil {
		return sess, nil
	}

	props, err := g.cfg.Resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// Another request for the same token may have won the race.
	if sess, ok := g.sessions[key]; ok && sess.token == token && (sess.streams > 0 || g.now().Before(sess.expires)) {
		return sess, nil
	}
	sess := g.newSession(token, props)
	g.sessions[key] = sess
	g.log.Info("session established", "user", props.UserID(), "permissions", []string(props.Permissions))
	return sess, nil
}

func (g *Gateway) lookup(key uint64, token string) *Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)
	sess, ok := g.sessions[key]
	if !ok || sess.token != token {
		return nil
	}
	sess.expires = now.Add(g.cfg.SessionTTL)
	return sess
}

// sweep drops expired sessions without open streams. Callers hold g.mu.
func (g *Gateway) sweep(now time.Time) {
	for key, sess := range g.sessions {
		if sess.streams == 0 && !now.Before(sess.expires) {
			g.log.Debug("session expired", "user", sess.Props.UserID())
			delete(g.sessions, key)
		}
	}
}

func (g *Gateway) newSession(token string, props auth.Props) *Session {
	mcpServer := NewSessionServer(props, g.cfg.Dependencies)

	sseOpts := []server.SSEOption{
		server.WithSSEEndpoint(SSEPath),
		server.WithMessageEndpoint(SSEMessagePath),
		server.WithKeepAlive(true),
	}
	if g.cfg.PublicURL != "" {
		sseOpts = append(sseOpts, server.WithBaseURL(strings.TrimRight(g.cfg.PublicURL, "/")))
	}

	return &Session{
		Props: props,
		MCP:   mcpServer,
		token: token,
		sse:   server.NewSSEServer(mcpServer, sseOpts...),
		streaming: server.NewStreamableHTTPServer(mcpServer,
			server.WithEndpointPath(StreamablePath),
			server.WithStateLess(true),
		),
		expires: g.now().Add(g.cfg.SessionTTL),
	}
}
