package auth

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roivaz/memory-mcp/internal/logging"
)

// DelegatedPaths are the OAuth endpoints served by the external authorization
// server.
var DelegatedPaths = []string{
	"/authorize",
	"/token",
	"/register",
	"/.well-known/oauth-authorization-server",
}

// NewDelegate returns a handler forwarding the OAuth endpoints to issuerURL.
// An empty issuer yields a handler that answers 404 so the routes stay
// visible but inert.
func NewDelegate(issuerURL string, log logging.Logger) (http.Handler, error) {
	log = log.WithName("oauth-delegate")
	if strings.TrimSpace(issuerURL) == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, http.StatusNotFound, "not_configured", "oauth delegation is not configured")
		}), nil
	}

	target, err := url.Parse(issuerURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse oauth issuer url %q", issuerURL)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Newf("oauth issuer url %q must be absolute", issuerURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error(err, "oauth delegation failed", "path", r.URL.Path)
		writeJSONError(w, http.StatusBadGateway, "server_error", "authorization server unavailable")
	}
	return proxy, nil
}
