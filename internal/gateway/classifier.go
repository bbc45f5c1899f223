package gateway

import "strings"

// Mode says how an inbound request should be routed.
type Mode int

const (
	// RouteAdmin hands the request to the platform's own handlers.
	RouteAdmin Mode = iota
	// RouteSubdomain resolves the tenant by subdomain label.
	RouteSubdomain
	// RouteHostname resolves the tenant by full custom hostname.
	RouteHostname
)

// RoutingConfig is the platform-level input to classification.
type RoutingConfig struct {
	// PlatformDomain is the base domain tenant subdomains hang off of.
	// Empty means single-host, path-based routing.
	PlatformDomain string
	// AdminSubdomain is the reserved label for the platform UI ("build"
	// when unset).
	AdminSubdomain string
}

// Route is the outcome of classifying one request.
type Route struct {
	Mode Mode
	// Key is the candidate tenant key: a subdomain label or a hostname.
	Key string
	// StripPrefix is the leading path segment ("/name") to remove before
	// forwarding. Only set in path-based routing.
	StripPrefix string
}

// First path segments that always belong to the platform itself.
var reservedSegments = map[string]bool{
	"admin":       true,
	"projects":    true,
	"upload":      true,
	"init":        true,
	"dispatch":    true,
	"favicon.ico": true,
}

// Classify decides the routing mode for a request from its host and path
// alone. Pure and I/O-free: resolution against the store happens later.
func Classify(host, path string, cfg RoutingConfig) Route {
	host = stripPort(host)

	adminLabel := cfg.AdminSubdomain
	if adminLabel == "" {
		adminLabel = "build"
	}

	if cfg.PlatformDomain != "" {
		if suffix := "." + cfg.PlatformDomain; strings.HasSuffix(host, suffix) {
			label := strings.TrimSuffix(host, suffix)
			if label == adminLabel {
				return Route{Mode: RouteAdmin}
			}
			return Route{Mode: RouteSubdomain, Key: label}
		}
		// Not under the platform domain: treat the whole host as a
		// candidate vanity hostname.
		return Route{Mode: RouteHostname, Key: host}
	}

	// Single-host mode: the first path segment names the tenant.
	if path == "" || path == "/" {
		return Route{Mode: RouteAdmin}
	}
	segment := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	if reservedSegments[segment] {
		return Route{Mode: RouteAdmin}
	}
	return Route{Mode: RouteSubdomain, Key: segment, StripPrefix: "/" + segment}
}

func stripPort(host string) string {
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}
