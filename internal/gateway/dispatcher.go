package gateway

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteloft/front-door-backend/internal/projects/domain"
	"github.com/siteloft/front-door-backend/internal/registry"
)

// Resolver maps tenant keys to project records. A miss is reported as
// domain.ErrNotFound and makes the dispatcher pass the request through.
type Resolver interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Project, error)
	GetByCustomHostname(ctx context.Context, hostname string) (*domain.Project, error)
}

// ScriptHandle is an invocable reference to one named code unit.
type ScriptHandle interface {
	Invoke(fwd *http.Request) (*http.Response, error)
}

// Registry is the slice of the execution registry the dispatcher needs:
// a non-failing handle lookup plus the deploy operation used to provision
// missing contexts on the fly.
type Registry interface {
	Script(name string) ScriptHandle
	PutScript(ctx context.Context, name, content string) error
}

// Dispatcher routes inbound requests into tenant execution contexts,
// provisioning them on demand when the registry has no code behind the
// project's name.
type Dispatcher struct {
	resolver Resolver
	registry Registry
	routing  RoutingConfig
}

func NewDispatcher(resolver Resolver, reg Registry, routing RoutingConfig) *Dispatcher {
	return &Dispatcher{resolver: resolver, registry: reg, routing: routing}
}

// Dispatch classifies c's request and, when it belongs to a tenant,
// forwards it into that tenant's execution context. Returns true when a
// response has been written and false when the request should continue
// through the platform's own routes (admin traffic or no matching project).
func (d *Dispatcher) Dispatch(c *gin.Context) bool {
	req := c.Request
	route := Classify(req.Host, req.URL.Path, d.routing)
	if route.Mode == RouteAdmin {
		return false
	}

	project, err := d.resolve(req.Context(), route)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false
		}
		log.Printf("[dispatch] project lookup for %q failed: %v", route.Key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "dispatch failed"})
		return true
	}

	// The body is a single-consume stream; buffer it up front so the
	// deploy-and-retry path can replay it.
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		body, err = io.ReadAll(req.Body)
		if err != nil {
			log.Printf("[dispatch] reading request body for %q failed: %v", project.Subdomain, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "dispatch failed"})
			return true
		}
	}

	resp, err := d.invoke(project, route, req, body)
	if errors.Is(err, registry.ErrNotProvisioned) {
		// Lazy provisioning: the project record is the source of truth,
		// the registry entry is derived. Deploy once and retry once.
		log.Printf("[dispatch] script %q not provisioned, deploying", project.Subdomain)
		if err := d.registry.PutScript(req.Context(), project.Subdomain, project.ScriptContent); err != nil {
			log.Printf("[dispatch] deploy of %q failed: %v", project.Subdomain, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "dispatch failed"})
			return true
		}
		resp, err = d.invoke(project, route, req, body)
	}
	if err != nil {
		log.Printf("[dispatch] invoking %q failed: %v", project.Subdomain, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "dispatch failed"})
		return true
	}

	writeResponse(c, resp)
	return true
}

func (d *Dispatcher) resolve(ctx context.Context, route Route) (*domain.Project, error) {
	switch route.Mode {
	case RouteSubdomain:
		return d.resolver.GetBySubdomain(ctx, route.Key)
	case RouteHostname:
		return d.resolver.GetByCustomHostname(ctx, route.Key)
	default:
		return nil, domain.ErrNotFound
	}
}

// invoke rewrites the request freshly for each attempt so a retry never
// reuses a consumed body.
func (d *Dispatcher) invoke(p *domain.Project, route Route, req *http.Request, body []byte) (*http.Response, error) {
	fwd := rewriteForward(req, route, body)
	return d.registry.Script(p.Subdomain).Invoke(fwd)
}

func writeResponse(c *gin.Context, resp *http.Response) {
	defer resp.Body.Close()

	header := c.Writer.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Printf("[dispatch] streaming response body failed: %v", err)
	}
}
