package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/siteloft/front-door-backend/internal/hostnames"
	"github.com/siteloft/front-door-backend/internal/projects/domain"
	"github.com/siteloft/front-door-backend/internal/registry"
)

// Store is the project repository surface the service uses.
type Store interface {
	Insert(ctx context.Context, p *domain.Project) error
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Project, error)
	GetByCustomHostname(ctx context.Context, hostname string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	DeleteAll(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
}

// ScriptRegistry is the execution registry surface the service uses.
type ScriptRegistry interface {
	PutScript(ctx context.Context, name, content string) error
	DeleteScript(ctx context.Context, name string) error
	ListScripts(ctx context.Context) ([]registry.ScriptInfo, error)
}

// HostnameOracle registers vanity domains and reports their certificate
// state. Best-effort by contract; bool results, never errors.
type HostnameOracle interface {
	Register(ctx context.Context, hostname string) bool
	GetStatus(ctx context.Context, hostname string) hostnames.Status
}

// LookupCache invalidates cached routing-key lookups. May be backed by
// redis or be a no-op.
type LookupCache interface {
	Invalidate(ctx context.Context, p *domain.Project)
	Flush(ctx context.Context)
}

// Service implements project creation, the full reset, and the admin-facing
// queries around them.
type Service struct {
	store    Store
	registry ScriptRegistry
	oracle   HostnameOracle
	cache    LookupCache

	platformDomain string
	displayHost    string
}

func New(store Store, reg ScriptRegistry, oracle HostnameOracle, cache LookupCache, platformDomain, displayHost string) *Service {
	return &Service{
		store:          store,
		registry:       reg,
		oracle:         oracle,
		cache:          cache,
		platformDomain: platformDomain,
		displayHost:    displayHost,
	}
}

// CreateInput is the payload for project creation.
type CreateInput struct {
	Name           string `json:"name"`
	Subdomain      string `json:"subdomain"`
	ScriptContent  string `json:"script_content"`
	CustomHostname string `json:"custom_hostname"`
}

// Create validates in, persists the project, deploys its script, and
// registers its vanity hostname when one was given. Validation and conflict
// checks short-circuit before any write. Hostname registration failure is
// logged only: the project stays reachable by subdomain.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	if in.Name == "" || in.Subdomain == "" || in.ScriptContent == "" {
		return nil, domain.NewValidationError("Missing required fields: name, subdomain, script_content")
	}
	if !domain.ValidSubdomain(in.Subdomain) {
		return nil, domain.NewValidationError("Subdomain must only contain lowercase letters, numbers, and hyphens")
	}

	if _, err := s.store.GetBySubdomain(ctx, in.Subdomain); err == nil {
		return nil, domain.ErrSubdomainTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("subdomain check: %w", err)
	}

	if in.CustomHostname != "" {
		if _, err := s.store.GetByCustomHostname(ctx, in.CustomHostname); err == nil {
			return nil, domain.ErrHostnameTaken
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("hostname check: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p := &domain.Project{
		ID:            "project-" + uuid.NewString(),
		Name:          in.Name,
		Subdomain:     in.Subdomain,
		ScriptContent: in.ScriptContent,
		CreatedOn:     now,
		ModifiedOn:    now,
	}
	if in.CustomHostname != "" {
		p.CustomHostname = &in.CustomHostname
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	// Eager first deploy. Dispatch can redeploy lazily later if the
	// registry entry goes away.
	if err := s.registry.PutScript(ctx, p.Subdomain, p.ScriptContent); err != nil {
		return nil, fmt.Errorf("deploy script: %w", err)
	}

	if p.CustomHostname != nil {
		if ok := s.oracle.Register(ctx, *p.CustomHostname); !ok {
			log.Printf("[projects] failed to create custom hostname: %s", *p.CustomHostname)
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, p)
	}
	return p, nil
}

// DomainStatus is the admin-facing answer about a project's vanity domain.
type DomainStatus struct {
	HasCustomDomain    bool     `json:"has_custom_domain"`
	CustomDomain       string   `json:"custom_domain,omitempty"`
	Status             string   `json:"status,omitempty"`
	SSLStatus          string   `json:"ssl_status,omitempty"`
	VerificationErrors []string `json:"verification_errors,omitempty"`
	WorkerURL          string   `json:"worker_url"`
	IsActive           bool     `json:"is_active,omitempty"`
}

// CustomDomainStatus reports the provisioning state of the project's vanity
// hostname, or just the platform URL when none is configured.
func (s *Service) CustomDomainStatus(ctx context.Context, subdomain string) (*DomainStatus, error) {
	p, err := s.store.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	out := &DomainStatus{WorkerURL: s.workerURL(subdomain)}
	if p.CustomHostname == nil {
		return out, nil
	}

	status := s.oracle.GetStatus(ctx, *p.CustomHostname)
	out.HasCustomDomain = true
	out.CustomDomain = *p.CustomHostname
	out.Status = status.Status
	if status.SSL != nil {
		out.SSLStatus = status.SSL.Status
	}
	out.VerificationErrors = status.VerificationErrors
	if out.VerificationErrors == nil {
		out.VerificationErrors = []string{}
	}
	out.IsActive = status.Status == hostnames.StatusActive
	return out, nil
}

func (s *Service) workerURL(subdomain string) string {
	if s.platformDomain != "" {
		return fmt.Sprintf("https://%s.%s", subdomain, s.platformDomain)
	}
	host := s.displayHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("https://%s/%s", host, subdomain)
}

// List returns every project for the admin surface.
func (s *Service) List(ctx context.Context) ([]domain.Project, error) {
	return s.store.List(ctx)
}

// ListScripts returns every deployed registry entry for the admin surface.
func (s *Service) ListScripts(ctx context.Context) ([]registry.ScriptInfo, error) {
	return s.registry.ListScripts(ctx)
}

// Reset wipes both stores back to their initial state: every registry
// script is deleted, the projects table is cleared and re-created, and the
// lookup cache is flushed.
func (s *Service) Reset(ctx context.Context) error {
	scripts, err := s.registry.ListScripts(ctx)
	if err != nil {
		return fmt.Errorf("list scripts: %w", err)
	}
	for _, script := range scripts {
		if err := s.registry.DeleteScript(ctx, script.ID); err != nil {
			log.Printf("[projects] reset: delete script %q failed: %v", script.ID, err)
		}
	}

	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Flush(ctx)
	}
	log.Println("[projects] store and registry reset to initial state")
	return nil
}
