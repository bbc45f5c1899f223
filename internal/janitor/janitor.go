package janitor

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/siteloft/front-door-backend/internal/projects/domain"
	"github.com/siteloft/front-door-backend/internal/registry"
)

type Registry interface {
	ListScripts(ctx context.Context) ([]registry.ScriptInfo, error)
	DeleteScript(ctx context.Context, name string) error
}

type Store interface {
	List(ctx context.Context) ([]domain.Project, error)
}

// Janitor periodically removes registry scripts that no longer have a
// backing project record. The other direction of drift (a project with no
// deployed script) is healed lazily by dispatch, so only orphaned scripts
// need sweeping.
type Janitor struct {
	registry Registry
	store    Store
	spec     string
	cron     *cron.Cron
}

func New(reg Registry, store Store, spec string) *Janitor {
	return &Janitor{registry: reg, store: store, spec: spec}
}

// Start schedules the sweep. A missing spec disables the janitor.
func (j *Janitor) Start() {
	if j.spec == "" {
		log.Println("[janitor] disabled (no schedule configured)")
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(j.spec, func() { j.Sweep(context.Background()) }); err != nil {
		log.Printf("[janitor] failed to create cron job: %v", err)
		return
	}
	c.Start()
	j.cron = c
	log.Printf("[janitor] started with schedule %q", j.spec)
}

// Stop halts the schedule. In-flight sweeps finish on their own.
func (j *Janitor) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

// Sweep deletes every registry script with no matching project subdomain.
func (j *Janitor) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	scripts, err := j.registry.ListScripts(ctx)
	if err != nil {
		log.Printf("[janitor] list scripts failed: %v", err)
		return
	}
	projects, err := j.store.List(ctx)
	if err != nil {
		log.Printf("[janitor] list projects failed: %v", err)
		return
	}

	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		known[p.Subdomain] = true
	}

	removed := 0
	for _, s := range scripts {
		if known[s.ID] {
			continue
		}
		if err := j.registry.DeleteScript(ctx, s.ID); err != nil {
			log.Printf("[janitor] delete orphan script %q failed: %v", s.ID, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[janitor] removed %d orphaned script(s)", removed)
	}
}
