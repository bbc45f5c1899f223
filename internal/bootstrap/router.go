package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/siteloft/front-door-backend/config"
	"github.com/siteloft/front-door-backend/internal/admin"
	httpapi "github.com/siteloft/front-door-backend/internal/api/http"
	"github.com/siteloft/front-door-backend/internal/api/http/middleware"
	"github.com/siteloft/front-door-backend/internal/gateway"
	"github.com/siteloft/front-door-backend/internal/hostnames"
	"github.com/siteloft/front-door-backend/internal/projects/cache"
	projectshttp "github.com/siteloft/front-door-backend/internal/projects/http"
	"github.com/siteloft/front-door-backend/internal/projects/repository"
	"github.com/siteloft/front-door-backend/internal/projects/service"
	"github.com/siteloft/front-door-backend/internal/registry"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Config      *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Registry    *registry.Client
	Oracle      *hostnames.Client
}

// registryAdapter narrows the registry client to the dispatcher's interface.
type registryAdapter struct {
	client *registry.Client
}

func (a registryAdapter) Script(name string) gateway.ScriptHandle {
	return a.client.Script(name)
}

func (a registryAdapter) PutScript(ctx context.Context, name, content string) error {
	return a.client.PutScript(ctx, name, content)
}

// BuildRouter assembles the full front door: tenant dispatch runs on every
// route ahead of the platform's own handlers, exactly mirroring the
// classify → resolve → rewrite → invoke pipeline.
func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	repo := repository.NewRepo(dep.DB)
	lookup := cache.NewLookup(repo, dep.Redis)
	initializer := NewInitializer(repo)

	routing := gateway.RoutingConfig{
		PlatformDomain: cfg.Platform.Domain,
		AdminSubdomain: cfg.Platform.AdminSubdomain,
	}
	dispatcher := gateway.NewDispatcher(lookup, registryAdapter{dep.Registry}, routing)
	r.Use(gateway.Middleware(initializer, dispatcher))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	svc := service.New(repo, dep.Registry, dep.Oracle, lookup, cfg.Platform.Domain, cfg.Platform.DisplayHost)

	adminHandler := admin.NewHandler(svc, cfg.Registry.Namespace)
	adminHandler.RegisterRoutes(r)

	createLimiter := rate.NewLimiter(rate.Every(time.Second), 5)
	projectHandler := projectshttp.NewHandler(svc)
	projectHandler.Register(r.Group("/projects"), middleware.RateLimit(createLimiter))

	return r
}
