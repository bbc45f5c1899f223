package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siteloft/front-door-backend/internal/projects/domain"
)

// Repo provides persistence for project records. The projects table is the
// source of truth; the execution registry entry for a project is derived
// state reconciled lazily at dispatch time.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// TableExists checks the catalog for the projects table.
func (r *Repo) TableExists(ctx context.Context) (bool, error) {
	const q = `
select exists (
  select 1 from information_schema.tables
  where table_schema = current_schema() and table_name = 'projects'
);
`
	var exists bool
	if err := r.db.QueryRow(ctx, q).Scan(&exists); err != nil {
		return false, fmt.Errorf("table check: %w", err)
	}
	return exists, nil
}

// EnsureSchema creates the projects table. Idempotent, so concurrent first
// requests racing on the bootstrap flag stay harmless.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists projects (
  id text primary key,
  name text not null,
  subdomain text unique not null,
  custom_hostname text unique,
  script_content text not null,
  created_on text not null,
  modified_on text not null
);
`
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert persists a new project. Unique violations from the database map to
// the conflict errors, which closes the window left by the service layer's
// pre-insert existence checks.
func (r *Repo) Insert(ctx context.Context, p *domain.Project) error {
	const q = `
insert into projects (id, name, subdomain, custom_hostname, script_content, created_on, modified_on)
values ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.db.Exec(ctx, q, p.ID, p.Name, p.Subdomain, p.CustomHostname, p.ScriptContent, p.CreatedOn, p.ModifiedOn)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "custom_hostname") {
				return domain.ErrHostnameTaken
			}
			return domain.ErrSubdomainTaken
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *Repo) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Project, error) {
	const q = `
select id, name, subdomain, custom_hostname, script_content, created_on, modified_on
from projects
where subdomain = $1;
`
	return r.getOne(ctx, q, subdomain)
}

func (r *Repo) GetByCustomHostname(ctx context.Context, hostname string) (*domain.Project, error) {
	const q = `
select id, name, subdomain, custom_hostname, script_content, created_on, modified_on
from projects
where custom_hostname = $1;
`
	return r.getOne(ctx, q, hostname)
}

func (r *Repo) getOne(ctx context.Context, q, key string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRow(ctx, q, key).
		Scan(&p.ID, &p.Name, &p.Subdomain, &p.CustomHostname, &p.ScriptContent, &p.CreatedOn, &p.ModifiedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetch project: %w", err)
	}
	return &p, nil
}

// List returns all projects, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Project, error) {
	const q = `
select id, name, subdomain, custom_hostname, script_content, created_on, modified_on
from projects
order by created_on desc;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Subdomain, &p.CustomHostname, &p.ScriptContent, &p.CreatedOn, &p.ModifiedOn); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteAll clears the table. Only the full-reset operation uses this.
func (r *Repo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `delete from projects;`); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	return nil
}
