package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteloft/front-door-backend/internal/hostnames"
	"github.com/siteloft/front-door-backend/internal/projects/domain"
	"github.com/siteloft/front-door-backend/internal/registry"
)

type fakeStore struct {
	bySubdomain map[string]*domain.Project
	byHostname  map[string]*domain.Project
	inserts     int
	schemaCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bySubdomain: map[string]*domain.Project{},
		byHostname:  map[string]*domain.Project{},
	}
}

func (f *fakeStore) Insert(_ context.Context, p *domain.Project) error {
	if _, ok := f.bySubdomain[p.Subdomain]; ok {
		return domain.ErrSubdomainTaken
	}
	f.inserts++
	f.bySubdomain[p.Subdomain] = p
	if p.CustomHostname != nil {
		f.byHostname[*p.CustomHostname] = p
	}
	return nil
}

func (f *fakeStore) GetBySubdomain(_ context.Context, key string) (*domain.Project, error) {
	if p, ok := f.bySubdomain[key]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) GetByCustomHostname(_ context.Context, key string) (*domain.Project, error) {
	if p, ok := f.byHostname[key]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) List(context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(f.bySubdomain))
	for _, p := range f.bySubdomain {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) DeleteAll(context.Context) error {
	f.bySubdomain = map[string]*domain.Project{}
	f.byHostname = map[string]*domain.Project{}
	return nil
}

func (f *fakeStore) EnsureSchema(context.Context) error {
	f.schemaCalls++
	return nil
}

type fakeScripts struct {
	deployed map[string]string
	puts     int
	deletes  []string
}

func newFakeScripts() *fakeScripts {
	return &fakeScripts{deployed: map[string]string{}}
}

func (f *fakeScripts) PutScript(_ context.Context, name, content string) error {
	f.puts++
	f.deployed[name] = content
	return nil
}

func (f *fakeScripts) DeleteScript(_ context.Context, name string) error {
	f.deletes = append(f.deletes, name)
	delete(f.deployed, name)
	return nil
}

func (f *fakeScripts) ListScripts(context.Context) ([]registry.ScriptInfo, error) {
	out := make([]registry.ScriptInfo, 0, len(f.deployed))
	for name := range f.deployed {
		out = append(out, registry.ScriptInfo{ID: name})
	}
	return out, nil
}

type fakeOracle struct {
	registered []string
	registerOK bool
	status     hostnames.Status
}

func (f *fakeOracle) Register(_ context.Context, hostname string) bool {
	f.registered = append(f.registered, hostname)
	return f.registerOK
}

func (f *fakeOracle) GetStatus(context.Context, string) hostnames.Status {
	return f.status
}

func newTestService(store *fakeStore, scripts *fakeScripts, oracle *fakeOracle) *Service {
	return New(store, scripts, oracle, nil, "", "myworker.example")
}

func TestCreateSuccess(t *testing.T) {
	store := newFakeStore()
	scripts := newFakeScripts()
	svc := newTestService(store, scripts, &fakeOracle{registerOK: true})

	p, err := svc.Create(context.Background(), CreateInput{
		Name:          "Demo",
		Subdomain:     "demo",
		ScriptContent: "export default site",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.ID, "project-"))
	assert.Equal(t, "demo", p.Subdomain)
	assert.Equal(t, p.CreatedOn, p.ModifiedOn)
	assert.Nil(t, p.CustomHostname)

	// Lookup by subdomain returns the same record.
	got, err := store.GetBySubdomain(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// Script deployed eagerly under the subdomain name.
	assert.Equal(t, "export default site", scripts.deployed["demo"])
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing name", CreateInput{Subdomain: "demo", ScriptContent: "x"}},
		{"missing subdomain", CreateInput{Name: "Demo", ScriptContent: "x"}},
		{"missing script", CreateInput{Name: "Demo", Subdomain: "demo"}},
		{"uppercase subdomain", CreateInput{Name: "Demo", Subdomain: "Demo", ScriptContent: "x"}},
		{"invalid characters", CreateInput{Name: "Demo", Subdomain: "demo!", ScriptContent: "x"}},
		{"dots", CreateInput{Name: "Demo", Subdomain: "a.b", ScriptContent: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			scripts := newFakeScripts()
			svc := newTestService(store, scripts, &fakeOracle{})

			_, err := svc.Create(context.Background(), tt.input)
			assert.True(t, domain.IsValidation(err), "err = %v", err)

			// Short-circuit before any write.
			assert.Zero(t, store.inserts)
			assert.Zero(t, scripts.puts)
		})
	}
}

func TestCreateSubdomainConflict(t *testing.T) {
	store := newFakeStore()
	scripts := newFakeScripts()
	svc := newTestService(store, scripts, &fakeOracle{registerOK: true})

	_, err := svc.Create(context.Background(), CreateInput{Name: "Demo", Subdomain: "demo", ScriptContent: "a"})
	require.NoError(t, err)
	putsBefore := scripts.puts

	_, err = svc.Create(context.Background(), CreateInput{Name: "Other", Subdomain: "demo", ScriptContent: "b"})
	assert.ErrorIs(t, err, domain.ErrSubdomainTaken)

	// No second write anywhere.
	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, putsBefore, scripts.puts)
	assert.Equal(t, "a", scripts.deployed["demo"])
}

func TestCreateHostnameConflict(t *testing.T) {
	store := newFakeStore()
	scripts := newFakeScripts()
	svc := newTestService(store, scripts, &fakeOracle{registerOK: true})

	_, err := svc.Create(context.Background(), CreateInput{
		Name: "First", Subdomain: "first", ScriptContent: "a", CustomHostname: "mystore.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "Second", Subdomain: "second", ScriptContent: "b", CustomHostname: "mystore.com",
	})
	assert.ErrorIs(t, err, domain.ErrHostnameTaken)
	assert.Equal(t, 1, store.inserts)
}

func TestCreateHostnameRegistrationFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	scripts := newFakeScripts()
	oracle := &fakeOracle{registerOK: false}
	svc := newTestService(store, scripts, oracle)

	p, err := svc.Create(context.Background(), CreateInput{
		Name: "Demo", Subdomain: "demo", ScriptContent: "x", CustomHostname: "mystore.com",
	})
	require.NoError(t, err)
	require.NotNil(t, p.CustomHostname)
	assert.Equal(t, "mystore.com", *p.CustomHostname)
	assert.Equal(t, []string{"mystore.com"}, oracle.registered)

	// Still created and reachable by subdomain.
	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, "x", scripts.deployed["demo"])
}

func TestCustomDomainStatus(t *testing.T) {
	store := newFakeStore()
	scripts := newFakeScripts()
	oracle := &fakeOracle{
		registerOK: true,
		status: hostnames.Status{
			Status:             hostnames.StatusActive,
			SSL:                &hostnames.SSL{Status: "active"},
			VerificationErrors: []string{},
		},
	}
	svc := newTestService(store, scripts, oracle)

	_, err := svc.Create(context.Background(), CreateInput{
		Name: "Demo", Subdomain: "demo", ScriptContent: "x", CustomHostname: "mystore.com",
	})
	require.NoError(t, err)

	status, err := svc.CustomDomainStatus(context.Background(), "demo")
	require.NoError(t, err)
	assert.True(t, status.HasCustomDomain)
	assert.Equal(t, "mystore.com", status.CustomDomain)
	assert.True(t, status.IsActive)
	assert.Equal(t, "active", status.SSLStatus)
	assert.Equal(t, "https://myworker.example/demo", status.WorkerURL)
}

func TestCustomDomainStatusWithoutHostname(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeScripts(), &fakeOracle{registerOK: true})

	_, err := svc.Create(context.Background(), CreateInput{Name: "Demo", Subdomain: "demo", ScriptContent: "x"})
	require.NoError(t, err)

	status, err := svc.CustomDomainStatus(context.Background(), "demo")
	require.NoError(t, err)
	assert.False(t, status.HasCustomDomain)
	assert.NotEmpty(t, status.WorkerURL)
}

func TestCustomDomainStatusUnknownProject(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeScripts(), &fakeOracle{})

	_, err := svc.CustomDomainStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResetClearsBothStores(t *testing.T) {
	store := newFakeStore()
	scripts := newFakeScripts()
	svc := newTestService(store, scripts, &fakeOracle{registerOK: true})

	for _, sub := range []string{"one", "two"} {
		_, err := svc.Create(context.Background(), CreateInput{Name: sub, Subdomain: sub, ScriptContent: "x"})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Reset(context.Background()))

	assert.Empty(t, store.bySubdomain)
	assert.Empty(t, scripts.deployed)
	assert.Len(t, scripts.deletes, 2)
	assert.Equal(t, 1, store.schemaCalls, "reset re-creates the schema")
}
