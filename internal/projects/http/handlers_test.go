package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/siteloft/front-door-backend/internal/hostnames"
	"github.com/siteloft/front-door-backend/internal/projects/domain"
	"github.com/siteloft/front-door-backend/internal/projects/service"
	"github.com/siteloft/front-door-backend/internal/registry"
)

type memStore struct {
	bySubdomain map[string]*domain.Project
	byHostname  map[string]*domain.Project
}

func newMemStore() *memStore {
	return &memStore{bySubdomain: map[string]*domain.Project{}, byHostname: map[string]*domain.Project{}}
}

func (m *memStore) Insert(_ context.Context, p *domain.Project) error {
	m.bySubdomain[p.Subdomain] = p
	if p.CustomHostname != nil {
		m.byHostname[*p.CustomHostname] = p
	}
	return nil
}

func (m *memStore) GetBySubdomain(_ context.Context, key string) (*domain.Project, error) {
	if p, ok := m.bySubdomain[key]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetByCustomHostname(_ context.Context, key string) (*domain.Project, error) {
	if p, ok := m.byHostname[key]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) List(context.Context) ([]domain.Project, error) { return nil, nil }
func (m *memStore) DeleteAll(context.Context) error                { return nil }
func (m *memStore) EnsureSchema(context.Context) error             { return nil }

type memScripts struct {
	deployed map[string]string
}

func (m *memScripts) PutScript(_ context.Context, name, content string) error {
	m.deployed[name] = content
	return nil
}
func (m *memScripts) DeleteScript(_ context.Context, name string) error {
	delete(m.deployed, name)
	return nil
}
func (m *memScripts) ListScripts(context.Context) ([]registry.ScriptInfo, error) { return nil, nil }

type memOracle struct{}

func (memOracle) Register(context.Context, string) bool { return true }
func (memOracle) GetStatus(context.Context, string) hostnames.Status {
	return hostnames.Status{Status: hostnames.StatusPending, VerificationErrors: []string{}}
}

func newTestRouter() (*gin.Engine, *memStore, *memScripts) {
	gin.SetMode(gin.TestMode)
	store := newMemStore()
	scripts := &memScripts{deployed: map[string]string{}}
	svc := service.New(store, scripts, memOracle{}, nil, "example.com", "")

	r := gin.New()
	NewHandler(svc).Register(r.Group("/projects"))
	return r, store, scripts
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProjectReturns201(t *testing.T) {
	r, store, scripts := newTestRouter()

	w := postJSON(r, "/projects", `{"name":"Demo","subdomain":"demo","script_content":"export default site"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK      bool           `json:"ok"`
		Project domain.Project `json:"project"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK || resp.Project.Subdomain != "demo" {
		t.Errorf("response = %+v", resp)
	}

	if _, ok := store.bySubdomain["demo"]; !ok {
		t.Error("project not persisted")
	}
	if scripts.deployed["demo"] != "export default site" {
		t.Error("script not deployed")
	}
}

func TestCreateProjectInvalidSubdomainReturns400(t *testing.T) {
	r, store, scripts := newTestRouter()

	w := postJSON(r, "/projects", `{"name":"Demo","subdomain":"Demo!","script_content":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	// No store mutation, no registry mutation.
	if len(store.bySubdomain) != 0 || len(scripts.deployed) != 0 {
		t.Error("invalid input must not write anywhere")
	}
}

func TestCreateProjectMissingFieldsReturns400(t *testing.T) {
	r, _, _ := newTestRouter()

	w := postJSON(r, "/projects", `{"name":"Demo"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateProjectDuplicateReturns409(t *testing.T) {
	r, _, _ := newTestRouter()

	if w := postJSON(r, "/projects", `{"name":"Demo","subdomain":"demo","script_content":"x"}`); w.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d", w.Code)
	}
	if w := postJSON(r, "/projects", `{"name":"Other","subdomain":"demo","script_content":"y"}`); w.Code != http.StatusConflict {
		t.Errorf("second create: status = %d, want 409", w.Code)
	}
}

func TestCreateProjectMalformedBodyReturns400(t *testing.T) {
	r, _, _ := newTestRouter()

	if w := postJSON(r, "/projects", `{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCustomDomainStatusUnknownProjectReturns404(t *testing.T) {
	r, _, _ := newTestRouter()

	req := httptest.NewRequest("GET", "/projects/ghost/custom-domain-status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCustomDomainStatusReturnsOracleAnswer(t *testing.T) {
	r, _, _ := newTestRouter()

	postJSON(r, "/projects", `{"name":"Demo","subdomain":"demo","script_content":"x","custom_hostname":"mystore.com"}`)

	req := httptest.NewRequest("GET", "/projects/demo/custom-domain-status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var status service.DomainStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !status.HasCustomDomain || status.CustomDomain != "mystore.com" {
		t.Errorf("status = %+v", status)
	}
	if status.Status != hostnames.StatusPending || status.IsActive {
		t.Errorf("oracle answer not passed through: %+v", status)
	}
	if status.WorkerURL != "https://demo.example.com" {
		t.Errorf("worker url = %q", status.WorkerURL)
	}
}
