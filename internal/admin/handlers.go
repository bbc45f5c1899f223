package admin

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/siteloft/front-door-backend/internal/projects/service"
)

// Handler serves the platform's own pages: the landing page, the debug
// admin view of both stores, and the full reset.
type Handler struct {
	svc       *service.Service
	namespace string
}

func NewHandler(svc *service.Service, namespace string) *Handler {
	return &Handler{svc: svc, namespace: namespace}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.index)
	r.GET("/admin", h.adminPage)
	r.GET("/init", h.reset)
	r.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func (h *Handler) index(c *gin.Context) {
	body := `<h1>Build a website</h1>
<p>POST /projects with {"name", "subdomain", "script_content", "custom_hostname"?} to publish a site.</p>
<p><a href="/admin">Admin</a></p>`
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(renderPage(body)))
}

// adminPage shows the projects table and the registry namespace side by
// side. Each section is best-effort: a dead collaborator degrades to a note
// instead of failing the page.
func (h *Handler) adminPage(c *gin.Context) {
	var b strings.Builder
	b.WriteString(`<hr class="solid"><br/>
<div>
  <form style="display: inline" action="/init"><input type="submit" value="Initialize" /></form>
  <small> - Resets db and dispatch namespace to initial state</small>
</div>
<h2>DB Tables</h2>`)

	projects, err := h.svc.List(c.Request.Context())
	if err != nil {
		b.WriteString("<div>No DB data. Database will auto-initialize on first project creation.</div>")
	} else {
		headers := []string{"id", "name", "subdomain", "custom_hostname", "script_content", "created_on", "modified_on"}
		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			hostname := ""
			if p.CustomHostname != nil {
				hostname = *p.CustomHostname
			}
			rows = append(rows, []string{p.ID, p.Name, p.Subdomain, hostname, p.ScriptContent, p.CreatedOn, p.ModifiedOn})
		}
		b.WriteString(buildTable("projects", headers, rows))
	}

	scripts, err := h.svc.ListScripts(c.Request.Context())
	if err != nil {
		log.Printf("[admin] listing registry scripts failed: %v", err)
		fmt.Fprintf(&b, "<div>Dispatch namespace %q was not found.</div>", h.namespace)
	} else {
		b.WriteString("</br><h2>Dispatch Namespace</h2>")
		rows := make([][]string, 0, len(scripts))
		for _, s := range scripts {
			rows = append(rows, []string{s.ID, s.CreatedOn, s.ModifiedOn})
		}
		b.WriteString(buildTable(h.namespace, []string{"id", "created_on", "modified_on"}, rows))
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(renderPage(b.String())))
}

func (h *Handler) reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		log.Printf("[admin] reset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}
