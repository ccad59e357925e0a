package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/notedhq/noted/internal/cache"
	"github.com/notedhq/noted/internal/logger"
)

const (
	noteCountKey = "notes:count"
	noteCountTTL = 30 * time.Second
)

// NoteCounter supplies the landing-page statistic.
type NoteCounter interface {
	Count(ctx context.Context) (int, error)
}

// Handlers serves the rendered pages.
type Handlers struct {
	tmpl  map[string]*template.Template
	notes NoteCounter
	cache *cache.Cache
	log   *logger.Logger
}

// NewHandlers parses every page template under templateDir against the
// shared layout. The cache may be nil; the count is then fetched from the
// store on every render.
func NewHandlers(templateDir string, notes NoteCounter, c *cache.Cache) (*Handlers, error) {
	templates := map[string]*template.Template{}
	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}

	return &Handlers{
		tmpl:  templates,
		notes: notes,
		cache: c,
		log:   logger.Default().WithComponent("web"),
	}, nil
}

// Home renders the landing page with the running note count.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", map[string]any{
		"NotesTaken": h.notesTaken(r.Context()),
	})
}

// SignupPage renders the registration form.
func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", nil)
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", nil)
}

// Dash renders the dashboard shell; the page's own script fetches the
// user's notes over the API with its stored token.
func (h *Handlers) Dash(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "dashboard", nil)
}

// NotFound renders the 404 page for unknown paths.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404", nil)
}

// notesTaken returns the display value for the landing-page statistic: the
// cached count when fresh, the live count otherwise, and an apologetic
// string when the store is unreachable.
func (h *Handlers) notesTaken(ctx context.Context) string {
	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, noteCountKey); ok {
			return cached
		}
	}

	count, err := h.notes.Count(ctx)
	if err != nil {
		h.log.Error(ctx, "note count failed", err)
		return "Could not connect to DataBase"
	}

	value := strconv.Itoa(count)
	if h.cache != nil {
		h.cache.Set(ctx, noteCountKey, value, noteCountTTL)
	}
	return value
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := h.tmpl[name]
	if !ok {
		h.renderError(w, r, fmt.Errorf("template %q not found", name))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		h.log.Error(r.Context(), "template render failed", err, map[string]interface{}{
			"template": name,
		})
	}
}

// renderError renders the 500 page, falling back to a plain response if
// even that template is broken.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, cause error) {
	h.log.Error(r.Context(), "page error", cause)

	t, ok := h.tmpl["500"]
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	t.ExecuteTemplate(w, "layout", map[string]any{"Error": cause.Error()})
}
