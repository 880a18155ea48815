// ABOUTME: Template loading, helpers, and rendering for dashboard pages
// ABOUTME: Every page is rendered inside base.html with navigation and notices

package webadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bearound/bearound-admin/internal/adminapi"
	"github.com/bearound/bearound-admin/internal/apiclient"
	"github.com/bearound/bearound-admin/internal/assets"
	"github.com/bearound/bearound-admin/internal/guard"
	"github.com/bearound/bearound-admin/internal/session"
)

type navItem struct {
	Label string
	Path  string
}

var navigation = []navItem{
	{"Dashboard", "/dashboard"},
	{"Users", "/users"},
	{"Reports", "/reports"},
	{"Blocks", "/blocks"},
	{"Feedback", "/feedback"},
	{"Analytics", "/analytics"},
	{"Activity Logs", "/activity-logs"},
	{"Feature Flags", "/features"},
	{"App Limits", "/limits"},
	{"Premium", "/premium"},
	{"Content", "/content"},
	{"Settings", "/settings"},
}

// layout is the chrome shared by every page
type layout struct {
	Title     string
	Active    string
	User      *session.User
	CSRFToken string
	Notices   []apiclient.Notice
	Nav       []navItem
	LoadError string
}

// view is what templates execute against
type view struct {
	layout
	Page any
}

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

var templateFuncs = template.FuncMap{
	"num": func(n int) string {
		return printer.Sprintf("%d", n)
	},
	"rupees": func(paisa int) string {
		return printer.Sprintf("₹%.2f", float64(paisa)/100)
	},
	"rupeeValue": func(paisa int) string {
		return strconv.FormatFloat(float64(paisa)/100, 'f', 2, 64)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("Jan 2, 2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("Jan 2, 2006 15:04")
	},
	"humanize": humanize,
	"limit": func(n int) string {
		if n == adminapi.Unlimited {
			return "Unlimited"
		}
		return strconv.Itoa(n)
	},
	"markdown": renderMarkdown,
	"pageLink": func(q url.Values, page int) string {
		next := url.Values{}
		for k, v := range q {
			next[k] = v
		}
		next.Set("page", strconv.Itoa(page))
		return "?" + next.Encode()
	},
	"add":     func(a, b int) int { return a + b },
	"asset":   assets.URL,
	"choices": func(values []string, selected string) choiceSet { return choiceSet{values, selected} },
	"percent": func(n, total int) int {
		if total <= 0 {
			return 0
		}
		return n * 100 / total
	},
	"pretty": func(raw json.RawMessage) string {
		if len(raw) == 0 || string(raw) == "null" {
			return ""
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return string(raw)
		}
		return buf.String()
	},
	"isActive": func(active, p string) bool {
		return active == p || strings.HasPrefix(active, p+"/")
	},
}

// choiceSet feeds the "options" template.
type choiceSet struct {
	Values   []string
	Selected string
}

// humanize turns an enum value like hate_speech into "Hate Speech".
func humanize(s string) string {
	return titler.String(strings.ReplaceAll(s, "_", " "))
}

// renderMarkdown converts user-written markdown. Raw HTML in the source is
// dropped by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		name := path.Base(p)
		if name == "base.html" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.html", p)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		out[name] = tmpl
	}
	return out, nil
}

// render writes a page inside the chrome
func (a *Admin) render(w http.ResponseWriter, r *http.Request, status int, name, title string, page any, loadErr string) {
	tmpl, ok := a.templates[name]
	if !ok {
		a.logger.Error("unknown template", "name", name)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	st := stateFrom(ctx)
	lay := layout{
		Title:     title,
		Active:    r.URL.Path,
		Nav:       navigation,
		LoadError: loadErr,
	}
	if st != nil {
		lay.CSRFToken = st.csrfToken
		lay.Notices = a.takeNotices(ctx, st)
	}
	if sess, ok := guard.FromContext(ctx); ok {
		lay.User = sess.User
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view{layout: lay, Page: page}); err != nil {
		a.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// show finishes a read view: a 401 during the fetch sends the browser to
// login, other failures render the page with a load error.
func (a *Admin) show(w http.ResponseWriter, r *http.Request, name, title string, page any, err error) {
	if a.bounceToLogin(w, r) {
		return
	}

	status := http.StatusOK
	loadErr := ""
	if err != nil {
		loadErr = "Failed to load data."
		if re, ok := apiclient.AsResponse(err); ok && re.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
			loadErr = "Not found."
		}
		if !errors.Is(err, context.Canceled) {
			a.logger.Warn("page data unavailable", "page", name, "error", err, "class", apiclient.Classify(err))
		}
	}
	a.render(w, r, status, name, title, page, loadErr)
}

// bounceToLogin redirects when the API expired the session during this request
func (a *Admin) bounceToLogin(w http.ResponseWriter, r *http.Request) bool {
	st := stateFrom(r.Context())
	if st == nil || !st.redirectedToLogin() {
		return false
	}
	a.queueNotices(r.Context(), st)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	return true
}
