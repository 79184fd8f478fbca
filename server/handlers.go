package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/varix-web/sessions"
	"github.com/rs/zerolog/hlog"
)

// PageData is what every page template gets.
type PageData struct {
	AppName string
	Path    string
	User    *sessions.User
}

func (s *Server) pageData(r *http.Request) PageData {
	d := PageData{AppName: s.config.GetAppName(), Path: r.URL.Path}
	if a := authFromContext(r.Context()); a != nil {
		d.User = a.state().User()
	}
	return d
}

var (
	errorTemplate    = sync.OnceValue(func() *template.Template { return mustParseTemplate("error.html") })
	loadingTemplate  = sync.OnceValue(func() *template.Template { return mustParseTemplate("loading.html") })
	notFoundTemplate = sync.OnceValue(func() *template.Template { return mustParseTemplate("not_found.html") })
)

// render executes tmpl into a buffer first so a template error never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		hlog.FromRequest(r).Err(err).Str("path", r.URL.Path).Msg("Failed to render template")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ErrorPageData backs the generic error page, which offers a retry of the
// same URL and a way home.
type ErrorPageData struct {
	PageData
	RetryURL string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	retry := r.URL.Path
	if r.Method != http.MethodGet {
		retry = RouteHome
	}
	s.render(w, r, errorTemplate(), status, ErrorPageData{PageData: s.pageData(r), RetryURL: retry})
}

func (s *Server) renderLoading(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, loadingTemplate(), http.StatusOK, s.pageData(r))
}

// MarketingPageHandler serves a static marketing page.
func (s *Server) MarketingPageHandler(name string) http.HandlerFunc {
	tmpl := mustParseTemplate(name)
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, s.pageData(r))
	}
}

type ContactPageData struct {
	PageData
	FirstName string
	LastName  string
	Email     string
	Company   string
	Message   string
	Error     string
	Sent      bool
}

const msgContactRequired = "Please fill in all required fields."

func (s *Server) ContactGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("contact.html")
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, ContactPageData{PageData: s.pageData(r)})
	}
}

// ContactPostHandler accepts the contact form. Submissions are only logged.
func (s *Server) ContactPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("contact.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		data := ContactPageData{
			PageData:  s.pageData(r),
			FirstName: strings.TrimSpace(r.PostForm.Get("first_name")),
			LastName:  strings.TrimSpace(r.PostForm.Get("last_name")),
			Email:     strings.TrimSpace(r.PostForm.Get("email")),
			Company:   strings.TrimSpace(r.PostForm.Get("company")),
			Message:   strings.TrimSpace(r.PostForm.Get("message")),
		}
		if data.FirstName == "" || data.LastName == "" || data.Email == "" || data.Message == "" {
			data.Error = msgContactRequired
			s.render(w, r, tmpl, http.StatusUnprocessableEntity, data)
			return
		}

		domain := ""
		if _, d, ok := strings.Cut(data.Email, "@"); ok {
			domain = d
		}
		hlog.FromRequest(r).Info().
			Str("name", data.FirstName+" "+data.LastName).
			Str("email_domain", domain).
			Str("company", data.Company).
			Msg("Contact form submitted")

		s.render(w, r, tmpl, http.StatusOK, ContactPageData{PageData: data.PageData, Sent: true})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, notFoundTemplate(), http.StatusNotFound, s.pageData(r))
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
