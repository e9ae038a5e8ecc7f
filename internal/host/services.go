// Package host implements the concrete Services the interpreter core
// calls through for file, JSON, and HTTP/live-reload builtins (§6).
// Grounded on the teacher's functional-options constructor idiom
// (options.go) generalized from VM construction to host-service wiring.
package host

import (
	"html/template"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Services is the concrete implementation of host.Services (the
// interface lives in host.go; this struct backs it).
type Services struct {
	templates   *template.Template
	templateDir string

	mu      sync.Mutex
	servers map[string]*webServer
}

type webServer struct {
	port    int
	router  chi.Router
	hotDir  string
}

// New constructs a Services with no templates loaded and no servers
// created yet.
func New(opts ...Option) *Services {
	s := &Services{servers: make(map[string]*webServer)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Services at construction time.
type Option func(*Services)

// WithTemplateDir loads every *.html template under dir for later
// RenderTemplate calls.
func WithTemplateDir(dir string) Option {
	return func(s *Services) {
		s.templateDir = dir
		tmpl, err := template.ParseGlob(dir + "/*.html")
		if err == nil {
			s.templates = tmpl
		}
	}
}
