package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/lia-server/auth"
	"github.com/jrsteele09/lia-server/events"
	"github.com/jrsteele09/lia-server/favorites"
	"github.com/jrsteele09/lia-server/internal/config"
	"github.com/jrsteele09/lia-server/invites"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/jrsteele09/lia-server/sessions"
	"github.com/jrsteele09/lia-server/users"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"
)

// Repos holds every store the server is built on
type Repos struct {
	Users     users.Repo
	Sessions  sessions.Repo
	Lists     lists.Repo
	Items     lists.ItemRepo
	Invites   invites.Repo
	Joined    invites.JoinedRepo
	Favorites favorites.Repo
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	repos  Repos
	bus    events.Bus

	sessions *sessions.Manager
	auth     *auth.Service
	guard    *auth.Guard
	resolver *auth.Resolver
	lists    *lists.Service
	registry *invites.Registry

	heartbeat time.Duration
	preflight http.HandlerFunc
}

// ServerOption defines a function type to modify the server wiring.
type ServerOption func(*serverOptions)

type serverOptions struct {
	nowTime   func() time.Time
	meter     metric.Meter
	heartbeat time.Duration
}

// WithNowTime sets the clock used by sessions and invites (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(o *serverOptions) {
		o.nowTime = nowFunc
	}
}

// WithMeter records guard denials on meter.
func WithMeter(meter metric.Meter) ServerOption {
	return func(o *serverOptions) {
		o.meter = meter
	}
}

// WithHeartbeat sets the interval between event stream keep-alive comments.
func WithHeartbeat(interval time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.heartbeat = interval
	}
}

// New wires the services over repos and bus, ensures the root user exists and
// registers every route. No request is served before the root user is in place.
func New(ctx context.Context, config config.Config, repos Repos, bus events.Bus, options ...ServerOption) (*Server, error) {
	opts := serverOptions{nowTime: time.Now, heartbeat: HeartbeatInterval}
	for _, opt := range options {
		opt(&opts)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		repos:     repos,
		bus:       bus,
		heartbeat: opts.heartbeat,
	}

	var err error
	if s.sessions, err = sessions.NewManager(repos.Sessions, repos.Users, config.GetSessionTTL(), sessions.WithNowTime(opts.nowTime)); err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}
	if s.lists, err = lists.NewService(lists.Repos{Lists: repos.Lists, Items: repos.Items}, bus); err != nil {
		return nil, fmt.Errorf("[Server New] failed to create list service: %w", err)
	}
	inviteRepos := invites.Repos{Invites: repos.Invites, Joined: repos.Joined, Favorites: repos.Favorites}
	if s.registry, err = invites.NewRegistry(inviteRepos, s.lists, invites.WithNowTime(opts.nowTime)); err != nil {
		return nil, fmt.Errorf("[Server New] failed to create invite registry: %w", err)
	}
	if s.auth, err = auth.NewService(repos.Users, s.sessions, s.registry, auth.WithAccountCreation(config.GetAllowAccountCreation())); err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	var guardOptions []auth.GuardOption
	if opts.meter != nil {
		guardOptions = append(guardOptions, auth.WithMeter(opts.meter))
	}
	guardRepos := auth.GuardRepos{Users: repos.Users, Lists: repos.Lists, Invites: repos.Invites}
	if s.guard, err = auth.NewGuard(guardRepos, s.sessions, s.registry, guardOptions...); err != nil {
		return nil, fmt.Errorf("[Server New] failed to create guard: %w", err)
	}
	if s.resolver, err = auth.NewResolver(repos.Lists, repos.Invites); err != nil {
		return nil, fmt.Errorf("[Server New] failed to create resolver: %w", err)
	}

	if err := s.InitialiseSystem(ctx); err != nil {
		return nil, err
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

// ServeHTTP answers CORS preflight for every path before routing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		s.preflight(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handlerFunc http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handlerFunc)
}

// Routes returns the registered route patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "ANY", route
		}
		logRoute(method, path)
	}
}

func logRoute(method, path string) {
	displayMethod := method
	if color, ok := methodColors[method]; ok {
		displayMethod = color + fmt.Sprintf(" %-7s", method) + ResetColor
	}
	log.Info().Msgf("[%s] %s%s%s", displayMethod, Gray, path, ResetColor)
}
