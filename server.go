package oui

import (
	"context"
	"crypto/tls"
	_ "embed"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"oui/jsonv"
	"oui/manuf"
)

//go:embed static/index.html
var indexHTML []byte

// Server

type Server struct {
	http    *http.Server
	db      *manuf.DB
	limiter *rate.Limiter

	config Config
}

// NewServer serves lookups against db. tlsConfig may be nil to serve
// plain HTTP.
func NewServer(db *manuf.DB, c Config, tlsConfig *tls.Config) *Server {
	s := &Server{
		db:     db,
		config: c,
	}
	if c.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(c.Rate), max(c.Burst, 1))
	}

	s.http = &http.Server{
		Addr:              c.Addr(),
		Handler:           s.router(),
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. If a reload interval is
// configured the registry is periodically reloaded in the background.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting lookup server",
			slog.String("address", ln.Addr().String()),
			slog.Bool("tls", s.http.TLSConfig != nil),
			slog.String("db", s.db.Path()))

		var err error
		if s.http.TLSConfig != nil {
			err = s.http.ServeTLS(ln, "", "")
		} else {
			err = s.http.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		defer slog.Info("lookup server stopped")

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(sctx)
	})

	if s.config.Reload > 0 {
		g.Go(func() error {
			s.reload(ctx)
			return nil
		})
	}

	return g.Wait()
}

func (s *Server) reload(ctx context.Context) {
	t := time.NewTicker(s.config.Reload)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			slog.Info("reloading registry", slog.String("path", s.config.DB))
			s.db.Refresh(s.config.DB)
		}
	}
}

// Router

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(onlyGet)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.Get("/", handleIndex)
	r.Get("/index.html", handleIndex)
	r.With(limit(s.limiter)).Get("/api/lookup", handleLookup(s.db))

	return r
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(indexHTML); err != nil {
		slog.Error("failed to write index", slog.Any("err", err))
	}
}

func handleLookup(db *manuf.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("mac")
		if q == "" {
			writeJSON(w, http.StatusBadRequest, errorValue("missing mac param"))
			return
		}

		res := db.Lookup(q)
		v := ResultValue(res)
		if res.Found {
			v = v.With(jsonv.F("db", jsonv.String(db.Path())))
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// Middleware

func onlyGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				writeJSON(w, http.StatusTooManyRequests, errorValue("rate limited"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helpers

func errorValue(msg string) jsonv.Value {
	return jsonv.Object(
		jsonv.F("found", jsonv.Bool(false)),
		jsonv.F("error", jsonv.String(msg)),
	)
}

func writeJSON(w http.ResponseWriter, code int, v jsonv.Value) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(jsonv.Serialize(v)); err != nil {
		slog.Error("failed to write response", slog.Any("err", err))
	}
}
