package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/example/slotbook/internal/application/usecases"
	"github.com/example/slotbook/internal/auth"
	"github.com/example/slotbook/internal/domain/booking"
)

type Server struct {
	Forms    *usecases.FormSessions
	Sessions *SessionManager
	Log      booking.BookingLog
	Logger   *zap.Logger

	AdminPasswordHash string
	Metrics           http.Handler
	SubmitLimiter     *RateLimiter
	RequestTimeout    time.Duration
}

func (s *Server) Routes() http.Handler {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.RequestTimeout))
		r.Get("/availability", s.handleAvailability)
		r.Get("/state", s.handleState)
		r.Put("/selection/date", s.handleSelectDate)
		r.Put("/selection/time", s.handleSelectTime)
		r.Put("/form", s.handleUpdateForm)
		submit := http.Handler(http.HandlerFunc(s.handleSubmit))
		if s.SubmitLimiter != nil {
			submit = s.SubmitLimiter.Limit(submit)
		}
		r.Method(http.MethodPost, "/bookings", submit)
		r.Delete("/session", s.handleResetSession)
	})

	r.With(auth.RequireAdmin(s.AdminPasswordHash)).Get("/admin/bookings", s.handleAdminBookings)

	return r
}

func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
