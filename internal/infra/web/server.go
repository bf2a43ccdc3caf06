package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"babsy-voucher-platform/internal/domain/model"
	red "babsy-voucher-platform/internal/infra/redis"
	"babsy-voucher-platform/internal/usecase"
)

// RateLimiter is the slice of the redis limiter the server needs; tests plug
// in a stub.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	voucherUC usecase.VoucherUseCase
	statsUC   usecase.StatsUseCase
	partnerUC usecase.PartnerUseCase

	auth          *AuthManager
	limiter       RateLimiter
	validateLimit int

	log *zerolog.Logger
}

func NewServer(
	voucherUC usecase.VoucherUseCase,
	statsUC usecase.StatsUseCase,
	partnerUC usecase.PartnerUseCase,
	auth *AuthManager,
	limiter RateLimiter,
	validateLimit int,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		voucherUC:     voucherUC,
		statsUC:       statsUC,
		partnerUC:     partnerUC,
		auth:          auth,
		limiter:       limiter,
		validateLimit: validateLimit,
		log:           logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The partner directory listing is public; everything else needs a
		// verified identity.
		r.Get("/partners", s.listPartners)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/vouchers", func(r chi.Router) {
				r.Post("/", s.requireType(s.issueVoucher, model.UserTypeMember, model.UserTypeEmployee))
				r.Get("/", s.requireType(s.listVouchers, model.UserTypeMember))
				r.Post("/redeem-by-code", s.requireType(s.redeemByCode, model.UserTypePartner))
				r.With(s.validateRateLimit).Post("/validate", s.requireType(s.validateQR, model.UserTypePartner))
				r.Get("/stats/overview", s.requireType(s.statsOverview, model.UserTypePartner, model.UserTypeEmployee))
				r.Get("/{id}", s.getVoucher)
				r.Post("/{id}/redeem", s.requireType(s.redeemVoucher, model.UserTypePartner))
			})

			// Registered by full path rather than a /partners subrouter:
			// mounting here would shadow the public GET /partners above.
			r.Get("/partners/{id}", s.getPartner)
			r.Put("/partners/{id}", s.requireType(s.updatePartner, model.UserTypeEmployee))
			r.Get("/partners/{id}/stats", s.requireType(s.partnerStats, model.UserTypeEmployee))
		})
	})

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(identityInto(r.Context(), id)))
	})
}

// requireType restricts a handler to the given caller types.
func (s *Server) requireType(h http.HandlerFunc, types ...model.UserType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r.Context())
		if id == nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		for _, t := range types {
			if id.UserType == t {
				h(w, r)
				return
			}
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// validateRateLimit caps QR validation calls per partner. Limiter outages
// fail open: a broken redis must not take the scan path down with it.
func (s *Server) validateRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r.Context())
		if id != nil && id.PartnerID != "" && s.limiter != nil {
			ok, err := s.limiter.Allow(r.Context(), red.PartnerValidateKey(id.PartnerID), s.validateLimit, time.Minute)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
