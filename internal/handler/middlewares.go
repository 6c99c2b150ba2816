package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/events"
	"github.com/spacehub-dev/operating-schedule/backend/internal/metrics"
	"golang.org/x/time/rate"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.ObserveHTTP(r.Method, route, rw.StatusCode, duration)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog would flatten the trace into one line
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// TenantClaims is what a tenant token carries. Issuing tokens happens elsewhere.
type TenantClaims struct {
	PartnerID string `json:"partner_id"`
	jwt.RegisteredClaims
}

func (h *Handler) tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tokenString == "" {
			h.errorResponse(w, r, "missing tenant token")
			return
		}

		claims := &TenantClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, "invalid tenant token")
			return
		}

		partnerID, err := uuid.Parse(claims.PartnerID)
		if err != nil {
			h.errorResponse(w, r, "invalid tenant token")
			return
		}

		ctx := context.WithValue(r.Context(), PartnerCtxKey, partnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func partnerFrom(r *http.Request) uuid.UUID {
	return r.Context().Value(PartnerCtxKey).(uuid.UUID)
}

// partnerLimiters hands out one token bucket per partner.
type partnerLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[uuid.UUID]*rate.Limiter
}

func newPartnerLimiters(rps float64, burst int) *partnerLimiters {
	return &partnerLimiters{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

func (p *partnerLimiters) get(partnerID uuid.UUID) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[partnerID]
	if !ok {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[partnerID] = l
	}
	return l
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiters.get(partnerFrom(r)).Allow() {
			h.tooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) location(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locationID, err := uuid.Parse(chi.URLParam(r, "locationID"))
		if err != nil {
			h.errorResponse(w, r, "invalid location id")
			return
		}

		l, err := h.store.GetLocation(r.Context(), partnerFrom(r), locationID)
		if err != nil {
			h.storeError(w, r, err, "location not found")
			return
		}

		ctx := context.WithValue(r.Context(), LocationCtx, l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) resource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resourceID, err := uuid.Parse(chi.URLParam(r, "resourceID"))
		if err != nil {
			h.errorResponse(w, r, "invalid resource id")
			return
		}

		res, err := h.store.GetResource(r.Context(), partnerFrom(r), resourceID)
		if err != nil {
			h.storeError(w, r, err, "resource not found")
			return
		}

		ctx := context.WithValue(r.Context(), ResourceCtx, res)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) closure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		closureID, err := uuid.Parse(chi.URLParam(r, "closureID"))
		if err != nil {
			h.errorResponse(w, r, "invalid closure id")
			return
		}

		c, err := h.store.GetClosure(r.Context(), partnerFrom(r), closureID)
		if err != nil {
			h.storeError(w, r, err, "closure not found")
			return
		}

		ctx := context.WithValue(r.Context(), ClosureCtx, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// publish reports a committed write. A broker failure never fails the request.
func (h *Handler) publish(r *http.Request, routingKey string, data any) {
	partnerID := partnerFrom(r)
	if err := h.publisher.Publish(r.Context(), events.NewEvent(routingKey, partnerID, data)); err != nil {
		slog.Warn("failed to publish change event", "routing_key", routingKey, "partner", partnerID, "error", err)
	}
}

func (h *Handler) invalidateClosures(r *http.Request) {
	partnerID := partnerFrom(r)
	if err := h.closures.Invalidate(r.Context(), partnerID); err != nil {
		slog.Warn("failed to invalidate closure cache", "partner", partnerID, "error", err)
	}
}
