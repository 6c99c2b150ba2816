package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacehub-dev/operating-schedule/backend/internal/config"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/events"
	"github.com/spacehub-dev/operating-schedule/backend/internal/resolver"
)

// Store is the persistence the handlers need. Both repository implementations satisfy it.
type Store interface {
	resolver.ScheduleReader
	resolver.ClosureReader

	CreateLocation(ctx context.Context, l *domain.Location) error
	GetLocation(ctx context.Context, partnerID, id uuid.UUID) (*domain.Location, error)
	ListLocations(ctx context.Context, partnerID uuid.UUID) ([]*domain.Location, error)

	UpsertResourceType(ctx context.Context, rt *domain.ResourceType) error
	ListResourceTypes(ctx context.Context, partnerID uuid.UUID) ([]*domain.ResourceType, error)
	CreateResource(ctx context.Context, res *domain.Resource) error
	GetResource(ctx context.Context, partnerID, id uuid.UUID) (*domain.Resource, error)
	ListResourcesByLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]*domain.Resource, error)

	ReplaceLocationSchedule(ctx context.Context, partnerID, locationID uuid.UUID, entries []domain.ScheduleEntry) error
	ReplaceResourceSchedule(ctx context.Context, partnerID, resourceID uuid.UUID, entries []domain.ScheduleEntry) error

	GetClosure(ctx context.Context, partnerID, id uuid.UUID) (*domain.ClosureEntry, error)
	CreateClosure(ctx context.Context, c *domain.ClosureEntry) error
	UpdateClosure(ctx context.Context, c *domain.ClosureEntry) error
	DeleteClosure(ctx context.Context, partnerID, id uuid.UUID) error
}

// ClosureInvalidator drops cached closure lists after a write.
type ClosureInvalidator interface {
	Invalidate(ctx context.Context, partnerID uuid.UUID) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      Store
	resolver   *resolver.Resolver
	translator ut.Translator
	publisher  events.Publisher
	closures   ClosureInvalidator
	limiters   *partnerLimiters

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store Store, res *resolver.Resolver, pub events.Publisher, closures ClosureInvalidator) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerTimeOfDay(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		resolver:   res,
		translator: trans,
		publisher:  pub,
		closures:   closures,
		limiters:   newPartnerLimiters(cfg.RateLimit.RPS, cfg.RateLimit.Burst),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Handle(h.config.Metrics.Path, promhttp.Handler())

	// everything below is scoped to the partner named by the bearer token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.tenant)

		r.Route("/resource-types", func(r chi.Router) {
			r.Get("/", h.ListResourceTypes)
			r.Post("/", h.CreateResourceType)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.ListLocations)
			r.Post("/", h.CreateLocation)
			r.Route("/{locationID}", func(r chi.Router) {
				r.Use(h.location)
				r.Get("/", h.GetLocation)
				r.Get("/schedule", h.GetLocationSchedule)
				r.Put("/schedule", h.ReplaceLocationSchedule)
				r.Get("/resources", h.ListLocationResources)
				r.Post("/resources", h.CreateResource)
				r.Get("/closures", h.ListLocationClosures)
			})
		})

		r.Route("/resources/{resourceID}", func(r chi.Router) {
			r.Use(h.resource)
			r.Get("/", h.GetResource)
			r.Get("/schedule", h.GetResourceSchedule)
			r.Put("/schedule", h.ReplaceResourceSchedule)
			r.With(h.rateLimit).Get("/availability", h.GetAvailability)
			r.With(h.rateLimit).Get("/calendar", h.GetCalendar)
		})

		r.Route("/closures", func(r chi.Router) {
			r.Post("/", h.CreateClosure)
			r.Route("/{closureID}", func(r chi.Router) {
				r.Use(h.closure)
				r.Get("/", h.GetClosure)
				r.Put("/", h.UpdateClosure)
				r.Delete("/", h.DeleteClosure)
			})
		})
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}

func registerTimeOfDay(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("timeofday", trans,
		func(ut ut.Translator) error {
			return ut.Add("timeofday", "{0} must be a time of day like 09:00", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("timeofday", fe.Field())
			return t
		},
	)
}
