package handler

import (
	"errors"
	"net/http"

	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/resolver"
	"github.com/spacehub-dev/operating-schedule/backend/internal/utils"
)

// GetAvailability answers ?at=2025-01-02T10:00 for a timed booking or ?date=2025-01-02
// for a whole day. Times are venue-local.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	res := r.Context().Value(ResourceCtx).(*domain.Resource)

	var (
		at  domain.Instant
		err error
	)
	query := r.URL.Query()
	switch {
	case query.Get("at") != "":
		at, err = domain.ParseInstant(query.Get("at"))
	case query.Get("date") != "":
		var d domain.Date
		d, err = domain.ParseDate(query.Get("date"))
		at = domain.OnDate(d)
	default:
		h.errorResponse(w, r, "either at or date is required")
		return
	}
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	verdict, err := h.resolver.IsOpen(r.Context(), *res, at)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "availability resolved", map[string]any{
		"resourceId": res.ID,
		"at":         at.String(),
		"open":       verdict.Open,
		"reason":     verdict.Reason,
		"basis":      verdict.Basis,
		"hours":      verdict.Hours,
	})
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	res := r.Context().Value(ResourceCtx).(*domain.Resource)

	from, to, err := utils.DateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	days, err := h.resolver.Calendar(r.Context(), *res, from, to)
	if err != nil {
		if errors.Is(err, resolver.ErrInvalidRange) {
			h.badRequest(w, r, err)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "calendar resolved", days)
}
