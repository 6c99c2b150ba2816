package handler

import (
	"net/http"

	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/events"
	"github.com/spacehub-dev/operating-schedule/backend/internal/utils"
)

// GetLocationSchedule returns the seven rows the weekly form starts from, defaults included.
func (h *Handler) GetLocationSchedule(w http.ResponseWriter, r *http.Request) {
	l := r.Context().Value(LocationCtx).(*domain.Location)

	week, err := h.store.GetLocationSchedule(r.Context(), l.PartnerID, l.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule fetched", week)
}

func (h *Handler) ReplaceLocationSchedule(w http.ResponseWriter, r *http.Request) {
	l := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Entries []utils.ScheduleRow `json:"entries" validate:"required,len=7,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entries, err := utils.ScheduleEntries(domain.LocationSchedule(l.ID), req.Entries)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.store.ReplaceLocationSchedule(r.Context(), l.PartnerID, l.ID, entries); err != nil {
		h.storeError(w, r, err, "location not found")
		return
	}

	h.publish(r, events.LocationScheduleReplaced, entries)
	h.successResponse(w, r, "schedule saved", entries)
}

// GetResourceSchedule returns the stored override next to the week actually in force.
func (h *Handler) GetResourceSchedule(w http.ResponseWriter, r *http.Request) {
	res := r.Context().Value(ResourceCtx).(*domain.Resource)

	override, err := h.store.GetResourceScheduleOverride(r.Context(), res.PartnerID, res.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	effective, err := h.resolver.EffectiveWeek(r.Context(), *res)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule fetched", map[string]any{
		"override":  override,
		"effective": effective,
	})
}

func (h *Handler) ReplaceResourceSchedule(w http.ResponseWriter, r *http.Request) {
	res := r.Context().Value(ResourceCtx).(*domain.Resource)

	var req struct {
		Entries []utils.ScheduleRow `json:"entries" validate:"max=7,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entries, err := utils.ScheduleEntries(domain.ResourceSchedule(res.ID), req.Entries)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.store.ReplaceResourceSchedule(r.Context(), res.PartnerID, res.ID, entries); err != nil {
		h.storeError(w, r, err, "resource not found")
		return
	}

	h.publish(r, events.ResourceScheduleReplaced, entries)
	h.successResponse(w, r, "schedule saved", entries)
}
