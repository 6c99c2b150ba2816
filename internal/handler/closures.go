package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/events"
	"github.com/spacehub-dev/operating-schedule/backend/internal/utils"
)

// closureRequest is the closure editor form. Which target fields are expected depends on scope.
type closureRequest struct {
	Scope        string     `json:"scope" validate:"required,oneof=location resource_type resource"`
	LocationID   *uuid.UUID `json:"locationId" validate:"required_if=Scope location,required_if=Scope resource_type"`
	ResourceType string     `json:"resourceType" validate:"required_if=Scope resource_type,max=64"`
	ResourceID   *uuid.UUID `json:"resourceId" validate:"required_if=Scope resource"`
	StartDate    string     `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string     `json:"endDate" validate:"required,datetime=2006-01-02"`
	ClosureType  string     `json:"closureType" validate:"required,oneof=holiday maintenance special_event emergency custom"`
	IsRecurring  bool       `json:"isRecurring"`
	Reason       string     `json:"reason" validate:"max=500"`
}

func (h *Handler) readClosure(r *http.Request) (*domain.ClosureEntry, error) {
	var req closureRequest
	if err := h.readJSON(r, &req); err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}

	target, err := utils.ClosureTarget(req.Scope, req.LocationID, req.ResourceType, req.ResourceID)
	if err != nil {
		return nil, err
	}
	start, end, err := utils.DateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	return &domain.ClosureEntry{
		PartnerID:   partnerFrom(r),
		Target:      target,
		StartDate:   start,
		EndDate:     end,
		Type:        domain.ClosureType(req.ClosureType),
		IsRecurring: req.IsRecurring,
		Reason:      req.Reason,
	}, nil
}

func (h *Handler) ListLocationClosures(w http.ResponseWriter, r *http.Request) {
	l := r.Context().Value(LocationCtx).(*domain.Location)

	closures, err := h.store.ListClosuresForLocation(r.Context(), l.PartnerID, l.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "closures fetched", closures)
}

func (h *Handler) CreateClosure(w http.ResponseWriter, r *http.Request) {
	c, err := h.readClosure(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.store.CreateClosure(r.Context(), c); err != nil {
		h.storeError(w, r, err, "closure target not found")
		return
	}

	h.invalidateClosures(r)
	h.publish(r, events.ClosureCreated, c)
	h.successResponse(w, r, "closure created", c)
}

func (h *Handler) GetClosure(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ClosureCtx).(*domain.ClosureEntry)

	h.successResponse(w, r, "closure fetched", c)
}

func (h *Handler) UpdateClosure(w http.ResponseWriter, r *http.Request) {
	existing := r.Context().Value(ClosureCtx).(*domain.ClosureEntry)

	c, err := h.readClosure(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	c.ID = existing.ID

	if err := h.store.UpdateClosure(r.Context(), c); err != nil {
		h.storeError(w, r, err, "closure not found")
		return
	}

	h.invalidateClosures(r)
	h.publish(r, events.ClosureUpdated, c)
	h.successResponse(w, r, "closure updated", c)
}

func (h *Handler) DeleteClosure(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(ClosureCtx).(*domain.ClosureEntry)

	if err := h.store.DeleteClosure(r.Context(), c.PartnerID, c.ID); err != nil {
		h.storeError(w, r, err, "closure not found")
		return
	}

	h.invalidateClosures(r)
	h.publish(r, events.ClosureDeleted, map[string]any{"id": c.ID})
	h.successResponse(w, r, "closure deleted", nil)
}
