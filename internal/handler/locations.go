package handler

import (
	"net/http"

	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/utils"
)

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.ListLocations(r.Context(), partnerFrom(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "locations fetched", locations)
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required,max=120"`
		Address string `json:"address" validate:"max=255"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	l := &domain.Location{
		PartnerID: partnerFrom(r),
		Name:      req.Name,
		Address:   req.Address,
	}
	if err := h.store.CreateLocation(r.Context(), l); err != nil {
		h.storeError(w, r, err, "location not found")
		return
	}

	h.successResponse(w, r, "location created", l)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	l := r.Context().Value(LocationCtx).(*domain.Location)

	h.successResponse(w, r, "location fetched", l)
}

func (h *Handler) ListLocationResources(w http.ResponseWriter, r *http.Request) {
	l := r.Context().Value(LocationCtx).(*domain.Location)

	resources, err := h.store.ListResourcesByLocation(r.Context(), l.PartnerID, l.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "resources fetched", resources)
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	l := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Name         string `json:"name" validate:"required,max=120"`
		ResourceType string `json:"resourceType" validate:"required,max=64"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res := &domain.Resource{
		PartnerID:  l.PartnerID,
		LocationID: l.ID,
		Name:       req.Name,
		Type:       req.ResourceType,
	}
	if err := h.store.CreateResource(r.Context(), res); err != nil {
		h.storeError(w, r, err, "location not found")
		return
	}

	h.successResponse(w, r, "resource created", res)
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res := r.Context().Value(ResourceCtx).(*domain.Resource)

	h.successResponse(w, r, "resource fetched", res)
}

func (h *Handler) ListResourceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.ListResourceTypes(r.Context(), partnerFrom(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "resource types fetched", types)
}

// CreateResourceType registers a type. Without an explicit code one is derived from the label.
func (h *Handler) CreateResourceType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code" validate:"omitempty,max=64"`
		Label string `json:"label" validate:"required,max=120"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	code := req.Code
	if code == "" {
		code = utils.ResourceTypeCode(req.Label)
	}
	if code == "" {
		h.errorResponse(w, r, "cannot derive a code from the label, please provide one")
		return
	}

	rt := &domain.ResourceType{
		PartnerID: partnerFrom(r),
		Code:      code,
		Label:     req.Label,
	}
	if err := h.store.UpsertResourceType(r.Context(), rt); err != nil {
		h.storeError(w, r, err, "resource type not found")
		return
	}

	h.successResponse(w, r, "resource type saved", rt)
}
