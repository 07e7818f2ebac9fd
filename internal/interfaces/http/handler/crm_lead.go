package handler

import (
	"net/http"

	crmapp "github.com/bizconsole/backend/internal/application/crm"
	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ListLeads returns a page of leads
func (h *CRMHandler) ListLeads(c *gin.Context) {
	page, err := h.services.Leads.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetLead returns one lead
func (h *CRMHandler) GetLead(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	lead, err := h.services.Leads.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// CreateLead creates a lead in status new
func (h *CRMHandler) CreateLead(c *gin.Context) {
	var req crmapp.CreateLeadRequest
	if !bindJSON(c, h, &req) {
		return
	}
	lead, err := h.services.Leads.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lead)
}

// UpdateLead applies a partial update
func (h *CRMHandler) UpdateLead(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.UpdateLeadRequest
	if !bindJSON(c, h, &req) {
		return
	}
	lead, err := h.services.Leads.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// ChangeLeadStatus sets any valid status
func (h *CRMHandler) ChangeLeadStatus(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.ChangeLeadStatusRequest
	if !bindJSON(c, h, &req) {
		return
	}
	lead, err := h.services.Leads.ChangeStatus(c.Request.Context(), id, crm.LeadStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// SuggestedLeadStatuses returns the conventional next statuses of a lead
func (h *CRMHandler) SuggestedLeadStatuses(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	statuses, err := h.services.Leads.SuggestedNextStatuses(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statuses)
}

// ConvertLead turns a lead into a customer and optionally an opportunity
func (h *CRMHandler) ConvertLead(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.ConvertLeadRequest
	// an empty body converts with defaults
	if c.Request.ContentLength != 0 && !bindJSON(c, h, &req) {
		return
	}
	result, err := h.services.Leads.Convert(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteLead removes a lead
func (h *CRMHandler) DeleteLead(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	if err := h.services.Leads.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
