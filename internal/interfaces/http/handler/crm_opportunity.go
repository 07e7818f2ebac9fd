package handler

import (
	"net/http"

	crmapp "github.com/bizconsole/backend/internal/application/crm"
	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ListOpportunities returns a page of opportunities
func (h *CRMHandler) ListOpportunities(c *gin.Context) {
	page, err := h.services.Opportunities.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetOpportunity returns one opportunity
func (h *CRMHandler) GetOpportunity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	opp, err := h.services.Opportunities.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opp)
}

// CreateOpportunity creates an opportunity for an existing customer
func (h *CRMHandler) CreateOpportunity(c *gin.Context) {
	var req crmapp.CreateOpportunityRequest
	if !bindJSON(c, h, &req) {
		return
	}
	opp, err := h.services.Opportunities.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, opp)
}

// UpdateOpportunity applies a partial update
func (h *CRMHandler) UpdateOpportunity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.UpdateOpportunityRequest
	if !bindJSON(c, h, &req) {
		return
	}
	opp, err := h.services.Opportunities.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opp)
}

// ChangeOpportunityStage moves the deal through the pipeline
func (h *CRMHandler) ChangeOpportunityStage(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.ChangeStageRequest
	if !bindJSON(c, h, &req) {
		return
	}
	opp, err := h.services.Opportunities.ChangeStage(c.Request.Context(), id, crm.OpportunityStage(req.Stage))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opp)
}

// DeleteOpportunity removes an opportunity
func (h *CRMHandler) DeleteOpportunity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	if err := h.services.Opportunities.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
