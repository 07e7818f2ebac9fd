package handler

import (
	"net/http"

	crmapp "github.com/bizconsole/backend/internal/application/crm"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ListActivities returns a page of activities
func (h *CRMHandler) ListActivities(c *gin.Context) {
	page, err := h.services.Activities.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetActivity returns one activity
func (h *CRMHandler) GetActivity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	activity, err := h.services.Activities.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// CreateActivity creates a planned activity
func (h *CRMHandler) CreateActivity(c *gin.Context) {
	var req crmapp.CreateActivityRequest
	if !bindJSON(c, h, &req) {
		return
	}
	activity, err := h.services.Activities.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, activity)
}

// UpdateActivity applies a partial update
func (h *CRMHandler) UpdateActivity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.UpdateActivityRequest
	if !bindJSON(c, h, &req) {
		return
	}
	activity, err := h.services.Activities.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// CompleteActivity marks an activity done
func (h *CRMHandler) CompleteActivity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.CompleteActivityRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h, &req) {
		return
	}
	activity, err := h.services.Activities.Complete(c.Request.Context(), id, req.Outcome)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// CancelActivity calls an activity off
func (h *CRMHandler) CancelActivity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	activity, err := h.services.Activities.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// DeleteActivity removes an activity
func (h *CRMHandler) DeleteActivity(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	if err := h.services.Activities.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
