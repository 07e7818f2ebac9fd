package handler

import (
	"net/http"

	crmapp "github.com/bizconsole/backend/internal/application/crm"
	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ListCustomers returns a page of customers
func (h *CRMHandler) ListCustomers(c *gin.Context) {
	page, err := h.services.Customers.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetCustomer returns one customer
func (h *CRMHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	customer, err := h.services.Customers.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// CreateCustomer creates a customer
func (h *CRMHandler) CreateCustomer(c *gin.Context) {
	var req crmapp.CreateCustomerRequest
	if !bindJSON(c, h, &req) {
		return
	}
	customer, err := h.services.Customers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// UpdateCustomer applies a partial update
func (h *CRMHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.UpdateCustomerRequest
	if !bindJSON(c, h, &req) {
		return
	}
	customer, err := h.services.Customers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// ChangeCustomerStatus moves a customer to another status
func (h *CRMHandler) ChangeCustomerStatus(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	var req crmapp.ChangeCustomerStatusRequest
	if !bindJSON(c, h, &req) {
		return
	}
	customer, err := h.services.Customers.ChangeStatus(c.Request.Context(), id, crm.CustomerStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// DeleteCustomer removes a customer
func (h *CRMHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, h, "id")
	if !ok {
		return
	}
	if err := h.services.Customers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RelatedActivities lists the activities attached to a customer, lead or opportunity
func (h *CRMHandler) RelatedActivities(relatedType crm.RelatedType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, h, "id")
		if !ok {
			return
		}
		activities, err := h.services.Activities.ListForRelated(c.Request.Context(), relatedType, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if activities == nil {
			activities = []crm.Activity{}
		}
		h.Success(c, activities)
	}
}
