package handler

import (
	"net/http"

	crmapp "github.com/bizconsole/backend/internal/application/crm"
	"github.com/bizconsole/backend/internal/application/export"
	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CRMHandler serves the CRM mock API under /api/v1/crm
type CRMHandler struct {
	BaseHandler
	services *crmapp.Services
	exporter *export.Exporter
}

// NewCRMHandler creates a new CRMHandler. A nil exporter disables the export endpoints.
func NewCRMHandler(services *crmapp.Services, exporter *export.Exporter) *CRMHandler {
	return &CRMHandler{services: services, exporter: exporter}
}

// Dashboard returns the CRM summary
func (h *CRMHandler) Dashboard(c *gin.Context) {
	summary, err := h.services.Dashboard.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Export writes the filtered list of one CRM entity as CSV
func (h *CRMHandler) Export(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.exporter == nil {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Export is not configured")
			return
		}
		ctx := c.Request.Context()
		q := listQuery(c)

		var (
			res *export.Result
			err error
		)
		switch entity {
		case "customers":
			res, err = export.Run[crm.Customer](ctx, h.exporter, "crm", entity, h.services.Customers.List, q)
		case "leads":
			res, err = export.Run[crm.Lead](ctx, h.exporter, "crm", entity, h.services.Leads.List, q)
		case "opportunities":
			res, err = export.Run[crm.Opportunity](ctx, h.exporter, "crm", entity, h.services.Opportunities.List, q)
		case "activities":
			res, err = export.Run[crm.Activity](ctx, h.exporter, "crm", entity, h.services.Activities.List, q)
		default:
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Unknown entity "+entity)
			return
		}
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, res)
	}
}
