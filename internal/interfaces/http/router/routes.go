package router

import (
	"github.com/bizconsole/backend/internal/domain/crm"
	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/interfaces/http/handler"
)

// CRMRoutes mounts the CRM mock API
func CRMRoutes(h *handler.CRMHandler) *DomainGroup {
	g := NewDomainGroup("crm", "/crm")
	g.GET("/dashboard", h.Dashboard)

	customers := g.Group("customers", "/customers")
	customers.GET("", h.ListCustomers).
		POST("", h.CreateCustomer).
		GET("/export", h.Export("customers")).
		GET("/:id", h.GetCustomer).
		PATCH("/:id", h.UpdateCustomer).
		DELETE("/:id", h.DeleteCustomer).
		POST("/:id/status", h.ChangeCustomerStatus).
		GET("/:id/activities", h.RelatedActivities(crm.RelatedCustomer))

	leads := g.Group("leads", "/leads")
	leads.GET("", h.ListLeads).
		POST("", h.CreateLead).
		GET("/export", h.Export("leads")).
		GET("/:id", h.GetLead).
		PATCH("/:id", h.UpdateLead).
		DELETE("/:id", h.DeleteLead).
		POST("/:id/status", h.ChangeLeadStatus).
		GET("/:id/next-statuses", h.SuggestedLeadStatuses).
		POST("/:id/convert", h.ConvertLead).
		GET("/:id/activities", h.RelatedActivities(crm.RelatedLead))

	opportunities := g.Group("opportunities", "/opportunities")
	opportunities.GET("", h.ListOpportunities).
		POST("", h.CreateOpportunity).
		GET("/export", h.Export("opportunities")).
		GET("/:id", h.GetOpportunity).
		PATCH("/:id", h.UpdateOpportunity).
		DELETE("/:id", h.DeleteOpportunity).
		POST("/:id/stage", h.ChangeOpportunityStage).
		GET("/:id/activities", h.RelatedActivities(crm.RelatedOpportunity))

	activities := g.Group("activities", "/activities")
	activities.GET("", h.ListActivities).
		POST("", h.CreateActivity).
		GET("/export", h.Export("activities")).
		GET("/:id", h.GetActivity).
		PATCH("/:id", h.UpdateActivity).
		DELETE("/:id", h.DeleteActivity).
		POST("/:id/complete", h.CompleteActivity).
		POST("/:id/cancel", h.CancelActivity)

	return g
}

// LogisticsRoutes mounts one group per logistics resource plus the order
// line and low-stock endpoints
func LogisticsRoutes(h *handler.LogisticsHandler) []*DomainGroup {
	var groups []*DomainGroup
	for _, r := range h.Resources() {
		g := NewDomainGroup(r.Name, "/"+r.Name)
		g.GET("/search", r.Search).
			GET("/search/:id", r.Get).
			POST("/create", r.Create).
			PATCH("/update/:id", r.Update).
			DELETE("/delete/:id", r.Delete).
			GET("/export", r.Export)

		switch r.Name {
		case logistics.ResourceOrders:
			g.GET("/search/:id/items", h.OrderItems).
				POST("/:id/items", h.AddOrderItem).
				PATCH("/:id/items/:itemId", h.UpdateOrderItem).
				DELETE("/:id/items/:itemId", h.RemoveOrderItem)
		case logistics.ResourceInventoryItems:
			g.GET("/low-stock", h.LowStock)
		}
		groups = append(groups, g)
	}
	return groups
}

// AuthRoutes mounts login, logout and the current user
func AuthRoutes(h *handler.AuthHandler) *DomainGroup {
	return NewDomainGroup("auth", "/auth").
		POST("/login", h.Login).
		POST("/logout", h.Logout).
		GET("/me", h.Me)
}

// SystemRoutes mounts build information
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.Info)
}
