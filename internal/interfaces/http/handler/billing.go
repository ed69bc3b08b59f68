package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/ecobat/backend/internal/application/billing"
)

// BillingHandler handles billing profile and invoice settings endpoints
type BillingHandler struct {
	BaseHandler
	billingService *appbilling.BillingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billingService *appbilling.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// RegisterRoutes registers billing routes on the given router group
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/billing")
	{
		group.GET("/profile", h.GetProfile)
		group.PUT("/profile", h.UpdateProfile)
		group.GET("/settings", h.GetSettings)
		group.PUT("/settings", h.UpdateSettings)
		group.GET("/readiness", h.GetReadiness)
	}
}

// resolveCompanyID returns the company the request operates on. Company
// tokens are bound to their own company, admins may pass ?company_id=.
func (h *BillingHandler) resolveCompanyID(c *gin.Context) (uuid.UUID, bool) {
	if isAdmin(c) {
		if raw := c.Query("company_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.BadRequest(c, "Invalid company ID")
				return uuid.Nil, false
			}
			return id, true
		}
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company identity")
		return uuid.Nil, false
	}
	return companyID, true
}

// GetProfile godoc
// @Summary      Get the billing profile
// @Description  Retrieve the billing profile of the caller's company. Operator tokens may pass company_id.
// @Tags         billing
// @Produce      json
// @Param        company_id query string false "Company ID, operator tokens only" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/profile [get]
func (h *BillingHandler) GetProfile(c *gin.Context) {
	companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	response, err := h.billingService.GetProfile(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// UpdateProfile godoc
// @Summary      Update the billing profile
// @Description  Replace the billing profile of the caller's company
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        company_id query string false "Company ID, operator tokens only" format(uuid)
// @Param        request body appbilling.UpdateProfileRequest true "Billing profile"
// @Success      200 {object} dto.Response{data=appbilling.ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/profile [put]
func (h *BillingHandler) UpdateProfile(c *gin.Context) {
	companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	var req appbilling.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.billingService.UpdateProfile(c.Request.Context(), companyID, req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetSettings godoc
// @Summary      Get invoice settings
// @Description  Retrieve the invoice numbering and payment settings of the caller's company, creating defaults on first read
// @Tags         billing
// @Produce      json
// @Param        company_id query string false "Company ID, operator tokens only" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.SettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/settings [get]
func (h *BillingHandler) GetSettings(c *gin.Context) {
	companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	response, err := h.billingService.GetSettings(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// UpdateSettings godoc
// @Summary      Update invoice settings
// @Description  Apply a partial update to invoice numbering and payment settings. The next invoice number can only grow.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        company_id query string false "Company ID, operator tokens only" format(uuid)
// @Param        request body appbilling.UpdateSettingsRequest true "Settings update"
// @Success      200 {object} dto.Response{data=appbilling.SettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/settings [put]
func (h *BillingHandler) UpdateSettings(c *gin.Context) {
	companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	var req appbilling.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.billingService.UpdateSettings(c.Request.Context(), companyID, req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ReadinessResponse reports whether the company may issue invoices
type ReadinessResponse struct {
	Ready   bool     `json:"ready"`
	Missing []string `json:"missing,omitempty"`
}

// GetReadiness godoc
// @Summary      Check billing readiness
// @Description  Report whether batch validation would pass the billing gate for the company, listing the missing prerequisites
// @Tags         billing
// @Produce      json
// @Param        company_id query string false "Company ID, operator tokens only" format(uuid)
// @Success      200 {object} dto.Response{data=ReadinessResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/readiness [get]
func (h *BillingHandler) GetReadiness(c *gin.Context) {
	companyID, ok := h.resolveCompanyID(c)
	if !ok {
		return
	}

	missing := h.billingService.CheckReadiness(c.Request.Context(), companyID)
	h.Success(c, ReadinessResponse{
		Ready:   len(missing) == 0,
		Missing: missing,
	})
}
