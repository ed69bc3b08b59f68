package handler

import (
	"github.com/gin-gonic/gin"

	appvaluation "github.com/ecobat/backend/internal/application/valuation"
)

// ValuationHandler handles manifest previews and the published rate table
type ValuationHandler struct {
	BaseHandler
	previewService *appvaluation.PreviewService
}

// NewValuationHandler creates a new ValuationHandler
func NewValuationHandler(previewService *appvaluation.PreviewService) *ValuationHandler {
	return &ValuationHandler{previewService: previewService}
}

// RegisterRoutes registers valuation routes on the given router group
func (h *ValuationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/valuation")
	{
		group.POST("/preview", h.Preview)
		group.GET("/rates", h.GetRateTable)
	}
}

// Preview godoc
// @Summary      Preview a manifest valuation
// @Description  Price a manifest against the published rate table without registering a batch
// @Tags         valuation
// @Accept       json
// @Produce      json
// @Param        request body appvaluation.PreviewRequest true "Manifest to price"
// @Success      200 {object} dto.Response{data=appvaluation.PreviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /valuation/preview [post]
func (h *ValuationHandler) Preview(c *gin.Context) {
	var req appvaluation.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.previewService.Preview(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetRateTable godoc
// @Summary      Get the rate table
// @Description  Retrieve the published battery category tariff
// @Tags         valuation
// @Produce      json
// @Success      200 {object} dto.Response{data=appvaluation.RateTableResponse}
// @Security     BearerAuth
// @Router       /valuation/rates [get]
func (h *ValuationHandler) GetRateTable(c *gin.Context) {
	h.Success(c, h.previewService.RateTable())
}
