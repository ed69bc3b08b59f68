package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintake "github.com/ecobat/backend/internal/application/intake"
	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/interfaces/http/dto"
)

// BatchHandler handles battery batch API endpoints
type BatchHandler struct {
	BaseHandler
	batchService      *appintake.BatchService
	importService     *appintake.ManifestImportService
	validationService *appinvoicing.ValidationService
	invoiceService    *appinvoicing.InvoiceService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batchService *appintake.BatchService, importService *appintake.ManifestImportService, validationService *appinvoicing.ValidationService, invoiceService *appinvoicing.InvoiceService) *BatchHandler {
	return &BatchHandler{
		batchService:      batchService,
		importService:     importService,
		validationService: validationService,
		invoiceService:    invoiceService,
	}
}

// RegisterRoutes registers batch routes on the given router group
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/batches")
	{
		group.POST("", h.CreateBatch)
		group.POST("/import", h.ImportBatchManifest)
		group.GET("", h.ListBatches)
		group.GET("/:id", h.GetBatch)
		group.PUT("/:id", h.UpdateBatch)
		group.DELETE("/:id", h.DeleteBatch)
		group.POST("/:id/validate", h.ValidateBatch)
		group.GET("/:id/invoice", h.GetBatchInvoice)
	}
}

// CreateBatch godoc
// @Summary      Register a batch
// @Description  Register a new pending battery batch with its valued manifest
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        request body appintake.CreateBatchRequest true "Batch registration request"
// @Success      201 {object} dto.Response{data=appintake.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches [post]
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req appintake.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// Company users can only register batches for their own company
	if !isAdmin(c) {
		companyID, err := getCompanyID(c)
		if err != nil {
			h.Unauthorized(c, "Missing company identity")
			return
		}
		req.CompanyID = companyID
	}

	response, err := h.batchService.CreateBatch(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// ImportBatchManifest godoc
// @Summary      Import a CSV manifest
// @Description  Register a pending batch from an uploaded CSV manifest. Row-level problems are reported as validation details and no batch is created.
// @Tags         batches
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Manifest CSV file"
// @Param        kind formData string true "Batch kind" Enums(COLLECTION, RECYCLING)
// @Param        company_name formData string true "Company display name"
// @Param        company_id formData string false "Company ID, operator tokens only" format(uuid)
// @Param        pickup_date formData string false "Pickup date (YYYY-MM-DD)"
// @Param        notes formData string false "Free-form notes"
// @Success      201 {object} dto.Response{data=appintake.ManifestImportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches/import [post]
func (h *BatchHandler) ImportBatchManifest(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing manifest file upload")
		return
	}

	kind := intake.BatchKind(c.PostForm("kind"))
	if !kind.IsValid() {
		h.BadRequest(c, "Invalid or missing batch kind")
		return
	}

	companyName := c.PostForm("company_name")
	if companyName == "" {
		h.BadRequest(c, "Missing company_name")
		return
	}

	var companyID uuid.UUID
	if isAdmin(c) {
		companyID, err = uuid.Parse(c.PostForm("company_id"))
		if err != nil {
			h.BadRequest(c, "Invalid or missing company_id")
			return
		}
	} else {
		companyID, err = getCompanyID(c)
		if err != nil {
			h.Unauthorized(c, "Missing company identity")
			return
		}
	}

	var pickupDate time.Time
	if raw := c.PostForm("pickup_date"); raw != "" {
		pickupDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid pickup_date, expected YYYY-MM-DD")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Manifest file could not be opened")
		return
	}
	defer file.Close()

	response, err := h.importService.ImportManifest(c.Request.Context(), file, appintake.ManifestImportRequest{
		Kind:        kind,
		CompanyID:   companyID,
		CompanyName: companyName,
		PickupDate:  pickupDate,
		Notes:       c.PostForm("notes"),
	}, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if len(response.Errors) > 0 {
		details := make([]dto.ValidationDetail, 0, len(response.Errors))
		for _, rowErr := range response.Errors {
			details = append(details, dto.ValidationDetail{
				Field:   fmt.Sprintf("row %d, %s", rowErr.Row, rowErr.Column),
				Message: rowErr.Message,
			})
		}
		code := dto.NormalizeErrorCode("INVALID_MANIFEST")
		resp := dto.NewErrorResponseWithRequestID(code, "Manifest file failed validation", getRequestID(c))
		resp.Error.Details = details
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	h.Created(c, response)
}

// ListBatches godoc
// @Summary      List batches
// @Description  Retrieve a paginated list of batches. Company tokens only see their own.
// @Tags         batches
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Batch status filter" Enums(PENDING, VALIDATED)
// @Param        kind query string false "Batch kind filter" Enums(COLLECTION, RECYCLING)
// @Param        search query string false "Company name search"
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]appintake.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches [get]
func (h *BatchHandler) ListBatches(c *gin.Context) {
	filter := appintake.BatchListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	// Company scope overrides any client-supplied filter
	if !isAdmin(c) {
		companyID, err := getCompanyID(c)
		if err != nil {
			h.Unauthorized(c, "Missing company identity")
			return
		}
		filter.CompanyID = &companyID
		filter.Status = nil
	}

	page, err := h.batchService.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetBatch godoc
// @Summary      Get a batch
// @Description  Retrieve a batch by its ID
// @Tags         batches
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=appintake.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches/{id} [get]
func (h *BatchHandler) GetBatch(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	response, err := h.batchService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.inScope(c, response) {
		return
	}

	h.Success(c, response)
}

// UpdateBatch godoc
// @Summary      Update a pending batch
// @Description  Change the manifest or notes of a pending batch. Validated batches are immutable.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body appintake.UpdateBatchRequest true "Batch update request"
// @Success      200 {object} dto.Response{data=appintake.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches/{id} [put]
func (h *BatchHandler) UpdateBatch(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	var req appintake.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	existing, err := h.batchService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.inScope(c, existing) {
		return
	}

	response, err := h.batchService.UpdateBatch(c.Request.Context(), id, req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// DeleteBatch godoc
// @Summary      Delete a pending batch
// @Description  Remove a pending batch. Validated batches cannot be deleted.
// @Tags         batches
// @Param        id path string true "Batch ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches/{id} [delete]
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	existing, err := h.batchService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.inScope(c, existing) {
		return
	}

	if err := h.batchService.DeleteBatch(c.Request.Context(), id, getActorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ValidateBatch godoc
// @Summary      Validate a batch
// @Description  Convert a pending batch into an issued invoice. Only operator tokens may validate; the invoice is issued by the operator's company against the batch company. Repeating the call for an already validated batch returns the existing invoice.
// @Tags         batches
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoicing.ValidationResponse} "Batch already validated"
// @Success      201 {object} dto.Response{data=appinvoicing.ValidationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "Billing prerequisites incomplete"
// @Security     BearerAuth
// @Router       /batches/{id}/validate [post]
func (h *BatchHandler) ValidateBatch(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	if !isAdmin(c) {
		h.Forbidden(c, "Only operator users can validate batches")
		return
	}
	issuerCompanyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Missing company identity")
		return
	}

	response, err := h.validationService.Validate(c.Request.Context(), id, issuerCompanyID, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if response.AlreadyValidated {
		h.Success(c, response)
		return
	}
	h.Created(c, response)
}

// GetBatchInvoice godoc
// @Summary      Get the invoice for a batch
// @Description  Retrieve the invoice issued for a validated batch
// @Tags         batches
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /batches/{id}/invoice [get]
func (h *BatchHandler) GetBatchInvoice(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	existing, err := h.batchService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.inScope(c, existing) {
		return
	}

	response, err := h.invoiceService.GetInvoiceForBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// inScope verifies the batch belongs to the caller's company. Admin tokens
// see everything. A 404 is returned for out-of-scope batches so existence
// is not leaked across companies.
func (h *BatchHandler) inScope(c *gin.Context, batch *appintake.BatchResponse) bool {
	if isAdmin(c) {
		return true
	}
	companyID, err := getCompanyID(c)
	if err != nil || batch.CompanyID != companyID {
		h.NotFound(c, "Batch not found")
		return false
	}
	return true
}
