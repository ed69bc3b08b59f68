package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
)

// InvoiceHandler handles invoice API endpoints. Invoices are immutable once
// issued, only read operations exist here.
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appinvoicing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers invoice routes on the given router group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/invoices")
	{
		group.GET("", h.ListInvoices)
		group.GET("/:id", h.GetInvoice)
		group.GET("/:id/pdf", h.DownloadPDF)
	}
}

// ListInvoices godoc
// @Summary      List invoices
// @Description  Retrieve a paginated list of invoices. Company tokens only see invoices they are a party to.
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        company_id query string false "Party company filter, operator tokens only" format(uuid)
// @Param        year query int false "Issue year filter"
// @Param        search query string false "Invoice number search"
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]appinvoicing.InvoiceListItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter := appinvoicing.InvoiceListFilter{Page: 1, PageSize: 20}
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
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetInvoice godoc
// @Summary      Get an invoice
// @Description  Retrieve an invoice with its line items and issuer snapshot
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	response, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.inScope(c, response) {
		return
	}

	h.Success(c, response)
}

// DownloadPDF godoc
// @Summary      Download the invoice PDF
// @Description  Stream the rendered invoice document as a file attachment
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo} "Unknown invoice or document not rendered yet"
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	response, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.inScope(c, response) {
		return
	}

	path, err := h.invoiceService.GetPDFPath(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(path, filepath.Base(path))
}

// inScope verifies the caller's company is a party to the invoice, as issuer
// or as counterparty. A 404 is returned for out-of-scope invoices so
// existence is not leaked.
func (h *InvoiceHandler) inScope(c *gin.Context, invoice *appinvoicing.InvoiceResponse) bool {
	if isAdmin(c) {
		return true
	}
	companyID, err := getCompanyID(c)
	if err != nil || (invoice.IssuerCompanyID != companyID && invoice.CounterpartyCompanyID != companyID) {
		h.NotFound(c, "Invoice not found")
		return false
	}
	return true
}
