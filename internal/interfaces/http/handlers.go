package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/service"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/status"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger *zap.Logger) *Handlers {
	return &Handlers{services: services, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respondError maps application errors to HTTP statuses. Lock timeouts
// surface as 409 so clients retry rather than treat them as failures.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, status.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, port.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, lock.ErrTimeout):
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   "another operation is in progress, please retry",
		})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// transition runs a one-argument lifecycle call and writes the result.
// Shared by every POST /:id/<verb> endpoint.
func transition[T any](h *Handlers, c *gin.Context, fn func(ctx context.Context, id int64) (T, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, result)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	h.ok(c, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// --- Projects ---

// CreateProjectRequest is the body of POST /api/projects
type CreateProjectRequest struct {
	Name     string `json:"name" binding:"required"`
	Customer string `json:"customer"`
}

func (h *Handlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	project, err := h.services.Projects.Create(c.Request.Context(), service.CreateProjectInput{
		Name:     req.Name,
		Customer: req.Customer,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: project})
}

func (h *Handlers) ListProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	projects, err := h.services.Projects.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, projects)
}

func (h *Handlers) GetProject(c *gin.Context) {
	transition(h, c, h.services.Projects.Get)
}

func (h *Handlers) ActivateProject(c *gin.Context) {
	transition(h, c, h.services.Projects.Activate)
}

func (h *Handlers) CompleteProject(c *gin.Context) {
	transition(h, c, h.services.Projects.Complete)
}

func (h *Handlers) ArchiveProject(c *gin.Context) {
	transition(h, c, h.services.Projects.Archive)
}

func (h *Handlers) DeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Projects.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Quotations ---

// CreateQuotationRequest is the body of POST /api/projects/:id/quotations
type CreateQuotationRequest struct {
	Items []struct {
		Description string `json:"description" binding:"required"`
		Quantity    int64  `json:"quantity" binding:"required"`
		UnitPrice   int64  `json:"unit_price"`
	} `json:"items" binding:"required"`
}

func (h *Handlers) CreateQuotation(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}
	var req CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	in := service.CreateQuotationInput{ProjectID: projectID}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.QuotationItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	quotation, err := h.services.Quotations.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: quotation})
}

func (h *Handlers) ListQuotations(c *gin.Context) {
	transition(h, c, h.services.Quotations.ListByProject)
}

func (h *Handlers) GetQuotation(c *gin.Context) {
	transition(h, c, h.services.Quotations.Get)
}

func (h *Handlers) SubmitQuotation(c *gin.Context) {
	transition(h, c, h.services.Quotations.Submit)
}

// ApprovalOutcomeRequest is the body of POST /api/quotations/:id/approval
type ApprovalOutcomeRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// CompleteQuotationApproval receives the external approval workflow's
// outcome and publishes it; the propagation handler applies the move.
func (h *Handlers) CompleteQuotationApproval(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ApprovalOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	if err := h.services.Quotations.NotifyApprovalCompleted(c.Request.Context(), id, req.Approved, req.Reason); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, gin.H{"id": id, "approved": req.Approved})
}

func (h *Handlers) MarkQuotationSending(c *gin.Context) {
	transition(h, c, h.services.Quotations.MarkSending)
}

func (h *Handlers) MarkQuotationSent(c *gin.Context) {
	transition(h, c, h.services.Quotations.MarkSent)
}

func (h *Handlers) AcceptQuotation(c *gin.Context) {
	transition(h, c, h.services.Quotations.Accept)
}

func (h *Handlers) CheckQuotationPrintable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Quotations.EnsurePrintable(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, gin.H{"id": id, "printable": true})
}

// --- Deliveries ---

// RecordDeliveryRequest is the body of POST /api/quotation-items/:id/deliveries
type RecordDeliveryRequest struct {
	Quantity    int64      `json:"quantity" binding:"required"`
	Note        string     `json:"note"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

func (h *Handlers) RecordDelivery(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	var req RecordDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	in := service.RecordDeliveryInput{
		QuotationItemID: itemID,
		Quantity:        req.Quantity,
		Note:            req.Note,
	}
	if req.DeliveredAt != nil {
		in.DeliveredAt = *req.DeliveredAt
	}

	delivery, err := h.services.Deliveries.Record(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: delivery})
}

func (h *Handlers) ListDeliveries(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deliveries, err := h.services.Deliveries.ListByItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	remaining, err := h.services.Deliveries.Remaining(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, gin.H{"deliveries": deliveries, "remaining": remaining})
}

// --- Purchase requests ---

// CreatePurchaseRequestRequest is the body of POST /api/projects/:id/purchase-requests
type CreatePurchaseRequestRequest struct {
	ItemName string `json:"item_name" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

func (h *Handlers) CreatePurchaseRequest(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}
	var req CreatePurchaseRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	request, err := h.services.PurchaseRequests.Create(c.Request.Context(), service.CreatePurchaseRequestInput{
		ProjectID: projectID,
		ItemName:  req.ItemName,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: request})
}

func (h *Handlers) ListPurchaseRequests(c *gin.Context) {
	transition(h, c, h.services.PurchaseRequests.ListByProject)
}

func (h *Handlers) GetPurchaseRequest(c *gin.Context) {
	transition(h, c, h.services.PurchaseRequests.Get)
}

// SendRFQRequest is the body of POST /api/purchase-requests/:id/rfq
type SendRFQRequest struct {
	Vendors  []string  `json:"vendors" binding:"required"`
	Deadline time.Time `json:"deadline" binding:"required"`
}

func (h *Handlers) SendRFQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SendRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	request, err := h.services.PurchaseRequests.SendRFQ(c.Request.Context(), id, req.Vendors, req.Deadline)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, request)
}

// SelectVendorRequest is the body of POST /api/purchase-requests/:id/select
type SelectVendorRequest struct {
	RfqItemID int64 `json:"rfq_item_id" binding:"required"`
}

func (h *Handlers) SelectVendor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SelectVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	request, err := h.services.PurchaseRequests.SelectVendor(c.Request.Context(), id, req.RfqItemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, request)
}

func (h *Handlers) CancelPurchaseRequest(c *gin.Context) {
	transition(h, c, h.services.PurchaseRequests.Cancel)
}

func (h *Handlers) ListRfqItems(c *gin.Context) {
	transition(h, c, h.services.RfqItems.ListByRequest)
}

// --- RFQ items ---

// RecordRfqReplyRequest is the body of POST /api/rfq-items/:id/reply
type RecordRfqReplyRequest struct {
	QuotedPrice int64 `json:"quoted_price" binding:"required"`
}

func (h *Handlers) RecordRfqReply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RecordRfqReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	item, err := h.services.RfqItems.RecordReply(c.Request.Context(), id, req.QuotedPrice)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, item)
}

func (h *Handlers) MarkRfqNoResponse(c *gin.Context) {
	transition(h, c, h.services.RfqItems.MarkNoResponse)
}

// --- Purchase orders ---

func (h *Handlers) CreatePurchaseOrder(c *gin.Context) {
	requestID, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.services.PurchaseOrders.Create(c.Request.Context(), requestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: order})
}

func (h *Handlers) ListPurchaseOrders(c *gin.Context) {
	transition(h, c, h.services.PurchaseOrders.ListByRequest)
}

func (h *Handlers) GetPurchaseOrder(c *gin.Context) {
	transition(h, c, h.services.PurchaseOrders.Get)
}

func (h *Handlers) SendPurchaseOrder(c *gin.Context) {
	transition(h, c, h.services.PurchaseOrders.Send)
}

func (h *Handlers) ConfirmPurchaseOrder(c *gin.Context) {
	transition(h, c, h.services.PurchaseOrders.Confirm)
}

func (h *Handlers) ReceivePurchaseOrder(c *gin.Context) {
	transition(h, c, h.services.PurchaseOrders.Receive)
}

func (h *Handlers) CancelPurchaseOrder(c *gin.Context) {
	transition(h, c, h.services.PurchaseOrders.Cancel)
}
