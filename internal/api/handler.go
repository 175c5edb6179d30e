package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"settlement-service/internal/models"
	"settlement-service/internal/service"
	"settlement-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService  *service.OrderService
	payoutService *service.PayoutService
	ledgerService *service.LedgerService
	catalog       *service.CatalogClient
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	payoutService *service.PayoutService,
	ledgerService *service.LedgerService,
	catalog *service.CatalogClient,
) *Handler {
	return &Handler{
		orderService:  orderService,
		payoutService: payoutService,
		ledgerService: ledgerService,
		catalog:       catalog,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/cancel", h.cancelOrder)
		v1.POST("/orders/:id/confirm", h.confirmOrder)

		v1.GET("/places/:id/orders", h.listOrders)
		v1.GET("/places/:id/orders/expired", h.listExpiredOrders)
		v1.GET("/places/:id/orders/export", h.exportOrders)
		v1.GET("/places/:id/menu", h.getMenu)
		v1.PUT("/catalog/:id/price", h.updateItemPrice)

		v1.POST("/payouts", h.createPayout)
		v1.GET("/payouts/preview", h.previewPayout)
		v1.GET("/payouts/:id", h.getPayout)
		v1.POST("/payouts/:id/burn", h.recordBurn)
		v1.POST("/payouts/:id/transfer", h.recordTransfer)
		v1.GET("/payouts/:id/burn-date", h.getBurnDate)
		v1.PUT("/payouts/:id/burn-date", h.updateBurnDate)
		v1.GET("/payouts/:id/transfer-date", h.getTransferDate)
		v1.PUT("/payouts/:id/transfer-date", h.updateTransferDate)
	}
}

// respondError maps the domain failure taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *models.ValidationError
		transitionErr *models.InvalidTransitionError
		recordedErr   *models.AlreadyRecordedError
		notFoundErr   *models.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.As(err, &recordedErr):
		c.JSON(http.StatusConflict, gin.H{"error": recordedErr.Error()})
	case errors.Is(err, models.ErrNoEligibleOrders):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPayoutRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles checkout capture
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, items, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":            order,
		"items":            items,
		"effective_status": h.orderService.ProjectStatus(order, time.Now()),
	})
}

// cancelOrder cancels a pending order
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type confirmOrderRequest struct {
	Target        string `json:"target" binding:"required"`
	ProcessorTxID string `json:"processor_tx_id"`
	TxHash        string `json:"tx_hash"`
}

// confirmOrder applies a processor confirmation delivered over HTTP
// (terminal redirect flow); the Kafka worker covers the async path.
func (h *Handler) confirmOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req confirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	target, err := models.ParseOrderStatus(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if req.ProcessorTxID != "" || req.TxHash != "" {
		if err := h.orderService.AttachProcessorReference(ctx, orderID, req.ProcessorTxID, req.TxHash); err != nil {
			respondError(c, err)
			return
		}
	}

	order, err := h.orderService.Transition(ctx, orderID, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// listOrders lists a place's orders with effective statuses
func (h *Handler) listOrders(c *gin.Context) {
	placeID, ok := pathID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), placeID)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	statuses := make([]models.OrderStatus, len(orders))
	for i := range orders {
		statuses[i] = h.orderService.ProjectStatus(&orders[i], now)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":             orders,
		"effective_statuses": statuses,
	})
}

// listExpiredOrders lists pending checkouts past the staleness window
func (h *Handler) listExpiredOrders(c *gin.Context) {
	placeID, ok := pathID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListExpiredOrders(c.Request.Context(), placeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getMenu lists a place's catalog
func (h *Handler) getMenu(c *gin.Context) {
	placeID, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.catalog.GetMenu(c.Request.Context(), placeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type updatePriceRequest struct {
	Price int64 `json:"price"`
}

// updateItemPrice changes a catalog price
func (h *Handler) updateItemPrice(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}

	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.UpdateItemPrice(c.Request.Context(), itemID, req.Price); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type createPayoutRequest struct {
	PlaceID int64     `json:"place_id" binding:"required"`
	UserID  int64     `json:"user_id" binding:"required"`
	From    time.Time `json:"from" binding:"required"`
	To      time.Time `json:"to" binding:"required"`
}

// createPayout triggers an aggregation run
func (h *Handler) createPayout(c *gin.Context) {
	var req createPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	payout, err := h.payoutService.CreatePayout(c.Request.Context(), req.PlaceID, req.UserID, req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payout)
}

// previewPayout shows what a payout run would consume without committing
func (h *Handler) previewPayout(c *gin.Context) {
	placeID, err := strconv.ParseInt(c.Query("place_id"), 10, 64)
	if err != nil || placeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place_id"})
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}

	orders, err := h.payoutService.SelectEligibleOrders(c.Request.Context(), placeID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  models.PayoutTotal(orders),
	})
}

// getPayout retrieves a payout with its consumed orders
func (h *Handler) getPayout(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	payout, orders, err := h.payoutService.GetPayout(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payout": payout,
		"orders": orders,
	})
}

// recordBurn records the burn milestone
func (h *Handler) recordBurn(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	burn, err := h.payoutService.RecordBurn(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, burn)
}

// recordTransfer records the transfer milestone
func (h *Handler) recordTransfer(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	transfer, err := h.payoutService.RecordTransfer(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

// getBurnDate resolves the burn timestamp through the payout
func (h *Handler) getBurnDate(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	date, err := h.ledgerService.GetBurnDate(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"burn_date": date})
}

// getTransferDate resolves the transfer timestamp through the payout
func (h *Handler) getTransferDate(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	date, err := h.ledgerService.GetTransferDate(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfer_date": date})
}

type updateDateRequest struct {
	Date time.Time `json:"date"`
}

// updateBurnDate overrides the burn timestamp
func (h *Handler) updateBurnDate(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.ledgerService.UpdateBurnDate(c.Request.Context(), payoutID, req.Date); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// updateTransferDate overrides the transfer timestamp
func (h *Handler) updateTransferDate(c *gin.Context) {
	payoutID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.ledgerService.UpdateTransferDate(c.Request.Context(), payoutID, req.Date); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
