package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inventory-reservation-service/internal/cache"
	"inventory-reservation-service/internal/events"
	"inventory-reservation-service/internal/models"
	"inventory-reservation-service/internal/store"
	"inventory-reservation-service/internal/telemetry"
)

// InventoryStore is the engine surface the request layer consumes.
type InventoryStore interface {
	ListProducts() []models.Product
	GetProduct(productID string) (models.Product, bool)
	Reserve(productID string, quantity int, orderID string) (models.Reservation, error)
	Release(productID string, quantity int) bool
}

// HandlerConfig holds request-layer limits
type HandlerConfig struct {
	LowStockThreshold int
	MaxReservationQty int
}

// Handler handles HTTP requests for the inventory service
type Handler struct {
	store   InventoryStore
	cfg     HandlerConfig
	tracer  trace.Tracer
	metrics *telemetry.InventoryMetrics
	events  *events.Publisher
	cache   *cache.CacheClient
}

// NewHandler creates the API handler. metrics, events and cache may be
// nil when the corresponding collaborator is disabled. The tracer comes
// from the global provider, so spans are no-ops until telemetry is
// initialized.
func NewHandler(inventoryStore InventoryStore, cfg HandlerConfig, metrics *telemetry.InventoryMetrics, publisher *events.Publisher, cacheClient *cache.CacheClient) *Handler {
	return &Handler{
		store:   inventoryStore,
		cfg:     cfg,
		tracer:  otel.Tracer("inventory.api"),
		metrics: metrics,
		events:  publisher,
		cache:   cacheClient,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/health", h.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/inventory", h.listInventory)
		api.GET("/inventory/:product_id", h.getProductStock)
		api.POST("/inventory/reserve", h.reserveStock)
		api.POST("/inventory/release", h.releaseStock)
	}

	return r
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "inventory",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// listInventory lists all products with derived stock fields.
func (h *Handler) listInventory(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "list_inventory")
	defer span.End()

	products := h.store.ListProducts()

	result := make([]models.ProductStock, 0, len(products))
	low, outOfStock := 0, 0
	for _, p := range products {
		view := models.NewProductStock(p, h.cfg.LowStockThreshold)
		switch view.Status {
		case models.StockStatusLowStock:
			low++
		case models.StockStatusOutOfStock:
			outOfStock++
		}
		result = append(result, view)
	}

	span.SetAttributes(
		attribute.Int("inventory.product_count", len(result)),
		attribute.Int("inventory.low_stock_count", low),
		attribute.Int("inventory.out_of_stock_count", outOfStock),
	)

	c.JSON(http.StatusOK, models.InventoryListResponse{
		Products:   result,
		Total:      len(result),
		LowStock:   low,
		OutOfStock: outOfStock,
	})
}

// getProductStock returns stock for a single product.
func (h *Handler) getProductStock(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "get_product_stock")
	defer span.End()

	productID := c.Param("product_id")
	span.SetAttributes(attribute.String("product.id", productID))

	product, ok := h.store.GetProduct(productID)
	if !ok {
		span.SetStatus(codes.Error, "Product not found")
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Product not found",
			ProductID: productID,
		})
		return
	}

	span.SetAttributes(
		attribute.String("product.name", product.Name),
		attribute.Int("inventory.available", product.Available()),
	)

	c.JSON(http.StatusOK, models.NewProductStock(product, h.cfg.LowStockThreshold))
}

// reserveStock handles stock reservation requests.
func (h *Handler) reserveStock(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "reserve_stock")
	defer span.End()

	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message := validationErrorMessage(err)
		span.SetStatus(codes.Error, message)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
		return
	}

	span.SetAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.Int("reservation.quantity", req.Quantity),
		attribute.String("order.id", req.OrderID),
	)

	if req.Quantity > h.cfg.MaxReservationQty {
		span.SetStatus(codes.Error, "quantity exceeds maximum per reservation")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "quantity exceeds maximum per reservation",
		})
		return
	}

	start := time.Now()
	reservation, err := h.store.Reserve(req.ProductID, req.Quantity, req.OrderID)
	h.metrics.RecordReservationLatency(ctx, req.ProductID, time.Since(start).Seconds())

	if err != nil {
		h.handleReserveError(ctx, c, span, req, err)
		return
	}

	h.metrics.RecordReservation(ctx, req.ProductID, req.Quantity)

	if product, ok := h.store.GetProduct(req.ProductID); ok {
		if product.Status(h.cfg.LowStockThreshold) == models.StockStatusLowStock {
			h.metrics.RecordLowStock(ctx, req.ProductID)
			log.Warn().
				Str("product_id", product.ProductID).
				Str("name", product.Name).
				Int("available", product.Available()).
				Msg("Low stock alert")
		}
		h.publishStockChange(events.EventTypeStockReserved, product, req.Quantity, reservation.ReservationID, req.OrderID)
	}

	span.SetAttributes(attribute.String("reservation.id", reservation.ReservationID))

	log.Info().
		Str("reservation_id", reservation.ReservationID).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("Reservation created")

	c.JSON(http.StatusCreated, reservation)
}

func (h *Handler) handleReserveError(ctx context.Context, c *gin.Context, span trace.Span, req models.ReserveRequest, err error) {
	var insufficientErr *models.InsufficientStockError

	switch {
	case models.IsNotFound(err):
		h.metrics.RecordReservationFailure(ctx, req.ProductID, "not_found")
		span.SetStatus(codes.Error, "Product not found")
		log.Error().Str("product_id", req.ProductID).Msg("Reservation failed - product not found")
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Product not found",
			ProductID: req.ProductID,
		})

	case errors.As(err, &insufficientErr):
		h.metrics.RecordReservationFailure(ctx, req.ProductID, "insufficient_stock")
		span.SetStatus(codes.Error, "Insufficient stock")
		log.Warn().
			Str("product_id", req.ProductID).
			Int("requested", insufficientErr.Requested).
			Int("available", insufficientErr.Available).
			Msg("Reservation failed - insufficient stock")
		c.JSON(http.StatusConflict, models.StockConflictResponse{
			Error:     "Insufficient stock",
			Available: insufficientErr.Available,
			Requested: insufficientErr.Requested,
		})

	case models.IsInvalidQuantity(err):
		span.SetStatus(codes.Error, "quantity must be a positive integer")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "quantity must be a positive integer",
		})

	default:
		span.SetStatus(codes.Error, "internal error")
		log.Error().Err(err).Str("product_id", req.ProductID).Msg("Reservation failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

// releaseStock handles stock release requests.
func (h *Handler) releaseStock(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "release_stock")
	defer span.End()

	var req models.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message := validationErrorMessage(err)
		span.SetStatus(codes.Error, message)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
		return
	}

	span.SetAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.Int("release.quantity", req.Quantity),
	)

	if !h.store.Release(req.ProductID, req.Quantity) {
		span.SetStatus(codes.Error, "Product not found")
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Product not found",
			ProductID: req.ProductID,
		})
		return
	}

	availableAfter := 0
	if product, ok := h.store.GetProduct(req.ProductID); ok {
		availableAfter = product.Available()
		h.publishStockChange(events.EventTypeStockReleased, product, req.Quantity, "", "")
	}

	log.Info().
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Int("available_after", availableAfter).
		Msg("Stock released")

	c.JSON(http.StatusOK, models.ReleaseResponse{
		ProductID:      req.ProductID,
		Released:       req.Quantity,
		AvailableAfter: availableAfter,
		Timestamp:      time.Now().UTC(),
	})
}

// publishStockChange fans the mutation out to the event stream and the
// snapshot cache. Both are asynchronous and best-effort.
func (h *Handler) publishStockChange(eventType string, product models.Product, quantity int, reservationID, orderID string) {
	if h.events != nil {
		event := events.NewStockEvent(eventType, product.ProductID, quantity, product.Available())
		event.ReservationID = reservationID
		event.OrderID = orderID
		h.events.PublishAsync(event)
	}

	h.cache.UpdateStockAsync(store.StockSnapshot{
		ProductID: product.ProductID,
		Name:      product.Name,
		Available: product.Available(),
	})
}
