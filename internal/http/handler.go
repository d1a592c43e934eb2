package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parklot-service/internal/config"
	"parklot-service/internal/service"
)

type Handler struct {
	parkingService *service.ParkingService
	config         *config.Config
	log            zerolog.Logger
}

func NewHandler(
	parkingService *service.ParkingService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		parkingService: parkingService,
		config:         cfg,
		log:            log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Gate endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/vehicles/entries", h.vehicleEntry)
		public.POST("/vehicles/exits", h.vehicleExit)
		public.GET("/spots/next", h.nextAvailableSpot)
	}

	// Back-office endpoints
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/tickets", h.listTickets)
		protected.GET("/events", h.listGateEvents)
	}
}

type entryRequest struct {
	Selection        int    `json:"selection" binding:"required"`
	VehicleRegNumber string `json:"vehicle_reg_number" binding:"required"`
}

type exitRequest struct {
	VehicleRegNumber string `json:"vehicle_reg_number" binding:"required"`
}

// requestInput adapts one bound HTTP request to the pull-based input
// source the parking service consumes.
type requestInput struct {
	selection        int
	vehicleRegNumber string
}

func (in requestInput) ReadSelection() (int, error) {
	return in.selection, nil
}

func (in requestInput) ReadVehicleRegNumber() (string, error) {
	return in.vehicleRegNumber, nil
}

func (h *Handler) vehicleEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.parkingService.ProcessIncomingVehicle(c.Request.Context(), requestInput{
		selection:        req.Selection,
		vehicleRegNumber: req.VehicleRegNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":         "ok",
		"ticket":         result.Ticket,
		"recurring_user": result.RecurringUser,
	})
}

func (h *Handler) vehicleExit(c *gin.Context) {
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.parkingService.ProcessExitingVehicle(c.Request.Context(), requestInput{
		vehicleRegNumber: req.VehicleRegNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"ticket":         result.Ticket,
		"price":          result.Ticket.Price,
		"discount_given": result.DiscountGiven,
	})
}

func (h *Handler) nextAvailableSpot(c *gin.Context) {
	spot, err := h.parkingService.GetNextParkingNumberIfAvailable(c.Request.Context(), requestInput{
		selection: selectionFromTypeParam(c.Query("type")),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(spot))
}

func (h *Handler) listTickets(c *gin.Context) {
	vehicle := strings.TrimSpace(c.Query("vehicle"))
	if vehicle == "" {
		c.JSON(http.StatusBadRequest, errorResponse("vehicle parameter is required"))
		return
	}

	tickets, err := h.parkingService.ListTickets(c.Request.Context(), vehicle, queryInt(c, "limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(tickets))
}

func (h *Handler) listGateEvents(c *gin.Context) {
	vehicle := strings.TrimSpace(c.Query("vehicle"))
	if vehicle == "" {
		c.JSON(http.StatusBadRequest, errorResponse("vehicle parameter is required"))
		return
	}

	events, err := h.parkingService.ListGateEvents(c.Request.Context(), vehicle, queryInt(c, "limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(events))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNoCapacity):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

// selectionFromTypeParam maps the type query parameter onto the menu
// selection values; unknown strings map onto an invalid selection so
// the service rejects them.
func selectionFromTypeParam(t string) int {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "CAR":
		return service.SelectionCar
	case "BIKE":
		return service.SelectionBike
	default:
		return 0
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func queryInt(c *gin.Context, name string) int {
	if v := c.Query(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return 0
}
