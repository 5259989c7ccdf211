package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Its-Samir/booking-api/internal/service"
	"github.com/Its-Samir/booking-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	bookings      *service.BookingService
	catalog       *service.CatalogService
	notifications *service.NotificationService
	jwtSecret     string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	bookings *service.BookingService,
	catalog *service.CatalogService,
	notifications *service.NotificationService,
	jwtSecret string,
) *Handler {
	return &Handler{
		bookings:      bookings,
		catalog:       catalog,
		notifications: notifications,
		jwtSecret:     jwtSecret,
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

	auth := requireAuth(h.jwtSecret)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", auth, h.createEvent)
		v1.GET("/events", h.getEvents)
		v1.GET("/events/:eventId", optionalAuth(h.jwtSecret), h.getEvent)

		v1.POST("/events/:eventId/bookings", auth, h.bookEvent)
		v1.PATCH("/events/:eventId/bookings", auth, h.cancelBooking)
		v1.POST("/events/:eventId/checkout", auth, h.makePayment)
		v1.GET("/events/:eventId/tickets", auth, h.getTicket)
		v1.POST("/events/:eventId/reviews", auth, h.addReview)
		v1.PUT("/events/:eventId/reviews", auth, h.editReview)
		v1.POST("/events/:eventId/likes", auth, h.likeEvent)

		v1.GET("/bookings", auth, h.getBookings)
		v1.GET("/bookings/:bookingId", auth, h.getBooking)
		v1.DELETE("/bookings/:bookingId", auth, h.deleteBooking)

		v1.GET("/notifications", auth, h.getNotifications)
		v1.PUT("/notifications/:id", auth, h.updateNotification)
		v1.DELETE("/notifications/:id", auth, h.deleteNotification)
	}
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

func (h *Handler) createEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errorMessage": "invalid request body"})
		return
	}

	event, err := h.catalog.CreateEvent(c.Request.Context(), c.GetString(ctxUserID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "event": event})
}

func (h *Handler) getEvents(c *gin.Context) {
	filter := store.EventSearchFilter{
		Location:    c.Query("location"),
		Category:    c.Query("category"),
		TitleSearch: c.Query("titleSearch"),
	}
	if v, err := strconv.Atoi(c.Query("maxPeople")); err == nil {
		filter.MaxPeopleBelow = v
	}
	if v, err := strconv.ParseInt(c.Query("minPrice"), 10, 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseInt(c.Query("maxPrice"), 10, 64); err == nil {
		filter.MaxPrice = v
	}

	page := pageParam(c, "page")

	events, pageInfo, err := h.catalog.SearchEvents(c.Request.Context(), filter, c.Query("userId"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":       events,
		"hasNextPage": pageInfo.HasNextPage,
		"hasPrevPage": pageInfo.HasPrevPage,
	})
}

func (h *Handler) getEvent(c *gin.Context) {
	detail, err := h.catalog.GetEvent(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": detail, "isBooked": detail.IsBooked})
}

type bookEventRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) bookEvent(c *gin.Context) {
	var req bookEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errorMessage": "invalid request body"})
		return
	}

	booking, err := h.bookings.BookEvent(c.Request.Context(), c.GetString(ctxUserID), c.Param("eventId"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Event booked successfully", "bookingId": booking.ID})
}

func (h *Handler) cancelBooking(c *gin.Context) {
	booking, err := h.bookings.CancelBooking(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": booking})
}

// makePayment completes the simulated payment for a booking. The eventId
// path segment carries the booking ID here, mirroring the original API's
// checkout route.
func (h *Handler) makePayment(c *gin.Context) {
	booking, err := h.bookings.PayForBooking(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment successful", "booking": booking})
}

func (h *Handler) getTicket(c *gin.Context) {
	ticket, err := h.bookings.IssueTicket(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticketDetails": ticket})
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (h *Handler) addReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errorMessage": "field(s) is empty"})
		return
	}

	err := h.catalog.AddReview(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review added"})
}

func (h *Handler) editReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errorMessage": "field(s) is empty"})
		return
	}

	err := h.catalog.EditReview(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review edited"})
}

func (h *Handler) likeEvent(c *gin.Context) {
	liked, err := h.catalog.ToggleLike(c.Request.Context(), c.Param("eventId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "You disliked this Event"
	if liked {
		message = "You liked this Event"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "liked": liked})
}

func (h *Handler) getBookings(c *gin.Context) {
	bookings, pageInfo, err := h.bookings.ListBookings(c.Request.Context(), c.GetString(ctxUserID), pageParam(c, "tab"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":    bookings,
		"hasNextPage": pageInfo.HasNextPage,
		"hasPrevPage": pageInfo.HasPrevPage,
	})
}

func (h *Handler) getBooking(c *gin.Context) {
	booking, err := h.bookings.GetBooking(c.Request.Context(), c.Param("bookingId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (h *Handler) deleteBooking(c *gin.Context) {
	err := h.bookings.DeleteBooking(c.Request.Context(), c.Param("bookingId"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

func (h *Handler) getNotifications(c *gin.Context) {
	notifications, pageInfo, err := h.notifications.ListNotifications(c.Request.Context(), c.GetString(ctxUserID), pageParam(c, "tab"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"hasNextPage":   pageInfo.HasNextPage,
		"hasPrevPage":   pageInfo.HasPrevPage,
	})
}

func (h *Handler) updateNotification(c *gin.Context) {
	err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification updated"})
}

func (h *Handler) deleteNotification(c *gin.Context) {
	err := h.notifications.Delete(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// pageParam reads a 1-based page number from the named query parameter
func pageParam(c *gin.Context, name string) int {
	page, err := strconv.Atoi(c.Query(name))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
