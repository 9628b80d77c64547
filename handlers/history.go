package handlers

import (
	"errors"
	"net/http"
	"strconv"

	bookingRepo "maidbook/database/repository/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryHandler serves a signed-in user's finalized bookings.
type HistoryHandler struct {
	Bookings bookingRepo.BookingRepository
}

// ListBookings returns the caller's bookings, newest first.
func (h *HistoryHandler) ListBookings(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "sign in to see your bookings"})
		return
	}
	limit := int64(defaultHistoryLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive number"})
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	bookings, err := h.Bookings.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		getLogger(c).Error("failed to list bookings", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking returns one of the caller's bookings. Bookings of other users
// are reported as missing.
func (h *HistoryHandler) GetBooking(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "sign in to see your bookings"})
		return
	}
	b, err := h.Bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil && !errors.Is(err, bookingRepo.ErrNotFound) {
		getLogger(c).Error("failed to fetch booking", zap.String("bookingID", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch booking"})
		return
	}
	if b == nil || b.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"message": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}
