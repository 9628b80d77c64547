package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the HTTP handlers registered by package routes.
type HandlerBundle struct {
	Booking *BookingHandler
	History *HistoryHandler

	// Health reports store connectivity; nil serves a static response.
	Health gin.HandlerFunc
}
