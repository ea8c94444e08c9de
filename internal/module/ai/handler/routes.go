package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the gateway's HTTP handlers.
type Handlers struct {
	Chat *ChatHandler
}

// NewHandlers creates the handler group.
func NewHandlers(chat *ChatHandler) *Handlers {
	return &Handlers{Chat: chat}
}

// RegisterRoutes registers all gateway routes on r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	h.Chat.RegisterRoutes(r)
}
