package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arkgate/server/internal/module/ai/dispatch"
	apperrors "github.com/arkgate/server/internal/utils/errors"
)

// Dispatcher runs one chat request against the upstream.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *dispatch.ChatRequest) (*dispatch.Reply, error)
}

// ChatHandler handles chat API requests.
type ChatHandler struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(dispatcher Dispatcher, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		dispatcher: dispatcher,
		logger:     logger.Named("chat"),
	}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Health)
	r.POST("/chat", h.Chat)
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health reports liveness.
//
//	@Summary		Health check
//	@Description	Reports that the gateway is up
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/ [get]
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Chat handles generation requests for every modality.
//
//	@Summary		Generate a reply
//	@Description	Routes the message to chat completion, image generation or video generation.
//	@Description	Video requests block until the task finishes or the poll budget runs out.
//	@Tags			Generation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dispatch.ChatRequest	true	"Chat request"
//	@Success		200		{object}	dispatch.Reply
//	@Failure		400		{object}	apperrors.ErrorResponse	"Invalid model or body"
//	@Failure		500		{object}	apperrors.ErrorResponse	"Upstream error"
//	@Failure		504		{object}	apperrors.ErrorResponse	"Video generation timed out"
//	@Router			/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dispatch.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, bindError(err))
		return
	}

	reply, err := h.dispatcher.Dispatch(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Client-facing messages for bodies that fail to bind.
const (
	ErrMsgMalformedBody  = "Malformed request body"
	ErrMsgMissingMessage = "user_message is required"
)

// bindError hides decoder and validator internals behind a fixed message.
func bindError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.ClientInput(ErrMsgMissingMessage)
	}
	return apperrors.ClientInput(ErrMsgMalformedBody)
}
