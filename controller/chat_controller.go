package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"archivechat/models"
	"archivechat/services"
)

// ChatController handles the HTTP requests for the query API. It depends on
// the ChatService to perform the actual business logic.
type ChatController struct {
	chatService services.ChatService
}

func NewChatController(service services.ChatService) *ChatController {
	return &ChatController{chatService: service}
}

// Query is the Gin handler for POST /api/v1/query.
func (c *ChatController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.chatService.Query(ctx.Request.Context(), req)
	if err != nil {
		// Search-unavailable is distinct from "no matches": the caller must
		// be told the archive could not be consulted at all.
		if errors.Is(err, services.ErrEmptyQuery) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query must not be empty"})
			return
		}
		if errors.Is(err, services.ErrSearchUnavailable) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cannot reach the archive right now"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Stats is the Gin handler for GET /api/v1/stats.
func (c *ChatController) Stats(ctx *gin.Context) {
	response, err := c.chatService.Stats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read index stats"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}
