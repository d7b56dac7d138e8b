package controller

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/auth"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/models"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/service"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionController exposes game sessions over REST.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// Create starts a new game for the caller.
func (sc *SessionController) Create(c *gin.Context) {
	snap, err := sc.sessionService.Create(c.Request.Context(), auth.PlayerID(c))
	if err != nil {
		sc.fail(c, err)
		return
	}
	response.CreatedResponse(c, snap)
}

// Get returns the current state of one of the caller's sessions.
func (sc *SessionController) Get(c *gin.Context) {
	snap, err := sc.sessionService.Get(c.Request.Context(), auth.PlayerID(c), c.Param("id"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, snap)
}

// Move plays the caller's mark.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := sc.sessionService.Move(c.Request.Context(), auth.PlayerID(c), c.Param("id"), *req.Cell)
	if err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, snap)
}

// Reset clears the board and keeps the counters.
func (sc *SessionController) Reset(c *gin.Context) {
	snap, err := sc.sessionService.Reset(c.Request.Context(), auth.PlayerID(c), c.Param("id"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, snap)
}

// Close ends the session.
func (sc *SessionController) Close(c *gin.Context) {
	if err := sc.sessionService.Close(c.Request.Context(), auth.PlayerID(c), c.Param("id")); err != nil {
		sc.fail(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Session closed"})
}

func (sc *SessionController) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, hub.ErrSessionNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidMove):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "Session request failed", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
