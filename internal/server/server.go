package server

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/auth"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub/types"
	"ctchen222/Tic-Tac-Toe-Solo/internal/player"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Registrar accepts websocket viewers. *hub.Hub implements it.
type Registrar interface {
	Register() chan<- *types.RegistrationRequest
}

type Server struct {
	engine   *gin.Engine
	hub      Registrar
	tokens   *auth.TokenManager
	upgrader websocket.Upgrader
}

func NewServer(h Registrar, tokens *auth.TokenManager, users *controller.UserController, sessions *controller.SessionController) *Server {
	s := &Server{
		engine: gin.New(),
		hub:    h,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.registerRoutes(users, sessions)
	return s
}

func (s *Server) registerRoutes(users *controller.UserController, sessions *controller.SessionController) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.POST("/guest", users.GuestLogin)
	api.POST("/register", users.Register)
	api.POST("/login", users.Login)

	authed := api.Group("/sessions", auth.Middleware(s.tokens))
	authed.POST("", sessions.Create)
	authed.GET("/:id", sessions.Get)
	authed.POST("/:id/moves", sessions.Move)
	authed.POST("/:id/reset", sessions.Reset)
	authed.DELETE("/:id", sessions.Close)
}

// Engine returns the HTTP handler.
func (s *Server) Engine() http.Handler {
	return s.engine
}

// handleWebSocket authenticates, upgrades the connection and passes a
// registration request to the hub. Choosing or creating the session is the hub's job.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	claims, err := s.tokens.Verify(auth.TokenFromRequest(c))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unauthorized websocket request")
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	// Each tab gets its own connection ID; ownership follows the token subject.
	p := player.NewPlayer(uuid.New().String(), conn)
	sessionID := c.Query("session")
	span.SetAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("owner.id", claims.Subject),
		attribute.String("session.id", sessionID),
	)

	s.hub.Register() <- &types.RegistrationRequest{
		Player:    p,
		OwnerID:   claims.Subject,
		SessionID: sessionID,
		// The request context ends when this handler returns; the connection does not.
		Ctx:       context.WithoutCancel(ctx),
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.DebugContext(c.Request.Context(), "HTTP request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start),
		)
	}
}
