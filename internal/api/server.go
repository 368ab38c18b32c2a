package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rumdood/Moneo-sub002/internal/chat"
	"github.com/rumdood/Moneo-sub002/internal/config"
	"github.com/rumdood/Moneo-sub002/internal/logger"
)

const (
	healthTimeout = 3 * time.Second
	maxBodyBytes  = 1 << 20
)

// Sender delivers outbound messages to their conversation.
type Sender interface {
	Send(ctx context.Context, msg chat.Outbound) error
}

// Receiver turns delivery of inbound updates on and off.
type Receiver interface {
	StartReceiving(ctx context.Context, webhookURL string) error
	StopReceiving(ctx context.Context) error
}

// Pinger reports whether the journal database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Webhook  http.Handler
	Sender   Sender
	Receiver Receiver
	Health   Pinger
}

type server struct {
	deps Deps
	log  *slog.Logger
}

// NewRouter builds the gin engine serving every adapter route and /healthz.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := server{deps: deps, log: deps.Logger.With("component", "http_api")}

	if deps.Config.FunctionKey == "" {
		s.log.Warn("Function key is empty, start, stop and send are not protected")
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(s.log))

	router.GET("/healthz", s.health)

	api := router.Group(BasePath)
	api.POST("/"+RouteReceive, requireTelegramSecret(deps.Config.CallbackToken), s.receive)

	protected := api.Group("", requireFunctionKey(deps.Config.FunctionKey))
	protected.POST("/"+RouteStart, s.start)
	protected.POST("/"+RouteStop, s.stop)
	protected.POST("/"+RouteSend, s.send)

	return router
}

func (s server) health(c *gin.Context) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := s.deps.Health.Ping(ctx); err != nil {
			s.fail(c, http.StatusServiceUnavailable, "journal database unavailable", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s server) receive(c *gin.Context) {
	if s.deps.Webhook == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook receiver not configured"})
		return
	}
	s.deps.Webhook.ServeHTTP(c.Writer, c.Request)
}

type startRequest struct {
	WebhookURL string `json:"webhookUrl" binding:"omitempty,url"`
}

func (s server) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Receiver.StartReceiving(c.Request.Context(), req.WebhookURL); err != nil {
		s.fail(c, http.StatusBadGateway, "failed to start receiving", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "receiving"})
}

func (s server) stop(c *gin.Context) {
	if err := s.deps.Receiver.StopReceiving(c.Request.Context()); err != nil {
		s.fail(c, http.StatusBadGateway, "failed to stop receiving", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// sendRequest is the envelope accepted by the send route.
type sendRequest struct {
	Type           chat.ResponseType `json:"type"`
	ConversationID int64             `json:"conversationId" binding:"required"`
	Text           string            `json:"text"`
	GifURL         string            `json:"gifUrl"`
	MenuOptions    []string          `json:"menuOptions"`
	IsError        bool              `json:"isError"`
}

// outbound maps the envelope onto a command result and then onto its message variant.
func (r sendRequest) outbound() (chat.Outbound, error) {
	resultType := chat.ResultWorkflowCompleted
	if r.IsError {
		resultType = chat.ResultError
	}
	text := r.Text
	if r.Type == chat.ResponseAnimation && r.GifURL != "" {
		text = r.GifURL
	}

	res, err := chat.NewCommandResult(resultType, r.Type, text, r.MenuOptions...)
	if err != nil {
		return nil, err
	}
	return res.Outbound(r.ConversationID)
}

func (s server) send(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := req.outbound()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Sender.Send(c.Request.Context(), msg); err != nil {
		s.fail(c, http.StatusBadGateway, "failed to deliver message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "type": msg.Kind(), "conversationId": msg.ConversationID()})
}

// fail logs err and responds with public, adding the cause only when detailed errors are enabled.
func (s server) fail(c *gin.Context, status int, public string, err error) {
	_ = c.Error(err)
	s.log.ErrorContext(c.Request.Context(), public, "path", c.FullPath(), "error", err)

	body := gin.H{"error": public}
	if s.deps.Config.DetailedErrors() {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}
