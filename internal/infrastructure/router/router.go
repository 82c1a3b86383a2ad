// Package router serves the API on a gin engine, the Express-style
// deployment of the same routes the standalone server exposes.
package router

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/infrastructure/transport"
)

// Options configures the gin server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration // per-frame deadline on chat streams
	StaticDir    string
}

// New builds the gin engine with all routes registered.
func New(services transport.Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors())

	h := &handlers{services: services, frameTimeout: opts.WriteTimeout}

	api := r.Group("/api")
	{
		api.POST("/chat", h.chat)
		api.GET("/context", h.context)
		api.GET("/chat/context", h.context)
		api.POST("/contact", h.contact)
	}
	r.GET("/health", h.health)

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, transport.ErrorResponse{Error: transport.MsgMethodNotAllowed})
	})

	if opts.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return r
}

// Start serves the engine until ctx is cancelled.
func Start(ctx context.Context, services transport.Services, opts Options) error {
	// No server-wide WriteTimeout; chat streams set a deadline per frame.
	server := &http.Server{
		Addr:        opts.Addr,
		Handler:     New(services, opts),
		ReadTimeout: opts.ReadTimeout,
	}

	log.Printf("[INFO] portfolio gin server starting on %s (provider %s)", opts.Addr, services.Relay.Provider())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type handlers struct {
	services     transport.Services
	frameTimeout time.Duration
}

func (h *handlers) chat(c *gin.Context) {
	var payload transport.ChatPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: transport.MsgInvalidBody})
		return
	}

	req := payload.ToRequest()
	if err := h.services.Relay.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: transport.MsgMessageRequired})
		return
	}

	transport.StreamChat(c.Writer, c.Request, h.services.Relay, req, h.frameTimeout)
}

func (h *handlers) context(c *gin.Context) {
	doc, err := h.services.Context.Context(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, transport.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, transport.ContextResponse{Context: doc})
}

func (h *handlers) contact(c *gin.Context) {
	var in entities.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(transport.InvalidContactBody())
		return
	}

	_, err := h.services.Contact.Submit(c.Request.Context(), in)
	status, body := transport.ContactOutcome(err)
	if status == http.StatusInternalServerError {
		log.Printf("[contact] delivery failed: %v", err)
	}
	c.JSON(status, body)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Health())
}
