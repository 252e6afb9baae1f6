// Package httpapi exposes account and conversation management over REST.
// The live message flow lives on the WebSocket side; everything here is
// request/response.
package httpapi

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"chat-relay/domain"
	errs "chat-relay/errors"
	"chat-relay/infrastructure/ws"
	"chat-relay/services"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

type API struct {
	log  *slog.Logger
	chat services.IChatService
	auth services.IAuthService
	ws   *ws.Server

	searchLimit int
}

func NewAPI(log *slog.Logger, chat services.IChatService, auth services.IAuthService,
	wsServer *ws.Server, searchLimit int) *API {
	return &API{log: log, chat: chat, auth: auth, ws: wsServer, searchLimit: searchLimit}
}

func (a *API) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/register", a.register)
	router.POST("/api/login", a.login)
	router.GET("/ws", a.ws.Handle)

	authorized := router.Group("/api", a.requireAuth)
	authorized.POST("/conversations", a.createConversation)
	authorized.GET("/conversations", a.listConversations)
	authorized.GET("/conversations/:id/messages", a.messages)
	authorized.GET("/conversations/:id/search", a.search)
	authorized.DELETE("/conversations/:id", a.deleteConversation)

	return router
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

func (a *API) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := a.auth.Register(body.Email, body.Password, body.DisplayName)
	if err != nil {
		switch {
		case stderrors.Is(err, errs.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case stderrors.Is(err, errs.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration data"})
		default:
			a.log.Error("Registration failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token.String()})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := a.auth.Login(body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token.String()})
}

// requireAuth validates the Bearer token and stashes the identity for
// downstream handlers.
func (a *API) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
		return
	}

	user, err := a.auth.Authenticate(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) domain.User {
	return c.MustGet(userKey).(domain.User)
}

type createConversationRequest struct {
	Title        string   `json:"title" binding:"required"`
	Participants []string `json:"participants"`
}

func (a *API) createConversation(c *gin.Context) {
	var body createConversationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, err := a.chat.CreateConversation(c.Request.Context(), currentUser(c),
		body.Title, body.Participants)
	if err != nil {
		a.abortOnServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conversation)
}

func (a *API) listConversations(c *gin.Context) {
	conversations, err := a.chat.ListConversations(c.Request.Context(), currentUser(c))
	if err != nil {
		a.abortOnServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// messages pages backwards through the history, newest first. The returned
// cursor resumes the walk when passed back as ?cursor=.
func (a *API) messages(c *gin.Context) {
	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := a.chat.History(c.Request.Context(), currentUser(c),
		domain.ConversationID(c.Param("id")), cursor)
	if err != nil {
		a.abortOnServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "cursor": next})
}

func (a *API) search(c *gin.Context) {
	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter required"})
		return
	}

	hits, err := a.chat.Search(c.Request.Context(), currentUser(c),
		domain.ConversationID(c.Param("id")), terms, a.searchLimit)
	if err != nil {
		a.abortOnServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

func (a *API) deleteConversation(c *gin.Context) {
	err := a.chat.Delete(c.Request.Context(), currentUser(c),
		domain.ConversationID(c.Param("id")))
	if err != nil {
		a.abortOnServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) abortOnServiceError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case stderrors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
	default:
		a.log.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
