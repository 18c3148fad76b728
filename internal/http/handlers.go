package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mindtek-chatbot/internal/core"
	"mindtek-chatbot/internal/llm"
	"mindtek-chatbot/pkg"

	"github.com/gin-gonic/gin"
)

// Server bundles the handlers' dependencies and implements http.Handler.
// Store may be nil when the server runs without a database; the
// conversation and dashboard endpoints then report it as unconfigured.
type Server struct {
	Engine      *core.Engine
	Extractor   *core.Extractor
	Dashboard   *core.Dashboard
	Store       core.Store
	Environment string

	router *gin.Engine
}

// NewServer constructs the gin router with CORS and method dispatch
// matching the public API: every endpoint answers OPTIONS permissively
// and rejects other unregistered methods with 405.
func NewServer(engine *core.Engine, extractor *core.Extractor, dashboard *core.Dashboard, store core.Store, environment string) *Server {
	s := &Server{
		Engine:      engine,
		Extractor:   extractor,
		Dashboard:   dashboard,
		Store:       store,
		Environment: environment,
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(corsMiddleware())
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	r.POST("/api/chat", s.handleChat)
	r.GET("/api/conversation", s.handleGetConversation)
	r.DELETE("/api/conversation", s.handleDeleteConversation)
	r.POST("/api/conversation", s.handleAnalyzeConversation)
	r.GET("/api/conversations", s.handleListConversations)
	r.GET("/api/health", s.handleHealth)

	s.router = r
	return s
}

// ServeHTTP makes Server usable with http.ListenAndServe and httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// corsMiddleware sets permissive CORS headers on every response and
// short-circuits preflight requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req pkg.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	reply, transcript, err := s.Engine.HandleTurn(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, pkg.ChatResponse{
		Response:     reply,
		SessionID:    req.SessionID,
		MessageCount: len(transcript),
	})
}

func (s *Server) handleGetConversation(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}
	if s.Store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not configured"})
		return
	}
	messages, err := s.Store.GetMessages(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": messages})
}

func (s *Server) handleDeleteConversation(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}
	if s.Store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not configured"})
		return
	}
	if err := s.Store.Delete(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Conversation deleted successfully",
	})
}

func (s *Server) handleAnalyzeConversation(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}
	if s.Store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not configured"})
		return
	}

	analysis, err := s.Extractor.Analyze(c.Request.Context(), sessionID)
	if err != nil {
		var malformed *core.MalformedAnalysisError
		switch {
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case errors.As(err, &malformed):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       "Failed to parse analysis result",
				"details":     "Invalid JSON response from OpenAI",
				"rawResponse": malformed.Raw,
			})
		case errors.Is(err, llm.ErrUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to analyze conversation",
				"details": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to save analysis results",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": analysis,
		"message":  "Analysis completed successfully",
	})
}

func (s *Server) handleListConversations(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database not configured"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, pagination, err := s.Dashboard.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations from database"})
		return
	}

	filter := core.Filter{
		Industry:    c.Query("industry"),
		LeadQuality: c.Query("leadQuality"),
	}
	if v := c.Query("consultation"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			filter.Consultation = &b
		}
	}
	rows = core.FilterConversations(rows, filter)

	c.JSON(http.StatusOK, gin.H{
		"conversations": rows,
		"pagination":    pagination,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"message":     "API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.Environment,
	})
}
