package http

import (
	"net/http"
	"strconv"

	"health-chatbot/internal/core"
	"health-chatbot/internal/db"
	"health-chatbot/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Server bundles together the dependencies required by HTTP handlers.
type Server struct {
	Store *db.Store
	Chat  *core.ChatService
}

// NewServer constructs a Server.
func NewServer(store *db.Store, chat *core.ChatService) *Server {
	return &Server{Store: store, Chat: chat}
}

// Router builds the gin engine with all routes registered. The browser
// frontend is served from a different origin, so CORS is wide open.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.POST("/register-patient", s.handleRegisterPatient)
	r.POST("/chat", s.handleChat)
	r.POST("/new-chat", s.handleNewChat)
	r.GET("/patient/:id", s.handleGetPatient)
	r.GET("/patient/:id/sessions", s.handlePatientSessions)
	r.GET("/health-check", s.handleHealthCheck)
	return r
}

type registerPatientRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName" binding:"required"`
	Age            int    `json:"age" binding:"required"`
	Sex            string `json:"sex" binding:"required"`
	Address        string `json:"address"`
	ContactNumber  string `json:"contactNumber"`
	MedicalHistory string `json:"medicalHistory"`
}

func (s *Server) handleRegisterPatient(c *gin.Context) {
	var req registerPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	id, err := s.Store.CreatePatient(c.Request.Context(), &pkg.Patient{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Age:            req.Age,
		Sex:            req.Sex,
		Address:        req.Address,
		ContactNumber:  req.ContactNumber,
		MedicalHistory: req.MedicalHistory,
	})
	if err != nil {
		log.WithError(err).Error("failed to register patient")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to register patient"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"patient_id": id,
		"message":    "Patient registered successfully",
	})
}

// handleChat processes one chat turn. The endpoint always answers 200: a
// completion failure is rendered into the reply text instead of an error
// status, so the frontend can show it in the transcript.
func (s *Server) handleChat(c *gin.Context) {
	var req pkg.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := s.Chat.HandleTurn(c.Request.Context(), core.TurnInput{
		SessionID:   sessionID,
		Message:     req.Message,
		PatientID:   req.PatientID,
		PatientData: req.PatientData,
	})
	if err != nil {
		log.WithError(err).WithField("session_id", sessionID).Error("completion failed")
		reply = "Error: " + err.Error()
	}

	c.JSON(http.StatusOK, pkg.ChatResponse{Reply: reply, SessionID: sessionID})
}

type newChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

func (s *Server) handleNewChat(c *gin.Context) {
	var req newChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Store.DeleteSession(c.Request.Context(), req.SessionID); err != nil {
		log.WithError(err).WithField("session_id", req.SessionID).Error("failed to delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start new chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "New chat started", "session_id": req.SessionID})
}

func (s *Server) handleGetPatient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid patient ID"})
		return
	}

	patient, err := s.Store.GetPatient(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).WithField("patient_id", id).Error("failed to load patient")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if patient == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Patient not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "patient": patient})
}

func (s *Server) handlePatientSessions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid patient ID"})
		return
	}

	sessions, err := s.Store.PatientSessions(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).WithField("patient_id", id).Error("failed to list patient sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if sessions == nil {
		sessions = []pkg.Session{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": sessions})
}

func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "health-chatbot"})
}
