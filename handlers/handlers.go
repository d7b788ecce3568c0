package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"inspection-service/email"
	"inspection-service/models"
	"inspection-service/report"
	"inspection-service/service"
)

// emailRegex prevents consecutive dots and ensures proper email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// InspectionHandler handles HTTP requests for the inspection service
type InspectionHandler struct {
	inspections *service.InspectionService
	generator   *report.Generator
	sender      *email.Sender
}

// NewInspectionHandler creates a new handler instance
func NewInspectionHandler(inspections *service.InspectionService, generator *report.Generator, sender *email.Sender) *InspectionHandler {
	return &InspectionHandler{
		inspections: inspections,
		generator:   generator,
		sender:      sender,
	}
}

// CreateInspectionRequest is the request body for creating an inspection.
type CreateInspectionRequest struct {
	AgentName      string                 `json:"agent_name"`
	InsuredName    string                 `json:"insured_name"`
	PolicyNumber   string                 `json:"policy_number"`
	InspectionDate *time.Time             `json:"inspection_date"`
	Vehicles       []models.VehicleRecord `json:"vehicles"`
}

// HandleCreateInspection handles POST requests to /api/v3/inspections
func (h *InspectionHandler) HandleCreateInspection(c *gin.Context) {
	var req CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	inspection := &models.InspectionRecord{
		AgentName:    req.AgentName,
		InsuredName:  req.InsuredName,
		PolicyNumber: req.PolicyNumber,
		Vehicles:     req.Vehicles,
	}
	if req.InspectionDate != nil {
		inspection.InspectionDate = *req.InspectionDate
	}

	if err := h.inspections.Create(c.Request.Context(), inspection); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to create inspection: %v", err),
		})
		return
	}

	c.JSON(http.StatusCreated, inspection)
}

// HandleListInspections handles GET requests to /api/v3/inspections
func (h *InspectionHandler) HandleListInspections(c *gin.Context) {
	inspections, err := h.inspections.List(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to list inspections: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inspections": inspections})
}

// HandleGetInspection handles GET requests to /api/v3/inspections/:id
func (h *InspectionHandler) HandleGetInspection(c *gin.Context) {
	inspection, err := h.inspections.Get(c.Request.Context(), c.Param("id"))
	if err == service.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inspection not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to load inspection: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, inspection)
}

// HandleUpdateInspection handles PUT requests to /api/v3/inspections/:id
func (h *InspectionHandler) HandleUpdateInspection(c *gin.Context) {
	var req CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	inspection, err := h.inspections.Get(c.Request.Context(), c.Param("id"))
	if err == service.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inspection not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to load inspection: %v", err),
		})
		return
	}

	inspection.AgentName = req.AgentName
	inspection.InsuredName = req.InsuredName
	inspection.PolicyNumber = req.PolicyNumber
	if req.InspectionDate != nil {
		inspection.InspectionDate = *req.InspectionDate
	}
	if req.Vehicles != nil {
		inspection.Vehicles = req.Vehicles
	}

	if err := h.inspections.Update(c.Request.Context(), inspection); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to update inspection: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, inspection)
}

// HandleDeleteInspection handles DELETE requests to /api/v3/inspections/:id
func (h *InspectionHandler) HandleDeleteInspection(c *gin.Context) {
	err := h.inspections.Delete(c.Request.Context(), c.Param("id"))
	if err == service.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inspection not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to delete inspection: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AttachPhotoRequest is the request body for uploading a vehicle photo.
type AttachPhotoRequest struct {
	Category models.PhotoCategory `json:"category" binding:"required"`
	// Image is the base64-encoded image payload (JPEG or PNG).
	Image string `json:"image" binding:"required"`
	Note  string `json:"note"`
}

// HandleAttachPhoto handles POST requests to
// /api/v3/inspections/:id/vehicles/:vehicleId/photos
func (h *InspectionHandler) HandleAttachPhoto(c *gin.Context) {
	var req AttachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image payload"})
		return
	}

	photo, err := h.inspections.AttachPhoto(c.Request.Context(), c.Param("id"), c.Param("vehicleId"), req.Category, imageData, req.Note)
	if err == service.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inspection not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to attach photo: %v", err),
		})
		return
	}

	c.JSON(http.StatusCreated, photo)
}

// HandleDownloadReport handles GET requests to /api/v3/inspections/:id/report
// and responds with the generated PDF.
func (h *InspectionHandler) HandleDownloadReport(c *gin.Context) {
	inspection, err := h.inspections.Get(c.Request.Context(), c.Param("id"))
	if err == service.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inspection not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to load inspection: %v", err),
		})
		return
	}

	result := h.generator.Generate(c.Request.Context(), *inspection)
	if len(result.PDF) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to generate report: %v", result.Err),
		})
		return
	}

	if !result.Fallback {
		if err := h.inspections.MarkPdfGenerated(c.Request.Context(), inspection.ID); err != nil {
			log.WithError(err).Warnf("Failed to mark inspection %s as generated", inspection.ID)
		}
	}

	filename := fmt.Sprintf("inspection-%s.pdf", inspection.ShortID())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// SendReportRequest is the request body for emailing a report.
type SendReportRequest struct {
	Email string `json:"email" binding:"required"`
}

// HandleSendReport handles POST requests to /api/v3/inspections/:id/send:
// generates the report and delivers it to the recipient.
func (h *InspectionHandler) HandleSendReport(c *gin.Context) {
	var req SendReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}
	if !emailRegex.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	inspection, err := h.inspections.Get(c.Request.Context(), c.Param("id"))
	if err == service.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inspection not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to load inspection: %v", err),
		})
		return
	}

	result := h.generator.Generate(c.Request.Context(), *inspection)
	if len(result.PDF) == 0 || result.Fallback {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to generate report: %v", result.Err),
		})
		return
	}

	filename := fmt.Sprintf("inspection-%s.pdf", inspection.ShortID())
	if err := h.sender.SendReport(req.Email, filename, result.PDF, inspection); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to send report: %v", err),
		})
		return
	}

	if err := h.inspections.MarkPdfGenerated(c.Request.Context(), inspection.ID); err != nil {
		log.WithError(err).Warnf("Failed to mark inspection %s as generated", inspection.ID)
	}
	if err := h.inspections.MarkEmailSent(c.Request.Context(), inspection.ID, req.Email); err != nil {
		log.WithError(err).Warnf("Failed to mark inspection %s as sent", inspection.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"recipient":      req.Email,
		"pages":          result.Pages,
		"skipped_photos": len(result.Skipped),
	})
}

// HandleHealth handles GET requests to /health
func (h *InspectionHandler) HandleHealth(c *gin.Context) {
	response := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "inspection-service",
	}

	c.JSON(http.StatusOK, response)
}
