package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/common"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/middleware"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/tracking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TrackingHandler struct {
	svc *tracking.Service
}

func NewTrackingHandler(svc *tracking.Service) *TrackingHandler {
	return &TrackingHandler{svc: svc}
}

// CreateEntry logs a new health event for the authenticated user.
func (h *TrackingHandler) CreateEntry(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	entry := &model.TrackingLog{
		UserID:               userID,
		EventDate:            req.EventDate,
		Accident:             req.Accident,
		ChangePadOrUnderwear: req.ChangePadOrUnderwear,
		LeakAmount:           req.LeakAmount,
		Urgency:              req.Urgency,
		AwokeFromSleep:       req.AwokeFromSleep,
		PainLevel:            req.PainLevel,
		Notes:                req.Notes,
	}

	created, err := h.svc.Create(c.Request.Context(), entry)
	if errors.Is(err, tracking.ErrInvalidEntry) {
		c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, messageResponse{Message: "User not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to create tracking log entry", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error creating tracking log record"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListEntries returns all entries, optionally filtered by a userId query
// parameter.
func (h *TrackingHandler) ListEntries(c *gin.Context) {
	var userID *uuid.UUID
	if raw := c.Query("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid userId"})
			return
		}
		userID = &id
	}

	records, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to list tracking log entries", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error retrieving tracking log records"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// LastNDays returns the trailing window of entries for one user. No rows
// yields an empty array, not a 404.
func (h *TrackingHandler) LastNDays(c *gin.Context) {
	numDays, userID, ok := h.windowParams(c)
	if !ok {
		return
	}

	records, err := h.svc.LastNDays(c.Request.Context(), numDays, userID)
	if errors.Is(err, tracking.ErrInvalidEntry) {
		c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Failed to query tracking log entries", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error retrieving tracking log records"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// DailySummary returns per-day aggregates over the trailing window.
func (h *TrackingHandler) DailySummary(c *gin.Context) {
	numDays, userID, ok := h.windowParams(c)
	if !ok {
		return
	}

	summaries, err := h.svc.DailySummary(c.Request.Context(), numDays, userID)
	if errors.Is(err, tracking.ErrInvalidEntry) {
		c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Failed to aggregate tracking log entries", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error retrieving tracking log summary"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *TrackingHandler) windowParams(c *gin.Context) (int, uuid.UUID, bool) {
	numDays, err := strconv.Atoi(c.Param("numDays"))
	if err != nil || numDays <= 0 {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "numDays must be a positive integer"})
		return 0, uuid.Nil, false
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil || userID == uuid.Nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "User ID is required"})
		return 0, uuid.Nil, false
	}

	return numDays, userID, true
}
