package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/common"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	svc *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid user id"})
		return
	}

	user, err := h.svc.GetByID(c.Request.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, messageResponse{Message: "User not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to get user", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	user, err := h.svc.Create(c.Request.Context(), req.Username, req.Password, req.IsAdmin)
	if errors.Is(err, common.ErrDuplicate) {
		c.JSON(http.StatusConflict, messageResponse{Message: "Username already exists"})
		return
	}
	if err != nil {
		slog.Error("Failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, user)
}
