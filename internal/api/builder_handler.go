package api

import (
	"context"
	"net/http"

	"alcyxob/program-builder/internal/builder"
	"alcyxob/program-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// BuilderHandler drives program builder sessions.
type BuilderHandler struct {
	builderService service.BuilderService
}

func NewBuilderHandler(builderService service.BuilderService) *BuilderHandler {
	return &BuilderHandler{builderService: builderService}
}

type StartSessionRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

type SelectRequest struct {
	ID string `json:"id" binding:"required"`
}

type BackRequest struct {
	Step builder.Step `json:"step" binding:"required"`
}

func (h *BuilderHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if !bindEdit(c, &req) {
		return
	}
	v, err := h.builderService.Start(c.Request.Context(), req.ProgramID)
	writeEdit(c, http.StatusCreated, v, err)
}

func (h *BuilderHandler) Get(c *gin.Context) {
	v, err := h.builderService.Get(c.Request.Context(), c.Param("sessionId"))
	writeEdit(c, http.StatusOK, v, err)
}

func (h *BuilderHandler) Discard(c *gin.Context) {
	if err := h.builderService.Discard(c.Request.Context(), c.Param("sessionId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type selectFunc func(ctx context.Context, sessionID, id string) (builder.View, error)

func (h *BuilderHandler) selectStep(fn selectFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectRequest
		if !bindEdit(c, &req) {
			return
		}
		v, err := fn(c.Request.Context(), c.Param("sessionId"), req.ID)
		writeEdit(c, http.StatusOK, v, err)
	}
}

func (h *BuilderHandler) SelectTeam() gin.HandlerFunc {
	return h.selectStep(h.builderService.SelectTeam)
}

func (h *BuilderHandler) SelectPhase() gin.HandlerFunc {
	return h.selectStep(h.builderService.SelectPhase)
}

func (h *BuilderHandler) SelectBlock() gin.HandlerFunc {
	return h.selectStep(h.builderService.SelectBlock)
}

func (h *BuilderHandler) SelectExercise() gin.HandlerFunc {
	return h.selectStep(h.builderService.SelectExercise)
}

func (h *BuilderHandler) ConfirmSets(c *gin.Context) {
	v, err := h.builderService.ConfirmSets(c.Request.Context(), c.Param("sessionId"))
	writeEdit(c, http.StatusOK, v, err)
}

func (h *BuilderHandler) Back(c *gin.Context) {
	var req BackRequest
	if !bindEdit(c, &req) {
		return
	}
	v, err := h.builderService.Back(c.Request.Context(), c.Param("sessionId"), req.Step)
	writeEdit(c, http.StatusOK, v, err)
}

// Assign commits the session's selection as the team's assignment.
func (h *BuilderHandler) Assign(c *gin.Context) {
	a, err := h.builderService.Assign(c.Request.Context(), c.Param("sessionId"))
	writeEdit(c, http.StatusCreated, a, err)
}
