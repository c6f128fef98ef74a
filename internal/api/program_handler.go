package api

import (
	"context"
	"net/http"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgramHandler serves program templates and their structure.
//
// Structural edits accept the program version in If-Match (or ?version=)
// and answer with the version they produced.
type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type CreateProgramRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsTemplate  *bool  `json:"isTemplate"` // defaults to true
}

type PhaseRequest struct {
	Title string `json:"title" binding:"required"`
}

type ReorderPhasesRequest struct {
	PhaseIDs []string `json:"phaseIds" binding:"required"`
}

type BlockRequest struct {
	Name       string `json:"name" binding:"required"`
	IsSuperset bool   `json:"isSuperset"`
}

type AddExerciseRequest struct {
	ExerciseID string   `json:"exerciseId" binding:"required"` // library exercise
	Equipment  []string `json:"equipment"`
}

type AddSetRequest struct {
	SetNumber int    `json:"setNumber" binding:"min=0"`
	Reps      *int   `json:"reps" binding:"omitempty,min=0"`
	Time      *int   `json:"time" binding:"omitempty,min=0"`
	Rest      *int   `json:"rest" binding:"omitempty,min=0"`
	Notes     string `json:"notes"`
}

// VersionResponse is returned by edits that produce no entity.
type VersionResponse struct {
	Version int64 `json:"version"`
}

// --- Programs ---

func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	isTemplate := true
	if req.IsTemplate != nil {
		isTemplate = *req.IsTemplate
	}
	p, err := h.programService.CreateProgram(c.Request.Context(), req.Name, req.Description, isTemplate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programService.ListPrograms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if programs == nil {
		programs = []domain.Program{}
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgramTree godoc
// @Summary Get a program with its ordered phases, blocks, exercises and sets
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} domain.ProgramTree
// @Failure 404 {object} gin.H "Program not found"
// @Router /programs/{programId} [get]
func (h *ProgramHandler) GetProgramTree(c *gin.Context) {
	tree, err := h.programService.GetProgramTree(c.Request.Context(), c.Param("programId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *ProgramHandler) GetProgramStats(c *gin.Context) {
	stats, err := h.programService.GetProgramStats(c.Request.Context(), c.Param("programId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// --- Phases ---

func (h *ProgramHandler) AddPhase(c *gin.Context) {
	var req PhaseRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	res, err := h.programService.AddPhase(c.Request.Context(), c.Param("programId"), version, req.Title)
	writeEdit(c, http.StatusCreated, res, err)
}

func (h *ProgramHandler) RenamePhase(c *gin.Context) {
	var req PhaseRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	res, err := h.programService.RenamePhase(c.Request.Context(), c.Param("programId"), version, c.Param("phaseId"), req.Title)
	writeEdit(c, http.StatusOK, res, err)
}

// ReorderPhases godoc
// @Summary Replace the phase order of a program
// @Description The list must contain every phase of the program exactly once.
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param body body ReorderPhasesRequest true "Phase IDs in their new order"
// @Success 200 {object} VersionResponse
// @Failure 400 {object} gin.H "Not a permutation of the program's phases"
// @Failure 409 {object} gin.H "Stale version"
// @Router /programs/{programId}/phases/order [put]
func (h *ProgramHandler) ReorderPhases(c *gin.Context) {
	var req ReorderPhasesRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	v, err := h.programService.ReorderPhases(c.Request.Context(), c.Param("programId"), version, req.PhaseIDs)
	writeEdit(c, http.StatusOK, VersionResponse{Version: v}, err)
}

func (h *ProgramHandler) DeletePhase(c *gin.Context) {
	h.delete(c, h.programService.DeletePhase, "phaseId")
}

// --- Blocks ---

func (h *ProgramHandler) AddBlock(c *gin.Context) {
	var req BlockRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	res, err := h.programService.AddBlock(c.Request.Context(), c.Param("programId"), version, c.Param("phaseId"), req.Name, req.IsSuperset)
	writeEdit(c, http.StatusCreated, res, err)
}

func (h *ProgramHandler) UpdateBlock(c *gin.Context) {
	var req BlockRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	res, err := h.programService.UpdateBlock(c.Request.Context(), c.Param("programId"), version, c.Param("blockId"), req.Name, req.IsSuperset)
	writeEdit(c, http.StatusOK, res, err)
}

func (h *ProgramHandler) DeleteBlock(c *gin.Context) {
	h.delete(c, h.programService.DeleteBlock, "blockId")
}

// --- Exercises and sets ---

func (h *ProgramHandler) AddExercise(c *gin.Context) {
	var req AddExerciseRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	res, err := h.programService.AddExercise(c.Request.Context(), c.Param("programId"), version, c.Param("blockId"), req.ExerciseID, req.Equipment)
	writeEdit(c, http.StatusCreated, res, err)
}

func (h *ProgramHandler) DeleteExercise(c *gin.Context) {
	h.delete(c, h.programService.DeleteExercise, "exerciseId")
}

func (h *ProgramHandler) AddSet(c *gin.Context) {
	var req AddSetRequest
	if !bindEdit(c, &req) {
		return
	}
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	res, err := h.programService.AddSet(c.Request.Context(), c.Param("programId"), version, c.Param("exerciseId"), program.SetInput{
		SetNumber: req.SetNumber,
		Reps:      req.Reps,
		Time:      req.Time,
		Rest:      req.Rest,
		Notes:     req.Notes,
	})
	writeEdit(c, http.StatusCreated, res, err)
}

func (h *ProgramHandler) DeleteSet(c *gin.Context) {
	h.delete(c, h.programService.DeleteSet, "setId")
}

// --- helpers ---

type deleteFunc func(ctx context.Context, programID string, expectedVersion int64, id string) (int64, error)

func (h *ProgramHandler) delete(c *gin.Context, del deleteFunc, param string) {
	version, ok := expectedVersion(c)
	if !ok {
		return
	}
	v, err := del(c.Request.Context(), c.Param("programId"), version, c.Param(param))
	writeEdit(c, http.StatusOK, VersionResponse{Version: v}, err)
}

func bindEdit(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func writeEdit(c *gin.Context, code int, body interface{}, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, body)
}
