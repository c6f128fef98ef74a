package api

import (
	"net/http"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// TeamHandler serves the team directory and team assignments.
type TeamHandler struct {
	teamService       service.TeamService
	assignmentService service.AssignmentService
}

func NewTeamHandler(teamService service.TeamService, assignmentService service.AssignmentService) *TeamHandler {
	return &TeamHandler{teamService: teamService, assignmentService: assignmentService}
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddPatientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AssignProgramRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	team, err := h.teamService.CreateTeam(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.ListTeams(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamService.GetTeam(c.Request.Context(), c.Param("teamId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// AddPatient godoc
// @Summary Add a registered patient to a team by email
// @Tags Teams
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param body body AddPatientRequest true "Patient email"
// @Success 200 {object} domain.Team
// @Failure 400 {object} gin.H "User is not a patient"
// @Failure 404 {object} gin.H "Team or patient not found"
// @Router /teams/{teamId}/patients [post]
func (h *TeamHandler) AddPatient(c *gin.Context) {
	var req AddPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	team, err := h.teamService.AddPatientByEmail(c.Request.Context(), c.Param("teamId"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// AssignProgram godoc
// @Summary Snapshot a program and make it the team's assignment
// @Tags Assignments
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param body body AssignProgramRequest true "Program to assign"
// @Success 201 {object} domain.TeamProgramAssignment
// @Router /teams/{teamId}/assignment [post]
func (h *TeamHandler) AssignProgram(c *gin.Context) {
	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	a, err := h.assignmentService.AssignProgramToTeam(c.Request.Context(), req.ProgramID, c.Param("teamId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// TeamAssignmentResponse pairs the assignment record with its composed structure.
type TeamAssignmentResponse struct {
	Assignment *domain.TeamProgramAssignment `json:"assignment"`
	Structure  *domain.ProgramTree           `json:"structure"`
}

// GetAssignment returns the team's current assignment and the structure it
// was assigned with. A team without an assignment gets 404.
func (h *TeamHandler) GetAssignment(c *gin.Context) {
	ctx := c.Request.Context()
	teamID := c.Param("teamId")

	a, err := h.assignmentService.GetTeamAssignment(ctx, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	if a == nil {
		respondError(c, service.ErrAssignmentNotFound)
		return
	}
	tree, err := h.assignmentService.LoadTeamProgramStructure(ctx, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TeamAssignmentResponse{Assignment: a, Structure: tree})
}

func (h *TeamHandler) ExportAssignment(c *gin.Context) {
	res, err := h.assignmentService.ExportTeamProgram(c.Request.Context(), c.Param("teamId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *TeamHandler) ListAssignments(c *gin.Context) {
	all, err := h.assignmentService.ListAllAssignments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if all == nil {
		all = []domain.TeamProgramAssignment{}
	}
	c.JSON(http.StatusOK, all)
}
