package api

import (
	"net/http"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Exercises   service.ExerciseService
	Teams       service.TeamService
	Programs    service.ProgramService
	Assignments service.AssignmentService
	Builder     service.BuilderService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercises)
	teamHandler := NewTeamHandler(svc.Teams, svc.Assignments)
	programHandler := NewProgramHandler(svc.Programs)
	builderHandler := NewBuilderHandler(svc.Builder)

	physiologistOnly := RoleMiddleware(domain.RolePhysiologist)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)

		// --- Exercise library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.POST("", physiologistOnly, exerciseHandler.CreateExercise)
		}

		// --- Teams and their assignment ---
		teamGroup := protected.Group("/teams")
		{
			teamGroup.GET("", teamHandler.ListTeams)
			teamGroup.GET("/:teamId", teamHandler.GetTeam)
			teamGroup.GET("/:teamId/assignment", teamHandler.GetAssignment)
			teamGroup.POST("", physiologistOnly, teamHandler.CreateTeam)
			teamGroup.POST("/:teamId/patients", physiologistOnly, teamHandler.AddPatient)
			teamGroup.POST("/:teamId/assignment", physiologistOnly, teamHandler.AssignProgram)
			teamGroup.POST("/:teamId/assignment/export", physiologistOnly, teamHandler.ExportAssignment)
		}
		protected.GET("/assignments", physiologistOnly, teamHandler.ListAssignments)

		// --- Program structure ---
		programGroup := protected.Group("/programs")
		{
			programGroup.GET("", programHandler.ListPrograms)
			programGroup.GET("/:programId", programHandler.GetProgramTree)
			programGroup.GET("/:programId/stats", programHandler.GetProgramStats)
		}
		editGroup := programGroup.Group("")
		editGroup.Use(physiologistOnly)
		{
			editGroup.POST("", programHandler.CreateProgram)
			editGroup.POST("/:programId/phases", programHandler.AddPhase)
			editGroup.PUT("/:programId/phases/order", programHandler.ReorderPhases)
			editGroup.PUT("/:programId/phases/:phaseId", programHandler.RenamePhase)
			editGroup.DELETE("/:programId/phases/:phaseId", programHandler.DeletePhase)
			editGroup.POST("/:programId/phases/:phaseId/blocks", programHandler.AddBlock)
			editGroup.PUT("/:programId/blocks/:blockId", programHandler.UpdateBlock)
			editGroup.DELETE("/:programId/blocks/:blockId", programHandler.DeleteBlock)
			editGroup.POST("/:programId/blocks/:blockId/exercises", programHandler.AddExercise)
			editGroup.DELETE("/:programId/exercises/:exerciseId", programHandler.DeleteExercise)
			editGroup.POST("/:programId/exercises/:exerciseId/sets", programHandler.AddSet)
			editGroup.DELETE("/:programId/sets/:setId", programHandler.DeleteSet)
		}

		// --- Program builder sessions ---
		builderGroup := protected.Group("/builder/sessions")
		builderGroup.Use(physiologistOnly)
		{
			builderGroup.POST("", builderHandler.Start)
			builderGroup.GET("/:sessionId", builderHandler.Get)
			builderGroup.DELETE("/:sessionId", builderHandler.Discard)
			builderGroup.POST("/:sessionId/team", builderHandler.SelectTeam())
			builderGroup.POST("/:sessionId/phase", builderHandler.SelectPhase())
			builderGroup.POST("/:sessionId/block", builderHandler.SelectBlock())
			builderGroup.POST("/:sessionId/exercise", builderHandler.SelectExercise())
			builderGroup.POST("/:sessionId/sets", builderHandler.ConfirmSets)
			builderGroup.POST("/:sessionId/back", builderHandler.Back)
			builderGroup.POST("/:sessionId/assign", builderHandler.Assign)
		}
	}
}
