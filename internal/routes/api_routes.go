// gymnast-crm/internal/routes/api_routes.go
package routes

import (
	"gymnast-crm/internal/handlers"
	"gymnast-crm/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// --- УЧЕНИКИ ---
		students := apiGroup.Group("/students")
		{
			students.GET("", handlers.ListStudentsHandler)
			students.GET("/export", handlers.ExportStudentsHandler)
			students.POST("", handlers.CreateStudentHandler)
			students.GET("/:id", handlers.GetStudentHandler)
			students.PUT("/:id", handlers.UpdateStudentHandler)
			students.DELETE("/:id", middleware.RequireRole("admin"), handlers.DeleteStudentHandler)
		}

		// --- ТРЕНЕРЫ ---
		coaches := apiGroup.Group("/coaches")
		{
			coaches.GET("", handlers.ListCoachesHandler)
			coaches.POST("", middleware.RequireRole("admin"), handlers.CreateCoachHandler)
			coaches.GET("/:id", handlers.GetCoachHandler)
			coaches.PUT("/:id", middleware.RequireRole("admin"), handlers.UpdateCoachHandler)
			coaches.DELETE("/:id", middleware.RequireRole("admin"), handlers.DeleteCoachHandler)
		}

		// --- ГРУППЫ ---
		groups := apiGroup.Group("/training-groups")
		{
			groups.GET("", handlers.ListTrainingGroupsHandler)
			groups.POST("", handlers.CreateTrainingGroupHandler)
			// Массовая сверка: чинит рассинхрон ученик/группа по запросу.
			groups.POST("/reconcile", middleware.RequireRole("admin"), handlers.ReconcileTrainingGroupsHandler)
			groups.GET("/:id", handlers.GetTrainingGroupHandler)
			groups.PUT("/:id", handlers.UpdateTrainingGroupHandler)
			groups.DELETE("/:id", middleware.RequireRole("admin"), handlers.DeleteTrainingGroupHandler)
		}

		// --- ЗАНЯТИЯ (календарь тренеров) ---
		sessions := apiGroup.Group("/sessions")
		{
			sessions.GET("", handlers.ListTrainingSessionsHandler)
			sessions.GET("/calendar", handlers.GetDayCalendarHandler)
			sessions.POST("", handlers.CreateTrainingSessionHandler)
			sessions.PUT("/:id", handlers.UpdateTrainingSessionHandler)
			sessions.DELETE("/:id", handlers.DeleteTrainingSessionHandler)
		}

		// --- ПОСЕЩАЕМОСТЬ ---
		attendance := apiGroup.Group("/attendance")
		{
			attendance.GET("", handlers.ListAttendanceHandler)
			attendance.POST("", handlers.CreateAttendanceHandler)
			attendance.PUT("/:id", handlers.UpdateAttendanceHandler)
			attendance.DELETE("/:id", handlers.DeleteAttendanceHandler)
		}

		// --- ФИНАНСЫ ---
		payments := apiGroup.Group("/payments")
		{
			payments.GET("", handlers.ListPaymentsHandler)
			payments.GET("/export", handlers.ExportPaymentsHandler)
			payments.POST("", handlers.CreatePaymentHandler)
			payments.POST("/preview", handlers.PreviewMonthlyFeeHandler)
			payments.GET("/:id/receipt", handlers.GetPaymentReceiptHandler)
			payments.PUT("/:id", handlers.UpdatePaymentHandler)
			payments.DELETE("/:id", middleware.RequireRole("admin"), handlers.DeletePaymentHandler)
		}

		// --- ТАРИФЫ ---
		tariffs := apiGroup.Group("/tariffs")
		{
			tariffs.GET("", handlers.ListTariffsHandler)
			tariffs.POST("", middleware.RequireRole("admin"), handlers.CreateTariffHandler)
			tariffs.PUT("/:id", middleware.RequireRole("admin"), handlers.UpdateTariffHandler)
			tariffs.DELETE("/:id", middleware.RequireRole("admin"), handlers.DeleteTariffHandler)
		}

		// --- ЛЕНТА ИЗМЕНЕНИЙ ---
		events := apiGroup.Group("/events")
		{
			events.GET("/ws", handlers.EventsWSEndpoint)
		}
	}
}
