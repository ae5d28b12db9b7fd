// gymnast-crm/main.go
package main

import (
	"log/slog"
	"os"

	"gymnast-crm/config"
	"gymnast-crm/internal/handlers"
	"gymnast-crm/internal/routes"
	"gymnast-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// JSON-логи во всём приложении.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("Файл .env не найден, используем переменные окружения")
	}

	config.ConnectDB()
	config.ConnectRedis()
	config.LoadAuthKey()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Coach{},
		&models.Student{},
		&models.TrainingGroup{},
		&models.StudentTrainingSchedule{},
		&models.TrainingSession{},
		&models.Attendance{},
		&models.Payment{},
		&models.Tariff{},
	)
	if err != nil {
		slog.Error("Ошибка миграции базы данных", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Лента изменений для подключённых клиентов.
	go handlers.GlobalHub.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("Сервер запущен", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		slog.Error("Сервер остановлен с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
