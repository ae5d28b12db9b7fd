// gymnast-crm/internal/handlers/session_handler.go

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymnast-crm/config"
	"gymnast-crm/internal/schedulekey"
	"gymnast-crm/models"
)

type TrainingSessionInput struct {
	CoachID   uint   `json:"coachId" binding:"required"`
	Day       string `json:"day" binding:"required"` // трёхбуквенный код
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Title     string `json:"title"`
	Capacity  int    `json:"capacity"`
}

func ListTrainingSessionsHandler(c *gin.Context) {
	query := config.DB.Model(&models.TrainingSession{}).Preload("Coach")

	if coachID := c.Query("coach_id"); coachID != "" {
		query = query.Where("coach_id = ?", coachID)
	}
	if day := c.Query("day"); day != "" {
		fullName, ok := schedulekey.FullDayName(day)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный код дня недели: " + day})
			return
		}
		query = query.Where("day_of_week = ?", fullName)
	}

	var sessions []models.TrainingSession
	if err := query.Order("day_of_week, start_time").Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список занятий"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

// CreateTrainingSessionHandler создает занятие вручную, соблюдая тот же
// инвариант, что и автосоздание: один кортеж — одно занятие.
func CreateTrainingSessionHandler(c *gin.Context) {
	var input TrainingSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	fullName, ok := schedulekey.FullDayName(input.Day)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный код дня недели: " + input.Day})
		return
	}
	if _, ok := schedulekey.MinuteOfDay(input.StartTime); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное время начала: " + input.StartTime})
		return
	}
	if _, ok := schedulekey.MinuteOfDay(input.EndTime); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное время конца: " + input.EndTime})
		return
	}

	var existing models.TrainingSession
	err := config.DB.Where(
		"coach_id = ? AND day_of_week = ? AND start_time = ? AND end_time = ?",
		input.CoachID, fullName, input.StartTime, input.EndTime,
	).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Такое занятие уже существует", "session": existing})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка проверки занятия: " + err.Error()})
		return
	}

	title := input.Title
	if title == "" {
		title = DefaultSessionTitle
	}
	capacity := input.Capacity
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}

	session := models.TrainingSession{
		CoachID:   input.CoachID,
		DayOfWeek: fullName,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Title:     title,
		Capacity:  capacity,
	}
	if err := config.DB.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать занятие: " + err.Error()})
		return
	}

	NotifyChange("training_sessions", "create", session.ID)
	c.JSON(http.StatusCreated, session)
}

func UpdateTrainingSessionHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID занятия"})
		return
	}

	var session models.TrainingSession
	if err := config.DB.First(&session, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Занятие не найдено"})
		return
	}

	// Правка вручную меняет только название и вместимость: день и время
	// занятия связаны с расписаниями групп, их меняют через форму группы.
	var input struct {
		Title    string `json:"title"`
		Capacity int    `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}
	if input.Title != "" {
		session.Title = input.Title
	}
	if input.Capacity > 0 {
		session.Capacity = input.Capacity
	}

	if err := config.DB.Save(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить занятие: " + err.Error()})
		return
	}

	NotifyChange("training_sessions", "update", session.ID)
	c.JSON(http.StatusOK, session)
}

func DeleteTrainingSessionHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID занятия"})
		return
	}
	sessionID := uint(id64)

	if err := config.DB.Delete(&models.TrainingSession{}, sessionID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить занятие: " + err.Error()})
		return
	}

	NotifyChange("training_sessions", "delete", sessionID)
	c.JSON(http.StatusOK, gin.H{"message": "Занятие удалено"})
}

// GetDayCalendarHandler — дневной срез календаря: занятия на выбранный день
// плюс группы, тренирующиеся в этот день. Принадлежность группы дню
// проверяется по ключу расписания без полного разбора.
func GetDayCalendarHandler(c *gin.Context) {
	day := c.Query("day")
	fullName, ok := schedulekey.FullDayName(day)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный код дня недели: " + day})
		return
	}

	var sessions []models.TrainingSession
	if err := config.DB.Preload("Coach").
		Where("day_of_week = ?", fullName).
		Order("start_time").Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить занятия"})
		return
	}

	var allGroups []models.TrainingGroup
	if err := config.DB.Preload("Coach").Find(&allGroups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить группы"})
		return
	}

	groups := make([]models.TrainingGroup, 0)
	for _, g := range allGroups {
		if schedulekey.ContainsDay(g.ScheduleKey, day) {
			groups = append(groups, g)
		}
	}

	c.JSON(http.StatusOK, gin.H{"day": fullName, "sessions": sessions, "groups": groups})
}
