// gymnast-crm/internal/handlers/coach_handler.go

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymnast-crm/config"
	"gymnast-crm/models"
)

type CoachInput struct {
	LastName  string `json:"lastName" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	IsActive  *bool  `json:"isActive"`
}

func ListCoachesHandler(c *gin.Context) {
	query := config.DB.Model(&models.Coach{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(last_name) LIKE ? OR LOWER(first_name) LIKE ?", pattern, pattern)
	}

	var coaches []models.Coach
	if err := query.Order("last_name, first_name").Find(&coaches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список тренеров"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": coaches})
}

func GetCoachHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID тренера"})
		return
	}

	var coach models.Coach
	if err := config.DB.First(&coach, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Тренер не найден"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения данных тренера: " + err.Error()})
		return
	}

	// Вместе с тренером отдаём его группы и занятия — карточка тренера
	// показывает всю недельную нагрузку.
	var groups []models.TrainingGroup
	if err := config.DB.Where("coach_id = ?", coach.ID).Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить группы тренера"})
		return
	}
	var sessions []models.TrainingSession
	if err := config.DB.Where("coach_id = ?", coach.ID).
		Order("day_of_week, start_time").Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить занятия тренера"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coach": coach, "groups": groups, "sessions": sessions})
}

func CreateCoachHandler(c *gin.Context) {
	var input CoachInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	coach := models.Coach{
		LastName:  input.LastName,
		FirstName: input.FirstName,
		Phone:     input.Phone,
		Specialty: input.Specialty,
		IsActive:  input.IsActive,
	}
	if err := config.DB.Create(&coach).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать тренера: " + err.Error()})
		return
	}

	NotifyChange("coaches", "create", coach.ID)
	c.JSON(http.StatusCreated, coach)
}

func UpdateCoachHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID тренера"})
		return
	}

	var coach models.Coach
	if err := config.DB.First(&coach, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Тренер не найден"})
		return
	}

	var input CoachInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	coach.LastName = input.LastName
	coach.FirstName = input.FirstName
	coach.Phone = input.Phone
	coach.Specialty = input.Specialty
	if input.IsActive != nil {
		coach.IsActive = input.IsActive
	}
	if err := config.DB.Save(&coach).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить тренера: " + err.Error()})
		return
	}

	NotifyChange("coaches", "update", coach.ID)
	c.JSON(http.StatusOK, coach)
}

func DeleteCoachHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID тренера"})
		return
	}
	coachID := uint(id64)

	// У тренера могут оставаться ученики и группы — проверяем до удаления.
	var studentCount int64
	config.DB.Model(&models.Student{}).Where("coach_id = ?", coachID).Count(&studentCount)
	if studentCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Нельзя удалить тренера: за ним закреплены ученики"})
		return
	}

	if err := config.DB.Delete(&models.Coach{}, coachID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить тренера: " + err.Error()})
		return
	}

	NotifyChange("coaches", "delete", coachID)
	c.JSON(http.StatusOK, gin.H{"message": "Тренер удален"})
}
