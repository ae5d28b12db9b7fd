// gymnast-crm/internal/handlers/attendance_handler.go

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gymnast-crm/config"
	"gymnast-crm/models"
)

type AttendanceInput struct {
	StudentID         uint   `json:"studentId" binding:"required"`
	TrainingSessionID *uint  `json:"trainingSessionId"`
	Date              string `json:"date" binding:"required"` // "2006-01-02"
	Attended          *bool  `json:"attended"`
	Comment           string `json:"comment"`
}

func ListAttendanceHandler(c *gin.Context) {
	query := config.DB.Model(&models.Attendance{}).Preload("Student").Preload("TrainingSession")

	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректная дата: " + dateStr})
			return
		}
		query = query.Where("date = ?", date)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось посчитать отметки"})
		return
	}

	var records []models.Attendance
	if err := query.Scopes(Paginate(c)).Order("date DESC, id DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить посещаемость"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, records, totalRows))
}

func CreateAttendanceHandler(c *gin.Context) {
	var input AttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректная дата: " + input.Date})
		return
	}

	record := models.Attendance{
		StudentID:         input.StudentID,
		TrainingSessionID: input.TrainingSessionID,
		Date:              date,
		Attended:          input.Attended,
		Comment:           input.Comment,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить отметку: " + err.Error()})
		return
	}

	NotifyChange("attendance", "create", record.ID)
	c.JSON(http.StatusCreated, record)
}

func UpdateAttendanceHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отметки"})
		return
	}

	var record models.Attendance
	if err := config.DB.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Отметка не найдена"})
		return
	}

	var input struct {
		Attended *bool  `json:"attended"`
		Comment  string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}
	if input.Attended != nil {
		record.Attended = input.Attended
	}
	record.Comment = input.Comment

	if err := config.DB.Save(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить отметку: " + err.Error()})
		return
	}

	NotifyChange("attendance", "update", record.ID)
	c.JSON(http.StatusOK, record)
}

func DeleteAttendanceHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID отметки"})
		return
	}
	recordID := uint(id64)

	if err := config.DB.Delete(&models.Attendance{}, recordID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить отметку: " + err.Error()})
		return
	}

	NotifyChange("attendance", "delete", recordID)
	c.JSON(http.StatusOK, gin.H{"message": "Отметка удалена"})
}
