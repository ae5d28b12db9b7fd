// gymnast-crm/internal/handlers/student_handler.go

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"gymnast-crm/config"
	"gymnast-crm/internal/schedulekey"
	"gymnast-crm/models"
)

// --- Структуры для входящих данных и ответов по УЧЕНИКАМ ---

type StudentInput struct {
	LastName    string `json:"lastName" binding:"required"`
	FirstName   string `json:"firstName" binding:"required"`
	Gender      string `json:"gender"`
	BirthDate   string `json:"birthDate"` // "2006-01-02"
	ParentName  string `json:"parentName"`
	ParentPhone string `json:"parentPhone"`
	Comments    string `json:"comments"`
	IsActive    *bool  `json:"isActive"`
	CoachID     *uint  `json:"coachId"`

	// Недельное расписание из формы; может быть пустым (ученик без расписания).
	TrainingSchedule []schedulekey.Entry `json:"trainingSchedule"`
}

type StudentListResponse struct {
	ID        uint   `json:"ID"`
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	CoachName string `json:"coachName"`
	GroupName string `json:"groupName"`
	IsActive  bool   `json:"isActive"`
}

// applyStudentInput переносит данные формы в модель и валидирует расписание
// ДО любой записи в базу.
func applyStudentInput(student *models.Student, input StudentInput) error {
	if err := validateScheduleEntries(input.TrainingSchedule); err != nil {
		return err
	}

	student.LastName = input.LastName
	student.FirstName = input.FirstName
	student.Gender = input.Gender
	student.ParentName = input.ParentName
	student.ParentPhone = input.ParentPhone
	student.Comments = input.Comments
	student.CoachID = input.CoachID
	student.TrainingSchedule = input.TrainingSchedule
	student.TrainingDays = trainingDaysOf(input.TrainingSchedule)

	if input.IsActive != nil {
		student.IsActive = input.IsActive
	} else if student.IsActive == nil {
		b := true
		student.IsActive = &b
	}

	if input.BirthDate != "" {
		t, err := time.Parse("2006-01-02", input.BirthDate)
		if err != nil {
			return fmt.Errorf("некорректная дата рождения: %q", input.BirthDate)
		}
		student.BirthDate = &t
	} else {
		student.BirthDate = nil
	}

	return nil
}

func ListStudentsHandler(c *gin.Context) {
	var students []StudentListResponse
	var totalRows int64

	baseQuery := config.DB.Table("students").
		Select(`
            students.id,
            students.last_name,
            students.first_name,
            COALESCE(coaches.last_name || ' ' || coaches.first_name, '') as coach_name,
            COALESCE(training_groups.name, '') as group_name,
            COALESCE(students.is_active, TRUE) as is_active
        `).
		Joins("LEFT JOIN coaches ON students.coach_id = coaches.id").
		Joins("LEFT JOIN training_groups ON students.training_group_id = training_groups.id").
		Where("students.deleted_at IS NULL")

	if searchQuery := c.Query("search"); searchQuery != "" {
		searchPattern := "%" + strings.ToLower(searchQuery) + "%"
		baseQuery = baseQuery.Where(
			"LOWER(students.last_name) LIKE ? OR LOWER(students.first_name) LIKE ? OR LOWER(students.parent_phone) LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}
	if coachIDStr := c.Query("coach_id"); coachIDStr != "" {
		if coachID, err := strconv.Atoi(coachIDStr); err == nil {
			baseQuery = baseQuery.Where("students.coach_id = ?", coachID)
		}
	}
	if groupIDStr := c.Query("group_id"); groupIDStr != "" {
		if groupID, err := strconv.Atoi(groupIDStr); err == nil {
			baseQuery = baseQuery.Where("students.training_group_id = ?", groupID)
		}
	}

	if c.Query("all") == "true" {
		if err := baseQuery.Order("students.last_name, students.first_name").Scan(&students).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список учеников"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": students})
		return
	}

	if err := baseQuery.Model(&models.Student{}).Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось посчитать учеников"})
		return
	}

	paginatedQuery := baseQuery.Scopes(Paginate(c)).Order("students.last_name, students.first_name")
	if err := paginatedQuery.Scan(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список учеников"})
		return
	}

	if students == nil {
		students = make([]StudentListResponse, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, students, totalRows))
}

func GetStudentHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID ученика"})
		return
	}

	var student models.Student
	if err := config.DB.Preload("Coach").Preload("TrainingGroup").First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ученик не найден"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения данных ученика: " + err.Error()})
		return
	}

	var scheduleRows []models.StudentTrainingSchedule
	if err := config.DB.Where("student_id = ?", student.ID).Find(&scheduleRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить расписание ученика"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": student, "scheduleRows": scheduleRows})
}

func CreateStudentHandler(c *gin.Context) {
	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	var student models.Student
	if err := applyStudentInput(&student, input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать ученика: " + err.Error()})
		return
	}

	// Производные записи — после успешного сохранения анкеты. Сбой здесь не
	// отменяет создание ученика, пользователь увидит предупреждение.
	warnings, err := ProjectStudentSchedule(config.DB, student.ID, student.CoachID, student.TrainingSchedule)
	if err != nil {
		warnings = append(warnings, "расписание сохранено не полностью: "+err.Error())
	}

	NotifyChange("students", "create", student.ID)
	c.JSON(http.StatusCreated, gin.H{"student": student, "warnings": warnings})
}

func UpdateStudentHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID ученика"})
		return
	}
	studentID := uint(id64)

	var student models.Student
	if err := config.DB.First(&student, studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ученик не найден"})
		return
	}

	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}
	if err := applyStudentInput(&student, input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить ученика: " + err.Error()})
		return
	}

	warnings, err := ProjectStudentSchedule(config.DB, student.ID, student.CoachID, student.TrainingSchedule)
	if err != nil {
		warnings = append(warnings, "расписание сохранено не полностью: "+err.Error())
	}

	NotifyChange("students", "update", student.ID)
	c.JSON(http.StatusOK, gin.H{"student": student, "warnings": warnings})
}

func DeleteStudentHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID ученика"})
		return
	}
	studentID := uint(id64)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).
			Delete(&models.StudentTrainingSchedule{}).Error; err != nil {
			return fmt.Errorf("не удалось удалить строки расписания: %w", err)
		}
		if err := tx.Delete(&models.Student{}, studentID).Error; err != nil {
			return fmt.Errorf("не удалось удалить ученика: %w", err)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	NotifyChange("students", "delete", studentID)
	c.JSON(http.StatusOK, gin.H{"message": "Ученик успешно удален"})
}

// ExportStudentsHandler выгружает список учеников в Excel.
func ExportStudentsHandler(c *gin.Context) {
	var students []models.Student
	if err := config.DB.Preload("Coach").Preload("TrainingGroup").
		Where("deleted_at IS NULL").
		Order("last_name, first_name").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить учеников для экспорта"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Ученики"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Фамилия", "Имя", "Телефон родителя", "Тренер", "Группа", "Дни тренировок"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, s := range students {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.LastName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), s.FirstName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), s.ParentPhone)
		if s.Coach != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), s.Coach.LastName+" "+s.Coach.FirstName)
		}
		if s.TrainingGroup != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), s.TrainingGroup.Name)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), strings.Join(s.TrainingDays, ", "))
	}

	fileName := fmt.Sprintf("students_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сформировать Excel-файл"})
	}
}
