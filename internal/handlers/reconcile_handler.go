// gymnast-crm/internal/handlers/reconcile_handler.go

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymnast-crm/config"
	"gymnast-crm/internal/schedulekey"
	"gymnast-crm/models"
)

// ReconcileTrainingGroups — массовая сверка: идемпотентный проход по всем
// ученикам с тренером и непустым расписанием, который чинит расхождения
// между расписанием ученика и его группой после частично упавших каскадов.
//
// Ошибка по одному ученику логируется и не прерывает проход — лучше починить
// остальных, чем бросить всю пачку.
func ReconcileTrainingGroups(db *gorm.DB) (int, error) {
	var students []models.Student
	if err := db.Where("coach_id IS NOT NULL").Find(&students).Error; err != nil {
		return 0, fmt.Errorf("не удалось загрузить учеников для сверки: %w", err)
	}

	repaired := 0
	for _, student := range students {
		if len(student.TrainingSchedule) == 0 {
			continue
		}

		scheduleKey := schedulekey.Encode(student.TrainingSchedule)
		fallbackName := schedulekey.GenerateGroupName(
			trainingDaysOf(student.TrainingSchedule),
			student.TrainingSchedule[0].Start,
		)

		groupID, err := ResolveOrCreateTrainingGroup(db, *student.CoachID, scheduleKey, fallbackName)
		if err != nil {
			slog.Error("Сверка: не удалось разрешить группу для ученика",
				"student_id", student.ID, "schedule_key", scheduleKey, "error", err)
			continue
		}

		if student.TrainingGroupID != nil && *student.TrainingGroupID == groupID {
			continue
		}

		if err := db.Model(&models.Student{}).
			Where("id = ?", student.ID).
			Update("training_group_id", groupID).Error; err != nil {
			slog.Error("Сверка: не удалось переназначить группу ученику",
				"student_id", student.ID, "group_id", groupID, "error", err)
			continue
		}

		slog.Info("Сверка: ученик переназначен в группу",
			"student_id", student.ID, "group_id", groupID)
		repaired++
	}

	return repaired, nil
}

// ReconcileTrainingGroupsHandler запускает сверку по запросу (кнопка в
// админке), по расписанию она не выполняется.
func ReconcileTrainingGroupsHandler(c *gin.Context) {
	repaired, err := ReconcileTrainingGroups(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Сверка не выполнена: " + err.Error()})
		return
	}

	if repaired > 0 {
		NotifyChange("students", "reconcile", 0)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "repaired": repaired})
}
