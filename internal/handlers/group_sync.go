// gymnast-crm/internal/handlers/group_sync.go

package handlers

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gymnast-crm/internal/schedulekey"
	"gymnast-crm/models"
)

// Значения по умолчанию для занятий, создаваемых автоматически из расписания
// ученика или группы. Title хранится в таком виде исторически.
const (
	DefaultSessionTitle    = "Group Training"
	DefaultSessionCapacity = 20
)

// ResolveOrCreateTrainingGroup находит группу по бизнес-ключу
// (тренер, ключ расписания) или создаёт новую с переданным именем.
// Поиск выполняется непосредственно перед вставкой в рамках одного запроса,
// поэтому повторный вызов с теми же аргументами возвращает тот же ID и не
// плодит дубликаты. Гонку двух одновременных запросов это не закрывает —
// известный зазор, который добивает массовая сверка.
func ResolveOrCreateTrainingGroup(db *gorm.DB, coachID uint, scheduleKey, fallbackName string) (uint, error) {
	var group models.TrainingGroup
	err := db.Where("coach_id = ? AND schedule_key = ?", coachID, scheduleKey).First(&group).Error
	switch {
	case err == nil:
		return group.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		group = models.TrainingGroup{
			Name:        fallbackName,
			CoachID:     coachID,
			ScheduleKey: scheduleKey,
		}
		if err := db.Create(&group).Error; err != nil {
			return 0, fmt.Errorf("не удалось создать группу: %w", err)
		}
		return group.ID, nil
	default:
		return 0, err
	}
}

// EnsureTrainingSession гарантирует, что в календаре тренера есть занятие на
// точный кортеж (тренер, полное название дня, начало, конец). Существующее
// занятие никогда не редактируется и не дублируется.
func EnsureTrainingSession(db *gorm.DB, coachID uint, entry schedulekey.Entry) error {
	fullName, ok := schedulekey.FullDayName(entry.Day)
	if !ok {
		return fmt.Errorf("неизвестный код дня недели: %q", entry.Day)
	}

	var session models.TrainingSession
	err := db.Where(
		"coach_id = ? AND day_of_week = ? AND start_time = ? AND end_time = ?",
		coachID, fullName, entry.Start, entry.End,
	).First(&session).Error
	if err == nil {
		return nil // занятие уже есть
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	session = models.TrainingSession{
		CoachID:   coachID,
		DayOfWeek: fullName,
		StartTime: entry.Start,
		EndTime:   entry.End,
		Title:     DefaultSessionTitle,
		Capacity:  DefaultSessionCapacity,
	}
	return db.Create(&session).Error
}

// replaceStudentScheduleRows переписывает строки индивидуального расписания
// для набора учеников: сначала удаляет все их строки, затем вставляет свежие.
// Повторное применение с теми же входными данными даёт тот же набор строк.
func replaceStudentScheduleRows(db *gorm.DB, studentIDs []uint, entries []schedulekey.Entry) error {
	if len(studentIDs) == 0 {
		return nil
	}
	if err := db.Where("student_id IN ?", studentIDs).Delete(&models.StudentTrainingSchedule{}).Error; err != nil {
		return fmt.Errorf("не удалось удалить старые строки расписания: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	rows := make([]models.StudentTrainingSchedule, 0, len(studentIDs)*len(entries))
	for _, studentID := range studentIDs {
		for _, e := range entries {
			rows = append(rows, models.StudentTrainingSchedule{
				StudentID: studentID,
				DayOfWeek: e.Day,
				StartTime: e.Start,
				EndTime:   e.End,
			})
		}
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("не удалось вставить строки расписания: %w", err)
	}
	return nil
}

// trainingDaysOf возвращает коды дней из набора слотов, сохраняя порядок.
func trainingDaysOf(entries []schedulekey.Entry) []string {
	days := make([]string, 0, len(entries))
	for _, e := range entries {
		days = append(days, e.Day)
	}
	return days
}
