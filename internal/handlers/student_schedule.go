// gymnast-crm/internal/handlers/student_schedule.go

package handlers

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"gymnast-crm/internal/schedulekey"
)

// ProjectStudentSchedule приводит производные записи одного ученика в
// соответствие с его недельным расписанием после создания или правки анкеты:
//
//  1. переписывает строки индивидуального расписания (delete-then-insert);
//  2. при назначенном тренере и непустом расписании заводит недостающие
//     занятия в календаре тренера — по одному на каждый слот.
//
// Привязка к группе из анкеты ученика намеренно НЕ выполняется: автогруппировку
// с этого пути отключили, указателем training_group_id управляет форма группы
// (и массовая сверка).
//
// Шаги независимы: сбой на создании занятия не откатывает уже записанные
// строки расписания и возвращается как нефатальное предупреждение — карточка
// ученика важнее производного календаря.
func ProjectStudentSchedule(db *gorm.DB, studentID uint, coachID *uint, entries []schedulekey.Entry) ([]string, error) {
	scheduleKey := schedulekey.Encode(entries)
	slog.Info("Синхронизация расписания ученика", "student_id", studentID, "schedule_key", scheduleKey)

	if err := replaceStudentScheduleRows(db, []uint{studentID}, entries); err != nil {
		return nil, err
	}

	var warnings []string
	if coachID != nil && len(entries) > 0 {
		for _, e := range entries {
			if err := EnsureTrainingSession(db, *coachID, e); err != nil {
				slog.Warn("Не удалось создать занятие в календаре тренера",
					"student_id", studentID, "coach_id", *coachID, "day", e.Day, "error", err)
				warnings = append(warnings,
					fmt.Sprintf("занятие %s %s-%s не создано: %v", e.Day, e.Start, e.End, err))
			}
		}
	}

	return warnings, nil
}
