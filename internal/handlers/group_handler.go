// gymnast-crm/internal/handlers/group_handler.go

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymnast-crm/config"
	"gymnast-crm/internal/schedulekey"
	"gymnast-crm/models"
)

// DaySlotInput — время начала и длительность тренировки на один день недели,
// как их присылает форма группы.
type DaySlotInput struct {
	Start    string `json:"start" binding:"required"`    // "HH:MM"
	Duration int    `json:"duration" binding:"required"` // минуты
}

// TrainingGroupInput — полезная нагрузка формы создания/правки группы.
type TrainingGroupInput struct {
	Name       string                  `json:"name"`
	CoachID    uint                    `json:"coachId" binding:"required"`
	Days       []string                `json:"days" binding:"required"`
	Schedule   map[string]DaySlotInput `json:"schedule" binding:"required"` // ключ — код дня
	StudentIDs []uint                  `json:"studentIds"`
}

// buildGroupEntries превращает дни и пары {начало, длительность} в слоты
// {день, начало, конец}. Конец считается от начала с переносом через полночь.
// Дни сортируются заранее, чтобы результат был детерминированным (Encode всё
// равно пересортирует — это подстраховка, а не требование).
func buildGroupEntries(days []string, schedule map[string]DaySlotInput) ([]schedulekey.Entry, error) {
	sorted := append([]string(nil), days...)
	sort.Strings(sorted)

	entries := make([]schedulekey.Entry, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, day := range sorted {
		if !schedulekey.KnownDayCode(day) {
			return nil, fmt.Errorf("неизвестный код дня недели: %q", day)
		}
		if seen[day] {
			return nil, fmt.Errorf("день %q указан в расписании дважды", day)
		}
		seen[day] = true
		slot, ok := schedule[day]
		if !ok {
			return nil, fmt.Errorf("для дня %q не задано время тренировки", day)
		}
		startMin, ok := schedulekey.MinuteOfDay(slot.Start)
		if !ok {
			return nil, fmt.Errorf("некорректное время начала %q для дня %q", slot.Start, day)
		}
		if slot.Duration <= 0 {
			return nil, fmt.Errorf("некорректная длительность %d для дня %q", slot.Duration, day)
		}
		entries = append(entries, schedulekey.Entry{
			Day:   day,
			Start: slot.Start,
			End:   schedulekey.ClockFromMinutes(startMin + slot.Duration),
		})
	}
	return entries, nil
}

// SaveTrainingGroup — каскад сохранения группы: единственный путь, который
// имеет право переписывать расписание сразу у многих учеников.
//
// Порядок шагов важен: прежний состав читается ДО перезаписи учеников, иначе
// удалённых из состава не отличить от только что добавленных.
func SaveTrainingGroup(db *gorm.DB, groupID *uint, input TrainingGroupInput) (*models.TrainingGroup, []string, error) {
	entries, err := buildGroupEntries(input.Days, input.Schedule)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("расписание группы не может быть пустым")
	}
	scheduleKey := schedulekey.Encode(entries)
	trainingDays := trainingDaysOf(entries)

	name := input.Name
	if name == "" {
		name = schedulekey.GenerateGroupName(trainingDays, entries[0].Start)
	}

	// Прежний состав — до любых записей.
	var previousMemberIDs []uint
	if groupID != nil {
		if err := db.Model(&models.Student{}).
			Where("training_group_id = ?", *groupID).
			Pluck("id", &previousMemberIDs).Error; err != nil {
			return nil, nil, fmt.Errorf("не удалось прочитать текущий состав группы: %w", err)
		}
	}

	var group models.TrainingGroup
	if groupID == nil {
		group = models.TrainingGroup{Name: name, CoachID: input.CoachID, ScheduleKey: scheduleKey}
		if err := db.Create(&group).Error; err != nil {
			return nil, nil, fmt.Errorf("не удалось создать группу: %w", err)
		}
	} else {
		if err := db.First(&group, *groupID).Error; err != nil {
			return nil, nil, fmt.Errorf("группа не найдена: %w", err)
		}
		group.Name = name
		group.CoachID = input.CoachID
		group.ScheduleKey = scheduleKey
		if err := db.Save(&group).Error; err != nil { // Save обновит и updated_at
			return nil, nil, fmt.Errorf("не удалось обновить группу: %w", err)
		}
	}

	// Переписываем каждого выбранного ученика на группу.
	for _, studentID := range input.StudentIDs {
		var student models.Student
		if err := db.First(&student, studentID).Error; err != nil {
			return nil, nil, fmt.Errorf("ученик %d не найден: %w", studentID, err)
		}
		coachID := input.CoachID
		gid := group.ID
		student.CoachID = &coachID
		student.TrainingDays = trainingDays
		student.TrainingSchedule = entries
		student.TrainingGroupID = &gid
		if err := db.Save(&student).Error; err != nil {
			return nil, nil, fmt.Errorf("не удалось обновить ученика %d: %w", studentID, err)
		}
	}

	// Группа уже записана: дальше только производные шаги. Их сбои не
	// откатывают сохранение и возвращаются предупреждениями, как на анкете
	// ученика — иначе пользователь получит ошибку про уже созданную группу
	// и повторной отправкой наплодит дубликаты.
	var warnings []string
	if err := replaceStudentScheduleRows(db, input.StudentIDs, entries); err != nil {
		slog.Warn("Не удалось переписать строки расписания участников группы",
			"group_id", group.ID, "error", err)
		warnings = append(warnings, "расписание участников сохранено не полностью: "+err.Error())
	}

	// Открепляем убранных из состава. Личное расписание им не трогаем:
	// выход из группы не стирает собственные тренировки ученика.
	selected := make(map[uint]bool, len(input.StudentIDs))
	for _, id := range input.StudentIDs {
		selected[id] = true
	}
	for _, prevID := range previousMemberIDs {
		if selected[prevID] {
			continue
		}
		if err := db.Model(&models.Student{}).
			Where("id = ?", prevID).
			Update("training_group_id", nil).Error; err != nil {
			slog.Warn("Не удалось открепить ученика от группы",
				"group_id", group.ID, "student_id", prevID, "error", err)
			warnings = append(warnings,
				fmt.Sprintf("ученик %d не откреплен от группы: %v", prevID, err))
		}
	}

	// Календарь тренера: такое же правило "создать, если точного кортежа нет",
	// как у анкеты ученика.
	for _, e := range entries {
		if err := EnsureTrainingSession(db, input.CoachID, e); err != nil {
			warnings = append(warnings,
				fmt.Sprintf("занятие %s %s-%s не создано: %v", e.Day, e.Start, e.End, err))
		}
	}

	return &group, warnings, nil
}

// --- HTTP-обработчики групп ---

type trainingGroupListItem struct {
	models.TrainingGroup
	MemberCount int64 `json:"memberCount"`
}

func ListTrainingGroupsHandler(c *gin.Context) {
	query := config.DB.Model(&models.TrainingGroup{}).Preload("Coach")
	if coachID := c.Query("coach_id"); coachID != "" {
		query = query.Where("coach_id = ?", coachID)
	}

	var groups []models.TrainingGroup
	if err := query.Order("name").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список групп"})
		return
	}

	items := make([]trainingGroupListItem, 0, len(groups))
	for _, g := range groups {
		var count int64
		config.DB.Model(&models.Student{}).Where("training_group_id = ?", g.ID).Count(&count)
		items = append(items, trainingGroupListItem{TrainingGroup: g, MemberCount: count})
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func GetTrainingGroupHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID группы"})
		return
	}

	var group models.TrainingGroup
	if err := config.DB.Preload("Coach").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Группа не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения группы: " + err.Error()})
		return
	}

	var members []models.Student
	if err := config.DB.Where("training_group_id = ?", group.ID).
		Order("last_name, first_name").Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить состав группы"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":    group,
		"members":  members,
		"schedule": schedulekey.Decode(group.ScheduleKey),
	})
}

func CreateTrainingGroupHandler(c *gin.Context) {
	var input TrainingGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}
	if len(input.Days) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Расписание группы не может быть пустым"})
		return
	}

	group, warnings, err := SaveTrainingGroup(config.DB, nil, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	NotifyChange("training_groups", "create", group.ID)
	c.JSON(http.StatusCreated, gin.H{"group": group, "warnings": warnings})
}

func UpdateTrainingGroupHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID группы"})
		return
	}
	groupID := uint(id64)

	var input TrainingGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}
	if len(input.Days) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Расписание группы не может быть пустым"})
		return
	}

	group, warnings, err := SaveTrainingGroup(config.DB, &groupID, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Группа не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	NotifyChange("training_groups", "update", group.ID)
	c.JSON(http.StatusOK, gin.H{"group": group, "warnings": warnings})
}

// DeleteTrainingGroupHandler — явное удаление группы пользователем.
// Автоматически группы не удаляются даже при нулевом составе.
func DeleteTrainingGroupHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID группы"})
		return
	}
	groupID := uint(id64)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Сначала открепляем участников, потом удаляем саму группу.
		if err := tx.Model(&models.Student{}).
			Where("training_group_id = ?", groupID).
			Update("training_group_id", nil).Error; err != nil {
			return fmt.Errorf("не удалось открепить учеников: %w", err)
		}
		if err := tx.Delete(&models.TrainingGroup{}, groupID).Error; err != nil {
			return fmt.Errorf("не удалось удалить группу: %w", err)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	NotifyChange("training_groups", "delete", groupID)
	c.JSON(http.StatusOK, gin.H{"message": "Группа удалена, ученики откреплены"})
}
