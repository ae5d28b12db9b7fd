// gymnast-crm/internal/handlers/group_sync_test.go

package handlers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymnast-crm/internal/schedulekey"
	"gymnast-crm/models"
)

// newTestDB поднимает in-memory SQLite с той же схемой, что и боевая база.
// Одно соединение, иначе ":memory:" живёт в нескольких независимых копиях.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("открытие тестовой базы: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("получение *sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Coach{},
		&models.Student{},
		&models.TrainingGroup{},
		&models.StudentTrainingSchedule{},
		&models.TrainingSession{},
	)
	if err != nil {
		t.Fatalf("миграция тестовой базы: %v", err)
	}
	return db
}

func createTestCoach(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	coach := models.Coach{LastName: "Иванов", FirstName: "Пётр"}
	if err := db.Create(&coach).Error; err != nil {
		t.Fatalf("создание тренера: %v", err)
	}
	return coach.ID
}

func createTestStudent(t *testing.T, db *gorm.DB, coachID *uint, entries []schedulekey.Entry) *models.Student {
	t.Helper()
	student := models.Student{
		LastName:         "Петрова",
		FirstName:        "Анна",
		CoachID:          coachID,
		TrainingDays:     trainingDaysOf(entries),
		TrainingSchedule: entries,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("создание ученика: %v", err)
	}
	return &student
}

func scheduleRowsFor(t *testing.T, db *gorm.DB, studentID uint) []models.StudentTrainingSchedule {
	t.Helper()
	var rows []models.StudentTrainingSchedule
	if err := db.Where("student_id = ?", studentID).Order("day_of_week").Find(&rows).Error; err != nil {
		t.Fatalf("чтение строк расписания: %v", err)
	}
	return rows
}

func TestResolveOrCreateTrainingGroupIdempotent(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	key := "mon:16:00:18:00|sat:16:00:18:00"

	first, err := ResolveOrCreateTrainingGroup(db, coachID, key, "SAT/MON 4 PM")
	if err != nil {
		t.Fatalf("первый вызов: %v", err)
	}
	second, err := ResolveOrCreateTrainingGroup(db, coachID, key, "другое имя")
	if err != nil {
		t.Fatalf("второй вызов: %v", err)
	}
	if first != second {
		t.Errorf("повторный вызов вернул другой ID: %d != %d", second, first)
	}

	var count int64
	db.Model(&models.TrainingGroup{}).Where("coach_id = ? AND schedule_key = ?", coachID, key).Count(&count)
	if count != 1 {
		t.Errorf("групп с бизнес-ключом должно быть ровно 1, получили %d", count)
	}

	var group models.TrainingGroup
	db.First(&group, first)
	if group.Name != "SAT/MON 4 PM" {
		t.Errorf("повторный вызов не должен менять имя: %q", group.Name)
	}
}

func TestResolveOrCreateTrainingGroupPerCoach(t *testing.T) {
	db := newTestDB(t)
	coachA := createTestCoach(t, db)
	coachB := createTestCoach(t, db)
	key := "wed:17:00:19:00"

	idA, err := ResolveOrCreateTrainingGroup(db, coachA, key, "WED 5 PM")
	if err != nil {
		t.Fatalf("группа тренера A: %v", err)
	}
	idB, err := ResolveOrCreateTrainingGroup(db, coachB, key, "WED 5 PM")
	if err != nil {
		t.Fatalf("группа тренера B: %v", err)
	}
	if idA == idB {
		t.Errorf("один ключ у разных тренеров должен давать разные группы")
	}
}

func TestEnsureTrainingSession(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	entry := schedulekey.Entry{Day: "wed", Start: "17:00", End: "19:00"}

	if err := EnsureTrainingSession(db, coachID, entry); err != nil {
		t.Fatalf("первый вызов: %v", err)
	}
	if err := EnsureTrainingSession(db, coachID, entry); err != nil {
		t.Fatalf("повторный вызов: %v", err)
	}

	var sessions []models.TrainingSession
	db.Where("coach_id = ?", coachID).Find(&sessions)
	if len(sessions) != 1 {
		t.Fatalf("ожидали одно занятие, получили %d", len(sessions))
	}
	s := sessions[0]
	if s.DayOfWeek != "Wednesday" {
		t.Errorf("день должен храниться полным названием, получили %q", s.DayOfWeek)
	}
	if s.Title != DefaultSessionTitle || s.Capacity != DefaultSessionCapacity {
		t.Errorf("значения по умолчанию не применились: %q / %d", s.Title, s.Capacity)
	}

	if err := EnsureTrainingSession(db, coachID, schedulekey.Entry{Day: "пнд", Start: "17:00", End: "19:00"}); err == nil {
		t.Error("неизвестный код дня должен давать ошибку")
	}
}

func TestProjectStudentScheduleReplacesRows(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	old := []schedulekey.Entry{
		{Day: "sat", Start: "16:00", End: "18:00"},
		{Day: "mon", Start: "16:00", End: "18:00"},
	}
	student := createTestStudent(t, db, &coachID, old)

	warnings, err := ProjectStudentSchedule(db, student.ID, &coachID, old)
	if err != nil {
		t.Fatalf("первая синхронизация: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("предупреждений быть не должно: %v", warnings)
	}
	if rows := scheduleRowsFor(t, db, student.ID); len(rows) != 2 {
		t.Fatalf("ожидали 2 строки, получили %d", len(rows))
	}

	// Правка расписания полностью вытесняет старые строки.
	updated := []schedulekey.Entry{{Day: "wed", Start: "10:00", End: "11:30"}}
	if _, err := ProjectStudentSchedule(db, student.ID, &coachID, updated); err != nil {
		t.Fatalf("повторная синхронизация: %v", err)
	}
	rows := scheduleRowsFor(t, db, student.ID)
	if len(rows) != 1 {
		t.Fatalf("ожидали 1 строку после правки, получили %d", len(rows))
	}
	if rows[0].DayOfWeek != "wed" || rows[0].StartTime != "10:00" || rows[0].EndTime != "11:30" {
		t.Errorf("строка не совпадает с новым расписанием: %+v", rows[0])
	}

	var sessions int64
	db.Model(&models.TrainingSession{}).Where("coach_id = ?", coachID).Count(&sessions)
	if sessions != 3 {
		t.Errorf("ожидали 3 занятия в календаре, получили %d", sessions)
	}
}

func TestProjectStudentScheduleWarnsOnUnknownDay(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	entries := []schedulekey.Entry{
		{Day: "sat", Start: "16:00", End: "18:00"},
		{Day: "xyz", Start: "16:00", End: "18:00"},
	}
	student := createTestStudent(t, db, &coachID, entries)

	warnings, err := ProjectStudentSchedule(db, student.ID, &coachID, entries)
	if err != nil {
		t.Fatalf("синхронизация: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("ожидали одно предупреждение, получили %v", warnings)
	}
	// Строки расписания пишутся до календаря и не откатываются.
	if rows := scheduleRowsFor(t, db, student.ID); len(rows) != 2 {
		t.Errorf("сбой календаря не должен терять строки: %d", len(rows))
	}
}

func TestProjectStudentScheduleWithoutCoach(t *testing.T) {
	db := newTestDB(t)
	entries := []schedulekey.Entry{{Day: "fri", Start: "09:00", End: "10:00"}}
	student := createTestStudent(t, db, nil, entries)

	warnings, err := ProjectStudentSchedule(db, student.ID, nil, entries)
	if err != nil {
		t.Fatalf("синхронизация без тренера: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("предупреждений быть не должно: %v", warnings)
	}
	if rows := scheduleRowsFor(t, db, student.ID); len(rows) != 1 {
		t.Errorf("строки пишутся и без тренера: %d", len(rows))
	}
	var sessions int64
	db.Model(&models.TrainingSession{}).Count(&sessions)
	if sessions != 0 {
		t.Errorf("без тренера занятия не создаются: %d", sessions)
	}
}

func TestSaveTrainingGroupCreatesAndAssigns(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	s1 := createTestStudent(t, db, nil, nil)
	s2 := createTestStudent(t, db, nil, nil)

	input := TrainingGroupInput{
		CoachID: coachID,
		Days:    []string{"sat", "mon"},
		Schedule: map[string]DaySlotInput{
			"sat": {Start: "16:00", Duration: 120},
			"mon": {Start: "16:00", Duration: 120},
		},
		StudentIDs: []uint{s1.ID, s2.ID},
	}
	group, warnings, err := SaveTrainingGroup(db, nil, input)
	if err != nil {
		t.Fatalf("сохранение группы: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("предупреждений быть не должно: %v", warnings)
	}

	wantKey := "mon:16:00:18:00|sat:16:00:18:00"
	if group.ScheduleKey != wantKey {
		t.Errorf("ключ группы: %q, ожидали %q", group.ScheduleKey, wantKey)
	}
	// Дни в автоимени идут в отсортированном порядке слотов.
	if group.Name != "MON/SAT 4 PM" {
		t.Errorf("автоимя группы: %q", group.Name)
	}

	for _, id := range []uint{s1.ID, s2.ID} {
		var student models.Student
		if err := db.First(&student, id).Error; err != nil {
			t.Fatalf("чтение ученика %d: %v", id, err)
		}
		if student.TrainingGroupID == nil || *student.TrainingGroupID != group.ID {
			t.Errorf("ученик %d не привязан к группе", id)
		}
		if student.CoachID == nil || *student.CoachID != coachID {
			t.Errorf("ученику %d не назначен тренер", id)
		}
		if schedulekey.Encode(student.TrainingSchedule) != wantKey {
			t.Errorf("расписание ученика %d не совпадает с группой", id)
		}
		if rows := scheduleRowsFor(t, db, id); len(rows) != 2 {
			t.Errorf("ученик %d: ожидали 2 строки расписания, получили %d", id, len(rows))
		}
	}

	var sessions int64
	db.Model(&models.TrainingSession{}).Where("coach_id = ?", coachID).Count(&sessions)
	if sessions != 2 {
		t.Errorf("ожидали 2 занятия в календаре, получили %d", sessions)
	}
}

func TestSaveTrainingGroupDetachesRemoved(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	a := createTestStudent(t, db, nil, nil)
	b := createTestStudent(t, db, nil, nil)
	c := createTestStudent(t, db, nil, nil)

	input := TrainingGroupInput{
		CoachID:    coachID,
		Days:       []string{"tue"},
		Schedule:   map[string]DaySlotInput{"tue": {Start: "18:00", Duration: 90}},
		StudentIDs: []uint{a.ID, b.ID, c.ID},
	}
	group, _, err := SaveTrainingGroup(db, nil, input)
	if err != nil {
		t.Fatalf("создание группы: %v", err)
	}

	// Убираем третьего из состава.
	input.StudentIDs = []uint{a.ID, b.ID}
	gid := group.ID
	if _, _, err := SaveTrainingGroup(db, &gid, input); err != nil {
		t.Fatalf("правка состава: %v", err)
	}

	var removed models.Student
	if err := db.First(&removed, c.ID).Error; err != nil {
		t.Fatalf("чтение открепленного: %v", err)
	}
	if removed.TrainingGroupID != nil {
		t.Errorf("убранный из состава должен остаться без группы")
	}
	// Личное расписание открепленного не стирается.
	if len(removed.TrainingSchedule) != 1 || removed.TrainingSchedule[0].Day != "tue" {
		t.Errorf("личное расписание открепленного изменилось: %+v", removed.TrainingSchedule)
	}

	for _, id := range []uint{a.ID, b.ID} {
		var student models.Student
		db.First(&student, id)
		if student.TrainingGroupID == nil || *student.TrainingGroupID != group.ID {
			t.Errorf("оставшийся ученик %d потерял привязку к группе", id)
		}
	}
}

func TestSaveTrainingGroupRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)

	cases := []struct {
		name  string
		input TrainingGroupInput
	}{
		{
			name: "неизвестный день",
			input: TrainingGroupInput{
				CoachID:  coachID,
				Days:     []string{"xyz"},
				Schedule: map[string]DaySlotInput{"xyz": {Start: "16:00", Duration: 60}},
			},
		},
		{
			name: "день без времени",
			input: TrainingGroupInput{
				CoachID:  coachID,
				Days:     []string{"sat"},
				Schedule: map[string]DaySlotInput{},
			},
		},
		{
			name: "нулевая длительность",
			input: TrainingGroupInput{
				CoachID:  coachID,
				Days:     []string{"sat"},
				Schedule: map[string]DaySlotInput{"sat": {Start: "16:00", Duration: 0}},
			},
		},
		{
			name: "день указан дважды",
			input: TrainingGroupInput{
				CoachID:  coachID,
				Days:     []string{"sat", "sat"},
				Schedule: map[string]DaySlotInput{"sat": {Start: "16:00", Duration: 120}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := SaveTrainingGroup(db, nil, tc.input); err == nil {
				t.Error("ожидали ошибку валидации")
			}
		})
	}

	// Валидация срабатывает до первой записи: ни одна группа не создана.
	var groups int64
	db.Model(&models.TrainingGroup{}).Count(&groups)
	if groups != 0 {
		t.Errorf("невалидный ввод не должен создавать группы: %d", groups)
	}
}

func TestSaveTrainingGroupWarnsOnRowReplacementFailure(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	student := createTestStudent(t, db, nil, nil)

	// Ломаем шаг перезаписи строк: без таблицы он обязан вернуть ошибку.
	if err := db.Migrator().DropTable(&models.StudentTrainingSchedule{}); err != nil {
		t.Fatalf("удаление таблицы строк расписания: %v", err)
	}

	input := TrainingGroupInput{
		CoachID:    coachID,
		Days:       []string{"sat"},
		Schedule:   map[string]DaySlotInput{"sat": {Start: "16:00", Duration: 120}},
		StudentIDs: []uint{student.ID},
	}
	group, warnings, err := SaveTrainingGroup(db, nil, input)
	if err != nil {
		t.Fatalf("сбой производного шага не должен ронять сохранение группы: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("ожидали предупреждение о строках расписания")
	}

	// Группа записана, участник привязан, повторная отправка не нужна.
	var count int64
	db.Model(&models.TrainingGroup{}).Where("coach_id = ?", coachID).Count(&count)
	if count != 1 {
		t.Errorf("ожидали одну сохранённую группу, получили %d", count)
	}
	var member models.Student
	db.First(&member, student.ID)
	if member.TrainingGroupID == nil || *member.TrainingGroupID != group.ID {
		t.Error("участник должен остаться привязанным к группе")
	}
}

func TestReconcileTrainingGroupsConverges(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	entries := []schedulekey.Entry{
		{Day: "sat", Start: "16:00", End: "18:00"},
		{Day: "mon", Start: "16:00", End: "18:00"},
	}
	student := createTestStudent(t, db, &coachID, entries)

	// Ученик привязан к группе с чужим ключом: рассинхрон после кривой правки.
	stale := models.TrainingGroup{Name: "Старая", CoachID: coachID, ScheduleKey: "fri:09:00:10:00"}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("создание старой группы: %v", err)
	}
	if err := db.Model(&models.Student{}).Where("id = ?", student.ID).
		Update("training_group_id", stale.ID).Error; err != nil {
		t.Fatalf("привязка к старой группе: %v", err)
	}

	repaired, err := ReconcileTrainingGroups(db)
	if err != nil {
		t.Fatalf("сверка: %v", err)
	}
	if repaired != 1 {
		t.Fatalf("ожидали 1 починку, получили %d", repaired)
	}

	var fixed models.Student
	db.First(&fixed, student.ID)
	if fixed.TrainingGroupID == nil {
		t.Fatal("ученик остался без группы")
	}
	var group models.TrainingGroup
	db.First(&group, *fixed.TrainingGroupID)
	if want := schedulekey.Encode(entries); group.ScheduleKey != want {
		t.Errorf("ключ новой группы %q, ожидали %q", group.ScheduleKey, want)
	}

	// Повторный проход ничего не меняет.
	repaired, err = ReconcileTrainingGroups(db)
	if err != nil {
		t.Fatalf("повторная сверка: %v", err)
	}
	if repaired != 0 {
		t.Errorf("повторная сверка должна быть пустой, получили %d", repaired)
	}

	// Пустая группа не удаляется автоматически.
	var staleCount int64
	db.Model(&models.TrainingGroup{}).Where("id = ?", stale.ID).Count(&staleCount)
	if staleCount != 1 {
		t.Error("опустевшая группа не должна удаляться сверкой")
	}
}

func TestReconcileSkipsStudentsWithoutSchedule(t *testing.T) {
	db := newTestDB(t)
	coachID := createTestCoach(t, db)
	createTestStudent(t, db, &coachID, nil)
	createTestStudent(t, db, nil, []schedulekey.Entry{{Day: "sat", Start: "16:00", End: "18:00"}})

	repaired, err := ReconcileTrainingGroups(db)
	if err != nil {
		t.Fatalf("сверка: %v", err)
	}
	if repaired != 0 {
		t.Errorf("без тренера или расписания чинить нечего, получили %d", repaired)
	}
	var groups int64
	db.Model(&models.TrainingGroup{}).Count(&groups)
	if groups != 0 {
		t.Errorf("групп создаваться не должно: %d", groups)
	}
}
