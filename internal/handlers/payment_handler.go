// gymnast-crm/internal/handlers/payment_handler.go

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"gymnast-crm/config"
	"gymnast-crm/models"
)

type PaymentInput struct {
	StudentID uint    `json:"studentId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	PaidAt    string  `json:"paidAt"` // "2006-01-02"
	Method    string  `json:"method"`
	Kind      string  `json:"kind"`
	Comment   string  `json:"comment"`
}

func ListPaymentsHandler(c *gin.Context) {
	query := config.DB.Model(&models.Payment{}).Preload("Student")

	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("paid_at >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("paid_at <= ?", to)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось посчитать платежи"})
		return
	}

	var payments []models.Payment
	if err := query.Scopes(Paginate(c)).Order("paid_at DESC, id DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список платежей"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, payments, totalRows))
}

func CreatePaymentHandler(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	payment := models.Payment{
		StudentID: input.StudentID,
		Amount:    input.Amount,
		Method:    input.Method,
		Kind:      input.Kind,
		Comment:   input.Comment,
	}
	if payment.Kind == "" {
		payment.Kind = "income"
	}
	if input.PaidAt != "" {
		t, err := time.Parse("2006-01-02", input.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректная дата платежа: " + input.PaidAt})
			return
		}
		payment.PaidAt = &t
	} else {
		now := time.Now()
		payment.PaidAt = &now
	}

	if err := config.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить платеж: " + err.Error()})
		return
	}

	NotifyChange("payments", "create", payment.ID)
	c.JSON(http.StatusCreated, payment)
}

func UpdatePaymentHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID платежа"})
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
		return
	}

	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	payment.StudentID = input.StudentID
	payment.Amount = input.Amount
	payment.Method = input.Method
	payment.Comment = input.Comment
	if input.Kind != "" {
		payment.Kind = input.Kind
	}
	if input.PaidAt != "" {
		t, err := time.Parse("2006-01-02", input.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректная дата платежа: " + input.PaidAt})
			return
		}
		payment.PaidAt = &t
	}

	if err := config.DB.Save(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить платеж: " + err.Error()})
		return
	}

	NotifyChange("payments", "update", payment.ID)
	c.JSON(http.StatusOK, payment)
}

func DeletePaymentHandler(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID платежа"})
		return
	}
	paymentID := uint(id64)

	if err := config.DB.Delete(&models.Payment{}, paymentID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить платеж: " + err.Error()})
		return
	}

	NotifyChange("payments", "delete", paymentID)
	c.JSON(http.StatusOK, gin.H{"message": "Платеж удален"})
}

// GetPaymentReceiptHandler отдает данные для печатной квитанции,
// сумма дублируется прописью.
func GetPaymentReceiptHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID платежа"})
		return
	}

	var payment models.Payment
	if err := config.DB.Preload("Student").First(&payment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
		return
	}

	amountWords := num2words.Convert(int(payment.Amount))

	studentName := ""
	if payment.Student != nil {
		studentName = payment.Student.LastName + " " + payment.Student.FirstName
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":     payment,
		"studentName": studentName,
		"amountWords": amountWords,
	})
}

// ExportPaymentsHandler выгружает платежи в Excel.
func ExportPaymentsHandler(c *gin.Context) {
	var payments []models.Payment
	query := config.DB.Preload("Student").Order("paid_at DESC")
	if from := c.Query("date_from"); from != "" {
		query = query.Where("paid_at >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("paid_at <= ?", to)
	}
	if err := query.Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить платежи для экспорта"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Платежи"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Дата", "ФИО ученика", "Сумма", "Тип", "Способ оплаты", "Комментарий"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, p := range payments {
		row := i + 2
		if p.PaidAt != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.PaidAt.Format("02.01.2006"))
		}
		if p.Student != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), p.Student.LastName+" "+p.Student.FirstName)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), p.Kind)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), p.Method)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), p.Comment)
	}

	fileName := fmt.Sprintf("payments_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сформировать Excel-файл"})
	}
}

// --- ТАРИФЫ ---

type TariffInput struct {
	Name       string  `json:"name" binding:"required"`
	BaseAmount float64 `json:"baseAmount"`
	Formula    string  `json:"formula"`
}

func ListTariffsHandler(c *gin.Context) {
	var tariffs []models.Tariff
	if err := config.DB.Order("name").Find(&tariffs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить список тарифов"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tariffs})
}

func CreateTariffHandler(c *gin.Context) {
	var input TariffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	// Проверяем формулу сразу, а не при первом предпросмотре.
	if input.Formula != "" {
		if _, err := govaluate.NewEvaluableExpression(input.Formula); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка в формуле тарифа: " + input.Formula})
			return
		}
	}

	tariff := models.Tariff{Name: input.Name, BaseAmount: input.BaseAmount, Formula: input.Formula}
	if err := config.DB.Create(&tariff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать тариф: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tariff)
}

func UpdateTariffHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID тарифа"})
		return
	}

	var tariff models.Tariff
	if err := config.DB.First(&tariff, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Тариф не найден"})
		return
	}

	var input TariffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}
	if input.Formula != "" {
		if _, err := govaluate.NewEvaluableExpression(input.Formula); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка в формуле тарифа: " + input.Formula})
			return
		}
	}

	tariff.Name = input.Name
	tariff.BaseAmount = input.BaseAmount
	tariff.Formula = input.Formula
	if err := config.DB.Save(&tariff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обновить тариф: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, tariff)
}

func DeleteTariffHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ID тарифа"})
		return
	}
	if err := config.DB.Delete(&models.Tariff{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить тариф: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Тариф удален"})
}

// PreviewMonthlyFeeHandler вычисляет месячную стоимость по формуле тарифа.
// Параметры формулы берутся из тарифа и недельного расписания ученика:
// "База" — базовая ставка, "Тренировки" — количество тренировок в месяц
// (слоты в неделю * 4).
func PreviewMonthlyFeeHandler(c *gin.Context) {
	var input struct {
		StudentID uint `json:"studentId" binding:"required"`
		TariffID  uint `json:"tariffId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные формы: " + err.Error()})
		return
	}

	var student models.Student
	if err := config.DB.First(&student, input.StudentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ученик не найден"})
		return
	}
	var tariff models.Tariff
	if err := config.DB.First(&tariff, input.TariffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Тариф не найден"})
		return
	}

	if tariff.Formula == "" {
		c.JSON(http.StatusOK, gin.H{"amount": tariff.BaseAmount})
		return
	}

	expression, err := govaluate.NewEvaluableExpression(tariff.Formula)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка в формуле тарифа: " + tariff.Formula})
		return
	}

	parameters := make(map[string]interface{})
	parameters["База"] = tariff.BaseAmount
	parameters["Тренировки"] = float64(len(student.TrainingSchedule) * 4)

	result, err := expression.Evaluate(parameters)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не удалось вычислить формулу: " + tariff.Formula})
		return
	}
	amount, ok := result.(float64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Результат формулы не является числом"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"amount": amount, "weeklySlots": len(student.TrainingSchedule)})
}
