package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/danielgol1997-byte/Referee-Website-sub001/internal/service"
)

// ExportTestResults экспортирует результаты теста в CSV или Excel формате
// GET /api/admin/tests/:id/results/export?format=csv|xlsx
func (h *VideoTestHandler) ExportTestResults(c *gin.Context) {
	testID := c.MustGet("testID").(uint)
	format := c.DefaultQuery("format", "csv")

	_, rows, err := h.testService.GetTestResults(testID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	filename := fmt.Sprintf("test_%d_results_%s", testID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *VideoTestHandler) exportCSV(c *gin.Context, rows []service.TestResultRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Сессия", "Пользователь", "Email", "Балл (%)", "Верных", "Всего эпизодов", "Завершено"})

	for _, r := range rows {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.SessionID), 10),
			sanitizeForExcel(r.Username),
			sanitizeForExcel(r.Email),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.CorrectCount),
			strconv.Itoa(r.TotalClips),
			r.CompletedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *VideoTestHandler) exportXLSX(c *gin.Context, rows []service.TestResultRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[VideoTestHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Сессия", "Пользователь", "Email", "Балл (%)", "Верных", "Всего эпизодов", "Завершено"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[VideoTestHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{
			r.SessionID,
			sanitizeForExcel(r.Username),
			sanitizeForExcel(r.Email),
			r.Score,
			r.CorrectCount,
			r.TotalClips,
			r.CompletedAt.Format("2006-01-02 15:04:05"),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[VideoTestHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[VideoTestHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[VideoTestHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
