package handlers

import (
	"encoding/csv"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"bankbot/internal/bot"
	"bankbot/internal/corpus"
	"bankbot/internal/models"
	"bankbot/internal/services"
)

// AdminHandler handles the admin dashboard operations
type AdminHandler struct {
	corpusStore *corpus.Store
	queryLog    *services.QueryLogService
	faqService  *services.FAQService
	userService *services.UserService
	contexts    *services.UserContextService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(corpusStore *corpus.Store, queryLog *services.QueryLogService, faqService *services.FAQService, userService *services.UserService, contexts *services.UserContextService) *AdminHandler {
	return &AdminHandler{
		corpusStore: corpusStore,
		queryLog:    queryLog,
		faqService:  faqService,
		userService: userService,
		contexts:    contexts,
	}
}

// ListCorpus returns the full dataset
// GET /api/admin/corpus
func (h *AdminHandler) ListCorpus(c *fiber.Ctx) error {
	rows := h.corpusStore.Rows()
	return c.JSON(fiber.Map{
		"rows":  rows,
		"count": len(rows),
	})
}

// AddCorpusRow appends one labeled example to the dataset
// POST /api/admin/corpus
func (h *AdminHandler) AddCorpusRow(c *fiber.Ctx) error {
	var req models.AddCorpusRowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Text = strings.TrimSpace(req.Text)
	req.Intent = strings.TrimSpace(req.Intent)
	if req.Text == "" || req.Intent == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text and intent are required",
		})
	}

	added, err := h.corpusStore.Append(req.Text, req.Intent, req.Response, req.Entities)
	if err != nil {
		log.Printf("❌ Failed to append corpus row: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save corpus row",
		})
	}
	if added {
		if m := services.GetMetrics(); m != nil {
			m.CorpusAppends.Inc()
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"added": added,
		"count": h.corpusStore.Len(),
	})
}

// UploadCorpus replaces the whole dataset from an uploaded CSV file
// POST /api/admin/corpus/upload
func (h *AdminHandler) UploadCorpus(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CSV file is required",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse CSV file",
		})
	}

	rows := make([]models.CorpusRow, 0, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 && strings.EqualFold(strings.TrimPrefix(record[0], "\uFEFF"), "text") {
			continue
		}
		if len(record) == 0 {
			continue
		}
		row := models.CorpusRow{Text: strings.TrimSpace(record[0])}
		if len(record) > 1 {
			row.Intent = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			row.Response = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			row.Entities = strings.TrimSpace(record[3])
		}
		if row.Text == "" {
			continue
		}
		rows = append(rows, row)
	}

	if err := h.corpusStore.Replace(rows); err != nil {
		log.Printf("❌ Failed to replace corpus: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save dataset",
		})
	}

	log.Printf("✅ Corpus replaced by upload: %d rows", len(rows))
	return c.JSON(fiber.Map{
		"count": len(rows),
	})
}

// ListQueries returns the logged chat queries
// GET /api/admin/queries
func (h *AdminHandler) ListQueries(c *fiber.Ctx) error {
	entries, err := h.queryLog.Entries()
	if err != nil {
		log.Printf("❌ Failed to read query log: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read query log",
		})
	}
	if entries == nil {
		entries = []models.QueryLogEntry{}
	}
	return c.JSON(fiber.Map{
		"queries": entries,
		"count":   len(entries),
	})
}

// DownloadQueriesCSV streams the query log as a CSV attachment
// GET /api/admin/queries/export/csv
func (h *AdminHandler) DownloadQueriesCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="user_queries.csv"`)
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.SendFile(h.queryLog.Path())
}

// ExportQueriesXLSX exports the query log as an Excel workbook
// GET /api/admin/queries/export/xlsx
func (h *AdminHandler) ExportQueriesXLSX(c *fiber.Ctx) error {
	entries, err := h.queryLog.Entries()
	if err != nil {
		log.Printf("❌ Failed to read query log: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read query log",
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Queries"
	f.SetSheetName("Sheet1", sheet)

	header := []string{"Query", "Intent", "Confidence", "Date"}
	for i, title := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i, entry := range entries {
		values := []any{
			entry.Query,
			entry.Intent,
			entry.Confidence,
			entry.Date.Format(time.RFC3339),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Printf("❌ Failed to build XLSX export: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build export",
		})
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="user_queries.xlsx"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

// ListFAQs returns the curated FAQ list
// GET /api/admin/faqs
func (h *AdminHandler) ListFAQs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"faqs": h.faqService.List(),
	})
}

// AddFAQ appends one question/answer pair
// POST /api/admin/faqs
func (h *AdminHandler) AddFAQ(c *fiber.Ctx) error {
	var req models.FAQ
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Question = strings.TrimSpace(req.Question)
	req.Answer = strings.TrimSpace(req.Answer)
	if req.Question == "" || req.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question and answer are required",
		})
	}

	if err := h.faqService.Add(req.Question, req.Answer); err != nil {
		log.Printf("❌ Failed to add FAQ: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save FAQ",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"faqs": h.faqService.List(),
	})
}

// Stats returns dashboard aggregates: query volume per intent, corpus size
// and registered users
// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	byIntent, total, err := h.queryLog.CountByIntent()
	if err != nil {
		log.Printf("❌ Failed to aggregate query log: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	users, err := h.userService.Count()
	if err != nil {
		log.Printf("⚠️ Failed to count users: %v", err)
	}

	return c.JSON(models.QueryStats{
		TotalQueries: total,
		ByIntent:     byIntent,
		CorpusRows:   h.corpusStore.Len(),
		Users:        users,
		ChatUsers:    h.contexts.Count(),
	})
}

// StatsBreakdown returns the per-intent chart rows with palette colors
// GET /api/admin/stats/intents
func (h *AdminHandler) StatsBreakdown(c *fiber.Ctx) error {
	byIntent, total, err := h.queryLog.CountByIntent()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	intents := make([]string, 0, len(byIntent))
	for intent := range byIntent {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	breakdown := make([]fiber.Map, 0, len(intents))
	for _, intent := range intents {
		count := byIntent[intent]
		percent := 0.0
		if total > 0 {
			percent = float64(count) / float64(total) * 100
		}
		breakdown = append(breakdown, fiber.Map{
			"intent":  intent,
			"count":   count,
			"percent": percent,
			"color":   bot.IntentColor(intent),
		})
	}

	return c.JSON(fiber.Map{
		"total":   total,
		"intents": breakdown,
	})
}
