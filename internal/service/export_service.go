package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/export"
	"github.com/noah-isme/lesson-planner-api/pkg/storage"
)

// ExportFormat selects the rendering of a week plan.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

var weekPlanHeaders = []string{"Date", "Day", "Cycle Day", "Week", "Period", "Subject", "Title", "Notes", "Resources", "Open Todos"}

type weekAssembler interface {
	AssembleWeek(ctx context.Context, weekStart time.Time) (*dto.WeekTimetable, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a rendered week plan.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders week plans to files and hands out signed download links.
type ExportService struct {
	weeks   weekAssembler
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(weeks weekAssembler, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		weeks:   weeks,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// ExportWeek renders the week containing weekStart and stores the result.
func (s *ExportService) ExportWeek(ctx context.Context, weekStart time.Time, format ExportFormat) (*ExportResult, error) {
	result, err := s.exportWeek(ctx, weekStart, format)
	s.metrics.RecordExport(string(format), err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("week plan exported", zap.String("path", result.RelativePath), zap.String("format", string(format)))
	return result, nil
}

func (s *ExportService) exportWeek(ctx context.Context, weekStart time.Time, format ExportFormat) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, validationError(nil, fmt.Sprintf("unsupported export format %q", format))
	}

	week, err := s.weeks.AssembleWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	dataset := WeekDataset(week)
	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, weekTitle(week))
	}
	if err != nil {
		return nil, internalError(err, "failed to render week plan")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("weeks/%s_%s.%s", week.WeekStart, exportID[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, internalError(err, "failed to store week plan")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign export link")
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), url.QueryEscape(token)),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and opens the referenced file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export link is invalid or has expired")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	return file, relPath, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// WeekDataset flattens a week into one row per lesson. Days without lessons
// still get a row so the cycle position is visible.
func WeekDataset(week *dto.WeekTimetable) export.Dataset {
	rows := make([]map[string]string, 0, len(week.Days)*2)
	for _, day := range week.Days {
		base := map[string]string{
			"Date":      day.Date,
			"Day":       day.WeekdayName,
			"Cycle Day": optionalInt(day.CycleDay),
			"Week":      optionalString(day.WeekLabel),
		}
		if day.CycleDay == nil {
			base["Subject"] = "No school"
		}
		if len(day.Lessons) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, lesson := range day.Lessons {
			row := make(map[string]string, len(weekPlanHeaders))
			for key, value := range base {
				row[key] = value
			}
			row["Period"] = strconv.Itoa(lesson.Period)
			if lesson.Subject != nil {
				row["Subject"] = lesson.Subject.Name
			}
			row["Title"] = optionalString(lesson.Title)
			row["Notes"] = strconv.Itoa(len(lesson.Notes))
			row["Resources"] = strconv.Itoa(len(lesson.Resources))
			row["Open Todos"] = strconv.Itoa(openTodos(lesson.Todos))
			rows = append(rows, row)
		}
	}
	return export.Dataset{Headers: weekPlanHeaders, Rows: rows}
}

func weekTitle(week *dto.WeekTimetable) string {
	title := fmt.Sprintf("Week plan %s to %s", week.WeekStart, week.WeekEnd)
	if week.PrimaryWeek != nil {
		title += fmt.Sprintf(" (Week %s)", *week.PrimaryWeek)
	}
	return title
}

func openTodos(todos []dto.TodoItem) int {
	open := 0
	for _, todo := range todos {
		if !todo.IsCompleted {
			open++
		}
	}
	return open
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// ParseExportFormat maps a query value to an ExportFormat, defaulting to CSV.
func ParseExportFormat(raw string) ExportFormat {
	if strings.EqualFold(strings.TrimSpace(raw), string(ExportFormatPDF)) {
		return ExportFormatPDF
	}
	if raw == "" || strings.EqualFold(strings.TrimSpace(raw), string(ExportFormatCSV)) {
		return ExportFormatCSV
	}
	return ExportFormat(strings.ToLower(raw))
}
