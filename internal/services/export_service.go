package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var csvHeader = []string{
	"description",
	"start_time",
	"end_time",
	"duration_hours",
	"reference_tickets",
}

const (
	csvTotalLabel       = "TOTAL"
	csvTicketsSeparator = "; "
)

type exportServiceImpl struct {
	logger zerolog.Logger
	tasks  TaskService
}

func NewExportService(
	logger zerolog.Logger,
	taskService TaskService,
) ExportService {
	return &exportServiceImpl{
		logger: logger,
		tasks:  taskService,
	}
}

func (s *exportServiceImpl) ExportCSV(ctx context.Context, bounds RangeBounds) (*Export, error) {
	if bounds.Start == nil || bounds.End == nil {
		s.logger.Error().Msg("export bounds missing")
		return nil, ErrMissingExportBounds
	}

	tasks, err := s.tasks.ListTasks(ctx, bounds)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks for export")
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	err = w.Write(csvHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	// The total is accumulated from the unrounded durations and
	// rounded once at the end, so per-row rounding never compounds.
	var totalHours float64
	for _, task := range tasks {
		hours := task.Duration().Hours()
		totalHours += hours

		row := []string{
			task.Description,
			task.StartTime.Format(time.RFC3339),
			task.EndTime.Format(time.RFC3339),
			formatHours(hours),
			strings.Join(task.ReferenceTickets, csvTicketsSeparator),
		}
		err = w.Write(row)
		if err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	totalRow := []string{csvTotalLabel, "", "", formatHours(totalHours), ""}
	err = w.Write(totalRow)
	if err != nil {
		return nil, fmt.Errorf("failed to write csv total row: %w", err)
	}

	w.Flush()
	err = w.Error()
	if err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	export := &Export{
		Filename: exportFilename(*bounds.Start, *bounds.End),
		Data:     buf.Bytes(),
	}
	s.logger.Info().
		Int("tasks", len(tasks)).
		Str("filename", export.Filename).
		Msg("exported csv")
	return export, nil
}

func exportFilename(start, end time.Time) string {
	return fmt.Sprintf("timetracker_export_%s_to_%s.csv",
		start.Format(time.DateOnly), end.Format(time.DateOnly))
}

// formatHours renders a duration in hours with two decimal places,
// rounded half-up.
func formatHours(hours float64) string {
	rounded := math.Floor(hours*100+0.5) / 100
	return strconv.FormatFloat(rounded, 'f', 2, 64)
}
