// Package report renders admin spreadsheets.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	bookingRepo "ctrlroom/database/repository/booking"
	engineerRepo "ctrlroom/database/repository/engineer"
	"ctrlroom/models"

	"github.com/xuri/excelize/v2"
)

var ErrInvalidRange = errors.New("invalid date range")

// MaxRangeDays bounds a single export.
const MaxRangeDays = 366

var bookingColumns = []string{
	"Booking ID", "Date", "Start", "End", "Hours", "Engineer", "Client ID",
	"Status", "Total", "Currency", "Payment Reference", "Cancel Reason", "Created At",
}

type Exporter struct {
	bookings  bookingRepo.BookingRepository
	engineers engineerRepo.EngineerRepository
}

func NewExporter(bookings bookingRepo.BookingRepository, engineers engineerRepo.EngineerRepository) *Exporter {
	return &Exporter{bookings: bookings, engineers: engineers}
}

// ParseRange validates a from/to pair of YYYY-MM-DD dates.
func ParseRange(from, to string) (string, string, error) {
	f, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return "", "", fmt.Errorf("%w: from %q", ErrInvalidRange, from)
	}
	t, err := time.Parse(models.DateLayout, to)
	if err != nil {
		return "", "", fmt.Errorf("%w: to %q", ErrInvalidRange, to)
	}
	if t.Before(f) {
		return "", "", fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	if t.Sub(f) > MaxRangeDays*24*time.Hour {
		return "", "", fmt.Errorf("%w: at most %d days", ErrInvalidRange, MaxRangeDays)
	}
	return from, to, nil
}

// WriteBookings writes an XLSX workbook with every booking dated from..to and
// a per-engineer summary of confirmed revenue.
func (e *Exporter) WriteBookings(ctx context.Context, from, to string, w io.Writer) error {
	if _, _, err := ParseRange(from, to); err != nil {
		return err
	}
	list, err := e.bookings.ListByDateRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}
	names := map[string]string{}
	if engineers, err := e.engineers.List(ctx); err == nil {
		for _, eng := range engineers {
			names[eng.ID] = eng.Name
		}
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, toRow(bookingColumns)); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", end, style)
	}

	type summary struct {
		confirmed int
		revenue   float64
	}
	totals := map[string]*summary{}
	for i, b := range list {
		row := []interface{}{
			b.ID, b.Date, b.Interval.Start.String(), b.Interval.End.String(), b.DurationHours,
			name(b.EngineerID), b.ClientID, string(b.Status), b.TotalAmount, b.Currency,
			b.PaymentReference, b.CancelReason, b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
		if b.Status == models.StatusConfirmed {
			s := totals[b.EngineerID]
			if s == nil {
				s = &summary{}
				totals[b.EngineerID] = s
			}
			s.confirmed++
			s.revenue += b.TotalAmount
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", summarySheet, err)
	}
	if err := writeRow(f, summarySheet, 1, []interface{}{"Engineer", "Confirmed Sessions", "Revenue"}); err != nil {
		return err
	}
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return name(ids[i]) < name(ids[j]) })
	for i, id := range ids {
		if err := writeRow(f, summarySheet, i+2, []interface{}{name(id), totals[id].confirmed, totals[id].revenue}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func toRow(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
