// Package csvio reads and writes the 16-column CSV metadata format used
// for whole-collection backups. The file mixes list rows and card rows,
// discriminated by the leading type column; the current-list pointer rides
// in the listId column of list rows.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
)

var header = []string{
	"type", "id", "word", "meaning", "practiced", "known",
	"timesShown", "correctCount", "wrongCount", "successRate",
	"lastAskedAt", "scheduleIndex", "nextDueAt", "listId", "listName", "createdAt",
}

const (
	colType = iota
	colID
	colWord
	colMeaning
	colPracticed
	colKnown
	colTimesShown
	colCorrectCount
	colWrongCount
	colSuccessRate
	colLastAskedAt
	colScheduleIndex
	colNextDueAt
	colListID
	colListName
	colCreatedAt
)

var validate = validator.New()

// Export writes the full collection as CSV. Fields containing commas,
// quotes or newlines are quoted with doubled internal quotes per RFC 4180.
func Export(col domain.Collection) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, list := range col.Lists {
		row := make([]string, len(header))
		row[colType] = "list"
		row[colID] = list.ID
		row[colListID] = col.CurrentListID
		row[colListName] = list.Name
		row[colCreatedAt] = list.CreatedAt.Format(time.RFC3339Nano)
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write list row: %w", err)
		}
	}

	for _, card := range col.Cards {
		listName := ""
		if l := col.FindList(card.ListID); l != nil {
			listName = l.Name
		}
		row := make([]string, len(header))
		row[colType] = "card"
		row[colID] = card.ID
		row[colWord] = card.Word
		row[colMeaning] = card.Meaning
		row[colPracticed] = strconv.FormatBool(card.Practiced)
		row[colKnown] = strconv.FormatBool(card.Known)
		row[colTimesShown] = strconv.Itoa(card.TimesShown)
		row[colCorrectCount] = strconv.Itoa(card.CorrectCount)
		row[colWrongCount] = strconv.Itoa(card.WrongCount)
		row[colSuccessRate] = strconv.FormatFloat(card.SuccessRate, 'g', -1, 64)
		row[colLastAskedAt] = formatTime(card.LastAskedAt)
		row[colScheduleIndex] = strconv.Itoa(card.ScheduleIndex)
		row[colNextDueAt] = formatTime(card.NextDueAt)
		row[colListID] = card.ListID
		row[colListName] = listName
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write card row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses a CSV backup into a collection. The header row is skipped,
// rows are dispatched by their type column, malformed numeric or boolean
// fields default to zero values, and rows that fail validation are skipped
// rather than failing the import.
func Import(r io.Reader) (domain.Collection, error) {
	var col domain.Collection

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return col, fmt.Errorf("parse csv: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		// Tolerate short rows by padding to the full column count.
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		switch row[colType] {
		case "list":
			list := &domain.List{
				ID:        row[colID],
				Name:      row[colListName],
				CreatedAt: parseTimeOrNow(row[colCreatedAt]),
			}
			if validate.Struct(list) != nil {
				continue
			}
			col.Lists = append(col.Lists, list)
			// The listId column of a list row stores the active-list pointer.
			if row[colListID] == row[colID] {
				col.CurrentListID = row[colID]
			}
		case "card":
			card := &domain.Card{
				ID:            row[colID],
				Word:          row[colWord],
				Meaning:       row[colMeaning],
				Practiced:     row[colPracticed] == "true",
				Known:         row[colKnown] == "true",
				TimesShown:    parseInt(row[colTimesShown]),
				CorrectCount:  parseInt(row[colCorrectCount]),
				WrongCount:    parseInt(row[colWrongCount]),
				LastAskedAt:   parseTime(row[colLastAskedAt]),
				ScheduleIndex: parseInt(row[colScheduleIndex]),
				NextDueAt:     parseTime(row[colNextDueAt]),
				ListID:        row[colListID],
			}
			card.RecomputeSuccessRate()
			scheduler.ClampIndex(card)
			if validate.Struct(card) != nil {
				continue
			}
			col.Cards = append(col.Cards, card)
		}
	}
	return col, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseTimeOrNow(s string) time.Time {
	if t := parseTime(s); t != nil {
		return *t
	}
	return time.Now().UTC()
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
