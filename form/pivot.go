package form

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubmissionRecord is one persisted submission's identity row.
type SubmissionRecord struct {
	ID              uuid.UUID
	RespondentName  string
	RespondentEmail string
	SubmittedAt     time.Time
}

// AnswerRow is one normalized (submission, question) answer as stored.
type AnswerRow struct {
	SubmissionID uuid.UUID
	QuestionID   uuid.UUID
	Value        Value
}

// Column describes one projected column, in the shape the spreadsheet
// collaborator consumes.
type Column struct {
	Header string `json:"header"`
	Key    string `json:"key"`
	Width  int    `json:"width"`
}

// Table is the projected, denormalized result: one row per submission, one
// column per answerable question plus the fixed identity columns.
type Table struct {
	Columns []Column         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Fixed identity column keys.
const (
	ColRespondentName  = "respondent_name"
	ColRespondentEmail = "respondent_email"
	ColSubmittedAt     = "submitted_at"
)

const submittedAtLayout = "02/01/2006 15:04"

// Project pivots normalized answer rows into one row per submission with
// one column per question id. The column set is the union of the template's
// answerable questions in template order, regardless of which questions any
// given submission answered; absent cells render the NoAnswer placeholder.
// It is a pure function over already-persisted data, safe to run repeatedly
// and concurrently.
func Project(t *Template, subs []SubmissionRecord, answers []AnswerRow, mode Mode) Table {
	questions := t.AnswerableQuestions()

	columns := []Column{
		{Header: "Respondent", Key: ColRespondentName, Width: 24},
		{Header: "Email", Key: ColRespondentEmail, Width: 28},
		{Header: "Submitted at", Key: ColSubmittedAt, Width: 20},
	}
	for _, q := range questions {
		columns = append(columns, Column{
			Header: q.Title,
			Key:    q.ID.String(),
			Width:  columnWidth(q.Title),
		})
	}

	bySubmission := map[uuid.UUID]map[uuid.UUID]Value{}
	for _, a := range answers {
		cells := bySubmission[a.SubmissionID]
		if cells == nil {
			cells = map[uuid.UUID]Value{}
			bySubmission[a.SubmissionID] = cells
		}
		cells[a.QuestionID] = a.Value
	}

	rows := make([]map[string]any, 0, len(subs))
	for _, sub := range subs {
		row := map[string]any{
			ColRespondentName:  respondentLabel(sub),
			ColRespondentEmail: orPlaceholder(sub.RespondentEmail),
			ColSubmittedAt:     sub.SubmittedAt.Format(submittedAtLayout),
		}
		cells := bySubmission[sub.ID]
		for _, q := range questions {
			cell := Format(q.Type, cells[q.ID], mode)
			if mode == PassThrough {
				row[q.ID.String()] = cell.Rich
			} else if mode == Display {
				row[q.ID.String()] = cell
			} else {
				row[q.ID.String()] = cell.Text
			}
		}
		rows = append(rows, row)
	}

	return Table{Columns: columns, Rows: rows}
}

func respondentLabel(sub SubmissionRecord) string {
	if sub.RespondentName == "" {
		return "Anonymous"
	}
	return sub.RespondentName
}

func orPlaceholder(s string) string {
	if s == "" {
		return NoAnswer
	}
	return s
}

func columnWidth(header string) int {
	w := len(header) + 4
	if w < 12 {
		return 12
	}
	if w > 40 {
		return 40
	}
	return w
}

// ExportCSV renders a projected table as CSV bytes: headers first, then one
// record per row. Cells are stringified; rich values are expected to have
// been projected in plain-text mode.
func ExportCSV(tbl Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = c.Header
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range tbl.Rows {
		rec := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			rec[i] = cellString(row[c.Key])
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return NoAnswer
	case string:
		return v
	case Cell:
		return v.Text
	default:
		return fmt.Sprint(v)
	}
}
