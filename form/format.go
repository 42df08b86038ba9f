package form

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Mode selects the output surface a value is formatted for.
type Mode int

const (
	// Display may embed interactive affordances: open-file triggers for
	// FILE_UPLOAD, view-table triggers for GRID.
	Display Mode = iota
	// PlainText must be a single scalar string, used by CSV and search.
	PlainText
	// PassThrough keeps richer native cell types for spreadsheet export.
	PassThrough
)

// NoAnswer is the placeholder rendered for absent answers and for
// display-only questions, which never have one.
const NoAnswer = "-"

// DateLayout is the fixed pattern dates display as. Date answers are
// stored ISO (2006-01-02).
const DateLayout = "02/01/2006"

const dateStoreLayout = "2006-01-02"

// Boolean answers display as two-state labels, never true/false.
const (
	LabelYes = "Yes"
	LabelNo  = "No"
)

// GridRow is one row of the two-column table a grid answer reshapes into
// for display. Unset grid rows are omitted.
type GridRow struct {
	Row   string `json:"row"`
	Value string `json:"value"`
}

// CellAction is the interactive affordance a display-mode cell carries.
type CellAction struct {
	Kind   string `json:"kind"` // "open-file" or "view-table"
	Target string `json:"target,omitempty"`
}

// Cell is one formatted answer. Text is always populated; Rich and the
// display affordances are mode-dependent.
type Cell struct {
	Text   string      `json:"text"`
	Rich   any         `json:"-"`
	Action *CellAction `json:"action,omitempty"`
	Table  []GridRow   `json:"table,omitempty"`
}

// Format renders an answer value for one question type and output mode.
// One dispatch table serves on-screen display, CSV and spreadsheet export.
func Format(code Code, v Value, mode Mode) Cell {
	// display-only types never render their configuration data
	if code.Known() && !code.Answerable() {
		return Cell{Text: NoAnswer, Rich: NoAnswer}
	}
	if v == nil || v.Empty() {
		return Cell{Text: NoAnswer, Rich: NoAnswer}
	}

	switch v := v.(type) {
	case Text:
		text := string(v)
		if code == TypeDate {
			if t, err := time.Parse(dateStoreLayout, text); err == nil {
				text = t.Format(DateLayout)
			}
		}
		return Cell{Text: text, Rich: text}

	case Number:
		text := strconv.FormatFloat(float64(v), 'f', -1, 64)
		return Cell{Text: text, Rich: float64(v)}

	case Bool:
		text := LabelNo
		if v {
			text = LabelYes
		}
		if mode == PassThrough {
			return Cell{Text: text, Rich: bool(v)}
		}
		return Cell{Text: text, Rich: text}

	case List:
		text := strings.Join(v, ", ")
		return Cell{Text: text, Rich: text}

	case GridValue:
		text := joinGrid(v)
		cell := Cell{Text: text, Rich: text}
		if mode == Display {
			cell.Table = gridTable(v)
			cell.Action = &CellAction{Kind: "view-table"}
		}
		return cell

	case FileRef:
		path := string(v)
		cell := Cell{Text: path, Rich: path}
		if mode == Display && !IsPendingUpload(v) {
			cell.Action = &CellAction{Kind: "open-file", Target: path}
		}
		return cell

	default:
		return Cell{Text: NoAnswer, Rich: NoAnswer}
	}
}

// FormatPlain is the plain-text mode shortcut used by CSV and search.
func FormatPlain(code Code, v Value) string {
	return Format(code, v, PlainText).Text
}

// joinGrid renders grid selections as "row: value" pairs joined by " | ",
// rows sorted for stable output.
func joinGrid(g GridValue) string {
	rows := make([]string, 0, len(g))
	for r := range g {
		rows = append(rows, r)
	}
	sort.Strings(rows)

	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, r+": "+g[r])
	}
	return strings.Join(parts, " | ")
}

// gridTable reshapes a grid answer into the two-column table shown by the
// view-table affordance.
func gridTable(g GridValue) []GridRow {
	rows := make([]string, 0, len(g))
	for r := range g {
		rows = append(rows, r)
	}
	sort.Strings(rows)

	out := make([]GridRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, GridRow{Row: r, Value: g[r]})
	}
	return out
}

// ParsePlain inverts FormatPlain for scalar and list values, so plain-text
// round trips: ParsePlain(code, FormatPlain(code, v)) == v. Bool is the one
// exception: no type code is exclusively boolean, so its "Yes"/"No" labels
// parse back as literal text.
func ParsePlain(code Code, s string) (Value, error) {
	if s == "" || s == NoAnswer {
		return nil, nil
	}

	switch {
	case code == TypeFileUpload:
		return FileRef(s), nil
	case code.Multi():
		return List(strings.Split(s, ", ")), nil
	case code == TypeNumber || code == TypeLinearScale || code == TypeRating:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case code == TypeDate:
		if t, err := time.Parse(DateLayout, s); err == nil {
			return Text(t.Format(dateStoreLayout)), nil
		}
		return Text(s), nil
	default:
		return Text(s), nil
	}
}
