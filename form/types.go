package form

// Code identifies a question type. It is the single discriminant driving
// config decoding, answer decoding, widget rendering, validation and
// formatting; every dispatch table in this package switches on it.
type Code string

const (
	TypeShortText        Code = "SHORT_TEXT"
	TypeLongText         Code = "LONG_TEXT"
	TypeEmail            Code = "EMAIL"
	TypeNumber           Code = "NUMBER"
	TypeDate             Code = "DATE"
	TypeTime             Code = "TIME"
	TypeMultipleChoice   Code = "MULTIPLE_CHOICE"
	TypeRadio            Code = "RADIO"
	TypeCheckbox         Code = "CHECKBOX"
	TypeList             Code = "LIST"
	TypeDropdown         Code = "DROPDOWN"
	TypeDropdownMultiple Code = "DROPDOWN_MULTIPLE"
	TypeLinearScale      Code = "LINEAR_SCALE"
	TypeRating           Code = "RATING"
	TypeFileUpload       Code = "FILE_UPLOAD"
	TypeGrid             Code = "GRID"
	TypeImage            Code = "IMAGE"
	TypeVideo            Code = "VIDEO"
	TypePageBreak        Code = "PAGE_BREAK"
	TypeSectionHeader    Code = "SECTION_HEADER"
)

// TypeInfo is one catalog entry of the question type registry.
type TypeInfo struct {
	Code Code   `json:"code"`
	Name string `json:"name"`

	// Answerable is false for structural and display-only types, which
	// never produce an answer and are excluded from validation, progress
	// and projection.
	Answerable bool `json:"-"`

	// Multi marks types whose answers decode as a list of strings.
	Multi bool `json:"-"`
}

// Registry lists every supported question type in catalog order.
var Registry = []TypeInfo{
	{Code: TypeShortText, Name: "Short text", Answerable: true},
	{Code: TypeLongText, Name: "Long text", Answerable: true},
	{Code: TypeEmail, Name: "Email", Answerable: true},
	{Code: TypeNumber, Name: "Number", Answerable: true},
	{Code: TypeDate, Name: "Date", Answerable: true},
	{Code: TypeTime, Name: "Time", Answerable: true},
	{Code: TypeMultipleChoice, Name: "Multiple choice", Answerable: true, Multi: true},
	{Code: TypeRadio, Name: "Radio buttons", Answerable: true},
	{Code: TypeCheckbox, Name: "Checkboxes", Answerable: true, Multi: true},
	{Code: TypeList, Name: "List", Answerable: true},
	{Code: TypeDropdown, Name: "Dropdown", Answerable: true},
	{Code: TypeDropdownMultiple, Name: "Dropdown (multiple)", Answerable: true, Multi: true},
	{Code: TypeLinearScale, Name: "Linear scale", Answerable: true},
	{Code: TypeRating, Name: "Rating", Answerable: true},
	{Code: TypeFileUpload, Name: "File upload", Answerable: true},
	{Code: TypeGrid, Name: "Grid", Answerable: true},
	{Code: TypeImage, Name: "Image"},
	{Code: TypeVideo, Name: "Video"},
	{Code: TypePageBreak, Name: "Page break"},
	{Code: TypeSectionHeader, Name: "Section header"},
}

var registryByCode = func() map[Code]TypeInfo {
	m := make(map[Code]TypeInfo, len(Registry))
	for _, t := range Registry {
		m[t.Code] = t
	}
	return m
}()

// TypeOf looks up the catalog entry for code.
func TypeOf(code Code) (TypeInfo, bool) {
	t, ok := registryByCode[code]
	return t, ok
}

// Known reports whether code is in the catalog. Unknown codes render as an
// unsupported placeholder and never block validation or progress.
func (c Code) Known() bool {
	_, ok := registryByCode[c]
	return ok
}

// Answerable reports whether questions of this type produce answers.
// Unknown codes are not answerable.
func (c Code) Answerable() bool {
	return registryByCode[c].Answerable
}

// Multi reports whether answers of this type are lists of strings.
func (c Code) Multi() bool {
	return registryByCode[c].Multi
}
