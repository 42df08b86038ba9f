package form

// WidgetKind names the input affordance a question renders to.
type WidgetKind string

const (
	WidgetTextInput     WidgetKind = "text"
	WidgetTextArea      WidgetKind = "textarea"
	WidgetEmailInput    WidgetKind = "email"
	WidgetNumberInput   WidgetKind = "number"
	WidgetDatePicker    WidgetKind = "date"
	WidgetTimePicker    WidgetKind = "time"
	WidgetCheckboxGroup WidgetKind = "checkbox-group"
	WidgetRadioGroup    WidgetKind = "radio-group"
	WidgetListBox       WidgetKind = "listbox"
	WidgetSelect        WidgetKind = "select"
	WidgetMultiSelect   WidgetKind = "multi-select"
	WidgetScale         WidgetKind = "scale"
	WidgetRating        WidgetKind = "rating"
	WidgetFilePicker    WidgetKind = "file"
	WidgetGrid          WidgetKind = "grid"
	WidgetImageEmbed    WidgetKind = "image"
	WidgetVideoEmbed    WidgetKind = "video"
	WidgetHeading       WidgetKind = "heading"
	WidgetNone          WidgetKind = "none"
	WidgetUnsupported   WidgetKind = "unsupported"
)

// Widget describes how one question is presented. A question with an
// unrecognized type code renders as a visible unsupported placeholder
// instead of failing the whole step.
type Widget struct {
	Kind        WidgetKind
	Question    *Question
	Unsupported bool
}

// WidgetFor maps a question to its widget. The switch is exhaustive over
// the registry; anything else falls through to the unsupported placeholder.
func WidgetFor(q *Question) Widget {
	var kind WidgetKind
	switch q.Type {
	case TypeShortText:
		kind = WidgetTextInput
	case TypeLongText:
		kind = WidgetTextArea
	case TypeEmail:
		kind = WidgetEmailInput
	case TypeNumber:
		kind = WidgetNumberInput
	case TypeDate:
		kind = WidgetDatePicker
	case TypeTime:
		kind = WidgetTimePicker
	case TypeMultipleChoice, TypeCheckbox:
		kind = WidgetCheckboxGroup
	case TypeRadio:
		kind = WidgetRadioGroup
	case TypeList:
		kind = WidgetListBox
	case TypeDropdown:
		kind = WidgetSelect
	case TypeDropdownMultiple:
		kind = WidgetMultiSelect
	case TypeLinearScale:
		kind = WidgetScale
	case TypeRating:
		kind = WidgetRating
	case TypeFileUpload:
		kind = WidgetFilePicker
	case TypeGrid:
		kind = WidgetGrid
	case TypeImage:
		kind = WidgetImageEmbed
	case TypeVideo:
		kind = WidgetVideoEmbed
	case TypeSectionHeader:
		kind = WidgetHeading
	case TypePageBreak:
		// page breaks are consumed by the step partitioner
		kind = WidgetNone
	default:
		return Widget{Kind: WidgetUnsupported, Question: q, Unsupported: true}
	}
	return Widget{Kind: kind, Question: q}
}
