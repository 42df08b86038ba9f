package form

import "encoding/json"

// Config is the per-type question configuration. The legal concrete type is
// fully determined by the question's Code; DecodeConfig and Matches keep the
// two in lockstep so a config of the wrong shape cannot be attached.
type Config interface {
	isConfig()
}

// Option is one selectable entry of a choice-like question.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// ChoiceConfig configures MULTIPLE_CHOICE, RADIO, CHECKBOX, LIST, DROPDOWN
// and DROPDOWN_MULTIPLE questions.
type ChoiceConfig struct {
	Options []Option `json:"options"`
}

// TextConfig configures SHORT_TEXT, LONG_TEXT and EMAIL questions.
type TextConfig struct {
	MaxLength int `json:"maxLength,omitempty"`
}

// NumberConfig configures NUMBER questions. Min and Max are optional.
type NumberConfig struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step float64  `json:"step,omitempty"`
}

// ScaleConfig configures LINEAR_SCALE questions.
type ScaleConfig struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	MinLabel string `json:"minLabel,omitempty"`
	MaxLabel string `json:"maxLabel,omitempty"`
}

// RatingConfig configures RATING questions.
type RatingConfig struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FileConfig configures FILE_UPLOAD questions. An empty AllowedTypes list
// means unrestricted.
type FileConfig struct {
	AllowedTypes []string `json:"allowedTypes,omitempty"`
	MaxSizeMB    int      `json:"maxSizeMB"`
}

// GridLabel is one row or column header of a GRID question.
type GridLabel struct {
	Text string `json:"text"`
}

// GridConfig configures GRID questions.
type GridConfig struct {
	Rows    []GridLabel `json:"rows"`
	Columns []GridLabel `json:"columns"`
}

// MediaConfig configures IMAGE and VIDEO questions.
type MediaConfig struct {
	URL string `json:"url"`
}

func (ChoiceConfig) isConfig() {}
func (TextConfig) isConfig()   {}
func (NumberConfig) isConfig() {}
func (ScaleConfig) isConfig()  {}
func (RatingConfig) isConfig() {}
func (FileConfig) isConfig()   {}
func (GridConfig) isConfig()   {}
func (MediaConfig) isConfig()  {}

// DecodeConfig parses the stored JSON configuration into the variant the
// type code mandates. PAGE_BREAK and SECTION_HEADER carry no configuration
// and decode to nil. Unknown codes fail with UnknownTypeError.
func DecodeConfig(code Code, raw []byte) (Config, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultConfig(code)
	}

	switch code {
	case TypeMultipleChoice, TypeRadio, TypeCheckbox, TypeList, TypeDropdown, TypeDropdownMultiple:
		cfg := ChoiceConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeShortText, TypeLongText, TypeEmail:
		cfg := TextConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeNumber:
		cfg := NumberConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeLinearScale:
		cfg := ScaleConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeRating:
		cfg := RatingConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeFileUpload:
		cfg := FileConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeGrid:
		cfg := GridConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeImage, TypeVideo:
		cfg := MediaConfig{}
		return cfg, json.Unmarshal(raw, &cfg)
	case TypeDate, TypeTime, TypePageBreak, TypeSectionHeader:
		return nil, nil
	default:
		return nil, &UnknownTypeError{Code: code}
	}
}

// EncodeConfig serializes cfg for storage. Nil configs encode as nothing.
func EncodeConfig(cfg Config) ([]byte, error) {
	if cfg == nil {
		return nil, nil
	}
	return json.Marshal(cfg)
}

// DefaultConfig returns the zero configuration a freshly-added question of
// this type starts with.
func DefaultConfig(code Code) (Config, error) {
	switch code {
	case TypeMultipleChoice, TypeRadio, TypeCheckbox, TypeList, TypeDropdown, TypeDropdownMultiple:
		return ChoiceConfig{}, nil
	case TypeShortText, TypeLongText, TypeEmail:
		return TextConfig{}, nil
	case TypeNumber:
		return NumberConfig{Step: 1}, nil
	case TypeLinearScale:
		return ScaleConfig{Min: 1, Max: 5}, nil
	case TypeRating:
		return RatingConfig{Min: 1, Max: 5}, nil
	case TypeFileUpload:
		return FileConfig{MaxSizeMB: 10}, nil
	case TypeGrid:
		return GridConfig{}, nil
	case TypeImage, TypeVideo:
		return MediaConfig{}, nil
	case TypeDate, TypeTime, TypePageBreak, TypeSectionHeader:
		return nil, nil
	default:
		return nil, &UnknownTypeError{Code: code}
	}
}

// Matches reports whether cfg is the config variant the code mandates.
func Matches(code Code, cfg Config) bool {
	switch code {
	case TypeMultipleChoice, TypeRadio, TypeCheckbox, TypeList, TypeDropdown, TypeDropdownMultiple:
		_, ok := cfg.(ChoiceConfig)
		return ok
	case TypeShortText, TypeLongText, TypeEmail:
		_, ok := cfg.(TextConfig)
		return ok
	case TypeNumber:
		_, ok := cfg.(NumberConfig)
		return ok
	case TypeLinearScale:
		_, ok := cfg.(ScaleConfig)
		return ok
	case TypeRating:
		_, ok := cfg.(RatingConfig)
		return ok
	case TypeFileUpload:
		_, ok := cfg.(FileConfig)
		return ok
	case TypeGrid:
		_, ok := cfg.(GridConfig)
		return ok
	case TypeImage, TypeVideo:
		_, ok := cfg.(MediaConfig)
		return ok
	case TypeDate, TypeTime, TypePageBreak, TypeSectionHeader:
		return cfg == nil
	default:
		return false
	}
}
