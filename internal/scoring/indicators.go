package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IndicatorKind tags the variant held by an IndicatorValue.
type IndicatorKind string

const (
	KindNumber IndicatorKind = "number"
	KindBool   IndicatorKind = "bool"
	KindText   IndicatorKind = "text"
)

// IndicatorValue is one activity-specific quality measurement. Exactly one of the
// variants is meaningful, as selected by Kind.
type IndicatorValue struct {
	Kind IndicatorKind
	num  float64
	flag bool
	text string
}

func Number(v float64) IndicatorValue { return IndicatorValue{Kind: KindNumber, num: v} }
func Bool(v bool) IndicatorValue      { return IndicatorValue{Kind: KindBool, flag: v} }
func Text(v string) IndicatorValue    { return IndicatorValue{Kind: KindText, text: v} }

// AsNumber returns the numeric value and whether the indicator holds a number.
func (v IndicatorValue) AsNumber() (float64, bool) { return v.num, v.Kind == KindNumber }

// AsBool returns the boolean value and whether the indicator holds a boolean.
func (v IndicatorValue) AsBool() (bool, bool) { return v.flag, v.Kind == KindBool }

// AsText returns the text value and whether the indicator holds text.
func (v IndicatorValue) AsText() (string, bool) { return v.text, v.Kind == KindText }

func (v IndicatorValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.flag)
	case KindText:
		return json.Marshal(v.text)
	}
	return nil, fmt.Errorf("quality indicator has no kind")
}

func (v *IndicatorValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty quality indicator")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case 'n', '{', '[':
		return fmt.Errorf("quality indicator must be a number, boolean or string, got %s", data)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
	}
	return nil
}

// QualityIndicators is the open, activity-specific set of quality measurements
// attached to an attempt.
type QualityIndicators map[string]IndicatorValue
