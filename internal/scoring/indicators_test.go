package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityIndicators_Decode(t *testing.T) {
	var qi QualityIndicators
	err := json.Unmarshal([]byte(`{"colors_used": 4, "has_sound": true, "theme": "space"}`), &qi)
	require.NoError(t, err)

	n, ok := qi["colors_used"].AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 4.0, n)

	b, ok := qi["has_sound"].AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := qi["theme"].AsText()
	assert.True(t, ok)
	assert.Equal(t, "space", s)

	_, ok = qi["theme"].AsNumber()
	assert.False(t, ok)
}

func TestQualityIndicators_RejectsUntypedValues(t *testing.T) {
	for _, body := range []string{
		`{"nested": {"a": 1}}`,
		`{"list": [1, 2]}`,
		`{"missing": null}`,
	} {
		var qi QualityIndicators
		assert.Error(t, json.Unmarshal([]byte(body), &qi), body)
	}
}

func TestQualityIndicators_EncodeAsScalars(t *testing.T) {
	qi := QualityIndicators{"score": Number(7.5), "done": Bool(false), "mode": Text("hard")}

	raw, err := json.Marshal(qi)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 7.5, "done": false, "mode": "hard"}`, string(raw))
}

func TestIndicatorValue_ZeroValueDoesNotEncode(t *testing.T) {
	_, err := json.Marshal(QualityIndicators{"broken": {}})
	assert.Error(t, err)
}

func TestParseElective(t *testing.T) {
	tests := []struct {
		input    string
		expected Elective
		wantErr  bool
	}{
		{"MobileDev", MobileDev, false},
		{"itba", ITBA, false},
		{"  MMGD ", MMGD, false},
		{"Mobile Development", MobileDev, false},
		{"IT Business Analytics", ITBA, false},
		{"multimedia & game development", MMGD, false},
		{"Cooking", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseElective(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestElective_DisplayName(t *testing.T) {
	assert.Equal(t, "Mobile Development", MobileDev.DisplayName())
	assert.Equal(t, "Custom", Elective("Custom").DisplayName())
	assert.True(t, ITBA.IsKnown())
	assert.False(t, Elective("Custom").IsKnown())
}
