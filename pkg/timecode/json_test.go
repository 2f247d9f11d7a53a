package timecode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramerateMarshalJSON(t *testing.T) {
	data, err := json.Marshal(MustFramerate(Rate29_97DF))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"29.97DF","base_rate":30,"fps":29.97,"drop":true,"numerator":30000,"denominator":1001}`, string(data))
}

func TestFramerateUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		display string
		wantErr bool
	}{
		{name: "standard string", input: `"59.94DF"`, display: "59.94DF"},
		{name: "fraction string", input: `"30000/1001"`, display: "29.97NDF"},
		{name: "number", input: `29.97`, display: "29.97DF"},
		{name: "integer number", input: `25`, display: "25"},
		{name: "object", input: `{"numerator":60000,"denominator":1001,"drop":true}`, display: "59.94DF"},
		{name: "object without drop", input: `{"numerator":24000,"denominator":1001}`, display: "23.976"},
		{name: "marshalled form", input: `{"name":"29.97DF","base_rate":30,"fps":29.97,"drop":true,"numerator":30000,"denominator":1001}`, display: "29.97DF"},
		{name: "null", input: `null`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
		{name: "array", input: `[30000,1001]`, wantErr: true},
		{name: "unknown name", input: `"fast"`, wantErr: true},
		{name: "bad object", input: `{"numerator":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fr Framerate
			err := json.Unmarshal([]byte(tt.input), &fr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFramerate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.display, fr.String())
		})
	}
}

func TestTimecodeMarshalJSON(t *testing.T) {
	tc, err := NewFromSpec(12345, Decimal(29.97))
	require.NoError(t, err)

	data, err := json.Marshal(tc)
	require.NoError(t, err)

	var out struct {
		Timecode  string    `json:"timecode"`
		Frames    int64     `json:"frames"`
		Framerate Framerate `json:"framerate"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "00;06;51;27", out.Timecode)
	assert.Equal(t, int64(12345), out.Frames)
	assert.True(t, out.Framerate.Drop())
	assert.Equal(t, Rational{Num: 30000, Den: 1001}, out.Framerate.Fraction())
}
