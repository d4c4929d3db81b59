package record

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Text(t *testing.T) {
	// variables keep the sum out of exact constant arithmetic
	point1, point2 := 0.1, 0.2
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null(), ""},
		{"zero value is null", Value{}, ""},
		{"string", String(`say "hi"`), `say "hi"`},
		{"integer", Number(5), "5"},
		{"negative integer", Number(-42), "-42"},
		{"fraction", Number(1.5), "1.5"},
		{"shortest round trip", Number(point1 + point2), "0.30000000000000004"},
		{"large plain", Number(123456789012), "123456789012"},
		{"exponent large", Number(1e21), "1e+21"},
		{"exponent small", Number(1.5e-7), "1.5e-7"},
		{"small plain", Number(0.000001), "0.000001"},
		{"negative zero", Number(math.Copysign(0, -1)), "0"},
		{"nan", Number(math.NaN()), "NaN"},
		{"infinity", Number(math.Inf(1)), "Infinity"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Text())
		})
	}
}

func TestValueOf(t *testing.T) {
	s := "ptr"
	var nilPtr *string

	assert.Equal(t, KindNull, ValueOf(nil).Kind())
	assert.Equal(t, KindNull, ValueOf(nilPtr).Kind())
	assert.Equal(t, "ptr", ValueOf(&s).Text())
	assert.Equal(t, "7", ValueOf(int64(7)).Text())
	assert.Equal(t, "7", ValueOf(uint8(7)).Text())
	assert.Equal(t, "2.5", ValueOf(float32(2.5)).Text())
	assert.Equal(t, "12", ValueOf(json.Number("12")).Text())
	assert.Equal(t, KindBool, ValueOf(true).Kind())
	assert.Equal(t, "[1 2]", ValueOf([]int{1, 2}).Text())
}

func TestRecord_SetKeepsOrder(t *testing.T) {
	r := New(F("nom", "Dupont"), F("prenom", "Léa"), F("age", 9))
	r.Set("nom", String("Martin"))

	assert.Equal(t, []string{"nom", "prenom", "age"}, r.Keys())
	v, ok := r.Get("nom")
	require.True(t, ok)
	assert.Equal(t, "Martin", v.Text())

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 3, r.Len())
}

func TestRecord_KeysReturnsCopy(t *testing.T) {
	r := New(F("a", 1), F("b", 2))
	keys := r.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestRecord_UnmarshalJSONPreservesOrder(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"zeta":1,"alpha":"x","mid":null,"flag":true,"list":[1,null,"b"],"obj":{"k":1}}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid", "flag", "list", "obj"}, r.Keys())

	got := map[string]string{}
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		got[k] = v.Text()
	}
	want := map[string]string{
		"zeta":  "1",
		"alpha": "x",
		"mid":   "",
		"flag":  "true",
		"list":  "1,,b",
		"obj":   "[object Object]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded values mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_UnmarshalJSONIndexKeysFirst(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`{"b":1,"2":2,"1":3}`, []string{"1", "2", "b"}},
		{`{"10":1,"x":2,"9":3,"a":4}`, []string{"9", "10", "x", "a"}},
		// leading zeros, signs and out-of-range numbers stay string keys
		{`{"z":1,"01":2,"-1":3,"4294967295":4,"4294967294":5}`, []string{"4294967294", "z", "01", "-1", "4294967295"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var r Record
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.want, r.Keys())
		})
	}

	rs, err := Decode([]byte(`[{"b":1,"2":2,"1":3}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "b"}, rs.Headers())
}

func TestRecord_UnmarshalJSONRejectsNonObject(t *testing.T) {
	var r Record
	assert.ErrorIs(t, json.Unmarshal([]byte(`[1,2]`), &r), ErrNotObject)
	assert.ErrorIs(t, json.Unmarshal([]byte(`null`), &r), ErrNotObject)
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := New(F("b", 1), F("a", nil), F("c", "q\"uote"))
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":null,"c":"q\"uote"}`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantHdr   []string
		wantError bool
	}{
		{name: "empty input", input: "", wantLen: 0},
		{name: "null", input: "null", wantLen: 0},
		{name: "empty array", input: "[]", wantLen: 0},
		{
			name:    "two records",
			input:   `[{"name":"A","age":5},{"name":"B","age":6,"extra":true}]`,
			wantLen: 2,
			wantHdr: []string{"name", "age"},
		},
		{name: "not an array", input: `{"name":"A"}`, wantError: true},
		{name: "array of scalars", input: `[1,2]`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Decode([]byte(tt.input))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rs, tt.wantLen)
			assert.Equal(t, tt.wantHdr, rs.Headers())
			assert.Equal(t, tt.wantLen == 0, rs.Empty())
		})
	}
}
