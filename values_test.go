package templeton

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsTruthy(t *testing.T) {
	var nilPerson *person
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "false", value: false, want: false},
		{name: "true", value: true, want: true},
		{name: "zero", value: 0, want: false},
		{name: "int8 zero", value: int8(0), want: false},
		{name: "uint", value: uint(3), want: true},
		{name: "negative", value: -1, want: true},
		{name: "zero float", value: 0.0, want: false},
		{name: "NaN", value: math.NaN(), want: false},
		{name: "empty string", value: "", want: false},
		{name: "zero string", value: "0", want: true},
		{name: "empty slice", value: []int{}, want: true},
		{name: "nil slice", value: []int(nil), want: false},
		{name: "empty map", value: map[string]any{}, want: true},
		{name: "nil map", value: map[string]any(nil), want: false},
		{name: "nil pointer", value: nilPerson, want: false},
		{name: "struct", value: person{}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTruthy(tt.value); got != tt.want {
				t.Errorf("isTruthy(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "s", want: "s"},
		{name: "bytes", value: []byte("raw"), want: "raw"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(-7), want: "-7"},
		{name: "whole float", value: 3.0, want: "3"},
		{name: "fraction", value: 0.1, want: "0.1"},
		{name: "large float", value: 1e21, want: "1e+21"},
		{name: "NaN", value: math.NaN(), want: "NaN"},
		{name: "infinity", value: math.Inf(-1), want: "-Infinity"},
		{name: "bool", value: true, want: "true"},
		{name: "error", value: errors.New("boom"), want: "boom"},
		{name: "slice", value: []int{1, 2}, want: "1,2"},
		{name: "nested slices flatten", value: [][]any{{1, 2}, {3}}, want: "1,2,3"},
		{name: "slice with nil", value: []any{1, nil, 3}, want: "1,,3"},
		{name: "map as json", value: map[string]any{"a": 1, "b": "<x>"}, want: `{"a":1,"b":"<x>"}`},
		{name: "struct as json", value: person{Name: "A"}, want: `{"name":"A","Email":""}`},
		{name: "embedded struct as json", value: account{audit: audit{Created: "c"}, Owner: "o"}, want: `{"created":"c","Author":"","owner":"o"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringify(tt.value); got != tt.want {
				t.Errorf("stringify(%#v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestAsIterable(t *testing.T) {
	collect := func(v any) []string {
		it, ok := asIterable(v)
		if !ok {
			return nil
		}
		var keys []string
		for k := range it.Entries() {
			keys = append(keys, k)
		}
		return keys
	}

	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "slice", value: []string{"a", "b", "c"}, want: []string{"0", "1", "2"}},
		{name: "array", value: [2]int{5, 6}, want: []string{"0", "1"}},
		{name: "map sorted", value: map[string]int{"b": 1, "a": 2, "2": 3, "10": 4}, want: []string{"2", "10", "a", "b"}},
		{name: "int keyed map", value: map[int]bool{3: true, 1: false}, want: []string{"1", "3"}},
		{name: "struct exported fields", value: person{}, want: []string{"name", "Email"}},
		{name: "struct with embedded fields", value: account{address: &address{}}, want: []string{"created", "City", "Author", "owner"}},
		{name: "nil embedded pointer is skipped", value: account{}, want: []string{"created", "Author", "owner"}},
		{name: "equal integer keys sort lexically", value: map[string]int{"1": 1, "01": 2, "001": 3, "0": 4}, want: []string{"0", "001", "01", "1"}},
		{name: "pointer to slice", value: &[]int{1}, want: []string{"0"}},
		{name: "scalar", value: 5, want: nil},
		{name: "nil slice", value: []int(nil), want: nil},
		{name: "string", value: "abc", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, collect(tt.value)); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAsSequence(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "slice", value: []any{}, want: true},
		{name: "array", value: [1]int{}, want: true},
		{name: "custom sequence", value: pairs{}, want: true},
		{name: "map", value: map[string]any{}, want: false},
		{name: "struct", value: person{}, want: false},
		{name: "string", value: "abc", want: false},
		{name: "nil", value: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := asSequence(tt.value); got != tt.want {
				t.Errorf("asSequence(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLessKeyIsTotal(t *testing.T) {
	keys := []string{"1", "01", "b", "10", "a", "001"}
	for _, a := range keys {
		for _, b := range keys {
			if a != b && lessKey(a, b) == lessKey(b, a) {
				t.Errorf("lessKey(%q, %q) and lessKey(%q, %q) agree", a, b, b, a)
			}
		}
	}
}

func TestIterationStopsEarly(t *testing.T) {
	it, _ := asIterable([]int{1, 2, 3})
	n := 0
	for range it.Entries() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d entries, want 2", n)
	}
}
