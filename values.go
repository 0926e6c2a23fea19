package templeton

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Getter is implemented by data types that resolve their own properties.
// It takes precedence over reflection during path resolution.
type Getter interface {
	Get(key string) (any, bool)
}

// Iterable is implemented by collections that each blocks can walk. Entries
// must yield in the collection's natural order.
type Iterable interface {
	Entries() iter.Seq2[string, any]
}

// Sequence is an Iterable whose entries are positional. The default block
// iterates over sequences and treats every other value as a condition.
type Sequence interface {
	Iterable
	Len() int
}

// isTruthy reports whether a value passes a conditional block. nil, false,
// zero numbers, NaN, empty strings and nil pointers, maps and slices are
// falsy; everything else, including empty collections, is truthy.
func isTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// stringify converts a resolved value into output text. Sequences are joined
// with commas, maps and structs are written as JSON and nil becomes "".
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	if seq, ok := asSequence(value); ok {
		parts := make([]string, 0, seq.Len())
		for _, item := range seq.Entries() {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		if s, err := marshalJSON(value); err == nil {
			return s
		}
	}
	return fmt.Sprint(value)
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// marshalJSON encodes a value without HTML escaping and without the trailing
// newline added by json.Encoder.
func marshalJSON(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// asIterable adapts a value to Iterable. Slices and arrays iterate by index,
// maps by sorted key and structs by exported field in declaration order.
func asIterable(value any) (Iterable, bool) {
	if it, ok := value.(Iterable); ok {
		return it, true
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, false
		}
		return sliceEntries{rv}, true
	case reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
		return mapEntries{rv}, true
	case reflect.Struct:
		return structEntries{rv}, true
	}
	return nil, false
}

// asSequence reports whether a value behaves as an ordered, positional
// collection.
func asSequence(value any) (Sequence, bool) {
	if seq, ok := value.(Sequence); ok {
		return seq, true
	}
	if _, ok := value.(Iterable); ok {
		return nil, false
	}
	it, ok := asIterable(value)
	if !ok {
		return nil, false
	}
	seq, ok := it.(sliceEntries)
	return seq, ok
}

type sliceEntries struct{ rv reflect.Value }

func (s sliceEntries) Len() int { return s.rv.Len() }

func (s sliceEntries) Entries() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i := 0; i < s.rv.Len(); i++ {
			if !yield(strconv.Itoa(i), s.rv.Index(i).Interface()) {
				return
			}
		}
	}
}

type mapEntries struct{ rv reflect.Value }

func (m mapEntries) Entries() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		keys := m.rv.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
		}
		order := make([]int, len(keys))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return lessKey(names[order[a]], names[order[b]])
		})
		for _, i := range order {
			if !yield(names[i], m.rv.MapIndex(keys[i]).Interface()) {
				return
			}
		}
	}
}

// lessKey orders integer-like keys numerically ahead of all other keys, which
// sort lexically. Equal numbers such as "01" and "1" fall back to lexical
// order so the result is total.
func lessKey(a, b string) bool {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		if ai != bi {
			return ai < bi
		}
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}

type structEntries struct{ rv reflect.Value }

func (s structEntries) Entries() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, f := range reflect.VisibleFields(s.rv.Type()) {
			if !f.IsExported() || isPromotedStruct(f) {
				continue
			}
			name, skip := fieldName(f)
			if skip {
				continue
			}
			v, err := s.rv.FieldByIndexErr(f.Index)
			if err != nil {
				continue
			}
			if !yield(name, v.Interface()) {
				return
			}
		}
	}
}

// isPromotedStruct reports whether f is an untagged embedded struct, whose
// fields encoding/json flattens into the parent instead of nesting.
func isPromotedStruct(f reflect.StructField) bool {
	if !f.Anonymous || f.Tag.Get("json") != "" {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// fieldName returns the key a struct field is exposed under: its json tag
// name when present, else the Go field name.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}

// property performs a single own-property lookup. Maps are indexed by key,
// sequences by decimal index, structs by json tag or field name. Sequences
// and strings also expose "length".
func property(obj any, name string) (any, bool) {
	switch o := obj.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := o[name]
		return v, ok
	case Getter:
		return o.Get(name)
	case string:
		if name == "length" {
			return utf8.RuneCountInString(o), true
		}
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		key, ok := mapKey(rv.Type().Key(), name)
		if !ok {
			return nil, false
		}
		v := rv.MapIndex(key)
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return rv.Len(), true
		}
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		return structField(rv, name)
	case reflect.String:
		if name == "length" {
			return utf8.RuneCountInString(rv.String()), true
		}
	}
	return nil, false
}

func mapKey(t reflect.Type, name string) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(name).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(name, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(i).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(name, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(u).Convert(t), true
	case reflect.Interface:
		if reflect.TypeOf(name).Implements(t) {
			return reflect.ValueOf(name), true
		}
	}
	return reflect.Value{}, false
}

// structField looks up an exported field, including fields promoted from
// embedded structs. Fields behind a nil embedded pointer are missing.
func structField(rv reflect.Value, name string) (any, bool) {
	fields := reflect.VisibleFields(rv.Type())
	// First try to find a field exposed under exactly this name.
	for _, f := range fields {
		if !f.IsExported() {
			continue
		}
		if exposed, skip := fieldName(f); !skip && (exposed == name || f.Name == name) {
			return fieldValue(rv, f)
		}
	}
	// Then fall back to a case-insensitive match on the Go field name.
	for _, f := range fields {
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return fieldValue(rv, f)
		}
	}
	return nil, false
}

func fieldValue(rv reflect.Value, f reflect.StructField) (any, bool) {
	v, err := rv.FieldByIndexErr(f.Index)
	if err != nil {
		return nil, false
	}
	return v.Interface(), true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
