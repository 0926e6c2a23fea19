package templeton

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type lookup map[string]string

type audit struct {
	Created string `json:"created"`
	Author  string
}

type address struct {
	City string
}

type account struct {
	audit
	*address
	Author string
	Owner  string `json:"owner"`
}

func (l lookup) Get(key string) (any, bool) {
	v, ok := l[key]
	if !ok {
		return nil, false
	}
	return "got " + v, true
}

func TestResolvePath(t *testing.T) {
	data := map[string]any{
		"a":     map[string]any{"b": map[string]any{"c": 5}},
		"list":  []any{"x", "y"},
		"grid":  [][]int{{1, 2}, {3}},
		"name":  "héllo",
		"user":  &person{Name: "Ada", Email: "ada@example.com"},
		"ids":   map[int]string{1: "one"},
		"dict":  lookup{"k": "v"},
		"empty": "",
		"zero":  0,
		"account": account{
			audit:  audit{Created: "2024-01-02", Author: "hidden"},
			Author: "ada",
			Owner:  "grace",
		},
		"located": account{address: &address{City: "Paris"}},
	}

	tests := []struct {
		name     string
		root     any
		key      string
		fallback any
		want     any
	}{
		{name: "dotted", root: data, key: "a.b.c", want: 5},
		{name: "direct", root: data, key: "name", want: "héllo"},
		{name: "missing with fallback", root: data, key: "nope", fallback: "x", want: "x"},
		{name: "missing nested", root: data, key: "a.x.c", fallback: "x", want: "x"},
		{name: "through a scalar", root: data, key: "a.b.c.d", want: nil},
		{name: "single quoted bracket", root: data, key: "a['b'].c", want: 5},
		{name: "double quoted bracket", root: data, key: `a["b"]["c"]`, want: 5},
		{name: "numeric bracket", root: data, key: "list[1]", want: "y"},
		{name: "numeric segment", root: data, key: "list.1", want: "y"},
		{name: "index out of range", root: data, key: "list.2", fallback: "x", want: "x"},
		{name: "nested index", root: data, key: "grid[0][1]", want: 2},
		{name: "sequence length", root: data, key: "list.length", want: 2},
		{name: "string length counts characters", root: data, key: "name.length", want: 5},
		{name: "repeated dots collapse", root: data, key: "a..b.c.", want: 5},
		{name: "struct by json tag", root: data, key: "user.name", want: "Ada"},
		{name: "struct by field name", root: data, key: "user.Email", want: "ada@example.com"},
		{name: "struct case insensitive", root: data, key: "user.email", want: "ada@example.com"},
		{name: "integer map keys", root: data, key: "ids.1", want: "one"},
		{name: "integer map key mismatch", root: data, key: "ids.one", fallback: "x", want: "x"},
		{name: "getter", root: data, key: "dict.k", want: "got v"},
		{name: "falsy values are found", root: data, key: "zero", fallback: "x", want: 0},
		{name: "empty string is found", root: data, key: "empty", fallback: "x", want: ""},
		{name: "nil root", root: nil, key: "a", fallback: "x", want: "x"},
		{name: "promoted field by json tag", root: data, key: "account.created", want: "2024-01-02"},
		{name: "promoted field by name", root: data, key: "account.Created", want: "2024-01-02"},
		{name: "outer field shadows promoted field", root: data, key: "account.Author", want: "ada"},
		{name: "field promoted through a pointer", root: data, key: "located.City", want: "Paris"},
		{name: "field behind a nil embedded pointer", root: data, key: "account.City", fallback: "x", want: "x"},
		{name: "dot is the root", root: "scalar", key: ".", want: "scalar"},
		{name: "dot entry wins", root: map[string]any{".": "self"}, key: ".", want: "self"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePath(tt.root, tt.key, tt.fallback)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolvePath(%q) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{key: "a", want: []string{"a"}},
		{key: "a.b.c", want: []string{"a", "b", "c"}},
		{key: "a['b'].c", want: []string{"a", "b", "c"}},
		{key: `a["b"]`, want: []string{"a", "b"}},
		{key: "a[0][12]", want: []string{"a", "0", "12"}},
		{key: ".a..b.", want: []string{"a", "b"}},
		{key: ".", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitPath(tt.key)); diff != "" {
				t.Errorf("splitPath(%q) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}
