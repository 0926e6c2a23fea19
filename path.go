package templeton

import (
	"regexp"
	"strings"
)

// bracketSegment matches a quoted bracket segment such as ['name'] or ["name"],
// or a bare numeric index such as [0]. Quoted keys may not contain dots.
var bracketSegment = regexp.MustCompile(`\[(?:'([^.']*)'|"([^."]*)"|(\d+))\]`)

// ResolvePath looks up a dotted or bracketed key expression in root and
// returns the value found, or fallback when any segment of the path is
// missing. Missing data is never an error.
//
//	ResolvePath(data, "a.b.c", nil)
//	ResolvePath(data, "a['b'].c", nil)
//	ResolvePath(data, ".", nil) // data itself, or its "." entry when it has one
func ResolvePath(root any, key string, fallback any) any {
	if v, ok := resolvePath(root, key); ok {
		return v
	}
	return fallback
}

func resolvePath(root any, key string) (any, bool) {
	if key == "." {
		if v, ok := property(root, "."); ok {
			return v, true
		}
		return root, true
	}
	if !strings.ContainsAny(key, ".[") {
		return property(root, key)
	}
	current := root
	for _, segment := range splitPath(key) {
		next, ok := property(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// splitPath normalises bracket segments into dotted form and splits the
// expression into its segments. Leading, trailing and repeated dots are
// dropped.
func splitPath(key string) []string {
	if strings.Contains(key, "[") {
		key = bracketSegment.ReplaceAllString(key, ".$1$2$3")
	}
	parts := strings.Split(key, ".")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
