package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/jsonbind/codec"
	"github.com/wippyai/jsonbind/collections"
	"github.com/wippyai/jsonbind/errors"
)

// node is one value of a decoded document, addressed by its breadcrumb.
type node struct {
	value   any
	kind    string
	preview string
	path    []string
}

func (n node) display() string {
	if len(n.path) == 0 {
		return "."
	}
	return errors.FormatPath(n.path)
}

func (n node) depth() int {
	return len(n.path)
}

// flatten lists v and everything below it in document order.
func flatten(c *codec.Codec, v any) []node {
	var out []node
	var walk func(path []string, v any)
	walk = func(path []string, v any) {
		n := node{value: v, path: path, kind: kindOf(v)}
		switch x := v.(type) {
		case collections.Map:
			n.preview = fmt.Sprintf("{%d members}", x.Len())
			out = append(out, n)
			x.Range(func(k, child any) bool {
				walk(extend(path, fmt.Sprint(k)), child)
				return true
			})
			return
		case map[string]any:
			n.preview = fmt.Sprintf("{%d members}", len(x))
			out = append(out, n)
			for _, k := range slices.Sorted(maps.Keys(x)) {
				walk(extend(path, k), x[k])
			}
			return
		case []any:
			n.preview = fmt.Sprintf("[%d elements]", len(x))
			out = append(out, n)
			for i, child := range x {
				walk(extend(path, "["+strconv.Itoa(i)+"]"), child)
			}
			return
		}
		n.preview, _ = c.Encode(v)
		out = append(out, n)
	}
	walk(nil, v)
	return out
}

func extend(path []string, seg string) []string {
	return append(path[:len(path):len(path)], seg)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case collections.Map, map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "number"
	}
}

// parsePath splits "a.b[2]" into the breadcrumb segments a, b, [2].
func parsePath(path string) ([]string, error) {
	var segs []string
	path = strings.TrimPrefix(path, ".")
	for path != "" {
		switch {
		case path[0] == '[':
			end := strings.IndexByte(path, ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index in path %q", path)
			}
			segs = append(segs, path[:end+1])
			path = strings.TrimPrefix(path[end+1:], ".")
		default:
			end := strings.IndexAny(path, ".[")
			if end < 0 {
				end = len(path)
			}
			segs = append(segs, path[:end])
			path = strings.TrimPrefix(path[end:], ".")
		}
	}
	return segs, nil
}

// lookup returns the value of v at path.
func lookup(v any, path string) (any, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	for i, seg := range segs {
		at := errors.FormatPath(segs[:i+1])
		if strings.HasPrefix(seg, "[") {
			arr, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: %s is not an array", at, kindOf(v))
			}
			idx, err := strconv.Atoi(seg[1 : len(seg)-1])
			if err != nil || idx < 0 || idx >= len(arr) {
				return nil, fmt.Errorf("%s: index out of range", at)
			}
			v = arr[idx]
			continue
		}
		var found bool
		switch obj := v.(type) {
		case collections.Map:
			v, found = obj.Get(seg)
		case map[string]any:
			v, found = obj[seg]
		default:
			return nil, fmt.Errorf("%s: %s is not an object", at, kindOf(v))
		}
		if !found {
			return nil, fmt.Errorf("%s: no such member", at)
		}
	}
	return v, nil
}
