package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type tag of a rule Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is a tagged rule value: String | Number | Bool | List.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	List []string
}

// Any returns the JSON-encodable form of v.
func (v Value) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindList:
		if v.List == nil {
			return []string{}
		}
		return v.List
	}
	return v.Str
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return FormatSize(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		return strings.Join(v.List, ", ")
	}
	return v.Str
}

// knownKeys is the schema of updatable rule keys. A trailing "*" segment
// matches any single key at that level.
var knownKeys = map[string]Kind{
	"structure_rules.required_chapters":     KindList,
	"structure_rules.required_sections.*":   KindList,
	"structure_rules.introduction_keywords": KindList,
	"common_rules.font_size":                KindNumber,
	"common_rules.font_name":                KindString,
	"common_rules.line_spacing":             KindNumber,
	"common_rules.margins.top":              KindNumber,
	"common_rules.margins.bottom":           KindNumber,
	"common_rules.margins.left":             KindNumber,
	"common_rules.margins.right":            KindNumber,
	"ignored_errors":                        KindList,
}

// KindOf returns the declared kind of a dotted rule key and whether the key
// matched a wildcard entry.
func KindOf(key string) (kind Kind, wildcard bool, ok bool) {
	if k, found := knownKeys[key]; found {
		return k, false, true
	}
	i := strings.LastIndexByte(key, '.')
	if i <= 0 || i == len(key)-1 {
		return 0, false, false
	}
	if k, found := knownKeys[key[:i]+".*"]; found {
		return k, true, true
	}
	return 0, false, false
}

// Coerce converts a raw string into a Value of the given kind.
func Coerce(kind Kind, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindString:
		return Value{Kind: KindString, Str: raw}, nil
	case KindNumber:
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrCoercion, raw)
		}
		return Value{Kind: KindNumber, Num: n}, nil
	case KindBool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrCoercion, raw)
		}
		return Value{Kind: KindBool, Bool: b}, nil
	case KindList:
		return coerceList(raw)
	}
	return Value{}, fmt.Errorf("%w: unsupported kind %s", ErrCoercion, kind)
}

func coerceList(raw string) (Value, error) {
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return Value{}, fmt.Errorf("%w: invalid list %q: %v", ErrCoercion, raw, err)
		}
		return Value{Kind: KindList, List: items}, nil
	}
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return Value{Kind: KindList, List: items}, nil
}
