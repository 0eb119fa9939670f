package field

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// MultiValueSeparator joins the labels of a multi-value column.
const MultiValueSeparator = "; "

// legacyDelimiter separates id and label in the compound "12;#Finance"
// encoding.
const legacyDelimiter = ";#"

// LabelKeys is the order in which a lookup, person or term object is
// searched for something displayable.
var LabelKeys = []string{
	"Title",
	"Label",
	"LookupValue",
	"Abbreviation",
	"Description_en",
	"Description_pt",
	"Description_es",
}

// Resolve returns the display value of a column for one item. Every shape a
// source may produce collapses to a single string; anything that cannot be
// read yields "".
func Resolve(item *models.Item, name string) string {
	if item == nil || name == "" {
		return ""
	}

	// "<Base>Id" prefers the label of the expanded base object.
	if base, ok := derivedIDBase(name); ok {
		if raw, ok := item.Field(base); ok && raw != nil {
			if obj, ok := asObject(raw); ok {
				if s := objectLabel(obj); s != "" {
					return s
				}
			}
		}
		if raw, ok := item.Fields[name]; ok && raw != nil {
			return scalarString(raw)
		}
	}

	if raw, ok := item.Field(name); ok && raw != nil {
		if s := resolveValue(raw); s != "" {
			return s
		}
	}

	// "Base/Prop" addresses a property of an expanded object.
	if base, prop, ok := strings.Cut(name, "/"); ok && base != "" {
		if raw, ok := item.Field(base); ok && raw != nil {
			if obj, ok := asObject(raw); ok {
				if s := objectLabel(obj); s != "" {
					return s
				}
				if v, ok := obj[prop]; ok {
					return scalarString(v)
				}
			}
		}
	}

	if raw, ok := item.FieldValuesAsText[name]; ok && raw != nil {
		return resolveValue(raw)
	}

	return ""
}

// derivedIDBase recognises "<Base>Id" columns that carry the identifier of
// a lookup rather than the row's own identifier.
func derivedIDBase(name string) (string, bool) {
	if name == "Id" || name == "ID" || !strings.HasSuffix(name, "Id") {
		return "", false
	}
	base := strings.TrimSuffix(name, "Id")
	if base == "" {
		return "", false
	}
	return base, true
}

func resolveValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return legacyLabel(dateString(v))
	case []any:
		return joinLabels(v)
	case []string:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			if s = legacyLabel(dateString(s)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, MultiValueSeparator)
	case []map[string]any:
		elems := make([]any, len(v))
		for i := range v {
			elems[i] = v[i]
		}
		return joinLabels(elems)
	}
	if obj, ok := asObject(raw); ok {
		// Some sources wrap multi-value columns as {"results": [...]}.
		if results, ok := obj["results"].([]any); ok {
			return joinLabels(results)
		}
		return objectLabel(obj)
	}
	return scalarString(raw)
}

func joinLabels(elems []any) string {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		var s string
		if obj, ok := asObject(e); ok {
			s = objectLabel(obj)
		} else {
			s = legacyLabel(scalarString(e))
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, MultiValueSeparator)
}

// objectLabel picks the first non-empty label-like property.
func objectLabel(obj map[string]any) string {
	for _, k := range LabelKeys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

// legacyLabel returns the label of the last "id;#label" pair, or the input
// unchanged when it carries no delimiter.
func legacyLabel(s string) string {
	if !strings.Contains(s, legacyDelimiter) {
		return s
	}
	parts := strings.Split(s, legacyDelimiter)
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			// Multi-value encodings repeat "id;#label;#id;#label"; an odd
			// index is always a label.
			if i%2 == 1 {
				return p
			}
		}
	}
	return ""
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		obj := make(map[string]any, len(v))
		for k, s := range v {
			obj[k] = s
		}
		return obj, true
	}
	return nil, false
}

// FormatScalar renders a scalar column value the way group values are
// rendered. Objects and arrays yield "".
func FormatScalar(raw any) string {
	return scalarString(raw)
}

// dateString reduces an RFC 3339 timestamp to its date so that a time value
// and its JSON encoding group identically.
func dateString(s string) string {
	if len(s) < len(time.DateOnly)+1 || s[len(time.DateOnly)] != 'T' {
		return s
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(time.DateOnly)
}

func scalarString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return dateString(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case json.Number:
		return v.String()
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.DateOnly)
	case fmt.Stringer:
		return v.String()
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(raw)
}
