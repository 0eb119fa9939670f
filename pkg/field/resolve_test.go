package field

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		item   *models.Item
		column string
		want   string
	}{
		{
			name:   "absent field",
			item:   &models.Item{Fields: map[string]any{}},
			column: "Dept",
			want:   "",
		},
		{
			name:   "nil item",
			item:   nil,
			column: "Dept",
			want:   "",
		},
		{
			name:   "plain string",
			item:   &models.Item{Fields: map[string]any{"Dept": "Ops"}},
			column: "Dept",
			want:   "Ops",
		},
		{
			name:   "number",
			item:   &models.Item{Fields: map[string]any{"Year": 2024.0}},
			column: "Year",
			want:   "2024",
		},
		{
			name:   "bool",
			item:   &models.Item{Fields: map[string]any{"Active": true}},
			column: "Active",
			want:   "true",
		},
		{
			name:   "date",
			item:   &models.Item{Fields: map[string]any{"Due": time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)}},
			column: "Due",
			want:   "2024-03-09",
		},
		{
			name:   "encoded date",
			item:   &models.Item{Fields: map[string]any{"Modified": "2024-05-01T17:00:00.123456789Z"}},
			column: "Modified",
			want:   "2024-05-01",
		},
		{
			name:   "encoded date with offset",
			item:   &models.Item{Fields: map[string]any{"created": "2024-05-01T23:30:00-03:00"}},
			column: "created",
			want:   "2024-05-01",
		},
		{
			name:   "text that only looks like a date",
			item:   &models.Item{Fields: map[string]any{"Code": "2024-05-01Tbd"}},
			column: "Code",
			want:   "2024-05-01Tbd",
		},
		{
			name:   "lookup object",
			item:   &models.Item{Fields: map[string]any{"Dept": map[string]any{"Title": "Finance"}}},
			column: "Dept",
			want:   "Finance",
		},
		{
			name:   "term object uses Label",
			item:   &models.Item{Fields: map[string]any{"Topic": map[string]any{"Label": "Tax", "TermGuid": "abc"}}},
			column: "Topic",
			want:   "Tax",
		},
		{
			name:   "lookup value before abbreviation",
			item:   &models.Item{Fields: map[string]any{"Unit": map[string]any{"Abbreviation": "HR", "LookupValue": "Human Resources"}}},
			column: "Unit",
			want:   "Human Resources",
		},
		{
			name:   "localized description",
			item:   &models.Item{Fields: map[string]any{"Area": map[string]any{"Description_pt": "Jurídico"}}},
			column: "Area",
			want:   "Jurídico",
		},
		{
			name:   "object without label",
			item:   &models.Item{Fields: map[string]any{"Area": map[string]any{"Id": 4}}},
			column: "Area",
			want:   "",
		},
		{
			name:   "legacy compound string",
			item:   &models.Item{Fields: map[string]any{"Dept": "12;#Finance"}},
			column: "Dept",
			want:   "Finance",
		},
		{
			name:   "legacy multi value keeps last label",
			item:   &models.Item{Fields: map[string]any{"Dept": "1;#A;#2;#B"}},
			column: "Dept",
			want:   "B",
		},
		{
			name:   "array of objects",
			item:   &models.Item{Fields: map[string]any{"Tags": []any{map[string]any{"Title": "A"}, map[string]any{"Title": "B"}}}},
			column: "Tags",
			want:   "A; B",
		},
		{
			name:   "array of scalars",
			item:   &models.Item{Fields: map[string]any{"Tags": []any{"x", "y"}}},
			column: "Tags",
			want:   "x; y",
		},
		{
			name:   "results wrapper",
			item:   &models.Item{Fields: map[string]any{"Tags": map[string]any{"results": []any{map[string]any{"Label": "A"}}}}},
			column: "Tags",
			want:   "A",
		},
		{
			name:   "nested path resolves base label",
			item:   &models.Item{Fields: map[string]any{"Dept": map[string]any{"Title": "Finance", "Code": "FI"}}},
			column: "Dept/Code",
			want:   "Finance",
		},
		{
			name:   "nested path falls back to property",
			item:   &models.Item{Fields: map[string]any{"Dept": map[string]any{"Code": "FI"}}},
			column: "Dept/Code",
			want:   "FI",
		},
		{
			name:   "derived id resolves base object",
			item:   &models.Item{Fields: map[string]any{"DeptId": 7, "Dept": map[string]any{"Title": "Finance"}}},
			column: "DeptId",
			want:   "Finance",
		},
		{
			name:   "derived id falls back to raw value",
			item:   &models.Item{Fields: map[string]any{"DeptId": 7}},
			column: "DeptId",
			want:   "7",
		},
		{
			name:   "own id is not derived",
			item:   &models.Item{ID: 42},
			column: "Id",
			want:   "42",
		},
		{
			name:   "text bag",
			item:   &models.Item{FieldValuesAsText: map[string]any{"Dept": "3;#Legal"}},
			column: "Dept",
			want:   "Legal",
		},
		{
			name:   "typed column",
			item:   &models.Item{FileLeafRef: "a.docx"},
			column: "FileLeafRef",
			want:   "a.docx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.item, tt.column); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.column, got, tt.want)
			}
		})
	}
}

func TestLegacyLabel(t *testing.T) {
	tests := map[string]string{
		"plain":        "plain",
		"12;#Finance":  "Finance",
		"1;#A;#2;#B":   "B",
		"12;#":         "",
		"":             "",
		"a;b":          "a;b",
		"7;# Padded ":  "Padded",
	}
	for in, want := range tests {
		if got := legacyLabel(in); got != want {
			t.Errorf("legacyLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateSurvivesJSON(t *testing.T) {
	for _, ts := range []time.Time{
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 17, 0, 0, 5000, time.UTC),
		time.Date(2024, 5, 1, 22, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
	} {
		encoded, err := ts.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		fresh := Resolve(&models.Item{Fields: map[string]any{"Modified": ts}}, "Modified")
		decoded := Resolve(&models.Item{Fields: map[string]any{"Modified": string(encoded)}}, "Modified")
		if fresh != decoded {
			t.Errorf("%s: fresh %q, decoded %q", encoded, fresh, decoded)
		}
	}
}

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{json.Number("9"), "9"},
		{int32(12), "12"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{7, "7"},
		{3.0, "3"},
		{"x", "x"},
		{nil, ""},
		{map[string]any{"Id": 1}, ""},
	}
	for _, tt := range tests {
		if got := FormatScalar(tt.raw); got != tt.want {
			t.Errorf("FormatScalar(%#v) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
