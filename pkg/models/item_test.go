package models

import "testing"

func TestIsDocument(t *testing.T) {
	tests := []struct {
		name string
		item *Item
		want bool
	}{
		{"file", &Item{FileRef: "/Docs/a.pdf", FileLeafRef: "a.pdf"}, true},
		{"file content type", &Item{FileRef: "/Docs/a.pdf", FileLeafRef: "a.pdf", ContentTypeID: "0x0101009A"}, true},
		{"folder object type", &Item{FileRef: "/Docs/Sub", FileLeafRef: "Sub", FSObjType: FSObjFolder}, false},
		{"folder content type", &Item{FileRef: "/Docs/Sub", FileLeafRef: "Sub", ContentTypeID: "0x012000ABC"}, false},
		{"missing path", &Item{FileLeafRef: "a.pdf"}, false},
		{"missing leaf", &Item{FileRef: "/Docs/a.pdf"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.IsDocument(); got != tt.want {
				t.Errorf("IsDocument() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestField(t *testing.T) {
	item := &Item{
		ID:      7,
		Title:   "Budget",
		FileRef: "/Docs/a.pdf",
		Fields:  map[string]any{"Dept": "Ops", "Title": "Override"},
	}

	if v, ok := item.Field("Dept"); !ok || v != "Ops" {
		t.Errorf("Field(Dept) = %v, %v", v, ok)
	}
	if v, ok := item.Field("Title"); !ok || v != "Override" {
		t.Errorf("Field(Title) = %v, %v; Fields should win over the typed column", v, ok)
	}
	if v, ok := item.Field("ID"); !ok || v != 7 {
		t.Errorf("Field(ID) = %v, %v", v, ok)
	}
	if _, ok := item.Field("Missing"); ok {
		t.Error("Field(Missing) should not be found")
	}

	var nilItem *Item
	if _, ok := nilItem.Field("Dept"); ok {
		t.Error("nil item should have no fields")
	}
}
