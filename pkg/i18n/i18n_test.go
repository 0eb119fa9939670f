package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  language.Tag
	}{
		{"empty", nil, language.English},
		{"exact", []string{"es"}, language.Spanish},
		{"region", []string{"pt-BR"}, language.Portuguese},
		{"posix locale", []string{"pt_BR.UTF-8"}, language.Portuguese},
		{"skips unsupported", []string{"", "de", "es_ES"}, language.Spanish},
		{"unsupported", []string{"de"}, language.English},
		{"C locale", []string{"C"}, language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.prefs...); got != tt.want {
				t.Errorf("Detect(%v) = %v, want %v", tt.prefs, got, tt.want)
			}
		})
	}
}

func TestBundlesHaveEveryKey(t *testing.T) {
	for _, tag := range Supported {
		b, err := New(tag.String())
		if err != nil {
			t.Fatalf("New(%s) error = %v", tag, err)
		}
		for _, k := range Keys() {
			if _, ok := b.strings[k]; !ok {
				t.Errorf("%s bundle is missing %q", tag, k)
			}
		}
	}
}

func TestT(t *testing.T) {
	b := MustNew("pt-BR")
	if b.Language() != language.Portuguese {
		t.Fatalf("Language() = %v", b.Language())
	}
	if got := b.T("loading"); got != "Carregando..." {
		t.Errorf("T(loading) = %q", got)
	}
	if got := b.T("error_loading_items", "timeout"); got != "Erro ao carregar itens: timeout" {
		t.Errorf("T(error_loading_items) = %q", got)
	}
	if got := b.T("no_such_key"); got != "no_such_key" {
		t.Errorf("T(no_such_key) = %q", got)
	}

	var nilBundle *Bundle
	if got := nilBundle.T("loading"); got != "loading" {
		t.Errorf("nil T() = %q", got)
	}
}

func TestColumnTitle(t *testing.T) {
	b := MustNew("en")
	tests := map[string]string{
		"Dept":        "Dept",
		"FileType":    "FileType",
		"review_date": "Review Date",
		"owner":       "Owner",
	}
	for in, want := range tests {
		if got := b.ColumnTitle(in); got != want {
			t.Errorf("ColumnTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
