package deck

import (
	"errors"
	"testing"
)

func TestSection(t *testing.T) {
	items := makeItems(120)

	tests := []struct {
		name    string
		section int
		want    []string
	}{
		{"first", 1, []string{"1", "51", "101"}},
		{"last", 50, []string{"50", "100"}},
		{"out of range", 51, nil},
		{"negative", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Section(items, tt.section, DefaultSectionCount)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("item %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	if got := Section(items, 0, DefaultSectionCount); len(got) != len(items) {
		t.Fatalf("section 0 should keep everything, got %d", len(got))
	}
	if n := Sections(10, 50); n != 10 {
		t.Errorf("Sections(10,50) = %d", n)
	}
	if n := Sections(500, 50); n != 50 {
		t.Errorf("Sections(500,50) = %d", n)
	}
}

func TestLookupKind(t *testing.T) {
	k, err := LookupKind(KindFlags)
	if err != nil {
		t.Fatalf("lookup flags: %v", err)
	}
	it := Item{ID: "jp", Front: "日本", Back: "アジア", Image: "flags/jp.png"}
	if got := k.Prompt(it, false); got != "flags/jp.png" {
		t.Errorf("prompt = %q", got)
	}
	if got := k.Answer(it, false); got != "日本" {
		t.Errorf("answer = %q", got)
	}
	if got := k.Prompt(it, true); got != "日本" {
		t.Errorf("flipped prompt = %q", got)
	}
	a, _, b, _ := k.Spoken(it)
	if a != "日本" || b != "アジア" {
		t.Errorf("spoken = %q, %q", a, b)
	}

	if _, err := LookupKind("music"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if names := KindNames(); len(names) != 3 || names[0] != KindFlags {
		t.Errorf("unexpected kind names %v", names)
	}
}
