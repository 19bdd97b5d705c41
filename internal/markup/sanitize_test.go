package markup

import "testing"

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Portal 2", "Portal 2"},
		{"emphasis", "*Deluxe* _Edition_", `\*Deluxe\* \_Edition\_`},
		{"heading and strike", "#1 ~~old~~", `\#1 \~\~old\~\~`},
		{"angle brackets", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"already escaped marker", `\_keep`, `\_keep`},
		{"unicode untouched", "Café Über ★", "Café Über ★"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Escape(tt.in); got != tt.want {
				t.Fatalf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"*bold* _it_ #tag ~strike~ <b>",
		"snake_case_name",
		`already \* escaped`,
		"a<b>c",
	}
	for _, in := range inputs {
		once := Escape(in)
		twice := Escape(once)
		if once != twice {
			t.Errorf("Escape not idempotent for %q: %q -> %q", in, once, twice)
		}
		if len(once) < len(in) {
			t.Errorf("Escape(%q) shortened the text", in)
		}
	}
}
