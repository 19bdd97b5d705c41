package markup

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Portal 2", "portal-2"},
		{"Half-Life 2: Episode One", "half-life-2-episode-one"},
		{"  Spaced   Out  ", "spaced-out"},
		{"Café Über Straße", "cafe-uber-strase"},
		{"Ärger & Öl", "arger-ol"},
		{"DOOM™ Eternal", "doom-eternal"},
		{"🪟 🍏 🐧", ""},
		{"a--b", "a-b"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"1 🪟 Portal 2", "Half-Life: Alyx", "Ünïcödé -- Name", "x"} {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify(Slugify(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestAnchor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ordinal int
		tags    []string
		name    string
		want    string
	}{
		{1, []string{"🪟", "🍏"}, "Portal 2", "1-portal-2"},
		{12, nil, "Stardew Valley", "12-stardew-valley"},
		{3, []string{"🐧"}, "", "3"},
	}

	for _, tt := range tests {
		if got := Anchor(tt.ordinal, tt.tags, tt.name); got != tt.want {
			t.Errorf("Anchor(%d, %v, %q) = %q, want %q", tt.ordinal, tt.tags, tt.name, got, tt.want)
		}
	}
}

func TestAnchorDeterministic(t *testing.T) {
	t.Parallel()

	tags := []string{"🪟"}
	if Anchor(4, tags, "Celeste") != Anchor(4, tags, "Celeste") {
		t.Fatalf("Anchor is not deterministic")
	}
}

func TestAnchorDistinctOrdinalsNeverCollide(t *testing.T) {
	t.Parallel()

	names := []string{"Portal", "Portal", "2 Portal", "", "1", "Portal 2", "portal", "12"}
	seen := make(map[string]int)
	for ordinal := 1; ordinal <= 40; ordinal++ {
		name := names[ordinal%len(names)]
		a := Anchor(ordinal, []string{"🪟"}, name)
		if prev, dup := seen[a]; dup {
			t.Fatalf("anchor %q produced for ordinals %d and %d", a, prev, ordinal)
		}
		seen[a] = ordinal
	}
}
