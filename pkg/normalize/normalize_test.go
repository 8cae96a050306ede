package normalize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Ahmed  Ali ", "ahmed ali"},
		{"مُحَمَّد", "محمد"},              // diacritics stripped
		{"أحمد", "احمد"},                 // hamza alef folded
		{"آمنة", "امنه"},                 // madda alef + teh marbuta
		{"مصطفى", "مصطفي"},               // alef maksura -> yeh
		{"مستشفى الملك / فهد", "مستشفي الملك فهد"},
		{"A\\B|C", "a b c"},
		{"one–two—three", "one-two-three"},
		{"(Chest pain), fever; cough: mild.", "chest pain fever cough mild"},
		{"٠١٢٣", "0123"},                 // Arabic-Indic digits
		{"۴۵", "45"},                     // Extended Arabic-Indic digits
		{"12345", "12345"},               // numeric passes through
		{"محمـــد", "محمد"},              // tatweel removed
	}
	for _, tt := range tests {
		got := Text(tt.input)
		if got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"", "Dr. Ahmed / Ali", "مُحَمَّد بن عبدالله", "E11.9; J45",
		"شركة التأمين التعاونية", "a–b—c‐d", "  mixed نص WITH ١٢٣  ",
	}
	for _, s := range inputs {
		once := Text(s)
		twice := Text(once)
		if once != twice {
			t.Errorf("Text not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, ""},
		{"  x ", "x"},
		{float64(45567), "45567"},
		{float64(12.5), "12.5"},
		{int64(7), "7"},
		{[]byte(" bytes "), "bytes"},
	}
	for _, tt := range tests {
		got := Value(tt.input)
		if got != tt.want {
			t.Errorf("Value(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripTitles(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Dr. Ahmed Dr.", "Ahmed"},
		{"Dr Ahmed Ali", "Ahmed Ali"},
		{"Ahmed Prof Ali", "Ahmed Ali"}, // titles dropped mid-string
		{"الدكتور محمد", "محمد"},
		{"دكتور خالد العتيبي", "خالد العتيبي"},
		{"Mr.Mrs", ""},                  // only honorifics -> empty
		{"Dr.", ""},
		{"", ""},
		{"Sara\\Ali", "Sara Ali"},
	}
	for _, tt := range tests {
		got := StripTitles(tt.input)
		if got != tt.want {
			t.Errorf("StripTitles(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	if got := Name("Dr. Ahmed ALI"); got != "ahmed ali" {
		t.Errorf("Name = %q, want %q", got, "ahmed ali")
	}
	if got := NameRaw("Dr. Ahmed ALI"); got != "dr ahmed ali" {
		t.Errorf("NameRaw = %q, want %q", got, "dr ahmed ali")
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		input      string
		full, root string
	}{
		{"Diagnosis: E11.9, follow-up", "E11.9", "E11"},
		{"e03.9", "E03.9", "E03"},
		{"J45", "J45", "J45"},
		{"no code here", "NO CODE HERE", "NO CODE HERE"},
		{"", "", ""},
	}
	for _, tt := range tests {
		got := ExtractCode(tt.input)
		if got.Full != tt.full || got.Root != tt.root {
			t.Errorf("ExtractCode(%q) = %+v, want {%s %s}", tt.input, got, tt.full, tt.root)
		}
	}
}

func TestFirstCode(t *testing.T) {
	tests := []struct {
		input      string
		full, root string
	}{
		{"E11.9; J45.0", "E11.9", "E11"},
		{"J45.0, E11", "J45.0", "J45"},
		{"K21 (reflux)", "K21", "K21"},
		{"text، E11", "TEXT", "TEXT"}, // truncated before the code
	}
	for _, tt := range tests {
		got := FirstCode(tt.input)
		if got.Full != tt.full || got.Root != tt.root {
			t.Errorf("FirstCode(%q) = %+v, want {%s %s}", tt.input, got, tt.full, tt.root)
		}
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Bupa Insurance Co. Ltd 30912", "bupa"},
		{"شركة التأمين التعاونية", "التامين التعاونيه"}, // bare شركه dropped, definite-article forms kept
		{"MedGulf 12", "medgulf 12"},            // short digit runs survive
		{"", ""},
	}
	for _, tt := range tests {
		got := Key(tt.input)
		if got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"Bupa Insurance Co. Ltd 30912", "شركة التأمين التعاونية 4421",
		"Al-Rajhi Takaful (contract #55521)", "plain name",
	}
	for _, s := range inputs {
		once := Key(s)
		twice := Key(once)
		if once != twice {
			t.Errorf("Key not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}
