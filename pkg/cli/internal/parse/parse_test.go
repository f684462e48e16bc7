package parse

import "testing"

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delims     []rune
		key, value string
		ok         bool
	}{
		{"name=Algebra", nil, "name", "Algebra", true},
		{" code =MTH=101", nil, "code", "MTH=101", true},
		{"type:media", []rune{':', '='}, "type", "media", true},
		{"novalue", nil, "", "", false},
	}
	for _, tt := range tests {
		key, value, ok := KeyValue(tt.in, tt.delims...)
		if key != tt.key || value != tt.value || ok != tt.ok {
			t.Errorf("KeyValue(%q) = %q, %q, %v; want %q, %q, %v",
				tt.in, key, value, ok, tt.key, tt.value, tt.ok)
		}
	}
}

func TestPairs(t *testing.T) {
	got, err := Pairs([]string{"module_id=1", "type=document", "type=media"})
	if err != nil {
		t.Fatalf("Pairs() error = %v", err)
	}
	if len(got) != 2 || got["module_id"] != "1" || got["type"] != "media" {
		t.Errorf("Pairs() = %v", got)
	}

	if _, err := Pairs([]string{"=x"}); err == nil {
		t.Error("Pairs() with empty key: expected error")
	}
	if _, err := Pairs([]string{"broken"}); err == nil {
		t.Error("Pairs() without delimiter: expected error")
	}
}
