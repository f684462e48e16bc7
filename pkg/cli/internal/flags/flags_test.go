package flags

import "testing"

func TestKeyValues(t *testing.T) {
	var kv KeyValues
	for _, v := range []string{"name=Algebra", "code=MTH101"} {
		if err := kv.Set(v); err != nil {
			t.Fatalf("Set(%q) error = %v", v, err)
		}
	}
	if got := kv.String(); got != "name=Algebra,code=MTH101" {
		t.Errorf("String() = %q", got)
	}

	for _, bad := range []string{"noequals", "=value"} {
		if err := kv.Set(bad); err == nil {
			t.Errorf("Set(%q): expected error", bad)
		}
	}
	if len(kv) != 2 {
		t.Errorf("rejected values were stored: %v", kv)
	}
}
