package numlit

import "testing"

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"-7", -7, false},
		{"+7", 7, false},
		{"0x10", 16, false},
		{"0X1F", 31, false},
		{"-0x10", -16, false},
		{"", 0, true},
		{"not-a-number", 0, true},
		{"0xZZ", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseInt(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseInt(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLooksLikeInt(t *testing.T) {
	if !LooksLikeInt("0x1234") {
		t.Error("LooksLikeInt(\"0x1234\") = false, want true")
	}
	if LooksLikeInt("label") {
		t.Error("LooksLikeInt(\"label\") = true, want false")
	}
}

func TestDecodeQuoted(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"hi"`, "hi"},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"a\0b"`, "a\x00b"},
		{`"\x41\x42"`, "AB"},
	}
	for _, tc := range tests {
		got, err := DecodeQuoted(tc.in)
		if err != nil {
			t.Fatalf("DecodeQuoted(%q) error: %v", tc.in, err)
		}
		if string(got) != tc.want {
			t.Errorf("DecodeQuoted(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeQuotedRejectsUnquoted(t *testing.T) {
	if _, err := DecodeQuoted("bareword"); err == nil {
		t.Error("DecodeQuoted on an unquoted token should error")
	}
}
