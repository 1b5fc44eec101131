package spamsum

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"3:Y0ujLEEz6KxMENJv:Y0u3tz68/v",
		"48:9zdDCjd6ALqt7+svFIHO4VHCJ4foXT5Luz5b4XDFN40shD7iqRJCLoz6a8s+U7fe:9zMvqt7+sUO4NCKAXT5LuzSXDFOl7FRw",
		"3::",
		"12:abc:",
		"6::xyz",
	} {
		sig, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q): %v", s, err)
			continue
		}
		if got := sig.String(); got != s {
			t.Errorf("round trip of %q gave %q", s, got)
		}
	}
}

func TestParse_GeneratedSignature(t *testing.T) {
	sig := Generate([]byte(spamText))

	parsed, err := Parse(sig.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != sig {
		t.Errorf("parsed %+v, want %+v", parsed, sig)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no colon", "3"},
		{"one colon", "3:abc"},
		{"extra field", "3:abc:def:ghi"},
		{"empty blocksize", ":abc:def"},
		{"alpha blocksize", "x:abc:def"},
		{"signed blocksize", "+3:abc:def"},
		{"negative blocksize", "-3:abc:def"},
		{"zero blocksize", "0:abc:def"},
		{"overflow", "99999999999999999999999:abc:def"},
		{"symbol outside alphabet", "3:ab-c:def"},
		{"non-ascii left", "3:ab\u00e9:def"},
		{"space in right", "3:abc:de f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			if !errors.Is(err, ErrMalformedSignature) {
				t.Errorf("error %v does not wrap ErrMalformedSignature", err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) || perr.Input != tt.input {
				t.Errorf("error %v is not a *ParseError for %q", err, tt.input)
			}
		})
	}
}

func TestParse_OverflowWrapsStrconvError(t *testing.T) {
	_, err := Parse("99999999999999999999999:a:b")
	if !errors.Is(err, strconv.ErrRange) {
		t.Errorf("error %v does not wrap strconv.ErrRange", err)
	}
}

func TestSignature_JSON(t *testing.T) {
	type payload struct {
		Sig Signature `json:"sig"`
	}

	in := payload{Sig: Signature{Blocksize: 3, Left: "Y0ujLEEz6KxMENJv", Right: "Y0u3tz68/v"}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(data), `{"sig":"3:Y0ujLEEz6KxMENJv:Y0u3tz68/v"}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("Unmarshal = %+v, want %+v", out, in)
	}

	if err := json.Unmarshal([]byte(`{"sig":"not a signature"}`), &out); !errors.Is(err, ErrMalformedSignature) {
		t.Errorf("Unmarshal of bad signature: error = %v", err)
	}
}

func TestSignature_IsZero(t *testing.T) {
	if !(Signature{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	if Generate(nil).IsZero() {
		t.Error("signature of empty input has a blocksize and is not zero")
	}
}
