package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Side
		wantErr bool
	}{
		{name: "buy", input: "buy", want: Buy},
		{name: "sell", input: "sell", want: Sell},
		{name: "unknown", input: "hold", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSide(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSide(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSide(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestSideJSON tests that Side survives a JSON round trip as its string form
func TestSideJSON(t *testing.T) {
	b, err := json.Marshal(Sell)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"sell"` {
		t.Errorf(`expected "sell", got %s`, b)
	}

	var s Side
	if err := json.Unmarshal([]byte(`"buy"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != Buy {
		t.Errorf("expected Buy, got %v", s)
	}

	if err := json.Unmarshal([]byte(`"short"`), &s); err == nil {
		t.Errorf("expected error for unknown side, got nil")
	}
}

func TestCandidateAvailable(t *testing.T) {
	tests := []struct {
		name   string
		size   string
		filled string
		want   string
	}{
		{name: "untouched", size: "40", filled: "0", want: "40"},
		{name: "partially filled", size: "80", filled: "25.5", want: "54.5"},
		{name: "fully filled", size: "80", filled: "80", want: "0"},
		{name: "overfilled clamps", size: "80", filled: "81", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{
				Size:   decimal.RequireFromString(tt.size),
				Filled: decimal.RequireFromString(tt.filled),
			}
			if got := c.Available(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected available %s, got %s", tt.want, got)
			}
		})
	}
}
