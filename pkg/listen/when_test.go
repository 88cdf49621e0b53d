package listen

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseWhen(t *testing.T) {
	tests := []struct {
		in      string
		want    When
		wantErr bool
	}{
		{"mounted", Mounted, false},
		{"unmounted", Unmounted, false},
		{"both", Both, false},
		{" Both ", Both, false},
		{"", 0, true},
		{"always", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWhen(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWhen(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidWhen) {
			t.Errorf("ParseWhen(%q) error = %v, want ErrInvalidWhen", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseWhen(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWhenPhases(t *testing.T) {
	tests := []struct {
		w         When
		onMount   bool
		onUnmount bool
	}{
		{Mounted, true, false},
		{Unmounted, false, true},
		{Both, true, true},
		{When(0), false, false},
	}

	for _, tt := range tests {
		if got := tt.w.OnMount(); got != tt.onMount {
			t.Errorf("%v.OnMount() = %v, want %v", tt.w, got, tt.onMount)
		}
		if got := tt.w.OnUnmount(); got != tt.onUnmount {
			t.Errorf("%v.OnUnmount() = %v, want %v", tt.w, got, tt.onUnmount)
		}
	}
}

func TestWhenJSON(t *testing.T) {
	var v struct {
		When When `json:"when"`
	}
	if err := json.Unmarshal([]byte(`{"when":"unmounted"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.When != Unmounted {
		t.Errorf("When = %v, want unmounted", v.When)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"when":"unmounted"}` {
		t.Errorf("Marshal = %s", out)
	}

	if _, err := json.Marshal(struct{ W When }{W: When(7)}); err == nil {
		t.Error("marshaling an invalid phase should fail")
	}
	if got := When(7).String(); got != "When(7)" {
		t.Errorf("String() = %q", got)
	}
}
