package shared

import (
	"strings"
	"testing"
)

func TestGenerateState(t *testing.T) {
	state := GenerateState()
	if state == "" {
		t.Fatal("expected non-empty state")
	}
	if len(strings.Split(state, "-")) != 5 {
		t.Errorf("expected UUID-shaped state, got %s", state)
	}

	if GenerateState() == state {
		t.Error("expected each state to be unique")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "\n") {
			t.Error("expected indented output")
		}
	})

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(out) != `{"key":"value"}` {
			t.Errorf("expected compact output, got %s", out)
		}
	})
}

func TestNewLogger(t *testing.T) {
	if logger := NewLogger(nil); logger == nil {
		t.Fatal("expected logger to be created")
	}
}
