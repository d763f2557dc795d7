package scriptengine_test

import (
	"testing"

	scriptengine "github.com/lumabrowser/script-engine"
)

func TestRun(t *testing.T) {
	result, err := scriptengine.Run([]byte("6 * 7;"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.IsNumber() || result.AsNumber() != 42 {
		t.Errorf("result = %s, want Number(42)", result.Inspect())
	}
}

func TestRunGlobalsPersist(t *testing.T) {
	if _, err := scriptengine.Run([]byte("function twice(x) { return x + x; }")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	result, err := scriptengine.Run([]byte("twice(4);"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.AsNumber() != 8 {
		t.Errorf("twice(4) = %s, want Number(8)", result.Inspect())
	}
}
