package compute

import "testing"

func TestSelectBelowThreshold(t *testing.T) {
	b := Select(100, 500, 1)
	defer b.Cleanup()

	if b.Name() != "cpu" {
		t.Errorf("expected cpu backend below threshold, got %s", b.Name())
	}
}

func TestSelectFallsBackWhenUnavailable(t *testing.T) {
	// Above threshold, selection tries the accelerator first; when it cannot
	// initialize the cpu backend must come back instead of a failure.
	b := Select(1000, 500, 1)
	defer b.Cleanup()

	if !b.Available() {
		t.Fatal("selected backend must be available")
	}
	if acc := NewOpenCLBackend(); !acc.Available() {
		acc.Cleanup()
		if b.Name() != "cpu" {
			t.Errorf("expected cpu fallback, got %s", b.Name())
		}
	}
}

func TestSelectZeroThresholdDisablesAccelerator(t *testing.T) {
	b := Select(100000, 0, 1)
	defer b.Cleanup()

	if b.Name() != "cpu" {
		t.Errorf("threshold 0 must force the cpu backend, got %s", b.Name())
	}
}
