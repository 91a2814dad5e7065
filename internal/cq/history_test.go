package cq

import "testing"

func TestHistoryWindowDefaultBelowThreshold(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 9; i++ {
		h.Insert(30)
	}
	lo, hi := h.Window()
	if lo != DefaultWindowMin || hi != DefaultWindowMax {
		t.Errorf("Window() = (%v, %v), want default (%v, %v)", lo, hi, DefaultWindowMin, DefaultWindowMax)
	}
}

func TestHistoryWindowPercentile(t *testing.T) {
	h := NewHistory()
	values := []int{10, 15, 20, 22, 25, 28, 30, 33, 38, 45}
	for _, v := range values {
		h.Insert(v)
	}
	if h.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", h.Len())
	}

	lo, hi := h.Window()
	// p = 10/10 = 1; history[1] = 15, history[10-1-1] = history[8] = 38
	if lo != 15 || hi != 38 {
		t.Errorf("Window() = (%v, %v), want (15, 38)", lo, hi)
	}
}

func TestHistorySetWindowOverridesDefault(t *testing.T) {
	h := NewHistory()
	h.SetWindow(12, 48)
	for i := 0; i < 9; i++ {
		h.Insert(30)
	}
	lo, hi := h.Window()
	if lo != 12 || hi != 48 {
		t.Errorf("Window() = (%v, %v), want (12, 48)", lo, hi)
	}
}

func TestHistoryInsertKeepsSortedOrder(t *testing.T) {
	h := NewHistory()
	for _, v := range []int{30, 10, 20, 10, 40} {
		h.Insert(v)
	}
	want := []int{10, 10, 20, 30, 40}
	for i, w := range want {
		if h.values[i] != w {
			t.Errorf("values[%d] = %d, want %d", i, h.values[i], w)
		}
	}
}
