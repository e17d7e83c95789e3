package gpio

import "testing"

func TestMockDriver_WriteRequiresSetup(t *testing.T) {
	m := NewMockDriver()
	if err := m.WritePin(4, High); err == nil {
		t.Error("expected error writing a pin that was not set up")
	}
	if err := m.SetupOutput(4); err != nil {
		t.Fatalf("SetupOutput: %v", err)
	}
	if m.Level(4) != Low {
		t.Error("new output should start LOW")
	}
	if err := m.WritePin(4, High); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if m.Level(4) != High {
		t.Error("pin 4 should be HIGH")
	}
}

func TestMockDriver_ClosedRejectsWrites(t *testing.T) {
	m := NewMockDriver()
	_ = m.SetupOutput(4)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.WritePin(4, High); err == nil {
		t.Error("expected error after Close")
	}
}

func TestNewDriver_Mock(t *testing.T) {
	d, err := NewDriver(true)
	if err != nil {
		t.Fatalf("NewDriver(true): %v", err)
	}
	if _, ok := d.(*MockDriver); !ok {
		t.Errorf("NewDriver(true) = %T, want *MockDriver", d)
	}
}

func TestLevel_String(t *testing.T) {
	if High.String() != "HIGH" || Low.String() != "LOW" {
		t.Errorf("got %q/%q", High.String(), Low.String())
	}
}
