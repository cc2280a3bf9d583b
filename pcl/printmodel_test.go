package pcl

import "testing"

func TestPrintModelOpaqueSourceTransparentPatternTwoPass(t *testing.T) {
	m := NewPrintModel()
	m.SetRop(0xCC) // S
	m.SourceTransparent = false
	m.PatternTransparent = true

	plan := m.Plan()
	if !plan.TwoPass {
		t.Fatal("opaque source + transparent pattern must plan a two-pass render")
	}
	if plan.ForegroundRop != 0xCC {
		t.Errorf("ForegroundRop = %#x, want 0xCC", plan.ForegroundRop)
	}
	// rop[S=1] for 0xCC (S) is the constant-true table for s=1: 0xFF.
	if plan.WhitePassRop != 0xFF {
		t.Errorf("WhitePassRop = %#x, want 0xFF", plan.WhitePassRop)
	}
}

func TestPrintModelSinglePassOtherwise(t *testing.T) {
	m := NewPrintModel()
	m.SetRop(0x0F)
	m.SourceTransparent = true
	m.PatternTransparent = true

	plan := m.Plan()
	if plan.TwoPass {
		t.Fatal("only opaque-source + transparent-pattern should trigger two-pass")
	}
	if plan.SinglePassRop != 0x0F {
		t.Errorf("SinglePassRop = %#x, want 0x0F", plan.SinglePassRop)
	}
}
