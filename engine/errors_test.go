package engine

import (
	"errors"
	"testing"
)

func TestBool(t *testing.T) {
	if v, err := Bool(True); err != nil || !v {
		t.Fatalf("Bool(True) = %v, %v", v, err)
	}
	if v, err := Bool(False); err != nil || v {
		t.Fatalf("Bool(False) = %v, %v", v, err)
	}
	for _, bad := range []int{-1, 2, 255} {
		_, err := Bool(bad)
		var inv *InvalidResponseError
		if !errors.As(err, &inv) {
			t.Fatalf("Bool(%d) = %v", bad, err)
		}
		if inv.Value != bad {
			t.Fatalf("value not preserved: %d", inv.Value)
		}
	}
}

func TestBadVariablesErrorOrdering(t *testing.T) {
	err := &BadVariablesError{Vars: map[string]string{
		"zeta_var":  "2",
		"alpha_var": "1",
	}}
	want := `rejected engine variables: alpha_var="1", zeta_var="2"`
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEnumDomains(t *testing.T) {
	if !PSMSingleChar.Valid() || PageSegMode(11).Valid() || PageSegMode(-1).Valid() {
		t.Fatal("page seg mode domain wrong")
	}
	if !BlockNoise.Valid() || PolyBlockType(13).Valid() {
		t.Fatal("block type domain wrong")
	}
	if !BlockTable.IsText() || BlockFlowingImage.IsText() || BlockHorzLine.IsText() {
		t.Fatal("text classification wrong")
	}
}
