package object

import (
	stderrors "errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/backend/simsched"
	"github.com/hdlbridge/gpi/errors"
)

func testDesign(t *testing.T) (*simsched.Sim, *Handle) {
	t.Helper()
	sim := simsched.New("sim")
	tb := sim.AddModule(0, "tb")
	dut := sim.AddModule(tb, "dut")
	sim.AddSignal(dut, "clk", 1)
	sim.AddSignal(dut, "data", 8)
	sim.AddReal(dut, "voltage")
	sim.AddParam(dut, "variant", "fast")
	sim.AddArray(dut, "mem", 4)
	sim.AddModule(tb, "empty")
	sim.SetEntry(func(uint64) {})

	root, ok := Root(sim, "", zaptest.NewLogger(t))
	if !ok {
		t.Fatal("root lookup failed")
	}
	return sim, root
}

func TestRoot_NameFilter(t *testing.T) {
	sim, _ := testDesign(t)

	if _, ok := Root(sim, "tb", nil); !ok {
		t.Error("root lookup with matching name filter failed")
	}
	if _, ok := Root(sim, "other_top", nil); ok {
		t.Error("root lookup with mismatched name filter succeeded")
	}
	if _, ok := Root(nil, "", nil); ok {
		t.Error("root lookup without a backend succeeded")
	}
}

func TestHandle_LookupMissingChild(t *testing.T) {
	_, root := testDesign(t)

	dut, ok := root.ChildByName("dut")
	if !ok {
		t.Fatal("dut lookup failed")
	}
	if _, ok := dut.ChildByName("does_not_exist"); ok {
		t.Error("lookup of missing child succeeded")
	}
}

func TestHandle_NamesAndKinds(t *testing.T) {
	_, root := testDesign(t)

	dut, _ := root.ChildByName("dut")
	clk, ok := dut.ChildByName("clk")
	if !ok {
		t.Fatal("clk lookup failed")
	}

	if clk.Name() != "clk" {
		t.Errorf("Name() = %q, want clk", clk.Name())
	}
	if clk.Path() != "tb.dut.clk" {
		t.Errorf("Path() = %q, want tb.dut.clk", clk.Path())
	}
	if clk.Kind() != backend.KindSignal || clk.KindName() != "signal" {
		t.Errorf("kind = %v %q, want signal", clk.Kind(), clk.KindName())
	}
}

func TestHandle_IterateChildrenAndUnsupported(t *testing.T) {
	_, root := testDesign(t)
	dut, _ := root.ChildByName("dut")

	it, err := dut.Iterate(backend.SelectChildren)
	if err != nil {
		t.Fatalf("iterate children: %v", err)
	}
	var names []string
	for {
		child, ok := it.Next()
		if !ok {
			break
		}
		names = append(names, child.Name())
	}
	if len(names) != 5 {
		t.Errorf("children = %v, want 5 entries", names)
	}

	empty, _ := root.ChildByName("empty")
	it, err = empty.Iterate(backend.SelectChildren)
	if err != nil {
		t.Fatalf("iterate empty module: %v", err)
	}
	if _, ok := it.Next(); ok {
		t.Error("empty module yielded a child")
	}

	if _, err := dut.Iterate(backend.SelectDrivers); err == nil {
		t.Error("unsupported selector did not error")
	} else if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLookup, Kind: errors.KindUnsupported}) {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestHandle_ValueEncodings(t *testing.T) {
	_, root := testDesign(t)
	dut, _ := root.ChildByName("dut")
	data, _ := dut.ChildByName("data")
	voltage, _ := dut.ChildByName("voltage")
	variant, _ := dut.ChildByName("variant")

	if err := data.SetInt(backend.Deposit, 0x5a); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if got := data.BinStr(); got != "01011010" {
		t.Errorf("BinStr = %q, want 01011010", got)
	}
	if v, ok := data.Int(); !ok || v != 0x5a {
		t.Errorf("Int = (%d, %v), want (90, true)", v, ok)
	}

	if err := voltage.SetReal(backend.Deposit, 1.8); err != nil {
		t.Fatalf("set real: %v", err)
	}
	if v, ok := voltage.Real(); !ok || v != 1.8 {
		t.Errorf("Real = (%v, %v), want (1.8, true)", v, ok)
	}

	if got := variant.Str(); got != "fast" {
		t.Errorf("Str = %q, want fast", got)
	}
}

func TestHandle_NullNormalization(t *testing.T) {
	_, root := testDesign(t)
	dut, _ := root.ChildByName("dut")
	voltage, _ := dut.ChildByName("voltage")

	// A real-valued signal has no bit-string reading; the placeholder
	// comes back instead of a null.
	if got := voltage.BinStr(); got != NullValue {
		t.Errorf("BinStr on real signal = %q, want %q", got, NullValue)
	}
	if got := root.Str(); got != NullValue {
		t.Errorf("Str on module = %q, want %q", got, NullValue)
	}
}

func TestHandle_ForceRelease(t *testing.T) {
	_, root := testDesign(t)
	dut, _ := root.ChildByName("dut")
	clk, _ := dut.ChildByName("clk")

	if err := clk.SetBinStr(backend.Release, "0"); err == nil {
		t.Fatal("release without force succeeded")
	} else if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseValue, Kind: errors.KindNotForced}) {
		t.Errorf("error = %v, want not_forced", err)
	}

	if err := clk.SetBinStr(backend.Force, "1"); err != nil {
		t.Fatalf("force: %v", err)
	}
	if err := clk.SetBinStr(backend.Release, "1"); err != nil {
		t.Fatalf("release after force: %v", err)
	}
	// Released; a second release is again rejected.
	if err := clk.SetBinStr(backend.Release, "1"); err == nil {
		t.Error("double release succeeded")
	}
}

func TestHandle_Range(t *testing.T) {
	_, root := testDesign(t)
	dut, _ := root.ChildByName("dut")
	mem, _ := dut.ChildByName("mem")

	left, right, dir, ok := mem.Range()
	if !ok || left != 0 || right != 3 || dir != backend.DirAscending {
		t.Errorf("Range = (%d, %d, %v, %v), want (0, 3, ascending, true)", left, right, dir, ok)
	}

	el, ok := mem.ChildByIndex(2)
	if !ok {
		t.Fatal("ChildByIndex(2) failed")
	}
	if el.Name() != "mem[2]" {
		t.Errorf("element name = %q, want mem[2]", el.Name())
	}

	if _, _, _, ok := dut.Range(); ok {
		t.Error("module reported indexable range")
	}
}
