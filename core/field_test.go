package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/dinosim/model"
)

func TestNewGridLayout(t *testing.T) {
	g, err := NewGrid(model.Bounds{XMin: 0, XMax: 120, YMin: -60, YMax: 60}, 3)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Size() != 3 {
		t.Fatalf("Size = %d, want 3", g.Size())
	}
	// Columns walk x, rows walk y.
	if p := g.Point(0, 2); p != (Vec2{X: 120, Y: -60}) {
		t.Errorf("Point(0,2) = %+v", p)
	}
	if p := g.Point(2, 0); p != (Vec2{X: 0, Y: 60}) {
		t.Errorf("Point(2,0) = %+v", p)
	}
	if p := g.Point(1, 1); p != (Vec2{X: 60, Y: 0}) {
		t.Errorf("Point(1,1) = %+v", p)
	}
}

func TestNewGridDefaultViewportEndpoints(t *testing.T) {
	vp := model.DefaultViewport()
	g, err := NewGrid(vp, DefaultNumPoints)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	n := g.Size()
	if g.X.At(0, 0) != vp.XMin || g.X.At(0, n-1) != vp.XMax {
		t.Errorf("x span = [%v, %v]", g.X.At(0, 0), g.X.At(0, n-1))
	}
	if g.Y.At(0, 0) != vp.YMin || g.Y.At(n-1, 0) != vp.YMax {
		t.Errorf("y span = [%v, %v]", g.Y.At(0, 0), g.Y.At(n-1, 0))
	}
}

func TestNewGridSinglePoint(t *testing.T) {
	g, err := NewGrid(model.Bounds{XMin: 5, XMax: 10, YMin: -1, YMax: 1}, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if p := g.Point(0, 0); p != (Vec2{X: 5, Y: -1}) {
		t.Fatalf("Point(0,0) = %+v, want lower bound", p)
	}
}

func TestFieldRequestValidation(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := configured(t, newTestCraft(t, "dino", body, 50, 0, 0), 20, 2.4e9, 3)

	for _, n := range []int{0, -4} {
		req := DefaultFieldRequest()
		req.NumPoints = n
		if _, err := ComputePowerField(req, sc); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("NumPoints=%d: err = %v, want ErrInvalidParameter", n, err)
		}
	}

	req := DefaultFieldRequest()
	req.Bounds = model.Bounds{XMin: 10, XMax: -10, YMin: 0, YMax: 1}
	if _, err := ComputePowerField(req, sc); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("inverted bounds: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := ComputePowerField(DefaultFieldRequest(), nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("nil spacecraft: err = %v, want ErrInvalidParameter", err)
	}
}

func TestComputePowerFieldShapeAndLabel(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := configured(t, newTestCraft(t, "dino", body, 50, 0, 0), 20, 2.4e9, 3)

	req := DefaultFieldRequest()
	req.NumPoints = 25
	f, err := ComputePowerField(req, sc)
	if err != nil {
		t.Fatalf("ComputePowerField: %v", err)
	}
	for name, m := range map[string]interface{ Dims() (int, int) }{"X": f.X, "Y": f.Y, "Value": f.Value} {
		if r, c := m.Dims(); r != 25 || c != 25 {
			t.Errorf("%s dims = %dx%d, want 25x25", name, r, c)
		}
	}
	if f.Label != PowerLabel || f.Spacecraft != "dino" {
		t.Errorf("label/spacecraft = %q/%q", f.Label, f.Spacecraft)
	}
}

// Body at origin with radius 10, spacecraft 50 above it at angle 0: the
// spacecraft sits at (60, 0), which is an exact grid sample here.
func TestComputePowerFieldGuardsZeroDistance(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := configured(t, newTestCraft(t, "dino", body, 50, 0, 0), 20, 2.4e9, 3)
	if pos := sc.GlobalPosition(); pos != (Vec2{X: 60, Y: 0}) {
		t.Fatalf("GlobalPosition = %+v", pos)
	}

	req := FieldRequest{
		Bounds:            model.Bounds{XMin: 0, XMax: 120, YMin: -60, YMax: 60},
		NumPoints:         3,
		AntennaCorrection: true,
	}
	f, err := ComputePowerField(req, sc)
	if err != nil {
		t.Fatalf("ComputePowerField: %v", err)
	}
	if f.Singular != 1 {
		t.Fatalf("Singular = %d, want 1", f.Singular)
	}

	at := f.Value.At(1, 1)
	if math.IsNaN(at) || math.IsInf(at, 0) {
		t.Fatalf("power at spacecraft = %v, want finite", at)
	}
	want := 20 - FreeSpacePathLossDB(MinDistanceM, 2400) + 10*math.Log10(3)
	if math.Abs(at-want) > 1e-9 {
		t.Fatalf("power at spacecraft = %v, want %v", at, want)
	}

	// The strongest sample is the one at the spacecraft.
	r, c := f.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := f.Value.At(i, j); v > at {
				t.Fatalf("sample (%d,%d) = %v exceeds spacecraft sample %v", i, j, v, at)
			}
		}
	}
}

func TestPowerFieldWithoutCorrectionIgnoresPointing(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	req := DefaultFieldRequest()
	req.NumPoints = 30
	req.AntennaCorrection = false

	var ref *PowerField
	for _, pointing := range []float64{0, 45, 90, -170} {
		sc := configured(t, newTestCraft(t, "dino", body, 50, 30, pointing), 20, 2.4e9, 6)
		f, err := ComputePowerField(req, sc)
		if err != nil {
			t.Fatalf("ComputePowerField: %v", err)
		}
		if ref == nil {
			ref = f
			continue
		}
		r, c := f.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if f.Value.At(i, j) != ref.Value.At(i, j) {
					t.Fatalf("pointing %v changed sample (%d,%d)", pointing, i, j)
				}
			}
		}
	}
}

func TestPowerFieldCorrectionFollowsBoresight(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	req := FieldRequest{
		Bounds:            model.Bounds{XMin: 0, XMax: 120, YMin: -60, YMax: 60},
		NumPoints:         3,
		AntennaCorrection: true,
	}

	// Pointing outward (+x): the sample ahead at (120, 0) beats the one
	// beside it at (60, 60), which is equally far away.
	out := configured(t, newTestCraft(t, "out", body, 50, 0, 0), 20, 2.4e9, 10)
	f, err := ComputePowerField(req, out)
	if err != nil {
		t.Fatalf("ComputePowerField: %v", err)
	}
	ahead, beside := f.Value.At(1, 2), f.Value.At(2, 1)
	if ahead <= beside {
		t.Fatalf("outward: ahead %v <= beside %v", ahead, beside)
	}

	// Rotating boresight by +90° swaps the ordering.
	up := configured(t, newTestCraft(t, "up", body, 50, 0, 90), 20, 2.4e9, 10)
	f, err = ComputePowerField(req, up)
	if err != nil {
		t.Fatalf("ComputePowerField: %v", err)
	}
	if f.Value.At(2, 1) <= f.Value.At(1, 2) {
		t.Fatalf("upward: beside %v <= ahead %v", f.Value.At(2, 1), f.Value.At(1, 2))
	}
}
