package export

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/dinosim/core"
	"github.com/signalsfoundry/dinosim/model"
)

func testCrafts(t *testing.T) (*model.Body, []*core.Spacecraft) {
	t.Helper()
	moon := model.NewBody("Moon", 0, 0, 10)
	a, err := core.NewSpacecraft("dino 1", moon, 50, 0, 0)
	if err != nil {
		t.Fatalf("NewSpacecraft: %v", err)
	}
	if err := a.SetCommParams(core.CommParams{TransmitPowerDBm: 20, FrequencyHz: 2.4e9, AntennaGainDB: 3}); err != nil {
		t.Fatalf("SetCommParams: %v", err)
	}
	b, err := core.NewSpacecraft("dino-2", moon, 50, 90, 0)
	if err != nil {
		t.Fatalf("NewSpacecraft: %v", err)
	}
	return moon, []*core.Spacecraft{a, b}
}

func TestSpacecraftRecords(t *testing.T) {
	_, crafts := testCrafts(t)
	recs := SpacecraftRecords(crafts)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	a := recs[0]
	if a.X != 60 || a.Y != 0 || a.Body != "Moon" {
		t.Errorf("unexpected marker %+v", a)
	}
	if a.TipX != 60+core.DirectionVectorLength || math.Abs(a.TipY) > 1e-9 {
		t.Errorf("tip = (%v, %v)", a.TipX, a.TipY)
	}
	if !a.Configured || a.FrequencyHz != 2.4e9 {
		t.Errorf("comm params not exported: %+v", a)
	}

	b := recs[1]
	if b.Configured || b.AntennaGainDB != 0 {
		t.Errorf("unconfigured spacecraft exported comm params: %+v", b)
	}
	if b.PointingDeg != 90 {
		t.Errorf("pointing = %v, want 90", b.PointingDeg)
	}
}

func TestWriteFieldCSV(t *testing.T) {
	f := &core.Field{
		X:     mat.NewDense(2, 2, []float64{0, 1, 0, 1}),
		Y:     mat.NewDense(2, 2, []float64{5, 5, 6, 6}),
		Value: mat.NewDense(2, 2, []float64{-100, -110, -120, -130}),
		Label: core.PowerLabel,
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, FieldRecords(f)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	var got []*FieldRecord
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &got); err != nil {
		t.Fatalf("UnmarshalBytes: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d rows, want 4", len(got))
	}
	// row-major: third sample is row 1, col 0
	if r := got[2]; r.Row != 1 || r.Col != 0 || r.Y != 6 || r.Value != -120 {
		t.Errorf("unexpected third row %+v", r)
	}
	if got[0].Quantity != core.PowerLabel {
		t.Errorf("quantity = %q", got[0].Quantity)
	}
}

func TestOutputManagerWritesRun(t *testing.T) {
	moon, crafts := testCrafts(t)
	dir := filepath.Join(t.TempDir(), "run")

	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	req := core.FieldRequest{Bounds: model.DefaultViewport(), NumPoints: 4, AntennaCorrection: true}
	field, err := core.ComputePowerField(req, crafts[0])
	if err != nil {
		t.Fatalf("ComputePowerField: %v", err)
	}
	best, err := core.BestPower(field)
	if err != nil {
		t.Fatalf("BestPower: %v", err)
	}
	acq, err := core.AcquisitionCount(core.DefaultMinPowerDBm, field)
	if err != nil {
		t.Fatalf("AcquisitionCount: %v", err)
	}
	cov := &core.Coverage{Request: req, Fields: []*core.PowerField{field}, Best: best, Acquired: acq}

	if err := om.WriteScene([]*model.Body{moon}, crafts); err != nil {
		t.Fatalf("WriteScene: %v", err)
	}
	if err := om.WriteCoverage(cov); err != nil {
		t.Fatalf("WriteCoverage: %v", err)
	}
	if err := om.WritePatterns(crafts); err != nil {
		t.Fatalf("WritePatterns: %v", err)
	}

	for _, name := range []string{"bodies.csv", "spacecraft.csv", "power_dino_1.csv", "best_power.csv", "acquired.csv", "pattern_dino_1.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "pattern_dino-2.csv")); !os.IsNotExist(err) {
		t.Errorf("pattern written for unconfigured spacecraft")
	}

	data, err := os.ReadFile(filepath.Join(dir, "pattern_dino_1.csv"))
	if err != nil {
		t.Fatalf("read pattern: %v", err)
	}
	var pattern []*PatternRecord
	if err := gocsv.UnmarshalBytes(data, &pattern); err != nil {
		t.Fatalf("UnmarshalBytes: %v", err)
	}
	if len(pattern) != core.PatternSamples {
		t.Errorf("pattern has %d samples, want %d", len(pattern), core.PatternSamples)
	}
}

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteCoverage(nil); err != nil {
		t.Errorf("nil manager WriteCoverage: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("nil manager Dir = %q", om.Dir())
	}
}

func TestFileSafe(t *testing.T) {
	cases := map[string]string{
		"dino-1":   "dino-1",
		"DINO 2/a": "DINO_2_a",
		"":         "unnamed",
	}
	for in, want := range cases {
		if got := FileSafe(in); got != want {
			t.Errorf("FileSafe(%q) = %q, want %q", in, got, want)
		}
	}
}
