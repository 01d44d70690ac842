package core

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/signalsfoundry/dinosim/model"
)

func newTestCraft(t *testing.T, name string, body *model.Body, alt, angle, pointing float64) *Spacecraft {
	t.Helper()
	sc, err := NewSpacecraft(name, body, alt, angle, pointing)
	if err != nil {
		t.Fatalf("NewSpacecraft(%s): %v", name, err)
	}
	return sc
}

func configured(t *testing.T, sc *Spacecraft, txDBm, freqHz, gainDB float64) *Spacecraft {
	t.Helper()
	if err := sc.SetCommParams(CommParams{TransmitPowerDBm: txDBm, FrequencyHz: freqHz, AntennaGainDB: gainDB}); err != nil {
		t.Fatalf("SetCommParams(%s): %v", sc.Name, err)
	}
	return sc
}

func TestGlobalPosition(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := newTestCraft(t, "dino-1", body, 50, 0, 0)
	if got := sc.GlobalPosition(); got != (Vec2{X: 60, Y: 0}) {
		t.Fatalf("GlobalPosition = %+v, want (60, 0)", got)
	}

	offset := model.NewBody("Mars", 300, -100, 20)
	sc = newTestCraft(t, "dino-2", offset, 30, 90, 0)
	got := sc.GlobalPosition()
	if math.Abs(got.X-300) > eps || math.Abs(got.Y-(-50)) > eps {
		t.Fatalf("GlobalPosition = %+v, want (300, -50)", got)
	}
}

func TestAbsolutePointingAngle(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := newTestCraft(t, "dino-1", body, 50, 120, -30)
	if got := sc.AbsolutePointingAngle(true); got != 90 {
		t.Fatalf("AbsolutePointingAngle(deg) = %v, want 90", got)
	}
	if got := sc.AbsolutePointingAngle(false); math.Abs(got-math.Pi/2) > eps {
		t.Fatalf("AbsolutePointingAngle(rad) = %v, want π/2", got)
	}

	tip := sc.DirectionTip(DirectionVectorLength)
	pos := sc.GlobalPosition()
	if math.Abs(tip.X-pos.X) > 1e-9 || math.Abs(tip.Y-(pos.Y+DirectionVectorLength)) > 1e-9 {
		t.Fatalf("DirectionTip = %+v, want straight up from %+v", tip, pos)
	}
}

func TestNewSpacecraftRejectsMissingBody(t *testing.T) {
	if _, err := NewSpacecraft("orphan", nil, 10, 0, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("NewSpacecraft(nil body) err = %v, want ErrInvalidParameter", err)
	}
	body := model.NewBody("Moon", 0, 0, 10)
	if _, err := NewSpacecraft("nan", body, math.NaN(), 0, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("NewSpacecraft(NaN altitude) err = %v, want ErrInvalidParameter", err)
	}
}

func TestSetCommParamsOverwritesAndValidates(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := newTestCraft(t, "dino-1", body, 50, 0, 0)
	if sc.HasCommParams() {
		t.Fatalf("fresh spacecraft reports comm params")
	}

	configured(t, sc, 20, 2.4e9, 3)
	configured(t, sc, 30, 8.4e9, 6)
	p, err := sc.CommParams()
	if err != nil {
		t.Fatalf("CommParams: %v", err)
	}
	if p.TransmitPowerDBm != 30 || p.FrequencyHz != 8.4e9 || p.AntennaGainDB != 6 {
		t.Fatalf("CommParams = %+v, want second set", p)
	}

	err = sc.SetCommParams(CommParams{TransmitPowerDBm: 20, FrequencyHz: 0, AntennaGainDB: 3})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("SetCommParams(zero frequency) err = %v, want ErrInvalidParameter", err)
	}
	if p2, _ := sc.CommParams(); p2 != p {
		t.Fatalf("rejected SetCommParams mutated state: %+v", p2)
	}
}

func TestSummary(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := newTestCraft(t, "dino-1", body, 50, 45, 10)
	s := sc.Summary()
	for _, want := range []string{"dino-1", "altitude 50", "orbiting Moon", "global angle 45", "pointing angle 10"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() = %q, missing %q", s, want)
		}
	}
}

func TestQueriesBeforeCommParamsFail(t *testing.T) {
	body := model.NewBody("Moon", 0, 0, 10)
	sc := newTestCraft(t, "bare", body, 50, 0, 0)

	checks := map[string]func() error{
		"CommParams": func() error { _, err := sc.CommParams(); return err },
		"Beamwidth":  func() error { _, err := sc.Beamwidth(); return err },
		"AbsoluteGain": func() error {
			_, err := sc.AbsoluteGain(0, true)
			return err
		},
		"AbsoluteGainDB": func() error {
			_, err := sc.AbsoluteGainDB(0, false)
			return err
		},
		"AbsoluteRadiationPattern": func() error {
			_, err := sc.AbsoluteRadiationPattern(true)
			return err
		},
		"RadiationPatternDB": func() error {
			_, err := sc.RadiationPatternDB(true)
			return err
		},
		"NormalizedRadiationPattern": func() error {
			_, err := sc.NormalizedRadiationPattern(false)
			return err
		},
		"NormalizedRadiationPatternDB": func() error {
			_, err := sc.NormalizedRadiationPatternDB(false)
			return err
		},
		"ReceivedPowerDBm": func() error {
			_, err := sc.ReceivedPowerDBm(Vec2{X: 100}, true)
			return err
		},
		"ComputePowerField": func() error {
			_, err := ComputePowerField(DefaultFieldRequest(), sc)
			return err
		},
		"ComputePowerField/no-correction": func() error {
			req := DefaultFieldRequest()
			req.AntennaCorrection = false
			_, err := ComputePowerField(req, sc)
			return err
		},
	}
	for name, fn := range checks {
		if err := fn(); !errors.Is(err, ErrCommParamsNotSet) {
			t.Errorf("%s before SetCommParams: err = %v, want ErrCommParamsNotSet", name, err)
		}
	}
}
