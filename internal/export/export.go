// Package export writes scenario entities and computed fields as CSV for
// external plotting tools.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/signalsfoundry/dinosim/core"
	"github.com/signalsfoundry/dinosim/model"
)

// BodyRecord is one row of bodies.csv: a circle with a label.
type BodyRecord struct {
	Name   string  `csv:"name"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	Radius float64 `csv:"radius"`
}

// SpacecraftRecord is one row of spacecraft.csv: a marker plus the tip of its
// boresight arrow.
type SpacecraftRecord struct {
	Name             string  `csv:"name"`
	Body             string  `csv:"body"`
	X                float64 `csv:"x"`
	Y                float64 `csv:"y"`
	PointingDeg      float64 `csv:"pointing_deg"`
	TipX             float64 `csv:"tip_x"`
	TipY             float64 `csv:"tip_y"`
	Configured       bool    `csv:"configured"`
	TransmitPowerDBm float64 `csv:"transmit_power_dbm"`
	FrequencyHz      float64 `csv:"frequency_hz"`
	AntennaGainDB    float64 `csv:"antenna_gain_db"`
}

// FieldRecord is one grid sample. Row/Col index the grid; Quantity repeats
// the field's label so a file is self-describing.
type FieldRecord struct {
	Row      int     `csv:"row"`
	Col      int     `csv:"col"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Value    float64 `csv:"value"`
	Quantity string  `csv:"quantity"`
}

// PatternRecord is one sample of a radiation pattern cut.
type PatternRecord struct {
	Theta float64 `csv:"theta"`
	Gain  float64 `csv:"gain"`
}

func BodyRecords(bodies []*model.Body) []*BodyRecord {
	out := make([]*BodyRecord, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, &BodyRecord{Name: b.Name, X: b.X, Y: b.Y, Radius: b.Radius})
	}
	return out
}

func SpacecraftRecords(crafts []*core.Spacecraft) []*SpacecraftRecord {
	out := make([]*SpacecraftRecord, 0, len(crafts))
	for _, sc := range crafts {
		pos := sc.GlobalPosition()
		tip := sc.DirectionTip(core.DirectionVectorLength)
		rec := &SpacecraftRecord{
			Name:        sc.Name,
			Body:        sc.Body.Name,
			X:           pos.X,
			Y:           pos.Y,
			PointingDeg: sc.AbsolutePointingAngle(true),
			TipX:        tip.X,
			TipY:        tip.Y,
		}
		if p, err := sc.CommParams(); err == nil {
			rec.Configured = true
			rec.TransmitPowerDBm = p.TransmitPowerDBm
			rec.FrequencyHz = p.FrequencyHz
			rec.AntennaGainDB = p.AntennaGainDB
		}
		out = append(out, rec)
	}
	return out
}

// FieldRecords flattens a field row by row.
func FieldRecords(f *core.Field) []*FieldRecord {
	r, c := f.Dims()
	out := make([]*FieldRecord, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, &FieldRecord{
				Row:      i,
				Col:      j,
				X:        f.X.At(i, j),
				Y:        f.Y.At(i, j),
				Value:    f.Value.At(i, j),
				Quantity: f.Label,
			})
		}
	}
	return out
}

func PatternRecords(p core.Pattern) []*PatternRecord {
	out := make([]*PatternRecord, len(p.Theta))
	for i := range p.Theta {
		out[i] = &PatternRecord{Theta: p.Theta[i], Gain: p.Gain[i]}
	}
	return out
}

// WriteCSV marshals records (a slice of record pointers) with a header row.
func WriteCSV(w io.Writer, records any) error {
	return gocsv.Marshal(records, w)
}

// OutputManager writes one run's CSV files into a directory.
type OutputManager struct {
	dir string
}

// NewOutputManager creates the output directory. It returns nil if dir is
// empty (output disabled); all methods are no-ops on a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// Dir returns the output directory.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

func (om *OutputManager) write(name string, records any) (err error) {
	path := filepath.Join(om.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()
	if err := WriteCSV(f, records); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteScene writes bodies.csv and spacecraft.csv.
func (om *OutputManager) WriteScene(bodies []*model.Body, crafts []*core.Spacecraft) error {
	if om == nil {
		return nil
	}
	if err := om.write("bodies.csv", BodyRecords(bodies)); err != nil {
		return err
	}
	return om.write("spacecraft.csv", SpacecraftRecords(crafts))
}

// WriteCoverage writes one power_<spacecraft>.csv per field plus
// best_power.csv and acquired.csv.
func (om *OutputManager) WriteCoverage(cov *core.Coverage) error {
	if om == nil {
		return nil
	}
	for _, f := range cov.Fields {
		if err := om.write("power_"+FileSafe(f.Spacecraft)+".csv", FieldRecords(&f.Field)); err != nil {
			return err
		}
	}
	if err := om.write("best_power.csv", FieldRecords(cov.Best)); err != nil {
		return err
	}
	return om.write("acquired.csv", FieldRecords(cov.Acquired))
}

// WritePatterns writes pattern_<spacecraft>.csv with the normalized dB
// pattern (degrees) of every configured spacecraft.
func (om *OutputManager) WritePatterns(crafts []*core.Spacecraft) error {
	if om == nil {
		return nil
	}
	for _, sc := range crafts {
		if !sc.HasCommParams() {
			continue
		}
		p, err := sc.NormalizedRadiationPatternDB(true)
		if err != nil {
			return err
		}
		if err := om.write("pattern_"+FileSafe(sc.Name)+".csv", PatternRecords(p)); err != nil {
			return err
		}
	}
	return nil
}

// FileSafe maps a spacecraft name onto characters safe in file names.
func FileSafe(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
