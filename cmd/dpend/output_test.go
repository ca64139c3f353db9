package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
)

func sampleResult(t *testing.T) *sim.Result {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Duration = 0.5
	res, _, err := simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return res
}

func TestSimulateDefaultRun(t *testing.T) {
	res, p, err := simulate(context.Background(), config.DefaultConfig())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.Frames) != 200 {
		t.Errorf("frames = %d, want 200", len(res.Frames))
	}
	if p.Length != 1 {
		t.Errorf("length = %g", p.Length)
	}
	for _, name := range []string{"energy_drift", "flips_upper", "flips_lower"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
}

func TestWriteFramesCSV(t *testing.T) {
	res := sampleResult(t)
	var buf bytes.Buffer
	if err := writeFrames(&buf, res, "csv"); err != nil {
		t.Fatalf("writeFrames: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != len(res.Frames)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(res.Frames)+1)
	}
	if got := rows[0]; len(got) != 5 || got[0] != "t" || got[4] != "y2" {
		t.Errorf("header = %v", got)
	}
	if rows[1][0] != "0" || rows[1][1] != "1" {
		t.Errorf("first row = %v", rows[1])
	}
	for i, f := range res.Frames {
		row := rows[i+1]
		for j, want := range [5]float64{res.Times[i], f.X1, f.Y1, f.X2, f.Y2} {
			got, err := strconv.ParseFloat(row[j], 64)
			if err != nil || got != want {
				t.Fatalf("row %d col %d = %q, want %v exactly", i, j, row[j], want)
			}
		}
	}
}

func TestWriteFramesJSON(t *testing.T) {
	res := sampleResult(t)
	var buf bytes.Buffer
	if err := writeFrames(&buf, res, "json"); err != nil {
		t.Fatalf("writeFrames: %v", err)
	}

	var records []frameRecord
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != len(res.Frames) {
		t.Fatalf("records = %d, want %d", len(records), len(res.Frames))
	}
	if records[1].T != res.Times[1] || records[1].Y2 != res.Frames[1].Y2 {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestWriteFramesErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrames(&buf, sampleResult(t), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := writeFrames(&buf, &sim.Result{}, "csv"); err == nil {
		t.Error("expected error for empty result")
	}
}

func TestGifDelay(t *testing.T) {
	tests := []struct {
		dt   float64
		want int
	}{
		{0.025, 3},
		{0.001, 2},
		{0.1, 10},
	}
	for _, tt := range tests {
		if got := gifDelay(tt.dt); got != tt.want {
			t.Errorf("gifDelay(%g) = %d, want %d", tt.dt, got, tt.want)
		}
	}
}

func TestStepRange(t *testing.T) {
	lo, hi, ok := stepRange([]float64{0, 0.1, 0.15, 0.45})
	if !ok || math.Abs(lo-0.05) > 1e-12 || math.Abs(hi-0.3) > 1e-12 {
		t.Errorf("stepRange = %v, %v, %v; want 0.05, 0.3, true", lo, hi, ok)
	}
	if _, _, ok := stepRange([]float64{1}); ok {
		t.Error("a single knot has no steps")
	}
}

func TestRenderExport(t *testing.T) {
	res := sampleResult(t)
	cfg := config.DefaultConfig()
	p := models.DefaultParams()

	tests := []struct {
		kind  string
		check func(t *testing.T, data []byte)
	}{
		{"svg", func(t *testing.T, data []byte) {
			if !bytes.Contains(data, []byte(`width="250"`)) {
				t.Errorf("svg ignores the requested size: %.120s", data)
			}
		}},
		{"gif", func(t *testing.T, data []byte) {
			anim, err := gif.DecodeAll(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := anim.Image[0].Bounds(); b.Dx() != 250 {
				t.Errorf("gif width = %d, want 250", b.Dx())
			}
			if anim.Delay[0] != gifDelay(cfg.Dt) {
				t.Errorf("delay = %d", anim.Delay[0])
			}
		}},
		{"png", func(t *testing.T, data []byte) {
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if w := img.Bounds().Dx(); w < 249 || w > 251 {
				t.Errorf("png width = %d, want 250", w)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var buf bytes.Buffer
			if err := renderExport(&buf, tt.kind, res, p, cfg, 250); err != nil {
				t.Fatalf("renderExport: %v", err)
			}
			tt.check(t, buf.Bytes())
		})
	}
}

func TestExportLeavesNoFileOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.svg")
	root := newRootCmd()
	root.SetArgs([]string{"export", "svg", "-o", path, "--time", "0.025"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for a single-frame svg")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed export left %s behind (stat err = %v)", path, err)
	}
}
