package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/xyzprep/internal/config"
	"github.com/san-kum/xyzprep/internal/dataset"
	"github.com/san-kum/xyzprep/internal/report"
	"github.com/san-kum/xyzprep/internal/store"
	"github.com/san-kum/xyzprep/internal/xyz"
)

// writeTraj writes frames of natoms atoms, alternating Li and S, each with a
// lattice line carrying an energy.
func writeTraj(t *testing.T, path string, frames, natoms int) {
	t.Helper()
	var b strings.Builder
	for f := 0; f < frames; f++ {
		fmt.Fprintf(&b, "%d\n", natoms)
		fmt.Fprintf(&b, "Lattice=\"%d 0 0 0 %d 0 0 0 %d\" Properties=species:S:1:pos:R:3:forces:R:3 energy=%.3f pbc=\"T T T\"\n",
			10+f, 10+f, 10+f, -100.5-float64(f))
		for a := 0; a < natoms; a++ {
			sym := "Li"
			if a%2 == 1 {
				sym = "S"
			}
			fmt.Fprintf(&b, "%s %d.0 %d.5 %d.25 %d.0 -%d.0 0.5\n", sym, f, a, f+a, a, f)
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCoordForce(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "glass.xyz")
	writeTraj(t, in, 3, 4)

	cfg := config.DefaultConfig()
	cfg.ExpectedAtoms = 4
	var buf bytes.Buffer
	rep := report.New(&buf)

	res, err := CoordForce(cfg, in, filepath.Join(dir, "out"), rep)
	if err != nil {
		t.Fatalf("coord/force failed: %v", err)
	}
	if res.Frames != 3 || res.Atoms != 4 || len(res.Warnings) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if got := strings.Count(buf.String(), "Processed timestep: 4 atoms, 4 forces"); got != 3 {
		t.Errorf("expected 3 frame diagnostics, got %d:\n%s", got, buf.String())
	}

	st := store.New(filepath.Join(dir, "out"))
	coords, err := st.Load("coords")
	if err != nil {
		t.Fatal(err)
	}
	if r, c := coords.Dims(); r != 3 || c != 12 {
		t.Fatalf("expected 3x12 coords, got %dx%d", r, c)
	}
	frames, err := dataset.Ungroup(coords, 4)
	if err != nil {
		t.Fatal(err)
	}
	if frames[2][3] != [3]float64{2, 3.5, 5.25} {
		t.Errorf("unexpected restored coord %v", frames[2][3])
	}

	forces, err := st.Load("forces.npy")
	if err != nil {
		t.Fatal(err)
	}
	if forces.At(1, 3) != 1 || forces.At(1, 4) != -1 {
		t.Errorf("unexpected forces row %v", forces.RawRowView(1))
	}
}

func TestCoordForce_ValidationWarns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "glass.xyz")
	writeTraj(t, in, 3, 2)

	var buf bytes.Buffer
	rep := report.New(&buf)
	res, err := CoordForce(config.DefaultConfig(), in, dir, rep)
	if err != nil {
		t.Fatalf("validation must not be fatal: %v", err)
	}
	if len(res.Warnings) != 6 || rep.Warnings() != 6 {
		t.Errorf("expected 6 warnings, got %d/%d", len(res.Warnings), rep.Warnings())
	}
	if !strings.Contains(buf.String(), "want (496, 3)") {
		t.Errorf("expected shape warning in output:\n%s", buf.String())
	}
}

func TestCoordForce_IgnoresEnergies(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "glass.xyz")
	data := "1\nLattice=\"1 0 0 0 1 0 0 0 1\" energy=-1.0\nH 0 0 0 1 1 1\n" +
		"1\nLattice=\"1 0 0 0 1 0 0 0 1\" energy=1e999\nH 1 1 1 2 2 2\n" +
		"1\nLattice=\"1 0 0 0 1 0 0 0 1\"\nH 2 2 2 3 3 3\n"
	if err := os.WriteFile(in, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.ExpectedAtoms = 1
	res, err := CoordForce(cfg, in, dir, report.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("energies must not affect coord/force output: %v", err)
	}
	if res.Frames != 3 || len(res.Written) != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	forces, err := store.New(dir).Load(cfg.ForceOut)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := forces.Dims(); r != 3 || c != 3 {
		t.Errorf("expected 3x3 forces, got %dx%d", r, c)
	}
}

func TestCoordForce_ReshapeTarget(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "glass.xyz")
	writeTraj(t, in, 2, 2)

	cfg := config.DefaultConfig()
	cfg.ExpectedAtoms = 0
	rep := report.New(&bytes.Buffer{})

	if _, err := CoordForce(cfg, in, dir, rep); !errors.Is(err, dataset.ErrShape) {
		t.Fatalf("expected ErrShape for 2 timesteps into 3 groups, got %v", err)
	}

	cfg.RequireGroupFrames = false
	res, err := CoordForce(cfg, in, dir, rep)
	if err != nil {
		t.Fatalf("lenient reshape failed: %v", err)
	}
	coords, err := store.New(dir).Load(cfg.CoordOut)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := coords.Dims(); r != 3 || c != 4 || res.Frames != 2 {
		t.Errorf("expected 3x4 from 2 frames, got %dx%d from %d", r, c, res.Frames)
	}
}

func TestEnergyBox(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "Li3PS4.xyz")
	writeTraj(t, in, 3, 2)

	cfg := config.DefaultConfig()
	cfg.Manifest = true
	rep := report.New(&bytes.Buffer{})

	res, err := EnergyBox(cfg, in, "Li3PS4", rep)
	if err != nil {
		t.Fatalf("energy/box failed: %v", err)
	}
	if len(res.Written) != 2 {
		t.Fatalf("expected energy and box only, got %v", res.Written)
	}

	st := store.New(dir)
	e, err := st.LoadVector("Li3PS4_energy")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 3 || e[0] != -100.5 || e[2] != -102.5 {
		t.Errorf("unexpected energies %v", e)
	}
	box, err := st.Load("Li3PS4_box")
	if err != nil {
		t.Fatal(err)
	}
	if r, c := box.Dims(); r != 3 || c != 9 {
		t.Fatalf("expected 3x9 box, got %dx%d", r, c)
	}
	if box.At(2, 0) != 12 || box.At(2, 1) != 0 || box.At(2, 8) != 12 {
		t.Errorf("unexpected box row %v", box.RawRowView(2))
	}

	if _, err := os.Stat(st.Path("Li3PS4_coord")); !os.IsNotExist(err) {
		t.Error("coord array should not be written by default")
	}

	m, err := store.ReadManifest(filepath.Join(dir, "Li3PS4_meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Frames != 3 || len(m.Arrays) != 2 || m.Arrays[1].Shape[1] != 9 {
		t.Errorf("unexpected manifest %+v", m)
	}
}

func TestEnergyBox_AllFields(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "run.xyz")
	writeTraj(t, in, 3, 2)

	cfg := config.DefaultConfig()
	cfg.Fields = []string{config.FieldCoord, config.FieldForce, config.FieldEnergy, config.FieldBox}

	res, err := EnergyBox(cfg, in, "run", report.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected 4 arrays, got %v", res.Written)
	}
	coord, err := store.New(dir).Load("run_coord")
	if err != nil {
		t.Fatal(err)
	}
	if r, c := coord.Dims(); r != 3 || c != 6 {
		t.Errorf("expected 3x6 coords, got %dx%d", r, c)
	}
}

func TestEnergyBox_Empty(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.xyz")
	if err := os.WriteFile(in, []byte("no frames here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := EnergyBox(config.DefaultConfig(), in, "empty", report.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("empty file must not fail: %v", err)
	}
	if res.Frames != 0 {
		t.Errorf("expected 0 frames, got %d", res.Frames)
	}
	for _, name := range []string{"empty_energy", "empty_box"} {
		v, err := store.New(dir).LoadVector(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(v) != 0 {
			t.Errorf("%s: expected empty array, got %v", name, v)
		}
	}
}

func TestEnergyBox_UnknownSymbol(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "nacl.xyz")
	data := "2\nLattice=\"1 0 0 0 1 0 0 0 1\" Properties=x energy=-1.0\nNa 0 0 0 0 0 0\nCl 1 1 1 1 1 1\n"
	if err := os.WriteFile(in, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	if _, err := EnergyBox(cfg, in, "nacl", report.New(&bytes.Buffer{})); !errors.Is(err, xyz.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}

	cfg.UnknownSymbols = "drop"
	if _, err := EnergyBox(cfg, in, "nacl", report.New(&bytes.Buffer{})); err != nil {
		t.Fatalf("drop policy: %v", err)
	}

	cfg.UnknownSymbols = "error"
	cfg.Symbols = append(cfg.Symbols, "Na", "Cl")
	cfg.Fields = append(cfg.Fields, config.FieldCoord)
	if _, err := EnergyBox(cfg, in, "nacl", report.New(&bytes.Buffer{})); err != nil {
		t.Fatalf("extended symbols: %v", err)
	}
	coord, err := store.New(dir).Load("nacl_coord")
	if err != nil {
		t.Fatal(err)
	}
	if _, c := coord.Dims(); c != 6 {
		t.Errorf("expected both atoms kept, got %d values", c)
	}
}
