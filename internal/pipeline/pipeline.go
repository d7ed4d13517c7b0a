package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/san-kum/xyzprep/internal/config"
	"github.com/san-kum/xyzprep/internal/dataset"
	"github.com/san-kum/xyzprep/internal/report"
	"github.com/san-kum/xyzprep/internal/store"
	"github.com/san-kum/xyzprep/internal/xyz"
)

// Result summarises one converted trajectory.
type Result struct {
	Source   string
	Frames   int
	Atoms    int
	Warnings []string
	Written  []string
}

// ParserOptions maps the configuration onto parser options.
func ParserOptions(cfg *config.Config, obs xyz.Observer) xyz.Options {
	return xyz.Options{
		Symbols:  xyz.NewSymbolSet(cfg.Symbols...),
		Unknown:  xyz.UnknownPolicy(cfg.UnknownSymbols),
		Observer: obs,
	}
}

// CoordForce reads path as a plain coordinate/force trajectory, validates each
// timestep against cfg.ExpectedAtoms, groups both arrays into
// cfg.ReshapeGroups rows and writes them into outDir.
func CoordForce(cfg *config.Config, path, outDir string, rep *report.Reporter) (*Result, error) {
	opts := xyz.Options{SkipLattice: true, SkipEnergies: true, Observer: rep}
	traj, err := xyz.ReadFile(path, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: path, Frames: traj.Len()}
	if cfg.ExpectedAtoms > 0 {
		for _, w := range dataset.Validate(traj.Frames, cfg.ExpectedAtoms) {
			res.Warnings = append(res.Warnings, w.String())
			rep.Warnf("%s", w)
		}
	}

	coords, err := dataset.GroupFrames(traj.Frames, dataset.Coords, cfg.ReshapeGroups, cfg.RequireGroupFrames)
	if err != nil {
		return nil, fmt.Errorf("%s: coords: %w", path, err)
	}
	forces, err := dataset.GroupFrames(traj.Frames, dataset.Forces, cfg.ReshapeGroups, cfg.RequireGroupFrames)
	if err != nil {
		return nil, fmt.Errorf("%s: forces: %w", path, err)
	}
	res.Atoms, _ = traj.Uniform()

	if coords != nil {
		r, c := coords.Dims()
		rep.Infof("Flattened coords shape: (%d, %d)", r, c)
	}

	st := store.New(outDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	for _, a := range []struct {
		name string
		put  func(string) error
	}{
		{cfg.CoordOut, func(n string) error { return st.Save(n, coords) }},
		{cfg.ForceOut, func(n string) error { return st.Save(n, forces) }},
	} {
		if err := a.put(a.name); err != nil {
			return nil, err
		}
		res.Written = append(res.Written, st.Path(a.name))
		rep.Saved(st.Path(a.name))
	}

	if cfg.Manifest {
		if err := writeManifest(st, res, nil, filepath.Join(outDir, "manifest.json")); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// EnergyBox reads path with the configured symbol set and writes
// <base>_energy.npy and <base>_box.npy beside it, plus coord/force arrays
// when those fields are enabled. base is the file name without its
// trajectory extension.
func EnergyBox(cfg *config.Config, path, base string, rep *report.Reporter) (*Result, error) {
	traj, err := xyz.ReadFile(path, ParserOptions(cfg, rep))
	if err != nil {
		return nil, err
	}

	res := &Result{Source: path, Frames: traj.Len()}
	res.Atoms, _ = traj.Uniform()
	st := store.New(filepath.Dir(path))

	save := func(field string, write func(name string) error) error {
		if !cfg.HasField(field) {
			return nil
		}
		name := base + "_" + field
		if err := write(name); err != nil {
			return fmt.Errorf("%s: %s: %w", path, field, err)
		}
		res.Written = append(res.Written, st.Path(name))
		return nil
	}

	err = save(config.FieldCoord, func(name string) error {
		m, err := dataset.Stack(traj.Frames, dataset.Coords)
		if err != nil {
			return err
		}
		return st.Save(name, m)
	})
	if err != nil {
		return nil, err
	}
	err = save(config.FieldEnergy, func(name string) error {
		e, err := dataset.Energies(traj)
		if err != nil {
			return err
		}
		return st.SaveVector(name, e)
	})
	if err != nil {
		return nil, err
	}
	err = save(config.FieldForce, func(name string) error {
		m, err := dataset.Stack(traj.Frames, dataset.Forces)
		if err != nil {
			return err
		}
		return st.Save(name, m)
	})
	if err != nil {
		return nil, err
	}
	err = save(config.FieldBox, func(name string) error {
		m, err := dataset.Boxes(traj)
		if err != nil {
			return err
		}
		return st.Save(name, m)
	})
	if err != nil {
		return nil, err
	}

	if cfg.Manifest {
		if err := writeManifest(st, res, cfg.Symbols, filepath.Join(st.Dir(), base+"_meta.json")); err != nil {
			return nil, err
		}
	}
	rep.Infof("Data saved for %s", path)
	return res, nil
}

func writeManifest(st *store.Store, res *Result, symbols []string, path string) error {
	m := &store.Manifest{
		Source:    res.Source,
		Timestamp: time.Now(),
		Frames:    res.Frames,
		Atoms:     res.Atoms,
		Symbols:   symbols,
		Warnings:  res.Warnings,
	}
	arrays, err := st.List()
	if err != nil {
		return err
	}
	byPath := make(map[string]store.ArrayInfo, len(arrays))
	for _, a := range arrays {
		byPath[st.Path(a.Name)] = a
	}
	for _, p := range res.Written {
		info, ok := byPath[p]
		if !ok {
			info = store.ArrayInfo{Name: filepath.Base(p)}
		}
		m.Arrays = append(m.Arrays, info)
	}
	return store.WriteManifest(path, m)
}
