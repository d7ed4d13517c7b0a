package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/san-kum/xyzprep/internal/automation"
	"github.com/san-kum/xyzprep/internal/config"
	"github.com/san-kum/xyzprep/internal/dataset"
	"github.com/san-kum/xyzprep/internal/metrics"
	"github.com/san-kum/xyzprep/internal/pipeline"
	"github.com/san-kum/xyzprep/internal/plot"
	"github.com/san-kum/xyzprep/internal/report"
	"github.com/san-kum/xyzprep/internal/tui"
	"github.com/san-kum/xyzprep/internal/walker"
	"github.com/san-kum/xyzprep/internal/xyz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	symbols    string
	atoms      int
	groups     int
	unknown    string
	outDir     string
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "xyzprep",
		Short:         "convert extended-xyz trajectories into npy training arrays",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&symbols, "symbols", "", "comma separated element allow-list")
	pf.IntVar(&atoms, "atoms", 0, "expected atoms per timestep")
	pf.IntVar(&groups, "groups", 0, "rows of the reshaped coord/force arrays")
	pf.StringVar(&unknown, "unknown", "", "unrecognized element symbols: error or drop")
	pf.BoolVarP(&quiet, "quiet", "q", false, "no per-timestep output")

	reformatCmd := &cobra.Command{
		Use:   "reformat [file]",
		Short: "write coords.npy and forces.npy from one trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReformat,
	}
	reformatCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")

	extractCmd := &cobra.Command{
		Use:   "extract [dir]",
		Short: "write <name>_energy.npy and <name>_box.npy beside every trajectory under dir",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExtract,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "summarise a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	browseCmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "step through the timesteps of a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			traj, err := xyz.ReadFile(args[0], pipeline.ParserOptions(cfg, nil))
			if err != nil {
				return err
			}
			return tui.Run(traj)
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [file] [image]",
		Short: "plot energy per timestep",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPlot,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run the reformat and extract jobs listed in a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := "xyzprep.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	})

	rootCmd.AddCommand(reformatCmd, extractCmd, inspectCmd, browseCmd, plotCmd, batchCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, report.WarnStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// loadConfig layers the config file or preset, environment and flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := baseConfig(configFile, preset)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("symbols") {
		cfg.Symbols = splitList(symbols)
	}
	if flags.Changed("atoms") {
		cfg.ExpectedAtoms = atoms
	}
	if flags.Changed("groups") {
		cfg.ReshapeGroups = groups
	}
	if flags.Changed("unknown") {
		cfg.UnknownSymbols = unknown
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// baseConfig picks the config file, the preset or the defaults. A file and a
// preset together are rejected.
func baseConfig(path, name string) (*config.Config, error) {
	switch {
	case path != "" && name != "":
		return nil, fmt.Errorf("--config and --preset are mutually exclusive")
	case path != "":
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	case name != "":
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	default:
		return config.Load("")
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newReporter() *report.Reporter {
	rep := report.New(os.Stdout)
	rep.Frames = !quiet
	return rep
}

func runReformat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.Input
	if len(args) > 0 {
		path = args[0]
	}

	rep := newReporter()
	res, err := pipeline.CoordForce(cfg, path, outDir, rep)
	if err != nil {
		return err
	}
	fmt.Printf("timesteps: %d\n", res.Frames)
	if len(res.Warnings) > 0 {
		fmt.Printf("warnings: %d\n", len(res.Warnings))
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root := cfg.DataDir
	if len(args) > 0 {
		root = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := newReporter()
	n, err := walker.Walk(ctx, root, cfg.Extensions, func(path, base string) error {
		rep.File(path)
		_, err := pipeline.EnergyBox(cfg, path, base, rep)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Printf("files: %d\n", n)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rep := newReporter()
	rep.Frames = false

	traj, err := xyz.ReadFile(args[0], pipeline.ParserOptions(cfg, nil))
	if err != nil {
		return err
	}
	ms := metrics.Default()
	ms.Observe(traj)

	natoms, uerr := traj.Uniform()
	pairs := []string{
		"file", traj.Source,
		"timesteps", fmt.Sprintf("%d", traj.Len()),
	}
	if uerr == nil {
		pairs = append(pairs, "atoms", fmt.Sprintf("%d", natoms))
	} else {
		pairs = append(pairs, "atoms", "ragged")
	}
	if traj.HasEnergies() {
		e := traj.Energies()
		pairs = append(pairs, "energy[0]", fmt.Sprintf("%.6f", e[0]), "energy[-1]", fmt.Sprintf("%.6f", e[len(e)-1]))
	}
	names, values := ms.Values()
	for i, n := range names {
		pairs = append(pairs, n, fmt.Sprintf("%.6g", values[i]))
	}
	fmt.Println(report.Panel.Render(report.Metric(pairs...)))

	for _, m := range traj.CheckCounts() {
		rep.Warnf("%s", m)
	}
	if uerr != nil {
		rep.Warnf("%v", uerr)
	}
	if cfg.ExpectedAtoms > 0 {
		for _, w := range dataset.Validate(traj.Frames, cfg.ExpectedAtoms) {
			rep.Warnf("%s", w)
		}
	}
	if g := report.EnergyGraph(traj.Energies(), 70, 10, "energy per timestep"); g != "" {
		fmt.Println()
		fmt.Println(g)
	}
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	traj, err := xyz.ReadFile(args[0], pipeline.ParserOptions(cfg, nil))
	if err != nil {
		return err
	}
	out := walker.BaseName(args[0], cfg.Extensions) + "_energy.png"
	out = filepath.Join(filepath.Dir(args[0]), out)
	if len(args) > 1 {
		out = args[1]
	}
	if err := plot.Energy(traj, filepath.Base(args[0]), out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := automation.LoadBatch(args[0])
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := newReporter()
	rep.Frames = rep.Frames && !b.Quiet
	out, err := automation.RunBatch(ctx, b, cfg, rep)
	if err != nil {
		return err
	}
	files, arrays := 0, 0
	for _, o := range out {
		files += o.Files
		arrays += len(o.Written)
	}
	fmt.Printf("jobs: %d  files: %d  arrays: %d\n", len(out), files, arrays)
	return nil
}
