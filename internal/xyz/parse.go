package xyz

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// UnknownPolicy selects what happens to atom lines whose label is not in the
// symbol set.
type UnknownPolicy string

const (
	UnknownError UnknownPolicy = "error"
	UnknownDrop  UnknownPolicy = "drop"
)

// SymbolSet is an allow-list of element labels. A nil set accepts any label.
type SymbolSet map[string]struct{}

func NewSymbolSet(symbols ...string) SymbolSet {
	if len(symbols) == 0 {
		return nil
	}
	s := make(SymbolSet, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}

func (s SymbolSet) Has(sym string) bool {
	if s == nil {
		return true
	}
	_, ok := s[sym]
	return ok
}

// With returns a copy of s extended with more symbols.
func (s SymbolSet) With(symbols ...string) SymbolSet {
	out := make(SymbolSet, len(s)+len(symbols))
	for sym := range s {
		out[sym] = struct{}{}
	}
	for _, sym := range symbols {
		out[sym] = struct{}{}
	}
	return out
}

// Observer is notified once per completed frame, in file order.
type Observer interface {
	OnFrame(index int, f *Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(index int, f *Frame)

func (fn ObserverFunc) OnFrame(index int, f *Frame) { fn(index, f) }

type Options struct {
	Symbols SymbolSet
	Unknown UnknownPolicy

	// SkipLattice treats lattice lines purely as separators: no box is read.
	SkipLattice bool
	// SkipEnergies disables the energy pass. Frames carry no energy.
	SkipEnergies bool

	Observer Observer
}

var energyRe = regexp.MustCompile(`(?:^|[\s"'])energy\s*=\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)`)

// ScanEnergies collects one energy per matching line, in line order.
func ScanEnergies(lines []string) ([]float64, error) {
	var out []float64
	for i, line := range lines {
		m := energyRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, &LineError{Line: i + 1, Text: strings.TrimSpace(m[0]), Wrapped: fmt.Errorf("%w: %v", ErrParse, err)}
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseBox reads the 9 lattice values between Lattice= and the Properties key.
func ParseBox(line string) (Box, error) {
	var box Box

	s := line
	if i := strings.LastIndex(s, "Lattice="); i >= 0 {
		s = s[i+len("Lattice="):]
	}
	if i := strings.Index(s, "Properties"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		if end := strings.Index(s[1:], `"`); end >= 0 {
			s = s[1 : end+1]
		}
	}
	s = strings.ReplaceAll(s, `"`, "")

	fields := strings.Fields(s)
	if len(fields) != len(box) {
		return box, fmt.Errorf("%w: lattice has %d values, want %d", ErrParse, len(fields), len(box))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return box, fmt.Errorf("%w: %v", ErrParse, err)
		}
		box[i] = v
	}
	return box, nil
}

func isCountLine(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseTriple(fields []string) ([3]float64, error) {
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return v, fmt.Errorf("%w: %v", ErrParse, err)
		}
		v[i] = f
	}
	return v, nil
}

func splitLines(data string) []string {
	lines := strings.Split(data, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Parse reads a whole extended-XYZ trajectory from r. name is used in error
// messages and as the trajectory source.
func Parse(r io.Reader, name string, opts Options) (*Trajectory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(splitLines(string(data)), name, opts)
}

// ParseLines runs the energy pass and then the structural pass over lines.
func ParseLines(lines []string, name string, opts Options) (*Trajectory, error) {
	if opts.Unknown == "" {
		opts.Unknown = UnknownError
	}

	var energies []float64
	if !opts.SkipEnergies {
		var err error
		energies, err = ScanEnergies(lines)
		if err != nil {
			if le, ok := err.(*LineError); ok {
				le.File = name
			}
			return nil, err
		}
	}

	traj := &Trajectory{Source: name}
	var (
		cur     *Frame
		pending Box
		hasBox  bool
	)

	flush := func() {
		if cur == nil {
			return
		}
		traj.Frames = append(traj.Frames, *cur)
		if opts.Observer != nil {
			opts.Observer.OnFrame(len(traj.Frames)-1, &traj.Frames[len(traj.Frames)-1])
		}
	}

	lineErr := func(i int, line string, err error) error {
		return &LineError{File: name, Line: i + 1, Text: strings.TrimSpace(line), Wrapped: err}
	}

	for i, line := range lines {
		if strings.Contains(line, "Lattice") {
			if opts.SkipLattice {
				continue
			}
			box, err := ParseBox(line)
			if err != nil {
				return nil, lineErr(i, line, err)
			}
			if cur != nil {
				cur.Box, cur.HasBox = box, true
			} else {
				pending, hasBox = box, true
			}
			continue
		}

		if isCountLine(line) {
			flush()
			n, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				return nil, lineErr(i, line, fmt.Errorf("%w: %v", ErrParse, err))
			}
			cur = &Frame{Natoms: n}
			if hasBox {
				cur.Box, cur.HasBox = pending, true
				hasBox = false
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) <= 3 {
			continue
		}
		if !opts.Symbols.Has(fields[0]) {
			if opts.Unknown == UnknownDrop {
				continue
			}
			return nil, lineErr(i, line, fmt.Errorf("%w: %q", ErrUnknownSymbol, fields[0]))
		}
		if len(fields) < 7 {
			return nil, lineErr(i, line, fmt.Errorf("%w: atom line has %d fields, want 7", ErrParse, len(fields)))
		}
		pos, err := parseTriple(fields[1:4])
		if err != nil {
			return nil, lineErr(i, line, err)
		}
		frc, err := parseTriple(fields[4:7])
		if err != nil {
			return nil, lineErr(i, line, err)
		}
		if cur == nil {
			continue
		}
		cur.Coords = append(cur.Coords, pos)
		cur.Forces = append(cur.Forces, frc)
	}
	flush()

	if err := attachEnergies(traj, energies); err != nil {
		return nil, err
	}
	return traj, nil
}

func attachEnergies(traj *Trajectory, energies []float64) error {
	if len(energies) == 0 {
		return nil
	}
	if len(energies) < len(traj.Frames) {
		return fmt.Errorf("%s: %w: %d energies for %d frames", traj.Source, ErrDesync, len(energies), len(traj.Frames))
	}
	for i := range traj.Frames {
		traj.Frames[i].Energy = energies[i]
		traj.Frames[i].HasEnergy = true
	}
	return nil
}
