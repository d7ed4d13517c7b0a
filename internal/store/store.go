package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

const ext = ".npy"

// Store writes and reads named .npy arrays in one directory.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string {
	return s.baseDir
}

// Path maps an array name to its file. Names may carry the .npy suffix.
func (s *Store) Path(name string) string {
	if !strings.HasSuffix(name, ext) {
		name += ext
	}
	return filepath.Join(s.baseDir, name)
}

// Save writes m as a 2-D float64 array. A nil matrix is written as an empty
// 1-D array.
func (s *Store) Save(name string, m *mat.Dense) error {
	if m == nil {
		return s.write(name, []float64{})
	}
	return s.write(name, m)
}

// SaveVector writes v as a 1-D float64 array.
func (s *Store) SaveVector(name string, v []float64) error {
	if v == nil {
		v = []float64{}
	}
	return s.write(name, v)
}

func (s *Store) write(name string, val interface{}) error {
	path := s.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, val); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func (s *Store) Load(name string) (*mat.Dense, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path(name), err)
	}
	return &m, nil
}

func (s *Store) LoadVector(name string) ([]float64, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var v []float64
	if err := npyio.Read(f, &v); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path(name), err)
	}
	return v, nil
}

// ArrayInfo describes one stored array.
type ArrayInfo struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	Type  string `json:"dtype"`
}

// List returns the arrays in the directory sorted by name.
func (s *Store) List() ([]ArrayInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ArrayInfo{}, nil
		}
		return nil, err
	}

	arrays := make([]ArrayInfo, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		info, err := s.header(entry.Name())
		if err != nil {
			continue
		}
		arrays = append(arrays, info)
	}
	sort.Slice(arrays, func(i, j int) bool { return arrays[i].Name < arrays[j].Name })
	return arrays, nil
}

func (s *Store) header(file string) (ArrayInfo, error) {
	f, err := os.Open(filepath.Join(s.baseDir, file))
	if err != nil {
		return ArrayInfo{}, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return ArrayInfo{}, err
	}
	return ArrayInfo{
		Name:  strings.TrimSuffix(file, ext),
		Shape: r.Header.Descr.Shape,
		Type:  r.Header.Descr.Type,
	}, nil
}
