package config

import "sort"

var Presets = map[string]*Config{
	// glass reproduces the coord/force reformat of a 496-atom glass run
	// dumped as three timesteps.
	"glass": {
		Input:              "glass.xyz",
		DataDir:            ".",
		UnknownSymbols:     "error",
		ExpectedAtoms:      496,
		ReshapeGroups:      3,
		RequireGroupFrames: true,
		Extensions:         []string{".xyz"},
		Fields:             []string{FieldEnergy, FieldBox},
		CoordOut:           DefaultCoordOut,
		ForceOut:           DefaultForceOut,
	},
	"li3ps4": {
		Input:          "glass.xyz",
		DataDir:        "Li3PS4",
		Symbols:        []string{"C", "H", "O", "P", "S", "Li"},
		UnknownSymbols: "error",
		ReshapeGroups:  3,
		Extensions:     []string{".xyz"},
		Fields:         []string{FieldEnergy, FieldBox},
		CoordOut:       DefaultCoordOut,
		ForceOut:       DefaultForceOut,
	},
	// legacy silently skips atoms whose element is not in the list.
	"legacy": {
		Input:              "glass.xyz",
		DataDir:            ".",
		Symbols:            []string{"C", "H", "O", "P", "S", "Li"},
		UnknownSymbols:     "drop",
		ExpectedAtoms:      496,
		ReshapeGroups:      3,
		RequireGroupFrames: true,
		Extensions:         []string{".xyz"},
		Fields:             []string{FieldEnergy, FieldBox},
		CoordOut:           DefaultCoordOut,
		ForceOut:           DefaultForceOut,
	},
	"generic": {
		Input:          "traj.xyz",
		DataDir:        ".",
		UnknownSymbols: "error",
		ReshapeGroups:  3,
		Extensions:     []string{".xyz", ".xyz.gz", ".xyz.zst"},
		Fields:         []string{FieldCoord, FieldForce, FieldEnergy, FieldBox},
		CoordOut:       DefaultCoordOut,
		ForceOut:       DefaultForceOut,
		Manifest:       true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
