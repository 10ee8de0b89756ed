package config

import "sort"

var Presets = map[string]map[string]*Config{
	"ragdoll": {
		"drop": {
			Scene: "ragdoll", Dt: 1.0 / 120, Duration: 5, Substeps: 10,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
		},
		"floaty": {
			Scene: "ragdoll", Dt: 1.0 / 120, Duration: 8, Substeps: 10,
			Gravity: 1.6, Damping: 0.2, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
		},
	},
	"pendulum": {
		"swing": {
			Scene: "pendulum", Dt: 1.0 / 120, Duration: 10, Substeps: 20,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
		},
		"coarse": {
			Scene: "pendulum", Dt: 1.0 / 60, Duration: 10, Substeps: 2,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
		},
	},
	"pile": {
		"sat": {
			Scene: "pile", Dt: 1.0 / 120, Duration: 4, Substeps: 10,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "sat",
		},
		"soft": {
			Scene: "pile", Dt: 1.0 / 120, Duration: 4, Substeps: 10,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
			ContactCompliance: 1e-4,
		},
	},
	"springs": {
		"stiff": {
			Scene: "springs", Dt: 1.0 / 120, Duration: 6, Substeps: 10,
			Gravity: 9.82, SpringStiffness: 80, PointerStiffness: 20, Pipeline: "gjk",
		},
		"damped": {
			Scene: "springs", Dt: 1.0 / 120, Duration: 6, Substeps: 10,
			Gravity: 9.82, Damping: 0.5, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
		},
	},
	"soft-chain": {
		"hang": {
			Scene: "soft-chain", Dt: 1.0 / 60, Duration: 6, Substeps: 8,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "gjk",
		},
	},
	"seesaw": {
		"tip": {
			Scene: "seesaw", Dt: 1.0 / 120, Duration: 5, Substeps: 10,
			Gravity: 9.82, SpringStiffness: 20, PointerStiffness: 20, Pipeline: "sat",
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
