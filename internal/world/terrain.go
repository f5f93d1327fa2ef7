// Terrain and weather sampling for battle sites.
// Layered simplex noise keyed by the campaign seed, so the same location
// always yields the same ground. Battles snapshot these modifiers once and
// never resample.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TerrainType classifies the ground a battle is fought on.
type TerrainType uint8

const (
	TerrainPlains TerrainType = iota
	TerrainForest
	TerrainHills
	TerrainMountains
	TerrainMarsh
)

// TerrainName returns a display label for a terrain type.
func TerrainName(t TerrainType) string {
	switch t {
	case TerrainPlains:
		return "plains"
	case TerrainForest:
		return "forest"
	case TerrainHills:
		return "hills"
	case TerrainMountains:
		return "mountains"
	case TerrainMarsh:
		return "marsh"
	default:
		return "unknown"
	}
}

// TerrainModifiers are the combat multipliers a terrain type imposes.
// Snapshot into a Battle at creation; immutable afterwards.
type TerrainModifiers struct {
	Terrain       TerrainType `json:"terrain"`
	AttackerMod   float64     `json:"attacker_mod"`
	DefenderMod   float64     `json:"defender_mod"`
	CavalryUsable bool        `json:"cavalry_usable"`
}

// WeatherModifiers are the seasonal weather multipliers at battle start.
type WeatherModifiers struct {
	Description string  `json:"description"`
	CombatMod   float64 `json:"combat_mod"`
	MissileMod  float64 `json:"missile_mod"`
}

// Sampler derives terrain and weather for coordinates from a fixed seed.
type Sampler struct {
	elevation opensimplex.Noise
	moisture  opensimplex.Noise
	storms    opensimplex.Noise
}

// NewSampler creates a deterministic terrain sampler for a campaign seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{
		elevation: opensimplex.NewNormalized(seed),
		moisture:  opensimplex.NewNormalized(seed + 1),
		storms:    opensimplex.NewNormalized(seed + 2),
	}
}

// TerrainAt samples the terrain modifiers at a map coordinate.
func (s *Sampler) TerrainAt(x, y float64) TerrainModifiers {
	elev := octaveNoise(s.elevation, x, y, 4, 0.08, 0.5)
	moist := octaveNoise(s.moisture, x, y, 3, 0.06, 0.5)

	terrain := deriveTerrain(elev, moist)
	return terrainTable(terrain)
}

// WeatherAt samples weather at a coordinate for a given season
// (0=spring, 1=summer, 2=autumn, 3=winter).
func (s *Sampler) WeatherAt(x, y float64, season uint8) WeatherModifiers {
	storm := octaveNoise(s.storms, x+float64(season)*97, y, 2, 0.05, 0.5)

	switch {
	case season == 3 && storm > 0.6:
		return WeatherModifiers{Description: "driving snow", CombatMod: 0.7, MissileMod: 0.5}
	case storm > 0.75:
		return WeatherModifiers{Description: "thunderstorm", CombatMod: 0.8, MissileMod: 0.4}
	case storm > 0.55:
		return WeatherModifiers{Description: "steady rain", CombatMod: 0.9, MissileMod: 0.7}
	case season == 1:
		return WeatherModifiers{Description: "summer heat", CombatMod: 0.95, MissileMod: 1.0}
	default:
		return WeatherModifiers{Description: "clear skies", CombatMod: 1.0, MissileMod: 1.0}
	}
}

func deriveTerrain(elev, moist float64) TerrainType {
	switch {
	case elev > 0.75:
		return TerrainMountains
	case elev > 0.55:
		return TerrainHills
	case moist > 0.7 && elev < 0.35:
		return TerrainMarsh
	case moist > 0.5:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

func terrainTable(t TerrainType) TerrainModifiers {
	switch t {
	case TerrainForest:
		return TerrainModifiers{Terrain: t, AttackerMod: 0.85, DefenderMod: 1.1, CavalryUsable: false}
	case TerrainHills:
		return TerrainModifiers{Terrain: t, AttackerMod: 0.9, DefenderMod: 1.2, CavalryUsable: true}
	case TerrainMountains:
		return TerrainModifiers{Terrain: t, AttackerMod: 0.7, DefenderMod: 1.4, CavalryUsable: false}
	case TerrainMarsh:
		return TerrainModifiers{Terrain: t, AttackerMod: 0.75, DefenderMod: 0.9, CavalryUsable: false}
	default:
		return TerrainModifiers{Terrain: TerrainPlains, AttackerMod: 1.0, DefenderMod: 1.0, CavalryUsable: true}
	}
}

// octaveNoise samples multi-octave noise in [0,1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	var total, amplitude, maxValue float64
	amplitude = 1.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}

	if maxValue == 0 {
		return 0
	}
	v := total / maxValue
	return math.Max(0, math.Min(1, v))
}
