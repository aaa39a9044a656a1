package domain

import "math"

// AudioFeatures characterizes a track's musical character.
type AudioFeatures struct {
	Tempo        float64 // beats per minute, > 0
	Energy       float64 // 0.0 to 1.0
	Valence      float64 // 0.0 to 1.0
	Danceability float64 // 0.0 to 1.0
}

// Valid reports whether the vector carries real measurements. The catalog
// answers unknown tracks with zeroed vectors.
func (f AudioFeatures) Valid() bool {
	return f.Tempo > 0
}

// MatchQuality is the coarse similarity bucket used as the primary sort key.
type MatchQuality string

const (
	MatchGreen  MatchQuality = "green"
	MatchYellow MatchQuality = "yellow"
	MatchRed    MatchQuality = "red"
)

// Rank orders tiers: green before yellow before red.
func (q MatchQuality) Rank() int {
	switch q {
	case MatchGreen:
		return 0
	case MatchYellow:
		return 1
	default:
		return 2
	}
}

const (
	BaseScore      = 50
	SentimentBonus = 10

	greenQualityPoints  = 8
	yellowQualityPoints = 5
)

// Dimension names a compared feature.
type Dimension string

const (
	DimensionTempo        Dimension = "tempo"
	DimensionEnergy       Dimension = "energy"
	DimensionValence      Dimension = "valence"
	DimensionDanceability Dimension = "danceability"
)

type band struct {
	below   float64
	points  int
	quality int
}

// Bands are checked in order; the first one whose bound exceeds the
// absolute difference wins.
var thresholds = []struct {
	dim   Dimension
	value func(AudioFeatures) float64
	bands []band
}{
	{DimensionTempo, func(f AudioFeatures) float64 { return f.Tempo }, []band{{10, 50, 3}, {25, 30, 2}, {40, 15, 1}}},
	{DimensionEnergy, func(f AudioFeatures) float64 { return f.Energy }, []band{{0.15, 40, 3}, {0.3, 20, 2}, {0.5, 10, 1}}},
	{DimensionValence, func(f AudioFeatures) float64 { return f.Valence }, []band{{0.2, 35, 3}, {0.4, 18, 2}, {0.6, 8, 1}}},
	{DimensionDanceability, func(f AudioFeatures) float64 { return f.Danceability }, []band{{0.2, 20, 1}}},
}

// DimensionMatch is the outcome for one compared feature.
type DimensionMatch struct {
	Dimension Dimension
	Delta     float64
	Points    int
	Quality   int
}

// FeatureComparison is the comparator result for a seed/candidate pair.
type FeatureComparison struct {
	Known         bool // false when either vector was unavailable
	Score         int
	QualityPoints int
	Quality       MatchQuality
	Dimensions    []DimensionMatch // most significant first; empty when !Known
}

// CompareFeatures scores a candidate against the seed. When either vector is
// nil or invalid the comparison is unknown: base score, yellow tier.
func CompareFeatures(seed, candidate *AudioFeatures) FeatureComparison {
	if seed == nil || candidate == nil || !seed.Valid() || !candidate.Valid() {
		return FeatureComparison{Score: BaseScore, Quality: MatchYellow}
	}

	out := FeatureComparison{
		Known:      true,
		Score:      BaseScore,
		Dimensions: make([]DimensionMatch, 0, len(thresholds)),
	}
	for _, th := range thresholds {
		delta := math.Abs(th.value(*seed) - th.value(*candidate))
		m := DimensionMatch{Dimension: th.dim, Delta: delta}
		for _, b := range th.bands {
			if delta < b.below {
				m.Points = b.points
				m.Quality = b.quality
				break
			}
		}
		out.Score += m.Points
		out.QualityPoints += m.Quality
		out.Dimensions = append(out.Dimensions, m)
	}
	out.Quality = QualityFor(out.QualityPoints)

	return out
}

// QualityFor maps summed quality points to a tier.
func QualityFor(points int) MatchQuality {
	switch {
	case points >= greenQualityPoints:
		return MatchGreen
	case points >= yellowQualityPoints:
		return MatchYellow
	default:
		return MatchRed
	}
}

// Strongest returns the best matched of tempo, energy and valence, earlier
// dimensions winning ties. ok is false when none of them matched at all.
func (c FeatureComparison) Strongest() (DimensionMatch, bool) {
	var best DimensionMatch
	found := false
	for _, m := range c.Dimensions {
		if m.Dimension == DimensionDanceability {
			continue
		}
		if m.Quality > 0 && (!found || m.Quality > best.Quality) {
			best = m
			found = true
		}
	}
	return best, found
}
