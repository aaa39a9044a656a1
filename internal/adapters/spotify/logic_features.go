package spotify

import "github.com/ewilliams-labs/segue/internal/core/domain"

// mapFeatures returns the domain vector, or false when the payload carries
// no measurement. The API answers some ids with all zeros instead of 404.
func mapFeatures(f spotifyAudioFeatures) (domain.AudioFeatures, bool) {
	if allFeaturesZero(f) || f.Tempo <= 0 {
		return domain.AudioFeatures{}, false
	}
	return domain.AudioFeatures{
		Tempo:        f.Tempo,
		Energy:       f.Energy,
		Valence:      f.Valence,
		Danceability: f.Danceability,
	}, true
}

func allFeaturesZero(features spotifyAudioFeatures) bool {
	return features.Danceability == 0 &&
		features.Energy == 0 &&
		features.Valence == 0 &&
		features.Tempo == 0
}
