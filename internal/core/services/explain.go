package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

const maxGeneratedRunes = 240

var explainOptions = domain.GenerationOptions{MaxNewTokens: 40, Temperature: 0.7}

// Templates take the track name, the artist names, then for feature
// templates the candidate and seed values.
var featureTemplates = map[domain.Dimension][]string{
	domain.DimensionTempo: {
		"%s by %s moves at almost the same pace as your pick (%.0f vs %.0f BPM).",
		"%s by %s keeps a tempo close to your track, %.0f BPM against %.0f.",
		"The groove of %s by %s sits right by your seed: %.0f BPM to your %.0f.",
	},
	domain.DimensionEnergy: {
		"%s by %s brings a similar level of energy (%.2f vs %.2f).",
		"%s by %s matches the intensity of your pick, energy %.2f against %.2f.",
		"Energy-wise, %s by %s lands close to your track (%.2f vs %.2f).",
	},
	domain.DimensionValence: {
		"%s by %s carries much the same mood as your pick (valence %.2f vs %.2f).",
		"The emotional tone of %s by %s mirrors your seed, %.2f against %.2f.",
		"%s by %s feels a lot like your track, with a mood score of %.2f to your %.2f.",
	},
}

var sentimentTemplates = map[domain.Sentiment][]string{
	domain.SentimentPositive: {
		"%s by %s shares the upbeat feel you described.",
		"%s by %s has the bright, positive vibe you asked for.",
	},
	domain.SentimentNegative: {
		"%s by %s shares the moody feel you described.",
		"%s by %s leans into the darker, reflective tone you asked for.",
	},
}

var genericTemplates = []string{
	"%s by %s is worth a listen alongside your pick.",
	"You might enjoy %s by %s next.",
	"%s by %s comes up as a good companion to your track.",
	"Give %s by %s a spin after your seed.",
}

// Explainer renders the one-sentence reason shown with a recommendation.
type Explainer struct {
	generator ports.TextGenerator // nil when not configured
}

func NewExplainer(generator ports.TextGenerator) *Explainer {
	return &Explainer{generator: generator}
}

// Explain never fails and never returns an empty string.
func (e *Explainer) Explain(ctx context.Context, rec domain.Recommendation, seed domain.SeedContext) string {
	rng := rand.New(rand.NewSource(candidateSeed(rec.Track.ID))) // #nosec G404 -- template choice only
	name, artists := rec.Track.Name, rec.Track.ArtistNames()
	if name == "" {
		name = "This track"
	}
	if artists == "" {
		artists = "an unknown artist"
	}

	if rec.Comparison.Known && seed.Features != nil && rec.Features != nil {
		if dim, ok := rec.Comparison.Strongest(); ok {
			rendered := renderFeature(rng, dim.Dimension, name, artists, *rec.Features, *seed.Features)
			return e.refine(ctx, rec.Track.ID, rendered, seed.Description)
		}
	}

	if !rec.Comparison.Known && sentimentsAgree(seed.Sentiment, rec.Sentiment) {
		if templates := sentimentTemplates[*rec.Sentiment]; len(templates) > 0 {
			metrics.ExplanationFallbacks.WithLabelValues("sentiment_template").Inc()
			return fmt.Sprintf(templates[rng.Intn(len(templates))], name, artists)
		}
	}

	metrics.ExplanationFallbacks.WithLabelValues("generic_template").Inc()
	return fmt.Sprintf(genericTemplates[rng.Intn(len(genericTemplates))], name, artists)
}

func renderFeature(rng *rand.Rand, dim domain.Dimension, name, artists string, cand, seed domain.AudioFeatures) string {
	var cv, sv float64
	switch dim {
	case domain.DimensionTempo:
		cv, sv = cand.Tempo, seed.Tempo
	case domain.DimensionEnergy:
		cv, sv = cand.Energy, seed.Energy
	default:
		cv, sv = cand.Valence, seed.Valence
	}
	templates := featureTemplates[dim]
	return fmt.Sprintf(templates[rng.Intn(len(templates))], name, artists, cv, sv)
}

// refine asks the generator to rephrase the rendered sentence for the
// listener. Any failure keeps the rendered sentence.
func (e *Explainer) refine(ctx context.Context, trackID, rendered, description string) string {
	if e.generator == nil {
		return rendered
	}

	opts := explainOptions
	opts.Seed = candidateSeed(trackID)
	out, err := e.generator.Generate(ctx, explainPrompt(rendered, description), opts)
	if err != nil {
		metrics.ExplanationFallbacks.WithLabelValues("generator_error").Inc()
		logging.Ctx(ctx).Debug().Err(err).Str("track_id", trackID).Msg("service: explanation generation failed")
		return rendered
	}

	sentence, ok := firstSentence(out)
	if !ok {
		metrics.ExplanationFallbacks.WithLabelValues("generator_unusable").Inc()
		return rendered
	}
	return sentence
}

func explainPrompt(rendered, description string) string {
	var b strings.Builder
	b.WriteString("Rewrite this music recommendation reason as one short, friendly sentence.")
	if description != "" {
		fmt.Fprintf(&b, " The listener asked for: %q.", description)
	}
	b.WriteString("\nReason: ")
	b.WriteString(rendered)
	b.WriteString("\nSentence:")
	return b.String()
}

// firstSentence extracts the first sentence of generated text. It reports
// false when no words remain or the sentence is too long.
func firstSentence(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	// a terminator only ends the sentence when followed by a space or a
	// closing quote, so "121.5 BPM" stays whole
	for i, r := range text {
		end := i + utf8.RuneLen(r)
		if (r == '.' || r == '!' || r == '?') &&
			(end == len(text) || strings.ContainsRune(` "'`, rune(text[end]))) {
			text = text[:end]
			break
		}
	}
	text = strings.Trim(strings.TrimSpace(text), `"'`)
	text = strings.TrimSpace(text)

	hasWord := strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
	if !hasWord || utf8.RuneCountInString(text) > maxGeneratedRunes {
		return "", false
	}
	return text, true
}

// candidateSeed derives a stable generator seed from a track id.
func candidateSeed(id string) int64 {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(id))
	return int64(hasher.Sum32())
}
