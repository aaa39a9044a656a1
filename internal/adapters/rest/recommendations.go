package rest

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/segue/internal/core/services"
)

const maxBodyBytes = 64 << 10

// aiRecommendationsRequest defines what the client sends us
type aiRecommendationsRequest struct {
	TrackID         string `json:"trackId" validate:"required,max=64"`
	UserDescription string `json:"userDescription" validate:"max=4000"`
}

// AIRecommendations handles POST /api/ai-recommendations
func (h *Handler) AIRecommendations(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req aiRecommendationsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := getValidator().Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := h.svc.Recommend(r.Context(), services.Request{
		SeedTrackID: req.TrackID,
		Description: req.UserDescription,
		Mode:        services.ModeAI,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecommendationsResponse(res))
}

// Recommendations handles GET /api/recommendations?seed_tracks=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("seed_tracks")
	if seed == "" {
		writeError(w, http.StatusBadRequest, "Track ID required")
		return
	}

	res, err := h.svc.Recommend(r.Context(), services.Request{
		SeedTrackID: seed,
		Mode:        services.ModeBaseline,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecommendationsResponse(res))
}

func toRecommendationsResponse(res services.Result) recommendationsResponse {
	out := recommendationsResponse{
		Tracks: make([]trackDTO, 0, len(res.Tracks)),
		Debug:  res.Debug,
	}
	for _, rec := range res.Tracks {
		out.Tracks = append(out.Tracks, toRecommendationDTO(rec))
	}
	return out
}
