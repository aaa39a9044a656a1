package rest

import "net/http"

// Search handles GET /api/search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "Query required")
		return
	}

	tracks, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var resp searchResponse
	resp.Tracks.Items = make([]trackDTO, 0, len(tracks))
	for _, t := range tracks {
		resp.Tracks.Items = append(resp.Tracks.Items, toTrackDTO(t))
	}
	writeJSON(w, http.StatusOK, resp)
}
