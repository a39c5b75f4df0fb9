package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/yourorg/cma-api/paragon"
)

// fail writes the one error envelope every endpoint uses. Failures always
// carry a JSON body so the frontend has something to display. render.JSON is
// what commits the status stored by render.Status; encoding to w directly
// would leave the response at 200.
func fail(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"success": false,
		"error":   code,
		"detail":  detail,
	})
}

// failUpstream classifies a Paragon client error. Non-2xx and malformed
// payloads surface as 502; everything else (context, transport after retries)
// as 500.
func failUpstream(w http.ResponseWriter, r *http.Request, err error) {
	var ue *paragon.UpstreamError
	if errors.As(err, &ue) {
		fail(w, r, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	if errors.Is(err, paragon.ErrMalformedPayload) {
		fail(w, r, http.StatusBadGateway, "upstream_parse_error", err.Error())
		return
	}
	fail(w, r, http.StatusInternalServerError, "upstream_fetch_failed", err.Error())
}
