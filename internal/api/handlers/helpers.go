package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/pkg/errors"
	"github.com/pratik-mahalle/upscaler/internal/pkg/utils"
)

// decodeJSON decodes the request body into dst. maxBytes <= 0 disables the
// size limit.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, maxBytes int64) error {
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	return json.NewDecoder(body).Decode(dst)
}

// isTooLarge reports whether a decode failed because the body limit was hit
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return stderrors.As(err, &mbe)
}

// writeAppError renders err. Errors that are not an *AppError become a
// generic 500 with the fallback message.
func writeAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := errors.As(err); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}

// checkCaller rejects a body userId that differs from the token subject.
// Anonymous callers are trusted.
func checkCaller(r *http.Request, bodyUserID string) error {
	callerID, ok := middleware.GetUserID(r)
	if !ok || callerID == "" {
		return nil
	}
	if callerID != bodyUserID {
		return errors.Forbidden("Forbidden")
	}
	return nil
}
