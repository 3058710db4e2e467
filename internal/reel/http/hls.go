package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/reel/internal/reel/media"
	"github.com/aussiebroadwan/reel/internal/reel/metrics"
	"github.com/aussiebroadwan/reel/internal/reel/service"
	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

const (
	contentTypePlaylist = "application/vnd.apple.mpegurl"
	contentTypeKey      = "application/octet-stream"
	contentTypeSegment  = "video/mp2t"
)

type HLSHandler struct {
	Gateway *service.Gateway
}

// HandleAccessURL godoc
//
//	@Summary		Issue HLS Access URL
//	@Description	Checks enrollment and account standing, then returns a playlist URL carrying a short-lived hlsToken bound to the caller's registered device.
//	@Tags			HLS
//	@Produce		json
//	@Security		BearerAuth
//	@Param			courseId	query		string						true	"Course ID"
//	@Param			sessionId	query		string						true	"Session ID"
//	@Success		200			{object}	reelsdk.AccessURLResponse	"playlistUrl, expiresIn"
//	@Failure		400			{object}	reelsdk.ErrorResponse		"error, error_description"
//	@Failure		401			{object}	reelsdk.ErrorResponse		"error, error_description"
//	@Failure		403			{object}	reelsdk.ErrorResponse		"error, error_description"
//	@Failure		404			{object}	reelsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/hls/access-url [get].
func (h *HLSHandler) HandleAccessURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewerID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, reelsdk.ErrorCodeInvalidToken, "missing principal")
		return
	}

	courseID := r.URL.Query().Get("courseId")
	sessionID := r.URL.Query().Get("sessionId")
	if courseID == "" || sessionID == "" {
		httpx.WriteError(w, http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest, "courseId and sessionId are required")
		return
	}

	grant, err := h.Gateway.IssueAccessToken(ctx, viewerID, courseID, sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, reelsdk.AccessURLResponse{
		PlaylistURL: grant.PlaylistURL,
		ExpiresIn:   int(grant.ExpiresIn.Seconds()),
	})
}

// HandlePlaylist godoc
//
//	@Summary		Get Rewritten Playlist
//	@Description	Returns the session's HLS media playlist with every segment and key reference pointing back at this service under the same hlsToken.
//	@Tags			HLS
//	@Produce		application/vnd.apple.mpegurl
//	@Param			courseId	path		string					true	"Course ID"
//	@Param			sessionId	path		string					true	"Session ID"
//	@Param			hlsToken	query		string					true	"HLS access token"
//	@Success		200			{string}	string					"playlist"
//	@Failure		401			{object}	reelsdk.ErrorResponse	"invalid_token or token_expired"
//	@Failure		403			{object}	reelsdk.ErrorResponse	"forbidden"
//	@Failure		404			{object}	reelsdk.ErrorResponse	"not_found"
//	@Failure		502			{object}	reelsdk.ErrorResponse	"upstream_failure"
//	@Router			/v1/hls/playlist/{courseId}/{sessionId} [get].
func (h *HLSHandler) HandlePlaylist(w http.ResponseWriter, r *http.Request) {
	courseID, sessionID := r.PathValue("courseId"), r.PathValue("sessionId")

	body, err := h.Gateway.GetPlaylist(r.Context(), courseID, sessionID, r.URL.Query().Get(service.TokenParam))
	if err != nil {
		metrics.RecordHLSRequest(metrics.ResourcePlaylist, writeServiceError(w, r, err))
		return
	}
	metrics.RecordHLSRequest(metrics.ResourcePlaylist, "ok")

	writeBody(w, contentTypePlaylist, body)
}

// HandleKey godoc
//
//	@Summary		Get Encryption Key
//	@Description	Returns the raw AES-128 key of the session.
//	@Tags			HLS
//	@Produce		application/octet-stream
//	@Param			courseId	path		string					true	"Course ID"
//	@Param			sessionId	path		string					true	"Session ID"
//	@Param			hlsToken	query		string					true	"HLS access token"
//	@Success		200			{file}		file					"key bytes"
//	@Failure		401			{object}	reelsdk.ErrorResponse	"invalid_token or token_expired"
//	@Failure		403			{object}	reelsdk.ErrorResponse	"forbidden"
//	@Failure		404			{object}	reelsdk.ErrorResponse	"not_found"
//	@Router			/v1/hls/key/{courseId}/{sessionId} [get].
func (h *HLSHandler) HandleKey(w http.ResponseWriter, r *http.Request) {
	courseID, sessionID := r.PathValue("courseId"), r.PathValue("sessionId")

	key, err := h.Gateway.GetEncryptionKey(r.Context(), courseID, sessionID, r.URL.Query().Get(service.TokenParam))
	if err != nil {
		metrics.RecordHLSRequest(metrics.ResourceKey, writeServiceError(w, r, err))
		return
	}
	metrics.RecordHLSRequest(metrics.ResourceKey, "ok")
	metrics.RecordBytesRelayed(metrics.ResourceKey, int64(len(key)))

	writeBody(w, contentTypeKey, key)
}

// HandleSegment godoc
//
//	@Summary		Stream Media Segment
//	@Description	Streams one MPEG-TS segment from object storage without buffering it.
//	@Tags			HLS
//	@Produce		video/mp2t
//	@Param			courseId	path		string					true	"Course ID"
//	@Param			sessionId	path		string					true	"Session ID"
//	@Param			segmentName	path		string					true	"Segment file name"
//	@Param			hlsToken	query		string					true	"HLS access token"
//	@Success		200			{file}		file					"segment bytes"
//	@Failure		401			{object}	reelsdk.ErrorResponse	"invalid_token or token_expired"
//	@Failure		403			{object}	reelsdk.ErrorResponse	"forbidden"
//	@Failure		404			{object}	reelsdk.ErrorResponse	"not_found"
//	@Failure		502			{object}	reelsdk.ErrorResponse	"upstream_failure"
//	@Router			/v1/hls/segment/{courseId}/{sessionId}/{segmentName} [get].
func (h *HLSHandler) HandleSegment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, sessionID := r.PathValue("courseId"), r.PathValue("sessionId")

	obj, err := h.Gateway.GetSegment(ctx, courseID, sessionID, r.PathValue("segmentName"), r.URL.Query().Get(service.TokenParam))
	if err != nil {
		metrics.RecordHLSRequest(metrics.ResourceSegment, writeServiceError(w, r, err))
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", contentTypeSegment)
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := media.Relay(ctx, w, obj.Body)
	metrics.RecordBytesRelayed(metrics.ResourceSegment, n)
	if err != nil {
		// Headers are gone already; all that is left is to stop and log.
		metrics.RecordHLSRequest(metrics.ResourceSegment, "aborted")
		slogx.FromContext(ctx).Warn("segment relay aborted", slog.Int64("bytes", n), slogx.Err(err))
		return
	}
	metrics.RecordHLSRequest(metrics.ResourceSegment, "ok")
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
