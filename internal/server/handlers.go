// SPDX-License-Identifier: EPL-2.0

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ik5/audmark/pipeline"
	"github.com/ik5/audmark/watermark"
)

const missingAudio = `missing "audio" (base64 audio) in request body`

func errorBody(msg, kind string) gin.H {
	return gin.H{"success": false, "error": msg, "kind": kind}
}

func (s *Server) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
	c.Next()
}

// bind decodes the JSON body and reports whether the handler may continue.
func (s *Server) bind(c *gin.Context, dst any, audio func() string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("request body too large", pipeline.KindMalformedInput.String()))
			return false
		}
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error(), pipeline.KindMalformedInput.String()))
		return false
	}
	if audio() == "" {
		c.JSON(http.StatusBadRequest, errorBody(missingAudio, pipeline.KindMalformedInput.String()))
		return false
	}
	return true
}

func statusFor(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindMalformedInput, pipeline.KindMalformedAudio:
		return http.StatusBadRequest
	case pipeline.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case pipeline.KindBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	kind := pipeline.KindOf(err)
	status := statusFor(kind)
	if kind.ClientError() {
		s.logger.Debug("request rejected", "path", c.FullPath(), "kind", kind, "error", err)
	} else {
		s.logger.Error("request failed", "path", c.FullPath(), "kind", kind, "error", err)
	}
	c.JSON(status, errorBody(err.Error(), kind.String()))
}

func (s *Server) embed(c *gin.Context) {
	var req pipeline.EmbedRequest
	if !s.bind(c, &req, func() string { return req.Audio }) {
		return
	}

	resp, err := s.pipeline.Embed(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) detect(c *gin.Context) {
	var req pipeline.DetectRequest
	if !s.bind(c, &req, func() string { return req.Audio }) {
		return
	}

	resp, err := s.pipeline.Detect(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) detectID(c *gin.Context) {
	var req pipeline.DetectRequest
	if !s.bind(c, &req, func() string { return req.Audio }) {
		return
	}
	req.Method = string(watermark.MethodExternalCodec)

	resp, err := s.pipeline.Detect(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "OK",
		"uptime":   time.Since(s.started).Seconds(),
		"backends": s.pipeline.Registry().Status(),
		"formats":  s.pipeline.Formats(),
	})
}
