// SPDX-License-Identifier: EPL-2.0

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api", s.limitBody)
	{
		api.POST("/embed", s.embed)
		api.POST("/detect", s.detect)
		// Extraction endpoint of the original embed service.
		api.POST("/extract", s.detectID)
	}

	// Clients of the standalone extraction service post here and expect the
	// external codec.
	s.engine.POST("/detect-id", s.limitBody, s.detectID)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("not found", "not_found"))
	})
}
