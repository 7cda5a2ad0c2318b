// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octagonops/fightbot/services/fightbot/handlers"
)

// SetupRoutes registers the fightbot HTTP surface on the given engine.
func SetupRoutes(router *gin.Engine, h *handlers.Handler) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/ask", h.Ask)

		admin := v1.Group("/admin")
		{
			admin.DELETE("/cache", h.FlushCache)
		}
	}
}
