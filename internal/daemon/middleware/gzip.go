package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// The websocket upgrade on the events endpoint must not go through the
// compression writer.
var excludedPaths = []string{
	"/v1/events",
}

func Gzip() gin.HandlerFunc {
	return gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths(excludedPaths),
	)
}
