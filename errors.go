package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Error categories mapped to HTTP statuses. Responses are rendered as JSON
// for API clients and as an HTML page for browsers.
type errorKind int

const (
	errNotFound errorKind = iota
	errValidation
	errServer
	errFile
)

func (k errorKind) status() int {
	switch k {
	case errNotFound:
		return http.StatusNotFound
	case errValidation:
		return http.StatusBadRequest
	case errFile:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k errorKind) String() string {
	switch k {
	case errNotFound:
		return "not_found"
	case errValidation:
		return "validation"
	case errFile:
		return "file"
	default:
		return "server"
	}
}

// wantsJSON decides how an error should be rendered. API routes always get
// JSON; everything else negotiates on the Accept header.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return false
}

func renderError(c *gin.Context, kind errorKind, message string) {
	status := kind.status()
	if wantsJSON(c) {
		c.JSON(status, gin.H{
			"success": false,
			"error":   message,
			"kind":    kind.String(),
		})
		return
	}

	c.HTML(status, "error.html", gin.H{
		"status":  status,
		"message": message,
	})
}

func notFoundHandler(c *gin.Context) {
	renderError(c, errNotFound, "The page you are looking for does not exist.")
}
