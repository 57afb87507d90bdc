package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>qualikit-governance — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the governance and auth endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "qualikit-governance", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Exchange authorization code / login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mode":{"type":"string"},"username":{"type":"string"},"password":{"type":"string"},"code":{"type":"string"},"redirect_uri":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/documents": {
      "get": { "summary": "List controlled documents", "responses": { "200": { "description": "document list" } } },
      "post": { "summary": "Create a controlled document in draft", "responses": { "201": { "description": "created" } } }
    },
    "/api/v1/documents/{id}/transition": {
      "post": {
        "summary": "Advance a document one lifecycle step",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"target":{"type":"string","enum":["draft","in_review","pending_approval","approved","obsolete"]}}}}}},
        "responses": { "200": { "description": "transition applied" }, "403": { "description": "actor lacks the role" }, "409": { "description": "stale version" }, "422": { "description": "illegal transition" } }
      }
    },
    "/api/v1/tickets": {
      "post": { "summary": "Open a request ticket against a published document", "responses": { "201": { "description": "created" }, "422": { "description": "document not public" } } }
    },
    "/api/v1/tickets/{id}/resolve": {
      "post": {
        "summary": "Resolve an open ticket exactly once",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"decision":{"type":"string","enum":["approve","decline"]},"comment":{"type":"string"}}}}}},
        "responses": { "200": { "description": "resolved" }, "403": { "description": "not the area owner" }, "409": { "description": "already resolved" } }
      }
    },
    "/api/v1/areas/{id}": {
      "put": { "summary": "Create or update an area", "responses": { "200": { "description": "upserted" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
