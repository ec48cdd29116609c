package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tables Pro",
        "description": "Server-rendered movie tables with htmx partial updates, selection actions and exports.",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Tables", "description": "Table views, partial updates and bulk actions"},
        {"name": "Movies", "description": "Movie details and selection follow-up pages"},
        {"name": "Observability", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is down"}
                }
            }
        },
        "/tables/{slug}": {
            "get": {
                "tags": ["Tables"],
                "summary": "Render a table view",
                "description": "Plain requests render the full page. htmx requests are classified by their trigger headers and answered with a fragment or a client directive.",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "_export", "in": "query", "type": "string", "enum": ["csv", "xlsx"]},
                    {"name": "_subset", "in": "query", "type": "string", "enum": ["all", "selected"]},
                    {"name": "HX-Request", "in": "header", "type": "string"},
                    {"name": "HX-Trigger", "in": "header", "type": "string"},
                    {"name": "HX-Trigger-Name", "in": "header", "type": "string"},
                    {"name": "HX-Target", "in": "header", "type": "string"},
                    {"name": "HX-Current-URL", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML page, fragment, download or htmx directive"},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tables"],
                "summary": "Submit a table form",
                "description": "Handles inline cell edits, column settings forms and bulk actions on selected rows.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML fragment or htmx directive"},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{slug}/settings": {
            "get": {
                "tags": ["Tables"],
                "summary": "Render the layout settings form of an interactive view",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML fragment"},
                    "404": {"description": "View has no settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tables"],
                "summary": "Store layout settings for an interactive view",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Empty body with HX-Trigger"},
                    "400": {"description": "Invalid setting", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Tables"],
                "summary": "Drop stored layout settings for an interactive view",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Empty body with HX-Refresh"}
                }
            }
        },
        "/movies/{id}": {
            "get": {
                "tags": ["Movies"],
                "summary": "Movie detail page",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "return", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/movies/{id}/modal": {
            "get": {
                "tags": ["Movies"],
                "summary": "Movie detail modal",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "HTML fragment"},
                    "302": {"description": "Plain requests are sent to the detail page"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/action": {
            "get": {
                "tags": ["Movies"],
                "summary": "Follow-up page of a bulk action",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "table", "in": "query", "required": true, "type": "string"},
                    {"name": "return", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML"},
                    "400": {"description": "Unknown table", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
