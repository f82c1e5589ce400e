// Package docs registers the scanner OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/scanner/docs.go -o cmd/scanner/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/scan/{barcode}": {
            "get": {"tags": ["Scan"], "summary": "Resolve a barcode", "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/api/scan/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Scan"], "summary": "Recent scans of the caller", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Scan"], "summary": "Clear the caller's scan history", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8084",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FreshSave Scanner API",
	Description:      "Barcode resolution across the local table, the catalog and Open Food Facts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
