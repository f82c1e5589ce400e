// Package docs registers the catalog OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/catalog/docs.go -o cmd/catalog/docs
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
        "/api/products": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Create a new product", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/products/search": {
            "get": {"tags": ["Products"], "summary": "Search products", "parameters": [{"type": "string", "name": "q", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/products/category/{category}": {
            "get": {"tags": ["Products"], "summary": "List products in a category", "parameters": [{"type": "string", "name": "category", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/products/{barcode}": {
            "get": {"tags": ["Products"], "summary": "Get product by barcode", "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Update a product", "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Products"], "summary": "Delete a product", "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/api/stores": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Stores"], "summary": "Create the caller's store", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/stores/admin/{adminId}": {
            "get": {"tags": ["Stores"], "summary": "Get a store by its admin", "parameters": [{"type": "string", "name": "adminId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/stores/{storeId}": {
            "get": {"tags": ["Stores"], "summary": "Get a store", "parameters": [{"type": "string", "name": "storeId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Stores"], "summary": "Update a store", "parameters": [{"type": "string", "name": "storeId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/stores/{storeId}/products": {
            "get": {"tags": ["Stores"], "summary": "List products of a store", "parameters": [{"type": "string", "name": "storeId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/stores/{storeId}/stats": {
            "get": {"tags": ["Stores"], "summary": "Store statistics", "parameters": [{"type": "string", "name": "storeId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/favorites": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "List the caller's favorite products", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Add a favorite", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}
        },
        "/api/favorites/{barcode}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Is the product a favorite", "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Remove a favorite", "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/scans/top": {
            "get": {"tags": ["Scans"], "summary": "Most scanned barcodes", "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FreshSave Catalog API",
	Description:      "Products, stores, favorites and scan statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
