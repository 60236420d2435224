// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/listings": {
            "get": {
                "description": "Returns listings from the cache or a live search. A live search with results queues background enrichment; poll again later to see cost, rent and ROI figures.",
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Search listings by zipcode or city",
                "parameters": [
                    {"type": "string", "description": "5-digit zipcode", "name": "zip", "in": "query"},
                    {"type": "string", "description": "City, used with state when zip is omitted", "name": "city", "in": "query"},
                    {"type": "string", "description": "2-letter state code", "name": "state", "in": "query"},
                    {"type": "integer", "description": "Minimum price in dollars", "name": "minPrice", "in": "query"},
                    {"type": "integer", "description": "Maximum price in dollars", "name": "maxPrice", "in": "query"},
                    {"type": "integer", "description": "Minimum bedrooms", "name": "minBeds", "in": "query"},
                    {"type": "integer", "description": "Maximum monthly HOA", "name": "maxHOA", "in": "query"},
                    {"type": "string", "description": "Comma-separated keywords, e.g. pool,lake view", "name": "features", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListingsResponse"}},
                    "400": {"description": "Invalid search parameters", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Listing site unavailable or blocking", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/financials": {
            "get": {
                "description": "Signs into the analytics site on a fresh session and reads net operating income, occupancy and revenue for the address.",
                "produces": ["application/json"],
                "tags": ["financials"],
                "summary": "Rental projection for one property",
                "parameters": [
                    {"type": "string", "description": "Full street address", "name": "address", "in": "query", "required": true},
                    {"type": "number", "description": "Bedrooms", "name": "beds", "in": "query"},
                    {"type": "number", "description": "Bathrooms", "name": "baths", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.FinancialsResponse"}},
                    "400": {"description": "Missing or invalid address", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Analytics login failed", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "No projection for this address", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/zipcode": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Resolve a city to its main zipcode",
                "parameters": [
                    {"description": "City and 2-letter state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ZipcodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ZipcodeResponse"}},
                    "400": {"description": "Invalid city/state or no zipcode found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/analyze": {
            "post": {
                "description": "Adds a monthly cost estimate to each listing and recomputes cash flow and ROI from any rent already present. Listings without an address are skipped.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Estimate costs and returns for caller-supplied listings",
                "parameters": [
                    {"description": "Listings to analyze", "name": "listings", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Listing"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AnalyzeResponse"}},
                    "400": {"description": "Invalid body", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/admin/queue": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Enrichment queue counters",
                "parameters": [
                    {"type": "string", "description": "Admin key", "name": "X-Admin-Key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/enrich.QueueStats"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/admin/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Recent enrichment runs",
                "parameters": [
                    {"type": "string", "description": "Admin key", "name": "X-Admin-Key", "in": "header", "required": true},
                    {"type": "integer", "description": "Maximum runs to return (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.EnrichmentReport"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/admin/cache/purge": {
            "post": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Delete expired cache entries",
                "parameters": [
                    {"type": "string", "description": "Admin key", "name": "X-Admin-Key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "models.Listing": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "url": {"type": "string"},
                "price": {"type": "integer"},
                "beds": {"type": "number"},
                "baths": {"type": "number"},
                "sqft": {"type": "integer"},
                "hoa": {"type": "integer"},
                "features": {"type": "array", "items": {"type": "string"}},
                "imageUrl": {"type": "string"},
                "monthlyCost": {"type": "number"},
                "monthlyRent": {"type": "number"},
                "airDnaNOI": {"type": "number"},
                "occupancyRate": {"type": "number"},
                "cashFlow": {"type": "number"},
                "roi": {"type": "number"}
            }
        },
        "models.Financials": {
            "type": "object",
            "properties": {
                "netOperatingIncome": {"type": "number"},
                "occupancyRate": {"type": "number"},
                "annualRevenue": {"type": "number"},
                "monthlyRent": {"type": "number"}
            }
        },
        "models.EnrichmentReport": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "key": {"type": "string"},
                "startedAt": {"type": "string"},
                "finishedAt": {"type": "string"},
                "total": {"type": "integer"},
                "attempted": {"type": "integer"},
                "enriched": {"type": "integer"},
                "failed": {"type": "integer"},
                "stored": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "enrich.QueueStats": {
            "type": "object",
            "properties": {
                "pending": {"type": "integer"},
                "capacity": {"type": "integer"},
                "workers": {"type": "integer"},
                "active": {"type": "integer"},
                "submitted": {"type": "integer"},
                "dropped": {"type": "integer"},
                "completed": {"type": "integer"},
                "failed": {"type": "integer"}
            }
        },
        "handlers.ListingsResponse": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "timestamp": {"type": "string"},
                "totalListings": {"type": "integer"},
                "listings": {"type": "array", "items": {"$ref": "#/definitions/models.Listing"}},
                "status": {"type": "string"},
                "cached": {"type": "boolean"},
                "enrichedAt": {"type": "string"},
                "enrichmentQueued": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "handlers.FinancialsResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"$ref": "#/definitions/models.Financials"}
            }
        },
        "handlers.ZipcodeRequest": {
            "type": "object",
            "required": ["city", "state"],
            "properties": {
                "city": {"type": "string"},
                "state": {"type": "string"}
            }
        },
        "handlers.ZipcodeResponse": {
            "type": "object",
            "properties": {
                "zipcode": {"type": "string"},
                "searchUrl": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.AnalyzeSummary": {
            "type": "object",
            "properties": {
                "analyzed": {"type": "integer"},
                "skipped": {"type": "integer"},
                "withRoi": {"type": "integer"},
                "averageRoi": {"type": "number"},
                "bestAddress": {"type": "string"},
                "bestRoi": {"type": "number"}
            }
        },
        "handlers.AnalyzeResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "totalListings": {"type": "integer"},
                "listings": {"type": "array", "items": {"$ref": "#/definitions/models.Listing"}},
                "summary": {"$ref": "#/definitions/handlers.AnalyzeSummary"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Rental Scout API",
	Description:      "Searches for-sale listings by zipcode and enriches them in the background with mortgage cost and short-term rental projections",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
