// Package docs holds the swagger document served at /swagger.
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
        "/stocks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "List watchlist stocks",
                "parameters": [
                    {"type": "string", "description": "Owner email", "name": "X-User-Email", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entity.Stock"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Add a stock",
                "parameters": [
                    {"type": "string", "description": "Owner email", "name": "X-User-Email", "in": "header"},
                    {"description": "Stock to add", "name": "stock", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AddStockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/entity.Stock"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/stocks/{symbol}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Remove a stock",
                "parameters": [
                    {"type": "string", "description": "Owner email", "name": "X-User-Email", "in": "header"},
                    {"type": "string", "description": "Stock symbol", "name": "symbol", "in": "path", "required": true},
                    {"type": "string", "description": "Market (US, HK, SH, SZ)", "name": "market", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/stocks/{symbol}/chart": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Intraday chart",
                "parameters": [
                    {"type": "string", "description": "Stock symbol", "name": "symbol", "in": "path", "required": true},
                    {"type": "string", "description": "Market (US, HK, SH, SZ)", "name": "market", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ChartResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "List reports",
                "parameters": [
                    {"type": "string", "description": "Owner email", "name": "X-User-Email", "in": "header"},
                    {"type": "string", "description": "today (default), yesterday or all", "name": "date_filter", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ReportListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/settings/timer": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Get the daily timer",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TimerResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Set the daily timer",
                "parameters": [
                    {"description": "Time as HH:MM", "name": "timer", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TimerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TimerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/analysis/trigger": {
            "post": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Run the analysis now",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.MessageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AddStockRequest": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "market": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.ChartResponse": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "market": {"type": "string"},
                "points": {"type": "array", "items": {"$ref": "#/definitions/dto.IntradayPoint"}}
            }
        },
        "dto.IntradayPoint": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "dto.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "dto.TimerRequest": {
            "type": "object",
            "properties": {"time": {"type": "string"}}
        },
        "dto.TimerResponse": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "next_run": {"type": "string"}
            }
        },
        "dto.ReportListResponse": {
            "type": "object",
            "properties": {
                "reports": {"type": "array", "items": {"$ref": "#/definitions/entity.AnalysisReport"}}
            }
        },
        "entity.Stock": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "market": {"type": "string"},
                "name": {"type": "string"},
                "added_at": {"type": "string"}
            }
        },
        "entity.NewsItem": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "sentiment": {"type": "string"},
                "score": {"type": "integer"}
            }
        },
        "entity.AnalysisReport": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner": {"type": "string"},
                "stock_symbol": {"type": "string"},
                "market": {"type": "string"},
                "stock_name": {"type": "string"},
                "report_content": {"type": "string"},
                "generated_at": {"type": "string"},
                "price": {"type": "number"},
                "recommendation": {"type": "string"},
                "news_items": {"type": "array", "items": {"$ref": "#/definitions/entity.NewsItem"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stock Watchlist Analysis API",
	Description:      "Watchlists, daily AI analysis reports and intraday charts for US, HK and A-share stocks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
