// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/barberbook/main.go`.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/shops": {
            "get": {
                "summary": "List barbershops",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.ShopListResponse"}}}
            }
        },
        "/shops/{id}": {
            "get": {
                "summary": "Get barbershop",
                "parameters": [{"type": "string", "description": "Shop ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Shop"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/shops/{id}/slots": {
            "get": {
                "summary": "Time slot grid for a day",
                "parameters": [
                    {"type": "string", "description": "Shop ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "query", "required": true},
                    {"type": "string", "description": "Barber ID, empty for any", "name": "barber", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.SlotsResponse"}}}
            }
        },
        "/shops/{id}/reviews": {
            "get": {
                "summary": "Reviews of a barbershop, newest first",
                "parameters": [
                    {"type": "string", "description": "Shop ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Review"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "summary": "Review a barbershop",
                "parameters": [
                    {"type": "string", "description": "Shop ID", "name": "id", "in": "path", "required": true},
                    {"description": "rating 1 to 5", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.CreateReviewRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Review"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "422": {"description": "invalid rating", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "summary": "Start a booking session",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/httpgin.SessionResponse"}}}
            }
        },
        "/sessions/{id}": {
            "get": {
                "summary": "Get a booking session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.SessionResponse"}}}
            },
            "delete": {
                "summary": "Discard a booking session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/sessions/{id}/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "summary": "Confirm and submit the booking",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.SessionResponse"}},
                    "409": {"description": "slot taken / confirmation in progress", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "502": {"description": "submission failed", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "summary": "List my bookings",
                "parameters": [
                    {"type": "integer", "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Booking"}}}}
            }
        },
        "/bookings/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "summary": "Cancel one of my bookings",
                "parameters": [{"type": "string", "description": "Booking ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Booking"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "409": {"description": "already cancelled or completed", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        },
        "/consultations": {
            "post": {
                "summary": "Ask for a haircut and beard suggestion",
                "parameters": [{"description": "payload", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.ConsultationRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpgin.ConsultationResponse"}}}
            }
        },
        "/admin/shops": {
            "post": {
                "security": [{"BearerAuth": []}],
                "summary": "Create a barbershop with its services and barbers",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/httpgin.CreateShopResponse"}}}
            }
        },
        "/admin/bookings/{id}/status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "summary": "Move a booking to another status",
                "parameters": [
                    {"type": "string", "description": "Booking ID", "name": "id", "in": "path", "required": true},
                    {"description": "Confirmed, Cancelled or Completed", "name": "req", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpgin.BookingStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Booking"}},
                    "409": {"description": "transition not allowed", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}},
                    "422": {"description": "unknown status", "schema": {"$ref": "#/definitions/httpgin.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "httpgin.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "httpgin.ShopListResponse": {
            "type": "object",
            "properties": {
                "shops": {"type": "array", "items": {"$ref": "#/definitions/domain.Shop"}},
                "error": {"type": "string"}
            }
        },
        "httpgin.SlotsResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "slots": {"type": "array", "items": {"type": "object", "properties": {"time": {"type": "string"}, "available": {"type": "boolean"}}}}
            }
        },
        "httpgin.SessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "state": {"type": "object"},
                "total_cents": {"type": "integer"},
                "total": {"type": "string"},
                "can_advance": {"type": "boolean"},
                "steps": {"type": "array", "items": {"type": "string"}},
                "step_index": {"type": "integer"}
            }
        },
        "httpgin.ConsultationRequest": {"type": "object", "properties": {"description": {"type": "string"}}},
        "httpgin.ConsultationResponse": {"type": "object", "properties": {"recommendation": {"type": "string"}}},
        "httpgin.CreateShopResponse": {"type": "object", "properties": {"shop_id": {"type": "string"}}},
        "domain.Shop": {"type": "object"},
        "httpgin.CreateReviewRequest": {"type": "object", "properties": {"rating": {"type": "integer"}, "comment": {"type": "string"}}},
        "httpgin.BookingStatusRequest": {"type": "object", "properties": {"status": {"type": "string"}}},
        "domain.Booking": {"type": "object"},
        "domain.Review": {"type": "object"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BarberBook API",
	Description:      "Barbershop marketplace with a step by step booking wizard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
