// Package docs holds the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/api/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Get driver state",
                "parameters": [
                    {"type": "string", "description": "Driver to inspect (franchise staff and HQ only)", "name": "driver_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DriverState"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/clock": {
            "post": {
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Clock in or out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DriverState"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/telemetry": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Apply one telemetry sample",
                "parameters": [
                    {"description": "Speed and distance to the customer", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.telemetryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DriverState"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/telemetry/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Queue a batch of telemetry samples",
                "parameters": [
                    {"description": "Samples, oldest first", "name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.telemetryRequest"}}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/simulate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Simulate telemetry for a mode",
                "parameters": [
                    {"description": "Target mode", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.simulateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DriverState"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/checklist/{id}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Toggle a delivery checklist item",
                "parameters": [
                    {"type": "integer", "description": "Checklist item ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DriverState"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/complete": {
            "post": {
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "Complete the current delivery",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DriverState"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/driver/deliveries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["driver"],
                "summary": "List completed deliveries",
                "parameters": [
                    {"type": "integer", "description": "Max results (default 20, max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.deliveriesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "domain.ChecklistItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "task": {"type": "string"},
                "completed": {"type": "boolean"}
            }
        },
        "domain.ModeContext": {
            "type": "object",
            "properties": {
                "speed": {"type": "number"},
                "distanceToCustomer": {"type": "number"},
                "isClockedIn": {"type": "boolean"}
            }
        },
        "domain.Stop": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "fuel": {"type": "string"}
            }
        },
        "domain.DriverState": {
            "type": "object",
            "properties": {
                "driverId": {"type": "string"},
                "inputs": {"$ref": "#/definitions/domain.ModeContext"},
                "mode": {"type": "string", "enum": ["dashboard", "driving", "delivery"]},
                "checklist": {"type": "array", "items": {"$ref": "#/definitions/domain.ChecklistItem"}},
                "currentStop": {"$ref": "#/definitions/domain.Stop"},
                "clockedInAt": {"type": "string"},
                "deliveryStartedAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.acceptedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.telemetryRequest": {
            "type": "object",
            "required": ["speed"],
            "properties": {
                "speed": {"type": "number"},
                "distanceToCustomer": {"type": "number"},
                "timestamp": {"type": "string"}
            }
        },
        "handler.simulateRequest": {
            "type": "object",
            "required": ["mode"],
            "properties": {
                "mode": {"type": "string", "enum": ["dashboard", "driving", "driver", "delivery"]}
            }
        },
        "handler.deliveryResponse": {
            "type": "object",
            "properties": {
                "stop": {"$ref": "#/definitions/domain.Stop"},
                "checklist": {"type": "array", "items": {"$ref": "#/definitions/domain.ChecklistItem"}},
                "completedAt": {"type": "string"}
            }
        },
        "handler.deliveriesResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/handler.deliveryResponse"}},
                "count": {"type": "integer"}
            }
        },
        "handler.sessionUser": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "role": {"type": "string"},
                "emailVerified": {"type": "boolean"},
                "termsAccepted": {"type": "boolean"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "action": {"type": "string"},
                "target": {"type": "string"},
                "user": {"$ref": "#/definitions/handler.sessionUser"},
                "expiresAt": {"type": "string"},
                "expiring": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StaFull Auth Gateway API",
	Description:      "Session, driver portal and health endpoints of the StaFull auth gateway.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
