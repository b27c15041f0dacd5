// Package docs registers the OpenAPI description of the HTTP API with swag so
// gin-swagger can serve it under /swagger.
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
        "/health": {
            "get": {
                "summary": "Liveness check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/snapshot": {
            "get": {
                "summary": "Current navigation state",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/NavigationSnapshot"}}}
            }
        },
        "/snapshot/stream": {
            "get": {
                "summary": "Navigation state as server-sent events",
                "description": "Emits one snapshot event for the current state and one per change.",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/search": {
            "post": {
                "summary": "Search text changed",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SearchRequest"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}
            }
        },
        "/suggestions/accept": {
            "post": {
                "summary": "Accept a suggestion",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PlaceSuggestion"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}
            }
        },
        "/map/tap": {
            "post": {
                "summary": "Tap a point on the map",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Coordinate"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}
            }
        },
        "/destination/confirm": {
            "post": {
                "summary": "Confirm the selected place as destination",
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/guidance/end": {
            "post": {
                "summary": "End guidance",
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/camera/recenter": {
            "post": {
                "summary": "Point the camera at the current location",
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/location": {
            "post": {
                "summary": "Push a device location fix",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Coordinate"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "403": {"description": "Permission not granted"}}
            }
        },
        "/permission": {
            "post": {
                "summary": "Grant or revoke location permission",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PermissionRequest"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}
            }
        },
        "/lifecycle": {
            "post": {
                "summary": "Client view became active or inactive",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LifecycleRequest"}}],
                "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}}
            }
        },
        "/diagnostics": {
            "get": {
                "summary": "Recently absorbed failures",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "Coordinate": {
            "type": "object",
            "required": ["lat", "lng"],
            "properties": {
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "PlaceSuggestion": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "display_text": {"type": "string"}
            }
        },
        "SelectedPlace": {
            "type": "object",
            "properties": {
                "coordinate": {"$ref": "#/definitions/Coordinate"},
                "display_name": {"type": "string"},
                "awaiting_confirmation": {"type": "boolean"}
            }
        },
        "Camera": {
            "type": "object",
            "properties": {
                "target": {"$ref": "#/definitions/Coordinate"},
                "zoom": {"type": "number"}
            }
        },
        "NavigationSnapshot": {
            "type": "object",
            "properties": {
                "version": {"type": "integer"},
                "phase": {"type": "string", "enum": ["idle", "previewing", "guiding", "rerouting"]},
                "current_location": {"$ref": "#/definitions/Coordinate"},
                "origin": {"$ref": "#/definitions/Coordinate"},
                "destination": {"$ref": "#/definitions/Coordinate"},
                "selected_place": {"$ref": "#/definitions/SelectedPlace"},
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/PlaceSuggestion"}},
                "route": {"type": "array", "items": {"$ref": "#/definitions/Coordinate"}},
                "guidance_active": {"type": "boolean"},
                "show_start_marker": {"type": "boolean"},
                "camera": {"$ref": "#/definitions/Camera"}
            }
        },
        "SearchRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "PermissionRequest": {
            "type": "object",
            "required": ["granted"],
            "properties": {
                "granted": {"type": "boolean"}
            }
        },
        "LifecycleRequest": {
            "type": "object",
            "required": ["active"],
            "properties": {
                "active": {"type": "boolean"}
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
	Title:            "findway API",
	Description:      "Navigation session: search places, pick a destination, follow the route.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
