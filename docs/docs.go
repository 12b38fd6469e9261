// Package docs registers the OpenAPI description of the quizlive API with swag.
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
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"summary": "Create an account", "tags": ["auth"], "responses": {"201": {"description": "token"}}}},
        "/auth/login": {"post": {"summary": "Log in with login, code and password", "tags": ["auth"], "responses": {"200": {"description": "token"}, "401": {"description": "bad credentials"}}}},
        "/quizzes": {
            "get": {"summary": "List the caller's quizzes", "tags": ["quizzes"], "security": [{"Bearer": []}], "responses": {"200": {"description": "quizzes"}}},
            "post": {"summary": "Create a quiz", "tags": ["quizzes"], "security": [{"Bearer": []}], "responses": {"201": {"description": "quiz"}}}
        },
        "/quizzes/{quizKey}": {"get": {"summary": "Get a quiz", "tags": ["quizzes"], "security": [{"Bearer": []}], "responses": {"200": {"description": "quiz"}, "404": {"description": "unknown quiz"}}}},
        "/quizzes/{quizKey}/items": {"put": {"summary": "Create or replace the item at a position", "tags": ["quizzes"], "security": [{"Bearer": []}], "responses": {"200": {"description": "quiz"}, "400": {"description": "missing field"}}}},
        "/quizzes/{quizKey}/items/{position}": {"delete": {"summary": "Remove the item at a position", "tags": ["quizzes"], "security": [{"Bearer": []}], "responses": {"200": {"description": "quiz"}}}},
        "/lives": {
            "get": {"summary": "List the caller's lives", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "lives"}}},
            "post": {"summary": "CREATE_LIVE", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"201": {"description": "live snapshot"}}}
        },
        "/lives/{liveKey}": {"get": {"summary": "GET_LIVE", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}, "404": {"description": "unknown live"}}}},
        "/lives/{liveKey}/next": {"post": {"summary": "NEXT_POSITION", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}, "409": {"description": "concurrent update conflict"}}}},
        "/lives/{liveKey}/previous": {"post": {"summary": "PREVIOUS_POSITION", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}}}},
        "/lives/{liveKey}/end": {"post": {"summary": "END_LIVE", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}}}},
        "/lives/{liveKey}/lobby": {
            "post": {"summary": "ADD_PUPIL_TO_LOBBY", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}}},
            "delete": {"summary": "REMOVE_PUPIL_FROM_LOBBY", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}}}
        },
        "/lives/{liveKey}/answers": {"post": {"summary": "SUBMIT_ANSWER", "tags": ["lives"], "security": [{"Bearer": []}], "responses": {"200": {"description": "live snapshot"}}}},
        "/ws/lives/{liveKey}": {"get": {"summary": "GET_LIVE_STREAM (websocket, token query parameter)", "tags": ["lives"], "responses": {"101": {"description": "snapshot stream"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "quizlive API",
	Description:      "Live classroom quiz sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
