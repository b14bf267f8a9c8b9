// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/upscale": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Upscale"],
                "summary": "Upscale an image",
                "parameters": [
                    {"description": "Image source and scale", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpscaleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upscaled image as a PNG data URL", "schema": {"$ref": "#/definitions/dto.UpscaleResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "429": {"description": "Upstream rate limit", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Server error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/credits/deduct": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Credits"],
                "summary": "Deduct credits",
                "parameters": [
                    {"description": "User and amount (default 1)", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.DeductCreditsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Remaining balance, or unlimited", "schema": {"$ref": "#/definitions/dto.DeductCreditsResponse"}},
                    "400": {"description": "Missing user ID", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "402": {"description": "Insufficient credits", "schema": {"$ref": "#/definitions/dto.InsufficientCreditsResponse"}},
                    "403": {"description": "Token subject differs from userId", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "User profile not found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/images/save": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "Save an image record",
                "parameters": [
                    {"description": "Image record", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SaveImageRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored record", "schema": {"$ref": "#/definitions/dto.SaveImageResponse"}},
                    "400": {"description": "Missing required fields", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/images": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "List image records",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Records", "schema": {"$ref": "#/definitions/utils.PaginatedResponse"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Get profile",
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/dto.ProfileDTO"}},
                    "404": {"description": "User profile not found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/profile/usage": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Get usage",
                "responses": {
                    "200": {"description": "Usage", "schema": {"$ref": "#/definitions/dto.UsageDTO"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "User registration",
                "parameters": [
                    {"description": "Registration details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "User successfully registered", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "User login",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Successfully authenticated", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Refresh access token",
                "parameters": [
                    {"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "New tokens generated", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "401": {"description": "Invalid refresh token", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "User logout",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Get current session",
                "responses": {
                    "200": {"description": "Session", "schema": {"$ref": "#/definitions/dto.SessionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.UpscaleRequest": {
            "type": "object",
            "properties": {
                "imageUrl": {"type": "string"},
                "scale": {"type": "number"}
            }
        },
        "dto.UpscaleResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "url": {"type": "string"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "scale": {"type": "number"},
                        "width": {"type": "integer"},
                        "height": {"type": "integer"}
                    }
                }
            }
        },
        "dto.DeductCreditsRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "amount": {"type": "integer"}
            }
        },
        "dto.DeductCreditsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "credits": {"type": "string"},
                "totalUpscales": {"type": "integer"},
                "isPremium": {"type": "boolean"}
            }
        },
        "dto.InsufficientCreditsResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "credits": {"type": "integer"}
            }
        },
        "dto.SaveImageRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "originalUrl": {"type": "string"},
                "upscaledUrl": {"type": "string"},
                "scale": {"type": "number"},
                "fileSizeBytes": {"type": "integer"}
            }
        },
        "dto.ImageDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "originalUrl": {"type": "string"},
                "upscaledUrl": {"type": "string"},
                "scale": {"type": "number"},
                "fileSizeBytes": {"type": "integer"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.SaveImageResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "image": {"$ref": "#/definitions/dto.ImageDTO"}
            }
        },
        "dto.ProfileDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "credits": {"type": "string"},
                "isPremium": {"type": "boolean"},
                "totalUpscales": {"type": "integer"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.UsageDTO": {
            "type": "object",
            "properties": {
                "imagesUpscaled": {"type": "integer"},
                "creditsRemaining": {"type": "string"},
                "creditsTotal": {"type": "integer"},
                "unlimited": {"type": "boolean"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "dto.RefreshTokenRequest": {
            "type": "object",
            "required": ["refreshToken"],
            "properties": {
                "refreshToken": {"type": "string"}
            }
        },
        "dto.UserDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.AuthResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"},
                "expiresAt": {"type": "string"},
                "user": {"$ref": "#/definitions/dto.UserDTO"}
            }
        },
        "dto.SessionResponse": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "email": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "details": {}
            }
        },
        "utils.PaginatedResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Upscaler API",
	Description:      "Image upscaling gateway, credit ledger and upscale history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
