// Package docs serves the OpenAPI document for the AuctionHouse API.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and receive a bearer token",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Caller identity from the bearer token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/products": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List all products, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/products.Product"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create an auction product",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/products.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/products.ProductCreatedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/products/my-products": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List the caller's own products",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/products.Product"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/products.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/products/close/{id}": {
            "patch": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "End an auction early (seller only)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/products.ProductClosedResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        },
        "/products/register/{id}": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Register the caller as a bidder",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/products.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/products.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httperr.E"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httperr.E"}}
                }
            }
        }
    },
    "definitions": {
        "httperr.E": {
            "type": "object",
            "properties": {"message": {"type": "string", "example": "Product not found"}}
        },
        "auth.RegisterRequest": {
            "type": "object",
            "required": ["firstName", "lastName", "email", "password", "confirmPassword"],
            "properties": {
                "firstName": {"type": "string", "example": "Ada"},
                "lastName": {"type": "string", "example": "Lovelace"},
                "email": {"type": "string", "example": "ada@example.com"},
                "password": {"type": "string", "example": "Password123"},
                "confirmPassword": {"type": "string", "example": "Password123"}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "ada@example.com"},
                "password": {"type": "string", "example": "Password123"}
            }
        },
        "auth.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "auth.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Registration successful"},
                "user": {"$ref": "#/definitions/auth.User"}
            }
        },
        "auth.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/auth.User"}
            }
        },
        "products.Registration": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "bidderNumber": {"type": "integer", "example": 1},
                "bidderName": {"type": "string", "example": "Bidder_1"},
                "registeredAt": {"type": "string"},
                "notified": {"type": "boolean"}
            }
        },
        "products.Product": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "string"},
                "condition": {"type": "string", "enum": ["New", "Used", "Antique"]},
                "startingPrice": {"type": "number"},
                "currentBid": {"type": "number"},
                "bidIncrement": {"type": "number"},
                "bidsCount": {"type": "integer"},
                "auctionStart": {"type": "string"},
                "status": {"type": "string", "enum": ["Upcoming", "Active", "Ended"]},
                "sellerId": {"type": "string"},
                "highestBidderId": {"type": "string"},
                "winnerId": {"type": "string"},
                "maxRegistrations": {"type": "integer"},
                "registeredUsers": {"type": "array", "items": {"$ref": "#/definitions/products.Registration"}},
                "registrationClosed": {"type": "boolean"},
                "paymentStatus": {"type": "string", "enum": ["Pending", "Paid"]},
                "deliveryStatus": {"type": "string", "enum": ["Pending", "Shipped", "Delivered"]},
                "isArchived": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "products.CreateProductRequest": {
            "type": "object",
            "required": ["title", "description", "images", "startingPrice", "auctionStart", "maxRegistrations"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "category": {"type": "string"},
                "condition": {"type": "string", "enum": ["New", "Used", "Antique"]},
                "startingPrice": {"type": "number"},
                "bidIncrement": {"type": "number"},
                "auctionStart": {"type": "string"},
                "maxRegistrations": {"type": "integer"}
            }
        },
        "products.ProductCreatedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Product added successfully"},
                "product": {"$ref": "#/definitions/products.Product"}
            }
        },
        "products.ProductClosedResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Bidding closed successfully"},
                "product": {"$ref": "#/definitions/products.Product"}
            }
        },
        "products.RegisterRequest": {
            "type": "object",
            "properties": {"bidderName": {"type": "string", "example": "Collector42"}}
        },
        "products.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Registered successfully"},
                "bidderNumber": {"type": "integer", "example": 1},
                "bidderName": {"type": "string", "example": "Bidder_1"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "AuctionHouse API",
	Description:      "Auction listings, bidder registration and a live product event stream.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
