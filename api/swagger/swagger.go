package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Board API",
        "description": "Blog-style board backend with JWT session management",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session revocation"},
        {"name": "Users", "description": "Account registration"},
        {"name": "Posts", "description": "Board post CRUD"},
        {"name": "Exports", "description": "Admin post exports and signed downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (database + token store)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email or username already exists"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate and issue an access/refresh token pair",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "OAuth2-compatible form-encoded login",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange a refresh token for a new access token",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid, expired or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Blacklist the current access token",
                "responses": {
                    "200": {"description": "Logged out"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/logout-all": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Blacklist the current access token and revoke all refresh tokens",
                "responses": {
                    "200": {"description": "Logged out everywhere"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current authenticated user",
                "responses": {
                    "200": {"description": "User info"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "List posts newest first",
                "responses": {
                    "200": {"description": "Posts with pagination"}
                }
            },
            "post": {
                "tags": ["Posts"],
                "summary": "Create a post",
                "responses": {
                    "201": {"description": "Created"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "tags": ["Posts"],
                "summary": "Get a post by ID",
                "responses": {
                    "200": {"description": "Post"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Posts"],
                "summary": "Update a post (author or admin)",
                "responses": {
                    "200": {"description": "Updated"},
                    "403": {"description": "Not the author"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Posts"],
                "summary": "Delete a post (author or admin)",
                "responses": {
                    "200": {"description": "Deleted"},
                    "403": {"description": "Not the author"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/admin/exports/posts": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export posts as CSV or PDF (admin only)",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Signed download reference"},
                    "403": {"description": "Admin access required"}
                }
            }
        },
        "/downloads/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export file via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "401": {"description": "Invalid or expired token"},
                    "404": {"description": "File no longer available"}
                }
            }
        }
    },
    "definitions": {
        "TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
