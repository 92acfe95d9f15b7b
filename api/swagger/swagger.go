package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BitTutor API",
        "description": "Persistence and business-rule layer of the BitTutor course platform",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Users", "description": "Accounts, profiles and wishlists"},
        {"name": "Categories", "description": "Course categories and the ranked offer"},
        {"name": "Courses", "description": "Courses, reports and certificates"},
        {"name": "Resources", "description": "Course materials"},
        {"name": "Membership", "description": "Enrollment, wishlist, bans, completion"},
        {"name": "Reviews", "description": "Star ratings"},
        {"name": "Quizzes", "description": "Quizzes, questions and results"},
        {"name": "Exports", "description": "Subscriber roster exports"},
        {"name": "Metrics", "description": "Instrumentation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Degraded"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a new user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Mail already registered"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user profile",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/users/me": {
            "put": {
                "tags": ["Users"],
                "summary": "Update own profile",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete own account and taught courses",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/users/me/wishlist": {
            "get": {
                "tags": ["Users"],
                "summary": "Own wishlist, best rated first",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/categories": {
            "get": {
                "tags": ["Categories"],
                "summary": "List categories",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Categories"],
                "summary": "Create a category",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/categories/{name}/offer": {
            "get": {
                "tags": ["Categories"],
                "summary": "Courses in a category the viewer may join, best rated first",
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses": {
            "post": {
                "tags": ["Courses"],
                "summary": "Publish a course taught by the caller",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/courses/{id}/report": {
            "post": {
                "tags": ["Courses"],
                "summary": "Report a course; the report at the threshold cancels it",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Recorded"}}
            }
        },
        "/courses/{id}/certificate": {
            "get": {
                "tags": ["Courses"],
                "summary": "Download the completion certificate",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "produces": ["image/jpeg"],
                "responses": {
                    "200": {"description": "JPEG bytes"},
                    "412": {"description": "Course not completed"}
                }
            }
        },
        "/courses/{id}/resources": {
            "get": {
                "tags": ["Resources"],
                "summary": "List materials in page order",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Resources"],
                "summary": "Attach material to a course",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/courses/{id}/quizzes": {
            "get": {
                "tags": ["Quizzes"],
                "summary": "Quizzes the caller has not yet fully passed",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Quizzes"],
                "summary": "Add a quiz to a course",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/quizzes/{quizId}/results": {
            "post": {
                "tags": ["Quizzes"],
                "summary": "Grade and record the caller's attempt",
                "parameters": [{"name": "quizId", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Graded result"}}
            }
        },
        "/courses/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Schedule a subscriber roster export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Prometheus scrape endpoint",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["mail", "password"],
            "properties": {
                "mail": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterUserRequest": {
            "type": "object",
            "required": ["mail", "name", "password", "age", "study_level"],
            "properties": {
                "mail": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "age": {"type": "integer"},
                "study_level": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "required": ["name", "duration", "language", "up_age_range", "category"],
            "properties": {
                "name": {"type": "string"},
                "duration": {"type": "integer"},
                "language": {"type": "string"},
                "low_age_range": {"type": "integer"},
                "up_age_range": {"type": "integer"},
                "category": {"type": "string"},
                "description": {"type": "string"}
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
