package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Management API",
        "description": "Student, course and enrollment status records",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Students", "description": "Student registration, search and update"},
        {"name": "Courses", "description": "Course search and enrollment status"},
        {"name": "Authentication", "description": "Administrator tokens"}
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
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "Search students",
                "parameters": [
                    {"name": "fullname", "in": "query", "type": "string"},
                    {"name": "furigana", "in": "query", "type": "string"},
                    {"name": "nickname", "in": "query", "type": "string"},
                    {"name": "mail", "in": "query", "type": "string"},
                    {"name": "address", "in": "query", "type": "string"},
                    {"name": "minAge", "in": "query", "type": "integer"},
                    {"name": "maxAge", "in": "query", "type": "integer"},
                    {"name": "gender", "in": "query", "type": "string"},
                    {"name": "deleted", "in": "query", "type": "boolean"},
                    {"name": "courseName", "in": "query", "type": "string"},
                    {"name": "startDateFrom", "in": "query", "type": "string", "format": "date"},
                    {"name": "startDateTo", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDateFrom", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDateTo", "in": "query", "type": "string", "format": "date"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentDetail"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Mail already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export student roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster file"},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student and course names",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentDetail"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Search courses",
                "parameters": [
                    {"name": "courseName", "in": "query", "type": "string"},
                    {"name": "startDateFrom", "in": "query", "type": "string", "format": "date"},
                    {"name": "startDateTo", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDateFrom", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDateTo", "in": "query", "type": "string", "format": "date"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}/status": {
            "put": {
                "tags": ["Courses"],
                "summary": "Update course status",
                "description": "Any status may replace any other.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCourseStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "fullname": {"type": "string"},
                "furigana": {"type": "string"},
                "nickname": {"type": "string"},
                "mail": {"type": "string"},
                "address": {"type": "string"},
                "age": {"type": "integer"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "remark": {"type": "string"},
                "deleted": {"type": "boolean"}
            },
            "required": ["fullname", "furigana", "mail", "gender"]
        },
        "StudentCourse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "student_id": {"type": "integer"},
                "course_name": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            },
            "required": ["course_name"]
        },
        "CourseStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "course_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["provisional", "confirmed", "in_progress", "completed"]}
            }
        },
        "StudentDetail": {
            "type": "object",
            "properties": {
                "student": {"$ref": "#/definitions/Student"},
                "student_courses": {"type": "array", "items": {"$ref": "#/definitions/StudentCourse"}}
            }
        },
        "CourseDetail": {
            "type": "object",
            "properties": {
                "student_course": {"$ref": "#/definitions/StudentCourse"},
                "course_status": {"$ref": "#/definitions/CourseStatus"}
            }
        },
        "IntegratedDetail": {
            "type": "object",
            "properties": {
                "student_detail": {"$ref": "#/definitions/StudentDetail"},
                "course_details": {"type": "array", "items": {"$ref": "#/definitions/CourseDetail"}}
            }
        },
        "UpdateCourseStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["provisional", "confirmed", "in_progress", "completed"]}
            },
            "required": ["status"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
