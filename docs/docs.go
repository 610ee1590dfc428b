// Package docs registers the Swagger document served at /swagger/*.
// Regenerate with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Register new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Login user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}},
        "/auth/otp/send": {"post": {"tags": ["Auth"], "summary": "Send OTP", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/otp/verify": {"post": {"tags": ["Auth"], "summary": "Verify OTP", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/password/reset": {"post": {"tags": ["Auth"], "summary": "Reset password", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Refresh access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"tags": ["Auth"], "summary": "Logout user", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout-all": {"post": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Logout from all devices", "responses": {"200": {"description": "OK"}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Get current user", "responses": {"200": {"description": "OK"}}}},
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Profile"], "summary": "Get my profile", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Profile"], "summary": "Update my profile", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/bookings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "List booking requests", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "Create booking request", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/bookings/scheduled": {"get": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "List scheduled services", "responses": {"200": {"description": "OK"}}}},
        "/bookings/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "Get booking request", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/bookings/{id}/accept": {"post": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "Accept booking request", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/bookings/{id}/reject": {"post": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "Reject booking request", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/bookings/{id}/reschedule": {"post": {"security": [{"BearerAuth": []}], "tags": ["Bookings"], "summary": "Reschedule booking request", "responses": {"501": {"description": "Not Implemented"}}}},
        "/admin/users": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "List users", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/admin/users/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Delete user", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/admin/users/{id}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Update user status", "responses": {"200": {"description": "OK"}}}},
        "/admin/users/{id}/role": {"patch": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Update user role", "responses": {"200": {"description": "OK"}}}},
        "/admin/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Platform statistics", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Swadhrama API",
	Description:      "Devotional service booking API: OTP sign-in, booking requests and admin moderation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
