// Package api exposes the user administration HTTP surface: login and
// self-registration, the current-user endpoint, the admin user and role
// endpoints, and the error page. Handlers decode and validate requests,
// call the service layer and translate service errors into status codes.
package api
