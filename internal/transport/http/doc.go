// Package http contains the chi HTTP handlers for the analytics API. Every
// handler renders JSON via go-chi/render and reports failures as RFC 7807
// problem documents through the shared error handler.
package http
