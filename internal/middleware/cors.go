package middleware

import "github.com/go-chi/cors"

// CORSMiddleware permits any origin. Preflight requests are answered here
// and never reach the handlers.
var CORSMiddleware = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	AllowedHeaders:   []string{"*"},
	ExposedHeaders:   []string{RequestIDHeader},
	AllowCredentials: false,
	MaxAge:           300,
})
