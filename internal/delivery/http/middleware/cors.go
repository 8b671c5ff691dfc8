package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS разрешает origins из CORS_ALLOWED_ORIGINS ("*" или список через запятую).
// Для "*" credentials не передаются: fiber не допускает их вместе с wildcard.
func CORS(allowedOrigins string) fiber.Handler {
	origins := normalizeOrigins(allowedOrigins)
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Accept-Encoding",
		ExposeHeaders:    "Content-Encoding",
		AllowCredentials: origins != "*",
		MaxAge:           3600,
	})
}

func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if p == "*" {
			return "*"
		}
		origins = append(origins, p)
	}
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
