package analysisapi

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

func routeWhitelisted(path string, whitelisted []string) bool {
	for _, route := range whitelisted {
		if path == route {
			return true
		}
	}
	return false
}

// ZstdMiddleware transparently decompresses zstd request bodies and, when the
// caller advertises support, compresses response bodies. Whitelisted routes
// pass through untouched.
func ZstdMiddleware(whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if routeWhitelisted(c.Path(), whitelistedRoutes) {
			return c.Next()
		}

		if strings.EqualFold(c.Get(fiber.HeaderContentEncoding), "zstd") {
			body := c.Body()
			if len(body) > 0 {
				decoder, err := zstd.NewReader(bytes.NewReader(body))
				if err != nil {
					log.Err(err).Msg("Failed to create zstd decoder")
					return fiber.NewError(fiber.StatusBadRequest, "failed to decompress zstd request body")
				}

				decompressed, err := io.ReadAll(decoder)
				decoder.Close()
				if err != nil {
					log.Err(err).Msg("Failed to decompress request")
					return fiber.NewError(fiber.StatusBadRequest, "failed to decompress zstd request body")
				}

				c.Request().SetBody(decompressed)
				c.Request().Header.Del(fiber.HeaderContentEncoding)
				log.Debug().
					Int("compressed_size", len(body)).
					Int("decompressed_size", len(decompressed)).
					Msg("Request body decompressed")
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		if strings.Contains(strings.ToLower(c.Get(fiber.HeaderAcceptEncoding)), "zstd") {
			responseBody := c.Response().Body()
			if len(responseBody) > 0 {
				encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
				if err != nil {
					log.Err(err).Msg("Failed to create zstd encoder")
					return nil // serve uncompressed
				}

				compressed := encoder.EncodeAll(responseBody, nil)
				encoder.Close()
				c.Response().SetBody(compressed)
				c.Set(fiber.HeaderContentEncoding, "zstd")
				c.Set(fiber.HeaderContentLength, fmt.Sprintf("%d", len(compressed)))

				log.Debug().
					Int("original_size", len(responseBody)).
					Int("compressed_size", len(compressed)).
					Msg("Response body compressed")
			}
		}

		return nil
	}
}

// APIKeyMiddleware rejects requests whose X-API-Key header does not match
// the configured key. An empty key disables the check, leaving the server
// open; whitelisted routes are always reachable.
func APIKeyMiddleware(apiKey string, whitelistedRoutes []string) fiber.Handler {
	if apiKey == "" {
		log.Warn().Msg("SERVER_API_KEY not set, requests are unauthenticated")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	key := []byte(apiKey)
	return func(c *fiber.Ctx) error {
		if routeWhitelisted(c.Path(), whitelistedRoutes) {
			return c.Next()
		}

		provided := []byte(c.Get(APIKeyHeader))
		if subtle.ConstantTimeCompare(provided, key) != 1 {
			log.Warn().
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Rejected request with missing or invalid API key")
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid API key")
		}

		return c.Next()
	}
}
