package analysisapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/manifold-labs/imbalance/internal/comparisons"
	"github.com/manifold-labs/imbalance/internal/config"
)

// Client talks to a remote analysis API. Compression is optional: when
// enabled, request bodies go out zstd-encoded and responses advertising
// zstd come back through a shared decoder.
type Client struct {
	cfg         *config.ClientEnvConfig
	restyClient *resty.Client
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
}

func NewClient(cfg *config.ClientEnvConfig) (*Client, error) {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.ClientTimeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	if cfg.APIKey != "" {
		restyClient.SetHeader(APIKeyHeader, cfg.APIKey)
	}

	client := &Client{
		cfg:         cfg,
		restyClient: restyClient,
	}

	if cfg.Compress {
		restyClient.SetHeader(fiber.HeaderAcceptEncoding, "zstd")

		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("analysisapi: zstd encoder: %w", err)
		}
		client.encoder = encoder

		decoder, err := zstd.NewReader(nil)
		if err != nil {
			encoder.Close()
			return nil, fmt.Errorf("analysisapi: zstd decoder: %w", err)
		}
		client.decoder = decoder
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.ClientTimeout).
		Bool("compress", cfg.Compress).
		Msg("Analysis API client ready")

	return client, nil
}

// Close releases the shared compression codecs.
func (c *Client) Close() {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

// Compare runs a two-way imbalance analysis on the server.
func (c *Client) Compare(ctx context.Context, req *CompareRequest) (*comparisons.Result, error) {
	return post[comparisons.Result](ctx, c, "/api/v1/compare", req)
}

// Ranks computes conditional ranks on the server from precomputed
// neighbor-index matrices.
func (c *Client) Ranks(ctx context.Context, req *RanksRequest) (*RanksResponse, error) {
	return post[RanksResponse](ctx, c, "/api/v1/ranks", req)
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.restyClient.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("analysisapi: health: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("analysisapi: health returned %d", resp.StatusCode())
	}
	return nil
}

// post sends body to path and unwraps the standard envelope into Resp.
func post[Resp any](ctx context.Context, c *Client, path string, body any) (*Resp, error) {
	r := c.restyClient.R().
		SetContext(ctx).
		SetHeader(fiber.HeaderContentType, "application/json")

	if c.encoder != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("analysisapi: marshal request: %w", err)
		}
		r.SetHeader(fiber.HeaderContentEncoding, "zstd").
			SetBody(c.encoder.EncodeAll(payload, nil))
	} else {
		r.SetBody(body)
	}

	resp, err := r.Post(path)
	if err != nil {
		return nil, fmt.Errorf("analysisapi: post %s: %w", path, err)
	}

	raw := resp.Body()
	if c.decoder != nil && resp.Header().Get(fiber.HeaderContentEncoding) == "zstd" {
		raw, err = c.decoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("analysisapi: decompress response: %w", err)
		}
	}

	var envelope StdResponse[*Resp]
	if uerr := sonic.Unmarshal(raw, &envelope); uerr != nil {
		if resp.IsError() {
			return nil, fmt.Errorf("analysisapi: %s returned %d: %s", path, resp.StatusCode(), string(raw))
		}
		return nil, fmt.Errorf("analysisapi: unmarshal response: %w", uerr)
	}
	if envelope.Error != nil {
		return nil, fmt.Errorf("analysisapi: %s returned %d: %s", path, resp.StatusCode(), *envelope.Error)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("analysisapi: %s returned %d", path, resp.StatusCode())
	}
	if envelope.Body == nil {
		return nil, fmt.Errorf("analysisapi: %s returned an empty body", path)
	}

	return envelope.Body, nil
}
