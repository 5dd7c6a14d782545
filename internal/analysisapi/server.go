package analysisapi

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/manifold-labs/imbalance/internal/comparisons"
	"github.com/manifold-labs/imbalance/internal/config"
	"github.com/manifold-labs/imbalance/pkg/imbalance"
	"github.com/manifold-labs/imbalance/pkg/neighbors"
)

// NewServer builds the analysis API around the given configuration. Routes:
//
//	GET  /health          liveness probe
//	POST /api/v1/compare  two-way imbalance between column subsets of a dataset
//	POST /api/v1/ranks    conditional ranks between neighbor-index matrices
func NewServer(cfg *config.AppConfig) (*Server, error) {
	app := fiber.New(fiber.Config{
		Prefork:      false,
		ErrorHandler: fiberErrHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    cfg.Server.BodySizeLimit,
	})

	app.Use(recover.New()) // add panic recovery
	app.Use(compress.New(compress.Config{Level: compress.LevelBestCompression}))

	whitelistedRoutes := []string{"/health"}
	app.Use(ZstdMiddleware(whitelistedRoutes))
	app.Use(APIKeyMiddleware(cfg.Server.APIKey, whitelistedRoutes))

	s := &Server{
		App:    app,
		cfg:    cfg,
		limits: config.NewLimitsConfig(cfg.Environment),
	}

	if cfg.Server.CacheSize > 0 {
		cache, err := newResultCache(cfg.Server.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("analysisapi: result cache: %w", err)
		}
		s.cache = cache
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("body_limit", cfg.Server.BodySizeLimit).
		Int("cache_size", cfg.Server.CacheSize).
		Int("max_points", s.limits.MaxPoints).
		Msg("Analysis API configured")

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(newResponse(HealthResponse{Status: "ok"}, nil))
	})

	api := s.App.Group("/api/v1")
	register(api, "/compare", s.handleCompare)
	register(api, "/ranks", s.handleRanks)
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Analysis API listening")
	return s.App.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// register wires a typed POST handler under the router: the body is parsed
// into Req and the handler's Resp is wrapped in the standard envelope.
func register[Req any, Resp any](router fiber.Router, path string, handler func(*fiber.Ctx, Req) (Resp, error)) {
	router.Post(path, func(c *fiber.Ctx) error {
		var req Req
		if err := c.BodyParser(&req); err != nil {
			log.Error().
				Err(err).
				Str("path", c.Path()).
				Msg("Failed to parse request body")
			var zero Resp
			return c.Status(fiber.StatusBadRequest).JSON(newResponse(zero, err))
		}

		resp, err := handler(c, req)
		if err != nil {
			log.Error().
				Err(err).
				Str("path", c.Path()).
				Msg("Handler returned error")
			var zero Resp
			return c.Status(statusFor(err)).JSON(newResponse(zero, err))
		}

		return c.JSON(newResponse(resp, nil))
	})
}

// statusFor maps domain failures onto HTTP codes: malformed analysis inputs
// are the caller's fault, anything unrecognized is ours.
func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch {
	case errors.Is(err, imbalance.ErrShapeMismatch),
		errors.Is(err, imbalance.ErrInvalidK),
		errors.Is(err, neighbors.ErrUnknownMetric),
		errors.Is(err, neighbors.ErrInvalidMaxK),
		errors.Is(err, comparisons.ErrBadSubset):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(newResponse(struct{}{}, err))
}

func (s *Server) handleCompare(c *fiber.Ctx, req CompareRequest) (*comparisons.Result, error) {
	// Resolve tuning fields against the server defaults before anything
	// else, so limit checks and cache keys see the effective values.
	if req.K == 0 {
		req.K = s.cfg.Compute.K
	}
	if req.MaxK == 0 {
		// The configured default adapts to the environment's limit;
		// only an explicit maxk beyond it is refused.
		req.MaxK = min(s.cfg.Compute.MaxK, s.limits.MaxK)
	}
	if req.Metric == "" {
		req.Metric = s.cfg.Compute.Metric
	}
	if req.Seed == nil {
		req.Seed = s.cfg.Compute.Seed
	}

	metric, err := neighbors.ParseMetric(req.Metric)
	if err != nil {
		return nil, err
	}
	if err := s.checkCompareLimits(req); err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil && req.Seed != nil {
		if key, err = cacheKey(req); err == nil {
			if res, ok := s.cache.Get(key); ok {
				log.Debug().Str("key", key).Msg("Compare served from cache")
				return res, nil
			}
		}
	}

	data, err := toDense(req.Data)
	if err != nil {
		return nil, err
	}

	opts := []comparisons.ComparerOption{
		comparisons.WithK(req.K),
		comparisons.WithMaxK(req.MaxK),
		comparisons.WithMetric(metric),
		comparisons.WithWorkers(s.cfg.Compute.Workers),
	}
	if req.Seed != nil {
		opts = append(opts, comparisons.WithSeed(*req.Seed))
	}

	res, err := comparisons.New(opts...).CompareColumns(c.UserContext(), data, req.ColsA, req.ColsB)
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.cache.Add(key, res)
	}
	return res, nil
}

func (s *Server) handleRanks(c *fiber.Ctx, req RanksRequest) (*RanksResponse, error) {
	if n := len(req.Indices1); n > s.limits.MaxPoints {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("%d points exceeds the %d point limit", n, s.limits.MaxPoints))
	}

	if req.K == 0 {
		req.K = s.cfg.Compute.K
	}
	if req.Seed == nil {
		req.Seed = s.cfg.Compute.Seed
	}

	opts := []imbalance.EstimatorOption{
		imbalance.WithK(req.K),
		imbalance.WithWorkers(s.cfg.Compute.Workers),
	}
	if req.Seed != nil {
		opts = append(opts, imbalance.WithSeed(*req.Seed))
	}

	ranks, err := imbalance.NewEstimator(opts...).Ranks(req.Indices1, req.Indices2)
	if err != nil {
		return nil, err
	}

	n, _ := ranks.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = ranks.Ranks.RawRowView(i)
	}

	return &RanksResponse{
		Ranks:     out,
		Misses:    ranks.Misses,
		MissRate:  ranks.MissRate(),
		Imbalance: ranks.Imbalance(),
	}, nil
}

func (s *Server) checkCompareLimits(req CompareRequest) error {
	if n := len(req.Data); n > s.limits.MaxPoints {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("%d points exceeds the %d point limit", n, s.limits.MaxPoints))
	}
	if len(req.Data) > 0 {
		if w := len(req.Data[0]); w > s.limits.MaxFeatures {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge,
				fmt.Sprintf("%d features exceeds the %d feature limit", w, s.limits.MaxFeatures))
		}
	}
	if req.MaxK > s.limits.MaxK {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("maxk %d exceeds the limit of %d", req.MaxK, s.limits.MaxK))
	}
	return nil
}

func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "data must be a non-empty matrix")
	}

	width := len(rows[0])
	out := mat.NewDense(len(rows), width, nil)
	for i, row := range rows {
		if len(row) != width {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("data row %d has %d columns, want %d", i, len(row), width))
		}
		out.SetRow(i, row)
	}
	return out, nil
}
