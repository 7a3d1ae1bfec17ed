// FILE: internal/server/http/handler.go
package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"repertoire/internal/core"
	"repertoire/internal/scheduler"
	"repertoire/internal/server/service"
	"repertoire/internal/server/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the service
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	// Create handler
	h := NewHTTPHandler(svc)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")

	// Auth routes with specific rate limiting
	auth := api.Group("/auth")

	// Register: 5 req/min per IP
	auth.Post("/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "5 registrations per minute allowed",
			})
		},
	}), h.RegisterHandler)

	// Login: 10 req/min per IP
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: "10 login attempts per minute allowed",
			})
		},
	}), h.LoginHandler)

	// Create token validator closure
	validateToken := svc.ValidateToken

	// Current user (requires auth)
	auth.Get("/me", AuthRequired(validateToken), h.GetCurrentUserHandler)

	// Logout
	auth.Post("/logout", AuthRequired(validateToken), h.LogoutHandler)

	// Repertoire routes with standard rate limiting
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST and PUT requests
	api.Use(contentTypeValidator)

	// Middleware validation for sanitization
	api.Use(validationMiddleware)

	// Repertoire routes, all owner-scoped
	api.Post("/lines", AuthRequired(validateToken), h.SaveLine)
	api.Get("/review", AuthRequired(validateToken), h.GetDueCards)
	api.Post("/review", AuthRequired(validateToken), h.SubmitReview)
	api.Get("/repertoire/:color", AuthRequired(validateToken), h.GetRepertoire)
	api.Delete("/entries/:entryId", AuthRequired(validateToken), h.DeleteEntry)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrEntryNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// SaveLine ingests one opening line into the caller's repertoire
func (h *HTTPHandler) SaveLine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	// Ensure middleware validation ran
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	validatedBody := c.Locals("validatedBody")
	if validatedBody == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	req := *(validatedBody.(*core.SaveLineRequest))

	color, _ := core.ParseColor(req.Color)

	created, err := h.svc.SaveLine(userID, color, req.Opening, req.MovesSan, req.MovesUci)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyOrMismatchedLine),
			errors.Is(err, service.ErrLineEndsOnOpponentMove):
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid line",
				Code:    core.ErrInvalidLine,
				Details: err.Error(),
			})
		case errors.Is(err, service.ErrInvalidMoveInLine):
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid move",
				Code:    core.ErrInvalidMove,
				Details: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to save line",
			Code:  core.ErrInternalError,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(core.SaveLineResponse{EntriesCreated: created})
}

// SubmitReview applies a graded response to one entry
func (h *HTTPHandler) SubmitReview(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	validatedBody := c.Locals("validatedBody")
	if validatedBody == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	req := *(validatedBody.(*core.ReviewRequest))

	response, err := scheduler.ParseResponse(req.Response)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid response value",
			Code:    core.ErrInvalidResponse,
			Details: err.Error(),
		})
	}

	outcome, err := h.svc.SubmitReview(userID, req.EntryID, response, time.Now().UTC())
	if err != nil {
		return h.entryError(c, err, "failed to process review")
	}

	return c.JSON(core.ReviewResponse{
		Success:        true,
		NextReviewDate: outcome.NextReviewDate,
		IntervalDays:   outcome.IntervalDays,
		Rationale:      outcome.Rationale,
	})
}

// GetDueCards returns the caller's due entries for one color
func (h *HTTPHandler) GetDueCards(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	color, ok := core.ParseColor(c.Query("color", "white"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid color",
			Code:    core.ErrInvalidRequest,
			Details: "color must be \"white\" or \"black\"",
		})
	}

	cards, err := h.svc.DueCards(userID, color, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to load due cards",
			Code:  core.ErrInternalError,
		})
	}

	return c.JSON(core.DueCardsResponse{
		Color: color.String(),
		Cards: toEntryResponses(cards),
	})
}

// GetRepertoire returns every entry of the caller's repertoire for one color
func (h *HTTPHandler) GetRepertoire(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	color, ok := core.ParseColor(c.Params("color"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid color",
			Code:    core.ErrInvalidRequest,
			Details: "color must be \"white\" or \"black\"",
		})
	}

	entries, err := h.svc.RepertoireEntries(userID, color)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to load repertoire",
			Code:  core.ErrInternalError,
		})
	}

	return c.JSON(core.RepertoireResponse{
		Color:   color.String(),
		Entries: toEntryResponses(entries),
	})
}

// DeleteEntry removes an entry and all entries reachable from it
func (h *HTTPHandler) DeleteEntry(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	entryID := c.Params("entryId")

	// Validate UUID format
	if !isValidUUID(entryID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid entry ID format",
			Code:    core.ErrInvalidRequest,
			Details: "entry ID must be a valid UUID",
		})
	}

	deleted, err := h.svc.DeleteEntryTree(userID, entryID)
	if err != nil {
		return h.entryError(c, err, "failed to delete entry")
	}

	return c.JSON(core.DeleteEntryResponse{
		Success:      true,
		DeletedCount: len(deleted),
		DeletedIDs:   deleted,
	})
}

// entryError maps service-level entry errors to HTTP responses
func (h *HTTPHandler) entryError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "entry not found",
			Code:  core.ErrEntryNotFound,
		})
	case errors.Is(err, service.ErrEntryForbidden):
		return c.Status(fiber.StatusForbidden).JSON(core.ErrorResponse{
			Error: "entry belongs to another user",
			Code:  core.ErrForbidden,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: fallback,
		Code:  core.ErrInternalError,
	})
}

func toEntryResponses(entries []storage.EntryRecord) []core.EntryResponse {
	out := make([]core.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, core.EntryResponse{
			EntryID:        e.EntryID,
			OpeningID:      e.OpeningID,
			FEN:            e.FEN,
			MoveSan:        e.MoveSan,
			MoveUci:        e.MoveUci,
			Phase:          e.Phase,
			IntervalDays:   e.Interval,
			EaseFactor:     e.EaseFactor,
			Repetitions:    e.Repetitions,
			NextReviewDate: e.NextReview,
			LastReviewDate: e.LastReview,
		})
	}
	return out
}
