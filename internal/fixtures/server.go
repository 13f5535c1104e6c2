package fixtures

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Variant selects which payload shape the daily range endpoint serves.
type Variant string

// Variants served by the daily range endpoint.
const (
	VariantNested   Variant = "nested"
	VariantCombined Variant = "combined"
	VariantFlat     Variant = "flat"
	VariantEncoded  Variant = "encoded"
	VariantStandard Variant = "standard"
	VariantUnknown  Variant = "unknown"
	// VariantAppError answers every request with an application error.
	VariantAppError Variant = "app-error"
	// VariantDown answers every request with HTTP 503.
	VariantDown Variant = "down"
)

// Variants lists every variant for the CLI.
func Variants() []Variant {
	return []Variant{
		VariantNested, VariantCombined, VariantFlat, VariantEncoded,
		VariantStandard, VariantUnknown, VariantAppError, VariantDown,
	}
}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants() {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

// DailyPayload returns the daily range payload of a variant.
func DailyPayload(v Variant) string {
	switch v {
	case VariantCombined:
		return CombinedRanges
	case VariantFlat:
		return FlatRanges
	case VariantEncoded:
		return EncodedRanges
	case VariantStandard:
		return StandardRanges
	case VariantUnknown:
		return `"maintenance"`
	default:
		return NestedRanges
	}
}

// Envelope wraps a payload the way the backend does.
func Envelope(payload string) string {
	return fmt.Sprintf(`{"code":200,"data":%s,"message":"success"}`, payload)
}

// NewApp builds a fiber app that mimics the analytics backend.
func NewApp(v Variant) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())

	app.Use(func(c *fiber.Ctx) error {
		switch v {
		case VariantDown:
			return c.Status(http.StatusServiceUnavailable).SendString("service unavailable")
		case VariantAppError:
			return c.JSON(envelope{Code: http.StatusInternalServerError, Message: "analytics store unavailable"})
		}
		return c.Next()
	})

	app.Get("/reward_points_range_analytics_till_date", func(c *fiber.Ctx) error {
		return send(c, StandardRanges)
	})

	app.Get("/reward_points_range_analytics_daily", func(c *fiber.Ctx) error {
		switch c.Query("range") {
		case "D", "W", "M":
		default:
			return c.JSON(envelope{Code: http.StatusBadRequest, Message: "range must be one of D, W, M"})
		}
		return send(c, DailyPayload(v))
	})

	app.Get("/top_reward_points_earners", func(c *fiber.Ctx) error {
		return send(c, TopEarners)
	})

	app.Get("/test_vs_result_daily", func(c *fiber.Ctx) error {
		if c.Query("from") == "" && c.Query("to") == "" && c.Query("range") == "" {
			return send(c, FlatTraffic)
		}
		return send(c, NestedTraffic)
	})

	return app
}

// Start serves the app of a variant on a random local port and returns its
// base URL and a shutdown function.
func Start(v Variant) (string, func() error, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen: %w", err)
	}

	app := NewApp(v)
	go func() {
		_ = app.Listener(ln)
	}()

	return "http://" + ln.Addr().String(), app.Shutdown, nil
}

func send(c *fiber.Ctx, payload string) error {
	return c.JSON(envelope{
		Code:    http.StatusOK,
		Data:    json.RawMessage(payload),
		Message: "success",
	})
}
