package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

var validate = validator.New()

// Options configures the request defaults of the API.
type Options struct {
	DefaultFuel fuel.Kind
	// Location is the wall clock used for time-of-day advice.
	Location *time.Location
	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o Options) now() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *fuel.Service, opts Options) {
	if opts.DefaultFuel == "" {
		opts.DefaultFuel = fuel.KindDiesel
	}

	v1 := app.Group("/api/v1")

	v1.Get("/fuels", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"fuels":   fuel.Kinds,
			"default": opts.DefaultFuel,
		})
	})

	v1.Get("/session", func(c *fiber.Ctx) error {
		session, err := service.Session()
		if err != nil {
			return toFiberError(err)
		}
		resp := fiber.Map{
			"id":        session.ID,
			"loadedAt":  session.LoadedAt,
			"snapshots": len(session.History.Snapshots),
			"stations":  len(session.History.Registry),
		}
		if latest, ok := session.History.Latest(); ok {
			resp["latest"] = latest.Timestamp
		}
		if err := service.LastLoadError(); err != nil {
			resp["lastRefreshError"] = err.Error()
		}
		return c.JSON(resp)
	})

	v1.Get("/prices", func(c *fiber.Ctx) error {
		kind, err := parseFuelQuery(c, opts.DefaultFuel)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		board, err := service.Prices(kind)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(board)
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		kind, err := parseFuelQuery(c, opts.DefaultFuel)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, err := service.Series(kind)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"fuel":   kind,
			"series": series,
		})
	})

	v1.Get("/recommendation", func(c *fiber.Ctx) error {
		kind, err := parseFuelQuery(c, opts.DefaultFuel)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.Recommendation(kind, opts.now())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(rec)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		kind, err := parseFuelQuery(c, opts.DefaultFuel)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		d, err := service.Dashboard(kind, opts.now())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(d)
	})
}

// ErrorHandler renders every error as a JSON body with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toFiberError maps service errors to HTTP errors.
func toFiberError(err error) error {
	switch {
	case errors.Is(err, fuel.ErrNotLoaded) && errors.Is(err, fuel.ErrEmptyOrMalformed):
		return fiber.NewError(fiber.StatusServiceUnavailable,
			"price data could not be loaded; the data file is empty or malformed")
	case errors.Is(err, fuel.ErrNotLoaded) && errors.Is(err, fuel.ErrUnreachable):
		return fiber.NewError(fiber.StatusServiceUnavailable,
			"price data could not be loaded; the data file may not exist yet")
	case errors.Is(err, fuel.ErrNotLoaded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "price data could not be loaded")
	case errors.Is(err, fuel.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, "no current price data available")
	case errors.Is(err, fuel.ErrNoDataForSelection):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build price view")
	}
}

// fuelQuery holds the fuel selection of a request.
type fuelQuery struct {
	Fuel string `validate:"required,oneof=diesel e5 e10"`
}

func parseFuelQuery(c *fiber.Ctx, def fuel.Kind) (fuel.Kind, error) {
	q := fuelQuery{Fuel: strings.ToLower(c.Query("fuel", string(def)))}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	return fuel.Kind(q.Fuel), nil
}
