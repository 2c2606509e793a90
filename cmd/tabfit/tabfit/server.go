package tabfit

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"

	"github.com/paulhankin/tabfit/fit"
	"github.com/paulhankin/tabfit/paths"
)

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Defaults holds the parameters used when a request leaves one out.
	Defaults *Config
}

// NewServer returns the HTTP service:
//
//	POST /adjust    multipart file, thickness, dpi, marks; returns the adjusted svg
//	POST /inspect   multipart file, marks; returns a Report as json
//	GET  /health/live
func NewServer(sc *ServerConfig, l *log.Logger) *fiber.App {
	l = discard(l)
	defaults := sc.Defaults
	if defaults == nil {
		defaults = DefaultConfig()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		AppName:      "tabfit",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Request-Id", uuid.NewString())
		return c.Next()
	})

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	h := &handlers{defaults: defaults, log: l}
	app.Post("/adjust", h.adjust)
	app.Post("/inspect", h.inspect)
	return app
}

type handlers struct {
	defaults *Config
	log      *log.Logger
}

// request reads the uploaded file and the form parameters of c.
func (h *handlers) request(c fiber.Ctx) ([]byte, *Config, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("file required in multipart/form-data")
	}
	f, err := file.Open()
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}

	cfg := *h.defaults
	cfg.Marks = append([]Mark(nil), h.defaults.Marks...)
	for _, p := range []struct {
		name string
		v    *float64
	}{
		{"thickness", &cfg.MaterialThicknessMM},
		{"dpi", &cfg.DPI},
		{"tolerance", &cfg.CurveTolerance},
	} {
		s := c.FormValue(p.name)
		if s == "" {
			continue
		}
		if *p.v, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, nil, errors.New("can't parse " + p.name + " " + strconv.Quote(s))
		}
	}
	if s := c.FormValue("highlight"); s != "" {
		cfg.Highlight = s == "1" || s == "true"
	}
	marks, err := ParseMarks(c.FormValue("marks"))
	if err != nil {
		return nil, nil, err
	}
	cfg.Marks = append(cfg.Marks, marks...)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return data, &cfg, nil
}

func status(err error) int {
	switch {
	case errors.Is(err, fit.ErrUnknownSegment),
		errors.Is(err, fit.ErrNotAdjustable),
		errors.Is(err, fit.ErrInvalidMultiplier),
		errors.Is(err, paths.ErrInvalidDPI),
		errors.Is(err, paths.ErrNegativeLength):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusBadRequest
}

func (h *handlers) adjust(c fiber.Ctx) error {
	data, cfg, err := h.request(c)
	if err != nil {
		return c.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	var out bytes.Buffer
	res, err := Adjust(bytes.NewReader(data), &out, cfg, h.log)
	if err != nil {
		h.log.Warn("adjust failed", "err", err)
		return c.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("X-Tabfit-Batch", res.ID.String())
	c.Set("X-Tabfit-Adjusted", strconv.Itoa(res.Adjusted))
	c.Set("X-Tabfit-Warnings", strconv.Itoa(len(res.Warnings)))
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(out.Bytes())
}

func (h *handlers) inspect(c fiber.Ctx) error {
	data, cfg, err := h.request(c)
	if err != nil {
		return c.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	rep, err := Inspect(bytes.NewReader(data), cfg, h.log)
	if err != nil {
		return c.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}
