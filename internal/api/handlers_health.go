// handlers_health.go - Health check and time helpers
package api

import (
	"strconv"
	"time"

	"github.com/ctutil/backend/internal/netx"
	"github.com/ctutil/backend/internal/response"
	"github.com/ctutil/backend/internal/timex"
	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"client_ip": netx.ClientIP(c.Request()),
	})
}

// HandleTime converts a JavaScript millisecond timestamp (?ts=) in the
// requested zone (?tz=) and reports the surrounding day.
func (h *HealthHandlerImpl) HandleTime(c echo.Context) error {
	ms := time.Now().UnixMilli()
	if raw := c.QueryParam("ts"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return NewBadRequestError("ts must be milliseconds since epoch", err)
		}
		ms = v
	}

	t, err := timex.FromJSTimestampIn(ms, c.QueryParam("tz"))
	if err != nil {
		return NewBadRequestError("unknown timezone", err)
	}
	start, end := timex.DayRange(t)

	return response.Success(c, map[string]string{
		"time":      t.Format(time.RFC3339Nano),
		"day_start": start.Format(time.RFC3339Nano),
		"day_end":   end.Format(time.RFC3339Nano),
	})
}

