package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/labstack/echo/v4"
)

// HeaderClientVersion carries the calling app's version.
const HeaderClientVersion = "X-Client-Version"

// ClientVersion rejects requests whose X-Client-Version header is missing,
// not a plain MAJOR.MINOR.PATCH version, or lower than minVersion.
func ClientVersion(minVersion string) (echo.MiddlewareFunc, error) {
	constraint, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return nil, fmt.Errorf("min client version %q: %w", minVersion, err)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, ok := parseClientVersion(c.Request().Header.Get(HeaderClientVersion))
			if !ok || !constraint.Check(v) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported client version."})
			}
			return next(c)
		}
	}, nil
}

// parseClientVersion accepts exactly three dot-separated runs of ASCII
// digits.  Leading zeros are allowed ("02.1.0" is 2.1.0); prefixes,
// pre-release and build metadata are not.
func parseClientVersion(s string) (*semver.Version, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, false
	}
	var nums [3]uint64
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return nil, false
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return semver.New(nums[0], nums[1], nums[2], "", ""), true
}
