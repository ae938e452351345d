package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	authMiddleware "towerhub-api/packages/auth/middleware"
	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/ranking"
	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError writes {"error": ...} with the status matching the error
// kind. Unexpected errors are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, ranking.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, authz.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	default:
		switch services.KindOf(err) {
		case services.KindNotFound:
			status, message = http.StatusNotFound, err.Error()
		case services.KindInvalid:
			status, message = http.StatusBadRequest, err.Error()
		case services.KindUnauthorized:
			status, message = http.StatusUnauthorized, err.Error()
		case services.KindForbidden:
			status, message = http.StatusForbidden, err.Error()
		case services.KindConflict:
			status, message = http.StatusConflict, err.Error()
		}
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"error": message})
}

// parseIDParam reads a numeric path parameter and answers 400 when it is
// not one.
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID"})
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := authMiddleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// queryInt returns 0 when the parameter is absent.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ranking.ErrInvalidArgument, name)
	}
	return v, nil
}

// pageParams reads page/pageSize the way list endpoints expect them,
// falling back on defaults for bad values.
func pageParams(c *gin.Context, defaultSize int) (int, int) {
	page, pageSize := 1, defaultSize
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.Query("pageSize")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: invalid user id %q", ranking.ErrInvalidArgument, part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
