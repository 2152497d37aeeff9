// Package api exposes the review queue over JSON HTTP. Every route
// requires an authenticated user; handlers read the user from the
// request context and never from the payload.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/mistakebook/review_server/internal/auth"
	"github.com/mistakebook/review_server/internal/reviewqueue"
)

type Service struct {
	queue    *reviewqueue.Service
	validate *validator.Validate
}

func NewService(queue *reviewqueue.Service) *Service {
	return &Service{
		queue:    queue,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts all review routes on g. The caller decides which
// middleware wraps the group.
func (s *Service) RegisterRoutes(g *echo.Group) {
	g.POST("/reviews", s.EnqueueReview)
	g.POST("/reviews/batch", s.EnqueueBatch)
	g.GET("/reviews/queue", s.GetQueue)
	g.POST("/reviews/session", s.StartSession)
	g.POST("/reviews/:id/result", s.SubmitResult)
	g.POST("/reviews/:id/skip", s.SkipReview)
	g.DELETE("/reviews/:id", s.RemoveReview)
	g.GET("/reviews/statistics", s.GetStatistics)
	g.GET("/reviews/schedule", s.GetSchedule)
	g.GET("/reviews/schedule/optimization", s.OptimizeSchedule)
	g.GET("/reviews/history", s.GetHistory)
}

func userID(c echo.Context) (int64, error) {
	u := auth.UserFromContext(c.Request().Context())
	if u == nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "no authenticated user")
	}
	return u.UserID, nil
}

// httpError translates service errors into HTTP status codes. Anything
// unrecognized is a 500 and gets logged; the sentinel errors carry
// user-facing messages.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reviewqueue.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, reviewqueue.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, reviewqueue.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	log.Ctx(c.Request().Context()).Err(err).Msg("unhandled-service-error")
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func (s *Service) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func intQueryParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
