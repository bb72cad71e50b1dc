package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/flokiorg/appinion/api"
	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/metrics"
	"github.com/flokiorg/appinion/service"
)

type HttpService struct {
	api            api.API
	eventPublisher events.EventPublisher
}

func NewHttpService(svc service.Service, eventPublisher events.EventPublisher) *HttpService {
	return &HttpService{
		api:            api.NewAPI(svc),
		eventPublisher: eventPublisher,
	}
}

func (httpSvc *HttpService) RegisterSharedRoutes(e *echo.Echo) {
	e.HideBanner = true

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogHost:      true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			logger.HttpLogger.Info().
				Str("uri", values.URI).
				Int("status", values.Status).
				Str("remote_ip", values.RemoteIP).
				Str("user_agent", values.UserAgent).
				Str("host", values.Host).
				Str("request_id", values.RequestID).
				Msg("handled API request")
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	apiGroup := e.Group("/api")
	apiGroup.GET("/info", httpSvc.infoHandler)
	apiGroup.PATCH("/settings", httpSvc.updateSettingsHandler)
	apiGroup.GET("/log", httpSvc.getLogOutputHandler)
	apiGroup.GET("/events", httpSvc.eventsHandler)

	apiGroup.GET("/state", httpSvc.stateHandler)
	apiGroup.PUT("/search", httpSvc.setSearchQueryHandler)
	apiGroup.DELETE("/search", httpSvc.clearSearchHandler)
	apiGroup.POST("/search/results/:id/select", httpSvc.selectSearchResultHandler)
	apiGroup.DELETE("/error", httpSvc.dismissErrorHandler)

	apiGroup.GET("/apps/recent", httpSvc.listRecentAppsHandler)
	apiGroup.GET("/apps/:id", httpSvc.getAppHandler)
	apiGroup.POST("/apps/:id/select", httpSvc.selectRecentAppHandler)
	apiGroup.POST("/apps/:id/summary", httpSvc.generateSummaryHandler)
	apiGroup.GET("/apps/:id/reviews", httpSvc.listReviewsHandler)
	apiGroup.DELETE("/apps/:id", httpSvc.deleteAppHandler)
	apiGroup.DELETE("/apps", httpSvc.clearAppsHandler)

	apiGroup.GET("/catalog/:id", httpSvc.lookupCatalogAppHandler)
	apiGroup.POST("/catalog/:id/select", httpSvc.selectCatalogAppHandler)
}

func (httpSvc *HttpService) infoHandler(c echo.Context) error {
	responseBody, err := httpSvc.api.GetInfo(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, responseBody)
}

func (httpSvc *HttpService) updateSettingsHandler(c echo.Context) error {
	var updateSettingsRequest api.UpdateSettingsRequest
	if err := c.Bind(&updateSettingsRequest); err != nil {
		return badRequest(c, err)
	}

	err := httpSvc.api.UpdateSettings(&updateSettingsRequest)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) getLogOutputHandler(c echo.Context) error {
	var getLogRequest api.GetLogOutputRequest
	if err := c.Bind(&getLogRequest); err != nil {
		return badRequest(c, err)
	}

	getLogResponse, err := httpSvc.api.GetLogOutput(c.Request().Context(), &getLogRequest)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: fmt.Sprintf("Failed to get log output: %v", err),
		})
	}

	return c.JSON(http.StatusOK, getLogResponse)
}

func (httpSvc *HttpService) stateHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, httpSvc.api.GetState())
}

func (httpSvc *HttpService) setSearchQueryHandler(c echo.Context) error {
	var setSearchQueryRequest api.SetSearchQueryRequest
	if err := c.Bind(&setSearchQueryRequest); err != nil {
		return badRequest(c, err)
	}

	return c.JSON(http.StatusOK, httpSvc.api.SetSearchQuery(&setSearchQueryRequest))
}

func (httpSvc *HttpService) clearSearchHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, httpSvc.api.ClearSearch())
}

func (httpSvc *HttpService) dismissErrorHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, httpSvc.api.DismissError())
}

func (httpSvc *HttpService) selectSearchResultHandler(c echo.Context) error {
	app, err := httpSvc.api.SelectSearchResult(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (httpSvc *HttpService) listRecentAppsHandler(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, err)
	}

	apps, err := httpSvc.api.ListRecentApps(limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, apps)
}

func (httpSvc *HttpService) getAppHandler(c echo.Context) error {
	app, err := httpSvc.api.GetApp(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (httpSvc *HttpService) selectRecentAppHandler(c echo.Context) error {
	app, err := httpSvc.api.SelectRecentApp(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (httpSvc *HttpService) generateSummaryHandler(c echo.Context) error {
	app, err := httpSvc.api.GenerateSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (httpSvc *HttpService) listReviewsHandler(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, err)
	}

	response, err := httpSvc.api.ListReviews(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

func (httpSvc *HttpService) deleteAppHandler(c echo.Context) error {
	err := httpSvc.api.DeleteApp(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) clearAppsHandler(c echo.Context) error {
	err := httpSvc.api.ClearAllApps()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) lookupCatalogAppHandler(c echo.Context) error {
	app, err := httpSvc.api.LookupCatalogApp(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func (httpSvc *HttpService) selectCatalogAppHandler(c echo.Context) error {
	app, err := httpSvc.api.SelectCatalogApp(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: fmt.Sprintf("Bad request: %s", err.Error()),
	})
}

// errorResponse maps typed app errors to their status code; anything else
// is a 500.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatusCode()
	}
	return c.JSON(status, ErrorResponse{
		Message: err.Error(),
	})
}

func queryInt(c echo.Context, name string) (int, error) {
	value := c.QueryParam(name)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return parsed, nil
}
