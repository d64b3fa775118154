package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/service"
	"github.com/sdhealth/pathway-tracker/common/clients"
	"github.com/sdhealth/pathway-tracker/common/db"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation errors never reach here: they travel as data on the result.
func writeServiceError(c echo.Context, log *logger.Logger, err error) error {
	var (
		notFound   *service.NotFoundError
		permission *service.PathwayPermissionError
		lock       *service.LockNotOwnedError
		mismatch   *service.MdtPathwayMismatchError
		badType    *service.ClinicalRequestTypeNotOnPathwayError
		comm       *clients.CommunicationError
	)

	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFound.Error()})

	case errors.As(err, &permission):
		return c.JSON(http.StatusForbidden, map[string]string{"error": permission.Error()})

	case errors.As(err, &lock):
		return c.JSON(http.StatusConflict, map[string]string{"error": lock.Error()})

	case errors.As(err, &mismatch):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": mismatch.Error()})

	case errors.As(err, &badType):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": badType.Error()})

	case db.IsSerializationFailure(err):
		// concurrent submissions collided; the losing one may retry
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "submission conflicted with a concurrent update, please retry",
		})

	case errors.As(err, &comm):
		log.ErrorContext(c.Request().Context(), "trust adapter unavailable", "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "hospital record system unavailable, please retry",
		})

	default:
		log.ErrorContext(c.Request().Context(), "request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}
