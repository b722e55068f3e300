package http

import (
	"log/slog"
	"net/http"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
	"github.com/peeyushtyagi09/newShopingAI/pkg/logger"
)

func catalogNotReady() error {
	return apperrors.Unavailable("CATALOG_UNAVAILABLE", "the product catalog is not available yet")
}

func storageUnavailable() error {
	return apperrors.Unavailable("STORAGE_UNAVAILABLE", "the visitor session could not be loaded, please retry")
}

func unknownPanel() error {
	return apperrors.InvalidInput("panel must be cart or wishlist and action open or close")
}

func unknownAction(action string) error {
	return apperrors.InvalidInput("unknown action: " + action)
}

// logFromRequest returns the request-scoped logger, or fallback when none
// was installed.
func logFromRequest(r *http.Request, fallback *slog.Logger) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		return fallback
	}
	return l
}
