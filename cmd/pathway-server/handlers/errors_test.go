package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/service"
	"github.com/sdhealth/pathway-tracker/common/clients"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", &service.NotFoundError{Entity: "on_pathway", ID: 1}, http.StatusNotFound},
		{"no permission", &service.PathwayPermissionError{UserID: 7, PathwayID: 1}, http.StatusForbidden},
		{"lock not owned", &service.LockNotOwnedError{OnPathwayID: 1, UserID: 7}, http.StatusConflict},
		{"mdt mismatch", &service.MdtPathwayMismatchError{MdtID: 5}, http.StatusUnprocessableEntity},
		{"type off pathway", &service.ClinicalRequestTypeNotOnPathwayError{TypeID: 13}, http.StatusUnprocessableEntity},
		{"trust down", &clients.CommunicationError{Op: "test connection"}, http.StatusBadGateway},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	log := logger.New("error", "json")
	e := echo.New()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			require.NoError(t, writeServiceError(c, log, tc.err))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestWriteServiceError_WrappedErrorsUnwrap(t *testing.T) {
	log := logger.New("error", "json")
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	wrapped := errorsJoin(&service.NotFoundError{Entity: "mdt", ID: 5})
	require.NoError(t, writeServiceError(c, log, wrapped))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func errorsJoin(err error) error {
	return &wrapError{err: err}
}

type wrapError struct {
	err error
}

func (w *wrapError) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapError) Unwrap() error { return w.err }
