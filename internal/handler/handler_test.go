package handler

import (
	"bytes"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventease/internal/errors"
	"eventease/internal/logging"
)

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2030-05-01T18:00:00Z", time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC), false},
		{"2030-05-01T20:00:00+02:00", time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC), false},
		{"2030-05-01T18:00", time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC), false},
		{"2030-05-01", time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, false},
		{"next tuesday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseEventDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), got)
		})
	}
}

func TestFail(t *testing.T) {
	prev := logging.Logger()
	defer logging.SetLogger(prev)
	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/events", nil), httptest.NewRecorder())

	err := fail(c, errors.ErrEventFull)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, errors.ErrorResponse{Error: errors.ErrEventFull.Error(), Code: "EVENT_FULL"}, he.Message)
	assert.Empty(t, buf.String())

	err = fail(c, goerrors.New("dial tcp: connection refused"))
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, "internal server error", he.Message.(errors.ErrorResponse).Error)
	assert.Contains(t, buf.String(), "connection refused")
}
