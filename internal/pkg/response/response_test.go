package response

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/service"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	Error(c, err)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorClassifiesKnownErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind service.ErrorKind
	}{
		{service.ErrNotParticipant, 403, service.KindPermission},
		{fmt.Errorf("load: %w", service.ErrConversationNotFound), 404, service.KindNotFound},
		{service.ErrAmountInvalid, 400, service.KindValidation},
		{service.ErrOfferNotPending, 409, service.KindValidation},
		{service.ErrNegotiationBusy, 503, service.KindTransient},
	}
	for _, tc := range cases {
		resp := render(t, tc.err)
		assert.Equal(t, tc.code, resp.Code, tc.err.Error())
		assert.Equal(t, string(tc.kind), resp.Kind, tc.err.Error())
	}
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	resp := render(t, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, InternalServerError, resp.Code)
	assert.Equal(t, string(service.KindTransient), resp.Kind)
	assert.Equal(t, service.UnExpectedError.Error(), resp.Message)
}

func TestErrorValidation(t *testing.T) {
	type req struct {
		Amount int64 `validate:"gt=0"`
	}
	err := validator.New().Struct(&req{Amount: -1})
	require.Error(t, err)
	resp := render(t, err)
	assert.Equal(t, BadRequest, resp.Code)
	assert.Equal(t, string(service.KindValidation), resp.Kind)
}
