package handler

import (
	"Motorway/internal/api/dto"
	"Motorway/internal/pkg/logger"
	"Motorway/internal/service"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	caller uint64
	ref    string
	status string
	amount int64
}

type fakeNegotiationService struct {
	calls []call
	err   error
}

func (f *fakeNegotiationService) CreateOffer(_ context.Context, callerID uint64, req *dto.CreateOfferReq) (*dto.OfferDTO, error) {
	f.calls = append(f.calls, call{caller: callerID, ref: req.ConversationID, amount: req.Amount})
	if f.err != nil {
		return nil, f.err
	}
	return &dto.OfferDTO{Amount: req.Amount, Status: "PENDING", IsMine: true}, nil
}

func (f *fakeNegotiationService) CounterOffer(_ context.Context, callerID uint64, offerRef string, amount int64) (*dto.OfferDTO, error) {
	f.calls = append(f.calls, call{caller: callerID, ref: offerRef, amount: amount})
	if f.err != nil {
		return nil, f.err
	}
	return &dto.OfferDTO{Amount: amount, Status: "PENDING"}, nil
}

func (f *fakeNegotiationService) RespondToOffer(_ context.Context, callerID uint64, offerRef string, status string) (*dto.OfferDTO, error) {
	f.calls = append(f.calls, call{caller: callerID, ref: offerRef, status: status})
	if f.err != nil {
		return nil, f.err
	}
	return &dto.OfferDTO{Status: status}, nil
}

func (f *fakeNegotiationService) SendMessage(_ context.Context, callerID uint64, convRef string, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	f.calls = append(f.calls, call{caller: callerID, ref: convRef})
	if f.err != nil {
		return nil, f.err
	}
	return &dto.MessageDTO{Content: req.Content, IsMine: true}, nil
}

func newOfferRouter(svc service.NegotiationService, uid uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(logger.UserIDKey, uid)
		c.Next()
	})
	h := NewOfferHandler(svc)
	r.POST("/offers", h.CreateOffer)
	r.POST("/offers/:id/counter", h.CounterOffer)
	r.POST("/offers/:id/accept", h.AcceptOffer)
	r.POST("/offers/:id/decline", h.DeclineOffer)
	r.POST("/offers/:id/respond", h.RespondOffer)
	return r
}

func do(t *testing.T, r *gin.Engine, path string, body interface{}) dto.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOfferRoutesPassCallerAndRef(t *testing.T) {
	svc := &fakeNegotiationService{}
	r := newOfferRouter(svc, 7)

	resp := do(t, r, "/offers", map[string]interface{}{"conversationId": "c-1", "amount": 9500, "recipientId": 2, "vehicleId": 10})
	assert.Equal(t, 200, resp.Code)

	do(t, r, "/offers/o-1/counter", map[string]interface{}{"amount": 9800})
	do(t, r, "/offers/o-1/accept", nil)
	do(t, r, "/offers/o-2/decline", nil)
	do(t, r, "/offers/o-3/respond", map[string]interface{}{"status": "REJECTED"})

	require.Len(t, svc.calls, 5)
	assert.Equal(t, call{caller: 7, ref: "c-1", amount: 9500}, svc.calls[0])
	assert.Equal(t, call{caller: 7, ref: "o-1", amount: 9800}, svc.calls[1])
	assert.Equal(t, "ACCEPTED", svc.calls[2].status)
	assert.Equal(t, "REJECTED", svc.calls[3].status)
	assert.Equal(t, call{caller: 7, ref: "o-3", status: "REJECTED"}, svc.calls[4])
}

func TestOfferRoutesReportErrorKind(t *testing.T) {
	r := newOfferRouter(&fakeNegotiationService{err: service.ErrNotRecipient}, 7)
	resp := do(t, r, "/offers/o-1/accept", nil)
	assert.Equal(t, 403, resp.Code)
	assert.Equal(t, string(service.KindPermission), resp.Kind)

	r = newOfferRouter(&fakeNegotiationService{err: service.ErrNegotiationBusy}, 7)
	resp = do(t, r, "/offers/o-1/decline", nil)
	assert.Equal(t, 503, resp.Code)
	assert.Equal(t, string(service.KindTransient), resp.Kind)
}

func TestCreateOfferRejectsMalformedBody(t *testing.T) {
	svc := &fakeNegotiationService{}
	r := newOfferRouter(svc, 7)
	req := httptest.NewRequest(http.MethodPost, "/offers", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 400, resp.Code)
	assert.Empty(t, svc.calls)
}
