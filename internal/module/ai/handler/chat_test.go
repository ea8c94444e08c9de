package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkgate/server/internal/module/ai/dispatch"
	"github.com/arkgate/server/internal/module/ai/media"
	"github.com/arkgate/server/internal/module/ai/provider"
	apperrors "github.com/arkgate/server/internal/utils/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVendor struct {
	text  string
	url   string
	err   error
	calls int
}

func (s *stubVendor) Complete(context.Context, string, []provider.Message) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubVendor) GenerateImage(context.Context, string, string, provider.ImageOptions) (string, error) {
	s.calls++
	return s.url, s.err
}

type stubVideo struct {
	res   *media.Result
	err   error
	calls int
}

func (s *stubVideo) Generate(context.Context, string) (*media.Result, error) {
	s.calls++
	return s.res, s.err
}

func newRouter(vendor *stubVendor, video *stubVideo) *gin.Engine {
	d := dispatch.NewDispatcher(vendor, video, dispatch.Models{Chat: "c", Image: "i"}, nil, nil)
	r := gin.New()
	NewHandlers(NewChatHandler(d, nil)).RegisterRoutes(r)
	return r
}

func postChat(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newRouter(&stubVendor{}, &stubVideo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		vendor     *stubVendor
		video      *stubVideo
		wantStatus int
		wantBody   string
	}{
		{
			name:       "chat reply",
			body:       `{"user_message":"Hello","model":"chat"}`,
			vendor:     &stubVendor{text: "Hi!"},
			wantStatus: http.StatusOK,
			wantBody:   `{"bot_response":"Hi!"}`,
		},
		{
			name:       "model defaults to chat",
			body:       `{"user_message":"Hello"}`,
			vendor:     &stubVendor{text: "Hi!"},
			wantStatus: http.StatusOK,
			wantBody:   `{"bot_response":"Hi!"}`,
		},
		{
			name:       "image reply",
			body:       `{"user_message":"A cat","model":"image"}`,
			vendor:     &stubVendor{url: "http://x/cat.png"},
			wantStatus: http.StatusOK,
			wantBody:   `{"media_url":"http://x/cat.png"}`,
		},
		{
			name:       "video reply",
			body:       `{"user_message":"A cat","model":"video"}`,
			video:      &stubVideo{res: &media.Result{VideoURL: "http://x/cat.mp4"}},
			wantStatus: http.StatusOK,
			wantBody:   `{"media_url":"http://x/cat.mp4"}`,
		},
		{
			name:       "video ambiguous success",
			body:       `{"user_message":"A cat","model":"video"}`,
			video:      &stubVideo{res: &media.Result{Raw: map[string]any{"status": "succeeded"}}},
			wantStatus: http.StatusOK,
			wantBody:   `{"detail":"Video generation succeeded but no media URL found","raw_response":{"status":"succeeded"}}`,
		},
		{
			name:       "invalid model",
			body:       `{"user_message":"Hello","model":"audio"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"detail":"Invalid model specified"}`,
		},
		{
			name:       "upstream failure",
			body:       `{"user_message":"Hello","model":"chat"}`,
			vendor:     &stubVendor{err: errors.New("upstream exploded")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"upstream exploded"}`,
		},
		{
			name:       "video failed",
			body:       `{"user_message":"A cat","model":"video"}`,
			video:      &stubVideo{err: apperrors.Upstream(media.ErrMsgFailed, nil)},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"Video generation failed"}`,
		},
		{
			name:       "video timeout",
			body:       `{"user_message":"A cat","model":"video"}`,
			video:      &stubVideo{err: apperrors.Timeout(media.ErrMsgTimedOut)},
			wantStatus: http.StatusGatewayTimeout,
			wantBody:   `{"detail":"Video generation timed out"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := tt.vendor
			if vendor == nil {
				vendor = &stubVendor{}
			}
			video := tt.video
			if video == nil {
				video = &stubVideo{}
			}

			w := postChat(newRouter(vendor, video), tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestChat_InvalidModelMakesNoUpstreamCalls(t *testing.T) {
	for _, body := range []string{
		`{"user_message":"Hello","model":"sound"}`,
		`{"user_message":"Hello","model":""}`,
		`{"user_message":"Hello","model":null}`,
		`{"user_message":"Hello","model":"CHAT"}`,
	} {
		t.Run(body, func(t *testing.T) {
			vendor := &stubVendor{text: "Hi"}
			video := &stubVideo{}

			w := postChat(newRouter(vendor, video), body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"detail":"Invalid model specified"}`, w.Body.String())
			assert.Equal(t, 0, vendor.calls)
			assert.Equal(t, 0, video.calls)
		})
	}
}

func TestChat_MalformedBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"invalid json", `{not json`, ErrMsgMalformedBody},
		{"empty body", ``, ErrMsgMalformedBody},
		{"model not a string", `{"user_message":"Hello","model":7}`, ErrMsgMalformedBody},
		{"missing message", `{"model":"chat"}`, ErrMsgMissingMessage},
		{"empty message", `{"user_message":"","model":"chat"}`, ErrMsgMissingMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := &stubVendor{}
			w := postChat(newRouter(vendor, &stubVideo{}), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"detail":"`+tt.detail+`"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "ChatRequest")
			assert.Equal(t, 0, vendor.calls)
		})
	}
}

func TestChat_ClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	video := &stubVideo{err: context.Canceled}
	r := newRouter(&stubVendor{}, video)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"user_message":"A cat","model":"video"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 1, video.calls)
	assert.Empty(t, w.Body.String())
}
