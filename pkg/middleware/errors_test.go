package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
)

func TestErrorHandler_RendersServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(false))
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperror.NotFound())
	})

	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status_code":404,"title":"Item not found","message":"not_found"}`, w.Body.String())
}

func TestErrorHandler_WrapsUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		debugMode bool
		wantBody  string
	}{
		{
			name:      "detail withheld by default",
			debugMode: false,
			wantBody:  `{"status_code":500,"title":"Unknown error","message":"Internal server error"}`,
		},
		{
			name:      "detail exposed in debug mode",
			debugMode: true,
			wantBody:  `{"status_code":500,"title":"Unknown error","message":"Internal server error","debug":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(tt.debugMode))
			router.GET("/fail", func(c *gin.Context) {
				_ = c.Error(errors.New("boom"))
			})

			req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestErrorHandler_SetsExtraHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(false))
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperror.Unauthorized("Token is invalid").
			WithHeaders(map[string]string{"WWW-Authenticate": "Bearer"}))
	})

	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestErrorHandler_LeavesWrittenResponsesAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(false))
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req, _ := http.NewRequest(http.MethodGet, "/ok", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
