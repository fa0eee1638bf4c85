package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"libranet/internal/money"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(lendingOperations.WithLabelValues("borrow", "ok"))
	ObserveOperation("borrow", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(lendingOperations.WithLabelValues("borrow", "ok")))
}

func TestObserveFine(t *testing.T) {
	count := testutil.ToFloat64(finesCharged)
	sum := testutil.ToFloat64(fineAmountMinor)

	ObserveFine(money.New(3000))

	assert.Equal(t, count+1, testutil.ToFloat64(finesCharged))
	assert.Equal(t, sum+3000, testutil.ToFloat64(fineAmountMinor))
}

func TestGinMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
