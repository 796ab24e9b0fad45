package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/almacen/internal/model"
)

func TestStockMutated(t *testing.T) {
	m := New()
	m.StockMutated(model.TxnIssue, -3)
	m.StockMutated(model.TxnIssue, -2)
	m.StockMutated(model.TxnPurchase, 10)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ledgerEntries.WithLabelValues("ISSUE")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ledgerUnits.WithLabelValues("ISSUE")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ledgerUnits.WithLabelValues("PURCHASE")))
}

func TestEmailSent(t *testing.T) {
	m := New()
	m.EmailSent(nil)
	m.EmailSent(errors.New("smtp down"))
	m.EmailSent(errors.New("smtp down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("sent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.emails.WithLabelValues("failed")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `almacen_http_requests_total{code="200",method="GET"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
