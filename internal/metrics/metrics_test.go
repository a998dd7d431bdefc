package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLLMRequest(t *testing.T) {
	before := testutil.ToFloat64(LLMRequests.WithLabelValues("mock", "test-purpose", "error"))
	inBefore := testutil.ToFloat64(LLMTokens.WithLabelValues("mock", "input"))

	RecordLLMRequest("mock", "test-purpose", false, 120*time.Millisecond, 40, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(LLMRequests.WithLabelValues("mock", "test-purpose", "error")))
	assert.Equal(t, inBefore+40, testutil.ToFloat64(LLMTokens.WithLabelValues("mock", "input")))
}

func TestRecordRetrieval(t *testing.T) {
	okBefore := testutil.ToFloat64(RetrievalSearches.WithLabelValues("test", "ok"))
	errBefore := testutil.ToFloat64(RetrievalSearches.WithLabelValues("test", "error"))

	RecordRetrieval("test", nil, time.Millisecond)
	RecordRetrieval("test", errors.New("boom"), time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RetrievalSearches.WithLabelValues("test", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(RetrievalSearches.WithLabelValues("test", "error")))
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	RecordAPIRequest("GET", "/healthz", 200, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/healthz", "200")))
}
