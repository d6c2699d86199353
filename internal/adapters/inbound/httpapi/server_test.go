package httpapi_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/tagaudit/tagaudit/internal/adapters/inbound/httpapi"
	"github.com/tagaudit/tagaudit/internal/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httpapi.New(domain.DefaultConfig(), zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestVendors(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/vendors")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.True(t, gjson.Get(body, `#(key=="meta")`).Exists(), "meta vendor listed")
	assert.True(t, gjson.Get(body, `#(key=="ga4")`).Exists(), "ga4 vendor listed")
}

func TestAnalyze_CaptureFixture(t *testing.T) {
	ts := newTestServer(t)

	fixture, err := os.ReadFile("../../outbound/capture/testdata/ecommerce.json")
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(string(fixture)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.True(t, gjson.Get(body, "overall_score").Exists())
	assert.True(t, gjson.Get(body, "solutions.meta").Exists())
	assert.True(t, gjson.Get(body, "solutions.ga4").Exists())
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "invalid JSON")
}

func TestAnalyze_NoRequestsArray(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(`{"data":{}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
