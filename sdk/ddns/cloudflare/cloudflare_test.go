package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/ddns"
	sdkLogger "github.com/jxo-me/ddnsync/sdk/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL  = "http://cf/client/v4"
	zonesURL     = testBaseURL + "/zones"
	recordsURL   = testBaseURL + "/zones/zoneId123/dns_records"
	recordURL    = recordsURL + "/record1"
	testZoneID   = "zoneId123"
	testRecordID = "record1"
)

func newTestCloudflare(t *testing.T, zones *ZoneCache) (*Cloudflare, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c, err := New("token",
		WithEndpoint(testBaseURL),
		WithHTTPClient(&http.Client{Transport: mt}),
		WithZoneCache(zones),
		WithLogger(sdkLogger.Nop()),
	)
	require.NoError(t, err)
	return c, mt
}

func target(domain string) *config.DomainTarget {
	return &config.DomainTarget{
		Domain:     domain,
		Provider:   consts.ProviderCloudflare,
		Credential: "token",
		RecordType: consts.RecordTypeA,
	}
}

func envelope(result any) map[string]any {
	body := map[string]any{
		"success":  true,
		"errors":   []any{},
		"messages": []any{},
		"result":   result,
	}
	if list, ok := result.([]map[string]any); ok {
		body["result_info"] = map[string]any{
			"page":        1,
			"per_page":    100,
			"count":       len(list),
			"total_count": len(list),
			"total_pages": 1,
		}
	}
	return body
}

func errorEnvelope(code int, message string) map[string]any {
	return map[string]any{
		"success":  false,
		"errors":   []any{map[string]any{"code": code, "message": message}},
		"messages": []any{},
		"result":   nil,
	}
}

func zonesResponder() httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, envelope([]map[string]any{
		{"id": testZoneID, "name": "example.com", "status": "active"},
	}))
}

func recordsResponder(content ...string) httpmock.Responder {
	records := []map[string]any{}
	for _, c := range content {
		records = append(records, map[string]any{
			"id":        testRecordID,
			"type":      "A",
			"name":      "www.example.com",
			"content":   c,
			"proxied":   false,
			"ttl":       1,
			"zone_id":   testZoneID,
			"zone_name": "example.com",
		})
	}
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, envelope(records))
}

func TestUpsertUnchangedMakesNoWrite(t *testing.T) {
	c, mt := newTestCloudflare(t, NewZoneCache())
	mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
	mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder("5.6.7.8"))

	result, err := c.Upsert(context.Background(), target("www.example.com"), "5.6.7.8")
	require.NoError(t, err)

	assert.Equal(t, consts.UpdatedNothing, result.Status)
	assert.Equal(t, "5.6.7.8", result.OldIP)
	info := mt.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+zonesURL])
	assert.Equal(t, 1, info["GET "+recordsURL])
	assert.Zero(t, info["PATCH "+recordURL])
	assert.Zero(t, info["POST "+recordsURL])
}

func TestUpsertPatchesChangedRecord(t *testing.T) {
	c, mt := newTestCloudflare(t, NewZoneCache())
	mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
	mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder("5.6.7.8"))

	var patched map[string]any
	mt.RegisterResponder(http.MethodPatch, recordURL, func(req *http.Request) (*http.Response, error) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&patched))
		return httpmock.NewJsonResponse(http.StatusOK, envelope(map[string]any{
			"id": testRecordID, "type": "A", "name": "www.example.com", "content": "1.2.3.4",
		}))
	})

	result, err := c.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, consts.UpdatedSuccess, result.Status)
	assert.Equal(t, "5.6.7.8", result.OldIP)
	assert.Equal(t, "1.2.3.4", result.Record.Value)
	assert.Equal(t, "1.2.3.4", patched["content"])
	assert.Equal(t, 1, mt.GetCallCountInfo()["PATCH "+recordURL])
}

func TestUpsertCreatesMissingRecord(t *testing.T) {
	c, mt := newTestCloudflare(t, NewZoneCache())
	mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
	mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder())

	var created map[string]any
	mt.RegisterResponder(http.MethodPost, recordsURL, func(req *http.Request) (*http.Response, error) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&created))
		return httpmock.NewJsonResponse(http.StatusOK, envelope(map[string]any{
			"id": "new1", "type": "A", "name": "www.example.com", "content": "1.2.3.4", "ttl": 1,
		}))
	})

	result, err := c.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, consts.UpdatedCreated, result.Status)
	assert.Empty(t, result.OldIP)
	assert.Equal(t, "new1", result.Record.ID)

	assert.Equal(t, "A", created["type"])
	assert.Equal(t, "www.example.com", created["name"])
	assert.Equal(t, "1.2.3.4", created["content"])
	assert.EqualValues(t, 1, created["ttl"])
	assert.Equal(t, false, created["proxied"])
}

func TestFetchCurrent(t *testing.T) {
	c, mt := newTestCloudflare(t, NewZoneCache())
	mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
	mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder("5.6.7.8"))

	record, err := c.FetchCurrent(context.Background(), target("www.example.com"))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "5.6.7.8", record.Value)
	assert.Equal(t, testRecordID, record.ID)

	mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder())
	record, err = c.FetchCurrent(context.Background(), target("www.example.com"))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestZoneLookupIsCachedAcrossProviders(t *testing.T) {
	zones := NewZoneCache()
	first, mt1 := newTestCloudflare(t, zones)
	second, mt2 := newTestCloudflare(t, zones)
	for _, mt := range []*httpmock.MockTransport{mt1, mt2} {
		mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
		mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder("5.6.7.8"))
	}

	_, err := first.FetchCurrent(context.Background(), target("www.example.com"))
	require.NoError(t, err)
	_, err = second.FetchCurrent(context.Background(), target("api.example.com"))
	require.NoError(t, err)
	_, err = first.FetchCurrent(context.Background(), target("www.example.com"))
	require.NoError(t, err)

	assert.Equal(t, 1, mt1.GetCallCountInfo()["GET "+zonesURL])
	assert.Zero(t, mt2.GetCallCountInfo()["GET "+zonesURL])
	id, ok := zones.Get("example.com")
	assert.True(t, ok)
	assert.Equal(t, testZoneID, id)
}

func TestZoneNotFound(t *testing.T) {
	zones := NewZoneCache()
	c, mt := newTestCloudflare(t, zones)
	mt.RegisterResponder(http.MethodGet, zonesURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, envelope([]map[string]any{})))

	_, err := c.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
	require.Error(t, err)
	assert.True(t, ddns.IsNotFound(err))
	assert.Equal(t, 0, zones.Len())
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ddns.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, ddns.KindAuth},
		{"forbidden", http.StatusForbidden, ddns.KindAuth},
		{"rate limited", http.StatusTooManyRequests, ddns.KindRateLimited},
		{"server error", http.StatusInternalServerError, ddns.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mt := newTestCloudflare(t, NewZoneCache())
			mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
			mt.RegisterResponder(http.MethodGet, recordsURL,
				httpmock.NewJsonResponderOrPanic(tt.status, errorEnvelope(10000, "request failed")))

			_, err := c.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
			require.Error(t, err)
			assert.Equal(t, tt.kind, ddns.KindOf(err))
			// retries are left to the sync loop
			assert.Equal(t, 1, mt.GetCallCountInfo()["GET "+recordsURL])
		})
	}
}

func TestErrorStatusWithoutJSONBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ddns.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, ddns.KindAuth},
		{"forbidden", http.StatusForbidden, ddns.KindAuth},
		{"rate limited", http.StatusTooManyRequests, ddns.KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := NewZoneCache()
			c, mt := newTestCloudflare(t, zones)
			mt.RegisterResponder(http.MethodGet, zonesURL,
				httpmock.NewStringResponder(tt.status, "<html>Unauthorized</html>"))

			_, err := c.FetchCurrent(context.Background(), target("www.example.com"))
			require.Error(t, err)
			assert.Equal(t, tt.kind, ddns.KindOf(err))
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "<html>Unauthorized</html>", statusErr.Body)
			assert.Equal(t, 0, zones.Len())
		})
	}
}

func TestPatchMissingRecordIsNotFound(t *testing.T) {
	c, mt := newTestCloudflare(t, NewZoneCache())
	mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
	mt.RegisterResponder(http.MethodGet, recordsURL, recordsResponder("5.6.7.8"))
	mt.RegisterResponder(http.MethodPatch, recordURL,
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, errorEnvelope(81044, "Record does not exist.")))

	_, err := c.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
	require.Error(t, err)
	assert.Equal(t, ddns.KindNotFound, ddns.KindOf(err))
	assert.Equal(t, 1, mt.GetCallCountInfo()["PATCH "+recordURL])
}

func TestMalformedResponse(t *testing.T) {
	c, mt := newTestCloudflare(t, NewZoneCache())
	mt.RegisterResponder(http.MethodGet, zonesURL, zonesResponder())
	mt.RegisterResponder(http.MethodGet, recordsURL, httpmock.NewStringResponder(http.StatusOK, `{"result": [`))

	_, err := c.FetchCurrent(context.Background(), target("www.example.com"))
	require.Error(t, err)
	assert.Equal(t, ddns.KindMalformedResponse, ddns.KindOf(err))
}
