package dnspod

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/consts"
	"github.com/jxo-me/ddnsync/core/ddns"
	sdkLogger "github.com/jxo-me/ddnsync/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "12345,abcdef"

func newTestDnspod(t *testing.T) (*Dnspod, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	dp, err := New(testToken,
		WithHTTPClient(&http.Client{Transport: mt}),
		WithLogger(sdkLogger.Nop()),
	)
	require.NoError(t, err)
	return dp, mt
}

func target(domain string) *config.DomainTarget {
	return &config.DomainTarget{
		Domain:     domain,
		Provider:   consts.ProviderDnspod,
		Credential: testToken,
		RecordType: consts.RecordTypeA,
	}
}

// formResponder records the submitted form and answers with body.
func formResponder(t *testing.T, form *url.Values, body any) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		require.NoError(t, req.ParseForm())
		*form = req.PostForm
		assert.Equal(t, consts.DefaultUserAgent, req.Header.Get(consts.HeaderUserAgent))
		return httpmock.NewJsonResponse(http.StatusOK, body)
	}
}

func okStatus() map[string]any {
	return map[string]any{"code": "1", "message": "Action completed successful"}
}

func TestNewRejectsMalformedToken(t *testing.T) {
	for _, token := range []string{"", "onlyid", ",secret", "id,"} {
		_, err := New(token)
		assert.Error(t, err, token)
	}
}

func TestUpsertCreatesMissingRecord(t *testing.T) {
	dp, mt := newTestDnspod(t)

	var listForm, createForm url.Values
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.List",
		formResponder(t, &listForm, map[string]any{
			"status":  map[string]any{"code": "10", "message": "No records"},
			"records": []any{},
		}))
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.Create",
		formResponder(t, &createForm, map[string]any{
			"status": okStatus(),
			"record": map[string]any{"id": "16894439", "name": "blog"},
		}))

	result, err := dp.Upsert(context.Background(), target("blog.example.com"), "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, consts.UpdatedCreated, result.Status)
	assert.Empty(t, result.OldIP)
	assert.Equal(t, "16894439", result.Record.ID)

	assert.Equal(t, "blog", listForm.Get("sub_domain"))
	assert.Equal(t, "example.com", listForm.Get("domain"))
	assert.Equal(t, testToken, listForm.Get("login_token"))
	assert.Equal(t, "json", listForm.Get("format"))

	assert.Equal(t, "blog", createForm.Get("sub_domain"))
	assert.Equal(t, "example.com", createForm.Get("domain"))
	assert.Equal(t, "1.2.3.4", createForm.Get("value"))
	assert.Equal(t, "A", createForm.Get("record_type"))
	assert.Equal(t, defaultRecordLine, createForm.Get("record_line"))
	assert.Equal(t, 2, mt.GetTotalCallCount())
}

func TestUpsertModifiesChangedRecord(t *testing.T) {
	dp, mt := newTestDnspod(t)

	var listForm, modifyForm url.Values
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.List",
		formResponder(t, &listForm, map[string]any{
			"status": okStatus(),
			"records": []any{
				// ids come back as numbers from some endpoints
				map[string]any{"id": 42, "name": "@", "type": "A", "value": "9.9.9.9", "line_id": "10=1"},
			},
		}))
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.Modify",
		formResponder(t, &modifyForm, map[string]any{
			"status": okStatus(),
			"record": map[string]any{"id": 42, "name": "@"},
		}))

	result, err := dp.Upsert(context.Background(), target("@.example.com"), "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, consts.UpdatedSuccess, result.Status)
	assert.Equal(t, "9.9.9.9", result.OldIP)
	assert.Equal(t, "@", listForm.Get("sub_domain"))
	assert.Equal(t, "42", modifyForm.Get("record_id"))
	assert.Equal(t, "10=1", modifyForm.Get("record_line_id"))
	assert.Equal(t, "1.2.3.4", modifyForm.Get("value"))
}

func TestUpsertIsNoopWhenValueMatches(t *testing.T) {
	dp, mt := newTestDnspod(t)

	var listForm url.Values
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.List",
		formResponder(t, &listForm, map[string]any{
			"status": okStatus(),
			"records": []any{
				map[string]any{"id": "7", "name": "www", "type": "A", "value": "1.2.3.4"},
			},
		}))

	for i := 0; i < 2; i++ {
		result, err := dp.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, consts.UpdatedNothing, result.Status)
		assert.False(t, result.Changed())
	}
	assert.Equal(t, 2, mt.GetTotalCallCount())
	assert.Zero(t, mt.GetCallCountInfo()["POST "+Endpoint+"/Record.Modify"])
}

func TestFetchCurrent(t *testing.T) {
	dp, mt := newTestDnspod(t)

	var listForm url.Values
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.List",
		formResponder(t, &listForm, map[string]any{
			"status": okStatus(),
			"records": []any{
				map[string]any{"id": "7", "name": "www", "type": "A", "value": "5.6.7.8"},
			},
		}))

	record, err := dp.FetchCurrent(context.Background(), target("www.example.com"))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "5.6.7.8", record.Value)
	assert.Equal(t, "7", record.ID)
	assert.Equal(t, "A", listForm.Get("record_type"))
}

func TestFetchCurrentNoRecord(t *testing.T) {
	dp, mt := newTestDnspod(t)
	mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.List",
		httpmock.NewStringResponder(http.StatusOK, `{"status":{"code":"1"},"records":[]}`))

	record, err := dp.FetchCurrent(context.Background(), target("www.example.com"))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ddns.ErrorKind
	}{
		{"login failed", http.StatusOK, `{"status":{"code":"-1","message":"Login failed"}}`, ddns.KindAuth},
		{"no permission", http.StatusOK, `{"status":{"code":"-7","message":"Permission denied"}}`, ddns.KindAuth},
		{"rate limited", http.StatusOK, `{"status":{"code":"-2","message":"API usage is limited"}}`, ddns.KindRateLimited},
		{"unknown code", http.StatusOK, `{"status":{"code":"6","message":"Domain id invalid"}}`, ddns.KindNetwork},
		{"server error", http.StatusInternalServerError, `oops`, ddns.KindNetwork},
		{"bad json", http.StatusOK, `<html>maintenance</html>`, ddns.KindMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dp, mt := newTestDnspod(t)
			mt.RegisterResponder(http.MethodPost, Endpoint+"/Record.List",
				httpmock.NewStringResponder(tt.status, tt.body))

			_, err := dp.Upsert(context.Background(), target("www.example.com"), "1.2.3.4")
			require.Error(t, err)
			assert.Equal(t, tt.kind, ddns.KindOf(err))
			// nothing is written after a failed read
			assert.Equal(t, 1, mt.GetTotalCallCount())
		})
	}
}

func TestTransportError(t *testing.T) {
	dp, _ := newTestDnspod(t)
	// no responder registered: the mock transport fails the request
	_, err := dp.FetchCurrent(context.Background(), target("www.example.com"))
	require.Error(t, err)
	assert.Equal(t, ddns.KindNetwork, ddns.KindOf(err))
}
