package mobbin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appscout/mobbin-proxy/internal/apperrors"
	"github.com/appscout/mobbin-proxy/internal/config"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(&config.UpstreamConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-api-key",
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return client, srv
}

func writeSession(w http.ResponseWriter, token string) {
	_ = json.NewEncoder(w).Encode(Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   3600,
		User:        User{ID: "u-1", Email: "user@example.com"},
	})
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(&config.UpstreamConfig{BaseURL: "http://localhost"})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConfiguration, appErr.Code)
}

func TestNewWithoutSessionToken(t *testing.T) {
	client, err := New(&config.UpstreamConfig{BaseURL: "http://localhost", APIKey: "key"})
	require.NoError(t, err)
	assert.False(t, client.HasSession())
}

func TestNewWithSessionToken(t *testing.T) {
	var gotAuth, gotAPIKey string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		_, _ = w.Write([]byte(`[]`))
	}))

	// Re-prime with a token the way New does when one is configured
	client.setAccessToken("pre-existing")
	require.True(t, client.HasSession())

	_, err := client.LatestApps(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer pre-existing", gotAuth)
	assert.Equal(t, "test-api-key", gotAPIKey)
}

func TestLoginWithPasswordStoresToken(t *testing.T) {
	var requests []string
	var dataAuth string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			// Login requests authenticate with the API key alone
			assert.Empty(t, r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user@example.com", body["email"])
			assert.Equal(t, "hunter2", body["password"])

			writeSession(w, "session-tok")
		case "/rest/v1/apps":
			dataAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))

	session, err := client.LoginWithPassword(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "session-tok", session.AccessToken)
	assert.True(t, client.HasSession())

	_, err = client.LatestApps(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-tok", dataAuth)
	assert.Equal(t, []string{"/auth/v1/token", "/rest/v1/apps"}, requests)
}

func TestVerifyOneTimeCodeStoresToken(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/verify", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "email", body["type"])
		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, "123456", body["token"])

		writeSession(w, "otp-tok")
	}))

	session, err := client.VerifyOneTimeCode(context.Background(), "user@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "otp-tok", session.AccessToken)
	assert.True(t, client.HasSession())
}

func TestVerifyResponseWithoutToken(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	session, err := client.VerifyOneTimeCode(context.Background(), "user@example.com", "123456")
	require.Error(t, err)
	assert.Nil(t, session)
	assert.False(t, client.HasSession())

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeAuthentication, appErr.Code)
}

func TestVerifyUpstreamRejection(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid code"}`, http.StatusUnauthorized)
	}))

	_, err := client.VerifyOneTimeCode(context.Background(), "user@example.com", "000000")
	require.Error(t, err)
	assert.False(t, client.HasSession())

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeAuthentication, appErr.Code)
}

func TestRequestOneTimeCode(t *testing.T) {
	var count int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		require.Equal(t, "/auth/v1/otp", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, false, body["create_user"])

		_, _ = w.Write([]byte(`{}`))
	}))

	// Two identical calls issue two independent upstream requests
	require.NoError(t, client.RequestOneTimeCode(context.Background(), "user@example.com"))
	require.NoError(t, client.RequestOneTimeCode(context.Background(), "user@example.com"))
	assert.Equal(t, 2, count)
	assert.False(t, client.HasSession())
}

func TestRequestOneTimeCodeFailure(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))

	err := client.RequestOneTimeCode(context.Background(), "user@example.com")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestSearchQueryUsesANDSemantics(t *testing.T) {
	var gotFilter string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("appName")
		_, _ = w.Write([]byte(`[{"id":"a1","appName":"Time Schedule","platform":"ios"}]`))
	}))
	client.setAccessToken("tok")

	apps, err := client.SearchApps(context.Background(), "time schedule", "ios")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	// Both tokens must match, not either
	assert.Equal(t, "fts.time&schedule", gotFilter)
}

func TestSearchNoFallbackOnPrimaryHit(t *testing.T) {
	var count int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		assert.NotEmpty(t, r.URL.Query().Get("appName"))
		_, _ = w.Write([]byte(`[{"id":"a1","appName":"Figma","platform":"ios"}]`))
	}))
	client.setAccessToken("tok")

	apps, err := client.SearchApps(context.Background(), "figma", "ios")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, count)
}

func TestSearchFallsBackToCompanyName(t *testing.T) {
	var paths []string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("appName") != "":
			paths = append(paths, "appName")
			_, _ = w.Write([]byte(`[]`))
		case q.Get("companyName") != "":
			paths = append(paths, "companyName")
			assert.Equal(t, "fts.google", q.Get("companyName"))
			_, _ = w.Write([]byte(`[{"id":"a2","appName":"Gmail","companyName":"Google","platform":"ios"}]`))
		default:
			t.Errorf("unexpected query %v", q)
		}
	}))
	client.setAccessToken("tok")

	apps, err := client.SearchApps(context.Background(), "google", "ios")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Gmail", apps[0].Name)
	// Exactly one fallback pass after the empty primary result
	assert.Equal(t, []string{"appName", "companyName"}, paths)
}

func TestSearchBothPassesEmpty(t *testing.T) {
	var count int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count++
		_, _ = w.Write([]byte(`[]`))
	}))
	client.setAccessToken("tok")

	apps, err := client.SearchApps(context.Background(), "nosuchapp", "ios")
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.Equal(t, 2, count)
}

func TestLatestAppsQuery(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.ios", q.Get("platform"))
		assert.Equal(t, "updatedAt.desc", q.Get("order"))
		assert.Equal(t, "5", q.Get("limit"))
		_, _ = w.Write([]byte(`[{"id":"a1","appName":"One","platform":"ios"},{"id":"a2","appName":"Two","platform":"ios"}]`))
	}))
	client.setAccessToken("tok")

	apps, err := client.LatestApps(context.Background(), 5, "ios")
	require.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.LessOrEqual(t, len(apps), 5)
}

func TestDataFetchUpstreamError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	client.setAccessToken("tok")

	apps, err := client.LatestApps(context.Background(), 20, "ios")
	// Failure must be distinguishable from an empty-but-successful result
	require.Error(t, err)
	assert.Nil(t, apps)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUpstream, appErr.Code)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestDataFetchMalformedResponse(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))
	client.setAccessToken("tok")

	_, err := client.LatestApps(context.Background(), 20, "ios")
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeUpstream, appErr.Code)
}

func TestDataFetchUnreachableUpstream(t *testing.T) {
	client, err := New(&config.UpstreamConfig{
		BaseURL:        "http://127.0.0.1:1",
		APIKey:         "key",
		SessionToken:   "tok",
		RequestTimeout: time.Second,
	})
	require.NoError(t, err)

	_, err = client.SearchApps(context.Background(), "figma", "ios")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.Upstream("")))
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "single token", query: "figma", expected: "figma"},
		{name: "two tokens", query: "time schedule", expected: "time&schedule"},
		{name: "extra whitespace", query: "  time   schedule  ", expected: "time&schedule"},
		{name: "three tokens", query: "my task list", expected: "my&task&list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ftsQuery(tt.query))
		})
	}
}
