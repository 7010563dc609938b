package threatintel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr1s57/urlsentinel/internal/entity"
)

func checkURL(canonical string) *entity.NormalizedURL {
	return &entity.NormalizedURL{Canonical: canonical, Host: "example.com", Scheme: "http"}
}

func TestSafeBrowsingCheck(t *testing.T) {
	tests := []struct {
		name        string
		response    any
		status      int
		wantSafe    bool
		wantThreats int
	}{
		{
			name:     "no matches means safe",
			response: map[string]any{},
			status:   http.StatusOK,
			wantSafe: true,
		},
		{
			name: "matches flag the url",
			response: map[string]any{
				"matches": []map[string]any{
					{"threatType": "MALWARE"},
					{"threatType": "SOCIAL_ENGINEERING"},
				},
			},
			status:      http.StatusOK,
			wantSafe:    false,
			wantThreats: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "test-key", r.URL.Query().Get("key"))

				var req safeBrowsingRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "urlsentinel", req.Client.ClientID)
				require.Len(t, req.ThreatInfo.ThreatEntries, 1)
				assert.Equal(t, "http://example.com/x", req.ThreatInfo.ThreatEntries[0].URL)

				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer srv.Close()

			client := NewSafeBrowsingClient(SafeBrowsingConfig{APIKey: "test-key"})
			client.baseURL = srv.URL

			res := client.Check(context.Background(), checkURL("http://example.com/x"))

			require.True(t, res.Available)
			require.NotNil(t, res.Safe)
			assert.Equal(t, tt.wantSafe, *res.Safe)
			assert.Equal(t, tt.wantThreats, res.Detail["threat_count"])
		})
	}
}

func TestSafeBrowsingUnavailableOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewSafeBrowsingClient(SafeBrowsingConfig{APIKey: "test-key"})
	client.baseURL = srv.URL

	res := client.Check(context.Background(), checkURL("http://example.com"))

	assert.False(t, res.Available)
	assert.Nil(t, res.Safe)
	assert.Contains(t, res.Error, "503")
}

func TestSafeBrowsingNotConfigured(t *testing.T) {
	client := NewSafeBrowsingClient(SafeBrowsingConfig{})

	res := client.Check(context.Background(), checkURL("http://example.com"))

	assert.False(t, res.Available)
	assert.Equal(t, errCredentialMissing, res.Error)
}

func TestVirusTotalCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/urls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "vt-key", r.Header.Get("x-apikey"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "http://example.com", r.PostForm.Get("url"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "analysis-123"},
		})
	})
	mux.HandleFunc("/analyses/analysis-123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "vt-key", r.Header.Get("x-apikey"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"stats": map[string]any{
						"malicious":  3,
						"suspicious": 1,
						"harmless":   60,
						"undetected": 16,
					},
				},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewVirusTotalClient(VirusTotalConfig{APIKey: "vt-key"})
	client.baseURL = srv.URL

	res := client.Check(context.Background(), checkURL("http://example.com"))

	require.True(t, res.Available)
	require.NotNil(t, res.Safe)
	assert.False(t, *res.Safe)
	assert.Equal(t, 3, res.Detail["malicious_count"])
	assert.Equal(t, 80, res.Detail["total_scans"])
	assert.Equal(t, 5.0, res.Detail["detection_rate"]) // 4 of 80
}

func TestVirusTotalNoPreviousAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer srv.Close()

	client := NewVirusTotalClient(VirusTotalConfig{APIKey: "vt-key"})
	client.baseURL = srv.URL

	res := client.Check(context.Background(), checkURL("http://example.com"))

	require.True(t, res.Available)
	require.NotNil(t, res.Safe)
	assert.True(t, *res.Safe)
	assert.Equal(t, "No previous analysis available", res.Detail["note"])
}

func TestVirusTotalCleanVerdict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/urls", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "analysis-9"},
		})
	})
	mux.HandleFunc("/analyses/analysis-9", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"attributes": map[string]any{
					"stats": map[string]any{
						"malicious":  0,
						"suspicious": 0,
						"harmless":   70,
						"undetected": 10,
					},
				},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewVirusTotalClient(VirusTotalConfig{APIKey: "vt-key"})
	client.baseURL = srv.URL

	res := client.Check(context.Background(), checkURL("http://example.com"))

	require.True(t, res.Available)
	assert.True(t, *res.Safe)
	assert.Equal(t, 0.0, res.Detail["detection_rate"])
}

func TestURLHausCheck(t *testing.T) {
	tests := []struct {
		name       string
		response   map[string]any
		wantSafe   bool
		wantDetail map[string]any
	}{
		{
			name: "known malware url",
			response: map[string]any{
				"query_status": "ok",
				"url_status":   "online",
				"threat":       "malware_download",
				"tags":         []string{"elf", "mozi"},
			},
			wantSafe: false,
		},
		{
			name:     "listed without threat type",
			response: map[string]any{"query_status": "ok"},
			wantSafe: false,
		},
		{
			name:     "not listed",
			response: map[string]any{"query_status": "no_results"},
			wantSafe: true,
		},
		{
			name:     "unexpected status treated as safe",
			response: map[string]any{"query_status": "invalid_url"},
			wantSafe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "http://example.com", r.PostForm.Get("url"))
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer srv.Close()

			client := NewURLHausClient(URLHausConfig{})
			client.baseURL = srv.URL

			res := client.Check(context.Background(), checkURL("http://example.com"))

			require.True(t, res.Available)
			require.NotNil(t, res.Safe)
			assert.Equal(t, tt.wantSafe, *res.Safe)
		})
	}
}

func TestURLHausThreatDefaultsToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"query_status": "ok"})
	}))
	defer srv.Close()

	client := NewURLHausClient(URLHausConfig{})
	client.baseURL = srv.URL

	res := client.Check(context.Background(), checkURL("http://example.com"))

	assert.Equal(t, "unknown", res.Detail["threat_type"])
}

func TestURLHausSendsAuthKeyWhenConfigured(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Auth-Key")
		json.NewEncoder(w).Encode(map[string]any{"query_status": "no_results"})
	}))
	defer srv.Close()

	client := NewURLHausClient(URLHausConfig{AuthKey: "abuse-key"})
	client.baseURL = srv.URL

	client.Check(context.Background(), checkURL("http://example.com"))

	assert.Equal(t, "abuse-key", gotAuth)
}
