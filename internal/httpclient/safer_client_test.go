package httpclient

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	client := New(30*time.Second, Options{BlockPrivateIP: true})

	assert.Equal(t, 30*time.Second, client.Timeout)
	assert.Equal(t, 10, client.maxRedirects)
	assert.Equal(t, []string{"http", "https"}, client.allowedSchemes)
	assert.True(t, client.blockPrivateIP)
	assert.NotNil(t, client.Transport)
}

func TestValidateURL(t *testing.T) {
	client := New(time.Second, DefaultOptions())

	tests := []struct {
		name        string
		url         string
		errContains string
	}{
		{name: "public https", url: "https://bsky.social/xrpc/app.bsky.feed.getTimeline"},
		{name: "public http", url: "http://example.com"},
		{name: "file scheme", url: "file:///etc/passwd", errContains: "scheme"},
		{name: "gopher scheme", url: "gopher://example.com", errContains: "scheme"},
		{name: "userinfo", url: "http://bsky.social@127.0.0.1/", errContains: "userinfo"},
		{name: "localhost", url: "http://localhost:2583", errContains: "localhost"},
		{name: "localhost subdomain", url: "http://pds.localhost", errContains: "localhost"},
		{name: "loopback", url: "http://127.0.0.1/", errContains: "private IP"},
		{name: "rfc1918", url: "http://192.168.1.10/", errContains: "private IP"},
		{name: "metadata", url: "http://169.254.169.254/latest", errContains: "private IP"},
		{name: "ipv6 loopback", url: "http://[::1]/", errContains: "private IP"},
		{name: "missing host", url: "http:///path", errContains: "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ValidateURL(tt.url)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateURLAllowsPrivateWhenDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.BlockPrivateIP = false
	client := New(time.Second, opts)

	_, err := client.ValidateURL("http://localhost:2583")
	assert.NoError(t, err)
	_, err = client.ValidateURL("http://10.0.0.5/")
	assert.NoError(t, err)
	_, err = client.ValidateURL("ftp://10.0.0.5/")
	assert.Error(t, err)
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.1.2.3", "172.16.0.1", "172.31.255.255", "192.168.0.1", "127.0.0.1",
		"169.254.1.1", "0.0.0.0", "224.0.0.1", "::1", "fe80::1", "fc00::1", "fd12::1", "2001:db8::1"}
	public := []string{"8.8.8.8", "172.32.0.1", "1.1.1.1", "2606:4700:4700::1111"}

	for _, s := range private {
		assert.True(t, isPrivateIP(net.ParseIP(s)), s)
	}
	for _, s := range public {
		assert.False(t, isPrivateIP(net.ParseIP(s)), s)
	}
}

func TestForHost(t *testing.T) {
	assert.True(t, ForHost("https://bsky.social", time.Second).blockPrivateIP)
	assert.False(t, ForHost("http://localhost:2583", time.Second).blockPrivateIP)
	assert.False(t, ForHost("http://192.168.1.20:2583", time.Second).blockPrivateIP)
}

func TestDialBlocksPrivateAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(2*time.Second, DefaultOptions())
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	// Bypass URL validation so the dialer is what rejects it
	_, err = client.Client.Do(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private IP address blocked")

	_, err = client.Do(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSRF")
}

func TestForHostReachesLocalPDS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := ForHost(server.URL, 2*time.Second)
	resp, err := client.Client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRedirectSchemeBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "file:///etc/passwd", http.StatusFound)
	}))
	defer server.Close()

	client := ForHost(server.URL, 2*time.Second)
	_, err := client.Client.Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect blocked")
}

func TestMaxRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer server.Close()

	client := New(2*time.Second, Options{MaxRedirects: 3})
	_, err := client.Client.Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 3 redirects")
}
