package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Package(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/pypi/pygame-ce/2.5.2/json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"info": {
				"name": "pygame-ce",
				"version": "2.5.2",
				"author": "A community project.",
				"home_page": "https://pyga.me",
				"license": "LGPL-2.1-or-later",
				"classifiers": ["License :: OSI Approved :: GNU Lesser General Public License v2 (LGPLv2)", "Programming Language :: Python"],
				"project_url": "https://pypi.org/project/pygame-ce/"
			}, "releases": {}}`))
		case "/pypi/pygbag/json":
			w.Write([]byte(`{"info": {"name": "pygbag", "version": "0.9.2"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, WithUserAgent("pgm-test"))
	ctx := context.Background()

	info, err := client.Package(ctx, "pygame-ce", "2.5.2")
	require.NoError(t, err)
	require.Equal(t, "pygame-ce", info.Name)
	require.Equal(t, "LGPL-2.1-or-later", info.License)
	require.Equal(t, "https://pyga.me", info.HomePage)
	require.Len(t, info.Classifiers, 2)
	require.Equal(t, "pgm-test", userAgent.Load())

	info, err = client.Package(ctx, "pygbag", "")
	require.NoError(t, err)
	require.Equal(t, "0.9.2", info.Version)

	_, err = client.Package(ctx, "nope", "1.0")
	require.ErrorIs(t, err, ErrNotFound)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	require.True(t, strings.HasSuffix(httpErr.URL, "/pypi/nope/1.0/json"))
}

func TestClient_PackageURL(t *testing.T) {
	client := New("https://pypi.org/")
	require.Equal(t, "https://pypi.org/pypi/pygame-ce/2.5.2/json", client.PackageURL("pygame-ce", "2.5.2"))
	require.Equal(t, "https://pypi.org/pypi/pygame-ce/json", client.PackageURL("pygame-ce", ""))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Package(context.Background(), "slow", "")
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := New(server.URL)
	for i := 0; i < tripThreshold*2; i++ {
		_, err := client.Package(context.Background(), "missing", "")
		require.ErrorIs(t, err, ErrNotFound)
	}

	for _, state := range client.BreakerState() {
		require.Equal(t, "closed", state)
	}
}

func TestClient_ServerErrorsTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL)
	for i := 0; i < tripThreshold; i++ {
		_, err := client.Package(context.Background(), "pkg", "")
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	}

	_, err := client.Package(context.Background(), "pkg", "")
	require.True(t, errors.Is(err, ErrUpstreamDown))
	require.Equal(t, int32(tripThreshold), hits.Load())

	for _, state := range client.BreakerState() {
		require.Equal(t, "open", state)
	}
}
