package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    r,
	}
}

func TestOpenChecksBucket(t *testing.T) {
	t.Parallel()

	store, err := Open(context.Background(), Config{Bucket: "snapshots"},
		option.WithoutAuthentication(),
		option.WithHTTPClient(&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			assert.Contains(t, r.URL.Path, "/storage/v1/b/snapshots")
			return respond(r, http.StatusOK, `{"name":"snapshots"}`), nil
		})}),
	)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpenFailsOnMissingBucket(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{Bucket: "missing"},
		option.WithoutAuthentication(),
		option.WithHTTPClient(&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return respond(r, http.StatusNotFound, `{"error":{"code":404,"message":"Not Found"}}`), nil
		})}),
	)
	require.ErrorContains(t, err, `get gcs bucket "missing" attributes`)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "b"})
	require.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	_, err = New(client, Config{Bucket: " "})
	require.Error(t, err)
}

func TestPutObjectUploads(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		body string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/upload/storage/v1/b/snapshots/o")
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		mu.Lock()
		body = string(b)
		mu.Unlock()
		fmt.Fprintln(w, `{"name":"pages/ssc.nic.in/abc.html","bucket":"snapshots"}`)
	}))
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, Config{Bucket: "snapshots", Prefix: "/pages/"})
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "ssc.nic.in/abc.html", "text/html", []byte("<table>notices</table>"))
	require.NoError(t, err)
	assert.Equal(t, "gs://snapshots/pages/ssc.nic.in/abc.html", uri)
	mu.Lock()
	assert.Contains(t, body, "<table>notices</table>")
	mu.Unlock()

	// A store built by New leaves the client open.
	require.NoError(t, store.Close())
}

func TestPutObjectErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	store, err := New(client, Config{Bucket: "snapshots"})
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "x.html", "text/html", []byte("x"))
	require.Error(t, err)

	_, err = store.PutObject(context.Background(), "", "text/html", []byte("x"))
	require.ErrorContains(t, err, "object path is required")
}
