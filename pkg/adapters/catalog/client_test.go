package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/patchbay/pkg/adapters/catalog"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.CatalogClient = (*catalog.Client)(nil)

func TestClient_FetchDeviceTypeForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, catalog.DefaultFormPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`<form id="device-type"><input name="name"></form>`))
	}))
	defer srv.Close()

	doc, err := catalog.New(srv.URL + "/").FetchDeviceTypeForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `<form id="device-type"><input name="name"></form>`, doc)
}

func TestClient_CustomPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	doc, err := catalog.New(srv.URL, catalog.WithFormPath("forms/new")).FetchDeviceTypeForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/forms/new", doc)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "login required", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := catalog.New(srv.URL).FetchDeviceTypeForm(context.Background())
	require.Error(t, err)

	var statusErr *catalog.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := catalog.New(srv.URL, catalog.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := client.FetchDeviceTypeForm(context.Background())
	require.Error(t, err)

	var statusErr *catalog.StatusError
	assert.False(t, errors.As(err, &statusErr))
}
