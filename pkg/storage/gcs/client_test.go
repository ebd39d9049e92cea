package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	return &Client{
		defaultBucket: "bucket",
		tokenSource: &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
			return "token", time.Now().Add(time.Hour), nil
		}},
		httpClient: &http.Client{Transport: rt},
	}
}

func TestWriteObjectSuccess(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if req.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
		}
		if req.Header.Get("Content-Type") != "application/pdf" {
			t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
		}
		if !strings.Contains(req.URL.RawQuery, "name=certificates%2Fcert.pdf") {
			t.Fatalf("object name missing from query %s", req.URL.RawQuery)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"name":"certificates/cert.pdf"}`)),
			Header:     http.Header{},
		}
	})

	ref, err := client.WriteObject(context.Background(), "certificates/cert.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	if ref != "gs://bucket/certificates/cert.pdf" {
		t.Fatalf("unexpected ref %s", ref)
	}
}

func TestWriteObjectServerError(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader(`{"error":"denied"}`)),
			Header:     http.Header{},
		}
	})

	if _, err := client.WriteObject(context.Background(), "certificates/cert.pdf", "application/pdf", []byte("%PDF")); err == nil {
		t.Fatal("expected error on forbidden upload")
	}
}

func TestWriteObjectValidation(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		t.Fatal("no request expected")
		return nil
	})
	if _, err := client.WriteObject(context.Background(), "", "application/pdf", nil); err == nil {
		t.Fatal("expected error for missing object name")
	}

	empty := &Client{}
	if _, err := empty.WriteObject(context.Background(), "certificates/cert.pdf", "application/pdf", nil); err == nil {
		t.Fatal("expected error without token source")
	}
}
