package api

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(5 * time.Second)

	if client.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s but got %v", client.Timeout)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport but got %T", client.Transport)
	}
	if transport.MaxIdleConnsPerHost != 10 {
		t.Errorf("expected MaxIdleConnsPerHost=10 but got %d", transport.MaxIdleConnsPerHost)
	}
	if transport.DisableKeepAlives {
		t.Error("expected keep-alives to be enabled")
	}
}
