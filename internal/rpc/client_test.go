package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"192.168.1.108", "http://192.168.1.108"},
		{"192.168.1.108:8080", "http://192.168.1.108:8080"},
		{"http://camera.local/", "http://camera.local"},
		{"https://10.0.0.2", "https://10.0.0.2"},
	}

	for _, tt := range tests {
		client := NewClient(tt.address)
		if client.BaseURL != tt.want {
			t.Errorf("NewClient(%q).BaseURL = %s, want %s", tt.address, client.BaseURL, tt.want)
		}
	}
}

func TestClientURLs(t *testing.T) {
	client := NewClient("192.168.1.108")

	if got := client.RPCURL(); got != "http://192.168.1.108/RPC2" {
		t.Errorf("RPCURL() = %s", got)
	}
	if got := client.LoginURL(); got != "http://192.168.1.108/RPC2_Login" {
		t.Errorf("LoginURL() = %s", got)
	}
}

func TestSetTimeout(t *testing.T) {
	client := NewClient("192.168.1.108")
	if client.Timeout != DefaultTimeout {
		t.Errorf("default Timeout = %v, want %v", client.Timeout, DefaultTimeout)
	}

	client.SetTimeout(5 * time.Second)
	if client.Timeout != 5*time.Second || client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v / %v, want 5s", client.Timeout, client.HTTPClient.Timeout)
	}
}

func TestSend_Success(t *testing.T) {
	var gotBody map[string]any
	var gotCookie, gotContentType, gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Request method = %s, want POST", r.Method)
		}
		if r.URL.Path != RPCPath {
			t.Errorf("Path = %s, want %s", r.URL.Path, RPCPath)
		}
		gotCookie = r.Header.Get("Cookie")
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Add("Set-Cookie", "WebClientSessionID=abc")
		w.Header().Add("Set-Cookie", "username=admin")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":10,"result":true,"params":{"table":[1,2]},"session":"abc"}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	req := &Request{
		Method:  MethodGetConfig,
		Params:  GetConfigParams{Name: "Lighting_V2"},
		ID:      IDGetConfig,
		Session: NewSessionID("abc"),
	}

	reply, err := client.Send(context.Background(), client.RPCURL(), req, "WebClientSessionID=abc")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if reply.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", reply.StatusCode)
	}
	if reply.Cookie != "WebClientSessionID=abc; username=admin" {
		t.Errorf("Cookie = %q", reply.Cookie)
	}
	if !reply.Body.OK() {
		t.Error("Body.OK() = false, want true")
	}
	if reply.Body.Session.String() != "abc" {
		t.Errorf("Session = %s, want abc", reply.Body.Session)
	}

	if gotCookie != "WebClientSessionID=abc" {
		t.Errorf("request Cookie = %q", gotCookie)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "camlight/") {
		t.Errorf("User-Agent = %q", gotUserAgent)
	}
	if gotBody["method"] != MethodGetConfig || gotBody["session"] != "abc" || gotBody["id"] != float64(10) {
		t.Errorf("request body = %v", gotBody)
	}
	params, _ := gotBody["params"].(map[string]any)
	if params["name"] != "Lighting_V2" {
		t.Errorf("params = %v", gotBody["params"])
	}
}

func TestSend_NoCookieHeaderWhenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Cookie"]; ok {
			t.Error("Cookie header should not be sent when empty")
		}
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Send(context.Background(), client.LoginURL(), &Request{Method: MethodLogin, ID: IDLogin}, "")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestSend_OmitsEmptySessionAndSendsNullParams(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Send(context.Background(), client.RPCURL(), &Request{Method: MethodLogout, ID: IDLogout}, "")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if strings.Contains(raw, `"session"`) {
		t.Errorf("body should omit session, got %s", raw)
	}
	if !strings.Contains(raw, `"params":null`) {
		t.Errorf("body should carry params null, got %s", raw)
	}
}

func TestSend_Non200WithHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("<html>401 Unauthorized</html>"))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	reply, err := client.Send(context.Background(), client.RPCURL(), &Request{Method: MethodGetConfig}, "")
	if err != nil {
		t.Fatalf("Send() error = %v, want nil for non-200", err)
	}
	if reply.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", reply.StatusCode)
	}
	if reply.Body != nil {
		t.Errorf("Body = %+v, want nil", reply.Body)
	}
}

func TestSend_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not valid JSON at all"))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Send(context.Background(), client.RPCURL(), &Request{Method: MethodGetConfig}, "")
	if err == nil {
		t.Fatal("Send() should return error for invalid JSON")
	}
	if !IsParseError(err) {
		t.Errorf("Send() error should be parse error, got %T: %v", err, err)
	}
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClientWithURL(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.Send(context.Background(), client.RPCURL(), &Request{Method: MethodGetConfig}, "")
	if err == nil {
		t.Fatal("Send() should time out")
	}
	if !IsTimeout(err) {
		t.Errorf("Send() error should be timeout, got %v", err)
	}
	if !IsNetworkError(err) {
		t.Errorf("timeout should also count as a network error")
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClientWithURL(url)
	_, err := client.Send(context.Background(), client.RPCURL(), &Request{Method: MethodGetConfig}, "")
	if err == nil {
		t.Fatal("Send() should fail against a closed server")
	}
	if !IsNetworkError(err) {
		t.Errorf("Send() error should be network error, got %v", err)
	}
}
