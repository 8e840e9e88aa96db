// Package main provides a CI-friendly smoke test for the Warden session API.
//
// It validates:
//   - login accepted up to the device cap
//   - limit_exceeded with the active-device list once the cap is hit
//   - force_evict of the oldest device, observed over the WS push channel
//   - the evicted device seeing inactive on its next heartbeat
//   - the new device logging in after the evict
//   - logout freeing the seat
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
)

type sessionRequest struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

type deviceInfo struct {
	DeviceID   string    `json:"device_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type loginResponse struct {
	Status  string       `json:"status"`
	Devices []deviceInfo `json:"devices"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type pushEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:8080", "Warden base URL")
		wsURL   = flag.String("ws-url", "ws://127.0.0.1:8080", "Warden WebSocket base URL")
		userID  = flag.String("user", fmt.Sprintf("smoke-%d", time.Now().UnixNano()), "User ID to exercise")
		cap     = flag.Int("cap", 3, "Configured device cap (WARDEN_MAX_DEVICES)")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
	)
	flag.Parse()

	root := context.Background()
	client := &http.Client{Timeout: *timeout}

	devices := make([]string, *cap)
	for i := range devices {
		devices[i] = fmt.Sprintf("device-%d", i+1)
	}
	extra := "device-extra"

	for _, d := range devices {
		res := mustLogin(client, *baseURL, *userID, d)
		if res.Status != "accepted" {
			fatalf("login %s: got=%q want=accepted", d, res.Status)
		}
	}

	res := mustLogin(client, *baseURL, *userID, extra)
	if res.Status != "limit_exceeded" {
		fatalf("login %s: got=%q want=limit_exceeded", extra, res.Status)
	}
	if len(res.Devices) != *cap {
		fatalf("limit_exceeded devices: got=%d want=%d", len(res.Devices), *cap)
	}
	if res.Devices[0].DeviceID != devices[0] {
		fatalf("limit_exceeded ordering: first=%q want=%q", res.Devices[0].DeviceID, devices[0])
	}

	// Watch the oldest device's push channel before evicting it.
	evictTarget := res.Devices[0].DeviceID
	events := watchPush(root, *wsURL, *userID, evictTarget, *timeout)

	if st := mustPost(client, *baseURL, "/api/v1/sessions/force_evict", *userID, evictTarget); st != "evicted" {
		fatalf("force_evict %s: got=%q want=evicted", evictTarget, st)
	}

	select {
	case ev := <-events:
		if ev.Type != "evicted" || ev.DeviceID != evictTarget {
			fatalf("push event: got=%+v want type=evicted device=%s", ev, evictTarget)
		}
	case <-time.After(*timeout):
		fatalf("timeout waiting for evicted push event")
	}

	if st := mustPost(client, *baseURL, "/api/v1/sessions/heartbeat", *userID, evictTarget); st != "inactive" {
		fatalf("heartbeat %s after evict: got=%q want=inactive", evictTarget, st)
	}

	if r := mustLogin(client, *baseURL, *userID, extra); r.Status != "accepted" {
		fatalf("login %s after evict: got=%q want=accepted", extra, r.Status)
	}

	mustLogout(client, *baseURL, *userID, extra)
	if r := mustLogin(client, *baseURL, *userID, "device-final"); r.Status != "accepted" {
		fatalf("login after logout: got=%q want=accepted", r.Status)
	}

	fmt.Printf("OK: user=%s cap=%d evicted=%s\n", *userID, *cap, evictTarget)
}

func mustLogin(client *http.Client, baseURL, userID, deviceID string) loginResponse {
	var res loginResponse
	mustJSON(client, baseURL+"/api/v1/sessions/login", userID, deviceID, &res)
	return res
}

func mustPost(client *http.Client, baseURL, path, userID, deviceID string) string {
	var res statusResponse
	mustJSON(client, baseURL+path, userID, deviceID, &res)
	return res.Status
}

func mustLogout(client *http.Client, baseURL, userID, deviceID string) {
	resp := mustDo(client, baseURL+"/api/v1/sessions/logout", userID, deviceID)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		fatalf("logout status: got=%d want=%d", resp.StatusCode, http.StatusNoContent)
	}
}

func mustJSON(client *http.Client, url, userID, deviceID string, out any) {
	resp := mustDo(client, url, userID, deviceID)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fatalf("POST %s status: got=%d want=200", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fatalf("decode %s response: %v", url, err)
	}
}

func mustDo(client *http.Client, url, userID, deviceID string) *http.Response {
	body, err := json.Marshal(sessionRequest{UserID: userID, DeviceID: deviceID})
	if err != nil {
		fatalf("marshal request: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		fatalf("POST %s: %v", url, err)
	}
	return resp
}

func watchPush(parent context.Context, wsBase, userID, deviceID string, stepTimeout time.Duration) <-chan pushEvent {
	dialCtx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/notifications/ws?user_id=%s&device_id=%s", wsBase, userID, deviceID)
	conn, resp, err := websocket.Dial(dialCtx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("ws dial: %v", err)
	}

	events := make(chan pushEvent, 1)
	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		_, data, err := conn.Read(parent)
		if err != nil {
			return
		}
		var ev pushEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return
		}
		events <- ev
	}()
	return events
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
