// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package websocket

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// testClient builds a client without a connection; tests read c.send.
func testClient(hub *Hub, userID string) *Client {
	return &Client{id: clientIDCounter.Add(1), userID: userID, hub: hub, send: make(chan Message, 256)}
}

func registerAndWait(t *testing.T, hub *Hub, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		hub.Register <- c
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() >= len(clients) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("clients not registered: have %d, want %d", hub.GetClientCount(), len(clients))
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case m := <-c.send:
		return m
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.userID)
	}
	return Message{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case m := <-c.send:
		t.Errorf("client %s unexpectedly received %+v", c.userID, m)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestNewHub(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	if hub.clients == nil || hub.users == nil || hub.outbound == nil {
		t.Fatal("hub maps or channels not initialized")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d, want 0", hub.GetClientCount())
	}
}

func TestHub_SendToUser(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	aliceWeb := testClient(hub, "alice")
	alicePhone := testClient(hub, "alice")
	bob := testClient(hub, "bob")
	registerAndWait(t, hub, aliceWeb, alicePhone, bob)

	if !hub.IsOnline("alice") || hub.IsOnline("carol") {
		t.Error("IsOnline() mismatch")
	}

	hub.SendToUser("alice", MessageTypeNotification, map[string]string{"title": "Application reviewed"})

	for _, c := range []*Client{aliceWeb, alicePhone} {
		if m := receive(t, c); m.Type != MessageTypeNotification {
			t.Errorf("type = %q, want %q", m.Type, MessageTypeNotification)
		}
	}
	expectNothing(t, bob)
}

func TestHub_SendToUsersAndBroadcast(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	a, b, c := testClient(hub, "a"), testClient(hub, "b"), testClient(hub, "c")
	registerAndWait(t, hub, a, b, c)

	hub.SendToUsers([]string{"a", "b"}, MessageTypeMessage, "hi")
	receive(t, a)
	receive(t, b)
	expectNothing(t, c)

	hub.BroadcastJSON(MessageTypeSystem, "maintenance at 22:00")
	for _, cl := range []*Client{a, b, c} {
		if m := receive(t, cl); m.Type != MessageTypeSystem {
			t.Errorf("type = %q, want system", m.Type)
		}
	}

	if !hub.SendToUsers(nil, MessageTypeMessage, "noop") {
		t.Error("SendToUsers(nil) = false")
	}
}

func TestHub_Unregister(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	c := testClient(hub, "u1")
	registerAndWait(t, hub, c)

	hub.Unregister <- c
	deadline := time.Now().Add(time.Second)
	for hub.IsOnline("u1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.IsOnline("u1") || hub.GetClientCount() != 0 {
		t.Fatal("client still registered after Unregister")
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel not closed")
	}

	// A second unregister of the same client is a no-op.
	hub.Unregister <- c
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	slow := &Client{id: clientIDCounter.Add(1), userID: "slow", hub: hub, send: make(chan Message, 1)}
	registerAndWait(t, hub, slow)

	hub.SendToUser("slow", MessageTypeNotification, 1)
	hub.SendToUser("slow", MessageTypeNotification, 2)

	deadline := time.Now().Add(time.Second)
	for hub.IsOnline("slow") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.IsOnline("slow") {
		t.Fatal("slow client not disconnected")
	}
}

func TestHub_OutboundQueueFull(t *testing.T) {
	t.Parallel()

	hub := NewHub() // not running
	for i := 0; i < cap(hub.outbound); i++ {
		if !hub.BroadcastJSON(MessageTypeSystem, i) {
			t.Fatalf("enqueue %d failed before capacity", i)
		}
	}
	if hub.SendToUser("u", MessageTypeSystem, "overflow") {
		t.Error("SendToUser() on a full queue = true")
	}
}

func TestHub_RunWithContext_ClosesClients(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := testClient(hub, "u1")
	registerAndWait(t, hub, c)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d after shutdown", hub.GetClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel open after shutdown")
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	<-expired.Done()

	tests := []struct {
		name string
		ctx  context.Context
		want ShutdownReason
	}{
		{"canceled", canceled, ShutdownReasonContextCanceled},
		{"deadline", expired, ShutdownReasonContextDeadline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getShutdownReason(tt.ctx); got != tt.want {
				t.Errorf("getShutdownReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	data, err := MarshalMessage(Message{Type: MessageTypeUnreadCount, Data: map[string]int{"count": 3}})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	if want := `{"type":"unread_count","data":{"count":3}}`; string(data) != want {
		t.Errorf("MarshalMessage() = %s, want %s", data, want)
	}
}

func TestHub_DetachAfterStop(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(stopped)
	}()
	c := testClient(hub, "u1")
	registerAndWait(t, hub, c)
	cancel()
	<-stopped

	select {
	case <-hub.Done():
	default:
		t.Fatal("Done() not closed after shutdown")
	}

	detached := make(chan struct{})
	go func() {
		hub.detach(c)
		close(detached)
	}()
	select {
	case <-detached:
	case <-time.After(time.Second):
		t.Fatal("detach blocked after the hub stopped")
	}
}
