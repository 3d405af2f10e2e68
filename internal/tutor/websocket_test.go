package tutor

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func dialTestServer(t *testing.T, gen *fakeGenerator) (*websocket.Conn, context.Context) {
	t.Helper()

	h := NewWebSocketHandler(newFakeMemory(), gen, &fakeTranscriber{}, &fakeSynthesizer{audio: []byte("WAV")}, GenParams{MaxTokens: 16}, "", true)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn, ctx
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) map[string]any {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal %q failed: %v", data, err)
	}
	return got
}

func TestMalformedJSONKeepsConnectionUsable(t *testing.T) {
	t.Parallel()

	conn, ctx := dialTestServer(t, &fakeGenerator{})

	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	ev := readEvent(t, ctx, conn)
	if ev["type"] != "error" || ev["message"] != "Invalid JSON" {
		t.Fatalf("expected Invalid JSON error event, got %v", ev)
	}

	// Connection stays open: a valid start_session still works.
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"start_session"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if ev := readEvent(t, ctx, conn); ev["type"] != "avatar" || ev["state"] != "idle" {
		t.Fatalf("expected avatar idle, got %v", ev)
	}
	if ev := readEvent(t, ctx, conn); ev["type"] != "ready" {
		t.Fatalf("expected ready, got %v", ev)
	}
}

func TestSessionIDStableAcrossCommands(t *testing.T) {
	t.Parallel()

	conn, ctx := dialTestServer(t, &fakeGenerator{})

	var ids []string
	for i := 0; i < 2; i++ {
		if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"start_session"}`)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		readEvent(t, ctx, conn) // avatar idle
		ev := readEvent(t, ctx, conn)
		id, _ := ev["session_id"].(string)
		if id == "" {
			t.Fatalf("missing session_id in %v", ev)
		}
		ids = append(ids, id)
	}
	if ids[0] != ids[1] {
		t.Errorf("session_id changed across start_session: %q then %q", ids[0], ids[1])
	}
}

func TestUserTextStreamsTokensOverWire(t *testing.T) {
	t.Parallel()

	conn, ctx := dialTestServer(t, &fakeGenerator{chunks: []string{"hello ", "student"}})

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"user_text","text":"hi"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	wantTypes := []string{"avatar", "assistant_text", "token", "token", "tts_chunk", "avatar"}
	for _, want := range wantTypes {
		ev := readEvent(t, ctx, conn)
		if ev["type"] != want {
			t.Fatalf("expected event type %q, got %v", want, ev)
		}
	}
}

func TestUnknownMessageTypeIsIgnored(t *testing.T) {
	t.Parallel()

	conn, ctx := dialTestServer(t, &fakeGenerator{})

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// The next command must still be processed in order, with no event for
	// the unknown one.
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"start_session"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if ev := readEvent(t, ctx, conn); ev["type"] != "avatar" {
		t.Fatalf("expected avatar as first event after ignored message, got %v", ev)
	}
}
