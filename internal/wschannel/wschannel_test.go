package wschannel

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestChannelSendRecvRoundTrip(t *testing.T) {
	serverDone := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ch, err := Upgrade(w, r)
		if err != nil {
			serverDone <- err
			return
		}
		defer ch.Close()
		data, isText, err := ch.Recv()
		if err != nil {
			serverDone <- err
			return
		}
		if isText {
			serverDone <- errNotBinary
			return
		}
		serverDone <- ch.Send(append([]byte("echo:"), data...))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(reply) != "echo:hi" {
		t.Fatalf("reply = %q", reply)
	}
	if err := <-serverDone; err != nil {
		t.Fatalf("server: %v", err)
	}
}

var errNotBinary = errText("expected binary frame")

type errText string

func (e errText) Error() string { return string(e) }
