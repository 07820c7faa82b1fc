package wshost

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/keybridge/host"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want host.Event
	}{
		{"quit", `{"type":"quit"}`, host.Event{Type: host.EventQuit}},
		{"key down", `{"type":"key","payload":{"down":true,"code":97,"flags":1,"ascii":65}}`,
			host.KeyDownEvent(host.KeyA, host.FlagShift, 'A')},
		{"key up", `{"type":"key","payload":{"down":false,"code":273}}`, host.KeyUpEvent(host.KeyUp, 0)},
		{"mouse move", `{"type":"mouse","payload":{"action":"move","x":4,"y":5}}`, host.MouseMoveEvent(4, 5)},
		{"mouse down", `{"type":"mouse","payload":{"action":"down","x":1,"y":2}}`,
			host.Event{Type: host.EventMouseDown, Mouse: host.Point{X: 1, Y: 2}}},
		{"wheel", `{"type":"mouse","payload":{"action":"wheel_up"}}`, host.Event{Type: host.EventWheelUp}},
		{"axis", `{"type":"joy_axis","payload":{"axis":31,"position":-32768}}`,
			host.Event{Type: host.EventJoyAxisMotion, Joystick: host.JoyState{Axis: 31, Position: -32768}}},
		{"button", `{"type":"joy_button","payload":{"button":3,"down":true}}`,
			host.Event{Type: host.EventJoyButtonDown, Joystick: host.JoyState{Button: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.msg))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		err  error
	}{
		{"axis index", `{"type":"joy_axis","payload":{"axis":32,"position":0}}`, ErrOutOfRange},
		{"negative axis", `{"type":"joy_axis","payload":{"axis":-1}}`, ErrOutOfRange},
		{"axis position", `{"type":"joy_axis","payload":{"axis":0,"position":40000}}`, ErrOutOfRange},
		{"button index", `{"type":"joy_button","payload":{"button":32,"down":true}}`, ErrOutOfRange},
		{"key flags", `{"type":"key","payload":{"code":97,"flags":512}}`, ErrOutOfRange},
		{"key code", `{"type":"key","payload":{"code":-4}}`, ErrOutOfRange},
		{"mouse action", `{"type":"mouse","payload":{"action":"drag"}}`, ErrUnknownAction},
		{"missing payload", `{"type":"key"}`, ErrMissingField},
		{"unknown type", `{"type":"teleport"}`, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.msg))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServerRoundTrip(t *testing.T) {
	s := NewServer("", host.NewRing(16), nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts.URL)

	hello := readMessage(t, conn)
	require.Equal(t, MsgHello, hello.Type)
	var hp HelloPayload
	require.NoError(t, json.Unmarshal(hello.Payload, &hp))
	_, err := uuid.Parse(hp.PeerID)
	assert.NoError(t, err)
	assert.Eventually(t, func() bool { return s.Peers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"key","payload":{"down":true,"code":120,"ascii":120}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"joy_button","payload":{"button":99,"down":true}}`)))

	reply := readMessage(t, conn)
	assert.Equal(t, MsgError, reply.Type)
	var ep ErrorPayload
	require.NoError(t, json.Unmarshal(reply.Payload, &ep))
	assert.Contains(t, ep.Error, "out of range")

	var ev host.Event
	require.Eventually(t, func() bool { return s.PollEvent(&ev) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, host.KeyDownEvent(host.KeyX, 0, 'x'), ev)
	assert.False(t, s.PollEvent(&ev), "rejected message never reaches the ring")

	accepted, rejected := s.Stats()
	assert.Equal(t, int64(1), accepted)
	assert.Equal(t, int64(1), rejected)

	conn.Close()
	assert.Eventually(t, func() bool { return s.Peers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServerLifecycle(t *testing.T) {
	s := NewServer("", nil, nil)
	assert.Error(t, s.Init(), "address required")
	require.NoError(t, s.Init("127.0.0.1:0"))

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	addr := s.Addr()
	assert.NotEqual(t, "127.0.0.1:0", addr)

	conn := dial(t, "http://"+addr+"/input")
	assert.Equal(t, MsgHello, readMessage(t, conn).Type)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Equal(t, 0, s.Peers())
}
