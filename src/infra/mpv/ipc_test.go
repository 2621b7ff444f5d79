package mpv

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeIPCServer answers one command per connection the way mpv does: one
// JSON object per line, possibly preceded by event lines.
func fakeIPCServer(t *testing.T, socket string, response string) net.Listener {
	t.Helper()
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", socket, err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				if _, err := reader.ReadBytes('\n'); err != nil {
					return
				}
				conn.Write([]byte(response))
			}(conn)
		}
	}()
	return ln
}

func TestRoundTripSendsCommandAndParsesResponse(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "mpv.sock")
	ln := fakeIPCServer(t, socket, "{\"data\":true,\"error\":\"success\"}\n")
	defer ln.Close()

	p := New("mpv", socket, nil)
	resp, err := p.roundTrip(time.Second, "get_property", "eof-reached")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if data, ok := resp["data"].(bool); !ok || !data {
		t.Errorf("expected data=true, got %v", resp["data"])
	}
}

func TestRoundTripSkipsEventLines(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "mpv.sock")
	response := "{\"event\":\"playback-restart\"}\n{\"data\":false,\"error\":\"success\"}\n"
	ln := fakeIPCServer(t, socket, response)
	defer ln.Close()

	p := New("mpv", socket, nil)
	resp, err := p.roundTrip(time.Second, "get_property", "eof-reached")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp["error"] != "success" {
		t.Errorf("expected the command response line, got %v", resp)
	}
}

func TestRoundTripReportsCommandRejection(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "mpv.sock")
	ln := fakeIPCServer(t, socket, "{\"error\":\"invalid parameter\"}\n")
	defer ln.Close()

	p := New("mpv", socket, nil)
	if err := p.command("set_property", "nonsense", true); err == nil {
		t.Error("expected a rejected command to surface as an error")
	}
}

func TestEOFReachedFalseWhenSocketMissing(t *testing.T) {
	p := New("mpv", filepath.Join(t.TempDir(), "missing.sock"), nil)
	if p.EOFReached() {
		t.Error("expected false with no IPC socket")
	}
}

func TestCommandEncoding(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"command": []any{"seek", 0, "absolute", "exact"}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"command":["seek",0,"absolute","exact"]}`
	if string(payload) != want {
		t.Errorf("expected %s, got %s", want, payload)
	}
}

func TestStopWithoutStartRemovesNothing(t *testing.T) {
	p := New("mpv", filepath.Join(t.TempDir(), "mpv.sock"), nil)
	if err := p.Stop(); err != nil {
		t.Fatalf("stop without a process must be a no-op, got %v", err)
	}
}

func TestStopRemovesStaleSocketFile(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "mpv.sock")
	if err := os.WriteFile(socket, nil, 0644); err != nil {
		t.Fatal(err)
	}

	p := New("mpv", socket, nil)
	if err := p.Stop(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(socket); !os.IsNotExist(err) {
		t.Error("expected the socket file to be removed")
	}
}
