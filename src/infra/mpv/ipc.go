package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// command sends one IPC command and discards the response payload.
func (p *Player) command(cmd ...any) error {
	_, err := p.roundTrip(commandTimeout, cmd...)
	return err
}

// roundTrip dials the IPC socket, sends one command, and reads one response
// line. mpv accepts one JSON object per line; each command uses a fresh
// connection, retried until the timeout elapses so commands issued right
// after process start still land once the socket comes up.
func (p *Player) roundTrip(timeout time.Duration, cmd ...any) (map[string]any, error) {
	payload, err := json.Marshal(map[string]any{"command": cmd})
	if err != nil {
		return nil, fmt.Errorf("failed to encode IPC command: %w", err)
	}
	payload = append(payload, '\n')

	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := p.exchange(payload, deadline)
		if err == nil {
			// mpv was reached; a non-success status is a command rejection
			// and retrying the same command won't change it
			if status, _ := resp["error"].(string); status != "success" {
				return resp, fmt.Errorf("mpv rejected command: %s", status)
			}
			return resp, nil
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}
	return nil, fmt.Errorf("mpv IPC unreachable at %s: %w", p.socket, lastErr)
}

func (p *Player) exchange(payload []byte, deadline time.Time) (map[string]any, error) {
	conn, err := net.Dial("unix", p.socket)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(deadline)

	if _, err := conn.Write(payload); err != nil {
		return nil, err
	}

	// mpv may interleave event lines; take the first line carrying an
	// "error" field as the command response.
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, err
		}
		var resp map[string]any
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if _, ok := resp["error"]; ok {
			return resp, nil
		}
	}
}
