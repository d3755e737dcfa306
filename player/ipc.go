package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id,omitempty"`
}

// ipcMessage is anything mpv writes back: a reply or a broadcast event.
type ipcMessage struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	RequestID int64       `json:"request_id"`
	Event     string      `json:"event"`

	// property-change
	ID   int    `json:"id"`
	Name string `json:"name"`

	// end-file
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
)

// sendCommand sends a JSON-IPC command to mpv, retrying transient connection errors.
func (m *MPV) sendCommand(command ...interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.socketPath == "" {
		return nil, ErrNotRunning
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		m.requestID++
		result, err := doSendCommand(m.socketPath, m.requestID, command)
		if err == nil {
			return result, nil
		}
		if _, ok := err.(mpvError); ok {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// mpvError is a reply mpv sent with a non-success status. It is not retried.
type mpvError string

func (e mpvError) Error() string { return "mpv error: " + string(e) }

// doSendCommand performs a single IPC round trip on a fresh connection.
// mpv broadcasts events to every client, so lines are skipped until the
// reply carrying our request id arrives.
func doSendCommand(socketPath string, requestID int64, command []interface{}) (interface{}, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: requestID})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID != requestID {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, mpvError(msg.Error)
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed")
}
