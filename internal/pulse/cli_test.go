package pulse

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"radiodj/internal/core"
)

const listSinkInputsTranscript = `2 sink input(s) available.
    index: 3
	driver: <protocol-native.c>
	state: RUNNING
	volume: front-left: 65536 / 100%,   front-right: 65536 / 100%
	properties:
		application.name = "Firefox"
    index: 7
	driver: <protocol-native.c>
	state: RUNNING
	volume: front-left: 52428 /  80%,   front-right: 52428 /  80%
	properties:
		application.name = "VLC media player (LibVLC 3.0.20)"
`

// startFakeDaemon serves the CLI protocol on a unix socket, invoking handler
// for every connection.
func startFakeDaemon(t *testing.T, handler func(conn net.Conn)) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cli")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to listen on unix socket: %v", err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})

	go func() {
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}
			go handler(conn)
		}
	}()

	return path
}

func testClient(path string, timeout time.Duration) *Client {
	return NewClient(&core.PulseConfig{SocketPath: path, Timeout: timeout}, zap.NewNop())
}

func TestClient_FindSinkInput(t *testing.T) {
	path := startFakeDaemon(t, func(conn net.Conn) {
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		_, _ = conn.Write([]byte(listSinkInputsTranscript))
	})

	client := testClient(path, time.Second)

	index, err := client.FindSinkInput(context.Background(), "VLC")
	if err != nil {
		t.Fatalf("FindSinkInput() error = %v", err)
	}
	if index != 7 {
		t.Errorf("FindSinkInput() = %d, want 7 (the VLC block, not Firefox's)", index)
	}
}

func TestClient_FindSinkInput_NotFound(t *testing.T) {
	path := startFakeDaemon(t, func(conn net.Conn) {
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		transcript := strings.ReplaceAll(listSinkInputsTranscript, "VLC media player (LibVLC 3.0.20)", "mpv")
		_, _ = conn.Write([]byte(transcript))
	})

	client := testClient(path, time.Second)

	index, err := client.FindSinkInput(context.Background(), "VLC")
	if err != nil {
		t.Fatalf("FindSinkInput() error = %v", err)
	}
	if index != SinkNotFound {
		t.Errorf("FindSinkInput() = %d, want %d", index, SinkNotFound)
	}
}

func TestClient_FindSinkInput_TimeoutEndsScan(t *testing.T) {
	path := startFakeDaemon(t, func(conn net.Conn) {
		// Write a partial listing and hold the connection open so the
		// client's read deadline ends the scan.
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		_, _ = conn.Write([]byte("    index: 3\n\t\tapplication.name = \"Firefox\"\n"))
		time.Sleep(500 * time.Millisecond)
		_ = conn.Close()
	})

	client := testClient(path, 100*time.Millisecond)

	start := time.Now()
	index, err := client.FindSinkInput(context.Background(), "VLC")
	if err != nil {
		t.Fatalf("FindSinkInput() error = %v", err)
	}
	if index != SinkNotFound {
		t.Errorf("FindSinkInput() = %d, want %d after timeout", index, SinkNotFound)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("FindSinkInput() blocked %v, deadline should bound the scan", elapsed)
	}
}

func TestScanForSinkInput_ReadErrorReported(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	// Reading a locally closed connection fails with something other than a
	// deadline; that must surface instead of posing as "not found".
	_ = local.Close()

	if _, err := scanForSinkInput(local, "VLC"); err == nil {
		t.Error("scanForSinkInput() expected error on broken connection, got nil")
	}
}

func TestScanForSinkInput_DeadlineIsNotAnError(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	defer local.Close()

	if err := local.SetReadDeadline(time.Now().Add(10 * time.Millisecond)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}

	index, err := scanForSinkInput(local, "VLC")
	if err != nil {
		t.Fatalf("scanForSinkInput() error = %v, deadline must end the scan silently", err)
	}
	if index != SinkNotFound {
		t.Errorf("scanForSinkInput() = %d, want %d", index, SinkNotFound)
	}
}

func TestReadVolumeForIndex_ReadErrorReported(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	_ = local.Close()

	if _, err := readVolumeForIndex(local, 7); err == nil {
		t.Error("readVolumeForIndex() expected error on broken connection, got nil")
	}
}

func TestClient_FindSinkInput_NoDaemon(t *testing.T) {
	client := testClient(filepath.Join(t.TempDir(), "missing"), 100*time.Millisecond)

	if _, err := client.FindSinkInput(context.Background(), "VLC"); err == nil {
		t.Error("FindSinkInput() expected connection error, got nil")
	}
}

func TestClient_SinkInputVolume(t *testing.T) {
	path := startFakeDaemon(t, func(conn net.Conn) {
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		_, _ = conn.Write([]byte(listSinkInputsTranscript))
	})

	client := testClient(path, time.Second)

	volume, err := client.SinkInputVolume(context.Background(), 7)
	if err != nil {
		t.Fatalf("SinkInputVolume() error = %v", err)
	}
	if volume != 52428 {
		t.Errorf("SinkInputVolume() = %d, want 52428", volume)
	}
}

func TestClient_SetSinkInputVolume(t *testing.T) {
	commands := make(chan string, 1)
	path := startFakeDaemon(t, func(conn net.Conn) {
		defer conn.Close()
		reader := bufio.NewReader(conn)
		if _, err := reader.ReadString('\n'); err != nil {
			return
		}
		_, _ = conn.Write([]byte(listSinkInputsTranscript))
		cmd, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		commands <- cmd
	})

	client := testClient(path, time.Second)

	if err := client.SetSinkInputVolume(context.Background(), 7, 0.6); err != nil {
		t.Fatalf("SetSinkInputVolume() error = %v", err)
	}

	select {
	case cmd := <-commands:
		// The written scalar depends only on the requested fraction, not on
		// the 80% the daemon reported.
		expected := "set-sink-input-volume 7 39322\n"
		if cmd != expected {
			t.Errorf("daemon received %q, want %q", cmd, expected)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never received the volume command")
	}
}

func TestClient_SetSinkInputVolume_ClampsFraction(t *testing.T) {
	commands := make(chan string, 1)
	path := startFakeDaemon(t, func(conn net.Conn) {
		defer conn.Close()
		reader := bufio.NewReader(conn)
		if _, err := reader.ReadString('\n'); err != nil {
			return
		}
		_, _ = conn.Write([]byte(listSinkInputsTranscript))
		cmd, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		commands <- cmd
	})

	client := testClient(path, time.Second)

	if err := client.SetSinkInputVolume(context.Background(), 7, 1.5); err != nil {
		t.Fatalf("SetSinkInputVolume() error = %v", err)
	}

	select {
	case cmd := <-commands:
		expected := "set-sink-input-volume 7 65536\n"
		if cmd != expected {
			t.Errorf("daemon received %q, want %q", cmd, expected)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never received the volume command")
	}
}
