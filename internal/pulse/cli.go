// Package pulse talks to the PulseAudio daemon over its textual CLI control
// socket. Every operation opens its own connection bounded by a fixed
// deadline; nothing is pooled.
package pulse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"radiodj/internal/core"
)

const (
	// VolumeNorm is the daemon's 100% volume scalar (PA_VOLUME_NORM).
	VolumeNorm = 65536

	// SinkNotFound is returned when no sink input matches; callers treat it
	// as a normal, non-fatal outcome.
	SinkNotFound = -1

	cmdListSinkInputs = "list-sink-inputs\n"
)

var (
	indexRegex  = regexp.MustCompile(`index: (\d+)`)
	volumeRegex = regexp.MustCompile(`volume: [^:]*: (\d+)`)
)

// Client issues commands against the PulseAudio CLI socket.
type Client struct {
	config *core.PulseConfig
	logger *zap.Logger
}

func NewClient(config *core.PulseConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// SocketPath returns the configured CLI socket path, or the conventional
// per-user runtime location when unset. The socket exists once
// module-cli-protocol-unix is loaded in the daemon.
func (c *Client) SocketPath() string {
	if c.config.SocketPath != "" {
		return c.config.SocketPath
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pulse", "cli")
	}
	return "/run/pulse/cli"
}

// FindSinkInput lists the daemon's sink inputs and scans the textual output
// for a block whose application.name contains appName, returning its index.
// The read is bounded by the configured socket deadline; a deadline expiring
// mid-scan silently ends the scan and returns whatever was found, or
// SinkNotFound.
func (c *Client) FindSinkInput(ctx context.Context, appName string) (int, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return SinkNotFound, err
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.Write([]byte(cmdListSinkInputs)); err != nil {
		return SinkNotFound, fmt.Errorf("failed to write list command: %w", err)
	}

	sinkInput, err := scanForSinkInput(conn, appName)
	if err != nil {
		return SinkNotFound, err
	}

	c.logger.Debug("Sink input scan finished",
		zap.String("app", appName),
		zap.Int("sinkInput", sinkInput))

	return sinkInput, nil
}

// scanForSinkInput scans a list-sink-inputs response for a block whose
// application.name contains appName. A deadline mid-scan is the normal way a
// full listing ends; any other read failure is reported.
func scanForSinkInput(conn net.Conn, appName string) (int, error) {
	sinkInput := SinkNotFound
	indexID := SinkNotFound

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()

		if matches := indexRegex.FindStringSubmatch(line); len(matches) > 1 {
			if id, convErr := strconv.Atoi(matches[1]); convErr == nil {
				indexID = id
			}
		}

		if indexID > SinkNotFound && strings.Contains(line, "application.name") &&
			strings.Contains(line, appName) {
			return indexID, nil
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		return SinkNotFound, fmt.Errorf("sink input listing read failed: %w", err)
	}

	return sinkInput, nil
}

// SinkInputVolume reads the current flattened volume scalar of a sink input.
// Returns SinkNotFound when the index does not appear in the listing.
func (c *Client) SinkInputVolume(ctx context.Context, index int) (int, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return SinkNotFound, err
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.Write([]byte(cmdListSinkInputs)); err != nil {
		return SinkNotFound, fmt.Errorf("failed to write list command: %w", err)
	}

	return readVolumeForIndex(conn, index)
}

// SetSinkInputVolume force-sets a sink input's volume to the given fraction
// of full scale. The current descriptor is fetched first (the get half of
// the daemon's get/set pair) but the written scalar depends only on the
// requested fraction.
func (c *Client) SetSinkInputVolume(ctx context.Context, index int, fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.Write([]byte(cmdListSinkInputs)); err != nil {
		return fmt.Errorf("failed to write list command: %w", err)
	}

	prior, err := readVolumeForIndex(conn, index)
	if err != nil {
		return err
	}
	c.logger.Debug("Overwriting sink input volume",
		zap.Int("sinkInput", index),
		zap.Int("prior", prior),
		zap.Float64("fraction", fraction))

	value := int(math.Round(fraction * VolumeNorm))
	cmd := fmt.Sprintf("set-sink-input-volume %d %d\n", index, value)
	if _, err := conn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("failed to write volume command: %w", err)
	}

	return nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.config.Timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.SocketPath())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audio daemon: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(c.config.Timeout)); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// readVolumeForIndex scans a list-sink-inputs response for the volume line
// of the given index. The scan ends at the first match, EOF or the socket
// deadline; any other read failure is reported.
func readVolumeForIndex(conn net.Conn, index int) (int, error) {
	indexID := SinkNotFound

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()

		if matches := indexRegex.FindStringSubmatch(line); len(matches) > 1 {
			if id, convErr := strconv.Atoi(matches[1]); convErr == nil {
				indexID = id
			}
		}

		if indexID == index {
			if matches := volumeRegex.FindStringSubmatch(line); len(matches) > 1 {
				if vol, convErr := strconv.Atoi(matches[1]); convErr == nil {
					return vol, nil
				}
			}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		return SinkNotFound, fmt.Errorf("sink input listing read failed: %w", err)
	}

	return SinkNotFound, nil
}
