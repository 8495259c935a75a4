// Package radiobrowser provides a client for the community Radio Browser
// station directory API.
package radiobrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"radiodj/internal/core"
)

const (
	// discoveryHost resolves to the pool of public API mirrors.
	discoveryHost = "all.api.radio-browser.info"
	// fallbackBaseURL is used when mirror discovery fails.
	fallbackBaseURL = "https://de1.api.radio-browser.info"
	// orderVotes ranks tag searches by popularity.
	orderVotes = "votes"
)

// Station is the directory's wire representation of a station record.
type Station struct {
	UUID        string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Tags        string `json:"tags"`
	Country     string `json:"country"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
	Votes       int    `json:"votes"`
	ClickCount  int    `json:"clickcount"`
}

// Client queries the Radio Browser HTTP API.
type Client struct {
	config  *core.DirectoryConfig
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

func NewClient(config *core.DirectoryConfig, logger *zap.Logger) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DiscoverServer(context.Background(), logger)
	}

	return &Client{
		config:  config,
		logger:  logger,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
	}
}

// hostResolver is the subset of net.Resolver used for mirror discovery.
type hostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// DiscoverServer resolves the mirror pool DNS name and picks a mirror,
// falling back to a known instance when resolution fails. Mirrors replicate
// the same dataset, so any of them serves.
func DiscoverServer(ctx context.Context, logger *zap.Logger) string {
	return discoverServer(ctx, net.DefaultResolver, logger)
}

// discoverServer reverse-resolves each pool address to its mirror hostname
// and picks the first, alphabetically. The mirrors' TLS certificates are
// issued for their hostnames, so an IP-literal base URL would fail
// certificate verification on every request.
func discoverServer(ctx context.Context, resolver hostResolver, logger *zap.Logger) string {
	addrs, err := resolver.LookupHost(ctx, discoveryHost)
	if err != nil || len(addrs) == 0 {
		logger.Warn("Mirror discovery failed, using fallback",
			zap.String("fallback", fallbackBaseURL), zap.Error(err))
		return fallbackBaseURL
	}

	names := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		hosts, revErr := resolver.LookupAddr(ctx, addr)
		if revErr != nil || len(hosts) == 0 {
			logger.Debug("Mirror reverse lookup failed",
				zap.String("addr", addr), zap.Error(revErr))
			continue
		}
		names = append(names, strings.TrimSuffix(hosts[0], "."))
	}
	if len(names) == 0 {
		logger.Warn("No mirror reverse-resolved, using fallback",
			zap.String("fallback", fallbackBaseURL))
		return fallbackBaseURL
	}

	sort.Strings(names)
	server := fmt.Sprintf("https://%s", names[0])
	logger.Debug("Discovered directory mirror", zap.String("server", server))
	return server
}

// SearchByName searches stations by free-text name match. Result order is
// the service's own ranking.
func (c *Client) SearchByName(ctx context.Context, name string) ([]core.Station, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("limit", strconv.Itoa(c.config.Limit))

	return c.search(ctx, params)
}

// SearchByTag searches stations by genre tag, ordered by vote count
// descending so the top result is the most popular station of the genre.
func (c *Client) SearchByTag(ctx context.Context, tag string) ([]core.Station, error) {
	params := url.Values{}
	params.Set("tag", tag)
	params.Set("order", orderVotes)
	params.Set("reverse", "true")
	params.Set("limit", strconv.Itoa(c.config.Limit))

	return c.search(ctx, params)
}

// Click registers a station click with the directory. The directory counts
// clicks toward its popularity ranking and asks clients to report them.
func (c *Client) Click(ctx context.Context, stationUUID string) error {
	reqURL := fmt.Sprintf("%s/json/url/%s", c.baseURL, url.PathEscape(stationUUID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("click request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) search(ctx context.Context, params url.Values) ([]core.Station, error) {
	reqURL := fmt.Sprintf("%s/json/stations/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var stations []Station
	if err := json.NewDecoder(resp.Body).Decode(&stations); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]core.Station, 0, len(stations))
	for i := range stations {
		results = append(results, convertStation(&stations[i]))
	}

	c.logger.Debug("Directory search completed",
		zap.String("query", params.Encode()),
		zap.Int("results", len(results)))

	return results, nil
}

// convertStation maps the wire record to the core model. The resolved URL is
// preferred: the raw url field may point at a playlist indirection.
func convertStation(s *Station) core.Station {
	streamURL := s.URLResolved
	if streamURL == "" {
		streamURL = s.URL
	}

	return core.Station{
		UUID:      s.UUID,
		Name:      s.Name,
		StreamURL: streamURL,
		Homepage:  s.Homepage,
		Tags:      s.Tags,
		Country:   s.Country,
		Codec:     s.Codec,
		Bitrate:   s.Bitrate,
		Votes:     s.Votes,
	}
}
