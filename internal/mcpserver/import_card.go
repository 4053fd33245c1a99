package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/cardex/internal/vcard"
)

const maxImportSize = 1 << 20

var (
	vcardMIME = map[string]bool{
		"text/vcard":     true,
		"text/x-vcard":   true,
		"text/directory": true,
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

type importResult struct {
	Created bool          `json:"created"`
	Summary vcard.Summary `json:"summary"`
}

func (s *Server) importCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filename := ""
	if v, fErr := req.RequireString("filename"); fErr == nil {
		filename = v
	}

	var data []byte
	if strings.HasPrefix(rawURL, "data:") {
		data, err = decodeDataURI(rawURL)
	} else {
		data, err = fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxImportSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxImportSize)), nil
	}
	if !looksLikeVCard(data) {
		return mcp.NewToolResultError("content does not start with BEGIN:VCARD"), nil
	}

	if filename == "" {
		filename = filenameFromURL(rawURL)
	}
	filename = sanitizeFilename(filename)

	sum, created, err := s.svc.Upload(ctx, filename, data)
	if err != nil {
		return toolError(err, filename), nil
	}
	out, _ := json.Marshal(importResult{Created: created, Summary: sum})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI carrying a
// vCard.
func decodeDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	if !vcardMIME[mime] {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}

// fetchHTTP downloads a card from an http(s) URL, refusing internal hosts.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: dialControl}
	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &http.Transport{DialContext: dialer.DialContext},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "text/vcard, text/x-vcard;q=0.9, */*;q=0.1")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxImportSize {
		return nil, fmt.Errorf("file too large: exceeds %d bytes", maxImportSize)
	}
	return data, nil
}

// checkBlockedHost rejects hosts that name or resolve to an internal address.
// Every resolved address is checked.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	if ip := net.ParseIP(host); ip != nil {
		return checkBlockedIP(host, ip)
	}
	ips, lookupErr := net.LookupIP(host)
	if lookupErr != nil {
		return nil //nolint:nilerr // let http.Client handle DNS failures
	}
	for _, ip := range ips {
		if err := checkBlockedIP(host, ip); err != nil {
			return err
		}
	}
	return nil
}

func checkBlockedIP(host string, ip net.IP) error {
	switch {
	case ip.IsLoopback():
		return fmt.Errorf("blocked host: loopback address %s", host)
	case ip.IsPrivate():
		return fmt.Errorf("blocked host: private address %s", host)
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return fmt.Errorf("blocked host: link-local address %s", host)
	case ip.IsUnspecified(), ip.IsMulticast():
		return fmt.Errorf("blocked host: non-unicast address %s", host)
	}
	return nil
}

// dialControl re-checks the address actually dialed, after DNS resolution.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("blocked host: unresolved address %s", address)
	}
	return checkBlockedIP(host, ip)
}

// filenameFromURL takes the last path segment of an http(s) URL when it is
// a .vcf name and falls back to a random one.
func filenameFromURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if parsed, err := url.Parse(rawURL); err == nil {
			base := path.Base(parsed.Path)
			if strings.HasSuffix(base, vcard.Extension) {
				return base
			}
		}
	}
	return uuid.NewString() + vcard.Extension
}

// sanitizeFilename strips path separators and unsafe characters.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == vcard.Extension {
		name = uuid.NewString() + vcard.Extension
	}
	return name
}

// looksLikeVCard checks the leading bytes the way a magic-number sniff would.
func looksLikeVCard(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return bytes.HasPrefix(data, []byte("BEGIN:VCARD\r\n"))
}
