package fileparse

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/dat2003as/ragAIFullStack/internal/domain"
	"github.com/dat2003as/ragAIFullStack/internal/tabular"
)

// CSVParser parses uploaded CSV files and loads CSVs straight from URLs.
type CSVParser struct {
	MaxRows int
	Client  *http.Client
}

// NewCSVParser returns a parser capped at maxRows data rows.
func NewCSVParser(maxRows int, client *http.Client) *CSVParser {
	if client == nil {
		client = http.DefaultClient
	}
	return &CSVParser{MaxRows: maxRows, Client: client}
}

// ParseFile parses the CSV at path.
func (p *CSVParser) ParseFile(filePath string) (*tabular.Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	t, err := tabular.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.MaxRows > 0 && t.RowCount() > p.MaxRows {
		return nil, fmt.Errorf("%w: csv has %d rows, max %d", domain.ErrValidation, t.RowCount(), p.MaxRows)
	}
	return t, nil
}

// LoadURL fetches and parses a CSV from a URL, returning the table and a
// filename derived from the URL path. GitHub blob URLs are rewritten to
// their raw form first.
func (p *CSVParser) LoadURL(ctx context.Context, rawURL string) (*tabular.Table, string, error) {
	url := rewriteGitHubURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad url: %v", domain.ErrValidation, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: fetch csv: status %d", domain.ErrValidation, resp.StatusCode)
	}

	t, err := tabular.Parse(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.MaxRows > 0 && t.RowCount() > p.MaxRows {
		return nil, "", fmt.Errorf("%w: csv has %d rows, max %d", domain.ErrValidation, t.RowCount(), p.MaxRows)
	}

	name := path.Base(strings.TrimSuffix(url, "/"))
	if name == "" || name == "." || name == "/" {
		name = "remote.csv"
	}
	return t, name, nil
}

// rewriteGitHubURL converts github.com blob links into raw content links so
// they fetch the file body instead of the HTML page.
func rewriteGitHubURL(url string) string {
	if strings.Contains(url, "github.com") && strings.Contains(url, "/blob/") {
		url = strings.Replace(url, "github.com", "raw.githubusercontent.com", 1)
		url = strings.Replace(url, "/blob/", "/", 1)
	}
	return url
}
