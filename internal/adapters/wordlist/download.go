package wordlist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/google/renameio/v2"
)

// List is a downloadable wordlist.
type List struct {
	Size     string
	URL      string
	Limit    int
	FileName string
}

const secListsBase = "https://raw.githubusercontent.com/danielmiessler/SecLists/master/Discovery/DNS/"

// SecLists are the subdomain lists published by the SecLists project,
// truncated to the most popular entries.
var SecLists = []List{
	{Size: "1k", URL: secListsBase + "subdomains-top1million-5000.txt", Limit: 1000, FileName: "subdomains-1k.txt"},
	{Size: "10k", URL: secListsBase + "subdomains-top1million-20000.txt", Limit: 10000, FileName: "subdomains-10k.txt"},
	{Size: "100k", URL: secListsBase + "subdomains-top1million-110000.txt", Limit: 100000, FileName: "subdomains-100k.txt"},
}

// SelectLists returns the lists matching size, which is one of the list
// sizes or "all".
func SelectLists(lists []List, size string) ([]List, error) {
	if size == "all" {
		return lists, nil
	}
	for _, l := range lists {
		if l.Size == size {
			return []List{l}, nil
		}
	}
	sizes := make([]string, 0, len(lists))
	for _, l := range lists {
		sizes = append(sizes, l.Size)
	}
	return nil, fmt.Errorf("unknown wordlist size %q (want %s or all)", size, strings.Join(sizes, ", "))
}

// DownloadResult reports one list.
type DownloadResult struct {
	List   List
	Path   string
	Labels int
	Size   datasize.ByteSize
	Err    error
}

// Downloader fetches wordlists over HTTP.
type Downloader struct {
	client *http.Client
	logger *slog.Logger
}

func NewDownloader(client *http.Client, logger *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, logger: logger}
}

// DownloadAll fetches every list into dir. A failing list is reported in
// its result and does not stop the others.
func (d *Downloader) DownloadAll(ctx context.Context, lists []List, dir string) []DownloadResult {
	results := make([]DownloadResult, 0, len(lists))
	for _, l := range lists {
		res := d.Download(ctx, l, dir)
		if res.Err != nil {
			d.logger.Error("wordlist download failed", "list", l.FileName, "error", res.Err)
		} else {
			d.logger.Info("wordlist downloaded",
				"list", l.FileName,
				"labels", res.Labels,
				"size", res.Size.HumanReadable(),
			)
		}
		results = append(results, res)
	}
	return results
}

// Download fetches one list, keeps its first Limit labels, and writes them
// to dir atomically.
func (d *Downloader) Download(ctx context.Context, l List, dir string) DownloadResult {
	res := DownloadResult{List: l, Path: filepath.Join(dir, l.FileName)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		res.Err = err
		return res
	}

	resp, err := d.client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("fetching %s: unexpected status %s", l.URL, resp.Status)
		return res
	}

	labels, err := ReadLabels(ctx, resp.Body, l.Limit)
	if err != nil {
		res.Err = err
		return res
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		res.Err = err
		return res
	}

	data := []byte(strings.Join(labels, "\n"))
	if err := renameio.WriteFile(res.Path, data, 0o644); err != nil {
		res.Err = err
		return res
	}

	res.Labels = len(labels)
	res.Size = datasize.ByteSize(len(data))
	return res
}
