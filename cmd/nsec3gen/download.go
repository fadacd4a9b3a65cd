package main

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/poyrazK/nsec3gen/internal/adapters/wordlist"
)

func (a *app) download(ctx context.Context, args []string) error {
	fs := newFlagSet("download", a.stderr)
	output := fs.StringP("output", "o", "wordlists", "output directory for wordlists")
	size := fs.StringP("size", "s", "all", "list size: 1k, 10k, 100k, or all")
	mirror := fs.String("mirror", "", "base URL serving the list files instead of SecLists")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}

	lists, err := wordlist.SelectLists(wordlist.SecLists, *size)
	if err != nil {
		return err
	}
	if *mirror != "" {
		if lists, err = mirrorLists(lists, *mirror); err != nil {
			return err
		}
	}

	results := wordlist.NewDownloader(nil, a.logger).DownloadAll(ctx, lists, *output)
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(a.stdout, "FAILED  %s: %v\n", res.List.FileName, res.Err)
			continue
		}
		fmt.Fprintf(a.stdout, "OK      %s (%d labels, %s)\n", res.Path, res.Labels, res.Size.HumanReadable())
	}
	return nil
}

func mirrorLists(lists []wordlist.List, base string) ([]wordlist.List, error) {
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid mirror: %w", err)
	}
	out := make([]wordlist.List, len(lists))
	for i, l := range lists {
		l.URL = strings.TrimSuffix(base, "/") + "/" + path.Base(l.URL)
		out[i] = l
	}
	return out, nil
}
