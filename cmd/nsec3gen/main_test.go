package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "output")
	t.Setenv("NSEC3GEN_OUTPUT", out)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	return out
}

func writeWordlist(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunGenerate(t *testing.T) {
	out := setupEnv(t)
	words := writeWordlist(t, "www", "mail", "", "api")
	metricsFile := filepath.Join(t.TempDir(), "nsec3gen.prom")

	stdout, err := runCmd(t, "generate", "-d", "google.com", "-w", words, "--no-progress", "--metrics-file", metricsFile)
	require.NoError(t, err)

	id := services.CacheIdentifier("", 0)
	assert.Contains(t, stdout, "Identifier:  "+id)
	assert.Contains(t, stdout, "3 loaded, 3 hashed, 0 skipped")

	data, err := os.ReadFile(filepath.Join(out, domain.CacheFileName(id)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"3c4z62fsbc2ukozzdsymnq6wvgbe6pb2": "www"`)
	assert.Contains(t, string(data), `"wordlist_size": 3`)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "nsec3gen_runs_total")
}

func TestRunDefaultsToGenerate(t *testing.T) {
	setupEnv(t)
	words := writeWordlist(t, "www")
	dir := t.TempDir()

	_, err := runCmd(t, "-d", "example.com", "-w", words, "-s", "DEADBEEF", "-i", "5", "-o", dir, "--store-fqdn", "--gzip", "--no-progress")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "nsec3_f91234b6a3fd0da7f7dddcd463c4d090.json.gz"))
	assert.NoError(t, err)
}

func TestRunGenerateInvalidSalt(t *testing.T) {
	out := setupEnv(t)
	words := writeWordlist(t, "www")

	_, err := runCmd(t, "generate", "-d", "example.com", "-w", words, "-s", "ABC", "--no-progress")
	assert.ErrorIs(t, err, domain.ErrInvalidSaltEncoding)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output should be written")
}

func TestRunGenerateMissingInputs(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "generate", "-w", "words.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)

	_, err = runCmd(t, "generate", "-d", "example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)

	_, err = runCmd(t, "generate", "-d", "example.com", "-w", filepath.Join(t.TempDir(), "missing.txt"), "--no-progress")
	assert.ErrorIs(t, err, domain.ErrLabelSourceUnavailable)
}

func TestRunCommon(t *testing.T) {
	out := setupEnv(t)
	words := writeWordlist(t, "www", "mail", "ftp")

	stdout, err := runCmd(t, "common", "-d", "example.com", "-w", words, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated 8 of 8 cache files")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, len(domain.DefaultPresets))
	for _, p := range domain.DefaultPresets {
		_, errStat := os.Stat(filepath.Join(out, domain.CacheFileName(services.CacheIdentifier(p.Salt, p.Iterations))))
		assert.NoError(t, errStat, p.Name)
	}
}

func TestRunCommonPresetsFile(t *testing.T) {
	out := setupEnv(t)
	words := writeWordlist(t, "www")
	presets := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(presets, []byte("presets:\n  - name: one\n    salt: AB\n    iterations: 1\n  - name: two\n    salt: \"\"\n    iterations: 2\n"), 0o600))

	stdout, err := runCmd(t, "common", "-d", "example.com", "-w", words, "--presets", presets, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[1/2] one")
	assert.Contains(t, stdout, "[2/2] two")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunPresets(t *testing.T) {
	setupEnv(t)

	stdout, err := runCmd(t, "presets")
	require.NoError(t, err)
	for _, p := range domain.DefaultPresets {
		assert.Contains(t, stdout, domain.CacheFileName(services.CacheIdentifier(p.Salt, p.Iterations)))
		assert.Contains(t, stdout, p.Name)
	}
}

func TestRunLookup(t *testing.T) {
	out := setupEnv(t)
	words := writeWordlist(t, "www", "mail")

	_, err := runCmd(t, "generate", "-d", "example.com", "-w", words, "-s", "DEADBEEF", "-i", "5", "-o", out, "--no-progress")
	require.NoError(t, err)

	stdout, err := runCmd(t, "lookup", "-s", "DEADBEEF", "-i", "5", "--name", "mail.example.com", "--name", "nope.example.com")
	require.NoError(t, err)
	assert.Contains(t, stdout, "-> mail")
	assert.Contains(t, stdout, "-> (not in cache)")

	_, err = runCmd(t, "lookup", "-s", "CAFEBABE", "-i", "10", "--name", "www.example.com")
	assert.ErrorIs(t, err, domain.ErrCacheNotFound)

	_, err = runCmd(t, "lookup")
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)
}

func TestRunLookupRejectsUnknownHashOptions(t *testing.T) {
	setupEnv(t)

	stdout, err := runCmd(t, "lookup", "--encoding", "base32hx", "--name", "www.example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)
	assert.NotContains(t, stdout, "not in cache")

	_, err = runCmd(t, "lookup", "--canonical", "txt", "--name", "www.example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)
}

func TestRunRedisOutput(t *testing.T) {
	setupEnv(t)
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	words := writeWordlist(t, "www", "mail")

	stdout, err := runCmd(t, "generate", "-d", "example.com", "-w", words, "--no-progress")
	require.NoError(t, err)
	id := services.CacheIdentifier("", 0)
	assert.Contains(t, stdout, "redis:nsec3:"+id)
	assert.True(t, mr.Exists("nsec3:"+id+":hashes"))

	stdout, err = runCmd(t, "lookup", "--source", "redis", "--name", "www.example.com")
	require.NoError(t, err)
	assert.Contains(t, stdout, "-> www")
}

func TestRunRedisUnavailable(t *testing.T) {
	setupEnv(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("REDIS_ADDR", addr)

	_, err := runCmd(t, "generate", "-d", "example.com", "-w", writeWordlist(t, "www"), "--no-progress")
	assert.Error(t, err)
}

func TestRunDownload(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 2000; i++ {
			fmt.Fprintf(w, "sub%d\n", i)
		}
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "lists")
	stdout, err := runCmd(t, "download", "-o", dir, "-s", "1k", "--mirror", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1000 labels")

	data, err := os.ReadFile(filepath.Join(dir, "subdomains-1k.txt"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 1000)

	_, err = runCmd(t, "download", "-s", "3k")
	assert.Error(t, err)
}

func TestRunHelpAndUnknown(t *testing.T) {
	setupEnv(t)

	stdout, err := runCmd(t, "help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Commands:")

	_, err = runCmd(t, "generate", "--help")
	assert.NoError(t, err)

	_, err = runCmd(t, "zonewalk")
	assert.Error(t, err)
}

func TestRunBadLogConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, err := runCmd(t, "presets")
	assert.Error(t, err)
}
