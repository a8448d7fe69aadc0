package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestServer(t *testing.T, tag string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/codepet/codepet/releases/latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"v1.0.0", "v1.1.0", true},
		{"1.0.0", "v1.0.1", true},
		{"v1.2.0", "v1.2.0", false},
		{"v2.0.0", "v1.9.9", false},
		{"v1.0.0-rc.1", "v1.0.0", true},
		{DevVersion, "v9.0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			c := NewChecker(WithBaseURL(latestServer(t, tt.latest).URL))
			res, err := c.Check(context.Background(), &CheckInput{Version: tt.current})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.UpdateAvailable)
			assert.Equal(t, tt.latest, res.LatestVersion)
		})
	}
}

func TestCheckBadTag(t *testing.T) {
	c := NewChecker(WithBaseURL(latestServer(t, "nightly").URL))
	_, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	assert.Error(t, err)
}

func TestWithRepo(t *testing.T) {
	c := NewChecker(WithRepo("acme/pets"))
	assert.Equal(t, "acme", c.owner)
	assert.Equal(t, "pets", c.repo)

	c = NewChecker(WithRepo("no-slash"))
	assert.Equal(t, "codepet", c.owner)
}

func TestAssetFor(t *testing.T) {
	c := NewChecker()
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"darwin", "arm64", "codepet_Darwin_all.tar.gz", false},
		{"linux", "amd64", "codepet_Linux_x86_64.tar.gz", false},
		{"linux", "386", "codepet_Linux_i386.tar.gz", false},
		{"windows", "arm64", "codepet_Windows_arm64.zip", false},
		{"freebsd", "amd64", "", true},
		{"linux", "mips", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := c.assetFor(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	got := parseChecksums([]byte("abc  a.tar.gz\nbadline\n\nfoo bar baz\ndef  b.zip\n"))
	assert.Equal(t, map[string]string{"a.tar.gz": "abc", "b.zip": "def"}, got)
}

func TestExtractBinary(t *testing.T) {
	content := []byte("#!/bin/sh\necho codepet")

	got, err := extractBinary(buildTarGz(t, "dist/codepet", content), "codepet_Linux_x86_64.tar.gz", "codepet")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	got, err = extractBinary(buildZip(t, "codepet.exe", content), "codepet_Windows_x86_64.zip", "codepet")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = extractBinary(buildTarGz(t, "README.md", content), "codepet_Linux_x86_64.tar.gz", "codepet")
	assert.ErrorContains(t, err, "not found")
}

func TestReplaceBinaryKeepsMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "codepet")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	require.NoError(t, replaceBinary([]byte("new"), target))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestUpdate(t *testing.T) {
	c := NewChecker()
	asset, err := c.assetFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no release asset for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	content := []byte("new-codepet-binary")
	var archive []byte
	if filepath.Ext(asset) == ".zip" {
		archive = buildZip(t, "codepet.exe", content)
	} else {
		archive = buildTarGz(t, "codepet", content)
	}
	sum := sha256.Sum256(archive)

	releaseServer := func(t *testing.T, checksum string) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/repos/codepet/codepet/releases/latest":
				_, _ = w.Write([]byte(`{"tag_name":"v2.0.0"}`))
			case "/codepet/codepet/releases/download/v2.0.0/" + asset:
				_, _ = w.Write(archive)
			case "/codepet/codepet/releases/download/v2.0.0/checksums.txt":
				fmt.Fprintf(w, "%s  %s\n", checksum, asset)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	t.Run("happy path", func(t *testing.T) {
		exe := filepath.Join(t.TempDir(), "codepet")
		require.NoError(t, os.WriteFile(exe, []byte("old"), 0o755))
		srv := releaseServer(t, hex.EncodeToString(sum[:]))

		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL),
			withExecPath(func() (string, error) { return exe, nil }))
		var stages []string
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)

		got, err := os.ReadFile(exe)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		srv := releaseServer(t, "00")
		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: DevVersion}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		c := NewChecker(WithBaseURL(latestServer(t, "v2.0.0").URL))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v2.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o755, Typeflag: tar.TypeReg}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
