// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fetch downloads a single definition file from a go-getter source.
// See https://github.com/hashicorp/go-getter for the address syntax.
//
// Plain files and URLs are fetched as they are. An address with a "//" subdir
// (e.g. git::https://host/org/repo//defs/commands.yaml?ref=v1) fetches the
// directory and reads the named file from it.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
)

// MaxDocumentSize is the largest definition file accepted.
const MaxDocumentSize = 1 << 20

var (
	// ErrFetch is returned when the source cannot be retrieved.
	ErrFetch = errors.New("failed to fetch definition file")
	// ErrNotYAML is returned when the source does not name a YAML file.
	ErrNotYAML = errors.New("definition source must name a .yaml or .yml file")
	// ErrTooLarge is returned when the fetched file exceeds MaxDocumentSize.
	ErrTooLarge = errors.New("definition file is too large")
)

const subdirSeparator = "//"

// source is an address split for go-getter.
type source struct {
	addr string
	mode getter.Mode
	file string // read from the fetched directory; empty in file mode
}

// Get retrieves the definition file at addr. Relative local paths are
// resolved against wd. Only .yaml and .yml files are fetched.
func Get(ctx context.Context, addr, wd string) ([]byte, error) {
	src, err := parseSource(addr, wd)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "commands-wrapper-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src.addr,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: src.mode,
		Copy:    true,
	}

	ctxlog.Debug(ctx, "fetching definition file", "src", src.addr, "file", src.file)

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	file := res.Dst
	if src.file != "" {
		file = filepath.Join(res.Dst, filepath.FromSlash(src.file))
	}

	return readLimited(file)
}

// parseSource decides how addr is fetched and rejects anything that is not a
// YAML file before any download starts.
func parseSource(addr, wd string) (source, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return source{}, fmt.Errorf("%w: empty source", ErrFetch)
	}

	var (
		src  = source{addr: addr, mode: getter.ModeFile}
		name string
	)

	local, err := getter.Detect(&getter.Request{Src: addr, Pwd: wd}, &getter.FileGetter{})

	switch {
	case err != nil:
		return source{}, errors.Join(ErrFetch, err)
	case local:
		name = filepath.Base(addr)
	default:
		if dir, file, ok := splitSubdir(addr); ok {
			src = source{addr: dir, mode: getter.ModeDir, file: file}
			name = file
		} else {
			name = remoteFileName(addr)
		}
	}

	if !isYAML(name) {
		return source{}, fmt.Errorf("%w: %s", ErrNotYAML, addr)
	}

	return src, nil
}

// splitSubdir moves the file name of a "//" subdir out of addr, keeping any
// query on the directory address.
func splitSubdir(addr string) (string, string, bool) {
	rest, query, _ := strings.Cut(addr, "?")

	i := strings.LastIndex(rest, subdirSeparator)
	if i < 0 || strings.HasSuffix(rest[:i], ":") {
		return "", "", false
	}

	repo, subdir := rest[:i], strings.Trim(rest[i+len(subdirSeparator):], "/")
	if subdir == "" {
		return "", "", false
	}

	dir := path.Dir(subdir)
	if dir != "." {
		repo += subdirSeparator + dir
	}

	if query != "" {
		repo += "?" + query
	}

	return repo, path.Base(subdir), true
}

func remoteFileName(addr string) string {
	rest, _, _ := strings.Cut(addr, "?")
	return path.Base(rest)
}

func isYAML(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}

	return false
}

func readLimited(file string) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxDocumentSize)
	}

	return data, nil
}
