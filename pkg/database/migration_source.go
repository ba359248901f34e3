package database

import (
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// TablePrefixPlaceholder is replaced with the configured table prefix in every migration file.
const TablePrefixPlaceholder = "{{prefix}}"

var tablePrefixRE = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// NewPrefixedSource serves the migrations under path in fsys with TablePrefixPlaceholder rendered
// as prefix, so the schema matches the table names the repositories query.
func NewPrefixedSource(fsys fs.FS, path, prefix string) (source.Driver, error) {
	if !tablePrefixRE.MatchString(prefix) {
		return nil, fmt.Errorf("table prefix %q may only contain letters, digits and underscores", prefix)
	}
	return iofs.New(prefixFS{fsys: fsys, prefix: prefix}, path)
}

type prefixFS struct {
	fsys   fs.FS
	prefix string
}

func (p prefixFS) Open(name string) (fs.File, error) {
	f, err := p.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		return f, nil
	}

	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	rendered := strings.ReplaceAll(string(raw), TablePrefixPlaceholder, p.prefix)
	return &renderedFile{
		Reader: strings.NewReader(rendered),
		info:   renderedInfo{FileInfo: info, size: int64(len(rendered))},
	}, nil
}

type renderedFile struct {
	*strings.Reader
	info fs.FileInfo
}

func (f *renderedFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

func (f *renderedFile) Close() error {
	return nil
}

type renderedInfo struct {
	fs.FileInfo
	size int64
}

func (i renderedInfo) Size() int64 {
	return i.size
}
