package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/sanjanaganesh14/survis/internal/model"
)

// ErrFileNotFound 文献文件不存在
var ErrFileNotFound = errors.New("bibliography file not found")

// ParseError 文献文件结构错误（由 BibTeX 解析器返回）
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse bibliography failed: %v", e.Err)
	}
	return fmt.Sprintf("parse bibliography %s failed: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadFile 读取并解析 BibTeX 文件，按文件顺序返回文献记录
func LoadFile(path string) ([]model.BibEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open bibliography failed: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return entries, nil
}

// Parse 从 reader 解析 BibTeX 文档
// 条目之外的文本、% 注释以及 @preamble / @comment 均被忽略，不作为文献记录返回
func Parse(r io.Reader) ([]model.BibEntry, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bibliography failed: %w", err)
	}

	bib, err := bibtex.Parse(bytes.NewReader(ExtractBlocks(src)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	entries := make([]model.BibEntry, 0, len(bib.Entries))
	for _, e := range bib.Entries {
		if e == nil {
			continue
		}
		entries = append(entries, toEntry(e))
	}
	return entries, nil
}

func toEntry(e *bibtex.BibEntry) model.BibEntry {
	out := make(model.BibEntry, len(e.Fields))
	for name, value := range e.Fields {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || value == nil {
			continue
		}
		out[key] = NormalizeValue(value.String())
	}
	return out
}

// NormalizeValue 去除字段值两侧的空白、花括号与引号
func NormalizeValue(v string) string {
	v = strings.TrimSpace(v)
	for len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		inner := v[1 : len(v)-1]
		if (first == '{' && last == '}' && bracesBalanced(inner)) || (first == '"' && last == '"') {
			v = strings.TrimSpace(inner)
			continue
		}
		break
	}
	return v
}

// bracesBalanced "{A} and {B}" 这类值不能整体去括号
func bracesBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
