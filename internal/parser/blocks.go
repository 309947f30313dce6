package parser

import (
	"bytes"
	"strings"
)

// ExtractBlocks 只保留 @type{...} / @type(...) 块，交给 BibTeX 解析器
//
// - 块之外的文本（JabRef 的 "% Encoding: UTF-8"、导出工具写的说明行等）全部丢弃；
// - 块内字段之间的 % 注释丢弃，字段值内部的 % 原样保留；
// - @comment / @preamble 整块丢弃；
// - 裸数字字段值（year = 2020）补上花括号，末尾多余的逗号去掉，块类型名转小写；
// - 未闭合的块原样保留，由解析器报告结构错误。
func ExtractBlocks(src []byte) []byte {
	var out bytes.Buffer
	i := 0
	for i < len(src) {
		at := bytes.IndexByte(src[i:], '@')
		if at < 0 {
			break
		}
		start := i + at

		kind, open, ok := blockHeader(src, start)
		if !ok {
			i = start + 1
			continue
		}

		body, end, closed := scanBlock(src, open)
		if !closed {
			out.Write(src[start:])
			out.WriteByte('\n')
			break
		}

		switch strings.ToLower(kind) {
		case "comment", "preamble":
		default:
			out.WriteString("@" + strings.ToLower(kind))
			out.Write(src[start+1+len(kind) : open])
			out.Write(body)
			out.WriteByte('\n')
		}
		i = end
	}
	return out.Bytes()
}

// blockHeader 识别 "@type {" 形式的块头，返回类型名与左定界符位置
func blockHeader(src []byte, at int) (kind string, open int, ok bool) {
	j := at + 1
	for j < len(src) && isIdentByte(src[j]) {
		j++
	}
	if j == at+1 {
		return "", 0, false
	}
	kind = string(src[at+1 : j])
	for j < len(src) && isSpace(src[j]) {
		j++
	}
	if j >= len(src) || (src[j] != '{' && src[j] != '(') {
		return "", 0, false
	}
	return kind, j, true
}

// scanBlock 从左定界符扫描到匹配的右定界符
func scanBlock(src []byte, open int) (body []byte, end int, ok bool) {
	closeCh := byte('}')
	if src[open] == '(' {
		closeCh = ')'
	}

	var out bytes.Buffer
	out.WriteByte(src[open])
	depth, inQuote := 0, false
	for j := open + 1; j < len(src); j++ {
		c := src[j]
		if depth == 0 && !inQuote {
			switch c {
			case closeCh:
				return closeBody(out.Bytes(), c), j + 1, true
			case '%':
				nl := bytes.IndexByte(src[j:], '\n')
				if nl < 0 {
					return nil, len(src), false
				}
				j += nl
				out.WriteByte('\n')
				continue
			case '=':
				out.WriteByte(c)
				j = wrapBareNumber(&out, src, j+1) - 1
				continue
			}
		}
		switch c {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth == 0 {
				inQuote = !inQuote
			}
		}
		out.WriteByte(c)
	}
	return nil, len(src), false
}

// closeBody 去掉最后一个字段后多余的逗号并补上右定界符
func closeBody(body []byte, closeCh byte) []byte {
	trimmed := bytes.TrimRight(body, " \t\r\n")
	if len(trimmed) > 1 && trimmed[len(trimmed)-1] == ',' {
		body = append(trimmed[:len(trimmed)-1], body[len(trimmed):]...)
	}
	return append(body, closeCh)
}

// wrapBareNumber 把 "= 2020" 写成 "= {2020}"，返回继续扫描的位置
func wrapBareNumber(out *bytes.Buffer, src []byte, k int) int {
	for k < len(src) && isSpace(src[k]) {
		out.WriteByte(src[k])
		k++
	}
	n := k
	for n < len(src) && src[n] >= '0' && src[n] <= '9' {
		n++
	}
	if n == k || (n < len(src) && isIdentByte(src[n])) {
		return k
	}
	out.WriteByte('{')
	out.Write(src[k:n])
	out.WriteByte('}')
	return n
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
