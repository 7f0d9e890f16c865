package source

// reader.go provides streaming readers that clean up text input before it
// reaches the CSV and JSON decoders:
//
//   - skipBOM: Removes the UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools
//   - utf8Sanitizer: Replaces invalid UTF-8 bytes with '?'
//
// Use wrapInput to apply both in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader that omits a leading UTF-8 BOM, if present.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(utf8BOM))
	if bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes on the
// fly, using O(buffer) memory regardless of input size.
type utf8Sanitizer struct {
	reader io.Reader

	// Leftover bytes from the previous read that may begin a multi-byte rune
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		// Too small to hold a held-back rune plus progress.
		buf := make([]byte, utf8.UTFMax)
		n, err := s.Read(buf)
		if n > len(p) {
			s.pending = append(buf[len(p):n:n], s.pending...)
			n = len(p)
		}
		copy(p, buf[:n])
		return n, err
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes to hand
// out. Unless atEOF, a trailing incomplete rune is held back in pending.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			// '?' keeps the output no longer than the input.
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// wrapInput strips the BOM first, then sanitizes what remains.
func wrapInput(r io.Reader) io.Reader {
	return newUTF8Sanitizer(skipBOM(r))
}
