package rc

import (
	"bufio"
	"io"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// CollectText drains a source of Unicode scalar values into a single
// shared block of UTF-8 text.
//
// Each scalar is encoded before the capacity check, and the check
// reserves the full encoded length, so a multi-byte encoding is never
// split across a growth step. Scalars outside the valid range (surrogates,
// > U+10FFFF) encode as U+FFFD, the utf8 package convention; a source
// that only hands out valid scalars never hits that path.
//
// Size hints count scalars. The planner treats them as byte counts, which
// is exact for ASCII and a lower bound otherwise; multi-byte text past
// the hint grows the block as usual. Error, panic and empty-source
// behavior match Collect.
func CollectText(src Source[rune]) (Str, error) {
	if src == nil {
		return Str{}, ErrNilSource
	}
	lower, upper, upperKnown := src.SizeHint()

	var (
		base     unsafe.Pointer
		capBytes int
		written  int
		done     bool
	)
	defer func() {
		if done || base == nil {
			return
		}
		freeBlock(base) // bytes need no per-element teardown
	}()

	var buf [utf8.UTFMax]byte
	for src.Next() {
		n := utf8.EncodeRune(buf[:], src.Value())
		if base == nil {
			capBytes = planCapacity(lower, upper, upperKnown, 1)
			if capBytes < n {
				capBytes = n
			}
			base = allocBlock(capBytes)
		} else if written+n > capBytes {
			next := capBytes * 2
			for next < written+n {
				next *= 2
			}
			base = growBlock(base, written, next)
			capBytes = next
		}
		dst := unsafe.Slice((*byte)(payloadAt(base)), capBytes)
		copy(dst[written:written+n], buf[:n])
		written += n
	}
	if err := src.Err(); err != nil {
		return Str{}, err
	}
	if base == nil {
		done = true
		return Str{base: sentinelBase()}, nil
	}

	done = true
	return Str{base: finalize(base), n: written}, nil
}

// StringSource returns a rune source over the scalars of s. The hint's
// upper bound is len(s): a string never holds more scalars than bytes,
// and for ASCII the bound is exact, so the common build is a single
// allocation with no slack.
func StringSource(s string) Source[rune] {
	return &stringSource{s: s}
}

type stringSource struct {
	s   string
	i   int
	cur rune
}

func (ss *stringSource) Next() bool {
	if ss.i >= len(ss.s) {
		return false
	}
	r, size := utf8.DecodeRuneInString(ss.s[ss.i:])
	ss.cur = r
	ss.i += size
	return true
}

func (ss *stringSource) Value() rune { return ss.cur }
func (ss *stringSource) Err() error  { return nil }

func (ss *stringSource) SizeHint() (int, int, bool) {
	return 0, len(ss.s) - ss.i, true
}

// DecodeSource returns a rune source that decodes r through enc, letting
// CollectText build UTF-8 text straight from foreign-encoded input
// (UTF-16 exports, legacy codepages) in one pass. Read and decode errors
// abort the build and surface unchanged from CollectText.
func DecodeSource(r io.Reader, enc encoding.Encoding) Source[rune] {
	return &decodeSource{br: bufio.NewReader(transform.NewReader(r, enc.NewDecoder()))}
}

type decodeSource struct {
	br  *bufio.Reader
	cur rune
	err error
}

func (d *decodeSource) Next() bool {
	if d.err != nil {
		return false
	}
	r, _, err := d.br.ReadRune()
	if err != nil {
		if err != io.EOF {
			d.err = err
		}
		return false
	}
	d.cur = r
	return true
}

func (d *decodeSource) Value() rune { return d.cur }
func (d *decodeSource) Err() error  { return d.err }

func (d *decodeSource) SizeHint() (int, int, bool) { return 0, 0, false }
