// Package kfmt provides formatted output that is safe to use before the Go
// allocator has been initialized.
package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize is large enough to hold a padded 64-bit value in base 10.
const numBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numBuf [numBufSize]byte

	// oneByte is the shared buffer used when output is emitted one
	// character at a time.
	oneByte [1]byte

	// earlyBuffer captures Printf output until an output sink is set.
	earlyBuffer ringBuffer

	// outputSink receives Printf output. While nil, output is sent to
	// earlyBuffer.
	outputSink io.Writer
)

// SetOutputSink makes w the target for Printf and flushes any output that
// was buffered while no sink was available.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuffer)
	}
}

// Printf writes formatted output to the active output sink. It supports a
// subset of the fmt verbs:
//
//	%s  string or []byte
//	%d  base 10 integer
//	%x  base 16 integer, lower-case
//	%t  bool
//	%%  a literal percent sign
//
// An optional decimal width may precede the verb. Strings and base 10
// integers are left-padded with spaces, base 16 integers with zeroes.
//
// Printf does not allocate, so it does not consult fmt.Stringer and does not
// support %v or %p.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but sends its output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex, width int
		verbFound       bool
	)

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			writeByte(w, format[i])
			continue
		}

		width, verbFound = 0, false
		for i++; i < len(format) && !verbFound; i++ {
			ch := format[i]
			switch {
			case ch >= '0' && ch <= '9':
				width = width*10 + int(ch-'0')
				continue
			case ch == '%':
				writeByte(w, '%')
			case ch == 's' || ch == 'd' || ch == 'x' || ch == 't':
				if argIndex >= len(args) {
					write(w, errMissingArg)
					break
				}
				fmtArg(w, ch, args[argIndex], width)
				argIndex++
			default:
				write(w, errNoVerb)
			}
			verbFound = true
		}

		if !verbFound {
			write(w, errNoVerb)
		}

		// the loop above already moved past the verb
		i--
	}

	for ; argIndex < len(args); argIndex++ {
		write(w, errExtraArg)
	}
}

func fmtArg(w io.Writer, verb byte, arg interface{}, width int) {
	switch verb {
	case 's':
		fmtString(w, arg, width)
	case 'd':
		fmtInt(w, arg, 10, width)
	case 'x':
		fmtInt(w, arg, 16, width)
	case 't':
		b, ok := arg.(bool)
		switch {
		case !ok:
			write(w, errWrongArgType)
		case b:
			write(w, trueValue)
		default:
			write(w, falseValue)
		}
	}
}

func fmtString(w io.Writer, arg interface{}, width int) {
	switch s := arg.(type) {
	case string:
		pad(w, ' ', width-len(s))
		// converting s to a []byte allocates
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		pad(w, ' ', width-len(s))
		write(w, s)
	default:
		write(w, errWrongArgType)
	}
}

func fmtInt(w io.Writer, arg interface{}, base uint64, width int) {
	var (
		val uint64
		neg bool
	)

	switch v := arg.(type) {
	case uint8:
		val = uint64(v)
	case uint16:
		val = uint64(v)
	case uint32:
		val = uint64(v)
	case uint64:
		val = v
	case uint:
		val = uint64(v)
	case uintptr:
		val = uint64(v)
	case int8:
		val, neg = abs(int64(v))
	case int16:
		val, neg = abs(int64(v))
	case int32:
		val, neg = abs(int64(v))
	case int64:
		val, neg = abs(v)
	case int:
		val, neg = abs(int64(v))
	default:
		write(w, errWrongArgType)
		return
	}

	if width >= numBufSize {
		width = numBufSize - 1
	}

	// digits are produced right to left
	start := numBufSize
	for {
		digit := byte(val % base)
		if digit < 10 {
			digit += '0'
		} else {
			digit += 'a' - 10
		}
		start--
		numBuf[start] = digit

		if val /= base; val == 0 {
			break
		}
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}

	if neg && padCh == ' ' {
		start--
		numBuf[start] = '-'
	}

	minStart := numBufSize - width
	if neg && padCh == '0' {
		minStart++
	}
	for ; start > minStart; start-- {
		numBuf[start-1] = padCh
	}

	if neg && padCh == '0' {
		start--
		numBuf[start] = '-'
	}

	write(w, numBuf[start:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func pad(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

func writeByte(w io.Writer, b byte) {
	oneByte[0] = b
	write(w, oneByte[:])
}

// write hides p from escape analysis. The compiler cannot prove that p does
// not escape through the io.Writer interface call and would otherwise move
// the arguments of every Printf call to the heap.
func write(w io.Writer, p []byte) {
	realWrite(w, noEscape(unsafe.Pointer(&p)))
}

func realWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
		return
	}
	earlyBuffer.Write(p)
}

// noEscape hides a pointer from escape analysis (see runtime/stubs.go).
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
