package resp

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrames() []Frame {
	return []Frame{
		SimpleString{Value: "OK"},
		SimpleString{Value: ""},
		SimpleError{Message: "ERR unknown command 'foo'"},
		Integer{Value: 0},
		Integer{Value: 100},
		Integer{Value: -100},
		Integer{Value: math.MaxInt64},
		Integer{Value: math.MinInt64},
		Null{},
		Boolean{Value: true},
		Boolean{Value: false},
		Double{Value: 0},
		Double{Value: math.Copysign(0, -1)},
		Double{Value: 1.5},
		Double{Value: -3.25},
		Double{Value: 1.23456e8},
		Double{Value: -1.23456e-9},
		Double{Value: math.Inf(1)},
		Double{Value: math.Inf(-1)},
		Double{Value: math.NaN()},
		MustBigNumber("222"),
		MustBigNumber("-2222.122"),
		MustBigNumber("3492890328409238509324850943850943825024385"),
		NewBulkString("hello"),
		NewBulkString(""),
		NewBulkString("a\r\nb\x00c"),
		BulkNull{},
		NewArray(),
		NullArray{},
		Command("set", "key", "value"),
		NewArray(
			Integer{Value: 1},
			NewArray(SimpleString{Value: "nested"}, BulkNull{}, NullArray{}),
			Null{},
			MustBigNumber("-1.5"),
			Boolean{Value: true},
		),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range sampleFrames() {
		buf := bytes.NewBuffer(Encode(f))
		got, err := Decode(buf)
		require.NoError(t, err, "%q", Encode(f))
		assert.True(t, Equal(f, got), "want %#v, got %#v", f, got)
		assert.Zero(t, buf.Len())
	}
}

func TestStrictPrefixIsIncomplete(t *testing.T) {
	for _, f := range sampleFrames() {
		wire := Encode(f)
		for i := 0; i < len(wire); i++ {
			prefix := append([]byte(nil), wire[:i]...)
			buf := bytes.NewBuffer(append([]byte(nil), prefix...))
			_, err := Decode(buf)
			assert.ErrorIs(t, err, ErrIncomplete, "%q", prefix)
			assert.Equal(t, prefix, buf.Bytes())
		}
	}
}

func TestByteByByte(t *testing.T) {
	for _, f := range sampleFrames() {
		wire := Encode(f)
		var buf bytes.Buffer
		for i, b := range wire {
			buf.WriteByte(b)
			got, err := Decode(&buf)
			if i < len(wire)-1 {
				require.ErrorIs(t, err, ErrIncomplete)
				continue
			}
			require.NoError(t, err)
			assert.True(t, Equal(f, got))
		}
		assert.Zero(t, buf.Len())
	}
}

func TestPredictLength(t *testing.T) {
	for _, f := range sampleFrames() {
		wire := Encode(f)
		n, err := PredictLength(wire)
		require.NoError(t, err)
		assert.Equal(t, len(wire), n, "%q", wire)
	}

	// a bulk header is enough to know the span
	n, err := PredictLength([]byte("$5\r\nhe"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	_, err = PredictLength([]byte("*2\r\n$3\r\nset\r\n"))
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = PredictLength([]byte("*1\r\n$5\r\nhe"))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestEncodeScenarios(t *testing.T) {
	assert.Equal(t, ":+100\r\n", string(Encode(Integer{Value: 100})))
	assert.Equal(t, ":-100\r\n", string(Encode(Integer{Value: -100})))
	assert.Equal(t, ",+1.23456e8\r\n", string(Encode(Double{Value: 1.23456e8})))
	assert.Equal(t, "+OK\r\n", string(Encode(SimpleString{Value: "OK"})))
	assert.Equal(t, "-ERR\r\n", string(Encode(SimpleError{Message: "ERR"})))
	assert.Equal(t, "_\r\n", string(Encode(Null{})))
	assert.Equal(t, "_\r\n", string(Encode(nil)))
	assert.Equal(t, "#t\r\n", string(Encode(Boolean{Value: true})))
	assert.Equal(t, "#f\r\n", string(Encode(Boolean{Value: false})))
	assert.Equal(t, "$-1\r\n", string(Encode(BulkNull{})))
	assert.Equal(t, "*-1\r\n", string(Encode(NullArray{})))
	assert.Equal(t, "*0\r\n", string(Encode(NewArray())))
	assert.Equal(t, "(+222\r\n", string(Encode(MustBigNumber("222"))))
	assert.Equal(t, "(-2222.122\r\n", string(Encode(MustBigNumber("-2222.122"))))
	assert.Equal(t, "*2\r\n$3\r\nset\r\n$5\r\nhello\r\n", string(Encode(Command("set", "hello"))))
}

func TestEncodeSign(t *testing.T) {
	for _, v := range []int64{0, 1, 42, math.MaxInt64} {
		assert.Equal(t, byte('+'), Encode(Integer{Value: v})[1])
	}
	for _, v := range []float64{0, 1e-9, 0.5, 1, 1e8, 1e9, math.Inf(1)} {
		assert.Equal(t, byte('+'), Encode(Double{Value: v})[1], "%v", v)
	}
	for _, s := range []string{"0", "1", "0.001", "99999999999999999999999"} {
		assert.Equal(t, byte('+'), Encode(MustBigNumber(s))[1], s)
	}
}

func TestFormatDouble(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1.23456e8, "+1.23456e8"},
		{-1.23456e8, "-1.23456e8"},
		{1.23456e-9, "+1.23456e-9"},
		{-1.23456e-9, "-1.23456e-9"},
		{1e8, "+100000000"},
		{1e-8, "+0.00000001"},
		{123.456, "+123.456"},
		{-0.5, "-0.5"},
		{0, "+0e0"},
		{math.Inf(1), "+inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatDouble(c.in), "%v", c.in)
	}
}

func TestDecodeScenarios(t *testing.T) {
	buf := bytes.NewBufferString("*2\r\n$3\r\nset\r\n$5\r\nhello\r\n")
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, NewArray(NewBulkString("set"), NewBulkString("hello")), f)
	assert.Zero(t, buf.Len())

	buf = bytes.NewBufferString("$-1\r\n")
	f, err = Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, BulkNull{}, f)

	buf = bytes.NewBufferString("*-1\r\n")
	f, err = Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, NullArray{}, f)

	buf = bytes.NewBufferString("(+222\r\n")
	f, err = Decode(buf)
	require.NoError(t, err)
	assert.True(t, Equal(MustBigNumber("222"), f))

	buf = bytes.NewBufferString(",-1.23456e-9\r\n")
	f, err = Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, Double{Value: -1.23456e-9}, f)

	buf = bytes.NewBufferString(":-100\r\n")
	f, err = Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, Integer{Value: -100}, f)
}

func TestDecodeResumesAfterIncomplete(t *testing.T) {
	buf := bytes.NewBufferString("*2\r\n$3\r\nset\r\n")
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, "*2\r\n$3\r\nset\r\n", buf.String())

	buf.WriteString("$5\r\nhello\r\n")
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, NewArray(NewBulkString("set"), NewBulkString("hello")), f)
	assert.Zero(t, buf.Len())
}

func TestDecodeNestedArray(t *testing.T) {
	buf := bytes.NewBufferString("*1\r\n*1\r\n:+1\r\n")
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, NewArray(NewArray(Integer{Value: 1})), f)
	assert.Zero(t, buf.Len())
}

func TestDecodeMultipleFrames(t *testing.T) {
	buf := bytes.NewBufferString("+OK\r\n:1\r\n#f\r\n$-1\r\n*0\r\n_\r\n")
	want := []Frame{
		SimpleString{Value: "OK"},
		Integer{Value: 1},
		Boolean{Value: false},
		BulkNull{},
		NewArray(),
		Null{},
	}
	for _, w := range want {
		f, err := Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, w, f)
	}
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"?foo\r\n", ErrUnknownFrameType},
		{"%1\r\n", ErrUnknownFrameType},
		{":abc\r\n", ErrNumericFormat},
		{":1.5\r\n", ErrNumericFormat},
		{",one\r\n", ErrNumericFormat},
		{"$-2\r\n", ErrNumericFormat},
		{"$+3\r\nfoo\r\n", ErrNumericFormat},
		{"*x\r\n", ErrNumericFormat},
		{"(12a\r\n", ErrDecimalFormat},
		{"+\xff\xfe\r\n", ErrTextEncoding},
		{"-\xc3\x28\r\n", ErrTextEncoding},
		{"#x\r\n", ErrMalformedFrame},
		{"_x\r\n", ErrMalformedFrame},
		{"$3\r\nfooXY", ErrMalformedFrame},
		{"*2\r\n:1\r\n?x\r\n", ErrUnknownFrameType},
		{"*1\r\n:oops\r\n", ErrNumericFormat},
	}
	for _, c := range cases {
		buf := bytes.NewBufferString(c.in)
		_, err := Decode(buf)
		assert.ErrorIs(t, err, c.want, "%q", c.in)
		assert.True(t, IsProtocolError(err), "%q", c.in)
		assert.Equal(t, c.in, buf.String(), "buffer must be untouched")
	}
}

func TestDecodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	_, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.False(t, IsProtocolError(err))
}

func TestDecoderLimits(t *testing.T) {
	dec := NewDecoder(Limits{MaxBulkLen: 4, MaxElements: 2})

	buf := bytes.NewBufferString("$5\r\nhello\r\n")
	_, err := dec.Decode(buf)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	buf = bytes.NewBufferString("$4\r\nhell\r\n")
	f, err := dec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, NewBulkString("hell"), f)

	buf = bytes.NewBufferString("*3\r\n")
	_, err = dec.Decode(buf)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	// an oversized header is rejected before its payload arrives
	_, err = dec.PredictLength([]byte("$1000000\r\n"))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	unlimited := NewDecoder(Limits{})
	buf = bytes.NewBufferString("$5\r\nhello\r\n")
	_, err = unlimited.Decode(buf)
	assert.NoError(t, err)
}

func TestLiteral(t *testing.T) {
	n, err := literal([]byte("*-1\r\nrest"), nullArrayLiteral)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = literal([]byte("*-"), nullArrayLiteral)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = literal([]byte("*0\r\n"), nullArrayLiteral)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = literal([]byte("*-2\r\n"), nullArrayLiteral)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestLineEnd(t *testing.T) {
	_, err := lineEnd([]byte("+O"), TypeSimple)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = lineEnd([]byte("+OK\r"), TypeSimple)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = lineEnd([]byte(":OK\r\n"), TypeSimple)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	end, err := lineEnd([]byte("+OK\r\n+NO\r\n"), TypeSimple)
	require.NoError(t, err)
	assert.Equal(t, 3, end)

	end, err = lineEnd([]byte("+\r\n"), TypeSimple)
	require.NoError(t, err)
	assert.Equal(t, 1, end)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(MustBigNumber("1.50"), MustBigNumber("1.5")))
	assert.True(t, Equal(Double{Value: math.NaN()}, Double{Value: math.NaN()}))
	assert.False(t, Equal(Double{Value: 0}, Double{Value: math.Copysign(0, -1)}))
	assert.False(t, Equal(Null{}, BulkNull{}))
	assert.False(t, Equal(NewArray(), NullArray{}))
	assert.False(t, Equal(NewBulkString("a"), SimpleString{Value: "a"}))
	assert.True(t, Equal(NewArray(NewBulkString("a")), NewArray(NewBulkString("a"))))
	assert.False(t, Equal(NewArray(NewBulkString("a")), NewArray(NewBulkString("b"))))
}

func TestNewBigNumber(t *testing.T) {
	_, err := NewBigNumber("not a number")
	assert.ErrorIs(t, err, ErrDecimalFormat)

	assert.Panics(t, func() { MustBigNumber("") })
}

func TestFprint(t *testing.T) {
	var out bytes.Buffer
	err := Fprint(&out, NewArray(NewBulkString("set"), Integer{Value: 1}, NewArray(Null{})))
	require.NoError(t, err)
	assert.Equal(t, "Array (3):\n  BulkString: \"set\"\n  Integer: 1\n  Array (1):\n    Null\n", out.String())
}

func TestUnlimitedDecoderRejectsOverflowingLengths(t *testing.T) {
	dec := NewDecoder(Limits{})
	for _, in := range []string{
		"$9223372036854775807\r\n",
		"$9223372036854775790\r\nabc\r\n",
		"*1\r\n$9223372036854775807\r\n",
		"*2\r\n:1\r\n$9223372036854775807\r\n",
	} {
		buf := bytes.NewBufferString(in)
		var err error
		assert.NotPanics(t, func() { _, err = dec.Decode(buf) }, "%q", in)
		assert.ErrorIs(t, err, ErrMalformedFrame, "%q", in)
		assert.Equal(t, in, buf.String(), "buffer must be untouched")

		n, err := dec.PredictLength([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedFrame, "%q", in)
		assert.Zero(t, n)
	}
}

func TestUnlimitedDecoderLargeArrayCount(t *testing.T) {
	dec := NewDecoder(Limits{})
	buf := bytes.NewBufferString("*9223372036854775807\r\n:1\r\n")
	_, err := dec.Decode(buf)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, "*9223372036854775807\r\n:1\r\n", buf.String())
}

func deepArray(depth int) []byte {
	return []byte(strings.Repeat("*1\r\n", depth) + ":1\r\n")
}

func TestDecodeDeepNesting(t *testing.T) {
	const depth = 20000
	wire := deepArray(depth)

	start := time.Now()
	buf := bytes.NewBuffer(wire)
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Zero(t, buf.Len())
	// linear work finishes in milliseconds; nested re-measurement took seconds
	assert.Less(t, time.Since(start), 2*time.Second)

	for i := 0; i < depth; i++ {
		arr, ok := f.(Array)
		require.True(t, ok, "level %d", i)
		require.Len(t, arr.Elements, 1)
		f = arr.Elements[0]
	}
	assert.Equal(t, Integer{Value: 1}, f)

	// a truncated deep frame is still incomplete and untouched
	buf = bytes.NewBuffer(wire[:len(wire)-1])
	_, err = Decode(buf)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, len(wire)-1, buf.Len())
}

func BenchmarkDecodeDeepNesting(b *testing.B) {
	wire := deepArray(10000)
	b.SetBytes(int64(len(wire)))
	for i := 0; i < b.N; i++ {
		if _, err := Decode(bytes.NewBuffer(wire)); err != nil {
			b.Fatal(err)
		}
	}
}

func TestEncodeTextStaysOnOneLine(t *testing.T) {
	assert.Equal(t, "+a  b\r\n", string(Encode(SimpleString{Value: "a\r\nb"})))
	assert.Equal(t, "-ERR x y\r\n", string(Encode(SimpleError{Message: "ERR x\ny"})))

	buf := bytes.NewBuffer(Encode(SimpleString{Value: "one\rtwo\nthree"}))
	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, SimpleString{Value: "one two three"}, f)
	assert.Zero(t, buf.Len())
}
