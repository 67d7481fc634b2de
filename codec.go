// Reversible string compression with a safe fallback.
//
// Serialized datasets are Zstd-compressed, then Ascii85-encoded so the
// result is a printable string that can be embedded directly in a JSON
// value without escaping; the host store holds string values only.
// Ascii85 avoids the 33% overhead of base64.
//
// Persistence must never hard-fail because of the codec: compressText
// falls back to the identity result (ratio 0) when compression is
// unavailable or does not shrink the input, and decompressText returns
// its input unchanged when the data was never compressed. That
// bidirectional tolerance is what lets the envelope format carry
// mixed-version data without a per-case "is this compressed" flag.
package shelf

import (
	"bytes"
	"encoding/ascii85"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder; both are documented as safe for concurrent
// use. Allocated once because zstd encoder/decoder construction is
// expensive relative to compressing a single dataset. SpeedFastest:
// compression runs on every save of the entire dataset (hot path),
// decompression once at load.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// compressResult carries the codec output and the size accounting the
// storage-usage indicator displays. CompressedSizeBytes never exceeds
// OriginalSizeBytes: when compression would expand the input, the
// identity fallback is returned instead.
type compressResult struct {
	Data                string
	OriginalSizeBytes   int
	CompressedSizeBytes int
	RatioPercent        int // percentage saved, 0 when the fallback is active
}

// compressText compresses text to a printable string. It never fails:
// any codec fault yields the identity result.
func compressText(text string) compressResult {
	identity := compressResult{
		Data:                text,
		OriginalSizeBytes:   len(text),
		CompressedSizeBytes: len(text),
	}
	if len(text) == 0 || zstdEncoder == nil {
		return identity
	}

	compressed := zstdEncoder.EncodeAll([]byte(text), nil)

	var encoded bytes.Buffer
	enc := ascii85.NewEncoder(&encoded)
	// bytes.Buffer.Write never errors; enc.Close flushes trailing padding.
	_, _ = enc.Write(compressed)
	_ = enc.Close()

	if encoded.Len() >= len(text) {
		return identity
	}

	return compressResult{
		Data:                encoded.String(),
		OriginalSizeBytes:   len(text),
		CompressedSizeBytes: encoded.Len(),
		RatioPercent:        ratioPercent(len(text), encoded.Len()),
	}
}

// decompressText reverses compressText. Input that was never compressed
// (legacy data, or an identity fallback) fails the Ascii85 or Zstd
// decode and is returned unchanged.
func decompressText(data string) string {
	if data == "" || zstdDecoder == nil {
		return data
	}

	dec := ascii85.NewDecoder(strings.NewReader(data))
	compressed, err := io.ReadAll(dec)
	if err != nil {
		return data
	}

	out, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return data
	}
	return string(out)
}

// ratioPercent is the integer percentage saved by compression.
func ratioPercent(original, compressed int) int {
	if original <= 0 || compressed >= original {
		return 0
	}
	return int(math.Round((1 - float64(compressed)/float64(original)) * 100))
}
