// Versioned envelope around a serialized dataset.
//
// Three stored-value shapes exist in the wild and decodeValue must
// classify every input as exactly one of them:
//
//	compressed-v1  {"compressed":…,"version":"v1","data":…,"metadata":…}
//	legacy         a bare {"articles":…,"highlightData":…,"timestamp":…}
//	legacy-raw     anything that does not parse as structured data
//
// The format is an explicit discriminated type so the three decode
// branches are exhaustively checked. Misclassification would corrupt
// a user's entire dataset, so it cannot be left to duck typing on
// object shape.
package shelf

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Format identifies which stored-value shape a decode matched.
type Format int

const (
	FormatCompressedV1 Format = iota // current envelope, codec payload
	FormatLegacy                     // bare dataset object, pre-envelope
	FormatLegacyRaw                  // unparseable, best-effort recovery
)

// envelopeVersion tags values written by the current format.
const envelopeVersion = "v1"

// Metadata versions synthesized for pre-envelope values.
const (
	versionLegacy    = "legacy"
	versionLegacyRaw = "legacy-raw"
)

// Metadata describes one stored value: its format version, when it was
// written, and the size accounting for the storage-usage indicator.
// CompressedSizeBytes <= OriginalSizeBytes always; they are equal (and
// RatioPercent is 0) when the codec fallback was active or the value
// predates the envelope format.
type Metadata struct {
	Version             string `json:"version"`
	Timestamp           int64  `json:"timestamp"` // unix seconds
	OriginalSizeBytes   int    `json:"originalSizeBytes"`
	CompressedSizeBytes int    `json:"compressedSizeBytes"`
	RatioPercent        int    `json:"ratioPercent"`
}

// envelope is the wire shape of a current-format stored value.
type envelope struct {
	Compressed bool     `json:"compressed"`
	Version    string   `json:"version"`
	Data       string   `json:"data"`
	Metadata   Metadata `json:"metadata"`
}

// envelopeProbe detects the wrapper without committing to it. The
// pointer field distinguishes "compressed":false from a bare dataset,
// which has no "compressed" key at all.
type envelopeProbe struct {
	Compressed *bool  `json:"compressed"`
	Version    string `json:"version"`
}

// decodeResult is the fully classified outcome of decoding one stored
// value. Dataset is never nil; for legacy-raw it is empty and Raw keeps
// the original string so nothing the user saved is discarded.
type decodeResult struct {
	Dataset  *Dataset
	Metadata Metadata
	Format   Format
	Raw      string
}

// encodeValue wraps a serialized dataset in the current envelope. When
// useCompression is false the payload is stored verbatim with ratio 0.
func encodeValue(serialized []byte, useCompression bool) (string, Metadata, error) {
	meta := Metadata{
		Version:             envelopeVersion,
		Timestamp:           time.Now().Unix(),
		OriginalSizeBytes:   len(serialized),
		CompressedSizeBytes: len(serialized),
	}

	env := envelope{
		Compressed: useCompression,
		Version:    envelopeVersion,
		Data:       string(serialized),
	}
	if useCompression {
		res := compressText(string(serialized))
		env.Data = res.Data
		meta.CompressedSizeBytes = res.CompressedSizeBytes
		meta.RatioPercent = res.RatioPercent
	}
	env.Metadata = meta

	out, err := json.Marshal(env)
	if err != nil {
		return "", Metadata{}, err
	}
	return string(out), meta, nil
}

// decodeValue classifies a stored value and recovers the dataset. It
// never fails: inputs that match no known shape degrade to legacy-raw
// with an empty dataset and the raw string preserved.
func decodeValue(raw string) decodeResult {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") {
		// Current format: the value parses and carries the envelope
		// keys. A value that claims the envelope but whose payload
		// cannot be recovered falls through to legacy-raw: it must
		// not be mistaken for a bare (empty) dataset, or a later
		// migration would overwrite it.
		var probe envelopeProbe
		isEnvelope := json.Unmarshal([]byte(trimmed), &probe) == nil &&
			probe.Compressed != nil && probe.Version == envelopeVersion

		if isEnvelope {
			var env envelope
			if err := json.Unmarshal([]byte(trimmed), &env); err == nil {
				payload := env.Data
				if env.Compressed {
					payload = decompressText(payload)
				}
				var ds Dataset
				if err := json.Unmarshal([]byte(payload), &ds); err == nil {
					return decodeResult{
						Dataset:  &ds,
						Metadata: env.Metadata,
						Format:   FormatCompressedV1,
						Raw:      raw,
					}
				}
			}
		} else {
			// Legacy: a bare dataset object with no wrapper.
			var ds Dataset
			if err := json.Unmarshal([]byte(trimmed), &ds); err == nil {
				return decodeResult{
					Dataset: &ds,
					Metadata: Metadata{
						Version:             versionLegacy,
						Timestamp:           ds.SavedAt,
						OriginalSizeBytes:   len(raw),
						CompressedSizeBytes: len(raw),
					},
					Format: FormatLegacy,
					Raw:    raw,
				}
			}
		}
	}

	// Legacy-raw: no known shape. Keep the raw string; overwriting it
	// would destroy data we cannot interpret.
	return decodeResult{
		Dataset: NewDataset(),
		Metadata: Metadata{
			Version:             versionLegacyRaw,
			OriginalSizeBytes:   len(raw),
			CompressedSizeBytes: len(raw),
		},
		Format: FormatLegacyRaw,
		Raw:    raw,
	}
}
