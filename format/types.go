// Package format defines the enumerations shared by the trace storage layer:
// how a parameter column is encoded and which codec compresses it.
package format

import (
	"fmt"
	"strings"
)

type (
	EncodingType    uint8
	CompressionType uint8
)

const (
	TypeRaw     EncodingType = 0x1 // TypeRaw stores float64 draws as a plain slice.
	TypeGorilla EncodingType = 0x3 // TypeGorilla stores draws XOR-encoded (Gorilla).

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (e EncodingType) String() string {
	switch e {
	case TypeRaw:
		return "Raw"
	case TypeGorilla:
		return "Gorilla"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseEncoding maps a case-insensitive encoding name ("raw", "gorilla") to
// its EncodingType. An empty name selects Gorilla.
func ParseEncoding(name string) (EncodingType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gorilla":
		return TypeGorilla, nil
	case "raw":
		return TypeRaw, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", name)
	}
}

// ParseCompression maps a case-insensitive codec name ("none", "zstd", "s2", "lz4")
// to its CompressionType.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}
