package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// BitRate is a bits-per-second value that supports human-readable parsing.
//
// Examples:
//   - "8Mbps"  = 8_000_000 bps
//   - "1.5 Mbps" = 1_500_000 bps
//   - "500Kbps" = 500_000 bps
//   - "4000000" = 4_000_000 bps (raw number still works)
//
// This type implements encoding.TextUnmarshaler for Viper/YAML support
// and json.Unmarshaler for JSON configuration files.
type BitRate int64

// bitRateUnits maps unit suffixes to multipliers. Network rates use decimal
// (SI) multipliers, not binary ones.
var bitRateUnits = []struct {
	suffix     string
	multiplier float64
}{
	{"gbps", 1_000_000_000},
	{"mbps", 1_000_000},
	{"kbps", 1_000},
	{"bps", 1},
}

// ParseBitRate parses a human-readable bitrate string.
func ParseBitRate(s string) (BitRate, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty bitrate")
	}

	for _, unit := range bitRateUnits {
		if !strings.HasSuffix(trimmed, unit.suffix) {
			continue
		}
		numPart := strings.TrimSpace(strings.TrimSuffix(trimmed, unit.suffix))
		value, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid bitrate %q: %w", s, err)
		}
		if value < 0 {
			return 0, fmt.Errorf("bitrate must not be negative: %q", s)
		}
		return BitRate(value * unit.multiplier), nil
	}

	// Raw number of bits per second.
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bitrate %q: %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("bitrate must not be negative: %q", s)
	}
	return BitRate(value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML/Viper support.
func (b *BitRate) UnmarshalText(text []byte) error {
	parsed, err := ParseBitRate(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BitRate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Try as a raw number for backwards compatibility
		var bps int64
		if err := json.Unmarshal(data, &bps); err != nil {
			return err
		}
		*b = BitRate(bps)
		return nil
	}
	return b.UnmarshalText([]byte(s))
}

// MarshalJSON implements json.Marshaler.
func (b BitRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// MarshalText implements encoding.TextMarshaler.
func (b BitRate) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Bps returns the rate in bits per second as int64.
func (b BitRate) Bps() int64 {
	return int64(b)
}

// String returns a human-readable string representation.
func (b BitRate) String() string {
	v := float64(b)
	switch {
	case b >= 1_000_000_000:
		return trimZeros(v/1_000_000_000) + "Gbps"
	case b >= 1_000_000:
		return trimZeros(v/1_000_000) + "Mbps"
	case b >= 1_000:
		return trimZeros(v/1_000) + "Kbps"
	default:
		return strconv.FormatInt(int64(b), 10) + "bps"
	}
}

func trimZeros(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// bitRateDecodeHook returns the mapstructure hooks used when unmarshaling
// configuration. Passing a custom hook to Viper replaces its defaults, so
// the standard duration and slice hooks are composed back in alongside the
// string-to-BitRate conversion.
func bitRateDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		func(f reflect.Type, t reflect.Type, data any) (any, error) {
			if t != reflect.TypeOf(BitRate(0)) {
				return data, nil
			}
			switch v := data.(type) {
			case string:
				return ParseBitRate(v)
			case int:
				return BitRate(v), nil
			case int64:
				return BitRate(v), nil
			case float64:
				return BitRate(v), nil
			default:
				return data, nil
			}
		},
	)
}
