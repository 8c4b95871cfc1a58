package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoderSplitSequences(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   []string // decoded text per chunk
	}{
		{
			name:   "ascii passes through",
			chunks: [][]byte{[]byte("Hel"), []byte("lo")},
			want:   []string{"Hel", "lo"},
		},
		{
			name:   "two-byte character split in half",
			chunks: [][]byte{{'c', 'a', 'f', 0xC3}, {0xA9, '!'}},
			want:   []string{"caf", "é!"},
		},
		{
			name:   "three-byte character split after first byte",
			chunks: [][]byte{{0xE2}, {0x82, 0xAC}},
			want:   []string{"", "€"},
		},
		{
			name:   "three-byte character split after second byte",
			chunks: [][]byte{{'x', 0xE2, 0x82}, {0xAC}},
			want:   []string{"x", "€"},
		},
		{
			name:   "four-byte character over three chunks",
			chunks: [][]byte{{0xF0, 0x9F}, {0x98}, {0x80, ' ', 'o', 'k'}},
			want:   []string{"", "", "😀 ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			var got []string
			for _, chunk := range tt.chunks {
				got = append(got, d.Decode(chunk))
			}
			assert.Equal(t, tt.want, got)
			assert.Zero(t, d.Pending())
			assert.NotContains(t, strings.Join(got, ""), "�")
		})
	}
}

func TestDecoderPendingAndFlush(t *testing.T) {
	d := NewDecoder()

	assert.Equal(t, "a", d.Decode([]byte{'a', 0xE2, 0x82}))
	assert.Equal(t, 2, d.Pending())

	tail := d.Flush()
	assert.Contains(t, tail, "�", "a truncated character decodes to the replacement rune at end of stream")
	assert.Zero(t, d.Pending())

	// Flushing resets the decoder for reuse.
	assert.Equal(t, "ok", d.Decode([]byte("ok")))
	assert.Equal(t, "", d.Flush())
}

func TestDecoderLargeChunk(t *testing.T) {
	d := NewDecoder()
	input := strings.Repeat("日本語", 3000) // larger than the internal buffer
	raw := []byte(input)

	var sb strings.Builder
	for i := 0; i < len(raw); i += 1000 {
		end := min(i+1000, len(raw))
		sb.WriteString(d.Decode(raw[i:end]))
	}
	sb.WriteString(d.Flush())

	assert.Equal(t, input, sb.String())
}

func TestDecoderInvalidByte(t *testing.T) {
	d := NewDecoder()
	assert.Equal(t, "a�b", d.Decode([]byte{'a', 0xFF, 'b'}))
}
