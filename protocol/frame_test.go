package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeFrames(msgs ...Message) []byte {
	var stream []byte
	enc := NewEncoder(nil)
	for _, msg := range msgs {
		out := NewScratchOutput()
		enc.output = out
		enc.Encode(msg)
		stream = append(stream, out.Result()...)
	}
	return stream
}

func TestFrameLayout(t *testing.T) {
	frame := encodeFrames(&SampleReport{Ticks: 1})

	require.Len(t, frame, int(frame[MessagePositionLen]))
	assert.Equal(t, byte(MessageDest), frame[MessagePositionSeq])
	assert.Equal(t, byte(MessageValueSync), frame[len(frame)-1])

	crc := CRC16(frame[:len(frame)-MessageTrailerSize])
	assert.Equal(t, byte(crc>>8), frame[len(frame)-3])
	assert.Equal(t, byte(crc), frame[len(frame)-2])
}

func TestFrameDecode(t *testing.T) {
	cfg := &ConfigReport{MCU: "atmega328p", ClockHz: 8000000, Prescaler: 1024, Resolutions: 3, Wide: true}
	sample := &SampleReport{Ticks: 0xFFFFFFFF, Ms: 549755813, Us: 7812 * 128, Fallback16: 2, FallbackWide: 1}

	dec := NewDecoder()
	dec.Feed(encodeFrames(cfg, sample))

	msg, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, cfg, msg)

	msg, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, sample, msg)

	_, err = dec.Next()
	assert.ErrorIs(t, err, ErrNeedMore)
	assert.Zero(t, dec.Dropped())
}

func TestFrameDecodePartial(t *testing.T) {
	stream := encodeFrames(&SampleReport{Ticks: 42, Ms: 5})
	dec := NewDecoder()

	for i, b := range stream {
		dec.Feed([]byte{b})
		msg, err := dec.Next()
		if i < len(stream)-1 {
			require.ErrorIs(t, err, ErrNeedMore, "byte %d", i)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, uint32(42), msg.(*SampleReport).Ticks)
	}
}

func TestFrameDecodeResyncAfterCorruption(t *testing.T) {
	first := encodeFrames(&SampleReport{Ticks: 1})
	stream := encodeFrames(&SampleReport{Ticks: 1}, &SampleReport{Ticks: 2}, &SampleReport{Ticks: 3})
	stream[len(first)+3] ^= 0xFF // Corrupt the second payload

	dec := NewDecoder()
	dec.Feed(stream)

	var ticks []uint32
	var errs []error
	for {
		msg, err := dec.Next()
		if err == ErrNeedMore {
			break
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ticks = append(ticks, msg.(*SampleReport).Ticks)
	}

	assert.Equal(t, []uint32{1, 3}, ticks)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], ErrBadCRC)
	assert.Equal(t, uint32(1), dec.Dropped())
}

func TestFrameDecodeGarbage(t *testing.T) {
	dec := NewDecoder()
	dec.Feed([]byte{0xFF, 0x00, 0x01, 0x02, 0x03})

	_, err := dec.Next()
	require.ErrorIs(t, err, ErrBadLength)

	_, err = dec.Next()
	require.ErrorIs(t, err, ErrNeedMore)

	// The sender's next sync byte ends the discarded run
	dec.Feed(append([]byte{MessageValueSync}, encodeFrames(&SampleReport{Ticks: 9})...))
	msg, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), msg.(*SampleReport).Ticks)
}

func TestFrameSequenceWraps(t *testing.T) {
	msgs := make([]Message, 40)
	for i := range msgs {
		msgs[i] = &SampleReport{Ticks: uint32(i)}
	}

	dec := NewDecoder()
	dec.Feed(encodeFrames(msgs...))
	for i := range msgs {
		msg, err := dec.Next()
		require.NoError(t, err)
		require.Equal(t, uint32(i), msg.(*SampleReport).Ticks)
	}
	assert.Zero(t, dec.Dropped())
}

func TestDecodeUnknownMessage(t *testing.T) {
	out := NewScratchOutput()
	EncodeVLQUint(out, 99)

	_, err := DecodeMessage(out.Result())
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestDecodeTruncatedMessage(t *testing.T) {
	out := NewScratchOutput()
	EncodeVLQUint(out, MsgSample)
	EncodeVLQUint(out, 1)

	_, err := DecodeMessage(out.Result())
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}
