package protocol

import (
	"bytes"
	"errors"
)

var (
	ErrNeedMore    = errors.New("incomplete frame")
	ErrBadLength   = errors.New("frame length out of range")
	ErrBadSequence = errors.New("frame sequence byte invalid")
	ErrBadSync     = errors.New("frame missing trailing sync")
	ErrBadCRC      = errors.New("frame CRC mismatch")
)

// Encoder writes messages as frames
type Encoder struct {
	output OutputBuffer
	seq    uint8
}

// NewEncoder creates an Encoder writing to output
func NewEncoder(output OutputBuffer) *Encoder {
	return &Encoder{output: output}
}

// Encode appends one frame holding msg
func (e *Encoder) Encode(msg Message) {
	cursor := e.output.CurPosition()

	// Length placeholder and sequence
	e.output.Output([]byte{0, MessageDest | e.seq})
	e.seq = (e.seq + 1) & MessageSeqMask

	EncodeVLQUint(e.output, msg.ID())
	msg.EncodeFields(e.output)

	changed := len(e.output.DataSince(cursor))
	e.output.Update(cursor, uint8(changed+MessageTrailerSize))

	crc := CRC16(e.output.DataSince(cursor))
	e.output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
}

// Decoder splits a byte stream into frames and decodes their messages.
// On a framing error it discards input up to the next sync byte.
type Decoder struct {
	buf     []byte
	synced  bool
	haveSeq bool
	nextSeq uint8
	dropped uint32
}

// NewDecoder creates a Decoder that assumes the stream starts on a frame
func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Feed appends received bytes
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Dropped returns the number of frames missed according to sequence gaps
func (d *Decoder) Dropped() uint32 {
	return d.dropped
}

// Next returns the next message. ErrNeedMore means the buffered input holds
// no complete frame; any other error reports a discarded frame and Next may
// be called again.
func (d *Decoder) Next() (Message, error) {
	if !d.synced {
		syncPos := bytes.IndexByte(d.buf, MessageValueSync)
		if syncPos < 0 {
			d.buf = d.buf[:0]
			return nil, ErrNeedMore
		}
		d.buf = d.buf[syncPos+1:]
		d.synced = true
	}

	// Skip leading sync bytes
	for len(d.buf) > 0 && d.buf[0] == MessageValueSync {
		d.buf = d.buf[1:]
	}

	if len(d.buf) < MessageLengthMin {
		return nil, ErrNeedMore
	}

	msgLen := int(d.buf[MessagePositionLen])
	if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
		d.synced = false
		return nil, ErrBadLength
	}

	seq := d.buf[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		d.synced = false
		return nil, ErrBadSequence
	}

	if len(d.buf) < msgLen {
		return nil, ErrNeedMore
	}

	if d.buf[msgLen-MessageTrailerSync] != MessageValueSync {
		d.synced = false
		return nil, ErrBadSync
	}

	frameCRC := uint16(d.buf[msgLen-MessageTrailerCRC])<<8 |
		uint16(d.buf[msgLen-MessageTrailerCRC+1])
	if frameCRC != CRC16(d.buf[:msgLen-MessageTrailerSize]) {
		d.synced = false
		return nil, ErrBadCRC
	}

	payload := append([]byte(nil), d.buf[MessageHeaderSize:msgLen-MessageTrailerSize]...)
	d.buf = d.buf[msgLen:]
	d.trackSequence(seq & MessageSeqMask)

	return DecodeMessage(payload)
}

func (d *Decoder) trackSequence(seq uint8) {
	if d.haveSeq && seq != d.nextSeq {
		d.dropped += uint32((seq - d.nextSeq) & MessageSeqMask)
	}
	d.haveSeq = true
	d.nextSeq = (seq + 1) & MessageSeqMask
}
