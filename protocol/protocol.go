// Package protocol frames RTC reports sent from the firmware to the host.
//
// A frame is the Klipper block layout: length, sequence, payload, CRC16
// (big endian) and a trailing sync byte. The payload is a VLQ message id
// followed by the message's VLQ fields.
package protocol

// Version represents the report protocol version
const Version = "0.1.0"

// Frame layout
const (
	MessageMax         = 64 // Scratch buffer size, one frame
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Message ids
const (
	MsgConfig uint32 = 1
	MsgSample uint32 = 2
)
