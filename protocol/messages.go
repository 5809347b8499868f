package protocol

import "errors"

var ErrUnknownMessage = errors.New("unknown message id")

// Message is a report carried in one frame
type Message interface {
	// ID returns the message id written ahead of the fields
	ID() uint32

	// EncodeFields writes the message fields
	EncodeFields(output OutputBuffer)
}

// ConfigReport announces the firmware's build-time RTC configuration.
// Sent once after reset.
type ConfigReport struct {
	MCU         string
	ClockHz     uint32
	Prescaler   uint32
	Resolutions uint32
	Wide        bool
}

func (m *ConfigReport) ID() uint32 { return MsgConfig }

func (m *ConfigReport) EncodeFields(output OutputBuffer) {
	EncodeVLQString(output, m.MCU)
	EncodeVLQUint(output, m.ClockHz)
	EncodeVLQUint(output, m.Prescaler)
	EncodeVLQUint(output, m.Resolutions)
	var wide uint32
	if m.Wide {
		wide = 1
	}
	EncodeVLQUint(output, wide)
}

// SampleReport is one clock reading. Ms and Us are zero when the firmware
// was built without that resolution.
type SampleReport struct {
	Ticks        uint32
	Ms           uint32
	Us           uint32
	Fallback16   uint32
	FallbackWide uint32
}

func (m *SampleReport) ID() uint32 { return MsgSample }

func (m *SampleReport) EncodeFields(output OutputBuffer) {
	EncodeVLQUint(output, m.Ticks)
	EncodeVLQUint(output, m.Ms)
	EncodeVLQUint(output, m.Us)
	EncodeVLQUint(output, m.Fallback16)
	EncodeVLQUint(output, m.FallbackWide)
}

// DecodeMessage parses a frame payload
func DecodeMessage(payload []byte) (Message, error) {
	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return nil, err
	}

	switch id {
	case MsgConfig:
		m := &ConfigReport{}
		if m.MCU, err = DecodeVLQString(&payload); err != nil {
			return nil, err
		}
		var wide uint32
		if err := decodeFields(&payload, &m.ClockHz, &m.Prescaler, &m.Resolutions, &wide); err != nil {
			return nil, err
		}
		m.Wide = wide != 0
		return m, nil

	case MsgSample:
		m := &SampleReport{}
		if err := decodeFields(&payload, &m.Ticks, &m.Ms, &m.Us, &m.Fallback16, &m.FallbackWide); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, ErrUnknownMessage
}

func decodeFields(data *[]byte, fields ...*uint32) error {
	for _, f := range fields {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
