package sslproto

import (
	"google.golang.org/protobuf/encoding/protowire"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
)

// LabelerFrame is one timestamped frame inside a frame group: exactly one of
// RefereeFrame or VisionFrame is set.
type LabelerFrame struct {
	Timestamp    uint64
	RefereeFrame *RefereeMsg
	VisionFrame  *WrapperMsg
}

// Marshal encodes the frame as protobuf-shaped bytes.
func (f *LabelerFrame) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, f.Timestamp)
	if f.RefereeFrame != nil {
		rb, err := f.RefereeFrame.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	if f.VisionFrame != nil {
		vb, err := f.VisionFrame.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, vb)
	}
	return b, nil
}

// UnmarshalLabelerFrame decodes bytes produced by Marshal.
func UnmarshalLabelerFrame(data []byte) (*LabelerFrame, error) {
	f := &LabelerFrame{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrame", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrame.timestamp", protowire.ParseError(n))
			}
			f.Timestamp = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrame.referee_frame", protowire.ParseError(n))
			}
			ref, err := UnmarshalRefereeMsg(v)
			if err != nil {
				return nil, err
			}
			f.RefereeFrame = ref
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrame.vision_frame", protowire.ParseError(n))
			}
			vis, err := UnmarshalWrapperMsg(v)
			if err != nil {
				return nil, err
			}
			f.VisionFrame = vis
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrame.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return f, nil
}

// LabelerFrameGroup is an ordered bundle of frames sharing one multi-camera
// snapshot and contextual referee message.
type LabelerFrameGroup struct {
	Frames []*LabelerFrame
}

// Marshal encodes the frame group as protobuf-shaped bytes.
func (g *LabelerFrameGroup) Marshal() ([]byte, error) {
	var b []byte
	for _, f := range g.Frames {
		fb, err := f.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, fb)
	}
	return b, nil
}

// UnmarshalLabelerFrameGroup decodes bytes produced by Marshal.
func UnmarshalLabelerFrameGroup(data []byte) (*LabelerFrameGroup, error) {
	g := &LabelerFrameGroup{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrameGroup", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrameGroup.frames", protowire.ParseError(n))
			}
			frame, err := UnmarshalLabelerFrame(v)
			if err != nil {
				return nil, err
			}
			g.Frames = append(g.Frames, frame)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerFrameGroup.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return g, nil
}

// LabelerMetadata is the trailing index record of a labeler archive.
type LabelerMetadata struct {
	NumCameras        uint32
	MessageOffsets    []uint64
	NumPassingEvents  uint32
	NumGoalShotEvents uint32
}

// Marshal encodes the metadata record as protobuf-shaped bytes.
func (m *LabelerMetadata) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.NumCameras))
	for _, off := range m.MessageOffsets {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, off)
	}
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.NumPassingEvents))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.NumGoalShotEvents))
	return b, nil
}

// UnmarshalLabelerMetadata decodes bytes produced by Marshal.
func UnmarshalLabelerMetadata(data []byte) (*LabelerMetadata, error) {
	m := &LabelerMetadata{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerMetadata", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerMetadata.num_cameras", protowire.ParseError(n))
			}
			m.NumCameras = uint32(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerMetadata.message_offsets", protowire.ParseError(n))
			}
			m.MessageOffsets = append(m.MessageOffsets, v)
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerMetadata.num_passing_events", protowire.ParseError(n))
			}
			m.NumPassingEvents = uint32(v)
			data = data[n:]
		case 4:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerMetadata.num_goal_shot_events", protowire.ParseError(n))
			}
			m.NumGoalShotEvents = uint32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.LabelerMetadata.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return m, nil
}
