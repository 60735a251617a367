package sslproto

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
)

// BallDetection is one detected ball within a camera frame.
type BallDetection struct {
	Confidence float64
	X, Y, Z    float64
}

// RobotDetection is one detected robot (either team) within a camera frame.
type RobotDetection struct {
	Confidence          float64
	RobotID             uint32
	X, Y, Orientation   float64
}

// DetectionFrame is a single camera's observations at one instant.
type DetectionFrame struct {
	FrameNumber uint32
	TCapture    float64
	CameraID    uint32
	Balls       []BallDetection
	RobotsBlue  []RobotDetection
	RobotsYellow []RobotDetection
}

// GeometryData carries field-dimension data, emitted infrequently alongside
// detection frames. Only the subset the pipeline needs to round-trip is
// modeled; anything else in a real field-geometry protocol is out of scope.
type GeometryData struct {
	FieldLength float64
	FieldWidth  float64
}

// WrapperMsg is the parsed shape of a Vision2014-tagged record.
type WrapperMsg struct {
	Detection DetectionFrame
	Geometry  *GeometryData
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func consumeDouble(data []byte) (float64, int) {
	v, n := protowire.ConsumeFixed64(data)
	if n < 0 {
		return 0, n
	}
	return math.Float64frombits(v), n
}

func (b *BallDetection) marshal() []byte {
	var out []byte
	out = appendDouble(out, 1, b.Confidence)
	out = appendDouble(out, 2, b.X)
	out = appendDouble(out, 3, b.Y)
	out = appendDouble(out, 4, b.Z)
	return out
}

func unmarshalBallDetection(data []byte) (BallDetection, error) {
	var bd BallDetection
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return bd, sslerrors.NewProtoDecodeError("sslproto.BallDetection", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := consumeDouble(data)
			if n < 0 {
				return bd, sslerrors.NewProtoDecodeError("sslproto.BallDetection.confidence", protowire.ParseError(n))
			}
			bd.Confidence = v
			data = data[n:]
		case 2:
			v, n := consumeDouble(data)
			if n < 0 {
				return bd, sslerrors.NewProtoDecodeError("sslproto.BallDetection.x", protowire.ParseError(n))
			}
			bd.X = v
			data = data[n:]
		case 3:
			v, n := consumeDouble(data)
			if n < 0 {
				return bd, sslerrors.NewProtoDecodeError("sslproto.BallDetection.y", protowire.ParseError(n))
			}
			bd.Y = v
			data = data[n:]
		case 4:
			v, n := consumeDouble(data)
			if n < 0 {
				return bd, sslerrors.NewProtoDecodeError("sslproto.BallDetection.z", protowire.ParseError(n))
			}
			bd.Z = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return bd, sslerrors.NewProtoDecodeError("sslproto.BallDetection.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return bd, nil
}

func (r *RobotDetection) marshal() []byte {
	var out []byte
	out = appendDouble(out, 1, r.Confidence)
	out = protowire.AppendTag(out, 2, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(r.RobotID))
	out = appendDouble(out, 3, r.X)
	out = appendDouble(out, 4, r.Y)
	out = appendDouble(out, 5, r.Orientation)
	return out
}

func unmarshalRobotDetection(data []byte) (RobotDetection, error) {
	var rd RobotDetection
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := consumeDouble(data)
			if n < 0 {
				return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection.confidence", protowire.ParseError(n))
			}
			rd.Confidence = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection.robot_id", protowire.ParseError(n))
			}
			rd.RobotID = uint32(v)
			data = data[n:]
		case 3:
			v, n := consumeDouble(data)
			if n < 0 {
				return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection.x", protowire.ParseError(n))
			}
			rd.X = v
			data = data[n:]
		case 4:
			v, n := consumeDouble(data)
			if n < 0 {
				return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection.y", protowire.ParseError(n))
			}
			rd.Y = v
			data = data[n:]
		case 5:
			v, n := consumeDouble(data)
			if n < 0 {
				return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection.orientation", protowire.ParseError(n))
			}
			rd.Orientation = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return rd, sslerrors.NewProtoDecodeError("sslproto.RobotDetection.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return rd, nil
}

func (d *DetectionFrame) marshal() []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(d.FrameNumber))
	out = appendDouble(out, 2, d.TCapture)
	out = protowire.AppendTag(out, 3, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(d.CameraID))
	for i := range d.Balls {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, d.Balls[i].marshal())
	}
	for i := range d.RobotsYellow {
		out = protowire.AppendTag(out, 5, protowire.BytesType)
		out = protowire.AppendBytes(out, d.RobotsYellow[i].marshal())
	}
	for i := range d.RobotsBlue {
		out = protowire.AppendTag(out, 6, protowire.BytesType)
		out = protowire.AppendBytes(out, d.RobotsBlue[i].marshal())
	}
	return out
}

func unmarshalDetectionFrame(data []byte) (DetectionFrame, error) {
	var d DetectionFrame
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.frame_number", protowire.ParseError(n))
			}
			d.FrameNumber = uint32(v)
			data = data[n:]
		case 2:
			v, n := consumeDouble(data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.t_capture", protowire.ParseError(n))
			}
			d.TCapture = v
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.camera_id", protowire.ParseError(n))
			}
			d.CameraID = uint32(v)
			data = data[n:]
		case 4:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.balls", protowire.ParseError(n))
			}
			ball, err := unmarshalBallDetection(v)
			if err != nil {
				return d, err
			}
			d.Balls = append(d.Balls, ball)
			data = data[n:]
		case 5:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.robots_yellow", protowire.ParseError(n))
			}
			robot, err := unmarshalRobotDetection(v)
			if err != nil {
				return d, err
			}
			d.RobotsYellow = append(d.RobotsYellow, robot)
			data = data[n:]
		case 6:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.robots_blue", protowire.ParseError(n))
			}
			robot, err := unmarshalRobotDetection(v)
			if err != nil {
				return d, err
			}
			d.RobotsBlue = append(d.RobotsBlue, robot)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return d, sslerrors.NewProtoDecodeError("sslproto.DetectionFrame.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return d, nil
}

func (g *GeometryData) marshal() []byte {
	var out []byte
	out = appendDouble(out, 1, g.FieldLength)
	out = appendDouble(out, 2, g.FieldWidth)
	return out
}

func unmarshalGeometryData(data []byte) (*GeometryData, error) {
	g := &GeometryData{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.GeometryData", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := consumeDouble(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.GeometryData.field_length", protowire.ParseError(n))
			}
			g.FieldLength = v
			data = data[n:]
		case 2:
			v, n := consumeDouble(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.GeometryData.field_width", protowire.ParseError(n))
			}
			g.FieldWidth = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.GeometryData.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return g, nil
}

// Marshal encodes the wrapper message as protobuf-shaped bytes.
func (m *WrapperMsg) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Detection.marshal())
	if m.Geometry != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Geometry.marshal())
	}
	return b, nil
}

// UnmarshalWrapperMsg decodes bytes produced by Marshal.
func UnmarshalWrapperMsg(data []byte) (*WrapperMsg, error) {
	m := &WrapperMsg{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.WrapperMsg", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.WrapperMsg.detection", protowire.ParseError(n))
			}
			det, err := unmarshalDetectionFrame(v)
			if err != nil {
				return nil, err
			}
			m.Detection = det
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.WrapperMsg.geometry", protowire.ParseError(n))
			}
			geo, err := unmarshalGeometryData(v)
			if err != nil {
				return nil, err
			}
			m.Geometry = geo
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.WrapperMsg.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return m, nil
}
