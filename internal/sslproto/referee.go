package sslproto

import (
	"google.golang.org/protobuf/encoding/protowire"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
)

// TeamInfo carries one team's score-sheet state within a RefereeMsg.
type TeamInfo struct {
	Name        string
	Score       uint32
	RedCards    uint32
	YellowCards uint32
	Timeouts    uint32
	Goalkeeper  uint32
}

func (t *TeamInfo) marshal() []byte {
	var b []byte
	if t.Name != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, t.Name)
	}
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Score))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.RedCards))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.YellowCards))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Timeouts))
	b = protowire.AppendTag(b, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Goalkeeper))
	return b
}

func unmarshalTeamInfo(data []byte) (*TeamInfo, error) {
	t := &TeamInfo{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.name", protowire.ParseError(n))
			}
			t.Name = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.score", protowire.ParseError(n))
			}
			t.Score = uint32(v)
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.red_cards", protowire.ParseError(n))
			}
			t.RedCards = uint32(v)
			data = data[n:]
		case 4:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.yellow_cards", protowire.ParseError(n))
			}
			t.YellowCards = uint32(v)
			data = data[n:]
		case 5:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.timeouts", protowire.ParseError(n))
			}
			t.Timeouts = uint32(v)
			data = data[n:]
		case 6:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.goalkeeper", protowire.ParseError(n))
			}
			t.Goalkeeper = uint32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.TeamInfo.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return t, nil
}

// RefereeMsg is the parsed shape of a Refbox2013-tagged record: match stage,
// active command, and both teams' score-sheets.
type RefereeMsg struct {
	PacketTimestamp uint64
	Stage           Stage
	Command         Command
	CommandCounter  uint32
	StageTimeLeft   int32
	Yellow          TeamInfo
	Blue            TeamInfo
}

// Marshal encodes the message as protobuf-shaped bytes.
func (m *RefereeMsg) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, m.PacketTimestamp)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(m.Stage)))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(m.Command)))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.CommandCounter))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(protowire.EncodeZigZag(int64(m.StageTimeLeft))))
	b = protowire.AppendTag(b, 6, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Yellow.marshal())
	b = protowire.AppendTag(b, 7, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Blue.marshal())
	return b, nil
}

// UnmarshalRefereeMsg decodes bytes produced by Marshal. Unrecognized
// fields are skipped, matching standard protobuf forward-compatibility.
func UnmarshalRefereeMsg(data []byte) (*RefereeMsg, error) {
	m := &RefereeMsg{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.packet_timestamp", protowire.ParseError(n))
			}
			m.PacketTimestamp = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.stage", protowire.ParseError(n))
			}
			m.Stage = Stage(int64(v))
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.command", protowire.ParseError(n))
			}
			m.Command = Command(int64(v))
			data = data[n:]
		case 4:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.command_counter", protowire.ParseError(n))
			}
			m.CommandCounter = uint32(v)
			data = data[n:]
		case 5:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.stage_time_left", protowire.ParseError(n))
			}
			m.StageTimeLeft = int32(protowire.DecodeZigZag(v))
			data = data[n:]
		case 6:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.yellow", protowire.ParseError(n))
			}
			team, err := unmarshalTeamInfo(v)
			if err != nil {
				return nil, err
			}
			m.Yellow = *team
			data = data[n:]
		case 7:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.blue", protowire.ParseError(n))
			}
			team, err := unmarshalTeamInfo(v)
			if err != nil {
				return nil, err
			}
			m.Blue = *team
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, sslerrors.NewProtoDecodeError("sslproto.RefereeMsg.unknown", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return m, nil
}
