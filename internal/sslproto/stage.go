package sslproto

// Stage mirrors the referee's match-stage enumeration. Values are numbered
// to match the order the original game controller emits them in, not to any
// particular wire compatibility requirement (the protobuf schemas themselves
// are opaque payload shapes to this module, not a contract with an external
// system).
type Stage int32

const (
	StageNormalFirstHalfPre Stage = iota
	StageNormalFirstHalf
	StageNormalHalfTime
	StageNormalSecondHalfPre
	StageNormalSecondHalf
	StageExtraTimeBreak
	StageExtraFirstHalfPre
	StageExtraFirstHalf
	StageExtraHalfTime
	StageExtraSecondHalfPre
	StageExtraSecondHalf
	StagePenaltyShootoutBreak
	StagePenaltyShootout
	StagePostGame
)

// Running reports whether the stage represents an active period of game
// time, i.e. one of the four stages the frame-group segmenter groups frames
// under.
func (s Stage) Running() bool {
	switch s {
	case StageNormalFirstHalf, StageNormalSecondHalf, StageExtraFirstHalf, StageExtraSecondHalf:
		return true
	default:
		return false
	}
}

func (s Stage) String() string {
	switch s {
	case StageNormalFirstHalfPre:
		return "NORMAL_FIRST_HALF_PRE"
	case StageNormalFirstHalf:
		return "NORMAL_FIRST_HALF"
	case StageNormalHalfTime:
		return "NORMAL_HALF_TIME"
	case StageNormalSecondHalfPre:
		return "NORMAL_SECOND_HALF_PRE"
	case StageNormalSecondHalf:
		return "NORMAL_SECOND_HALF"
	case StageExtraTimeBreak:
		return "EXTRA_TIME_BREAK"
	case StageExtraFirstHalfPre:
		return "EXTRA_FIRST_HALF_PRE"
	case StageExtraFirstHalf:
		return "EXTRA_FIRST_HALF"
	case StageExtraHalfTime:
		return "EXTRA_HALF_TIME"
	case StageExtraSecondHalfPre:
		return "EXTRA_SECOND_HALF_PRE"
	case StageExtraSecondHalf:
		return "EXTRA_SECOND_HALF"
	case StagePenaltyShootoutBreak:
		return "PENALTY_SHOOTOUT_BREAK"
	case StagePenaltyShootout:
		return "PENALTY_SHOOTOUT"
	case StagePostGame:
		return "POST_GAME"
	default:
		return "UNKNOWN_STAGE"
	}
}

// Command mirrors the referee's game-command enumeration (START, STOP,
// HALT, force-start, kickoff/penalty variants, ...). Only the numeric value
// round-trips through this layer; no command-specific behavior depends on
// it here.
type Command int32
