package engine

import "errors"

var ErrInvalidTransition = errors.New("invalid phase transition")
var ErrWrongPhase = errors.New("operation not allowed in current phase")
var ErrNotHost = errors.New("issuer is not the host")
var ErrNotPlayer = errors.New("issuer is not a player")
var ErrTeamFull = errors.New("team is full")
var ErrAlreadyJoined = errors.New("player already joined")
var ErrInvalidTeam = errors.New("invalid team")
var ErrHostAlreadyAssigned = errors.New("host already assigned")
var ErrNotMember = errors.New("not a member of this session")
var ErrRosterIncomplete = errors.New("roster incomplete")
var ErrInvalidVoteTarget = errors.New("invalid vote target")
var ErrAlreadyVoted = errors.New("already voted this round")
var ErrIncompleteVoting = errors.New("not every player has voted")
var ErrParticipantMismatch = errors.New("observed participants do not match roster")
