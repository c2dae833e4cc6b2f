// Package snapshot saves and restores a table between sessions.
//
// Snapshots are JSON documents with a version envelope:
//
//	{"version": 2, "state": {...}}
//
// Older versions are migrated on load. Decoding fails closed: a snapshot
// that is from an unknown version, is mid-transition, or does not describe
// a reachable table is rejected rather than repaired.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/round"
)

// Version is the version written by Encode.
const Version = 2

var (
	// ErrUnsupportedVersion is returned for versions this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrUnsafePhase is returned for states captured mid-transition.
	ErrUnsafePhase = errors.New("snapshot phase cannot be resumed")
	// ErrInvalidSnapshot is returned when the state fails validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

type stateDoc struct {
	Phase        string            `json:"phase"`
	Shoe         []string          `json:"shoe"`
	Dealer       handDoc           `json:"dealer"`
	Hands        []handDoc         `json:"hands,omitempty"`
	Active       int               `json:"active"`
	RunningCount int               `json:"running_count"`
	Bets         []decimal.Decimal `json:"bets"`
	Bankroll     decimal.Decimal   `json:"bankroll"`
	Discarded    int               `json:"discarded"`
	ShoeSize     int               `json:"shoe_size"`
	HoleRevealed bool              `json:"hole_revealed,omitempty"`
}

type handDoc struct {
	Cards        []string        `json:"cards"`
	Seat         int             `json:"seat"`
	Bet          decimal.Decimal `json:"bet"`
	Doubled      bool            `json:"doubled,omitempty"`
	Surrendered  bool            `json:"surrendered,omitempty"`
	Busted       bool            `json:"busted,omitempty"`
	Blackjack    bool            `json:"blackjack,omitempty"`
	Complete     bool            `json:"complete,omitempty"`
	FromSplit    bool            `json:"from_split,omitempty"`
	AwaitingCard bool            `json:"awaiting_card,omitempty"`
	AceSplit     bool            `json:"ace_split,omitempty"`
	Insured      bool            `json:"insured,omitempty"`
}

// Encode serialises s at the current version. A settled round is saved as
// an idle table with the same shoe, count and bankroll; states in the middle
// of dealing or dealer play are refused.
func Encode(s round.State) ([]byte, error) {
	switch s.Phase {
	case round.Dealing, round.DealerTurn:
		return nil, fmt.Errorf("%w: %s", ErrUnsafePhase, s.Phase)
	case round.Payout:
		s = idle(s)
	}

	doc := stateDoc{
		Phase:        s.Phase.String(),
		Shoe:         codes(s.Shoe.Cards()),
		Dealer:       fromHand(s.Dealer),
		Active:       s.Active,
		RunningCount: s.RunningCount,
		Bets:         s.Bets,
		Bankroll:     s.Bankroll,
		Discarded:    s.Discarded,
		ShoeSize:     s.ShoeSize,
		HoleRevealed: s.HoleRevealed,
	}
	for _, h := range s.Hands {
		doc.Hands = append(doc.Hands, fromHand(h))
	}

	state, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return json.MarshalIndent(envelope{Version: Version, State: state}, "", "  ")
}

// Decode parses, migrates and validates a snapshot.
func Decode(data []byte) (round.State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return round.State{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(env.State) == 0 {
		return round.State{}, fmt.Errorf("%w: missing state", ErrInvalidSnapshot)
	}

	var doc stateDoc
	switch env.Version {
	case 1:
		if err := strictUnmarshal(env.State, &doc); err != nil {
			return round.State{}, err
		}
		if err := migrateV1(&doc); err != nil {
			return round.State{}, err
		}
	case 2:
		if err := strictUnmarshal(env.State, &doc); err != nil {
			return round.State{}, err
		}
	default:
		return round.State{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	s, err := doc.state()
	if err != nil {
		return round.State{}, err
	}
	if s.Phase == round.Payout {
		s = idle(s)
	}
	return s, nil
}

func strictUnmarshal(data []byte, doc *stateDoc) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return nil
}

// idle clears the finished round from the table.
func idle(s round.State) round.State {
	s.Phase = round.Idle
	s.Dealer = round.Hand{}
	s.Hands = nil
	s.Results = nil
	s.Active = -1
	s.HoleRevealed = false
	s.DealerDone = false
	return s
}

func codes(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Code()
	}
	return out
}

func fromHand(h round.Hand) handDoc {
	return handDoc{
		Cards:        codes(h.Cards),
		Seat:         h.Seat,
		Bet:          h.Bet,
		Doubled:      h.Doubled,
		Surrendered:  h.Surrendered,
		Busted:       h.Busted,
		Blackjack:    h.Blackjack,
		Complete:     h.Complete,
		FromSplit:    h.FromSplit,
		AwaitingCard: h.AwaitingCard,
		AceSplit:     h.AceSplit,
		Insured:      h.Insured,
	}
}
