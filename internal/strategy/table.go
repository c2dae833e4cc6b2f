package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/bjtrainer/internal/rules"
)

// code is an unresolved chart entry. Codes are resolved against the rules
// and the hand's capabilities at query time.
type code uint8

const (
	codeHit             code = iota // H
	codeStand                       // S
	codeDouble                      // D: double, else hit
	codeDoubleStand                 // Ds: double, else stand
	codeSurrenderHit                // Rh: surrender, else hit
	codeSurrenderStand              // Rs: surrender, else stand
	codeSplit                       // P
	codeSplitDAS                    // Ph: split if double after split is allowed
	codeNoSplit                     // N
)

var codeNames = map[string]code{
	"H":  codeHit,
	"S":  codeStand,
	"D":  codeDouble,
	"Ds": codeDoubleStand,
	"Rh": codeSurrenderHit,
	"Rs": codeSurrenderStand,
	"P":  codeSplit,
	"Ph": codeSplitDAS,
	"N":  codeNoSplit,
}

func (c code) String() string {
	for name, v := range codeNames {
		if v == c {
			return name
		}
	}
	return "?"
}

// Columns are dealer upcards 2..9, ten-class, Ace.
const columns = 10

type row [columns]code

// Multi-deck, dealer stands on soft 17, double after split, late surrender.
var hardRows = map[int]string{
	5:  "H  H  H  H  H  H  H  H  H  H",
	6:  "H  H  H  H  H  H  H  H  H  H",
	7:  "H  H  H  H  H  H  H  H  H  H",
	8:  "H  H  H  H  H  H  H  H  H  H",
	9:  "H  D  D  D  D  H  H  H  H  H",
	10: "D  D  D  D  D  D  D  D  H  H",
	11: "D  D  D  D  D  D  D  D  D  H",
	12: "H  H  S  S  S  H  H  H  H  H",
	13: "S  S  S  S  S  H  H  H  H  H",
	14: "S  S  S  S  S  H  H  H  H  H",
	15: "S  S  S  S  S  H  H  H  Rh H",
	16: "S  S  S  S  S  H  H  Rh Rh Rh",
	17: "S  S  S  S  S  S  S  S  S  S",
	18: "S  S  S  S  S  S  S  S  S  S",
	19: "S  S  S  S  S  S  S  S  S  S",
	20: "S  S  S  S  S  S  S  S  S  S",
	21: "S  S  S  S  S  S  S  S  S  S",
}

// Soft 12 only occurs for an unsplit A,A.
var softRows = map[int]string{
	12: "H  H  H  H  H  H  H  H  H  H",
	13: "H  H  H  D  D  H  H  H  H  H",
	14: "H  H  H  D  D  H  H  H  H  H",
	15: "H  H  D  D  D  H  H  H  H  H",
	16: "H  H  D  D  D  H  H  H  H  H",
	17: "H  D  D  D  D  H  H  H  H  H",
	18: "S  Ds Ds Ds Ds S  S  H  H  H",
	19: "S  S  S  S  S  S  S  S  S  S",
	20: "S  S  S  S  S  S  S  S  S  S",
	21: "S  S  S  S  S  S  S  S  S  S",
}

// Keyed by the value of one card of the pair; 11 is A,A.
var pairRows = map[int]string{
	2:  "Ph Ph P  P  P  P  N  N  N  N",
	3:  "Ph Ph P  P  P  P  N  N  N  N",
	4:  "N  N  N  Ph Ph N  N  N  N  N",
	5:  "N  N  N  N  N  N  N  N  N  N",
	6:  "Ph P  P  P  P  N  N  N  N  N",
	7:  "P  P  P  P  P  P  N  N  N  N",
	8:  "P  P  P  P  P  P  P  P  P  P",
	9:  "P  P  P  P  P  N  P  P  N  N",
	10: "N  N  N  N  N  N  N  N  N  N",
	11: "P  P  P  P  P  P  P  P  P  P",
}

type cellKey struct {
	kind  HandType
	row   int
	upVal int
}

// Changes when the dealer hits soft 17.
var h17Overlay = map[cellKey]code{
	{Hard, 11, 11}: codeDouble,
	{Hard, 15, 11}: codeSurrenderHit,
	{Hard, 17, 11}: codeSurrenderStand,
	{Soft, 18, 2}:  codeDoubleStand,
	{Soft, 19, 6}:  codeDoubleStand,
}

var (
	hardTable = mustBuild(hardRows, 5, 21)
	softTable = mustBuild(softRows, 12, 21)
	pairTable = mustBuild(pairRows, 2, 11)
)

func mustBuild(rows map[int]string, lo, hi int) map[int]row {
	out := make(map[int]row, len(rows))
	for total := lo; total <= hi; total++ {
		line, ok := rows[total]
		if !ok {
			panic(fmt.Sprintf("strategy table missing row %d", total))
		}
		fields := strings.Fields(line)
		if len(fields) != columns {
			panic(fmt.Sprintf("strategy row %d has %d columns", total, len(fields)))
		}
		var r row
		for i, f := range fields {
			c, ok := codeNames[f]
			if !ok {
				panic(fmt.Sprintf("strategy row %d: unknown code %q", total, f))
			}
			r[i] = c
		}
		out[total] = r
	}
	return out
}

// column maps a dealer upcard value (2..11) to its chart column.
func column(upVal int) int {
	switch {
	case upVal < 2:
		return 0
	case upVal > 11:
		return columns - 1
	default:
		return upVal - 2
	}
}

func lookup(kind HandType, total, upVal int, r rules.Rules) code {
	if r.HitSoft17 {
		if c, ok := h17Overlay[cellKey{kind, total, upVal}]; ok {
			return c
		}
	}
	var t map[int]row
	switch kind {
	case Pair:
		t = pairTable
	case Soft:
		t = softTable
		total = clamp(total, 12, 21)
	default:
		t = hardTable
		total = clamp(total, 5, 21)
	}
	rw, ok := t[total]
	if !ok {
		return codeNoSplit
	}
	return rw[column(upVal)]
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Code returns the unresolved chart code ("H", "Ds", "Ph", ...) for a cell
// under the given rules. Used to render charts.
func Code(kind HandType, total, upVal int, r rules.Rules) string {
	return lookup(kind, total, upVal, r).String()
}
