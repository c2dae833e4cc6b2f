// Package config loads trainer settings from an HCL file with environment
// overrides.
//
// A config file has two optional blocks:
//
//	table {
//	  decks              = 6
//	  hit_soft_17        = false
//	  double_after_split = true
//	  surrender          = true
//	  blackjack_payout   = "3:2"
//	  penetration        = 0.75
//	  max_hands          = 4
//	}
//
//	trainer {
//	  count_method = "half-deck"
//	  seats        = 1
//	  bet          = 10
//	  bankroll     = 1000
//	  journal      = "~/.bjtrainer/journal.db"
//	  dealer_delay = "600ms"
//	}
//
// Attributes left out keep their defaults. A leading ~ in the journal and
// snapshot paths is the user's home directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/rules"
)

// Environment variables read by the CLI
const (
	// EnvConfig is the config file path when --config is not given
	EnvConfig = "BJTRAINER_CONFIG"

	// EnvSeed fixes the random seed
	EnvSeed = "BJTRAINER_SEED"

	// EnvJournal overrides the journal database path
	EnvJournal = "BJTRAINER_JOURNAL"
)

// DefaultPath is used when neither a flag nor EnvConfig names a file.
const DefaultPath = "bjtrainer.hcl"

// File is the HCL document. Pointer fields distinguish an absent attribute
// from a zero value.
type File struct {
	Table   *TableBlock   `hcl:"table,block"`
	Trainer *TrainerBlock `hcl:"trainer,block"`
}

// TableBlock holds the rule settings
type TableBlock struct {
	Decks            *int     `hcl:"decks,optional"`
	HitSoft17        *bool    `hcl:"hit_soft_17,optional"`
	DoubleAfterSplit *bool    `hcl:"double_after_split,optional"`
	Surrender        *bool    `hcl:"surrender,optional"`
	BlackjackPayout  *string  `hcl:"blackjack_payout,optional"`
	Penetration      *float64 `hcl:"penetration,optional"`
	MaxHands         *int     `hcl:"max_hands,optional"`
	ResplitAces      *bool    `hcl:"resplit_aces,optional"`
	HitSplitAces     *bool    `hcl:"hit_split_aces,optional"`
}

// TrainerBlock holds the practice settings
type TrainerBlock struct {
	CountMethod *string  `hcl:"count_method,optional"`
	Tolerance   *float64 `hcl:"tolerance,optional"`
	Seats       *int     `hcl:"seats,optional"`
	Bet         *float64 `hcl:"bet,optional"`
	Bankroll    *float64 `hcl:"bankroll,optional"`
	Seed        *int64   `hcl:"seed,optional"`
	Journal     *string  `hcl:"journal,optional"`
	Snapshot    *string  `hcl:"snapshot,optional"`
	DealerDelay *string  `hcl:"dealer_delay,optional"`
	ShowCount   *bool    `hcl:"show_count,optional"`
}

// Settings is the resolved configuration.
type Settings struct {
	Rules    rules.Rules
	Seats    int
	Bet      decimal.Decimal
	Bankroll decimal.Decimal
	// Seed is the random seed; 0 seeds from the clock.
	Seed        int64
	Journal     string
	Snapshot    string
	DealerDelay time.Duration
	ShowCount   bool
}

// Default returns the default settings
func Default() Settings {
	return Settings{
		Rules:       rules.Default(),
		Seats:       1,
		Bet:         decimal.NewFromInt(10),
		Bankroll:    decimal.NewFromInt(1000),
		DealerDelay: 600 * time.Millisecond,
		ShowCount:   true,
	}
}

// Load reads settings from an HCL file. A missing file yields the defaults.
func Load(filename string) (Settings, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Settings{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var doc File
	diags = gohcl.DecodeBody(file.Body, nil, &doc)
	if diags.HasErrors() {
		return Settings{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return doc.Merge(Default())
}

// Merge applies the attributes present in f over base.
func (f File) Merge(base Settings) (Settings, error) {
	s := base
	if t := f.Table; t != nil {
		set(&s.Rules.Decks, t.Decks)
		set(&s.Rules.HitSoft17, t.HitSoft17)
		set(&s.Rules.DoubleAfterSplit, t.DoubleAfterSplit)
		set(&s.Rules.Surrender, t.Surrender)
		set(&s.Rules.Penetration, t.Penetration)
		set(&s.Rules.MaxHands, t.MaxHands)
		set(&s.Rules.ResplitAces, t.ResplitAces)
		set(&s.Rules.HitSplitAces, t.HitSplitAces)
		if t.BlackjackPayout != nil {
			p, err := ParsePayout(*t.BlackjackPayout)
			if err != nil {
				return Settings{}, err
			}
			s.Rules.BlackjackPayout = p
		}
	}

	if t := f.Trainer; t != nil {
		set(&s.Rules.Tolerance, t.Tolerance)
		set(&s.Seats, t.Seats)
		set(&s.Seed, t.Seed)
		set(&s.Journal, t.Journal)
		set(&s.Snapshot, t.Snapshot)
		set(&s.ShowCount, t.ShowCount)
		if err := expandPaths(&s.Journal, &s.Snapshot); err != nil {
			return Settings{}, err
		}
		if t.CountMethod != nil {
			m, err := count.ParseMethod(*t.CountMethod)
			if err != nil {
				return Settings{}, err
			}
			s.Rules.CountMethod = m
		}
		if t.Bet != nil {
			s.Bet = decimal.NewFromFloat(*t.Bet)
		}
		if t.Bankroll != nil {
			s.Bankroll = decimal.NewFromFloat(*t.Bankroll)
		}
		if t.DealerDelay != nil {
			d, err := time.ParseDuration(*t.DealerDelay)
			if err != nil {
				return Settings{}, fmt.Errorf("dealer_delay: %w", err)
			}
			s.DealerDelay = d
		}
	}
	return s, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}

func expandPaths(paths ...*string) error {
	for _, p := range paths {
		v, err := ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ParsePayout parses a blackjack payout ratio such as "3:2" or "6:5", or a
// plain multiplier such as "1.5".
func ParsePayout(s string) (float64, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid blackjack payout %q", s)
		}
		return v, nil
	}
	n, err1 := strconv.Atoi(num)
	d, err2 := strconv.Atoi(den)
	if err1 != nil || err2 != nil || d <= 0 {
		return 0, fmt.Errorf("invalid blackjack payout %q", s)
	}
	return float64(n) / float64(d), nil
}

// Validate validates the settings
func (s Settings) Validate() error {
	if err := s.Rules.Validate(); err != nil {
		return err
	}
	if s.Seats < 1 || s.Seats > round.MaxSeats {
		return fmt.Errorf("seats must be between 1 and %d, got %d", round.MaxSeats, s.Seats)
	}
	if !s.Bet.IsPositive() {
		return fmt.Errorf("bet must be positive, got %s", s.Bet)
	}
	if s.Bankroll.LessThan(s.Bet.Mul(decimal.NewFromInt(int64(s.Seats)))) {
		return fmt.Errorf("bankroll %s cannot cover %d seats at %s", s.Bankroll, s.Seats, s.Bet)
	}
	if s.DealerDelay < 0 {
		return fmt.Errorf("dealer delay must not be negative, got %v", s.DealerDelay)
	}
	return nil
}

// ApplyEnv overrides settings from EnvSeed and EnvJournal.
func (s Settings) ApplyEnv(getenv func(string) string) (Settings, error) {
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		s.Seed = seed
	}
	if v := getenv(EnvJournal); v != "" {
		p, err := ExpandHome(v)
		if err != nil {
			return Settings{}, err
		}
		s.Journal = p
	}
	return s, nil
}

// Path picks the config file: the flag value, then EnvConfig, then
// DefaultPath.
func Path(flag string, getenv func(string) string) string {
	if flag != "" {
		return flag
	}
	if v := getenv(EnvConfig); v != "" {
		return v
	}
	return DefaultPath
}

// LoadDotEnv loads KEY=value pairs from a .env file into the environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(filename string) error {
	err := godotenv.Load(filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", filename, err)
	}
	return nil
}
