package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// MaxNormalizedSpeed bounds the fast tier after dividing the three tiers by
// their greatest common divisor.
const MaxNormalizedSpeed = 1000

// Cooperation decides whether a peer serves chunks to others.
type Cooperation int

const (
	// Altruistic peers always upload.
	Altruistic Cooperation = iota
	// Selfish peers upload only until they own the whole file.
	Selfish
	// Freerider peers never upload.
	Freerider
)

func (c Cooperation) String() string {
	switch c {
	case Altruistic:
		return "altruistic"
	case Selfish:
		return "selfish"
	case Freerider:
		return "freerider"
	default:
		return "unknown"
	}
}

// Strategy is the order in which a peer considers chunks to download.
type Strategy int

const (
	RarestFirst Strategy = iota
	MostCommonFirst
	Uniform
)

func (s Strategy) String() string {
	switch s {
	case RarestFirst:
		return "rarest-first"
	case MostCommonFirst:
		return "most-common-first"
	case Uniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// SpeedTier names one of the three configured bandwidth classes.
type SpeedTier int

const (
	Fast SpeedTier = iota
	Medium
	Slow
)

func (t SpeedTier) String() string {
	switch t {
	case Fast:
		return "fast"
	case Medium:
		return "medium"
	case Slow:
		return "slow"
	default:
		return "unknown"
	}
}

// Speeds holds the raw bandwidth tiers, in transfer units per round.
type Speeds struct {
	Fast   int
	Medium int
	Slow   int
}

// Tier returns the speed of the given class.
func (s Speeds) Tier(t SpeedTier) int {
	switch t {
	case Medium:
		return s.Medium
	case Slow:
		return s.Slow
	default:
		return s.Fast
	}
}

// Params are the global parameters shared by both construction modes.
type Params struct {
	Chunks int
	Peers  int
	Seeds  int
	Speeds Speeds
}

// Config is a validated description of a swarm. Every per-peer slice has
// exactly Peers entries; index i < Seeds denotes a seed.
type Config struct {
	Chunks    int
	Peers     int
	Seeds     int
	ChunkSize int

	// Speeds after normalization by their greatest common divisor.
	Speeds Speeds

	Cooperation []Cooperation
	Strategies  []Strategy
	PeerSpeeds  []int
}

// Validate checks the preconditions common to both construction modes and
// reports every violation at once.
func (p Params) Validate() error {
	var err error
	if p.Chunks <= 0 {
		err = multierr.Append(err, fmt.Errorf("number of chunks must be positive, got %d", p.Chunks))
	}
	if p.Seeds <= 0 {
		err = multierr.Append(err, fmt.Errorf("number of seeds must be positive, got %d", p.Seeds))
	}
	if p.Peers <= p.Seeds {
		err = multierr.Append(err, fmt.Errorf("number of peers (%d) must exceed number of seeds (%d)", p.Peers, p.Seeds))
	}
	if p.Speeds.Slow <= 0 {
		err = multierr.Append(err, fmt.Errorf("slow speed must be positive, got %d", p.Speeds.Slow))
	}
	if p.Speeds.Medium < p.Speeds.Slow {
		err = multierr.Append(err, fmt.Errorf("medium speed (%d) must not be below slow speed (%d)", p.Speeds.Medium, p.Speeds.Slow))
	}
	if p.Speeds.Fast < p.Speeds.Medium {
		err = multierr.Append(err, fmt.Errorf("fast speed (%d) must not be below medium speed (%d)", p.Speeds.Fast, p.Speeds.Medium))
	}
	return err
}

// Normalize divides the tiers by their greatest common divisor and derives
// the chunk size as the least common multiple of the normalized tiers, so
// every speed class moves a chunk in a whole number of rounds.
func (s Speeds) Normalize() (Speeds, int, error) {
	if s.Fast <= 0 || s.Medium <= 0 || s.Slow <= 0 {
		return Speeds{}, 0, errors.New("speeds must be positive")
	}
	g := gcd(gcd(s.Slow, s.Medium), s.Fast)
	n := Speeds{Fast: s.Fast / g, Medium: s.Medium / g, Slow: s.Slow / g}
	if n.Fast > MaxNormalizedSpeed {
		return Speeds{}, 0, fmt.Errorf("normalized fast speed %d exceeds %d", n.Fast, MaxNormalizedSpeed)
	}
	return n, lcm(lcm(n.Slow, n.Medium), n.Fast), nil
}

// NewUniform builds a swarm where the first Seeds peers are seeds and the
// remaining peers are split into altruistic, selfish and freerider blocks,
// in that order. Every peer runs at the fast tier with the same strategy.
func NewUniform(p Params, selfish, freeriders int, strategy Strategy) (*Config, error) {
	err := p.Validate()
	if selfish < 0 || freeriders < 0 {
		err = multierr.Append(err, errors.New("selfish and freerider counts must not be negative"))
	} else if p.Seeds+selfish+freeriders > p.Peers {
		err = multierr.Append(err, fmt.Errorf("seeds (%d) + selfish (%d) + freeriders (%d) exceed number of peers (%d)",
			p.Seeds, selfish, freeriders, p.Peers))
	}
	if err != nil {
		return nil, err
	}

	speeds, chunkSize, err := p.Speeds.Normalize()
	if err != nil {
		return nil, err
	}

	cfg := newConfig(p, speeds, chunkSize)
	altruistic := p.Peers - selfish - freeriders
	for i := 0; i < p.Peers; i++ {
		switch {
		case i < altruistic:
			cfg.Cooperation[i] = Altruistic
		case i < altruistic+selfish:
			cfg.Cooperation[i] = Selfish
		default:
			cfg.Cooperation[i] = Freerider
		}
		if i >= p.Seeds {
			cfg.Strategies[i] = strategy
		}
		cfg.PeerSpeeds[i] = speeds.Fast
	}
	return cfg, nil
}

// NewExplicit builds a swarm from one descriptor per non-seed peer. Seeds
// are altruistic fast peers; peers without a descriptor are altruistic,
// rarest-first and run at the slow tier.
func NewExplicit(p Params, descriptors []PeerDescriptor) (*Config, error) {
	err := p.Validate()
	if err == nil && len(descriptors) > p.Peers-p.Seeds {
		err = fmt.Errorf("%d peer descriptors given but only %d non-seed peers", len(descriptors), p.Peers-p.Seeds)
	}
	if err != nil {
		return nil, err
	}

	speeds, chunkSize, err := p.Speeds.Normalize()
	if err != nil {
		return nil, err
	}

	cfg := newConfig(p, speeds, chunkSize)
	for i := 0; i < p.Peers; i++ {
		switch {
		case i < p.Seeds:
			cfg.PeerSpeeds[i] = speeds.Fast
		case i-p.Seeds < len(descriptors):
			d := descriptors[i-p.Seeds]
			cfg.Cooperation[i] = d.Cooperation
			cfg.Strategies[i] = d.Strategy
			cfg.PeerSpeeds[i] = speeds.Tier(d.Speed)
		default:
			cfg.PeerSpeeds[i] = speeds.Slow
		}
	}
	return cfg, nil
}

func newConfig(p Params, speeds Speeds, chunkSize int) *Config {
	return &Config{
		Chunks:      p.Chunks,
		Peers:       p.Peers,
		Seeds:       p.Seeds,
		ChunkSize:   chunkSize,
		Speeds:      speeds,
		Cooperation: make([]Cooperation, p.Peers),
		Strategies:  make([]Strategy, p.Peers),
		PeerSpeeds:  make([]int, p.Peers),
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}
