package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PeerDescriptor is the (cooperation, strategy, speed) triple of one
// explicitly configured peer.
type PeerDescriptor struct {
	Cooperation Cooperation
	Strategy    Strategy
	Speed       SpeedTier
}

func (d PeerDescriptor) String() string {
	return fmt.Sprintf("%s/%s/%s", d.Cooperation, d.Strategy, d.Speed)
}

// ParseDescriptor decodes a descriptor of up to three single-character
// codes. Position 0 is cooperation (s=selfish, f=freerider, else
// altruistic), position 1 is strategy (m=most-common-first, u=uniform, else
// rarest-first) and position 2 is speed (m=medium, s=slow, else fast).
// Missing positions take the defaults.
func ParseDescriptor(s string) PeerDescriptor {
	var d PeerDescriptor

	if len(s) > 0 {
		switch s[0] {
		case 's':
			d.Cooperation = Selfish
		case 'f':
			d.Cooperation = Freerider
		}
	}
	if len(s) > 1 {
		switch s[1] {
		case 'm':
			d.Strategy = MostCommonFirst
		case 'u':
			d.Strategy = Uniform
		}
	}
	if len(s) > 2 {
		switch s[2] {
		case 'm':
			d.Speed = Medium
		case 's':
			d.Speed = Slow
		}
	}
	return d
}

// ReadDescriptors parses whitespace separated descriptors, one peer each,
// ignoring everything after a '#' on a line.
func ReadDescriptors(r io.Reader) ([]PeerDescriptor, error) {
	var out []PeerDescriptor

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			out = append(out, ParseDescriptor(field))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read peer descriptors: %w", err)
	}
	return out, nil
}

// LoadDescriptors reads descriptors from a file.
func LoadDescriptors(path string) ([]PeerDescriptor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open peer config %s: %w", path, err)
	}
	defer file.Close()

	return ReadDescriptors(file)
}
