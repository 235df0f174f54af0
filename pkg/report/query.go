package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"tarun-kavipurapu/swarm-sim/pkg/config"
	"tarun-kavipurapu/swarm-sim/swarm"
)

// Commands lists the query commands with a short description each, in the
// order the shell suggests them.
var Commands = [][2]string{
	{"summary", "Run configuration and totals"},
	{"round", "Snapshot of round <n>"},
	{"peer", "Outcome of peer <i>"},
	{"chunk", "Outcome of chunk <i>"},
	{"slowest", "Peers that completed last [n]"},
	{"uploaders", "Peers that uploaded the most chunks [n]"},
	{"policies", "Completion and uploads by cooperation policy"},
	{"policy", "Peers following policy <name>"},
	{"help", "List the commands"},
}

const defaultTop = 5

// ErrEmptyQuery is returned for a blank query line.
var ErrEmptyQuery = errors.New("empty query")

// Query evaluates one shell command against r.
func Query(r *Report, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ErrEmptyQuery
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "summary":
		return summary(r), nil
	case "round":
		n, err := indexArg(args, len(r.Rounds), "round")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("round %d: %s", n, r.Rounds[n]), nil
	case "peer":
		i, err := indexArg(args, len(r.PeerStats), "peer")
		if err != nil {
			return "", err
		}
		return formatPeer(r.PeerStats[i]), nil
	case "chunk":
		i, err := indexArg(args, len(r.ChunkStats), "chunk")
		if err != nil {
			return "", err
		}
		c := r.ChunkStats[i]
		return fmt.Sprintf("chunk %d: fully distributed in round %d", c.Index, c.CompletionRound), nil
	case "slowest":
		n, err := topArg(args)
		if err != nil {
			return "", err
		}
		return rank(r, n, func(a, b PeerStat) int {
			return cmp.Compare(b.CompletionRound, a.CompletionRound)
		}), nil
	case "uploaders":
		n, err := topArg(args)
		if err != nil {
			return "", err
		}
		return rank(r, n, func(a, b PeerStat) int {
			return cmp.Compare(b.Uploads, a.Uploads)
		}), nil
	case "policies":
		return policies(r), nil
	case "policy":
		if len(args) != 1 {
			return "", errors.New("usage: policy <altruistic|selfish|freerider>")
		}
		coop, err := config.ParseCooperation(args[0])
		if err != nil {
			return "", err
		}
		var lines []string
		for _, p := range r.PeerStats {
			if p.Cooperation == coop.String() {
				lines = append(lines, formatPeer(p))
			}
		}
		return strings.Join(lines, "\n"), nil
	case "help":
		var b strings.Builder
		for _, c := range Commands {
			fmt.Fprintf(&b, "%-10s %s\n", c[0], c[1])
		}
		return strings.TrimRight(b.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func summary(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.ID)
	fmt.Fprintf(&b, "seed=%d chunk size=%d chunks=%d peers=%d seeds=%d\n", r.Seed, r.ChunkSize, r.Chunks, r.Peers, r.Seeds)
	fmt.Fprintf(&b, "rounds=%d exchanged=%d time=%s", r.Totals.Rounds, r.Totals.ExchangedChunks, r.Totals.ExecutionTime)
	return b.String()
}

func formatPeer(p PeerStat) string {
	kind := "peer"
	if p.Seed {
		kind = "seed"
	}
	return fmt.Sprintf("%s %s %d: %s %s speed=%d completed=%d uploads=%d uploaded=%d downloaded=%d",
		stateIcon(p.State), kind, p.Index, p.Cooperation, p.Strategy, p.Speed, p.CompletionRound, p.Uploads, p.UploadedUnits, p.DownloadedUnits)
}

// stateIcon maps a recorded state name back to its icon.
func stateIcon(state string) string {
	for s := swarm.PeerSeeding; s <= swarm.PeerComplete; s++ {
		if s.String() == state {
			return s.Icon()
		}
	}
	return swarm.PeerState(-1).Icon()
}

// rank lists the top n non-seed peers under the given ordering, ties
// broken by index.
func rank(r *Report, n int, order func(a, b PeerStat) int) string {
	var peers []PeerStat
	for _, p := range r.PeerStats {
		if !p.Seed {
			peers = append(peers, p)
		}
	}
	slices.SortStableFunc(peers, order)

	lines := make([]string, 0, n)
	for _, p := range peers[:min(n, len(peers))] {
		lines = append(lines, formatPeer(p))
	}
	return strings.Join(lines, "\n")
}

func policies(r *Report) string {
	type agg struct {
		peers   int
		rounds  int
		uploads int
	}
	byPolicy := make(map[string]*agg)
	var names []string
	for _, p := range r.PeerStats {
		if p.Seed {
			continue
		}
		a, ok := byPolicy[p.Cooperation]
		if !ok {
			a = &agg{}
			byPolicy[p.Cooperation] = a
			names = append(names, p.Cooperation)
		}
		a.peers++
		a.rounds += p.CompletionRound
		a.uploads += p.Uploads
	}
	slices.Sort(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		a := byPolicy[name]
		lines = append(lines, fmt.Sprintf("%s: peers=%d avg completion=%.2f uploads=%d",
			name, a.peers, float64(a.rounds)/float64(a.peers), a.uploads))
	}
	return strings.Join(lines, "\n")
}

func indexArg(args []string, n int, what string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s <index>", what)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s index %q: %w", what, args[0], err)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%s %d out of range [0, %d)", what, i, n)
	}
	return i, nil
}

func topArg(args []string) (int, error) {
	if len(args) == 0 {
		return defaultTop, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}
