package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jackpal/bencode-go"

	"tarun-kavipurapu/swarm-sim/pkg/monitor"
	"tarun-kavipurapu/swarm-sim/swarm"
)

// Format selects the export encoding.
type Format string

const (
	JSON    Format = "json"
	Bencode Format = "bencode"
)

func (f Format) String() string { return string(f) }

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	switch Format(s) {
	case JSON, Bencode:
		*f = Format(s)
		return nil
	}
	return fmt.Errorf("unknown format %q (want json or bencode)", s)
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

// Encode writes r in the given format.
func Encode(w io.Writer, r *Report, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as json: %w", err)
		}
	case Bencode:
		if err := bencode.Marshal(w, toWire(r)); err != nil {
			return fmt.Errorf("failed to encode report as bencode: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// Decode reads a report written by Encode.
func Decode(rd io.Reader, format Format) (*Report, error) {
	switch format {
	case JSON:
		var r Report
		if err := json.NewDecoder(rd).Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode json report: %w", err)
		}
		return &r, nil
	case Bencode:
		var w wireReport
		if err := bencode.Unmarshal(rd, &w); err != nil {
			return nil, fmt.Errorf("failed to decode bencode report: %w", err)
		}
		return fromWire(&w)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Bencode carries only integers and byte strings, so the report is mapped
// onto a flat shape first. The encoder takes the struct by value.

type wireRound struct {
	CompletedPeers  int64 `bencode:"completed_peers"`
	CompletedChunks int64 `bencode:"completed_chunks"`
	ExchangedChunks int64 `bencode:"exchanged_chunks"`
	ExecutionTime   int64 `bencode:"execution_ns"`
}

type wirePeer struct {
	Index           int64  `bencode:"index"`
	Seed            int64  `bencode:"seed"`
	Cooperation     string `bencode:"cooperation"`
	Strategy        string `bencode:"strategy"`
	State           string `bencode:"state"`
	Speed           int64  `bencode:"speed"`
	CompletionRound int64  `bencode:"completion_round"`
	Uploads         int64  `bencode:"uploads"`
	UploadedUnits   int64  `bencode:"uploaded_units"`
	DownloadedUnits int64  `bencode:"downloaded_units"`
}

type wireChunk struct {
	Index           int64 `bencode:"index"`
	CompletionRound int64 `bencode:"completion_round"`
}

type wireReport struct {
	ID         string      `bencode:"id"`
	CreatedAt  int64       `bencode:"created_at"`
	Seed       string      `bencode:"seed"`
	ChunkSize  int64       `bencode:"chunk_size"`
	Chunks     int64       `bencode:"chunks"`
	Peers      int64       `bencode:"peers"`
	Seeds      int64       `bencode:"seeds"`
	Rounds     []wireRound `bencode:"rounds"`
	PeerStats  []wirePeer  `bencode:"peer_stats"`
	ChunkStats []wireChunk `bencode:"chunk_stats"`
}

func toWire(r *Report) wireReport {
	w := wireReport{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UnixNano(),
		Seed:      strconv.FormatUint(r.Seed, 10),
		ChunkSize: int64(r.ChunkSize),
		Chunks:    int64(r.Chunks),
		Peers:     int64(r.Peers),
		Seeds:     int64(r.Seeds),
	}
	for _, round := range r.Rounds {
		w.Rounds = append(w.Rounds, wireRound{
			CompletedPeers:  int64(round.CompletedPeers),
			CompletedChunks: int64(round.CompletedChunks),
			ExchangedChunks: int64(round.ExchangedChunks),
			ExecutionTime:   int64(round.ExecutionTime),
		})
	}
	for _, p := range r.PeerStats {
		var seed int64
		if p.Seed {
			seed = 1
		}
		w.PeerStats = append(w.PeerStats, wirePeer{
			Index:           int64(p.Index),
			Seed:            seed,
			Cooperation:     p.Cooperation,
			Strategy:        p.Strategy,
			State:           p.State,
			Speed:           int64(p.Speed),
			CompletionRound: int64(p.CompletionRound),
			Uploads:         int64(p.Uploads),
			UploadedUnits:   p.UploadedUnits,
			DownloadedUnits: p.DownloadedUnits,
		})
	}
	for _, c := range r.ChunkStats {
		w.ChunkStats = append(w.ChunkStats, wireChunk{
			Index:           int64(c.Index),
			CompletionRound: int64(c.CompletionRound),
		})
	}
	return w
}

func fromWire(w *wireReport) (*Report, error) {
	seed, err := strconv.ParseUint(w.Seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed %q in report: %w", w.Seed, err)
	}

	r := &Report{
		ID:        w.ID,
		CreatedAt: time.Unix(0, w.CreatedAt),
		Seed:      seed,
		ChunkSize: int(w.ChunkSize),
		Chunks:    int(w.Chunks),
		Peers:     int(w.Peers),
		Seeds:     int(w.Seeds),
	}
	for _, round := range w.Rounds {
		r.Rounds = append(r.Rounds, swarm.Round{
			CompletedPeers:  int(round.CompletedPeers),
			CompletedChunks: int(round.CompletedChunks),
			ExchangedChunks: int(round.ExchangedChunks),
			ExecutionTime:   time.Duration(round.ExecutionTime),
		})
	}
	for _, p := range w.PeerStats {
		r.PeerStats = append(r.PeerStats, PeerStat{
			Index:           int(p.Index),
			Seed:            p.Seed != 0,
			Cooperation:     p.Cooperation,
			Strategy:        p.Strategy,
			State:           p.State,
			Speed:           int(p.Speed),
			CompletionRound: int(p.CompletionRound),
			Uploads:         int(p.Uploads),
			UploadedUnits:   p.UploadedUnits,
			DownloadedUnits: p.DownloadedUnits,
		})
	}
	for _, c := range w.ChunkStats {
		r.ChunkStats = append(r.ChunkStats, ChunkStat{
			Index:           int(c.Index),
			CompletionRound: int(c.CompletionRound),
		})
	}
	r.Totals = monitor.Summarize(r.Rounds)
	return r, nil
}
