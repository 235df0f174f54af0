package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"tarun-kavipurapu/swarm-sim/pkg/report"

	"github.com/c-bata/go-prompt"
)

func runShell(rep *report.Report) {
	fmt.Printf("Run %s: %d peers, %d chunks, %d rounds\n", rep.ID, rep.Peers, rep.Chunks, rep.Totals.Rounds)
	fmt.Println("Type 'help' for commands.")

	prompt.New(
		func(in string) { shellExecutor(in, rep) },
		shellCompleter,
		prompt.OptionPrefix("swarm> "),
		prompt.OptionTitle("swarm-sim"),
	).Run()
}

func shellExecutor(in string, rep *report.Report) {
	in = strings.TrimSpace(in)
	switch in {
	case "":
		return
	case "exit", "quit":
		fmt.Println("Bye.")
		os.Exit(0)
	}
	printQuery(rep, in)
}

func printQuery(rep *report.Report, line string) {
	out, err := report.Query(rep, line)
	if errors.Is(err, report.ErrEmptyQuery) {
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(out)
}

func shellCompleter(d prompt.Document) []prompt.Suggest {
	s := make([]prompt.Suggest, 0, len(report.Commands)+1)
	for _, c := range report.Commands {
		s = append(s, prompt.Suggest{Text: c[0], Description: c[1]})
	}
	s = append(s, prompt.Suggest{Text: "exit", Description: "Leave the shell"})
	return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
}
