package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/graphqa/cmd/graphqa/internal"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Answer a single question",
	Long: `Answer one question and exit.

The question is answered with the configured default strategy unless
--strategy names another one (cypher, vector, vector-graph, subgraph).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askStrategy    string
	askShowContext bool
)

func init() {
	askCmd.Flags().StringVarP(&askStrategy, "strategy", "s", "", "Retrieval strategy (default: retrieval.strategy from config)")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "Print the context the answer was grounded on")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	p, err := a.Pipeline(askStrategy)
	if err != nil {
		return err
	}

	res, err := p.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}
	return formatter(cmd).PrintAnswer(toAnswer(p.Strategy(), question, res), askShowContext)
}

func toAnswer(strategy, question string, res *pipeline.Result) internal.Answer {
	return internal.Answer{
		Strategy: strategy,
		Question: question,
		Answer:   res.Answer,
		Query:    res.Query,
		Context:  res.Context,
		Attempts: res.Attempts,
		Elapsed:  res.Elapsed,
	}
}
