package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/graphqa/cmd/graphqa/internal"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"github.com/zero-day-ai/graphqa/internal/retrieval"
)

var compareCmd = &cobra.Command{
	Use:   "compare QUESTION...",
	Short: "Answer with vector search alone and with vector search plus graph data",
	Long: `Run the vector-only baseline and the vector-graph strategy for the same
question and print both answers with the context each was grounded on.

A strategy that fails shows the fallback answer; the command fails only
when both do.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

var compareStrategies = []string{retrieval.StrategyVector, retrieval.StrategyVectorGraph}

func runCompare(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	answers := make([]internal.Answer, 0, len(compareStrategies))
	var lastErr error
	failed := 0
	for _, name := range compareStrategies {
		p, err := a.Pipeline(name)
		if err != nil {
			return err
		}
		res, err := p.Ask(cmd.Context(), question)
		if err != nil {
			a.Logger.ErrorContext(cmd.Context(), "comparison strategy failed", "strategy", name, "error", err)
			answers = append(answers, internal.Answer{Strategy: name, Question: question, Answer: conversation.FallbackAnswer})
			lastErr = err
			failed++
			continue
		}
		answers = append(answers, toAnswer(name, question, res))
	}

	if err := formatter(cmd).PrintComparison(question, answers); err != nil {
		return err
	}
	if failed == len(compareStrategies) {
		return lastErr
	}
	return nil
}
