// Command console runs an interactive analysis session: it prompts for the
// food label and medical report images, a model and a language, then prints
// the recommendation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/chzyer/readline"

	"foodsafe/internal/app"
	"foodsafe/internal/domain"
	"foodsafe/internal/handler"
	"foodsafe/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, logger, err := app.Load()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	fmt.Println("Food safety analysis. Press Tab to complete models and languages, Ctrl-D to quit.")
	for {
		input, err := readInput(rl)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			fmt.Println(err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Timeout())
		analysis, err := a.Analysis.Analyze(ctx, input)
		cancel()
		if err != nil {
			_, code, msg := handler.MapDomainError(err)
			fmt.Printf("Error [%s]: %s (%v)\n\n", code, msg, err)
			continue
		}
		fmt.Printf("\n%s\n\n", analysis.Recommendation)
	}
}

// completer offers the selectable models and languages after their keyword.
func completer() *readline.PrefixCompleter {
	models := make([]readline.PrefixCompleterInterface, 0, len(domain.Models))
	for _, m := range domain.Models {
		models = append(models, readline.PcItem(string(m)))
	}
	languages := make([]readline.PrefixCompleterInterface, 0, len(domain.Languages))
	for _, l := range domain.Languages {
		languages = append(languages, readline.PcItem(string(l)))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("model", models...),
		readline.PcItem("language", languages...),
	)
}

// readInput prompts for one analysis request. Model and language lines take
// the form "model <name>" and "language <name>"; blank keeps the default.
func readInput(rl *readline.Instance) (service.AnalyzeInput, error) {
	var input service.AnalyzeInput

	food, err := prompt(rl, "Food label image: ")
	if err != nil {
		return input, err
	}
	report, err := prompt(rl, "Medical report image: ")
	if err != nil {
		return input, err
	}
	for _, p := range []string{food, report} {
		if p == "" {
			continue
		}
		if _, err := domain.FileTypeFromName(p); err != nil {
			return input, err
		}
	}
	input.FoodImagePath = food
	input.ReportImagePath = report

	rawModel, err := prompt(rl, fmt.Sprintf("Model [%s]: ", domain.DefaultModel))
	if err != nil {
		return input, err
	}
	if rawModel = strings.TrimSpace(strings.TrimPrefix(rawModel, "model")); rawModel != "" {
		if input.Model, err = domain.ParseModel(rawModel); err != nil {
			return input, err
		}
	}

	rawLanguage, err := prompt(rl, fmt.Sprintf("Language [%s]: ", domain.DefaultLanguage))
	if err != nil {
		return input, err
	}
	if rawLanguage = strings.TrimSpace(strings.TrimPrefix(rawLanguage, "language")); rawLanguage != "" {
		if input.Language, err = domain.ParseLanguage(rawLanguage); err != nil {
			return input, err
		}
	}
	return input, nil
}

func prompt(rl *readline.Instance, p string) (string, error) {
	rl.SetPrompt(p)
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
