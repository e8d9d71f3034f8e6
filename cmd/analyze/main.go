// Command analyze runs the three analysis stages on a pair of images and
// prints each stage result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"foodsafe/internal/app"
	"foodsafe/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	food := flag.String("food", "", "path to the food-pack label image")
	report := flag.String("report", "", "path to the medical report image")
	model := flag.String("model", string(domain.DefaultModel), "model for the evaluation stage")
	language := flag.String("language", string(domain.DefaultLanguage), "language for the translated recommendation")
	flag.Parse()

	m, err := domain.ParseModel(*model)
	if err != nil {
		return err
	}
	lang, err := domain.ParseLanguage(*language)
	if err != nil {
		return err
	}
	if *food == "" {
		return &domain.MissingInputError{Field: "food"}
	}
	if *report == "" {
		return &domain.MissingInputError{Field: "report"}
	}

	cfg, logger, err := app.Load()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Timeout())
	defer cancel()

	nutrition, err := a.Analysis.RefineNutrition(ctx, *food)
	if err != nil {
		return err
	}
	printSection(os.Stdout, "Refined nutrition", nutrition)

	medical, err := a.Analysis.RefineMedical(ctx, *report)
	if err != nil {
		return err
	}
	printSection(os.Stdout, "Refined medical report", medical)

	recommendation, err := a.Analysis.EvaluateSafety(ctx, nutrition, medical, m, lang)
	if err != nil {
		return err
	}
	printSection(os.Stdout, "Recommendation", recommendation)
	return nil
}

func printSection(w io.Writer, title, body string) {
	fmt.Fprintf(w, "== %s ==\n%s\n\n", title, body)
}
