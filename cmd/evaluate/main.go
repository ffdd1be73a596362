// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Command evaluate trains the recommendation models once against the
// configured catalog and prints accuracy reports.
//
// It runs a holdout evaluation of the factor model next to the global-mean
// baseline, optionally k-fold cross-validation, and sample recommendations
// for a title and a user.
//
//	evaluate -folds 5 -title "The Hunger Games" -user 314
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/tomtom215/goodbooks/internal/config"
	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/logging"
	"github.com/tomtom215/goodbooks/internal/recommend"
	"github.com/tomtom215/goodbooks/internal/recommend/algorithms"
)

type options struct {
	folds int
	title string
	user  int
	topN  int
}

func main() {
	var opts options
	flag.IntVar(&opts.folds, "folds", 0, "cross-validation folds (0 uses config, -1 skips)")
	flag.StringVar(&opts.title, "title", "", "title or book id for sample content recommendations")
	flag.IntVar(&opts.user, "user", 0, "user id for sample collaborative recommendations")
	flag.IntVar(&opts.topN, "n", 5, "number of sample recommendations")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "evaluate: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    "console",
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("error closing database")
		}
	}()
	if err := db.LoadCSV(ctx, cfg.Data.BooksPath, cfg.Data.RatingsPath); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	items, err := db.Items(ctx)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	interactions, err := db.Interactions(ctx, cfg.Recommend.MinUserRatings)
	if err != nil {
		return fmt.Errorf("load interactions: %w", err)
	}

	engineCfg := cfg.Recommend.EngineConfig()
	engine, err := recommend.NewEngine(engineCfg, algorithms.NewBackend(), logging.WithComponent("recommend"))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	if err := engine.BuildContentIndex(ctx, items); err != nil {
		return fmt.Errorf("build content index: %w", err)
	}

	train, test, err := algorithms.NewInteractionMatrix(interactions).Split(engineCfg.Split.TestRatio, engineCfg.Split.Seed)
	if err != nil {
		return fmt.Errorf("split interactions: %w", err)
	}
	baseline, err := algorithms.BaselineAccuracy(train, test)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	_, holdout, err := engine.TrainCollaborative(ctx, interactions, recommend.TrainConfig{})
	if err != nil {
		return fmt.Errorf("train factor model: %w", err)
	}

	fmt.Fprint(out, catalogSummary(len(items), len(interactions), engineCfg.Training.MinUserRatings))
	renderHoldout(out, holdout, baseline)

	if opts.folds >= 0 {
		cv, err := engine.CrossValidate(ctx, interactions, opts.folds)
		if err != nil {
			return err
		}
		renderCrossValidation(out, cv)
	}

	if opts.title != "" {
		recs, err := engine.ContentRecommend(ctx, opts.title, opts.topN)
		if err != nil {
			return fmt.Errorf("content recommendations for %q: %w", opts.title, err)
		}
		fmt.Fprintf(out, "Books similar to %q\n", opts.title)
		renderRows(out, []string{"Book", "Title", "Authors", "Similarity"},
			lo.Map(recs, func(r recommend.BookRecommendation, _ int) []string {
				return []string{strconv.Itoa(r.ItemID), r.Title, r.Authors, formatFloat(r.Score)}
			}))
	}

	if opts.user != 0 {
		if err := renderUser(ctx, out, engine, opts.user, opts.topN); err != nil {
			return err
		}
	}
	return nil
}

func renderHoldout(out io.Writer, model, baseline recommend.EvaluationResult) {
	fmt.Fprintf(out, "Holdout evaluation (%d test ratings)\n", model.Count)
	renderRows(out, []string{"Model", "RMSE", "MAE", fmt.Sprintf("Precision@%d", model.K), fmt.Sprintf("Recall@%d", model.K)},
		[][]string{
			{"latent factor", formatFloat(model.RMSE), formatFloat(model.MAE), formatFloat(model.PrecisionAtK), formatFloat(model.RecallAtK)},
			{"global mean", formatFloat(baseline.RMSE), formatFloat(baseline.MAE), "-", "-"},
		})
}

func renderCrossValidation(out io.Writer, cv *recommend.CrossValidationResult) {
	fmt.Fprintf(out, "Cross-validation (%d folds)\n", len(cv.Folds))
	rows := lo.Map(cv.Folds, func(f recommend.EvaluationResult, i int) []string {
		return []string{strconv.Itoa(i + 1), formatFloat(f.RMSE), formatFloat(f.MAE), strconv.Itoa(f.Count)}
	})
	rows = append(rows,
		[]string{"mean", formatFloat(cv.MeanRMSE), formatFloat(cv.MeanMAE), ""},
		[]string{"std", formatFloat(cv.StdRMSE), formatFloat(cv.StdMAE), ""})
	renderRows(out, []string{"Fold", "RMSE", "MAE", "Ratings"}, rows)
}

func renderUser(ctx context.Context, out io.Writer, engine *recommend.Engine, userID, topN int) error {
	recs, err := engine.CollaborativeRecommend(ctx, userID, topN)
	if errors.Is(err, recommend.ErrUnknownUser) {
		fmt.Fprintf(out, "User %d has no ratings in the training data\n", userID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recommendations for user %d: %w", userID, err)
	}

	index := engine.ContentIndex()
	fmt.Fprintf(out, "Recommendations for user %d\n", userID)
	renderRows(out, []string{"Book", "Title", "Predicted"},
		lo.Map(recs, func(r recommend.ScoredItem, _ int) []string {
			title := ""
			if item, ok := index.Item(r.ItemID); ok {
				title = item.Title
			}
			return []string{strconv.Itoa(r.ItemID), title, formatFloat(r.Score)}
		}))
	return nil
}

func renderRows(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(out)
}

// catalogSummary describes the loaded data; the rating filter is strict.
func catalogSummary(books, ratings, minUserRatings int) string {
	return fmt.Sprintf("Catalog: %d books, %d ratings from users with more than %d ratings\n\n",
		books, ratings, minUserRatings)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
