// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/dataset"
	"github.com/gorse-io/ordinal/ordinal"
	"github.com/gorse-io/ordinal/ordinal/metric"
	"github.com/gorse-io/ordinal/storage"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCommand.AddCommand(statsCommand, positionsCommand, topNCommand, similarityCommand, seenCommand, importCommand)
	positionsCommand.Flags().String("user", "", "print positions of a single user")
	positionsCommand.Flags().Bool("matrix", false, "print the user-item position matrix")
	topNCommand.Flags().IntP("n", "n", 0, "number of items per user (default from config)")
	similarityCommand.Flags().String("metric", "", "similarity metric: cosine or pearson (default from config)")
	importCommand.Flags().String("csv", "", "CSV file of ratings")
	importCommand.Flags().String("db", "", "SQLite database (sqlite://path)")
}

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics of ratings and preference relations",
	Run: func(cmd *cobra.Command, args []string) {
		ratings, relations := loadRelations()
		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Name", "Value"})
		_ = table.Append([]string{"users", strconv.Itoa(ratings.UserCount())})
		_ = table.Append([]string{"items", strconv.Itoa(ratings.ItemCount())})
		_ = table.Append([]string{"ratings", strconv.Itoa(ratings.CountRatings())})
		_ = table.Append([]string{"relations", strconv.Itoa(relations.UserCount())})
		_ = table.Append([]string{"entries", strconv.Itoa(relations.Entries())})
		_ = table.Render()
	},
}

var positionsCommand = &cobra.Command{
	Use:   "positions",
	Short: "Print item positions of users",
	Run: func(cmd *cobra.Command, args []string) {
		ratings, relations := loadRelations()
		if matrix, _ := cmd.Flags().GetBool("matrix"); matrix {
			positions, err := track("compute positions", relations.PositionMatrix)
			if err != nil {
				log.Logger().Fatal("failed to compute position matrix", zap.Error(err))
			}
			if err = renderPositionMatrix(os.Stdout, ratings, positions, conf.Preferences.ZeroInSparseMatrix); err != nil {
				log.Logger().Fatal("failed to render position matrix", zap.Error(err))
			}
			return
		}
		users := relations.Users()
		if userId, _ := cmd.Flags().GetString("user"); userId != "" {
			userIndex, ok := ratings.UserIndex(userId)
			if !ok {
				log.Logger().Fatal("user not found", zap.String("user_id", userId))
			}
			users = []int32{userIndex}
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"User", "Item", "Position"})
		for _, user := range users {
			relation, err := relations.Get(user)
			if err != nil {
				log.Logger().Fatal("failed to get preference relation", zap.Error(err))
			}
			positions := relations.PreferencesToPositions(relation)
			for _, item := range positions.Indices {
				position, _ := positions.Value(item)
				_ = table.Append([]string{ratings.UserId(user), ratings.ItemId(item), formatFloat(position)})
			}
		}
		_ = table.Render()
	},
}

var topNCommand = &cobra.Command{
	Use:   "topn",
	Short: "Print top N items of users by position",
	Run: func(cmd *cobra.Command, args []string) {
		n, _ := cmd.Flags().GetInt("n")
		if n == 0 {
			n = conf.Ordinal.TopN
		}
		ratings, relations := loadRelations()
		topN, err := track("rank items", func(ctx context.Context) (map[int32][]int32, error) {
			return relations.TopNItemsByUser(ctx, n)
		})
		if err != nil {
			log.Logger().Fatal("failed to rank items", zap.Error(err))
		}
		printItemLists(ratings, relations.Users(), topN)
	},
}

var similarityCommand = &cobra.Command{
	Use:   "similarity",
	Short: "Print similarities between users",
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("metric")
		if name == "" {
			name = conf.Ordinal.Similarity
		}
		kind, err := ordinal.ParseSimilarityKind(strings.ToLower(name))
		if err != nil {
			log.Logger().Fatal("invalid metric", zap.Error(err))
		}
		m, err := metric.Get(kind, conf.Preferences)
		if err != nil {
			log.Logger().Fatal("invalid metric", zap.Error(err))
		}
		ratings, relations := loadRelations()
		similarities, err := track("compute similarities", func(ctx context.Context) (*ordinal.SimilarityMatrix, error) {
			return relations.ComputeSimilarities(ctx, kind, m)
		})
		if err != nil {
			log.Logger().Fatal("failed to compute similarities", zap.Error(err))
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header(append([]string{""}, lo.Map(similarities.Users, func(user int32, _ int) string {
			return ratings.UserId(user)
		})...))
		for i, user := range similarities.Users {
			row := []string{ratings.UserId(user)}
			for j := range similarities.Users {
				row = append(row, formatFloat(similarities.At(i, j)))
			}
			_ = table.Append(row)
		}
		_ = table.Render()
	},
}

var seenCommand = &cobra.Command{
	Use:   "seen",
	Short: "Print seen items of users",
	Run: func(cmd *cobra.Command, args []string) {
		ratings, relations := loadRelations()
		seenItems, err := track("collect seen items", relations.SeenItemsByUser)
		if err != nil {
			log.Logger().Fatal("failed to collect seen items", zap.Error(err))
		}
		printItemLists(ratings, relations.Users(), seenItems)
	},
}

var importCommand = &cobra.Command{
	Use:   "import",
	Short: "Import ratings from a CSV file into a SQLite database",
	Run: func(cmd *cobra.Command, args []string) {
		csvPath, _ := cmd.Flags().GetString("csv")
		dbPath, _ := cmd.Flags().GetString("db")
		if csvPath == "" || dbPath == "" {
			log.Logger().Fatal("both --csv and --db are required")
		}
		ratings, err := dataset.LoadRatingsFromCSV(csvPath, conf.Data.Separator, conf.Data.HasHeader)
		if err != nil {
			log.Logger().Fatal("failed to load ratings", zap.String("csv", csvPath), zap.Error(err))
		}
		database, err := storage.Open(dbPath)
		if err != nil {
			log.Logger().Fatal("failed to open database", zap.String("db", dbPath), zap.Error(err))
		}
		defer database.Close()
		if err = database.Init(); err != nil {
			log.Logger().Fatal("failed to init database", zap.Error(err))
		}
		if err = database.InsertRatings(ratings.Ratings()); err != nil {
			log.Logger().Fatal("failed to insert ratings", zap.Error(err))
		}
		count, err := database.CountRatings()
		if err != nil {
			log.Logger().Fatal("failed to count ratings", zap.Error(err))
		}
		log.Logger().Info("import ratings",
			zap.Int("n_imported", ratings.CountRatings()),
			zap.Int("n_ratings", count))
	},
}

// renderPositionMatrix writes one row per user and one column per item. Uncompared items are
// blank and the zero sentinel is printed as 0.
func renderPositionMatrix(w io.Writer, ratings *dataset.RatingMatrix, positions *ordinal.PositionMatrix, sentinel float64) error {
	_, cols := positions.Dims()
	table := tablewriter.NewWriter(w)
	table.Header(append([]string{"User"}, lo.Times(cols, func(item int) string {
		return ratings.ItemId(int32(item))
	})...))
	for row, user := range positions.Users {
		cells := []string{ratings.UserId(user)}
		for col := 0; col < cols; col++ {
			switch value := positions.At(row, col); value {
			case 0:
				cells = append(cells, "")
			case sentinel:
				cells = append(cells, formatFloat(0))
			default:
				cells = append(cells, formatFloat(value))
			}
		}
		if err := table.Append(cells); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func printItemLists(ratings *dataset.RatingMatrix, users []int32, items map[int32][]int32) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"User", "Items"})
	for _, user := range users {
		_ = table.Append([]string{ratings.UserId(user), strings.Join(lo.Map(items[user], func(item int32, _ int) string {
			return ratings.ItemId(item)
		}), ",")})
	}
	_ = table.Render()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
