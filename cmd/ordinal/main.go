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
	"os"
	"time"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/base/progress"
	"github.com/gorse-io/ordinal/cmd/version"
	"github.com/gorse-io/ordinal/config"
	"github.com/gorse-io/ordinal/dataset"
	"github.com/gorse-io/ordinal/ordinal"
	"github.com/gorse-io/ordinal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var conf *config.Config

var rootCommand = &cobra.Command{
	Use:   "ordinal",
	Short: "Ordinal preference relations from explicit ratings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)

		// load config
		configPath, _ := cmd.Flags().GetString("config")
		var err error
		if conf, err = config.LoadConfig(configPath); err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Print(version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.Flags().BoolP("version", "v", false, "ordinal version")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

// loadRelations loads ratings from the configured source and builds preference relations.
func loadRelations() (*dataset.RatingMatrix, *ordinal.PreferenceRelations) {
	ratings, err := storage.LoadRatings(conf.Data)
	if err != nil {
		log.Logger().Fatal("failed to load ratings", zap.String("source", conf.Data.Source), zap.Error(err))
	}
	relations, err := track("build preference relations", func(ctx context.Context) (*ordinal.PreferenceRelations, error) {
		return ordinal.CreateDiscrete(ctx, ratings, conf)
	})
	if err != nil {
		log.Logger().Fatal("failed to build preference relations", zap.Error(err))
	}
	return ratings, relations
}

// track runs f under a root span and renders the span on a progress bar until f returns.
func track[T any](description string, f func(ctx context.Context) (T, error)) (T, error) {
	tracer := progress.NewTracer("ordinal")
	ctx, span := tracer.Start(context.Background(), description, 1)
	bar := progressbar.NewOptions(1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish())

	var (
		result T
		err    error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err = f(ctx)
	}()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			if err != nil {
				span.Fail(err)
			} else {
				span.End()
			}
			_ = bar.Finish()
			return result, err
		case <-ticker.C:
			for _, p := range tracer.List() {
				bar.ChangeMax(p.Total)
				_ = bar.Set(p.Count)
			}
		}
	}
}
