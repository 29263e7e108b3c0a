// Copyright 2020 gorse Project Authors
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

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	SimilarityCosine  = "cosine"
	SimilarityPearson = "pearson"
)

// Config is the configuration for the ordinal pipeline.
type Config struct {
	Preferences PreferenceConfig `mapstructure:"preferences"`
	Ordinal     OrdinalConfig    `mapstructure:"ordinal"`
	Data        DataConfig       `mapstructure:"data"`
}

// PreferenceConfig maps preference judgments to numeric codes. ZeroInSparseMatrix stands
// for a position that is exactly zero in a representation where zero means absent.
type PreferenceConfig struct {
	Preferred          float64 `mapstructure:"preferred" validate:"ne=0"`
	LessPreferred      float64 `mapstructure:"less_preferred" validate:"ne=0,nefield=Preferred"`
	EquallyPreferred   float64 `mapstructure:"equally_preferred" validate:"ne=0,nefield=Preferred,nefield=LessPreferred"`
	ZeroInSparseMatrix float64 `mapstructure:"zero_in_sparse_matrix" validate:"ne=0,gte=-1e-6,lte=1e-6"`
}

// OrdinalConfig is the configuration of preference relation computations.
type OrdinalConfig struct {
	NumJobs       int    `mapstructure:"num_jobs" validate:"gte=0"`
	TopN          int    `mapstructure:"top_n" validate:"gt=0"`
	SeenThreshold int    `mapstructure:"seen_threshold" validate:"gt=0"`
	Similarity    string `mapstructure:"similarity" validate:"oneof=cosine pearson"`
}

// DataConfig is the configuration of the rating source.
type DataConfig struct {
	Source    string `mapstructure:"source" validate:"required"`
	Separator string `mapstructure:"separator" validate:"required"`
	HasHeader bool   `mapstructure:"has_header"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Preferences: PreferenceConfig{
			Preferred:          3,
			LessPreferred:      1,
			EquallyPreferred:   2,
			ZeroInSparseMatrix: 1e-14,
		},
		Ordinal: OrdinalConfig{
			NumJobs:       0,
			TopN:          10,
			SeenThreshold: 1,
			Similarity:    SimilarityCosine,
		},
		Data: DataConfig{
			Source:    "csv://ratings.csv",
			Separator: ",",
			HasHeader: false,
		},
	}
}

func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return errors.Trace(validate.Struct(config))
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [preferences]
	viper.SetDefault("preferences.preferred", defaultConfig.Preferences.Preferred)
	viper.SetDefault("preferences.less_preferred", defaultConfig.Preferences.LessPreferred)
	viper.SetDefault("preferences.equally_preferred", defaultConfig.Preferences.EquallyPreferred)
	viper.SetDefault("preferences.zero_in_sparse_matrix", defaultConfig.Preferences.ZeroInSparseMatrix)
	// [ordinal]
	viper.SetDefault("ordinal.num_jobs", defaultConfig.Ordinal.NumJobs)
	viper.SetDefault("ordinal.top_n", defaultConfig.Ordinal.TopN)
	viper.SetDefault("ordinal.seen_threshold", defaultConfig.Ordinal.SeenThreshold)
	viper.SetDefault("ordinal.similarity", defaultConfig.Ordinal.Similarity)
	// [data]
	viper.SetDefault("data.source", defaultConfig.Data.Source)
	viper.SetDefault("data.separator", defaultConfig.Data.Separator)
	viper.SetDefault("data.has_header", defaultConfig.Data.HasHeader)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from toml file. Environment variables take precedence
// over the file.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()

	// bind environment bindings
	bindings := []configBinding{
		{"ordinal.num_jobs", "ORDINAL_NUM_JOBS"},
		{"ordinal.top_n", "ORDINAL_TOP_N"},
		{"ordinal.similarity", "ORDINAL_SIMILARITY"},
		{"data.source", "ORDINAL_DATA_SOURCE"},
	}
	for _, binding := range bindings {
		if err := viper.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// load config file
	if path != "" {
		viper.SetConfigType("toml")
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	conf.Ordinal.Similarity = strings.ToLower(conf.Ordinal.Similarity)
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
