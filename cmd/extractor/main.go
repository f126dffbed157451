/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimclient"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimconfig"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/appconfig"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apispec"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/extractor"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/fileops"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/graph"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/layout"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/logger"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/metrics"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
)

// Version information (set via ldflags during build).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "apim-extractor",
	Short: "Extracts an API Management Service instance into a resource tree",
	Long:  "Walks every resource kind an API Management Service instance's SKU supports and writes it to a canonical on-disk tree, optionally committing the result to a git repository.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the apim-sync configuration file")
	if err := rootCmd.MarkFlagRequired("config"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := appconfig.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	metrics.SetEnabled(cfg.Metrics.Enabled)
	metrics.Init()

	log := logger.NewLogger(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, "extractor").
		With(slog.String("run_id", uuid.New().String()))
	log.Info("starting apim-extractor",
		slog.String("version", Version),
		slog.String("git_commit", GitCommit),
		slog.String("service", cfg.Service.BaseURL),
		slog.String("root_dir", cfg.Tree.RootDir),
	)

	reg, err := registry.New(registry.Default())
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}

	var opts []apimclient.Option
	if cfg.Service.SubscriptionKey != "" {
		opts = append(opts, apimclient.WithHeader("Ocp-Apim-Subscription-Key", cfg.Service.SubscriptionKey))
	}
	if cfg.Service.BearerToken != "" {
		opts = append(opts, apimclient.WithHeader("Authorization", "Bearer "+cfg.Service.BearerToken))
	}
	if cfg.Service.PollInterval > 0 {
		opts = append(opts, apimclient.WithPollInterval(cfg.Service.PollInterval))
	}
	httpClient := &http.Client{Timeout: cfg.Service.RequestTimeout}
	client := apimclient.New(httpClient, cfg.Service.APIVersion, log, opts...)

	lay := layout.NewService(reg, cfg.Tree.RootDir, cfg.Service.BaseURL)
	sku := graph.NewSKUOracle(reg, client, lay)
	g := graph.New(reg, sku)

	matcher := apimconfig.NewMatcher(reg, configurationLoader(cfg.Tree.ConfigurationPath))

	orch := &extractor.Orchestrator{
		Graph:      g,
		Layout:     lay,
		Client:     client,
		Config:     matcher,
		Writer:     extractor.NewLiveWriter(cfg.Tree.RootDir),
		SpecFormat: apispec.ParseDefaultFormat(cfg.Service.SpecificationFormat),
		Logger:     log,
	}

	start := time.Now()
	runErr := orch.Run(ctx)
	metrics.RunDurationSeconds.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if runErr != nil {
		return fmt.Errorf("extracting resource tree: %w", runErr)
	}
	log.Info("extraction complete", slog.Duration("elapsed", time.Since(start)))

	if cfg.Git.Enabled {
		hash, err := fileops.CommitTree(cfg.Git.RepoDir, commitMessage(), cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("committing extracted tree: %w", err)
		}
		log.Info("committed extracted tree", slog.String("commit", hash.String()))
	}

	return nil
}

func configurationLoader(path string) apimconfig.Loader {
	return func() ([]byte, error) {
		if path == "" {
			return []byte(""), nil
		}
		return os.ReadFile(path)
	}
}

func commitMessage() string {
	return fmt.Sprintf("apim-sync: extract at %s", time.Now().UTC().Format(time.RFC3339))
}
