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
	"github.com/wso2/api-platform/gateway/apim-sync/internal/fileops"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/layout"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/logger"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/metrics"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/publisher"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/relationships"
)

// Version information (set via ldflags during build).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configPath string
	since      string
)

var rootCmd = &cobra.Command{
	Use:   "apim-publisher",
	Short: "Publishes a resource tree to an API Management Service instance",
	Long:  "Reads a canonical on-disk resource tree and pushes it to an API Management Service instance. With --since, it also deletes whatever the tree at that commit carried and the current tree no longer does.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the apim-sync configuration file")
	rootCmd.Flags().StringVar(&since, "since", "", "git revision holding the previously-published tree; when unset, every resource in the current tree is treated as new")
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

	log := logger.NewLogger(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, "publisher").
		With(slog.String("run_id", uuid.New().String()))
	log.Info("starting apim-publisher",
		slog.String("version", Version),
		slog.String("git_commit", GitCommit),
		slog.String("service", cfg.Service.BaseURL),
		slog.String("root_dir", cfg.Tree.RootDir),
		slog.String("since", since),
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
	matcher := apimconfig.NewMatcher(reg, configurationLoader(cfg.Tree.ConfigurationPath))

	pub := &publisher.Publisher{
		Reg:            reg,
		Layout:         lay,
		Client:         client,
		Config:         matcher,
		Source:         fileops.NewLiveFS(cfg.Tree.RootDir),
		BaseResourceID: cfg.Service.ResourceID,
		Logger:         log,
	}

	start := time.Now()

	targetRel, err := pub.BuildTarget(ctx)
	if err != nil {
		return fmt.Errorf("scanning target tree: %w", err)
	}

	var prevRel *relationships.Relationships
	if since != "" {
		prevFO, err := fileops.OpenGitCommit(cfg.Git.RepoDir, since)
		if err != nil {
			return fmt.Errorf("opening previous tree at %s: %w", since, err)
		}
		prevRel, err = (&publisher.Publisher{Reg: reg, Source: prevFO}).BuildTarget(ctx)
		if err != nil {
			return fmt.Errorf("scanning previous tree at %s: %w", since, err)
		}
	}

	if err := pub.Put(ctx, targetRel); err != nil {
		return fmt.Errorf("publishing resource tree: %w", err)
	}

	if prevRel != nil {
		removed := publisher.ComputeRemoved(prevRel, targetRel)
		log.Info("deleting resources removed since previous publish", slog.Int("count", len(removed)))
		if err := pub.Delete(ctx, prevRel, removed); err != nil {
			return fmt.Errorf("deleting removed resources: %w", err)
		}
	} else {
		log.Info("no previous tree given; skipping delete pass")
	}

	metrics.RunDurationSeconds.WithLabelValues("publish").Observe(time.Since(start).Seconds())
	log.Info("publish complete", slog.Duration("elapsed", time.Since(start)))
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
