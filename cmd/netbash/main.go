package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klazomenai/netbash/pkg/api"
	"github.com/klazomenai/netbash/pkg/assets"
	"github.com/klazomenai/netbash/pkg/command"
	"github.com/klazomenai/netbash/pkg/config"
	"github.com/klazomenai/netbash/pkg/netbash"
	"github.com/klazomenai/netbash/web"
	"github.com/spf13/cobra"
)

// LoadFunc loads settings; tests substitute their own.
type LoadFunc func() (*config.Settings, error)

func newRootCmd(load LoadFunc, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "netbash",
		Short:         "NetBash web console server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			return serve(settings)
		},
	}

	includesCmd := &cobra.Command{
		Use:   "includes",
		Short: "Print the HTML tags that load the console into a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, netbash.RenderIncludes(settings.RouteBasePath, settings.Version))
			return nil
		},
	}

	execCmd := &cobra.Command{
		Use:   "exec [command...]",
		Short: "Run a console command locally and print its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			registry := command.NewDefaultRegistry(settings.Version)
			result := registry.Process(cmd.Context(), strings.Join(args, " "))
			if !result.Success {
				return fmt.Errorf("command failed: %s", result.Content)
			}
			fmt.Fprintln(out, result.Content)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the configured version token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, settings.Version)
			return nil
		},
	}

	root.AddCommand(serveCmd, includesCmd, execCmd, versionCmd)
	return root
}

func runWithOutput(args []string, load LoadFunc, out io.Writer) error {
	cmd := newRootCmd(load, out)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd.ExecuteContext(context.Background())
}

func main() {
	if err := runWithOutput(os.Args[1:], config.Load, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCache builds the resource cache, preloading the bundle when configured
// so a binary missing assets fails at startup
func newCache(settings *config.Settings) (*assets.Cache, error) {
	var opts []assets.Option
	if settings.Assets.Minify {
		opts = append(opts, assets.WithMinify())
	}
	cache := assets.NewCache(web.Assets(), opts...)

	if settings.Assets.Preload {
		if err := cache.Preload(netbash.AssetNames...); err != nil {
			return nil, fmt.Errorf("failed to preload assets: %w", err)
		}
		log.Printf("Preloaded %d assets (minify=%t)", cache.Len(), settings.Assets.Minify)
	}
	return cache, nil
}

func serve(settings *config.Settings) error {
	cache, err := newCache(settings)
	if err != nil {
		return err
	}

	registry := command.NewDefaultRegistry(settings.Version)

	server, err := api.NewServer(settings, cache, registry, web.Templates())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	prefix := netbash.RoutePrefix(settings.RouteBasePath)
	addr := ":" + settings.Server.Port
	log.Printf("Starting NetBash on %s (version=%s)", addr, settings.Version)
	log.Printf("Endpoints:")
	log.Printf("  ANY    %snetbash?Command=<command> - Run a console command", prefix)
	log.Printf("  GET    %snetbash-jquery.js - Bundled jQuery fallback", prefix)
	log.Printf("  GET    %snetbash-includes.js - Console script", prefix)
	log.Printf("  GET    %snetbash-includes.css - Console stylesheet", prefix)
	log.Printf("  GET    / - Landing page")
	log.Printf("  GET    /health - Health check")
	log.Printf("  GET    /metrics - Prometheus metrics")

	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  settings.Server.ReadTimeoutDuration(),
		WriteTimeout: settings.Server.WriteTimeoutDuration(),
		IdleTimeout:  settings.Server.IdleTimeoutDuration(),
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
	}
	log.Println("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Println("Shutdown complete")
	return nil
}
