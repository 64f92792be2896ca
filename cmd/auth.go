package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotbak/internal/server"
	"github.com/desertthunder/spotbak/internal/services"
	"github.com/desertthunder/spotbak/internal/shared"
)

// AuthLogin runs the full authorization code flow against a loopback callback server.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Credentials.Spotify
	state := shared.GenerateID()

	url, err := services.AuthURL(cfg, state)
	if err != nil {
		return err
	}

	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = services.DefaultRedirectURI
	}

	exchange := func(ctx context.Context, code string) (*oauth2.Token, error) {
		return services.Exchange(ctx, cfg, code)
	}
	callback, err := server.Listen(redirect, state, exchange, shared.WithLogger(r.logger, "component", "callback"))
	if err != nil {
		return err
	}

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL and approve access:\n\n%s\n\n", url)
	} else if err := shared.OpenBrowser(url); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL and approve access:\n\n%s\n\n", url)
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	token, err := callback.Wait(ctx)
	if err != nil {
		return err
	}
	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.logger.Info("refresh token saved", "path", r.configPath)
	return r.writePlain("✓ Authenticated with Spotify\n")
}

// AuthURL prints the consent URL and optionally opens it.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	url, err := services.AuthURL(r.config.Credentials.Spotify, shared.GenerateID())
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	r.writePlain("Open this URL and approve access:\n\n%s\n\n", url)
	return r.writePlain("Then run 'spotbak auth exchange <code>' with the code from the redirect URL.\n")
}

// AuthExchange trades an authorization code for tokens and saves the refresh token.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: authorization code is required", shared.ErrMissingArgument)
	}

	token, err := services.Exchange(ctx, r.config.Credentials.Spotify, code)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.logger.Info("refresh token saved", "path", r.configPath)
	return r.writePlain("✓ Authenticated with Spotify\n")
}
