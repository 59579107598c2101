package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"libllm/internal/settings"
)

func modelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "list the models offered by the backend; the selected one is marked",
		Action: func(c *cli.Context) error {
			a, err := setup(c.Context, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Settings.Load(c.Context)
			if err != nil {
				return err
			}
			s = s.Normalize(nil)

			for _, model := range a.Catalog.Models(c.Context, s) {
				marker := " "
				if model == s.Model {
					marker = "*"
				}
				fmt.Fprintf(c.App.Writer, "%s %s\n", marker, model)
			}
			return nil
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "show or change the completion settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the settings with the API key masked",
				Action: func(c *cli.Context) error {
					a, err := setup(c.Context, os.Stderr)
					if err != nil {
						return err
					}
					defer a.Close()

					s, err := a.Settings.Load(c.Context)
					if err != nil {
						return err
					}
					printSettings(c, s)
					return nil
				},
			},
			{
				Name:  "set",
				Usage: "change settings; omitted flags keep their value",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "secret key for the completion backend",
						EnvVars: []string{"LIBLLM_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "organization",
						Usage: "organization id; empty selects the default organization",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "model id; replaced by the default when the backend does not offer it",
					},
				},
				Action: func(c *cli.Context) error {
					a, err := setup(c.Context, os.Stderr)
					if err != nil {
						return err
					}
					defer a.Close()

					s, err := a.Settings.Load(c.Context)
					if err != nil {
						return err
					}
					if c.IsSet("api-key") {
						s.APIKey = c.String("api-key")
					}
					if c.IsSet("organization") {
						s.OrganizationID = c.String("organization")
					}
					if c.IsSet("model") {
						s.Model = c.String("model")
					}

					requested := s.Model
					s = s.Normalize(a.Catalog.Known(c.Context, s))
					if c.IsSet("model") && s.Model != requested {
						fmt.Fprintf(c.App.ErrWriter, "Model %q is not offered by the backend; using %s.\n", requested, s.Model)
					}

					if err := a.Settings.Save(c.Context, s); err != nil {
						return err
					}
					printSettings(c, s)
					return nil
				},
			},
		},
	}
}

func printSettings(c *cli.Context, s settings.Settings) {
	s = s.Masked()
	organization := s.OrganizationID
	if organization == "" {
		organization = "(default)"
	}
	fmt.Fprintf(c.App.Writer, "api_key:         %s\n", s.APIKey)
	fmt.Fprintf(c.App.Writer, "organization_id: %s\n", organization)
	fmt.Fprintf(c.App.Writer, "model:           %s\n", s.Model)
}
