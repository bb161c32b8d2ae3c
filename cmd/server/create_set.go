package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Ketaiwk/10xcards/internal/client"
	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/spf13/cobra"
)

type createSetFlags struct {
	apiURL      string
	token       string
	email       string
	password    string
	name        string
	description string
	source      string
	count       int
	model       string
	concurrency int
}

func newCreateSetCmd() *cobra.Command {
	f := &createSetFlags{}
	cmd := &cobra.Command{
		Use:   "create-set",
		Short: "Generate flashcards from a text file and save them as a new set",
		Long: "create-set talks to a running server. It streams generated cards, " +
			"prints them and saves the set with every card.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateSet(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.apiURL, "api", "http://localhost:8080", "base URL of the server")
	fl.StringVar(&f.token, "token", os.Getenv("TENXCARDS_TOKEN"), "access token (defaults to $TENXCARDS_TOKEN)")
	fl.StringVar(&f.email, "email", "", "log in with this email instead of a token")
	fl.StringVar(&f.password, "password", "", "password for --email")
	fl.StringVar(&f.name, "name", "", "name of the new set")
	fl.StringVar(&f.description, "description", "", "optional set description")
	fl.StringVar(&f.source, "source", "", "file with the source text, or - for stdin")
	fl.IntVar(&f.count, "count", 0, "number of cards to generate (server default when 0)")
	fl.StringVar(&f.model, "model", "", "model override")
	fl.IntVar(&f.concurrency, "concurrency", client.DefaultSaveConcurrency, "card saves in flight at once")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("source")
	cmd.MarkFlagsRequiredTogether("email", "password")
	return cmd
}

func runCreateSet(cmd *cobra.Command, f *createSetFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	text, err := readSource(cmd.InOrStdin(), f.source)
	if err != nil {
		return err
	}

	httpClient := client.NewHTTPClient(f.apiURL, nil, log)
	switch {
	case f.email != "":
		if _, err := httpClient.Login(ctx, f.email, f.password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
	case f.token != "":
		httpClient.SetToken(f.token)
	default:
		return errors.New("either --token or --email and --password are required")
	}

	printed := 0
	ctrl := client.NewController(httpClient, log,
		client.WithSaveConcurrency(f.concurrency),
		client.WithObserver(func(s client.State) {
			for ; printed < len(s.Cards); printed++ {
				c := s.Cards[printed]
				fmt.Fprintf(out, "[%3d%%] Q: %s\n       A: %s\n", s.Progress, c.Question, c.Answer)
			}
			if len(s.Cards) < printed {
				printed = len(s.Cards)
			}
		}),
	)

	ctrl.Dispatch(client.SetDetails{Name: f.name, Description: f.description})
	ctrl.Dispatch(client.SetSourceText{Text: text})

	if err := ctrl.Generate(ctx, client.GenerateOptions{Count: f.count, Model: f.model}); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	set, err := ctrl.Save(ctx)
	var partial *client.PartialSaveError
	switch {
	case errors.As(err, &partial):
		fmt.Fprintf(out, "saved set %s with %d of %d flashcards\n",
			set.ID, partial.Total-partial.Failed, partial.Total)
		return err
	case err != nil:
		return fmt.Errorf("save failed: %w", err)
	}

	fmt.Fprintf(out, "saved set %s with %d flashcards\n", set.ID, len(ctrl.State().Cards))
	return nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read source text: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source text: %w", err)
	}
	return string(b), nil
}
