package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/cardex/internal"
	"github.com/starford/cardex/internal/vcard"
	pkgconfig "github.com/starford/cardex/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOrDefault(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// parseOptions applies the config file's parser section, overridden by
// --lenient-dates. Parser warnings go to the command's error writer.
func parseOptions(cmd *cli.Command) ([]vcard.ParseOption, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Bool("lenient-dates") {
		cfg.Parser.LenientDates = true
	}
	logger := slog.New(slog.NewTextHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	return cfg.Parser.ParseOptions(logger), nil
}

// cardError reports a vCard failure with its code and exit status 1.
func cardError(err error) error {
	return cli.Exit(fmt.Sprintf("%s: %v", vcard.CodeOf(err), err), 1)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fileAction handles one FILE argument with the resolved parser options.
type fileAction func(cmd *cli.Command, path string, opts []vcard.ParseOption) error

func validateFile(cmd *cli.Command, path string, opts []vcard.ParseOption) error {
	if _, err := vcard.LoadValid(path, opts...); err != nil {
		return cardError(err)
	}
	fmt.Fprintf(cmd.Root().Writer, "%s: %s\n", path, vcard.OK)
	return nil
}

func printFile(cmd *cli.Command, path string, opts []vcard.ParseOption) error {
	c, err := vcard.LoadValid(path, opts...)
	if err != nil {
		return cardError(err)
	}
	if err := vcard.Write(cmd.Root().Writer, c); err != nil {
		return cardError(err)
	}
	return nil
}

type cardJSON struct {
	Card        json.RawMessage `json:"card"`
	FN          json.RawMessage `json:"fn"`
	Birthday    json.RawMessage `json:"birthday,omitempty"`
	Anniversary json.RawMessage `json:"anniversary,omitempty"`
}

func raw(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

func jsonFile(cmd *cli.Command, path string, opts []vcard.ParseOption) error {
	c, err := vcard.LoadValid(path, opts...)
	if err != nil {
		return cardError(err)
	}
	return writeJSON(cmd.Root().Writer, cardJSON{
		Card:        raw(vcard.CardToJSON(c)),
		FN:          raw(vcard.PropertyToJSON(c.FN)),
		Birthday:    raw(vcard.DateTimeToJSON(c.Birthday)),
		Anniversary: raw(vcard.DateTimeToJSON(c.Anniversary)),
	})
}

func summaryFile(cmd *cli.Command, path string, opts []vcard.ParseOption) error {
	sum, err := vcard.SummarizeFile(path, opts...)
	if err != nil {
		return cardError(err)
	}
	return writeJSON(cmd.Root().Writer, sum)
}

func propertiesFile(cmd *cli.Command, path string, opts []vcard.ParseOption) error {
	rows, err := vcard.ListPropertiesFile(path, opts...)
	if err != nil {
		return cardError(err)
	}
	return writeJSON(cmd.Root().Writer, rows)
}

func fileCommand(name, usage string, action fileAction) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "lenient-dates",
				Usage: "Skip malformed BDAY/ANNIVERSARY lines instead of failing",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one FILE argument", 2)
			}
			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}
			return action(cmd, cmd.Args().First(), opts)
		},
	}
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "cardex",
		Usage:     "vCard 4.0 vault with validation, search and an HTTP/MCP API",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Action:    serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{Name: "serve", Usage: "Run the HTTP API, vault watcher and event stream", Action: serve},
			{Name: "mcp", Usage: "Serve MCP tools over stdio", Action: mcp},
			fileCommand("validate", "Parse and validate a .vcf file", validateFile),
			fileCommand("print", "Print the canonical form of a .vcf file", printFile),
			fileCommand("json", "Print the JSON forms of a .vcf file", jsonFile),
			fileCommand("summary", "Print {file, name, opLength} for a .vcf file", summaryFile),
			fileCommand("properties", "List the properties of a .vcf file", propertiesFile),
		},
	}
}

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
