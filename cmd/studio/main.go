// Package main provides the studio CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/studio/api"
	"github.com/richinex/studio/cli"
)

var (
	// Global flags
	apiURL    string
	provider  string
	sessionID string
	inMemory  bool
	verbose   bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "studio",
		Short: "Terminal client for the media-processing studio",
		Long: `A terminal client for the media-processing studio backend.

Upload media or a YouTube URL, transcribe it, generate speech and
PDF summaries, take quizzes built from the summaries, and chat with
the assistant that drives the same tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend API URL (default $STUDIO_API_URL or "+api.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "Summary provider (ollama, openrouter)")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", cli.DefaultSession, "Session ID for chat and artifact history")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "Keep history in memory instead of the database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logging")

	// Add commands
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(mediaCmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(youtubeCmd())
	rootCmd.AddCommand(transcribeCmd())
	rootCmd.AddCommand(transcriptsCmd())
	rootCmd.AddCommand(ttsCmd())
	rootCmd.AddCommand(pdfCmd())
	rootCmd.AddCommand(latexCmd())
	rootCmd.AddCommand(quizCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(mockCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// withApp runs fn with an App built from the global flags.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	opts := cli.DefaultOptions()
	opts.APIURL = apiURL
	opts.Provider = provider
	opts.SessionID = sessionID
	opts.InMemory = inMemory
	opts.Logger = slog.Default()

	app, err := cli.NewApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(cmd.Context(), app)
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Health(ctx)
			})
		},
	}
}

func mediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Inspect media on the server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List uploaded and downloaded media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.ListMedia(ctx)
			})
		},
	})
	return cmd
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a local media file or document and transcribe it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Upload(ctx, firstArg(args))
			})
		},
	}
}

func youtubeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "youtube [url]",
		Short: "Download a YouTube video on the server and transcribe it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.YouTube(ctx, firstArg(args))
			})
		},
	}
}

func transcribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe [media]",
		Short: "Transcribe media already on the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Transcribe(ctx, firstArg(args))
			})
		},
	}
}

func transcriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "List, show and download transcripts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.ListTranscripts(ctx)
			})
		},
	})

	var search string
	show := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a transcript (name, path or unique prefix)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.ShowTranscript(ctx, firstArg(args), search)
			})
		},
	}
	show.Flags().StringVarP(&search, "search", "s", "", "Only print lines containing this text")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "download [name]",
		Short: "Save a transcript to the download directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.DownloadTranscript(ctx, firstArg(args))
			})
		},
	})
	return cmd
}

func ttsCmd() *cobra.Command {
	var mode string
	var download bool

	cmd := &cobra.Command{
		Use:   "tts [transcript]",
		Short: "Generate speech audio from a transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := api.TTSMode(mode)
			if m != api.TTSTranscript && m != api.TTSSummary {
				return fmt.Errorf("invalid --mode %q: must be transcript or summary", mode)
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Speech(ctx, firstArg(args), m, download)
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(api.TTSTranscript), "What to read: transcript or summary")
	cmd.Flags().BoolVarP(&download, "download", "d", false, "Save the audio locally")

	return cmd
}

func pdfCmd() *cobra.Command {
	var mode string
	var model string
	var draft bool
	var download bool

	cmd := &cobra.Command{
		Use:   "pdf [transcript]",
		Short: "Stream a LaTeX summary of a transcript and compile it to PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := api.SummaryMode(mode)
			if m != api.SummaryConcise && m != api.SummaryDetailed {
				return fmt.Errorf("invalid --mode %q: must be concise or detailed", mode)
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				app.Shell.Features.SetModel(model)
				return app.Summary(ctx, firstArg(args), m, draft, download)
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(api.SummaryConcise), "Summary depth: concise or detailed")
	cmd.Flags().StringVar(&model, "model", "", "Summary model (default: provider default or $STUDIO_MODEL)")
	cmd.Flags().BoolVar(&draft, "draft", false, "Print the LaTeX as it streams")
	cmd.Flags().BoolVarP(&download, "download", "d", false, "Save the PDF (or the LaTeX source on failure) locally")

	return cmd
}

func latexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latex",
		Short: "Inspect LaTeX summaries",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List LaTeX summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.ListLatex(ctx)
			})
		},
	})
	return cmd
}

func quizCmd() *cobra.Command {
	var questions int

	cmd := &cobra.Command{
		Use:   "quiz [latex]",
		Short: "Generate a quiz from a LaTeX summary and take it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Quiz(ctx, firstArg(args), questions)
			})
		},
	}

	cmd.Flags().IntVarP(&questions, "questions", "n", 0, "Number of questions (default $STUDIO_QUIZ_QUESTIONS)")

	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat with the assistant",
		Long: `Start an interactive chat with the backend assistant.

The assistant can download YouTube videos, transcribe audio, generate
PDF summaries and create quizzes. The transcript is saved under
--session and resumed on the next run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Chat(ctx)
			})
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		limit int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List artifacts produced in the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				if clearAll {
					return app.ClearHistory(ctx)
				}
				return app.History(ctx, limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of artifacts (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Forget the artifacts recorded for the session")

	return cmd
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Sessions(ctx)
			})
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models served by Ollama and OpenRouter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListModels(cmd.Context(), os.Stdout, firstArg(args))
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the assistant can invoke",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(os.Stdout, verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}

func mockCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-memory backend for offline use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ServeMock(cmd.Context(), addr, slog.Default(), func(bound string) {
				fmt.Printf("Mock backend at http://%s/api (Ctrl-C to stop)\n", bound)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")

	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
