package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"voicewriter-go/internal/api"
	"voicewriter-go/internal/audio"
	"voicewriter-go/internal/config"
	"voicewriter-go/internal/journal"
	"voicewriter-go/internal/logger"
	"voicewriter-go/internal/model"
	"voicewriter-go/internal/store"
	"voicewriter-go/internal/ui"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleSubtle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

const usage = `Usage: voicewriter [flags] [command]

Commands:
  (none)                 start the dictation app
  sentences              list every sentence on the server
  progress [-user id]    show the progress stored for a learner

Flags:
`

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	startRoute := flag.String("route", "/", "screen to open first: /, /scene/{id} or /practice/{id}")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(zl.Named("api")))
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "sentences":
			if err := printSentences(client); err != nil {
				log.Fatalf("Failed to list sentences: %v", err)
			}
		case "progress":
			if err := printProgress(cfg, client, args[1:]); err != nil {
				log.Fatalf("Failed to show progress: %v", err)
			}
		default:
			flag.Usage()
			os.Exit(2)
		}
		return
	}

	route, err := ui.ParseRoute(*startRoute)
	if err != nil {
		log.Fatalf("Invalid start route: %v", err)
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer j.Close()

	userID, err := resolveUserID(cfg, j)
	if err != nil {
		log.Fatalf("Failed to resolve user id: %v", err)
	}

	player := audio.NewPlayer(audio.NewExecBackend(cfg.Audio.Command, cfg.Audio.Args, zl.Named("audio")), zl.Named("player"))
	defer player.Close()

	zl.Info("starting",
		zap.String("api", cfg.API.BaseURL),
		zap.String("route", route.String()),
		zap.Bool("sync", cfg.Progress.Sync))

	m := ui.New(ui.Options{
		API:          client,
		Journal:      j,
		Player:       player,
		Store:        store.New(),
		Log:          zl.Named("ui"),
		UserID:       userID,
		SyncProgress: cfg.Progress.Sync,
		Start:        route,
	})
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

// resolveUserID prefers the configured id and falls back to the anonymous
// id kept in the journal.
func resolveUserID(cfg *config.Config, j *journal.Journal) (string, error) {
	if cfg.User.ID != "" {
		return cfg.User.ID, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return j.UserID(ctx)
}

func printSentences(client *api.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sentences, err := client.Sentences(ctx)
	if err != nil {
		return err
	}
	fmt.Println(styleHeader.Render(fmt.Sprintf("%d sentences", len(sentences))))
	for _, s := range sentences {
		fmt.Printf("%4d  scene %-3d %-8s %s\n", s.ID, s.SceneID, "["+string(s.Difficulty)+"]", s.Content)
		if s.Translation != "" {
			fmt.Println("      " + styleSubtle.Render(s.Translation))
		}
	}
	return nil
}

func printProgress(cfg *config.Config, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)
	user := fs.String("user", cfg.User.ID, "learner id; defaults to the local anonymous id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID := *user
	if userID == "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		if userID, err = resolveUserID(cfg, j); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	records, err := client.Progress(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Println(styleHeader.Render("Progress for " + userID))
	if len(records) == 0 {
		fmt.Println(styleSubtle.Render("No attempts recorded yet."))
		return nil
	}
	for _, p := range records {
		fmt.Println(progressLine(p))
	}
	return nil
}

func progressLine(p model.UserProgress) string {
	state := styleSubtle.Render("in progress")
	if p.Completed {
		state = styleDone.Render("completed")
	}
	last := "never"
	if p.LastAttempt != nil && !p.LastAttempt.IsZero() {
		last = p.LastAttempt.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("  sentence %-4d %s  attempts: %d  last: %s", p.SentenceID, state, p.Attempts, last)
}
