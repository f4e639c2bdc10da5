package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/alex-chat/backend/internal/bootstrap"
	"github.com/zhouzirui/alex-chat/backend/internal/config"
	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/tui"
)

func main() {
	personaID := flag.String("persona", "", "persona id (defaults to the first persona)")
	logFile := flag.String("log", "", "write diagnostics to this file")
	flag.Parse()

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	if *logFile != "" {
		f, err := tea.LogToFile(*logFile, "chat")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	services, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize services: %v\n", err)
		os.Exit(1)
	}

	p, ok := services.Personas.Default()
	if *personaID != "" {
		p, ok = services.Personas.FindByID(*personaID)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "persona %q not found\n", *personaID)
		os.Exit(1)
	}

	session, err := services.Chat.CreateSession(ctx, p.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create session: %v\n", err)
		os.Exit(1)
	}
	ctrl, err := services.Chat.Controller(ctx, session.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session: %v\n", err)
		os.Exit(1)
	}

	program := tea.NewProgram(tui.NewModel(ctrl, p.Name, p.Placeholder), tea.WithAltScreen())
	// Send waits for the event loop; keep it off the submitting goroutine.
	unsubscribe := ctrl.Subscribe(func([]chat.Message) {
		go program.Send(tui.TranscriptChangedMsg{})
	})
	defer unsubscribe()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat exited with error: %v\n", err)
		os.Exit(1)
	}
	_ = services.Chat.DeleteSession(ctx, session.ID)
}
