package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/japa/internal/cloud"
	"github.com/sadopc/japa/internal/store"
	"github.com/sadopc/japa/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	var syncer *cloud.Syncer
	if dir, err := cloud.DefaultBackupDir(); err == nil {
		syncer = cloud.NewSyncer(cloud.NewFileBackend(dir), "local")
		// A failed load just disables backups for this session.
		syncer.LoadInitial(context.Background())
	}

	app := tui.NewApp(s, syncer)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
