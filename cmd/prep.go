package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"github.com/venndale/showprep/internal/formatter"
	"github.com/venndale/showprep/internal/shared"
	"github.com/venndale/showprep/internal/tasks"
	"github.com/venndale/showprep/internal/ui"
)

// PrepRun runs the full prep pipeline from the command line.
func (r *Runner) PrepRun(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	req := tasks.PrepRequest{
		ArtistName:  cmd.String("artist"),
		ConcertName: cmd.String("concert"),
		Year:        cmd.String("year"),
		SkipSetlist: cmd.Bool("skip-setlist"),
	}

	cache, closeLibrary, err := r.openLibrary()
	if err != nil {
		return err
	}
	defer closeLibrary()

	var engine *tasks.PrepEngine
	if cache != nil {
		engine = r.newEngine(cache)
	} else {
		engine = r.newEngine(nil)
	}

	r.logger.Info("starting prep run", "artist", req.ArtistName)
	r.writePlain("Building a prep playlist for %s...\n\n", req.ArtistName)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchLibrary, tasks.FetchUserTop:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.LookupArtist, tasks.FetchArtistTop:
				r.writePlain("🎤 %s\n", update.Message)
			case tasks.ResolveSetlist:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.Reconcile:
				r.writePlain("🧮 %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.AddTracks:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, req)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err); retry {
			result, err = engine.Run(ctx, progressCh, req)
		} else if authErr != nil {
			err = authErr
		}
	}
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summary, jsonErr := formatter.ToSummaryJSON(result)
		if jsonErr != nil {
			return jsonErr
		}
		r.writePlain("%s\n", summary)
		return r.exportReport(cmd, result)
	}

	r.writePlain("\n")
	if result.NothingToAdd {
		r.writePlainHeader("All Caught Up!")
	} else {
		r.writePlainHeader("Prep Playlist Ready!")
	}
	r.writePlain("%s\n", result.Message)
	r.writePlain("\nArtist: %s\n", result.ArtistName)
	if result.SetlistFound {
		r.writePlain("Setlist: %s (%d tracks)\n", result.TourTitle, result.SetlistTrackCount)
	} else if !req.SkipSetlist {
		r.writePlain("Setlist: none found, used the artist's top tracks\n")
	}
	r.writePlain("Liked tracks: %d\n", result.LikedCount)
	r.writePlain("New to you: %d\n", len(result.UnheardTracks))

	return r.exportReport(cmd, result)
}

// exportReport writes the unheard-track report in the requested format.
func (r *Runner) exportReport(cmd *cli.Command, result *tasks.PrepResult) error {
	format := cmd.String("export")
	if format == "" {
		return nil
	}
	output := cmd.String("output")

	switch format {
	case "csv":
		written, err := formatter.WriteCSVExport(result, output)
		if err != nil {
			return err
		}
		r.writePlain("\n✓ Report exported to %s (summary: %s)\n", written.TracksFile, written.SummaryFile)
	case "markdown", "md":
		written, err := formatter.WriteMarkdownExport(result, output)
		if err != nil {
			return err
		}
		r.writePlain("\n✓ Report exported to %s\n", written)
	case "text", "txt":
		written, err := formatter.WriteTextExport(result, output)
		if err != nil {
			return err
		}
		r.writePlain("\n✓ Report exported to %s\n", written)
	default:
		return fmt.Errorf("%w: unknown export format '%s' (must be csv, markdown, or text)", shared.ErrInvalidArgument, format)
	}

	return nil
}

// PrepUI launches the interactive terminal UI for building a prep playlist.
func (r *Runner) PrepUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/showprep-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cache, closeLibrary, err := r.openLibrary()
	if err != nil {
		return err
	}
	defer closeLibrary()

	var engine *tasks.PrepEngine
	if cache != nil {
		engine = r.newEngine(cache)
	} else {
		engine = r.newEngine(nil)
	}

	model := ui.NewModel(ctx, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
