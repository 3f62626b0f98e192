package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sevigo/pocket-points/internal/app"
)

type thumbResult struct {
	name    string
	locator string
	width   int
	height  int
	err     error
}

var thumbsCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Decode every student photo at thumbnail size and report the result",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			students, err := a.Roster.List(ctx)
			if err != nil {
				return err
			}

			results := make([]thumbResult, len(students))
			width, height := a.Cfg.Thumbnails.Width, a.Cfg.Thumbnails.Height

			var g errgroup.Group
			g.SetLimit(a.Cfg.Thumbnails.Workers)
			for i, s := range students {
				results[i] = thumbResult{name: s.Name, locator: a.Roster.PhotoPath(s)}
				if results[i].locator == "" {
					continue
				}
				g.Go(func() error {
					img, err := a.Decoder.Decode(ctx, results[i].locator, width, height)
					if err != nil {
						results[i].err = err
						return nil
					}
					results[i].width = img.Bounds().Dx()
					results[i].height = img.Bounds().Dy()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "STUDENT\tPHOTO\tTHUMBNAIL")
			for _, r := range results {
				switch {
				case r.locator == "":
					fmt.Fprintf(w, "%s\t-\t%s\n", r.name, dimColor.Sprint("placeholder"))
				case r.err != nil:
					failed++
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.locator, errorColor.Sprint(r.err.Error()))
				default:
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.locator, successColor.Sprintf("%dx%d", r.width, r.height))
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d photos could not be decoded", failed, len(students))
			}
			return nil
		})
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.AddCommand(thumbsCmd)
}
