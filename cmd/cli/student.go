package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/roster"
)

var (
	outputJSON   bool
	studentImage string
	studentName  string
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage the students on the roster",
}

var studentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student to the roster",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			student, err := a.Roster.Create(ctx, studentName, studentImage)
			if err != nil {
				return err
			}
			successColor.Printf("✓ Added %s (id %d)\n", student.Name, student.ID)
			return nil
		})
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every student on the roster",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			students, err := a.Roster.List(ctx)
			if err != nil {
				return err
			}

			if outputJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(students)
			}

			if len(students) == 0 {
				dimColor.Println("The roster is empty.")
				return nil
			}

			titleColor.Printf("%d students\n", len(students))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTICKERS\tPHOTO")
			for _, s := range students {
				photo := s.ImageName
				if photo == "" {
					photo = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					s.ID,
					s.Name,
					stickerColor.Sprint(strings.Repeat("★", min(s.NumStickers, 10)))+fmt.Sprintf(" %d", s.NumStickers),
					photo,
				)
			}
			return w.Flush()
		})
	},
}

var studentEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename a student or change their photo",
	Long: `Rename a student or change their photo. Only the flags given are changed;
pass --image "" to remove the photo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseStudentID(args[0])
		if err != nil {
			return err
		}
		changes := editChanges(cmd)
		if changes.Name == nil && changes.ImageName == nil {
			return fmt.Errorf("nothing to change: pass --name or --image")
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			student, err := a.Roster.Edit(ctx, id, changes)
			if err != nil {
				return err
			}
			successColor.Printf("✓ Updated %s (id %d)\n", student.Name, student.ID)
			return nil
		})
	},
}

func editChanges(cmd *cobra.Command) roster.Changes {
	var changes roster.Changes
	if cmd.Flags().Changed("name") {
		changes.Name = &studentName
	}
	if cmd.Flags().Changed("image") {
		changes.ImageName = &studentImage
	}
	return changes
}

var studentRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a student from the roster",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := parseStudentID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			if err := a.Roster.Delete(ctx, id); err != nil {
				return err
			}
			successColor.Printf("✓ Removed student %d\n", id)
			return nil
		})
	},
}

var studentImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import students from a YAML class list",
	Long: `Import students from a YAML file of the form:

  students:
    - name: Ada
      image: ada.jpg
      stickers: 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open class list: %w", err)
		}
		defer f.Close()

		return withApp(func(ctx context.Context, a *app.App) error {
			n, err := a.Roster.Import(ctx, f)
			if err != nil {
				if n > 0 {
					warnColor.Printf("⚠ Imported %d students before failing\n", n)
				}
				return err
			}
			successColor.Printf("✓ Imported %d students\n", n)
			return nil
		})
	},
}

func parseStudentID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid student id %q", raw)
	}
	return id, nil
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	studentAddCmd.Flags().StringVarP(&studentName, "name", "n", "", "Student name")
	studentAddCmd.Flags().StringVarP(&studentImage, "image", "i", "", "Photo file name, relative to the photo directory")
	_ = studentAddCmd.MarkFlagRequired("name")

	studentEditCmd.Flags().StringVarP(&studentName, "name", "n", "", "New student name")
	studentEditCmd.Flags().StringVarP(&studentImage, "image", "i", "", "New photo file name, empty to remove the photo")

	studentListCmd.Flags().BoolVar(&outputJSON, "json", false, "Output the roster as JSON")

	studentCmd.AddCommand(studentAddCmd, studentEditCmd, studentListCmd, studentRemoveCmd, studentImportCmd)
	rootCmd.AddCommand(studentCmd)
}
