package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/materials"
)

// newAdminCmd creates the admin command tree: curriculum CRUD plus
// study-material uploads. The backend enforces the ADMIN role; these
// commands just surface its endpoints.
func newAdminCmd(app **App) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer branches, semesters, subjects and materials",
	}

	adminCmd.AddCommand(newAdminBranchCmd(app))
	adminCmd.AddCommand(newAdminSemesterCmd(app))
	adminCmd.AddCommand(newAdminSubjectCmd(app))
	adminCmd.AddCommand(newAdminMaterialCmd(app))
	return adminCmd
}

func newAdminBranchCmd(app **App) *cobra.Command {
	branchCmd := &cobra.Command{
		Use:   "branch",
		Short: "Manage branches",
	}

	branchCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			branches, err := a.client.AdminBranches(ctx)
			if err != nil {
				return err
			}
			for _, b := range branches {
				fmt.Printf("%4d  %s\n", b.ID, b.Name)
			}
			return nil
		},
	})

	branchCmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			branch, err := a.client.CreateBranch(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created branch #%d %q\n", branch.ID, branch.Name)
			return nil
		},
	})

	branchCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "branch")
			if err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			if err := a.client.DeleteBranch(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted branch #%d\n", id)
			return nil
		},
	})

	return branchCmd
}

func newAdminSemesterCmd(app **App) *cobra.Command {
	semesterCmd := &cobra.Command{
		Use:   "semester",
		Short: "Manage semesters",
	}

	semesterCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all semesters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			semesters, err := a.client.AdminSemesters(ctx)
			if err != nil {
				return err
			}
			for _, s := range semesters {
				fmt.Printf("%4d  branch=%d  n=%d  %s\n", s.ID, s.BranchID, s.SemesterNumber, s.Name)
			}
			return nil
		},
	})

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a semester within a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			branchID, _ := cmd.Flags().GetInt("branch-id")
			number, _ := cmd.Flags().GetInt("number")
			if branchID == 0 || number == 0 {
				return fmt.Errorf("--branch-id and --number are required")
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			semester, err := a.client.CreateSemester(ctx, branchID, number, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created semester #%d %q\n", semester.ID, semester.Name)
			return nil
		},
	}
	createCmd.Flags().Int("branch-id", 0, "Branch the semester belongs to")
	createCmd.Flags().Int("number", 0, "Ordinal within the branch (1-based)")
	semesterCmd.AddCommand(createCmd)

	semesterCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a semester",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "semester")
			if err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			if err := a.client.DeleteSemester(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted semester #%d\n", id)
			return nil
		},
	})

	return semesterCmd
}

func newAdminSubjectCmd(app **App) *cobra.Command {
	subjectCmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}

	subjectCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			subjects, err := a.client.AdminSubjects(ctx)
			if err != nil {
				return err
			}
			for _, s := range subjects {
				fmt.Printf("%4d  semester=%d  %s\n", s.ID, s.SemesterID, s.Name)
			}
			return nil
		},
	})

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a subject within a semester",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			semesterID, _ := cmd.Flags().GetInt("semester-id")
			if semesterID == 0 {
				return fmt.Errorf("--semester-id is required")
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			subject, err := a.client.CreateSubject(ctx, semesterID, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created subject #%d %q\n", subject.ID, subject.Name)
			return nil
		},
	}
	createCmd.Flags().Int("semester-id", 0, "Semester the subject belongs to")
	subjectCmd.AddCommand(createCmd)

	subjectCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "subject")
			if err != nil {
				return err
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			if err := a.client.DeleteSubject(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted subject #%d\n", id)
			return nil
		},
	})

	return subjectCmd
}

func newAdminMaterialCmd(app **App) *cobra.Command {
	materialCmd := &cobra.Command{
		Use:   "material",
		Short: "Manage study materials",
	}

	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "List documents for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			subjectID, _ := cmd.Flags().GetInt("subject-id")
			if subjectID == 0 {
				return fmt.Errorf("--subject-id is required")
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			docs, err := a.client.DocumentsBySubject(ctx, subjectID)
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Printf("%4d  [%s]  %s\n", d.ID, d.SourceType, d.Title)
			}
			return nil
		},
	}
	docsCmd.Flags().Int("subject-id", 0, "Subject to list documents for")
	materialCmd.AddCommand(docsCmd)

	addDocCmd := &cobra.Command{
		Use:   "add-doc <title>",
		Short: "Register a document under a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			subjectID, _ := cmd.Flags().GetInt("subject-id")
			if subjectID == 0 {
				return fmt.Errorf("--subject-id is required")
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			doc, err := a.client.CreateDocument(ctx, subjectID, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created document #%d %q\n", doc.ID, doc.Title)
			return nil
		},
	}
	addDocCmd.Flags().Int("subject-id", 0, "Subject the document belongs to")
	materialCmd.AddCommand(addDocCmd)

	addChunkCmd := &cobra.Command{
		Use:   "add-chunk",
		Short: "Upload a chunk of material text under a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			documentID, _ := cmd.Flags().GetInt("document-id")
			if documentID == 0 {
				return fmt.Errorf("--document-id is required")
			}
			textFile, _ := cmd.Flags().GetString("file")
			text, _ := cmd.Flags().GetString("text")
			if textFile != "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return err
				}
				text = string(data)
			}
			if text == "" {
				return fmt.Errorf("provide chunk text via --text or --file")
			}

			input := api.MaterialChunkInput{
				DocumentID: documentID,
				Text:       text,
			}
			if page, _ := cmd.Flags().GetInt("page"); page > 0 {
				input.PageNumber = &page
			}
			if heading, _ := cmd.Flags().GetString("heading"); heading != "" {
				input.Heading = &heading
			}
			if keywords, _ := cmd.Flags().GetString("keywords"); keywords != "" {
				input.Keywords = &keywords
			}

			ctx, cancel := a.requestContext()
			defer cancel()

			chunk, err := a.client.CreateChunk(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("Created chunk #%d under document #%d\n", chunk.ID, chunk.DocumentID)
			return nil
		},
	}
	addChunkCmd.Flags().Int("document-id", 0, "Document the chunk belongs to")
	addChunkCmd.Flags().String("text", "", "Chunk text")
	addChunkCmd.Flags().String("file", "", "Read chunk text from a file")
	addChunkCmd.Flags().Int("page", 0, "Page number in the source document")
	addChunkCmd.Flags().String("heading", "", "Section heading")
	addChunkCmd.Flags().String("keywords", "", "Comma-separated keywords")
	materialCmd.AddCommand(addChunkCmd)

	importCmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Import a web page as a document with text chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			subjectID, _ := cmd.Flags().GetInt("subject-id")
			if subjectID == 0 {
				return fmt.Errorf("--subject-id is required")
			}

			ctx, cancel := a.requestContext()
			defer cancel()

			importer := materials.NewImporter(time.Duration(a.cfg.RequestTimeoutSec)*time.Second, a.logger)
			page, err := importer.FetchPage(ctx, args[0])
			if err != nil {
				return err
			}

			doc, err := a.client.CreateDocument(ctx, subjectID, page.Title)
			if err != nil {
				return err
			}

			uploaded := 0
			for _, input := range materials.Chunks(page, doc.ID) {
				if _, err := a.client.CreateChunk(ctx, input); err != nil {
					return fmt.Errorf("uploaded %d chunks, then: %w", uploaded, err)
				}
				uploaded++
			}

			fmt.Printf("Imported %q as document #%d with %d chunks\n", page.Title, doc.ID, uploaded)
			return nil
		},
	}
	importCmd.Flags().Int("subject-id", 0, "Subject the imported document belongs to")
	materialCmd.AddCommand(importCmd)

	chunksCmd := &cobra.Command{
		Use:   "chunks",
		Short: "List chunks under a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.requireLogin(); err != nil {
				return err
			}
			documentID, _ := cmd.Flags().GetInt("document-id")
			if documentID == 0 {
				return fmt.Errorf("--document-id is required")
			}
			ctx, cancel := a.requestContext()
			defer cancel()

			chunks, err := a.client.ChunksByDocument(ctx, documentID)
			if err != nil {
				return err
			}
			for _, c := range chunks {
				fmt.Printf("%4d  %s\n", c.ID, snippet(c.Text, 70))
			}
			return nil
		},
	}
	chunksCmd.Flags().Int("document-id", 0, "Document to list chunks for")
	materialCmd.AddCommand(chunksCmd)

	return materialCmd
}

func parseID(raw, kind string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
