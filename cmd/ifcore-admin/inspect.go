package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/SerjoschDuering/ifcore-platform/internal/data"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

const defaultQueryTimeout = 30 * time.Second

type projectsOptions struct {
	Owner string
	JSON  bool
}

type jobOptions struct {
	ID    string
	Query string
}

func runProjects(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("projects", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := projectsOptions{}
	fs.StringVar(&opts.Owner, "owner", "", "Owner id; shared projects are always included")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		var owner *string
		if o := strings.TrimSpace(opts.Owner); o != "" {
			owner = &o
		}
		projects, err := data.NewProjectRepo(db, nil).List(ctx, owner)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		if opts.JSON {
			return writeJSON(cmdCtx.out(), projects)
		}
		return writeProjectsTable(cmdCtx.out(), projects)
	})
}

func writeProjectsTable(w io.Writer, projects []model.Project) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tNAME\tOWNER\tSCHEMA\tCREATED"); err != nil {
		return err
	}
	for _, p := range projects {
		owner := "shared"
		if p.OwnerID != nil {
			owner = *p.OwnerID
		}
		schema := "-"
		if p.IFCSchema != nil {
			schema = *p.IFCSchema
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, owner, schema, p.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func parseJobFlags(args []string) (jobOptions, error) {
	fs := flag.NewFlagSet("job", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := jobOptions{}
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the job document")

	// accept the id before or after the flags
	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return jobOptions{}, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	if len(positional) != 1 {
		return jobOptions{}, errors.New("usage: job <id> [--query expr]")
	}
	opts.ID = positional[0]

	if opts.Query != "" {
		if _, err := jmespath.Compile(opts.Query); err != nil {
			return jobOptions{}, fmt.Errorf("invalid --query: %w", err)
		}
	}
	return opts, nil
}

func runJob(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		job, getErr := data.NewJobRepo(db, nil).GetByID(ctx, opts.ID)
		if getErr != nil {
			return fmt.Errorf("get job %s: %w", opts.ID, getErr)
		}
		results := data.NewResultRepo(db)
		checks, listErr := results.ListChecksByJob(ctx, opts.ID)
		if listErr != nil {
			return fmt.Errorf("list check results: %w", listErr)
		}
		elements, listErr := results.ListElementsByJob(ctx, opts.ID)
		if listErr != nil {
			return fmt.Errorf("list element results: %w", listErr)
		}

		doc := model.JobWithResults{Job: *job, CheckResults: checks, ElementResults: elements}
		out, projErr := projectJSON(doc, opts.Query)
		if projErr != nil {
			return projErr
		}
		return writeJSON(cmdCtx.out(), out)
	})
}

// projectJSON converts v to its generic JSON form and applies query to it.
// An empty query returns the whole document.
func projectJSON(v any, query string) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc any
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if query == "" {
		return doc, nil
	}
	res, err := jmespath.Search(query, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate query: %w", err)
	}
	return res, nil
}

type categoryRow struct {
	model.Category
	Teams []string `json:"teams"`
}

func runCategories(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := model.NewCategorySet(cmdCtx.Config.Category.TeamMap)
	rows := make([]categoryRow, 0, len(set.Categories))
	for _, c := range set.Categories {
		rows = append(rows, categoryRow{Category: c, Teams: set.TeamsIn(c.ID)})
	}

	if *asJSON {
		return writeJSON(cmdCtx.out(), rows)
	}

	tw := tabwriter.NewWriter(cmdCtx.out(), 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tNAME\tCOLOR\tTEAMS"); err != nil {
		return err
	}
	for _, r := range rows {
		teams := "-"
		if len(r.Teams) > 0 {
			teams = strings.Join(r.Teams, ",")
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Color, teams); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
