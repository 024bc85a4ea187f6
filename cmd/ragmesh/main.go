// Command ragmesh is the CLI for the retrieval-augmented chat pipeline. It
// offers an interactive chat loop over the embedded corpus, a CSV ingestion
// command to (re)populate the vector store and a count command to inspect it.
//
// Credentials come from the environment (or a .env file in the working
// directory): OPENAI_API_KEY plus SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY,
// or POSTGRES_URL for the pgvector-backed store.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/hupe1980/ragmesh"
	"github.com/hupe1980/ragmesh/chat"
	"github.com/hupe1980/ragmesh/config"
	"github.com/hupe1980/ragmesh/logging"
)

var cli struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Chat   ChatCmd   `cmd:"" help:"Start an interactive chat session over the embedded corpus."`
	Ingest IngestCmd `cmd:"" help:"Embed a CSV of unit rows and upsert them into the vector store."`
	Count  CountCmd  `cmd:"" help:"Report the number of embedded records in the store."`
}

// ChatCmd runs the interactive loop: read a line, run the pipeline, print
// the assistant's reply. Retrieval degradation surfaces as a notice, not an
// abort.
type ChatCmd struct {
	Preamble string `help:"System preamble for the session." default:""`
	TopK     int    `help:"Matches retrieved per turn (overrides RAGMESH_TOP_K)." default:"0"`
}

// IngestCmd loads rows from a CSV file and reports per-row failures.
type IngestCmd struct {
	File    string `arg:"" help:"Path to the CSV file (id,unidade,tipologia,bloco,piso,AHB,ABE,preço,luz_natural,score)." type:"existingfile"`
	Workers int    `help:"Embedding worker pool size." default:"4"`
}

// CountCmd prints the embedded-record count.
type CountCmd struct{}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("ragmesh"),
		kong.Description("Retrieval-augmented chat over an embedded unit corpus."),
		kong.UsageOnError(),
	)

	cfg, err := config.FromEnv()
	kctx.FatalIfErrorf(err)

	logger := logging.Logger(logging.NoOpLogger{})
	if cli.Verbose {
		logger = logging.NewLogger(&logging.LoggerConfig{
			Level:     logging.LogLevelDebug,
			Format:    "text",
			Output:    os.Stderr,
			Component: "ragmesh",
		})
	}

	mesh, err := ragmesh.FromConfig(cfg, func(o *ragmesh.Options) {
		o.Logger = logger
		o.IngestWorkers = cli.Ingest.Workers
	})
	kctx.FatalIfErrorf(err)

	kctx.FatalIfErrorf(kctx.Run(&runContext{cfg: cfg, mesh: mesh}))
}

type runContext struct {
	cfg  *config.Config
	mesh *ragmesh.RagMesh
}

// Run implements the chat subcommand.
func (c *ChatCmd) Run(rc *runContext) error {
	session := rc.mesh.SessionFromConfig(rc.cfg, func(o *chat.Options) {
		if c.Preamble != "" {
			o.Preamble = c.Preamble
		}
		if c.TopK > 0 {
			o.TopK = c.TopK
		}
	})

	fmt.Println("ragmesh chat. Type a message and press enter; empty line exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			break
		}

		res, err := session.InvokeSync(context.Background(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if res.Notice != "" {
			fmt.Fprintf(os.Stderr, "notice: %s\n", res.Notice)
		}
		fmt.Printf("assistant: %s\n", res.Reply)
	}
	return scanner.Err()
}

// Run implements the ingest subcommand.
func (c *IngestCmd) Run(rc *runContext) error {
	report, err := rc.mesh.IngestFile(context.Background(), c.File)
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())
	for _, re := range report.Failed {
		fmt.Fprintf(os.Stderr, "failed row %d: %v\n", re.RowID, re.Err)
	}
	if !report.Ok() {
		return fmt.Errorf("%d rows failed", len(report.Failed))
	}
	return nil
}

// Run implements the count subcommand.
func (c *CountCmd) Run(rc *runContext) error {
	count, err := rc.mesh.Store().Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d embedded records\n", count)
	return nil
}
