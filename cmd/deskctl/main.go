// Command deskctl renders desk views from the command line against the
// same store the server uses.
//
//	deskctl [-config path] [-today YYYY-MM-DD] [-user u] [-lang l] <command> [flags]
//
// Commands: form, action, filters, reports, set-doc, set-default,
// get-default, seed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/teciza/desk/internal/application/service"
	"github.com/teciza/desk/internal/config"
	"github.com/teciza/desk/internal/container"
	"github.com/teciza/desk/internal/domain/entity"
	"github.com/teciza/desk/internal/domain/report"
	"github.com/teciza/desk/pkg/utils"
)

var errUsage = errors.New("usage: deskctl [-config path] [-today YYYY-MM-DD] [-user u] [-lang l] <form|action|filters|reports|set-doc|set-default|get-default|seed> [flags]")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type globalOptions struct {
	configPath string
	today      string
	user       string
	lang       string
	verbose    bool
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts globalOptions
	global := flag.NewFlagSet("deskctl", flag.ContinueOnError)
	global.StringVar(&opts.configPath, "config", "", "path to the YAML config file (defaults and environment when empty)")
	global.StringVar(&opts.today, "today", "", "pin the report clock to this date (YYYY-MM-DD)")
	global.StringVar(&opts.user, "user", entity.GuestUser, "session user")
	global.StringVar(&opts.lang, "lang", "", "session language (defaults to desk.default_language)")
	global.BoolVar(&opts.verbose, "v", false, "log to stderr")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errUsage
	}

	c, err := openContainer(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	lang := opts.lang
	if lang == "" {
		lang = c.Config().Desk.DefaultLanguage
	}
	session := service.Session{User: opts.user, Language: lang}

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "form":
		return runForm(ctx, c, session, cmdArgs, out)
	case "action":
		return runAction(ctx, c, session, cmdArgs, out)
	case "filters":
		return runFilters(ctx, c, session, cmdArgs, out)
	case "reports":
		return writeJSON(out, c.Services().Report.Reports())
	case "set-doc":
		return runSetDoc(ctx, c, cmdArgs, out)
	case "set-default":
		return runSetDefault(ctx, c, cmdArgs, out)
	case "get-default":
		return runGetDefault(ctx, c, session, cmdArgs, out)
	case "seed":
		return runSeed(ctx, c, cmdArgs, out)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func openContainer(ctx context.Context, opts globalOptions) (*container.Container, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = utils.NewLogger(utils.LoggerConfig{Level: "debug", OutputPath: "stderr", Format: "console"}); err != nil {
			return nil, err
		}
	}

	containerCfg, err := container.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if opts.today != "" {
		today, err := time.ParseInLocation(report.DateLayout, opts.today, containerCfg.Desk.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid -today %q: %w", opts.today, err)
		}
		containerCfg.Desk.Today = today
	}

	c, err := container.NewContainer(containerCfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func documentFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	doctype := fs.String("doctype", entity.DoctypeWPS, "document type")
	docname := fs.String("name", "", "document name")
	return fs, doctype, docname
}

func runForm(ctx context.Context, c *container.Container, session service.Session, args []string, out io.Writer) error {
	fs, doctype, name := documentFlags("form")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("form: -name is required")
	}

	view, err := c.Services().Form.Render(ctx, session, *doctype, *name)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]interface{}{
		"doc":     view.Document,
		"buttons": view.Buttons,
	})
}

func runAction(ctx context.Context, c *container.Container, session service.Session, args []string, out io.Writer) error {
	fs, doctype, name := documentFlags("action")
	label := fs.String("label", "Download", "button label as shown in the session language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("action: -name is required")
	}

	target, err := c.Services().Form.Activate(ctx, session, *doctype, *name, *label)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, target)
	return err
}

func runFilters(ctx context.Context, c *container.Container, session service.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("filters", flag.ContinueOnError)
	name := fs.String("report", entity.ReportWPS, "report name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters, err := c.Services().Report.Filters(ctx, session, *name)
	if err != nil {
		return err
	}
	return writeJSON(out, filters)
}

func runSetDoc(ctx context.Context, c *container.Container, args []string, out io.Writer) error {
	fs, doctype, name := documentFlags("set-doc")
	status := fs.Int("docstatus", int(entity.DocStatusDraft), "0 draft, 1 submitted, 2 cancelled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("set-doc: -name is required")
	}

	doc := &entity.Document{Doctype: *doctype, Name: *name, DocStatus: entity.DocStatus(*status)}
	if err := c.Services().Store.SaveDocument(ctx, doc); err != nil {
		return err
	}
	return writeJSON(out, doc)
}

func runSetDefault(ctx context.Context, c *container.Container, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("set-default", flag.ContinueOnError)
	parent := fs.String("parent", entity.GlobalDefaultsParent, "user the default belongs to")
	key := fs.String("key", entity.DefaultKeyCompany, "default key")
	value := fs.String("value", "", "default value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.Services().Store.SetDefault(ctx, *parent, *key, *value); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%s.%s = %q\n", *parent, *key, *value)
	return err
}

func runGetDefault(ctx context.Context, c *container.Container, session service.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get-default", flag.ContinueOnError)
	key := fs.String("key", entity.DefaultKeyCompany, "default key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	value, err := c.Services().Store.Default(ctx, session.User, *key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, value)
	return err
}

// runSeed loads a YAML fixture of documents and defaults and writes it in
// one transaction.
func runSeed(ctx context.Context, c *container.Container, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "YAML fixture with documents and defaults")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("seed: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	var fixture service.Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("seed: parse %s: %w", *file, err)
	}

	result, err := c.Services().Store.Apply(ctx, fixture)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return writeJSON(out, result)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
