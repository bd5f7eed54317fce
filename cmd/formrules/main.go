// Command formrules validates a data document against a rule document.
//
// Usage:
//
//	formrules check   -rules rules.yaml -data form.json [-field NAME]
//	formrules collect -rules rules.yaml -data form.json [-field NAME] [-indent]
//
// check prints "valid" or "invalid"; collect prints the error container as
// JSON. The exit status is 0 when the data is valid, 1 when it is not and 2
// for usage errors or documents that cannot be loaded.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	fr "github.com/reoring/formrules"
	"github.com/reoring/formrules/input"
	"github.com/reoring/formrules/ruleset"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	log := newLogger(stderr, cfg)

	switch sub := args[0]; sub {
	case "check":
		return checkCmd(args[1:], cfg, log, stdout, stderr)
	case "collect":
		return collectCmd(args[1:], cfg, log, stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitValid
	default:
		usage(stderr)
		return exitError
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "formrules CLI\n\nUsage:\n  formrules check -rules rules.yaml -data form.json [-field NAME]\n  formrules collect -rules rules.yaml -data form.json [-field NAME] [-indent]\n\nEnvironment:\n  FORMRULES_RULES      default for -rules\n  FORMRULES_LOG_LEVEL  debug, info, warn or error\n  FORMRULES_LOG_JSON   log as JSON when true")
}

// common holds the flags shared by both subcommands.
type common struct {
	rules string
	data  string
	field string
}

func (c *common) bind(fs *flag.FlagSet, cfg config) {
	fs.StringVar(&c.rules, "rules", cfg.Rules, "rule document (.yaml, .yml or .json)")
	fs.StringVar(&c.data, "data", "", "data document (.json, .yaml, .yml or .toml)")
	fs.StringVar(&c.field, "field", "", "only evaluate this top-level field")
}

func (c *common) load(log *slog.Logger) (fr.Tree, any, bool) {
	if c.rules == "" || c.data == "" {
		log.Error("both -rules and -data are required")
		return nil, nil, false
	}
	tree, err := ruleset.LoadFile(c.rules)
	if err != nil {
		log.Error("load rules", "file", c.rules, "error", err)
		return nil, nil, false
	}
	log.Debug("loaded rules", "file", c.rules, "fields", len(tree))

	obj, err := input.DecodeFile(c.data)
	if err != nil {
		log.Error("load data", "file", c.data, "error", err)
		return nil, nil, false
	}
	log.Debug("loaded data", "file", c.data)
	return tree, obj, true
}

func checkCmd(args []string, cfg config, log *slog.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.bind(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	tree, obj, ok := c.load(log)
	if !ok {
		return exitError
	}

	v := fr.NewValidator(tree)
	var valid bool
	var err error
	if c.field != "" {
		valid, err = v.ValidField(obj, c.field)
	} else {
		valid, err = v.Valid(obj)
	}
	if err != nil {
		logRuleError(log, err)
		return exitError
	}
	if !valid {
		fmt.Fprintln(stdout, "invalid")
		return exitInvalid
	}
	fmt.Fprintln(stdout, "valid")
	return exitValid
}

func collectCmd(args []string, cfg config, log *slog.Logger, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.bind(fs, cfg)
	var indent bool
	fs.BoolVar(&indent, "indent", false, "indent the JSON output")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	tree, obj, ok := c.load(log)
	if !ok {
		return exitError
	}

	col := fr.NewCollector(tree)
	var errs *fr.Errors
	var err error
	if c.field != "" {
		errs, err = col.CollectField(obj, c.field)
	} else {
		errs, err = col.Collect(obj)
	}
	if err != nil {
		logRuleError(log, err)
		return exitError
	}

	var out []byte
	if indent {
		out, err = json.MarshalIndent(errs, "", "  ")
	} else {
		out, err = json.Marshal(errs)
	}
	if err != nil {
		log.Error("encode errors", "error", err)
		return exitError
	}
	fmt.Fprintln(stdout, string(out))
	if errs.HasErrors() {
		return exitInvalid
	}
	return exitValid
}

func logRuleError(log *slog.Logger, err error) {
	if se, ok := fr.AsStructureError(err); ok {
		log.Error("malformed rule tree", "path", se.Path)
		return
	}
	log.Error("evaluate rules", "error", err)
}
