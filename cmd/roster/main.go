package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"roster/internal/config"
	"roster/internal/controller"
	"roster/internal/crud"
	"roster/internal/log"
	"roster/internal/models"
	"roster/internal/store"
	"roster/internal/version"
)

func main() {
	if err := config.LoadAndApply(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, in io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("roster", flag.ContinueOnError)
	global.SetOutput(stderr)
	backend := global.String("backend", "", "active backend: db or xml")
	xmlPath := global.String("xml", "", "path of the XML players file")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr)
		return 1
	}

	switch rest[0] {
	case "version":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	}

	cfg := config.Load()
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *xmlPath != "" {
		cfg.XMLPath = *xmlPath
	}
	logger := newLogger(stderr, cfg.LogLevel)

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "roster: %v\n", err)
		return 1
	}
	defer a.close()

	cmdArgs := rest[1:]
	switch rest[0] {
	case "list":
		err = a.listCmd(ctx, cmdArgs, stdout, stderr)
	case "add":
		err = a.addCmd(ctx, cmdArgs, stdout, stderr)
	case "search":
		err = a.searchCmd(ctx, cmdArgs, stdout, stderr)
	case "delete":
		err = a.deleteCmd(ctx, cmdArgs, stdout, stderr)
	case "seed":
		err = a.seedCmd(ctx, cmdArgs, stdout, stderr)
	case "shell":
		err = a.shellCmd(ctx, in, stdout, stderr)
	default:
		usage(stderr)
		return 1
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, controller.ErrValidation):
		// already shown by the view
		return 1
	default:
		fmt.Fprintf(stderr, "roster: %v\n", err)
		return 1
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "roster - football players roster")
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  roster [--backend db|xml] [--xml <path>] <command>")
	fmt.Fprintln(w, "  roster list [--page N] [--size N] [--json]")
	fmt.Fprintln(w, "  roster add --name <full name> --birth YYYY-MM-DD --team <team> --city <city> --team-type <type> --position <position>")
	fmt.Fprintln(w, "  roster search name [--name <part>] [--birth YYYY-MM-DD] [--json]")
	fmt.Fprintln(w, "  roster search position [--position <position>] [--team-type <type>] [--json]")
	fmt.Fprintln(w, "  roster search team [--team <part>] [--city <part>] [--json]")
	fmt.Fprintln(w, "  roster delete name|position|team ...   (same flags as search)")
	fmt.Fprintln(w, "  roster seed [--n 50]")
	fmt.Fprintln(w, "  roster shell")
	fmt.Fprintln(w, "  roster version")
}

// newLogger tags every record with a per-invocation session id.
func newLogger(w io.Writer, level string) *log.Logger {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return log.NewWithWriter(w, log.ParseLevel(level)).With(map[string]string{"session": id.String()})
}

type app struct {
	cfg    config.Config
	logger *log.Logger
	sql    *store.SQLStore
	xml    *store.XMLStore
	svc    *crud.Service
}

// openApp wires both backends. A relational backend that fails to open is
// fatal only when it is the one requested.
func openApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	kind, err := crud.ParseKind(cfg.Backend)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, xml: store.NewXML(cfg.XMLPath)}

	var db store.Backend
	sqlStore, err := store.OpenSQL(ctx, cfg.DBDriver, cfg.DBDSN, store.WithLogger(logger))
	switch {
	case err == nil:
		a.sql = sqlStore
		db = sqlStore
	case kind == crud.KindDB:
		return nil, err
	default:
		logger.Warn("relational backend unavailable", "driver", cfg.DBDriver, "dsn", cfg.DBDSN, "error", err.Error())
	}

	svc, err := crud.New(db, a.xml, kind, crud.WithLogger(logger))
	if err != nil {
		if a.sql != nil {
			_ = a.sql.Close()
		}
		return nil, err
	}
	a.svc = svc

	if cfg.Seed > 0 && a.sql != nil {
		n, err := store.SeedIfEmpty(ctx, a.sql, cfg.Seed, newRand())
		if err != nil {
			logger.Warn("seed failed", "error", err.Error())
		} else if n > 0 {
			logger.Info("seeded database", "count", n)
		}
	}
	return a, nil
}

func (a *app) close() {
	if err := a.svc.Close(); err != nil {
		a.logger.Warn("close failed", "error", err.Error())
	}
}

func (a *app) controller(v controller.View) *controller.Controller {
	return controller.New(a.svc, v, controller.WithPageSize(a.cfg.PageSize))
}

func (a *app) activeBackend() store.Backend {
	if a.svc.ActiveBackend() == crud.KindXML {
		return a.xml
	}
	if a.sql == nil {
		return nil
	}
	return a.sql
}

func newRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>17))
}

func (a *app) listCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", a.cfg.PageSize, "records per page")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view := newTermView(stdout, stderr, *asJSON)
	ctrl := a.controller(view)
	if !ctrl.SetPageSize(*size) {
		return fmt.Errorf("invalid page size %d", *size)
	}
	if err := ctrl.LoadAll(ctx); err != nil {
		return err
	}
	if *page != 1 {
		if *page < 1 || *page > ctrl.TotalPages() {
			return fmt.Errorf("page %d out of range 1..%d", *page, ctrl.TotalPages())
		}
		ctrl.GoToPage(*page)
	}
	return view.flush()
}

func (a *app) addCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in controller.PlayerInput
	fs.StringVar(&in.FullName, "name", "", "full name")
	fs.StringVar(&in.BirthDate, "birth", "", "birth date YYYY-MM-DD")
	fs.StringVar(&in.FootballTeam, "team", "", "football team")
	fs.StringVar(&in.HomeCity, "city", "", "home city")
	fs.StringVar(&in.TeamType, "team-type", "", "MAIN, RESERVE or NOT_APPLICABLE")
	fs.StringVar(&in.Position, "position", "", "GOALKEEPER, DEFENDER, MIDFIELDER or FORWARD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	view := newTermView(stdout, stderr, false)
	if err := a.controller(view).AddPlayer(ctx, in); err != nil {
		return err
	}
	fmt.Fprintln(stdout, view.okText.Render("added "+strings.TrimSpace(in.FullName)))
	return nil
}

// query is one of the three search/delete criteria pairs.
type query struct {
	by       string
	name     string
	birth    string
	position string
	teamType string
	team     string
	city     string
	asJSON   bool
}

func parseQuery(verb string, args []string, stderr io.Writer) (query, error) {
	if len(args) == 0 {
		return query{}, fmt.Errorf("usage: roster %s name|position|team [flags]", verb)
	}
	q := query{by: args[0]}
	fs := flag.NewFlagSet(verb+" "+q.by, flag.ContinueOnError)
	fs.SetOutput(stderr)
	switch q.by {
	case "name":
		fs.StringVar(&q.name, "name", "", "full name substring")
		fs.StringVar(&q.birth, "birth", "", "birth date YYYY-MM-DD")
	case "position":
		fs.StringVar(&q.position, "position", "", "player position")
		fs.StringVar(&q.teamType, "team-type", "", "team type")
	case "team":
		fs.StringVar(&q.team, "team", "", "football team substring")
		fs.StringVar(&q.city, "city", "", "home city substring")
	default:
		return query{}, fmt.Errorf("unknown %s criteria %q (want name, position or team)", verb, q.by)
	}
	if verb == "search" {
		fs.BoolVar(&q.asJSON, "json", false, "print JSON")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return query{}, err
	}
	return q, nil
}

func (q query) search(ctx context.Context, c *controller.Controller) ([]models.Player, error) {
	switch q.by {
	case "name":
		return c.SearchByNameBirth(ctx, q.name, q.birth)
	case "position":
		return c.SearchByPositionTeamType(ctx, q.position, q.teamType)
	default:
		return c.SearchByTeamCity(ctx, q.team, q.city)
	}
}

func (q query) delete(ctx context.Context, c *controller.Controller) (int, error) {
	switch q.by {
	case "name":
		return c.DeleteByNameBirth(ctx, q.name, q.birth)
	case "position":
		return c.DeleteByPositionTeamType(ctx, q.position, q.teamType)
	default:
		return c.DeleteByTeamCity(ctx, q.team, q.city)
	}
}

func (a *app) searchCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	q, err := parseQuery("search", args, stderr)
	if err != nil {
		return err
	}
	view := newTermView(stdout, stderr, q.asJSON)
	found, err := q.search(ctx, a.controller(view))
	if err != nil {
		return err
	}
	return view.renderResults(found)
}

func (a *app) deleteCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	q, err := parseQuery("delete", args, stderr)
	if err != nil {
		return err
	}
	_, err = q.delete(ctx, a.controller(newTermView(stdout, stderr, false)))
	return err
}

func (a *app) seedCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", config.DefaultSeedSize, "number of players to generate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 1 {
		return fmt.Errorf("invalid count %d", *n)
	}
	b := a.activeBackend()
	if b == nil {
		return fmt.Errorf("%w: relational backend not configured", crud.ErrUnknownBackend)
	}
	written, err := store.Seed(ctx, b, *n, newRand())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "seeded %d players into %s\n", written, a.svc.ActiveBackend())
	return nil
}

const shellHelp = `commands:
  list | reload          reload from the active backend
  first | prev | next | last
  page N                 jump to page N
  size N                 records per page
  source db|xml          switch backend
  file <path>            use another XML file (activates xml)
  quit`

// shellCmd is a line-oriented session over one controller, for paging and
// switching sources without restarting.
func (a *app) shellCmd(ctx context.Context, in io.Reader, stdout, stderr io.Writer) error {
	view := newTermView(stdout, stderr, false)
	ctrl := a.controller(view)
	if err := ctrl.LoadAll(ctx); err != nil {
		return err
	}
	if err := view.flush(); err != nil {
		return err
	}
	sc := bufio.NewScanner(in)
	fmt.Fprint(stdout, "> ")
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			if fields[0] == "quit" || fields[0] == "exit" {
				return nil
			}
			if err := shellStep(ctx, ctrl, fields, stdout); err != nil {
				view.ShowErrors(err.Error())
			}
			if err := view.flush(); err != nil {
				return err
			}
		}
		fmt.Fprint(stdout, "> ")
	}
	return sc.Err()
}

func shellStep(ctx context.Context, ctrl *controller.Controller, fields []string, stdout io.Writer) error {
	arg := strings.Join(fields[1:], " ")
	switch fields[0] {
	case "list", "reload":
		return ctrl.LoadAll(ctx)
	case "first":
		ctrl.FirstPage()
	case "prev":
		ctrl.PrevPage()
	case "next":
		ctrl.NextPage()
	case "last":
		ctrl.LastPage()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > ctrl.TotalPages() {
			return fmt.Errorf("page must be between 1 and %d", ctrl.TotalPages())
		}
		ctrl.GoToPage(n)
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil || !ctrl.SetPageSize(n) {
			return fmt.Errorf("page size must be a positive number")
		}
	case "source":
		kind, err := crud.ParseKind(arg)
		if err != nil {
			return err
		}
		return ctrl.ChangeDataSource(ctx, kind)
	case "file":
		return ctrl.ChangeXMLFile(ctx, arg)
	case "help":
		fmt.Fprintln(stdout, shellHelp)
	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return nil
}
