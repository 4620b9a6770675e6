package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"golang.org/x/term"

	"github.com/idilsaglam/grocer/internal/api"
	"github.com/idilsaglam/grocer/internal/config"
	itemlist "github.com/idilsaglam/grocer/internal/list"
	"github.com/idilsaglam/grocer/internal/logging"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/notify"
	"github.com/idilsaglam/grocer/internal/session"
	"github.com/idilsaglam/grocer/internal/store/profilestore"
	"github.com/idilsaglam/grocer/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Plain bool // render ls as a static panel instead of the interactive list
}

// app holds the wired components. Construction order matters: the session
// store must be initialized before anything touches the item list.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Store
	queue   *notify.Queue
	ctrl    *itemlist.Controller
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	client, err := api.New(cfg.APIBaseURL, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	sess := session.NewStore(client, profilestore.New(cfg.DataDir), clock)
	sess.Initialize()

	queue := notify.NewQueue(clock)
	return &app{
		cfg:     cfg,
		client:  client,
		session: sess,
		queue:   queue,
		ctrl:    itemlist.NewController(client, queue),
	}, nil
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		PrintHelp()
		return 0
	}

	app, err := newApp()
	if err != nil {
		ui.Fail("setup: " + err.Error())
		return 1
	}

	switch cmd {
	case "ls":
		return app.doList(opt)

	case "add":
		if len(a) < 2 {
			ui.Fail("usage: grocer add <category> <name...>")
			return 2
		}
		return app.doAdd(strings.Join(a[1:], " "), a[0])

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: grocer done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return app.doToggle(n)

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: grocer rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("rm: not a number: " + a[0])
			return 2
		}
		return app.doRemove(n)

	case "clear":
		if len(a) != 1 {
			ui.Fail("usage: grocer clear <category>")
			return 2
		}
		return app.doClearCategory(a[0])

	case "categories":
		return app.doCategories()

	case "health":
		return app.doHealth()

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: grocer auth <register|login|logout|status|reset-request|reset>")
			return 2
		}
		switch a[0] {
		case "register":
			return app.doAuthRegister()
		case "login":
			return app.doAuthLogin()
		case "logout":
			return app.doAuthLogout()
		case "status":
			return app.doAuthStatus()
		case "reset-request":
			if len(a) != 2 {
				ui.Fail("usage: grocer auth reset-request <email>")
				return 2
			}
			return app.doAuthResetRequest(a[1])
		case "reset":
			if len(a) != 2 {
				ui.Fail("usage: grocer auth reset <token>")
				return 2
			}
			return app.doAuthReset(a[1])
		default:
			ui.Fail("usage: grocer auth <register|login|logout|status|reset-request|reset>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`grocer - a grocery list client

Usage:
  grocer <subcommand> [args]

Subcommands:
  ls                  List items (interactive; -plain for a static panel)
  add <category> <name...>   Add a new item
  done <index>        Toggle completion for item at 1-based index
  rm <index>          Remove item at 1-based index
  clear <category>    Remove every item in a category
  categories          List known categories
  health              Check whether the service is reachable
  auth <register|login|logout|status|reset-request|reset>

Examples:
  grocer auth login
  grocer add Drinks "Orange juice"
  grocer ls
  grocer done 2
  grocer rm 3
`)
}

// ---------------------------------------------------
// Session gating
// ---------------------------------------------------

// ensureAuth gates the item subcommands on an authenticated session.
func (a *app) ensureAuth() int {
	if a.session.Phase() != session.Authenticated {
		ui.Fail("not signed in. Run `grocer auth login`")
		return 2
	}
	return 0
}

// flushNotifications prints and drains whatever the operation queued.
func (a *app) flushNotifications() {
	for _, n := range a.queue.Notifications() {
		switch n.Kind {
		case notify.KindError:
			fmt.Fprintln(os.Stderr, ui.RenderNotification(n))
		default:
			fmt.Println(ui.RenderNotification(n))
		}
		a.queue.Dismiss(n.ID)
	}
}

// ---------------------------------------------------
// Item subcommands (remote CRUD through the controller)
// ---------------------------------------------------

func (a *app) doList(opt Options) int {
	if code := a.ensureAuth(); code != 0 {
		return code
	}
	ctx := context.Background()
	if err := a.ctrl.Refresh(ctx); err != nil {
		ui.Fail("load: " + err.Error())
		return 1
	}
	if opt.Plain {
		fmt.Println(ui.PlainList(a.ctrl.Items(), model.FilterAll))
		return 0
	}
	user, _ := a.session.User()
	if err := ui.Run(a.ctrl, a.queue, user); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func (a *app) doAdd(name, category string) int {
	if code := a.ensureAuth(); code != 0 {
		return code
	}
	err := a.ctrl.Add(context.Background(), name, category)
	a.flushNotifications()
	if err != nil {
		return 1
	}
	return 0
}

// itemAt resolves a 1-based index against a fresh canonical set.
func (a *app) itemAt(ctx context.Context, userIndex int) (model.GroceryItem, int) {
	if err := a.ctrl.Refresh(ctx); err != nil {
		ui.Fail("load: " + err.Error())
		return model.GroceryItem{}, 1
	}
	items := a.ctrl.Items()
	if userIndex < 1 || userIndex > len(items) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		fmt.Fprintln(os.Stderr, ui.Muted("Hint: run `grocer ls` to see valid indexes"))
		return model.GroceryItem{}, 2
	}
	return items[userIndex-1], 0
}

func (a *app) doToggle(userIndex int) int {
	if code := a.ensureAuth(); code != 0 {
		return code
	}
	ctx := context.Background()
	item, code := a.itemAt(ctx, userIndex)
	if code != 0 {
		return code
	}
	err := a.ctrl.Toggle(ctx, item.ID)
	a.flushNotifications()
	if err != nil {
		return 1
	}
	ui.OK("toggled")
	return 0
}

func (a *app) doRemove(userIndex int) int {
	if code := a.ensureAuth(); code != 0 {
		return code
	}
	ctx := context.Background()
	item, code := a.itemAt(ctx, userIndex)
	if code != 0 {
		return code
	}
	err := a.ctrl.Delete(ctx, item.ID)
	a.flushNotifications()
	if err != nil {
		return 1
	}
	return 0
}

func (a *app) doClearCategory(category string) int {
	if code := a.ensureAuth(); code != 0 {
		return code
	}
	err := a.ctrl.DeleteCategory(context.Background(), category)
	a.flushNotifications()
	if err != nil {
		return 1
	}
	return 0
}

func (a *app) doCategories() int {
	cats, err := a.client.Categories(context.Background())
	if err != nil {
		// The service listing is optional; the built-in set still applies.
		cats = model.Categories
	}
	for _, c := range cats {
		fmt.Println(c)
	}
	return 0
}

func (a *app) doHealth() int {
	if a.client.Health(context.Background()) {
		ui.OK("service reachable")
		return 0
	}
	ui.Fail("service unreachable")
	return 1
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func (a *app) doAuthRegister() int {
	name, err := promptLine("Name: ")
	if err != nil {
		ui.Fail("read name: " + err.Error())
		return 1
	}
	email, err := promptLine("Email: ")
	if err != nil {
		ui.Fail("read email: " + err.Error())
		return 1
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}
	if password != confirm {
		ui.Fail("passwords do not match")
		return 2
	}

	res := a.session.Register(context.Background(), name, email, password)
	if !res.Success {
		ui.Fail("register: " + res.Error)
		return 1
	}
	ui.OK("registered and signed in as " + res.User.Name)
	return 0
}

func (a *app) doAuthLogin() int {
	email, err := promptLine("Email: ")
	if err != nil {
		ui.Fail("read email: " + err.Error())
		return 1
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}

	res := a.session.Login(context.Background(), email, password)
	if !res.Success {
		ui.Fail("login: " + res.Error)
		return 1
	}
	ui.OK("signed in as " + res.User.Name)
	return 0
}

func (a *app) doAuthLogout() int {
	a.session.Logout(context.Background())
	ui.OK("signed out")
	return 0
}

func (a *app) doAuthStatus() int {
	user, ok := a.session.User()
	if !ok {
		fmt.Println(ui.Muted("not signed in"))
		fmt.Println("Run: grocer auth login")
		return 0
	}
	fmt.Printf("name:  %s\n", user.Name)
	fmt.Printf("email: %s\n", user.Email)
	if !user.AuthenticatedAt.IsZero() {
		fmt.Printf("since: %s\n", user.AuthenticatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	return 0
}

func (a *app) doAuthResetRequest(email string) int {
	res := a.session.RequestPasswordReset(context.Background(), email)
	if !res.Success {
		ui.Fail("reset request: " + res.Error)
		return 1
	}
	ui.OK("password reset requested, check your inbox")
	return 0
}

func (a *app) doAuthReset(token string) int {
	password, err := promptPassword("New password: ")
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		ui.Fail("read password: " + err.Error())
		return 1
	}
	if password != confirm {
		ui.Fail("passwords do not match")
		return 2
	}

	res := a.session.ResetPassword(context.Background(), token, password)
	if !res.Success {
		ui.Fail("reset: " + res.Error)
		return 1
	}
	ui.OK("password updated, sign in with the new one")
	return 0
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	rd := bufio.NewReader(os.Stdin)
	line, err := rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
