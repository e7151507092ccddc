// Command dispatchsh is an interactive demonstration shell wiring
// Manager end-to-end: it registers a handful of sample commands and
// drives Manager.Execute per line and Manager.Suggest for tab completion.
// Grounded on npillmayer-gorgo's own trepl REPL (terex/terexlang/trepl/repl.go),
// which pairs chzyer/readline for line editing with pterm for colored
// output; this program is the analogous outer-surface demonstration for
// dispatch, not a library component.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/branchcmd/dispatch"
	"github.com/branchcmd/dispatch/internal/demoargs"
)

// User is the demo sender type: a logged-in operator with a fixed set of
// granted permission strings.
type User struct {
	Name        string
	Permissions map[string]bool
}

func hasPermission(ctx context.Context, u User, permission string) (bool, error) {
	return u.Permissions[permission], nil
}

func main() {
	initDisplay()
	pterm.Info.Println("Welcome to dispatchsh")

	user := User{Name: "demo", Permissions: map[string]bool{"admin.reload": true}}

	mgr := dispatch.NewManager[User](&dispatch.Settings{
		EnforceIntermediaryPermissions: true,
	}, hasPermission)

	for _, reg := range demoCommands() {
		if err := mgr.Register(reg); err != nil {
			pterm.Error.Println("registering command:", err)
			os.Exit(1)
		}
	}

	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "dispatchsh> ",
		AutoComplete: completer{mgr: mgr, user: user},
	})
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer repl.Close()

	pterm.Info.Println("Quit with <ctrl>D")
	ctx := context.Background()
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on ctrl-D
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := mgr.Execute(ctx, user, line).Get(ctx); err != nil {
			printError(err)
		}
	}
	pterm.Info.Println("Good bye!")
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{Text: "  >>", Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)}
	pterm.Error.Prefix = pterm.Prefix{Text: "  Error", Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack)}
}

func printError(err error) {
	var noPerm *dispatch.NoPermissionError[User]
	var noSuchCmd *dispatch.NoSuchCommandError[User]
	var invalidSyntax *dispatch.InvalidSyntaxError[User]
	var argParse *dispatch.ArgumentParseError[User]
	switch {
	case errors.As(err, &noPerm):
		pterm.Error.Println("missing permission:", noPerm.Missing)
	case errors.As(err, &noSuchCmd):
		pterm.Error.Println("no such command:", noSuchCmd.Token)
	case errors.As(err, &invalidSyntax):
		pterm.Error.Println("invalid syntax:", invalidSyntax.Error())
	case errors.As(err, &argParse):
		pterm.Error.Println("bad argument:", argParse.Error())
	default:
		pterm.Error.Println(err)
	}
}

// completer bridges readline.AutoCompleter to Manager.Suggest.
type completer struct {
	mgr  *dispatch.Manager[User]
	user User
}

func (c completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	prefix := string(line[:pos])
	suggestions, err := c.mgr.Suggest(context.Background(), c.user, prefix).Get(context.Background())
	if err != nil {
		return nil, 0
	}
	lastToken := prefix
	if idx := strings.LastIndexByte(prefix, ' '); idx >= 0 {
		lastToken = prefix[idx+1:]
	}
	out := make([][]rune, 0, len(suggestions))
	for _, s := range suggestions {
		if !strings.HasPrefix(s.Text, lastToken) {
			continue
		}
		out = append(out, []rune(s.Text[len(lastToken):]))
	}
	return out, len(lastToken)
}

func demoCommands() []*dispatch.Command[User] {
	echo, err := dispatch.NewCommandBuilder[User](
		dispatch.NewLiteralComponent[User]("echo"),
		dispatch.NewRequiredComponent[User, string]("phrase", demoargs.GreedyPhrase[User]{}),
	).Executes(func(ctx context.Context, tc *dispatch.TreeContext[User]) error {
		phrase, _ := tc.Raw("phrase")
		pterm.Println(phrase)
		return nil
	}).Build()
	must(err)

	add, err := dispatch.NewCommandBuilder[User](
		dispatch.NewLiteralComponent[User]("add"),
		dispatch.NewRequiredComponent[User, int]("a", demoargs.Int[User]{Min: -1 << 30, Max: 1 << 30}),
		dispatch.NewRequiredComponent[User, int]("b", demoargs.Int[User]{Min: -1 << 30, Max: 1 << 30}),
	).Executes(func(ctx context.Context, tc *dispatch.TreeContext[User]) error {
		a, _ := tc.Raw("a")
		b, _ := tc.Raw("b")
		pterm.Println(a.(int) + b.(int))
		return nil
	}).Build()
	must(err)

	loudDefault := dispatch.ConstantDefault[User, bool]{Value: false}
	greet, err := dispatch.NewCommandBuilder[User](
		dispatch.NewLiteralComponent[User]("greet"),
		dispatch.NewRequiredComponent[User, string]("name", demoargs.Word[User]{}),
		dispatch.NewOptionalComponent[User, bool]("loud", demoargs.Bool[User]{}, loudDefault,
			dispatch.WithSuggestions[User](demoargs.Bool[User]{})),
	).Executes(func(ctx context.Context, tc *dispatch.TreeContext[User]) error {
		name, _ := tc.Raw("name")
		loud, _ := tc.Raw("loud")
		greeting := fmt.Sprintf("Hello, %s!", name)
		if loud.(bool) {
			greeting = strings.ToUpper(greeting)
		}
		pterm.Println(greeting)
		return nil
	}).Build()
	must(err)

	dice := demoargs.Enum[User]{Values: []string{"d4", "d6", "d8", "d10", "d12", "d20"}}
	roll, err := dispatch.NewCommandBuilder[User](
		dispatch.NewLiteralComponent[User]("roll"),
		dispatch.NewRequiredComponent[User, string]("sides", dice, dispatch.WithSuggestions[User](dice)),
	).Executes(func(ctx context.Context, tc *dispatch.TreeContext[User]) error {
		sides, _ := tc.Raw("sides")
		pterm.Println("rolling a", sides)
		return nil
	}).Build()
	must(err)

	flags := demoargs.FlagSet[User]{Names: []string{"limit", "sort"}}
	search, err := dispatch.NewCommandBuilder[User](
		dispatch.NewLiteralComponent[User]("search"),
		dispatch.NewRequiredComponent[User, string]("query", demoargs.Word[User]{}),
		dispatch.NewFlagComponent[User, map[string]string]("options", flags),
	).Executes(func(ctx context.Context, tc *dispatch.TreeContext[User]) error {
		query, _ := tc.Raw("query")
		options, _ := tc.Raw("options")
		pterm.Println("searching for", query, "with", options)
		return nil
	}).Build()
	must(err)

	admin, err := dispatch.NewCommandBuilder[User](
		dispatch.NewLiteralComponent[User]("admin"),
		dispatch.NewLiteralComponent[User]("reload"),
	).Requires(dispatch.LeafPermission("admin.reload")).
		Executes(func(ctx context.Context, tc *dispatch.TreeContext[User]) error {
			pterm.Println("configuration reloaded")
			return nil
		}).Build()
	must(err)

	return []*dispatch.Command[User]{echo, add, greet, roll, search, admin}
}

func must(err error) {
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
