package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Health(ctx context.Context) error
	Products(ctx context.Context) error
	SetPage(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	AddProduct(ctx context.Context) error
	EditProduct(ctx context.Context, args []string) error
	DeleteProduct(ctx context.Context, args []string) error
	Categories(ctx context.Context) error
	AddCategory(ctx context.Context) error
	EditCategory(ctx context.Context, args []string) error
	DeleteCategory(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the store admin CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - health         — probe server availability
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - products | p   — show the current product page
//	  - page <n>       — jump to page n
//	  - filter ...     — search <text> | instock on|off | category <name> | reset
//	  - add            — create a product (interactive prompts)
//	  - edit <id>      — update a product
//	  - del <id>       — delete a product
//	  - categories | c — list categories
//	  - addcat         — create a category
//	  - editcat <id>   — update a category
//	  - delcat <id>    — delete a category
//	  - whoami         — show the current identity
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("store %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (p)roducts, page <n>, filter, add, edit <id>, del <id>, (c)ategories, addcat, editcat <id>, delcat <id>, whoami, health, logout, exit")
			} else {
				printlnFn("Available commands: register, login, health, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "p", "products":
			_ = a.Products(ctx)

		case "page":
			if len(args) == 0 {
				printlnFn("Usage: page <n>")
				continue
			}
			_ = a.SetPage(ctx, args)

		case "filter":
			_ = a.Filter(ctx, args)

		case "add":
			_ = a.AddProduct(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditProduct(ctx, args)

		case "del":
			if len(args) == 0 {
				printlnFn("Usage: del <id>")
				continue
			}
			_ = a.DeleteProduct(ctx, args)

		case "c", "categories":
			_ = a.Categories(ctx)

		case "addcat":
			_ = a.AddCategory(ctx)

		case "editcat":
			if len(args) == 0 {
				printlnFn("Usage: editcat <id>")
				continue
			}
			_ = a.EditCategory(ctx, args)

		case "delcat":
			if len(args) == 0 {
				printlnFn("Usage: delcat <id>")
				continue
			}
			_ = a.DeleteCategory(ctx, args)

		case "whoami":
			_ = a.Whoami(ctx)

		case "health":
			_ = a.Health(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
