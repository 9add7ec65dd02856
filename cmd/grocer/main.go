package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/grocer-backend/pkg/grocerclient"
	"github.com/angelmondragon/grocer-backend/pkg/types"
)

const (
	envAPIURL     = "GROCER_API_URL"
	defaultAPIURL = "http://localhost:8080"
)

type stderrNotifier struct {
	out io.Writer
}

func (n stderrNotifier) Success(msg string) { fmt.Fprintf(n.out, "ok: %s\n", msg) }
func (n stderrNotifier) Error(msg string)   { fmt.Fprintf(n.out, "error: %s\n", msg) }

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("grocer", flag.ContinueOnError)
	global.SetOutput(stderr)
	apiURL := global.String("api", envOr(envAPIURL, defaultAPIURL), "grocer API base url")
	timeout := global.Duration("timeout", 10*time.Second, "per request timeout")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: grocer [-api url] <command> [flags]")
		fmt.Fprintln(stderr, "commands: session-create session-get join stores store-create store-update store-delete items item-add item-update item-delete")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	client, err := grocerclient.New(*apiURL, grocerclient.WithNotifier(stderrNotifier{out: stderr}))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	cmd, rest := global.Arg(0), global.Args()[1:]
	result, err := dispatch(ctx, client, cmd, rest, stderr)
	if err != nil {
		var apiErr *grocerclient.APIError
		if !errors.As(err, &apiErr) {
			fmt.Fprintln(stderr, err)
			return 2
		}
		return 1
	}
	if result == nil {
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, client *grocerclient.Client, cmd string, args []string, stderr io.Writer) (any, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	session := fs.String("session", "", "session id")
	store := fs.Int64("store", 0, "store id")
	item := fs.Int64("item", 0, "item id")
	user := fs.Int64("user", 0, "acting user id")
	name := fs.String("name", "", "name")
	description := fs.String("description", "", "item description")
	quantity := fs.Int("quantity", 0, "item quantity")
	price := fs.String("price", "", "price, or \"null\" to clear it")
	checked := fs.String("checked", "", "true or false")
	expires := fs.Duration("expires-in", 0, "session lifetime (default 30 days)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	switch cmd {
	case "session-create":
		var expiresAt time.Time
		if *expires > 0 {
			expiresAt = time.Now().Add(*expires)
		}
		return client.CreateSession(ctx, *session, expiresAt)
	case "session-get":
		return client.GetSession(ctx, *session)
	case "join":
		var userID *int64
		if set["user"] {
			userID = user
		}
		return client.JoinSession(ctx, *session, *name, userID)
	case "stores":
		return client.ListStores(ctx, *session)
	case "store-create":
		total, err := parsePrice(*price)
		if err != nil {
			return nil, err
		}
		return client.CreateStore(ctx, grocerclient.CreateStoreInput{Name: *name, SessionID: *session, UserID: *user, TotalPrice: total})
	case "store-update":
		in := grocerclient.UpdateStoreInput{Name: *name, UserID: *user}
		if set["price"] {
			total, err := parsePrice(*price)
			if err != nil {
				return nil, err
			}
			in.TotalPrice = &total
		}
		return client.UpdateStore(ctx, *store, in)
	case "store-delete":
		return nil, client.DeleteStore(ctx, *store, *user)
	case "items":
		return client.GetStoreItems(ctx, *store)
	case "item-add":
		p, err := parsePrice(*price)
		if err != nil {
			return nil, err
		}
		in := grocerclient.AddItemInput{Name: *name, Price: p, UserID: *user}
		if set["description"] {
			in.Description = description
		}
		if set["quantity"] {
			in.Quantity = quantity
		}
		return client.AddItem(ctx, *store, in)
	case "item-update":
		in := grocerclient.UpdateItemInput{UserID: *user}
		if set["name"] {
			in.Name = name
		}
		if set["description"] {
			in.Description = description
		}
		if set["quantity"] {
			in.Quantity = quantity
		}
		if set["price"] {
			p, err := parsePrice(*price)
			if err != nil {
				return nil, err
			}
			in.Price = &p
		}
		if set["checked"] {
			v, err := parseBool(*checked)
			if err != nil {
				return nil, err
			}
			in.IsChecked = &v
		}
		return client.UpdateItem(ctx, *store, *item, in)
	case "item-delete":
		return nil, client.DeleteItem(ctx, *store, *item, *user)
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func parsePrice(raw string) (types.Price, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return types.Price{}, nil
	}
	return types.ParsePrice(raw)
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid -checked value %q", raw)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
