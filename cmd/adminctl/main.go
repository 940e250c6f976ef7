package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	adminclient "github.com/jrsteele09/go-admin-client"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/tenants"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	var (
		email      = flag.String("email", config.GetEnv("ADMIN_EMAIL", ""), "login email")
		password   = flag.String("password", config.GetEnv("ADMIN_PASSWORD", ""), "login password")
		exportList = flag.Bool("export", false, "export the tenant listing after printing it")
		search     = flag.String("search", "", "tenant search keyword")
	)
	flag.Parse()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	app := adminclient.New(adminclient.Options{
		BaseURL:        c.GetBaseURL(),
		DataFolder:     c.GetDataFolder(),
		DownloadFolder: c.GetDownloadFolder(),
		Timeout:        c.GetRequestTimeout(),
		NoticeTTL:      c.GetNoticeTTL(),
		Logger:         logger,
		OnSessionEnd: func() {
			log.Printf("Session expired, please sign in again\n")
		},
	})
	defer app.Close()

	ctx := context.Background()

	if !app.Session.IsAuthenticated() {
		if *email == "" || *password == "" {
			return errors.New("no stored session: provide -email and -password")
		}
		if ok := app.Session.Login(ctx, *email, *password, true); !ok {
			kind, msg := app.Session.LastError()
			return fmt.Errorf("login failed (%s): %s", kind, msg)
		}
		log.Printf("Signed in as %s\n", app.Session.User().Email)
	} else {
		log.Printf("Restored session for %s\n", app.Session.User().Email)
	}

	params := tenants.ListParams{Page: 1, Size: 20, Search: *search}
	listing, err := app.Tenants.List(ctx, params)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	fmt.Printf("%-24s %-28s %-10s %-12s\n", "TENANT ID", "NAME", "STATUS", "PLAN")
	for _, t := range listing.Tenants {
		fmt.Printf("%-24s %-28s %-10s %-12s\n", t.TenantID, t.Name, t.Status, t.PlanType)
	}
	fmt.Printf("page %d/%d, %d total\n", listing.Pagination.Page, listing.Pagination.Pages, listing.Pagination.Total)

	if *exportList {
		path, err := app.Tenants.Export(ctx, params)
		if err != nil {
			return fmt.Errorf("export tenants: %w", err)
		}
		log.Printf("Export saved to %s\n", path)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
