package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Joseda-hg/lazyjobs/internal/api"
	"github.com/Joseda-hg/lazyjobs/internal/auth"
	"github.com/Joseda-hg/lazyjobs/internal/config"
	"github.com/Joseda-hg/lazyjobs/internal/db"
	"github.com/Joseda-hg/lazyjobs/internal/shell"
	"github.com/Joseda-hg/lazyjobs/internal/tui"
	"github.com/Joseda-hg/lazyjobs/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite snapshot path")
	apiFlag := flag.String("api", "", "job tracker API base URL")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	loginFlag := flag.Bool("login", false, "log in before starting")
	registerFlag := flag.Bool("register", false, "create an account before starting")
	logoutFlag := flag.Bool("logout", false, "forget the saved session and exit")
	forgotFlag := flag.Bool("forgot-password", false, "request a password reset email and exit")
	resetFlag := flag.String("reset-password", "", "reset the password with the token from the reset email and exit")
	flag.Parse()

	// A missing .env file is the normal case.
	_ = godotenv.Load()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if fileCfg.DBPath == "" {
		fileCfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "lazyjobs.db")
	}
	if fileCfg.TokenPath == "" {
		fileCfg.TokenPath = filepath.Join(filepath.Dir(cfgPath), "token.json")
	}
	if err := config.Save(cfgPath, fileCfg); err != nil {
		log.Fatal(err)
	}

	cfg := fileCfg
	if err := config.ApplyEnv(&cfg); err != nil {
		log.Fatal(err)
	}
	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if *apiFlag != "" {
		cfg.APIURL = *apiFlag
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}

	ctx := context.Background()
	tokens := auth.NewTokenStore(cfg.TokenPath)
	anonymous := api.New(cfg.APIURL, nil)

	switch {
	case *logoutFlag:
		if err := tokens.Clear(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Logged out.")
		return
	case *forgotFlag:
		if err := forgotPassword(ctx, anonymous); err != nil {
			log.Fatal(err)
		}
		return
	case *resetFlag != "":
		if err := resetPassword(ctx, anonymous, *resetFlag); err != nil {
			log.Fatal(err)
		}
		return
	case *loginFlag || *registerFlag:
		if err := signIn(ctx, anonymous, tokens, *registerFlag); err != nil {
			log.Fatal(err)
		}
	}

	client, err := authenticatedClient(ctx, anonymous, tokens)
	if err != nil {
		log.Fatal(err)
	}

	if err := client.Health(ctx); err != nil {
		log.Printf("api unreachable, using the local snapshot: %v", err)
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.DB.Close()

	sh := shell.New(client, store)
	if err := sh.LoadCached(ctx); err != nil {
		log.Printf("load snapshot: %v", err)
	}

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(sh).Handler()
		if *webOnlyFlag {
			_ = sh.Refresh(ctx)
			log.Printf("Web server running at http://localhost%s", addr)
			log.Fatal(http.ListenAndServe(addr, handler))
		}

		go func() {
			log.Printf("Web server running at http://localhost%s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				log.Printf("web server error: %v", err)
			}
		}()
	}

	logFile, err := redirectLog(filepath.Join(filepath.Dir(cfgPath), "lazyjobs.log"))
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()

	if err := tui.Run(sh, config.NewPreferenceStore(cfgPath, fileCfg)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// authenticatedClient attaches the saved session. A token the API rejects is
// discarded so the next run asks for a fresh login.
func authenticatedClient(ctx context.Context, anonymous *api.Client, tokens *auth.TokenStore) (*api.Client, error) {
	token, err := tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		log.Printf("not logged in; run with -login to sync with %s", anonymous.BaseURL())
		return anonymous, nil
	}

	client := anonymous.WithToken(token)
	user, err := client.Me(ctx)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		log.Printf("saved session expired; run with -login")
		if err := tokens.Clear(); err != nil {
			return nil, err
		}
		return anonymous, nil
	case err != nil:
		log.Printf("check session: %v", err)
	default:
		log.Printf("logged in as %s", user.Email)
	}
	return client, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openStore(dbPath string) (*db.Store, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}

// redirectLog keeps log output off the terminal while the UI owns it.
func redirectLog(path string) (*os.File, error) {
	if err := config.EnsureDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
