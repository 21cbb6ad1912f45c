package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/company-profile-store/internal/config"
	"github.com/Chapsvision-dev/company-profile-store/internal/logx"
	"github.com/Chapsvision-dev/company-profile-store/internal/manager"
	"github.com/Chapsvision-dev/company-profile-store/internal/profile"
	"github.com/Chapsvision-dev/company-profile-store/internal/retry"
	"github.com/Chapsvision-dev/company-profile-store/internal/store"
	"github.com/Chapsvision-dev/company-profile-store/internal/store/azure"
	"github.com/Chapsvision-dev/company-profile-store/internal/store/local"
	syncer "github.com/Chapsvision-dev/company-profile-store/internal/sync"
	"github.com/Chapsvision-dev/company-profile-store/internal/version"
)

// Test seams — overridden in unit tests. Keep signatures in sync with packages.
var (
	loadConfig func() (config.Config, error)                 = config.Load
	newManager func(config.Config) (*manager.Manager, error) = manager.FromConfig
	newLocal   func(string) (store.Store, error)             = func(root string) (store.Store, error) {
		return local.New(root)
	}
	newAzure func(context.Context, config.AzureConfig) (store.Store, error) = func(ctx context.Context, cfg config.AzureConfig) (store.Store, error) {
		return azure.New(ctx, cfg)
	}
	syncRun func(context.Context, store.Store, store.Store) (syncer.Report, error) = syncer.Run
	exit    func(int)                                                              = os.Exit
)

const usage = `
Usage:
  profilectl save    <id> <json-file|->
  profilectl load    <id>
  profilectl delete  <id>
  profilectl exists  <id>
  profilectl list
  profilectl migrate
  profilectl version | --version | -v
  profilectl help    | --help    | -h

Notes:
  - The backend is auto-selected: Azure Blob Storage when ENVIRONMENT=production
    and AZURE_STORAGE_ACCOUNT/AZURE_STORAGE_CONTAINER are set, local files
    (PROFILES_DIR, default ./profiles) otherwise.
  - migrate copies every local profile into the Azure container, skipping ids
    the container already holds. It needs the Azure variables regardless of
    ENVIRONMENT.
`

// main wires CLI -> config -> backend -> profile operations.
// Exit codes: 0 success, 1 runtime error, 2 usage error.
func main() {
	_ = godotenv.Load() // best-effort
	logx.InitFromEnv()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Print(usage)
		exit(2)
	}
	action := strings.ToLower(args[0])

	if action == "version" || action == "--version" || action == "-v" {
		fmt.Printf("profilectl %s\n", version.Info())
		exit(0)
	}
	if action == "help" || action == "--help" || action == "-h" {
		fmt.Print(usage)
		exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("config error")
		exit(1)
	}

	ctx := withSignals(context.Background())

	switch action {
	case "save", "load", "delete", "exists", "list":
		runRecordOp(ctx, cfg, action, args[1:])

	case "migrate":
		runMigrate(ctx, cfg)

	default:
		fmt.Print(usage)
		exit(2)
	}
}

// runRecordOp executes one CRUD command through the auto-selected backend.
// Transient backend failures (ErrUnavailable) are retried per the RETRY_*
// settings; everything else fails immediately.
func runRecordOp(ctx context.Context, cfg config.Config, action string, args []string) {
	mgr, err := newManager(cfg)
	if err != nil {
		log.Error().Err(err).Msg("backend init error")
		exit(1)
	}

	transient := func(err error) bool { return errors.Is(err, store.ErrUnavailable) }
	do := func(fn func(context.Context) error) error {
		return retry.Do(ctx, cfg.RetryOptions(), transient, fn)
	}

	needID := action != "list"
	var id string
	if needID {
		if len(args) < 1 {
			fmt.Print(usage)
			exit(2)
		}
		id = args[0]
	}

	start := time.Now()
	switch action {
	case "save":
		if len(args) < 2 {
			fmt.Print(usage)
			exit(2)
		}
		data, err := readPayload(args[1])
		if err != nil {
			log.Error().Err(err).Str("action", "save").Str("id", id).Msg("read payload failed")
			exit(1)
		}
		rec, err := profile.Decode(data)
		if err != nil {
			log.Error().Err(err).Str("action", "save").Str("id", id).Msg("invalid profile document")
			exit(1)
		}
		if err := do(func(ctx context.Context) error { return mgr.Save(ctx, id, rec) }); err != nil {
			log.Error().Err(err).Str("action", "save").Str("id", id).Msg("save failed")
			exit(1)
		}
		log.Info().Str("action", "save").Str("id", id).
			Str("backend", mgr.Backend().Name()).
			Dur("elapsed_ms", time.Since(start)).Msg("profile saved")

	case "load":
		var rec profile.Record
		err := do(func(ctx context.Context) error {
			var err error
			rec, err = mgr.Load(ctx, id)
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("action", "load").Str("id", id).Msg("load failed")
			exit(1)
		}
		fmt.Printf("%s\n", rec.Encode())

	case "delete":
		if err := do(func(ctx context.Context) error { return mgr.Delete(ctx, id) }); err != nil {
			log.Error().Err(err).Str("action", "delete").Str("id", id).Msg("delete failed")
			exit(1)
		}
		log.Info().Str("action", "delete").Str("id", id).
			Dur("elapsed_ms", time.Since(start)).Msg("profile deleted")

	case "exists":
		var ok bool
		err := do(func(ctx context.Context) error {
			var err error
			ok, err = mgr.Exists(ctx, id)
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("action", "exists").Str("id", id).Msg("exists check failed")
			exit(1)
		}
		fmt.Println(ok)

	case "list":
		var ids []string
		err := do(func(ctx context.Context) error {
			var err error
			ids, err = mgr.List(ctx)
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("action", "list").Msg("list failed")
			exit(1)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	}
}

// runMigrate copies the local record set into the Azure container. Source and
// destination are explicit here; auto-detection is bypassed on purpose so the
// migration works the same in any environment.
func runMigrate(ctx context.Context, cfg config.Config) {
	if err := cfg.Azure.Validate(); err != nil {
		log.Error().Err(err).Str("action", "migrate").Msg("destination config error")
		exit(1)
	}

	src, err := newLocal(cfg.LocalRoot)
	if err != nil {
		log.Error().Err(err).Str("action", "migrate").Str("root", cfg.LocalRoot).Msg("source init error")
		exit(1)
	}
	dst, err := newAzure(ctx, cfg.Azure)
	if err != nil {
		log.Error().Err(err).Str("action", "migrate").Str("container", cfg.Azure.Container).Msg("destination init error")
		exit(1)
	}

	rep, err := syncRun(ctx, src, dst)
	if err != nil {
		log.Error().Err(err).Str("action", "migrate").Str("run_id", rep.RunID).Msg("migration aborted")
		exit(1)
	}

	for _, e := range rep.Entries {
		if e.Outcome == syncer.OutcomeFailed {
			log.Warn().Err(e.Err).Str("action", "migrate").Str("run_id", rep.RunID).
				Str("id", e.ID).Msg("record not migrated")
		}
	}
	log.Info().
		Str("action", "migrate").
		Str("run_id", rep.RunID).
		Int("copied", rep.Copied).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Dur("elapsed_ms", rep.Elapsed).
		Msg("migration report")

	if rep.Failed > 0 {
		exit(1)
	}
	exit(0)
}

// readPayload reads the record document from a file, or stdin when path is "-".
func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func withSignals(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
