// Command fraudctl scores transaction files offline and manages the
// fraudwatch database schema and development certificates.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bibbank/fraudwatch/internal/application/dto"
	"github.com/bibbank/fraudwatch/internal/application/usecase"
	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/service"
	"github.com/bibbank/fraudwatch/internal/infrastructure/cache"
	"github.com/bibbank/fraudwatch/internal/infrastructure/config"
	"github.com/bibbank/fraudwatch/internal/infrastructure/ingest"
	"github.com/bibbank/fraudwatch/internal/infrastructure/memory"
	"github.com/bibbank/fraudwatch/internal/infrastructure/messaging"
	"github.com/bibbank/fraudwatch/internal/infrastructure/metrics"
	"github.com/bibbank/fraudwatch/internal/infrastructure/ml"
	grpcpresentation "github.com/bibbank/fraudwatch/internal/presentation/grpc"
	"github.com/bibbank/fraudwatch/pkg/observability"
	"github.com/bibbank/fraudwatch/pkg/postgres"
	"github.com/bibbank/fraudwatch/pkg/tlsutil"
)

const usage = `usage: fraudctl <command> [flags]

commands:
  score [-scorer rules|classifier|fallback] <file>       score a CSV or XLSX file and print the summary
  migrate up|down|steps <n>|version                       manage the database schema
  certs [-hosts localhost,127.0.0.1] <dir>                write a development CA and server key pair
  remote [-addr host:port] [-ca file] [-server-name n] <call> [args]
                                                          call a running fraudd over gRPC
                                                          calls: health, stats, geo, flagged [n], logs [n], clear, submit <file>
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fraudctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(strings.TrimSpace(usage))
	}

	switch args[0] {
	case "score":
		return runScore(ctx, args[1:], out)
	case "migrate":
		return runMigrate(args[1:], out)
	case "certs":
		return runCerts(args[1:], out)
	case "remote":
		return runRemote(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// scoreReport is what the score command prints.
type scoreReport struct {
	Batch      dto.ProcessBatchResponse `json:"batch"`
	Statistics dto.StatisticsResponse   `json:"statistics"`
}

func runScore(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	strategy := fs.String("scorer", ml.StrategyRules, "scoring strategy")
	verbose := fs.Bool("v", false, "log pipeline progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("score: exactly one CSV or XLSX file is required")
	}
	path := fs.Arg(0)

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := observability.InitLogger(observability.LogConfig{
		Output:  os.Stderr,
		Level:   level,
		Format:  "text",
		Service: "fraudctl",
	})

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := ingest.Read(path, f)
	if err != nil {
		return err
	}

	scorer, err := ml.NewScorer(*strategy, logger)
	if err != nil {
		return err
	}

	repo := memory.NewFraudRepository()
	statsCache := cache.NewMemoryStatisticsCache(0)
	publisher := messaging.NewLogPublisher("fraud.events", logger)

	processBatch := usecase.NewProcessBatch(
		service.NewBatchProcessor(scorer, logger), repo, publisher, statsCache, metrics.NewRecorder(), logger,
	)
	result, err := processBatch.Execute(ctx, dto.ProcessBatchRequest{
		Filename: filepath.Base(path),
		Records:  model.NormalizeAll(raw),
	})
	if err != nil {
		return err
	}

	stats, err := usecase.NewGetStatistics(repo, statsCache, logger).Execute(ctx)
	if err != nil {
		return err
	}

	return printJSON(out, scoreReport{Batch: result, Statistics: stats})
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runMigrate(args []string, out io.Writer) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("migrate: expected one of up, down, steps, version")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.UsesPostgres() {
		return &model.ConfigurationError{Component: "migrate", Err: errors.New("DATABASE_URL is not set")}
	}

	switch args[0] {
	case "up":
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
	case "down":
		if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations rolled back")
	case "steps":
		if len(args) != 2 {
			return errors.New("migrate steps: expected a step count such as 1 or -1")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("migrate steps: %w", err)
		}
		if err := postgres.MigrateSteps(cfg.DatabaseURL, cfg.MigrationsDir, n); err != nil {
			return err
		}
		fmt.Fprintf(out, "moved %+d migrations\n", n)
	case "version":
		status, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, status)
	default:
		return fmt.Errorf("migrate: unknown direction %q", args[0])
	}
	return nil
}

func runCerts(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certs", flag.ContinueOnError)
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated SAN hosts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("certs: exactly one output directory is required")
	}
	dir := fs.Arg(0)

	if err := tlsutil.GenerateSelfSignedCert(strings.Split(*hosts, ","), dir); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s and %s to %s\n", tlsutil.ServerCertFile, tlsutil.ServerKeyFile, dir)
	return nil
}

func runRemote(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("remote", flag.ContinueOnError)
	addr := fs.String("addr", "localhost:8088", "fraudd gRPC address")
	caFile := fs.String("ca", "", "CA certificate for TLS; plaintext when empty")
	serverName := fs.String("server-name", "", "name to verify in the server certificate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("remote: a call is required")
	}

	client, err := grpcpresentation.Dial(*addr, grpcpresentation.DialConfig{CAFile: *caFile, ServerName: *serverName})
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return remoteCall(ctx, client, fs.Args(), out)
}

func remoteCall(ctx context.Context, client *grpcpresentation.Client, args []string, out io.Writer) error {
	var (
		resp interface{}
		err  error
	)

	switch args[0] {
	case "health":
		if err := client.CheckHealth(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "SERVING")
		return nil
	case "stats":
		resp, err = client.GetStatistics(ctx)
	case "geo":
		resp, err = client.GetGeoDistribution(ctx)
	case "flagged", "logs":
		limit, perr := optionalLimit(args[1:])
		if perr != nil {
			return perr
		}
		if args[0] == "flagged" {
			resp, err = client.ListFlagged(ctx, limit)
		} else {
			resp, err = client.ListLogs(ctx, limit)
		}
	case "clear":
		resp, err = client.ClearAll(ctx)
	case "submit":
		if len(args) != 2 {
			return errors.New("remote submit: exactly one CSV or XLSX file is required")
		}
		f, ferr := os.Open(args[1])
		if ferr != nil {
			return fmt.Errorf("open %s: %w", args[1], ferr)
		}
		defer f.Close()
		raw, rerr := ingest.Read(args[1], f)
		if rerr != nil {
			return rerr
		}
		resp, err = client.ProcessBatch(ctx, filepath.Base(args[1]), raw)
	default:
		return fmt.Errorf("remote: unknown call %q", args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(out, resp)
}

func optionalLimit(args []string) (int32, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", args[0])
	}
	return int32(n), nil
}
