package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/config"
	"github.com/programme-lv/judge/internal/judge"
	"github.com/programme-lv/judge/internal/rpc"
)

func main() {
	// a missing .env is fine, env vars may come from elsewhere
	_ = godotenv.Load()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	cmd := &cli.Command{
		Name:  "judge",
		Usage: "compile, run and grade code submissions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a TOML config file",
				Sources: cli.EnvVars("JUDGE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCmd(log),
			demoCmd(log),
			envCheckCmd(log),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Error("judge exited with error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	return config.Load(cmd.String("config"))
}

func serveCmd(log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "answer judge requests over stdio, NATS or SQS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL, enables the NATS transport",
				Sources: cli.EnvVars("JUDGE_NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-subject",
				Usage:   "subject to subscribe to for judge requests",
				Value:   "judge.requests",
				Sources: cli.EnvVars("JUDGE_NATS_SUBJECT"),
			},
			&cli.StringFlag{
				Name:    "sqs-queue",
				Usage:   "request queue URL, enables the SQS transport",
				Sources: cli.EnvVars("JUDGE_SQS_QUEUE"),
			},
			&cli.StringFlag{
				Name:    "sqs-response-queue",
				Usage:   "queue URL judge responses are sent to",
				Sources: cli.EnvVars("JUDGE_SQS_RESPONSE_QUEUE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			j, err := judge.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize judge: %w", err)
			}
			defer j.Close()

			disp := rpc.NewDispatcher(j, log)

			if natsUrl := cmd.String("nats-url"); natsUrl != "" {
				nc, err := nats.Connect(natsUrl)
				if err != nil {
					return fmt.Errorf("failed to connect to NATS at %s: %w", natsUrl, err)
				}
				defer nc.Close()
				return rpc.ServeNats(ctx, nc, cmd.String("nats-subject"), disp, log)
			}

			if reqQueue := cmd.String("sqs-queue"); reqQueue != "" {
				respQueue := cmd.String("sqs-response-queue")
				if respQueue == "" {
					return fmt.Errorf("--sqs-response-queue is required with --sqs-queue")
				}
				awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
				if err != nil {
					return fmt.Errorf("unable to load SDK config: %w", err)
				}
				client := awssqs.NewFromConfig(awsCfg)
				// queue consumers get trimmed outputs to keep messages small
				return rpc.ServeSqs(ctx, client, reqQueue, respQueue, disp.WithTrimmedIO(), log)
			}

			return rpc.NewStdioSession(os.Stdin, os.Stdout, disp, log).Run(ctx)
		},
	}
}

func envCheckCmd(log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "env-check",
		Usage: "verify the C and C++ toolchains are runnable",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			j, err := judge.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize judge: %w", err)
			}
			defer j.Close()

			if err := j.CheckEnvironment(ctx); err != nil {
				color.Red("environment check failed: %v", err)
				return err
			}
			color.Green("environment ok: cc=%s cxx=%s", cfg.CC, cfg.CXX)
			return nil
		},
	}
}

const demoSource = `#include <stdio.h>
int main(void) {
    int n;
    if (scanf("%d", &n) != 1) return 1;
    printf("%d\n", n * 2);
    return 0;
}
`

func demoCmd(log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "judge a built-in doubling program against sample tests",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			j, err := judge.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize judge: %w", err)
			}
			defer j.Close()

			req := api.JudgeRequest{
				Code:     demoSource,
				Language: "c",
				Problem: api.Problem{
					ID:          "demo-double",
					Title:       "Double the Number",
					Description: "Read an integer and print its double.",
					Difficulty:  api.DifficultyEasy,
					TimeLimit:   2000,
					MemoryLimit: 256,
					TestCases: []api.TestCase{
						{Input: "2\n", ExpectedOutput: "4\n"},
						{Input: "21\n", ExpectedOutput: "42\n"},
						{Input: "-5\n", ExpectedOutput: "-10\n", IsHidden: true},
					},
				},
			}

			resp, err := j.Judge(ctx, req)
			if err != nil {
				return err
			}

			printDemoResponse(resp)
			return nil
		},
	}
}

func printDemoResponse(resp api.JudgeResponse) {
	switch {
	case resp.Result != nil && resp.Status == api.StatusOk && resp.Result.Score == 100:
		color.Green("verdict: %s (score %.0f)", resp.Status, resp.Result.Score)
	case resp.Result != nil:
		color.Yellow("verdict: %s (score %.0f)", resp.Status, resp.Result.Score)
	default:
		color.Red("judging failed: %s", deref(resp.Error))
	}

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(b))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
