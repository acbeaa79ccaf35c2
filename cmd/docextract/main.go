package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/extract"
	"github.com/joseph-ayodele/docextract/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("docextract", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	lang := fs.String("lang", "", "OCR language pack, e.g. eng or eng+deu (default from config)")
	validate := fs.Bool("validate", false, "check the result against the result JSON schema")
	remote := fs.String("remote", "", "extract through a running docextractd gRPC endpoint (host:port)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: docextract [-config file] [-lang eng] [-validate] [-remote host:port] <file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	// stdout carries the result
	logger := common.NewLogger(cfg.Log, os.Stderr)

	v := common.NewValidator().Field("lang", *lang, common.LanguageCode)
	if v.HasErrors() {
		logger.Error("invalid arguments", "error", v.ErrorMessage())
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := common.WithTimeout(ctx, cfg.Server.ExtractTimeout)
	defer cancel()

	var res extract.Result
	if *remote != "" {
		res, err = extractRemote(ctx, *remote, path, *lang)
		if err != nil {
			logger.Error("remote extraction failed", "addr", *remote, "error", err)
			return 1
		}
	} else {
		d, err := extract.NewFromConfig(cfg, logger)
		if err != nil {
			logger.Error("build extractor", "error", err)
			return 1
		}
		res = d.ExtractAny(ctx, extract.Request{FilePath: path, Language: *lang})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("write result", "error", err)
		return 1
	}

	if *validate {
		if err := extract.ValidateResult(res); err != nil {
			logger.Error("result failed validation", "error", err)
			return 1
		}
	}
	return 0
}

func extractRemote(ctx context.Context, addr, path, lang string) (extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Result{}, err
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return extract.Result{}, err
	}
	defer conn.Close()
	return server.NewExtractionClient(conn).Extract(ctx, filepath.Base(path), lang, data,
		grpc.MaxCallSendMsgSize(len(data)+1024))
}
