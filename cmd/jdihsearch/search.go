package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	searchuc "github.com/kailas-cloud/jdih-search/internal/usecase/search"
)

var searchHuman bool

func init() {
	searchCmd.Flags().BoolVar(&searchHuman, "human", false, "Print the corrected query and ids as text instead of JSON")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run queries from the command line",
	Long: `Builds the index, then answers one query given as arguments, or reads
queries line by line until "exit" or "quit" when no query is given.
The interactive loop always prints text.

Examples:
  jdihsearch search "izin usaha"
  jdihsearch search`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(&cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.checkEncoder(ctx, time.Duration(cfg.Embedding.TimeoutMs)*time.Millisecond); err != nil {
			return err
		}
		if err := a.buildAndPublish(ctx, logger); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			return runQuery(ctx, a.search, strings.Join(args, " "), out, searchHuman)
		}
		return repl(ctx, a.search, cmd.InOrStdin(), out)
	},
}

func repl(ctx context.Context, svc *searchuc.Service, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "search> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}
		if err := runQuery(ctx, svc, query, out, true); err != nil {
			logger.Warn("query failed", zap.String("query", query), zap.Error(err))
			fmt.Fprintf(out, "error: %s\n", err)
		}
	}
}

func runQuery(ctx context.Context, svc *searchuc.Service, query string, out io.Writer, human bool) error {
	resp, err := svc.Search(ctx, query)
	if err != nil {
		return err
	}

	if !human {
		return json.NewEncoder(out).Encode(map[string]any{"results": resp.IDs})
	}

	if resp.Corrected != resp.Original {
		fmt.Fprintf(out, "corrected: %q -> %q\n", resp.Original, resp.Corrected)
	}
	if len(resp.IDs) == 0 {
		fmt.Fprintln(out, "no results")
		return nil
	}
	ids := make([]string, len(resp.IDs))
	for i, id := range resp.IDs {
		ids[i] = fmt.Sprint(id)
	}
	fmt.Fprintln(out, strings.Join(ids, ", "))
	if resp.Degraded {
		fmt.Fprintln(out, "(keyword matches only, semantic ranking unavailable)")
	}
	return nil
}
