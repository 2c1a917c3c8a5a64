package main

import (
	"YrestCriteria/internal/cache"
	"YrestCriteria/internal/config"
	"YrestCriteria/internal/criteria"
	"YrestCriteria/internal/db"
	"YrestCriteria/internal/logger"
	"YrestCriteria/internal/model"
	"YrestCriteria/internal/repository"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	modelName := flag.String("model", "", "model to query")
	filters := flag.String("filter", "", "comma separated filter names declared on the model")
	criterias := flag.String("criteria", "", "comma separated criteria names declared on the model")
	paramsJSON := flag.String("params", "{}", "request parameters as a JSON object")
	returnFields := flag.String("fields", "", "comma separated return fields")
	with := flag.String("with", "", "comma separated relations to eager load")
	page := flag.Uint64("page", 1, "page number")
	limit := flag.Uint64("limit", 0, "page size")
	run := flag.Bool("run", false, "execute the query and print the page as JSON")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.SetDebug(*debugFlag)

	reg, err := model.InitRegistry(cfg.ModelsDir)
	if err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		fatal(err)
	}
	logger.Info("models_initialized", map[string]any{"models": len(reg.Names())})

	m, ok := reg.Get(*modelName)
	if !ok {
		fatal(fmt.Errorf("unknown model %q (known: %s)", *modelName, strings.Join(reg.Names(), ", ")))
	}

	var params criteria.Params
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		fatal(fmt.Errorf("params: %w", err))
	}

	req := repository.Request{
		Params:       params,
		Page:         *page,
		Limit:        *limit,
		ReturnFields: split(*returnFields),
	}
	opts := repository.Options{
		PreventFilterOverwriting:   cfg.Query.PreventFilterOverwriting,
		PreventCriteriaOverwriting: cfg.Query.PreventCriteriaOverwriting,
		DefaultLimit:               cfg.Query.DefaultLimit,
		NativeDotPath:              &cfg.Query.NativeDotPath,
	}
	for _, s := range config.ParseSort(cfg.Query.DefaultSort) {
		opts.DefaultSort = append(opts.DefaultSort, repository.Sort{Field: s[0], Direction: s[1]})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var exec repository.Executor
	if *run {
		pg, err := db.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
			fatal(err)
		}
		defer pg.Close()
		logger.Info("postgres_connected", nil)
		exec = pg

		if cfg.RedisAddr != "" {
			counts := cache.NewCounts(cfg.RedisAddr, cfg.Query.CountCacheTTL)
			defer counts.Close()
			if err := counts.Ping(ctx); err != nil {
				logger.Warn("count_cache_disabled", map[string]any{"error": err.Error()})
			} else {
				opts.CountCache = counts
			}
		}
	}

	repo, err := repository.New(m, exec, req, opts)
	if err != nil {
		fatal(err)
	}
	repo.With(split(*with)...)

	for _, name := range split(*filters) {
		f, err := m.NewFilter(name, nil)
		if err != nil {
			fatal(err)
		}
		repo.PushFilter(f)
	}
	for _, name := range split(*criterias) {
		c, err := m.NewCriteria(name, nil)
		if err != nil {
			fatal(err)
		}
		repo.PushCriterion(c)
	}

	if !*run {
		sql, args, err := repo.Explain()
		if err != nil {
			fatal(err)
		}
		fmt.Println(sql)
		if len(args) > 0 {
			out, _ := json.Marshal(args)
			fmt.Println(string(out))
		}
		return
	}

	result, err := repo.Paginate(ctx)
	if err != nil {
		logger.Error("query_failed", map[string]any{"model": m.Name, "error": err.Error()})
		fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fatal(err)
	}
}

func split(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
