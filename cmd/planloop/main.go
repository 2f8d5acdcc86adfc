package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"planloop/internal/agent"
	"planloop/internal/observability"
	"planloop/internal/store"
	"planloop/internal/tools"
	"planloop/pkg/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "path to the YAML config file")
		model       = flag.String("model", "", "override the provider model identifier")
		temperature = flag.Float64("temperature", -1, "override the model temperature")
		maxCycles   = flag.Int("max-cycles", 0, "override the execute/replan cycle ceiling")
		search      = flag.Bool("search", false, "enable the web search tool")
	)
	flag.Parse()

	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: planloop [flags] <task description>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("no usable config file (%v), falling back to defaults", err)
		cfg = config.Default()
	}
	if *model != "" || *temperature >= 0 {
		name, p := cfg.GetDefaultProvider()
		if name != "" {
			if *model != "" {
				p.Model = *model
			}
			if *temperature >= 0 {
				p.Temperature = *temperature
			}
			cfg.Providers[name] = p
		}
	}
	if *maxCycles > 0 {
		cfg.Agent.MaxReplanCycles = *maxCycles
	}
	if *search {
		cfg.Agent.SearchEnabled = true
	}

	observability.PrintBanner()

	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("no enabled provider found in config")
	}

	var llm llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("provider %s not yet implemented", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	registry := tools.NewRegistry()
	registry.Register(tools.NewCommandTool())

	if cfg.Agent.SearchEnabled {
		searchTool, err := tools.NewSearchTool()
		if err != nil {
			// The run can still complete tasks that only need the command tool.
			log.Printf("warning: failed to initialize search tool: %v", err)
		} else {
			registry.Register(searchTool)
			if cfg.Agent.PageReaderEnabled {
				registry.Register(tools.NewReaderTool())
			}
		}
	}

	transcript, err := store.NewTranscriptStore()
	if err != nil {
		log.Fatal(err)
	}
	defer transcript.Close()

	prompts := agent.NewPromptManager(cfg.App.PromptDir)
	logger := observability.NewLogger()

	orchestrator := agent.NewOrchestrator(
		agent.NewPlanner(llm, prompts, logger, pCfg.Temperature),
		agent.NewExecutor(llm, registry, transcript, prompts, logger, cfg.Agent.ExecutorMaxSteps, pCfg.Temperature),
		agent.NewReplanner(llm, prompts, logger, pCfg.Temperature),
		logger,
		cfg.Agent.MaxReplanCycles,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := orchestrator.Run(ctx, input)
	if err != nil {
		reportFailure(state, err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(state.Response)
}

func reportFailure(state *agent.TaskState, err error) {
	var soErr *agent.StructuredOutputError
	var limitErr *agent.RecursionLimitError

	switch {
	case errors.As(err, &soErr):
		log.Printf("run aborted, model output did not match the expected structure: %v", soErr)
	case errors.As(err, &limitErr):
		log.Printf("run aborted after hitting the cycle ceiling: %v", limitErr)
		for i, rec := range limitErr.History {
			log.Printf("  step %d: %s -> %s", i+1, rec.Step, rec.Observation)
		}
	case errors.Is(err, agent.ErrNoResponse):
		log.Printf("run ended without a final response: the plan emptied before the replanner responded")
	default:
		log.Printf("run failed: %v", err)
	}

	if state != nil && len(state.History) > 0 && limitErr == nil {
		log.Printf("completed %d step(s) before the failure", len(state.History))
	}
}
